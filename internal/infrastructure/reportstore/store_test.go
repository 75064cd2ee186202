package reportstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

var (
	_ port.ReportStore = (*FileStore)(nil)
	_ port.ReportStore = (*RedisStore)(nil)
	_ port.ReportStore = (*S3Store)(nil)
)

func sampleReport(delinquency string) model.MonthlyReport {
	return model.MonthlyReport{
		Period: model.ReportPeriod{Month: 2, Year: 2024, StartDate: "2024-02-01", EndDate: "2024-03-01"},
		LoanSummary: model.PortfolioSummary{
			TotalLoans:      2,
			ActiveLoans:     1,
			DefaultedLoans:  1,
			DelinquencyRate: decimal.RequireFromString(delinquency),
		},
		FinancialSummary: model.FinancialSummary{
			TotalAmountPaid: decimal.RequireFromString("1110.21"),
		},
		TopDefaulters: []model.Defaulter{{
			LoanID:           "loan-b",
			LoanNumber:       "LN-B",
			RemainingBalance: decimal.NewFromInt(100000),
			DaysOverdue:      11,
			OriginalAmount:   decimal.NewFromInt(100000),
		}},
		GeneratedAt: time.Date(2024, 2, 25, 8, 0, 0, 0, time.UTC),
	}
}

func assertSameReport(t *testing.T, want, got model.MonthlyReport) {
	t.Helper()
	w, err := json.Marshal(want)
	require.NoError(t, err)
	g, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(w), string(g))
}

// exerciseStore checks the behaviour every backend shares.
func exerciseStore(t *testing.T, store port.ReportStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, 2024, time.February)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err), "missing period: %v", err)

	first := sampleReport("50")
	require.NoError(t, store.Save(ctx, first))
	got, err := store.Load(ctx, 2024, time.February)
	require.NoError(t, err)
	assertSameReport(t, first, got)

	second := sampleReport("75")
	require.NoError(t, store.Save(ctx, second))
	got, err = store.Load(ctx, 2024, time.February)
	require.NoError(t, err)
	assert.Equal(t, "75", got.LoanSummary.DelinquencyRate.String(), "save overwrites")

	_, err = store.Load(ctx, 2024, time.March)
	assert.True(t, apperr.IsNotFound(err))
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	exerciseStore(t, store)

	_, err := os.Stat(filepath.Join(dir, "2024", "loan_report_2024_02.json"))
	require.NoError(t, err)

	leftovers, err := filepath.Glob(filepath.Join(dir, "2024", ".report-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temporary files are cleaned up")
}

func TestFileStore_CorruptReport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2024"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024", "loan_report_2024_02.json"), []byte("{"), 0o600))

	_, err := NewFileStore(dir).Load(context.Background(), 2024, time.February)
	require.Error(t, err)
	assert.False(t, apperr.IsNotFound(err))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, 24*time.Hour)
	exerciseStore(t, store)

	assert.True(t, mr.Exists("loan-report:2024-02"))
	assert.Equal(t, 24*time.Hour, mr.TTL("loan-report:2024-02"))

	mr.FastForward(25 * time.Hour)
	_, err := store.Load(context.Background(), 2024, time.February)
	assert.True(t, apperr.IsNotFound(err), "expired report is gone")
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	err := NewRedisStore(client, 0).Save(context.Background(), sampleReport("50"))
	require.Error(t, err)
	assert.False(t, apperr.IsNotFound(err))
}

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store(t *testing.T) {
	api := &fakeS3{objects: make(map[string][]byte)}
	store := NewS3Store(api, "loand-reports", "")

	exerciseStore(t, store)

	assert.Contains(t, api.objects, "loand-reports/reports/2024/loan_report_2024_02.json")
}

func TestS3Store_PutFailure(t *testing.T) {
	api := &fakeS3{objects: make(map[string][]byte), putErr: errors.New("access denied")}

	err := NewS3Store(api, "loand-reports", "archive").Save(context.Background(), sampleReport("50"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive/2024/loan_report_2024_02.json")
}
