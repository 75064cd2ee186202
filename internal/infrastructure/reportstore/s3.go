package reportstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
)

// S3API is the subset of *s3.Client the store uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store writes reports to <prefix>/<year>/loan_report_<year>_<MM>.json in
// one bucket.
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	if prefix == "" {
		prefix = "reports"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(year int, month time.Month) string {
	return path.Join(s.prefix, strconv.Itoa(year), fileName(year, month))
}

func (s *S3Store) Save(ctx context.Context, report model.MonthlyReport) error {
	data, err := encode(report)
	if err != nil {
		return err
	}
	key := s.key(report.Period.Year, time.Month(report.Period.Month))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Load(ctx context.Context, year int, month time.Month) (model.MonthlyReport, error) {
	key := s.key(year, month)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return model.MonthlyReport{}, reportNotFound(year, month)
		}
		return model.MonthlyReport{}, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return model.MonthlyReport{}, fmt.Errorf("read s3 object %s: %w", key, err)
	}
	return decode(data, year, month)
}
