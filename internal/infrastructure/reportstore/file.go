package reportstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
)

// FileStore writes reports to <dir>/<year>/loan_report_<year>_<MM>.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(year int, month time.Month) string {
	return filepath.Join(s.dir, strconv.Itoa(year), fileName(year, month))
}

// Save writes to a temporary file and renames it over the target so readers
// never see a partial report.
func (s *FileStore) Save(_ context.Context, report model.MonthlyReport) error {
	data, err := encode(report)
	if err != nil {
		return err
	}

	target := s.path(report.Period.Year, time.Month(report.Period.Month))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".report-*.json")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, year int, month time.Month) (model.MonthlyReport, error) {
	data, err := os.ReadFile(s.path(year, month))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.MonthlyReport{}, reportNotFound(year, month)
		}
		return model.MonthlyReport{}, fmt.Errorf("read report: %w", err)
	}
	return decode(data, year, month)
}
