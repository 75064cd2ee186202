// Package reportstore keeps generated monthly reports. Every backend stores
// the same JSON document, one per (year, month), and overwrites on save.
package reportstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
)

func fileName(year int, month time.Month) string {
	return fmt.Sprintf("loan_report_%d_%02d.json", year, int(month))
}

func encode(report model.MonthlyReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report %s: %w", periodOf(report), err)
	}
	return data, nil
}

func decode(data []byte, year int, month time.Month) (model.MonthlyReport, error) {
	var report model.MonthlyReport
	if err := json.Unmarshal(data, &report); err != nil {
		return model.MonthlyReport{}, fmt.Errorf("unmarshal report %s: %w", model.PeriodKey(year, month), err)
	}
	return report, nil
}

func periodOf(report model.MonthlyReport) string {
	return model.PeriodKey(report.Period.Year, time.Month(report.Period.Month))
}

func reportNotFound(year int, month time.Month) error {
	return apperr.NotFound("report", model.PeriodKey(year, month))
}
