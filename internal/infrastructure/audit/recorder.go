// Package audit provides the audit recorder used when no broker is
// configured.
package audit

import (
	"context"
	"log/slog"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

// LogRecorder writes audit entries as structured log records.
type LogRecorder struct {
	logger *slog.Logger
}

func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger.With("stream", "audit")}
}

func (r *LogRecorder) Record(ctx context.Context, entry port.AuditEntry) error {
	r.logger.InfoContext(ctx, "audit",
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID,
		"action", entry.Action,
		"actor", entry.Actor,
		"old_value", entry.Old,
		"new_value", entry.New,
		"at", entry.At,
	)
	return nil
}
