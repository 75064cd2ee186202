package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

func TestLogRecorder_Record(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := rec.Record(context.Background(), port.AuditEntry{
		EntityType: "loan",
		EntityID:   "loan-1",
		Action:     "status_changed",
		Old:        map[string]any{"status": "ACTIVE"},
		New:        map[string]any{"status": "DEFAULT"},
		Actor:      "system",
		At:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["stream"])
	assert.Equal(t, "loan-1", line["entity_id"])
	assert.Equal(t, "status_changed", line["action"])
	assert.Equal(t, map[string]any{"status": "DEFAULT"}, line["new_value"])
}
