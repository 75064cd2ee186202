package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// scannable is satisfied by pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// nullTime stores zero times as NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// notFound turns pgx.ErrNoRows into the engine's not-found error.
func notFound(err error, resource, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource, id)
	}
	return fmt.Errorf("query %s: %w", resource, err)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// queryBuilder accumulates WHERE clauses with positional arguments.
type queryBuilder struct {
	where []string
	args  []any
}

func (b *queryBuilder) add(clause string, arg any) {
	b.args = append(b.args, arg)
	b.where = append(b.where, fmt.Sprintf(clause, len(b.args)))
}

func (b *queryBuilder) whereSQL() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

func (b *queryBuilder) page(offset, limit int) string {
	var sql string
	if limit > 0 {
		b.args = append(b.args, limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(b.args))
	}
	if offset > 0 {
		b.args = append(b.args, offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(b.args))
	}
	return sql
}
