package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	pgutil "github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/postgres"
)

const documentColumns = `id, loan_id, document_type, file_ref, description, upload_date, is_verified, verified_by, verified_at`

// DocumentRepo implements port.DocumentRepository.
type DocumentRepo struct {
	q pgutil.Querier
}

// NewDocumentRepo creates a new PostgreSQL-backed document repository.
func NewDocumentRepo(q pgutil.Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

func (r *DocumentRepo) Save(ctx context.Context, doc model.LoanDocument) error {
	query := `
		INSERT INTO loan_documents (` + documentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			is_verified = EXCLUDED.is_verified,
			verified_by = EXCLUDED.verified_by,
			verified_at = EXCLUDED.verified_at
	`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.LoanID, doc.DocumentType, doc.FileRef, doc.Description,
		doc.UploadDate, doc.IsVerified, doc.VerifiedBy, nullTime(doc.VerifiedAt),
	)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperr.NotFound("loan", doc.LoanID)
		}
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) FindByID(ctx context.Context, id string) (model.LoanDocument, error) {
	row := r.q.QueryRow(ctx, `SELECT `+documentColumns+` FROM loan_documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return model.LoanDocument{}, notFound(err, "document", id)
	}
	return doc, nil
}

// ListByLoan returns the loan's documents, oldest upload first.
func (r *DocumentRepo) ListByLoan(ctx context.Context, loanID string) ([]model.LoanDocument, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+documentColumns+` FROM loan_documents WHERE loan_id = $1 ORDER BY upload_date, id`, loanID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []model.LoanDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanDocument(row scannable) (model.LoanDocument, error) {
	var (
		d          model.LoanDocument
		verifiedAt *time.Time
	)
	err := row.Scan(
		&d.ID, &d.LoanID, &d.DocumentType, &d.FileRef, &d.Description,
		&d.UploadDate, &d.IsVerified, &d.VerifiedBy, &verifiedAt,
	)
	if err != nil {
		return model.LoanDocument{}, err
	}
	d.UploadDate = d.UploadDate.UTC()
	d.VerifiedAt = timeOrZero(verifiedAt)
	return d, nil
}
