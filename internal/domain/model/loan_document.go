package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
)

// LoanDocument is metadata for an evidentiary file attached to a loan. The
// file itself lives elsewhere; only its reference is kept.
type LoanDocument struct {
	ID           string
	LoanID       string
	DocumentType string
	FileRef      string
	Description  string
	UploadDate   time.Time
	IsVerified   bool
	VerifiedBy   string
	VerifiedAt   time.Time
}

// NewLoanDocument attaches a document reference to a loan.
func NewLoanDocument(loanID, documentType, fileRef, description string, now time.Time) (LoanDocument, error) {
	if strings.TrimSpace(documentType) == "" {
		return LoanDocument{}, apperr.Validation("INVALID_DOCUMENT_TYPE", "document type is required")
	}
	if strings.TrimSpace(fileRef) == "" {
		return LoanDocument{}, apperr.Validation("INVALID_FILE_REF", "file reference is required")
	}
	return LoanDocument{
		ID:           uuid.NewString(),
		LoanID:       loanID,
		DocumentType: strings.TrimSpace(documentType),
		FileRef:      fileRef,
		Description:  description,
		UploadDate:   now,
	}, nil
}

// Verify marks the document verified. Verification is one-way; verifying an
// already verified document keeps the original verifier.
func (d LoanDocument) Verify(actor string, now time.Time) LoanDocument {
	if d.IsVerified {
		return d
	}
	d.IsVerified = true
	d.VerifiedBy = actor
	d.VerifiedAt = now
	return d
}
