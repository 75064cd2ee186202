package usecase

import (
	"context"
	"fmt"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

// AddDocumentUseCase attaches document metadata to a loan.
type AddDocumentUseCase struct {
	loanRepo port.LoanRepository
	docRepo  port.DocumentRepository
	clock    port.Clock
	effects  *SideEffects
}

// NewAddDocumentUseCase wires dependencies.
func NewAddDocumentUseCase(
	loanRepo port.LoanRepository,
	docRepo port.DocumentRepository,
	clock port.Clock,
	effects *SideEffects,
) *AddDocumentUseCase {
	return &AddDocumentUseCase{loanRepo: loanRepo, docRepo: docRepo, clock: clock, effects: effects}
}

// Execute stores the document reference.
func (uc *AddDocumentUseCase) Execute(ctx context.Context, req dto.AddDocumentRequest) (dto.DocumentResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.DocumentResponse{}, err
	}

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.DocumentResponse{}, fmt.Errorf("find loan: %w", err)
	}

	now := uc.clock.Now()
	doc, err := model.NewLoanDocument(loan.ID(), req.DocumentType, req.FileRef, req.Description, now)
	if err != nil {
		return dto.DocumentResponse{}, fmt.Errorf("create document: %w", err)
	}
	if err := uc.docRepo.Save(ctx, doc); err != nil {
		return dto.DocumentResponse{}, fmt.Errorf("save document: %w", err)
	}

	uc.effects.Audit(ctx, port.AuditEntry{
		EntityType: entityDocument,
		EntityID:   doc.ID,
		Action:     actionCreated,
		New:        map[string]any{"loan_id": doc.LoanID, "document_type": doc.DocumentType, "file_ref": doc.FileRef},
		Actor:      req.Actor,
		At:         now,
	})
	return toDocumentResponse(doc), nil
}

// VerifyDocumentUseCase marks a document verified.
type VerifyDocumentUseCase struct {
	docRepo port.DocumentRepository
	clock   port.Clock
	effects *SideEffects
}

// NewVerifyDocumentUseCase wires dependencies.
func NewVerifyDocumentUseCase(docRepo port.DocumentRepository, clock port.Clock, effects *SideEffects) *VerifyDocumentUseCase {
	return &VerifyDocumentUseCase{docRepo: docRepo, clock: clock, effects: effects}
}

// Execute verifies the document. Verifying twice is a no-op.
func (uc *VerifyDocumentUseCase) Execute(ctx context.Context, req dto.VerifyDocumentRequest) (dto.DocumentResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.DocumentResponse{}, err
	}

	doc, err := uc.docRepo.FindByID(ctx, req.DocumentID)
	if err != nil {
		return dto.DocumentResponse{}, fmt.Errorf("find document: %w", err)
	}
	if doc.IsVerified {
		return toDocumentResponse(doc), nil
	}

	now := uc.clock.Now()
	verified := doc.Verify(req.Actor, now)
	if err := uc.docRepo.Save(ctx, verified); err != nil {
		return dto.DocumentResponse{}, fmt.Errorf("save document: %w", err)
	}

	uc.effects.Audit(ctx, port.AuditEntry{
		EntityType: entityDocument,
		EntityID:   doc.ID,
		Action:     actionVerified,
		Old:        map[string]any{"is_verified": false},
		New:        map[string]any{"is_verified": true, "verified_by": req.Actor},
		Actor:      req.Actor,
		At:         now,
	})
	return toDocumentResponse(verified), nil
}

// ListDocumentsUseCase lists the documents of a loan.
type ListDocumentsUseCase struct {
	loanRepo port.LoanRepository
	docRepo  port.DocumentRepository
}

// NewListDocumentsUseCase wires dependencies.
func NewListDocumentsUseCase(loanRepo port.LoanRepository, docRepo port.DocumentRepository) *ListDocumentsUseCase {
	return &ListDocumentsUseCase{loanRepo: loanRepo, docRepo: docRepo}
}

// Execute returns the loan's documents, oldest first.
func (uc *ListDocumentsUseCase) Execute(ctx context.Context, req dto.GetLoanRequest) ([]dto.DocumentResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := uc.loanRepo.FindByID(ctx, req.LoanID); err != nil {
		return nil, fmt.Errorf("find loan: %w", err)
	}

	docs, err := uc.docRepo.ListByLoan(ctx, req.LoanID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResponse(d))
	}
	return out, nil
}
