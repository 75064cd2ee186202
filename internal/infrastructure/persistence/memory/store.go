// Package memory is a process-local implementation of the loan repositories
// and unit of work. It keeps the same version and uniqueness rules as the
// PostgreSQL adapter so both can back the same use cases.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
)

// Store holds loans, payments and documents. All repository views returned by
// a Store share its data.
type Store struct {
	mu        sync.RWMutex
	loans     map[string]model.LoanSnapshot
	numbers   map[string]string // loan_number -> loan id
	payments  map[string]model.PaymentSnapshot
	documents map[string]model.LoanDocument

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		loans:     make(map[string]model.LoanSnapshot),
		numbers:   make(map[string]string),
		payments:  make(map[string]model.PaymentSnapshot),
		documents: make(map[string]model.LoanDocument),
		locks:     make(map[string]*sync.Mutex),
	}
}

// Loans returns the loan repository view.
func (s *Store) Loans() *LoanRepo { return &LoanRepo{s: s} }

// Payments returns the payment repository view.
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{s: s} }

// Documents returns the document repository view.
func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{s: s} }

// ---------------------------------------------------------------------------
// Writes (callers hold s.mu)
// ---------------------------------------------------------------------------

func (s *Store) putLoan(loan model.Loan) error {
	snap := loan.Snapshot()
	current, exists := s.loans[snap.ID]
	if !exists {
		if owner, taken := s.numbers[snap.LoanNumber]; taken && owner != snap.ID {
			return apperr.Conflict("loan number %s already exists", snap.LoanNumber)
		}
		s.loans[snap.ID] = snap
		s.numbers[snap.LoanNumber] = snap.ID
		return nil
	}
	if current.Version != snap.Version {
		return apperr.Conflict("loan %s was modified concurrently (version %d, stored %d)", snap.ID, snap.Version, current.Version)
	}
	snap.Version = current.Version + 1
	s.loans[snap.ID] = snap
	return nil
}

func (s *Store) putPayment(payment model.LoanPayment) error {
	snap := payment.Snapshot()
	if _, ok := s.loans[snap.LoanID]; !ok {
		return apperr.NotFound("loan", snap.LoanID)
	}
	current, exists := s.payments[snap.ID]
	if !exists {
		s.payments[snap.ID] = snap
		return nil
	}
	if current.Version != snap.Version {
		return apperr.Conflict("payment %s was modified concurrently (version %d, stored %d)", snap.ID, snap.Version, current.Version)
	}
	snap.Version = current.Version + 1
	s.payments[snap.ID] = snap
	return nil
}

// ---------------------------------------------------------------------------
// Reads (callers hold s.mu for reading)
// ---------------------------------------------------------------------------

func (s *Store) getLoan(id string) (model.Loan, error) {
	snap, ok := s.loans[id]
	if !ok {
		return model.Loan{}, apperr.NotFound("loan", id)
	}
	return model.ReconstructLoan(snap), nil
}

func (s *Store) getPayment(id string) (model.LoanPayment, error) {
	snap, ok := s.payments[id]
	if !ok {
		return model.LoanPayment{}, apperr.NotFound("payment", id)
	}
	return model.ReconstructLoanPayment(snap), nil
}

// loanLock returns the mutex serializing writers of one loan.
func (s *Store) loanLock(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// ---------------------------------------------------------------------------
// LoanRepo
// ---------------------------------------------------------------------------

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	s *Store
}

func (r *LoanRepo) Save(_ context.Context, loan model.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.putLoan(loan)
}

func (r *LoanRepo) FindByID(_ context.Context, id string) (model.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.getLoan(id)
}

func (r *LoanRepo) FindByLoanNumber(_ context.Context, loanNumber string) (model.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.numbers[loanNumber]
	if !ok {
		return model.Loan{}, apperr.NotFound("loan", loanNumber)
	}
	return r.s.getLoan(id)
}

// List returns matching loans, newest first. A zero limit returns all.
func (r *LoanRepo) List(_ context.Context, f port.LoanFilter) ([]model.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.Loan
	for _, snap := range r.s.loans {
		if f.PropertyID != "" && snap.PropertyID != f.PropertyID {
			continue
		}
		if len(f.Statuses) > 0 && !containsLoanStatus(f.Statuses, snap.Status) {
			continue
		}
		out = append(out, model.ReconstructLoan(snap))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().After(out[j].CreatedAt())
		}
		return out[i].ID() < out[j].ID()
	})

	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

// Delete removes the loan, its payments and its documents.
func (r *LoanRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snap, ok := r.s.loans[id]
	if !ok {
		return apperr.NotFound("loan", id)
	}
	delete(r.s.loans, id)
	delete(r.s.numbers, snap.LoanNumber)
	for pid, p := range r.s.payments {
		if p.LoanID == id {
			delete(r.s.payments, pid)
		}
	}
	for did, d := range r.s.documents {
		if d.LoanID == id {
			delete(r.s.documents, did)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// PaymentRepo
// ---------------------------------------------------------------------------

// PaymentRepo implements port.PaymentRepository.
type PaymentRepo struct {
	s *Store
}

func (r *PaymentRepo) Save(_ context.Context, payment model.LoanPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.putPayment(payment)
}

func (r *PaymentRepo) FindByID(_ context.Context, id string) (model.LoanPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.getPayment(id)
}

// List returns matching payments ordered by due date, newest first.
func (r *PaymentRepo) List(_ context.Context, f port.PaymentFilter) ([]model.LoanPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.LoanPayment
	for _, snap := range r.s.payments {
		if f.LoanID != "" && snap.LoanID != f.LoanID {
			continue
		}
		if len(f.Statuses) > 0 && !containsPaymentStatus(f.Statuses, snap.Status) {
			continue
		}
		due, paid := snap.Details.DueDate, snap.Details.PaymentDate
		if !f.DueFrom.IsZero() && due.Before(f.DueFrom) {
			continue
		}
		if !f.DueBefore.IsZero() && !due.Before(f.DueBefore) {
			continue
		}
		if !f.PaidFrom.IsZero() && paid.Before(f.PaidFrom) {
			continue
		}
		if !f.PaidBefore.IsZero() && !paid.Before(f.PaidBefore) {
			continue
		}
		out = append(out, model.ReconstructLoanPayment(snap))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate().Equal(out[j].DueDate()) {
			return out[i].DueDate().After(out[j].DueDate())
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

// ---------------------------------------------------------------------------
// DocumentRepo
// ---------------------------------------------------------------------------

// DocumentRepo implements port.DocumentRepository.
type DocumentRepo struct {
	s *Store
}

func (r *DocumentRepo) Save(_ context.Context, doc model.LoanDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.loans[doc.LoanID]; !ok {
		return apperr.NotFound("loan", doc.LoanID)
	}
	r.s.documents[doc.ID] = doc
	return nil
}

func (r *DocumentRepo) FindByID(_ context.Context, id string) (model.LoanDocument, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	doc, ok := r.s.documents[id]
	if !ok {
		return model.LoanDocument{}, apperr.NotFound("document", id)
	}
	return doc, nil
}

// ListByLoan returns the loan's documents, oldest upload first.
func (r *DocumentRepo) ListByLoan(_ context.Context, loanID string) ([]model.LoanDocument, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.LoanDocument
	for _, d := range r.s.documents {
		if d.LoanID == loanID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadDate.Equal(out[j].UploadDate) {
			return out[i].UploadDate.Before(out[j].UploadDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func containsLoanStatus(set []valueobject.LoanStatus, s valueobject.LoanStatus) bool {
	for _, v := range set {
		if v.Equal(s) {
			return true
		}
	}
	return false
}

func containsPaymentStatus(set []valueobject.PaymentStatus, s valueobject.PaymentStatus) bool {
	for _, v := range set {
		if v.Equal(s) {
			return true
		}
	}
	return false
}
