package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjpiano/paytrack/internal/domain"
	"github.com/sjpiano/paytrack/internal/pkg/id"
)

type invoiceStore interface {
	// GetByMonthKey returns the invoice stored under the dedup key, or
	// domain.ErrNotFound.
	GetByMonthKey(ctx context.Context, monthKey string) (*domain.Invoice, error)
	// PutNew inserts the invoice and fails with domain.ErrConflict when an
	// invoice already holds the same month key.
	PutNew(ctx context.Context, inv *domain.Invoice) error
}

type Service interface {
	// Exists reports whether the student already has an invoice whose
	// fee-paid date falls in the current calendar month (UTC). The existing
	// invoice is returned for diagnostic reporting when present.
	Exists(ctx context.Context, studentEmail string) (bool, *domain.Invoice, error)
	// Create records a new invoice. The insert is conditional on the
	// (student email, calendar month) key being free, so two racing callers
	// cannot both create one; the loser gets domain.ErrConflict.
	Create(ctx context.Context, studentName, studentEmail string, amount decimal.Decimal, feePaid time.Time) (*domain.Invoice, error)
}

type service struct {
	repo invoiceStore
	now  func() time.Time
}

func NewService(repo invoiceStore) Service {
	return &service{repo: repo, now: time.Now}
}

// NewServiceAt is NewService with an injectable clock for the monthly window.
func NewServiceAt(repo invoiceStore, now func() time.Time) Service {
	return &service{repo: repo, now: now}
}

func (s *service) Exists(ctx context.Context, studentEmail string) (bool, *domain.Invoice, error) {
	key := domain.MonthKey(studentEmail, s.now().UTC())
	inv, err := s.repo.GetByMonthKey(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("check invoice for %s: %w", studentEmail, err)
	}
	return true, inv, nil
}

func (s *service) Create(ctx context.Context, studentName, studentEmail string, amount decimal.Decimal, feePaid time.Time) (*domain.Invoice, error) {
	inv := &domain.Invoice{
		MonthKey:      domain.MonthKey(studentEmail, feePaid),
		InvoiceNumber: id.New(),
		Student: domain.StudentSnapshot{
			Name:  studentName,
			Email: studentEmail,
		},
		TotalAmount:   amount.InexactFloat64(),
		FeePaidDate:   feePaid.UTC(),
		PaymentStatus: domain.PaymentStatusPaid,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.PutNew(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice for %s: %w", studentEmail, err)
	}
	return inv, nil
}
