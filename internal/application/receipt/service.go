package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sjpiano/paytrack/internal/domain"
)

// Fields is everything the rendering collaborator needs to produce the
// receipt document.
type Fields struct {
	ReceiptNumber string
	PaidOn        time.Time
	StudentName   string
	StudentEmail  string
	Amount        float64
}

type renderer interface {
	Render(f Fields) ([]byte, error)
}

type mailer interface {
	// SendWithAttachment delivers the document to the recipient and always
	// copies the configured audit address.
	SendWithAttachment(to, subject, body, filename string, attachment []byte) error
}

type archive interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type receiptStore interface {
	Get(ctx context.Context, invoiceNumber string) (*domain.ReceiptRecord, error)
	PutNew(ctx context.Context, rec *domain.ReceiptRecord) error
}

type Service interface {
	// Issue renders the receipt for an invoice, archives it, emails it, and
	// records the delivery. Keyed by invoice number, it is idempotent: an
	// already-recorded delivery is returned as-is without re-sending.
	Issue(ctx context.Context, studentName, studentEmail string, amount float64, invoiceNumber string, feePaid time.Time) (*domain.ReceiptRecord, error)
	// Issued reports whether the invoice already has a delivery record.
	Issued(ctx context.Context, invoiceNumber string) (bool, *domain.ReceiptRecord, error)
}

type ServiceDeps struct {
	Renderer    renderer
	Mailer      mailer
	Archive     archive // optional
	ReceiptRepo receiptStore
	AcademyName string
}

type service struct {
	renderer    renderer
	mailer      mailer
	archive     archive
	repo        receiptStore
	academyName string
	now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	return &service{
		renderer:    deps.Renderer,
		mailer:      deps.Mailer,
		archive:     deps.Archive,
		repo:        deps.ReceiptRepo,
		academyName: deps.AcademyName,
		now:         time.Now,
	}
}

func (s *service) Issued(ctx context.Context, invoiceNumber string) (bool, *domain.ReceiptRecord, error) {
	rec, err := s.repo.Get(ctx, invoiceNumber)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("check receipt %s: %w", invoiceNumber, err)
	}
	return true, rec, nil
}

func (s *service) Issue(ctx context.Context, studentName, studentEmail string, amount float64, invoiceNumber string, feePaid time.Time) (*domain.ReceiptRecord, error) {
	issued, rec, err := s.Issued(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if issued {
		slog.Info("receipt already issued, skipping send",
			"invoice_number", invoiceNumber, "sent_to", rec.SentTo)
		return rec, nil
	}

	pdf, err := s.renderer.Render(Fields{
		ReceiptNumber: invoiceNumber,
		PaidOn:        feePaid.UTC(),
		StudentName:   studentName,
		StudentEmail:  studentEmail,
		Amount:        amount,
	})
	if err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", invoiceNumber, err)
	}

	filename := fmt.Sprintf("Receipt_%s.pdf", invoiceNumber)

	archiveURL := ""
	if s.archive != nil {
		url, err := s.archive.Upload(ctx, "receipts/"+filename, pdf, "application/pdf")
		if err != nil {
			// Delivery still proceeds; the archive is a convenience copy.
			slog.Warn("receipt archive upload failed", "invoice_number", invoiceNumber, "error", err)
		} else {
			archiveURL = url
		}
	}

	subject := fmt.Sprintf("Receipt for lesson payment %s | %s", feePaid.UTC().Format("Jan 2006"), s.academyName)
	body := "We have attached a digital copy of your receipt for your convenience."
	if err := s.mailer.SendWithAttachment(studentEmail, subject, body, filename, pdf); err != nil {
		return nil, fmt.Errorf("send receipt %s to %s: %w", invoiceNumber, studentEmail, err)
	}

	record := &domain.ReceiptRecord{
		InvoiceNumber: invoiceNumber,
		SentTo:        studentEmail,
		ArchiveURL:    archiveURL,
		SentAt:        s.now().UTC(),
	}
	if err := s.repo.PutNew(ctx, record); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent run beat us to the record; the send already
			// happened on one side, so treat ours as the delivery of record.
			slog.Warn("receipt record already written by a concurrent run", "invoice_number", invoiceNumber)
			return record, nil
		}
		return nil, fmt.Errorf("record receipt %s: %w", invoiceNumber, err)
	}
	return record, nil
}
