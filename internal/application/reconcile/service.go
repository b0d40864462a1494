package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjpiano/paytrack/internal/application/extract"
	"github.com/sjpiano/paytrack/internal/domain"
)

type mailSource interface {
	// ListMonthlyDepositNotifications returns every deposit-notification
	// message received from the start of the current calendar month (UTC)
	// to now. An empty list is a valid result.
	ListMonthlyDepositNotifications(ctx context.Context) ([]extract.RawMessage, error)
}

type matcher interface {
	Match(ctx context.Context, parentName, email string, amount decimal.Decimal) (*domain.Student, error)
}

type invoiceLedger interface {
	Exists(ctx context.Context, studentEmail string) (bool, *domain.Invoice, error)
	Create(ctx context.Context, studentName, studentEmail string, amount decimal.Decimal, feePaid time.Time) (*domain.Invoice, error)
}

type receiptIssuer interface {
	Issue(ctx context.Context, studentName, studentEmail string, amount float64, invoiceNumber string, feePaid time.Time) (*domain.ReceiptRecord, error)
	Issued(ctx context.Context, invoiceNumber string) (bool, *domain.ReceiptRecord, error)
}

type alerter interface {
	Alert(ctx context.Context, message string) error
}

type Service interface {
	// Run executes one full reconciliation: retrieval, then for each
	// notification extract -> match -> dedup -> invoice -> receipt, with
	// failures isolated per notification. Only a retrieval failure aborts
	// the run.
	Run(ctx context.Context) (*domain.Report, error)
}

type ServiceDeps struct {
	Mail    mailSource
	Matcher matcher
	Ledger  invoiceLedger
	Issuer  receiptIssuer
	Alerter alerter // optional
}

type service struct {
	mail    mailSource
	matcher matcher
	ledger  invoiceLedger
	issuer  receiptIssuer
	alerter alerter
	now     func() time.Time
}

func NewService(deps ServiceDeps) Service {
	return &service{
		mail:    deps.Mail,
		matcher: deps.Matcher,
		ledger:  deps.Ledger,
		issuer:  deps.Issuer,
		alerter: deps.Alerter,
		now:     time.Now,
	}
}

func (s *service) Run(ctx context.Context) (*domain.Report, error) {
	report := &domain.Report{RunAt: s.now().UTC(), Status: domain.RunStatusOK}

	raws, err := s.mail.ListMonthlyDepositNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deposit notifications: %w", err)
	}
	report.Found = len(raws)
	if len(raws) == 0 {
		report.Status = domain.RunStatusNoNotifications
		slog.Info("no deposit notifications this period")
		return report, nil
	}

	for _, raw := range raws {
		outcome := s.processOne(ctx, raw)
		report.Outcomes = append(report.Outcomes, outcome)
		slog.Info("notification processed",
			"message_id", raw.MessageID,
			"disposition", string(outcome.Disposition),
			"reason", outcome.Reason,
			"invoice_number", outcome.InvoiceNumber)
	}

	if n := report.Errors(); n > 0 && s.alerter != nil {
		msg := fmt.Sprintf("payment reconciliation finished with %d error(s) out of %d notification(s); manual re-run needed", n, report.Found)
		if err := s.alerter.Alert(ctx, msg); err != nil {
			slog.Warn("operator alert failed", "error", err)
		}
	}
	return report, nil
}

// processOne drives a single notification through the pipeline. Every exit
// path produces an outcome; nothing escapes the item boundary.
func (s *service) processOne(ctx context.Context, raw extract.RawMessage) domain.Outcome {
	n := extract.Notification(raw)
	out := domain.Outcome{Notification: n}

	if !n.Complete() {
		out.Disposition = domain.DispositionSkipped
		out.Reason = "unparsable notification, missing " + strings.Join(missingFields(n), ", ")
		return out
	}

	student, err := s.matcher.Match(ctx, *n.PayerName, *n.ReplyTo, *n.Amount)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		out.Disposition = domain.DispositionSkipped
		out.Reason = err.Error()
		return out
	case errors.Is(err, domain.ErrAmbiguous):
		// Directory data defect; needs an operator, not a guess.
		out.Disposition = domain.DispositionError
		out.Reason = err.Error()
		return out
	case err != nil:
		out.Disposition = domain.DispositionError
		out.Reason = err.Error()
		return out
	}

	exists, existing, err := s.ledger.Exists(ctx, student.Email)
	if err != nil {
		out.Disposition = domain.DispositionError
		out.Reason = err.Error()
		return out
	}
	if exists {
		return s.resumeOrSkip(ctx, out, student, existing)
	}

	inv, err := s.ledger.Create(ctx, student.Name, student.Email, *n.Amount, *n.ReceivedAt)
	if errors.Is(err, domain.ErrConflict) {
		// Lost the conditional insert to a concurrent run.
		out.Disposition = domain.DispositionSkipped
		out.Reason = fmt.Sprintf("invoice already created concurrently for %s this month", student.Email)
		return out
	}
	if err != nil {
		out.Disposition = domain.DispositionError
		out.Reason = err.Error()
		return out
	}
	out.InvoiceNumber = inv.InvoiceNumber

	if _, err := s.issuer.Issue(ctx, student.Name, student.Email, inv.TotalAmount, inv.InvoiceNumber, inv.FeePaidDate); err != nil {
		out.Disposition = domain.DispositionError
		out.Reason = fmt.Sprintf("invoice %s created but receipt not issued: %v", inv.InvoiceNumber, err)
		return out
	}

	out.Disposition = domain.DispositionProcessed
	return out
}

// resumeOrSkip handles a notification whose student already has this month's
// invoice: a recorded receipt means a plain duplicate skip, a missing one
// means an earlier run died between invoicing and issuance, so only the
// issuance step is completed.
func (s *service) resumeOrSkip(ctx context.Context, out domain.Outcome, student *domain.Student, existing *domain.Invoice) domain.Outcome {
	issued, _, err := s.issuer.Issued(ctx, existing.InvoiceNumber)
	if err != nil {
		out.Disposition = domain.DispositionError
		out.Reason = err.Error()
		return out
	}
	if issued {
		out.Disposition = domain.DispositionSkipped
		out.Reason = fmt.Sprintf("invoice %s already exists for %s this month", existing.InvoiceNumber, student.Email)
		return out
	}

	if _, err := s.issuer.Issue(ctx, student.Name, student.Email, existing.TotalAmount, existing.InvoiceNumber, existing.FeePaidDate); err != nil {
		out.Disposition = domain.DispositionError
		out.Reason = fmt.Sprintf("invoice %s exists but receipt re-issue failed: %v", existing.InvoiceNumber, err)
		return out
	}
	out.Disposition = domain.DispositionProcessed
	out.InvoiceNumber = existing.InvoiceNumber
	out.Reason = fmt.Sprintf("completed pending receipt for existing invoice %s", existing.InvoiceNumber)
	return out
}

func missingFields(n domain.PaymentNotification) []string {
	var missing []string
	if n.PayerName == nil {
		missing = append(missing, "payer name")
	}
	if n.ReplyTo == nil {
		missing = append(missing, "reply-to address")
	}
	if n.Amount == nil {
		missing = append(missing, "amount")
	}
	if n.ReceivedAt == nil {
		missing = append(missing, "received date")
	}
	return missing
}
