package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
	"github.com/sjpiano/paytrack/internal/application/directory"
	"github.com/sjpiano/paytrack/internal/application/extract"
	"github.com/sjpiano/paytrack/internal/application/ledger"
	"github.com/sjpiano/paytrack/internal/application/receipt"
	"github.com/sjpiano/paytrack/internal/application/reconcile"
	"github.com/sjpiano/paytrack/internal/domain"
	"github.com/sjpiano/paytrack/internal/pkg/validate"
)

type mailSource interface {
	ListMonthlyDepositNotifications(ctx context.Context) ([]extract.RawMessage, error)
}

// NotificationSummary is one deposit notification with whatever fields
// extraction could recover from it.
type NotificationSummary struct {
	MessageID  string `json:"message_id" jsonschema:"provider message identifier"`
	Subject    string `json:"subject" jsonschema:"raw subject line"`
	PayerName  string `json:"payer_name,omitempty" jsonschema:"payer display name, empty when not recoverable"`
	Email      string `json:"email,omitempty" jsonschema:"payer reply address, empty when not recoverable"`
	Amount     string `json:"amount,omitempty" jsonschema:"deposited amount, empty when not recoverable"`
	ReceivedAt string `json:"received_at,omitempty" jsonschema:"RFC3339 receipt timestamp, empty when not recoverable"`
	Complete   bool   `json:"complete" jsonschema:"true when every matching field was recovered"`
}

// SearchTransferEmailsInput is empty; the search window is always the
// current calendar month.
type SearchTransferEmailsInput struct{}

// SearchTransferEmailsResult lists the deposit notifications found this month.
type SearchTransferEmailsResult struct {
	Found         int                   `json:"found" jsonschema:"number of notifications found"`
	Notifications []NotificationSummary `json:"notifications" jsonschema:"extracted notifications"`
}

// SearchTransferEmailsTool defines the schema for the mailbox search tool.
func SearchTransferEmailsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_transfer_emails",
		Description: "Searches the mailbox for auto-deposit e-Transfer notifications received since the start of the current month and extracts payer, amount, and date from each.",
	}
}

// SearchTransferEmailsHandler runs the mailbox search and extraction.
func SearchTransferEmailsHandler(source mailSource) mcp.ToolHandlerFor[SearchTransferEmailsInput, SearchTransferEmailsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SearchTransferEmailsInput) (*mcp.CallToolResult, SearchTransferEmailsResult, error) {
		raws, err := source.ListMonthlyDepositNotifications(ctx)
		if err != nil {
			return nil, SearchTransferEmailsResult{}, fmt.Errorf("search mailbox: %w", err)
		}

		result := SearchTransferEmailsResult{
			Found:         len(raws),
			Notifications: make([]NotificationSummary, 0, len(raws)),
		}
		for _, raw := range raws {
			result.Notifications = append(result.Notifications, summarize(extract.Notification(raw)))
		}
		return nil, result, nil
	}
}

func summarize(n domain.PaymentNotification) NotificationSummary {
	s := NotificationSummary{
		MessageID: n.MessageID,
		Subject:   n.Subject,
		Complete:  n.Complete(),
	}
	if n.PayerName != nil {
		s.PayerName = *n.PayerName
	}
	if n.ReplyTo != nil {
		s.Email = *n.ReplyTo
	}
	if n.Amount != nil {
		s.Amount = n.Amount.String()
	}
	if n.ReceivedAt != nil {
		s.ReceivedAt = n.ReceivedAt.Format(time.RFC3339)
	}
	return s
}

// FindStudentInput carries the three identifying payment facts.
type FindStudentInput struct {
	ParentName string `json:"parent_name" jsonschema:"payer display name as it appears on the transfer" validate:"required"`
	Email      string `json:"email" jsonschema:"payer email address" validate:"required,email"`
	Amount     string `json:"amount" jsonschema:"deposited amount, e.g. 200 or 200.99" validate:"required"`
}

// FindStudentResult is the matched directory record.
type FindStudentResult struct {
	StudentID   string `json:"student_id" jsonschema:"directory record identifier"`
	StudentName string `json:"student_name" jsonschema:"student name"`
	ParentName  string `json:"parent_name" jsonschema:"parent name on file"`
	Email       string `json:"email" jsonschema:"email on file"`
	Amount      string `json:"amount" jsonschema:"expected monthly fee in whole dollars"`
}

// FindStudentTool defines the schema for the directory lookup tool.
func FindStudentTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "find_student_by_parent",
		Description: "Looks up the student directory by parent name, email, and amount. All three must agree with a single active record.",
	}
}

// FindStudentHandler resolves a payer against the directory.
func FindStudentHandler(svc directory.Service) mcp.ToolHandlerFor[FindStudentInput, FindStudentResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input FindStudentInput) (*mcp.CallToolResult, FindStudentResult, error) {
		if err := validate.Struct(input); err != nil {
			return nil, FindStudentResult{}, fmt.Errorf("invalid input: %w", err)
		}
		amount, err := decimal.NewFromString(input.Amount)
		if err != nil {
			return nil, FindStudentResult{}, fmt.Errorf("invalid amount %q: %w", input.Amount, err)
		}

		st, err := svc.Match(ctx, input.ParentName, input.Email, amount)
		if err != nil {
			return nil, FindStudentResult{}, err
		}
		return nil, FindStudentResult{
			StudentID:   st.StudentID,
			StudentName: st.Name,
			ParentName:  st.ParentName,
			Email:       st.Email,
			Amount:      st.Amount,
		}, nil
	}
}

// CheckInvoiceInput identifies the student whose monthly invoice is checked.
type CheckInvoiceInput struct {
	Email string `json:"email" jsonschema:"student email address" validate:"required,email"`
}

// CheckInvoiceResult reports whether the current month is already invoiced.
type CheckInvoiceResult struct {
	Exists        bool   `json:"exists" jsonschema:"true when an invoice exists for the current month"`
	InvoiceNumber string `json:"invoice_number,omitempty" jsonschema:"existing invoice number, when present"`
	FeePaidDate   string `json:"fee_paid_date,omitempty" jsonschema:"RFC3339 fee-paid date of the existing invoice"`
}

// CheckInvoiceTool defines the schema for the duplicate-invoice check.
func CheckInvoiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "check_invoice_exists",
		Description: "Reports whether the student already has an invoice for the current calendar month.",
	}
}

// CheckInvoiceHandler checks the monthly ledger for the student.
func CheckInvoiceHandler(svc ledger.Service) mcp.ToolHandlerFor[CheckInvoiceInput, CheckInvoiceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CheckInvoiceInput) (*mcp.CallToolResult, CheckInvoiceResult, error) {
		if err := validate.Struct(input); err != nil {
			return nil, CheckInvoiceResult{}, fmt.Errorf("invalid input: %w", err)
		}

		exists, inv, err := svc.Exists(ctx, input.Email)
		if err != nil {
			return nil, CheckInvoiceResult{}, err
		}
		result := CheckInvoiceResult{Exists: exists}
		if inv != nil {
			result.InvoiceNumber = inv.InvoiceNumber
			result.FeePaidDate = inv.FeePaidDate.Format(time.RFC3339)
		}
		return nil, result, nil
	}
}

// CreateInvoiceInput carries the fields of a new invoice.
type CreateInvoiceInput struct {
	StudentName string `json:"student_name" jsonschema:"student name" validate:"required"`
	Email       string `json:"email" jsonschema:"student email address" validate:"required,email"`
	Amount      string `json:"amount" jsonschema:"paid amount, e.g. 200 or 200.99" validate:"required"`
	FeePaidDate string `json:"fee_paid_date" jsonschema:"RFC3339 timestamp the payment was received" validate:"required"`
}

// CreateInvoiceResult describes the invoice that was recorded.
type CreateInvoiceResult struct {
	InvoiceNumber string  `json:"invoice_number" jsonschema:"assigned invoice number"`
	MonthKey      string  `json:"month_key" jsonschema:"dedup key the invoice is stored under"`
	TotalAmount   float64 `json:"total_amount" jsonschema:"invoiced amount"`
	CreatedAt     string  `json:"created_at" jsonschema:"RFC3339 creation timestamp"`
}

// CreateInvoiceTool defines the schema for invoice creation.
func CreateInvoiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_invoice",
		Description: "Records a paid invoice for the student. Fails when the student's month is already invoiced.",
	}
}

// CreateInvoiceHandler records one invoice in the ledger.
func CreateInvoiceHandler(svc ledger.Service) mcp.ToolHandlerFor[CreateInvoiceInput, CreateInvoiceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateInvoiceInput) (*mcp.CallToolResult, CreateInvoiceResult, error) {
		if err := validate.Struct(input); err != nil {
			return nil, CreateInvoiceResult{}, fmt.Errorf("invalid input: %w", err)
		}
		amount, err := decimal.NewFromString(input.Amount)
		if err != nil {
			return nil, CreateInvoiceResult{}, fmt.Errorf("invalid amount %q: %w", input.Amount, err)
		}
		feePaid, err := time.Parse(time.RFC3339, input.FeePaidDate)
		if err != nil {
			return nil, CreateInvoiceResult{}, fmt.Errorf("invalid fee_paid_date %q: %w", input.FeePaidDate, err)
		}

		inv, err := svc.Create(ctx, input.StudentName, input.Email, amount, feePaid)
		if errors.Is(err, domain.ErrConflict) {
			return nil, CreateInvoiceResult{}, fmt.Errorf("invoice already exists for %s this month", input.Email)
		}
		if err != nil {
			return nil, CreateInvoiceResult{}, err
		}
		return nil, CreateInvoiceResult{
			InvoiceNumber: inv.InvoiceNumber,
			MonthKey:      inv.MonthKey,
			TotalAmount:   inv.TotalAmount,
			CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
		}, nil
	}
}

// SendReceiptInput carries everything needed to render and deliver a receipt.
type SendReceiptInput struct {
	StudentName   string  `json:"student_name" jsonschema:"student name shown on the receipt" validate:"required"`
	Email         string  `json:"email" jsonschema:"recipient email address" validate:"required,email"`
	Amount        float64 `json:"amount" jsonschema:"paid amount" validate:"required,gt=0"`
	InvoiceNumber string  `json:"invoice_number" jsonschema:"invoice number the receipt covers" validate:"required"`
	FeePaidDate   string  `json:"fee_paid_date" jsonschema:"RFC3339 timestamp the payment was received" validate:"required"`
}

// SendReceiptResult describes the delivery that happened, or the one that
// already had.
type SendReceiptResult struct {
	SentTo      string `json:"sent_to" jsonschema:"recipient address"`
	ArchiveURL  string `json:"archive_url,omitempty" jsonschema:"object-store location of the PDF, when archived"`
	SentAt      string `json:"sent_at" jsonschema:"RFC3339 delivery timestamp"`
	AlreadySent bool   `json:"already_sent" jsonschema:"true when the invoice had a prior delivery and none was repeated"`
}

// SendReceiptTool defines the schema for receipt delivery.
func SendReceiptTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "send_receipt_email",
		Description: "Renders the PDF receipt for an invoice and emails it to the student. Repeat calls for the same invoice do not resend.",
	}
}

// SendReceiptHandler issues one receipt.
func SendReceiptHandler(svc receipt.Service) mcp.ToolHandlerFor[SendReceiptInput, SendReceiptResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SendReceiptInput) (*mcp.CallToolResult, SendReceiptResult, error) {
		if err := validate.Struct(input); err != nil {
			return nil, SendReceiptResult{}, fmt.Errorf("invalid input: %w", err)
		}
		feePaid, err := time.Parse(time.RFC3339, input.FeePaidDate)
		if err != nil {
			return nil, SendReceiptResult{}, fmt.Errorf("invalid fee_paid_date %q: %w", input.FeePaidDate, err)
		}

		issued, prior, err := svc.Issued(ctx, input.InvoiceNumber)
		if err != nil {
			return nil, SendReceiptResult{}, err
		}
		if issued {
			return nil, SendReceiptResult{
				SentTo:      prior.SentTo,
				ArchiveURL:  prior.ArchiveURL,
				SentAt:      prior.SentAt.Format(time.RFC3339),
				AlreadySent: true,
			}, nil
		}

		rec, err := svc.Issue(ctx, input.StudentName, input.Email, input.Amount, input.InvoiceNumber, feePaid)
		if err != nil {
			return nil, SendReceiptResult{}, err
		}
		return nil, SendReceiptResult{
			SentTo:     rec.SentTo,
			ArchiveURL: rec.ArchiveURL,
			SentAt:     rec.SentAt.Format(time.RFC3339),
		}, nil
	}
}

// OutcomeSummary is one notification's disposition within a run.
type OutcomeSummary struct {
	MessageID     string `json:"message_id" jsonschema:"provider message identifier"`
	PayerName     string `json:"payer_name,omitempty" jsonschema:"payer name, when extracted"`
	Disposition   string `json:"disposition" jsonschema:"processed, skipped, or error"`
	Reason        string `json:"reason" jsonschema:"human-readable explanation of the disposition"`
	InvoiceNumber string `json:"invoice_number,omitempty" jsonschema:"invoice number, when one was created"`
}

// RunReconciliationInput is empty; a run always covers the current month.
type RunReconciliationInput struct{}

// RunReconciliationResult is the per-notification report of one run.
type RunReconciliationResult struct {
	Status    string           `json:"status" jsonschema:"run status (ok, no_notifications)"`
	RunAt     string           `json:"run_at" jsonschema:"RFC3339 timestamp of the run"`
	Found     int              `json:"found" jsonschema:"notifications found"`
	Processed int              `json:"processed" jsonschema:"notifications fully processed"`
	Skipped   int              `json:"skipped" jsonschema:"notifications skipped"`
	Errors    int              `json:"errors" jsonschema:"notifications that failed"`
	Outcomes  []OutcomeSummary `json:"outcomes" jsonschema:"per-notification outcomes"`
}

// RunReconciliationTool defines the schema for the end-to-end run.
func RunReconciliationTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "run_reconciliation",
		Description: "Runs one full reconciliation over the current month's deposit notifications and returns the per-notification report.",
	}
}

// RunReconciliationHandler executes one reconciliation run.
func RunReconciliationHandler(svc reconcile.Service) mcp.ToolHandlerFor[RunReconciliationInput, RunReconciliationResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ RunReconciliationInput) (*mcp.CallToolResult, RunReconciliationResult, error) {
		report, err := svc.Run(ctx)
		if err != nil {
			return nil, RunReconciliationResult{}, fmt.Errorf("reconciliation run: %w", err)
		}

		result := RunReconciliationResult{
			Status:   report.Status,
			RunAt:    report.RunAt.Format(time.RFC3339),
			Found:    report.Found,
			Outcomes: make([]OutcomeSummary, 0, len(report.Outcomes)),
		}
		for _, out := range report.Outcomes {
			switch out.Disposition {
			case domain.DispositionProcessed:
				result.Processed++
			case domain.DispositionSkipped:
				result.Skipped++
			case domain.DispositionError:
				result.Errors++
			}
			summary := OutcomeSummary{
				MessageID:     out.Notification.MessageID,
				Disposition:   string(out.Disposition),
				Reason:        out.Reason,
				InvoiceNumber: out.InvoiceNumber,
			}
			if out.Notification.PayerName != nil {
				summary.PayerName = *out.Notification.PayerName
			}
			result.Outcomes = append(result.Outcomes, summary)
		}
		return nil, result, nil
	}
}
