package domain

import (
	"fmt"
	"strings"
	"time"
)

// PaymentStatusPaid is the only status the reconciler ever writes; invoices
// are created after the money has already arrived.
const PaymentStatusPaid = "Paid"

// StudentSnapshot is the denormalized student identity carried on an invoice.
type StudentSnapshot struct {
	Name  string `json:"name" dynamodbav:"name"`
	Email string `json:"email" dynamodbav:"email"`
}

// Invoice is a billing record for one received payment. Invoices are created
// exactly once per (student email, calendar month) and never mutated.
type Invoice struct {
	// MonthKey is the table partition key: lower(email) + "#" + YYYY-MM of
	// the fee-paid date in UTC. The conditional insert on this key is what
	// enforces the once-per-month invariant.
	MonthKey      string          `json:"-" dynamodbav:"month_key"`
	InvoiceNumber string          `json:"invoice_number" dynamodbav:"invoice_number"`
	Student       StudentSnapshot `json:"student" dynamodbav:"student"`
	TotalAmount   float64         `json:"total_amount" dynamodbav:"total_amount"`
	FeePaidDate   time.Time       `json:"fee_paid_date" dynamodbav:"fee_paid_date"` // UTC
	PaymentStatus string          `json:"payment_status" dynamodbav:"payment_status"`
	CreatedAt     time.Time       `json:"created" dynamodbav:"created_at"`
}

// MonthKey derives the dedup key for a student email and a fee-paid date.
// The key is month-granular, so the half-open window
// [month start, next month start) in UTC needs no range query: a payment at
// exactly month start lands in that month, one at the next month start in
// the next.
func MonthKey(email string, feePaid time.Time) string {
	return fmt.Sprintf("%s#%s", strings.ToLower(email), feePaid.UTC().Format("2006-01"))
}

// ReceiptRecord marks that the receipt for an invoice was rendered and
// delivered. Its presence makes issuance idempotent across re-runs.
type ReceiptRecord struct {
	InvoiceNumber string    `json:"invoice_number" dynamodbav:"invoice_number"`
	SentTo        string    `json:"sent_to" dynamodbav:"sent_to"`
	ArchiveURL    string    `json:"archive_url,omitempty" dynamodbav:"archive_url"`
	SentAt        time.Time `json:"sent_at" dynamodbav:"sent_at"`
}
