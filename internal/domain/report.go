package domain

import "time"

// Disposition is the terminal classification of one notification.
type Disposition string

const (
	DispositionProcessed Disposition = "processed"
	DispositionSkipped   Disposition = "skipped"
	DispositionError     Disposition = "error"
)

// Run statuses for a whole reconciliation.
const (
	RunStatusOK              = "ok"
	RunStatusNoNotifications = "no_notifications"
)

// Outcome records how one notification ended up.
type Outcome struct {
	Notification  PaymentNotification `json:"notification"`
	Disposition   Disposition         `json:"disposition"`
	Reason        string              `json:"reason,omitempty"`
	InvoiceNumber string              `json:"invoice_number,omitempty"`
}

// Report summarizes one reconciliation run. It is returned to the caller
// and never persisted.
type Report struct {
	RunAt    time.Time `json:"run_at"`
	Status   string    `json:"status"`
	Found    int       `json:"found"`
	Outcomes []Outcome `json:"outcomes"`
}

// Errors returns the number of error outcomes in the report.
func (r *Report) Errors() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Disposition == DispositionError {
			n++
		}
	}
	return n
}
