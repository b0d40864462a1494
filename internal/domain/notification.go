package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentNotification is one parsed e-Transfer deposit notification.
// Fields that could not be recovered from the raw message are nil; the
// notification is still produced and becomes a non-match downstream.
type PaymentNotification struct {
	MessageID  string           `json:"message_id"`
	Subject    string           `json:"subject"`
	ReplyTo    *string          `json:"reply_to"`
	ReceivedAt *time.Time       `json:"date_received"` // UTC
	PayerName  *string          `json:"parent_name"`
	Amount     *decimal.Decimal `json:"amount"`
}

// Complete reports whether every field needed by the matching and
// invoicing stages was extracted.
func (n *PaymentNotification) Complete() bool {
	return n.PayerName != nil && n.ReplyTo != nil && n.Amount != nil && n.ReceivedAt != nil
}
