package extract

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sjpiano/paytrack/internal/domain"
)

// RawMessage is one unparsed deposit-notification message as returned by the
// mail source: the subject line plus the Reply-To and Date header values
// (empty string when the header is absent).
type RawMessage struct {
	MessageID string
	Subject   string
	ReplyTo   string
	Date      string
}

var (
	// "received $200.00 from Jane Doe and it has been ..."
	payerRe  = regexp.MustCompile(`(?i)received \$[\d.]+\s+from\s+(.+?)\s+and\s+it\s+has\s+been`)
	amountRe = regexp.MustCompile(`\$(\d+(?:\.\d+)?)`)
	// Bare address inside a Reply-To value, with or without a display name.
	addressRe = regexp.MustCompile(`[\w.\-+]+@[\w.\-]+`)
)

// Notification parses one raw message into a PaymentNotification. It never
// fails: any field that cannot be recovered is left nil, and the notification
// is still produced so the run can report it.
func Notification(raw RawMessage) domain.PaymentNotification {
	n := domain.PaymentNotification{
		MessageID: raw.MessageID,
		Subject:   raw.Subject,
	}

	if m := payerRe.FindStringSubmatch(raw.Subject); m != nil {
		name := strings.TrimSpace(m[1])
		n.PayerName = &name
	}
	if m := amountRe.FindStringSubmatch(raw.Subject); m != nil {
		if amt, err := decimal.NewFromString(m[1]); err == nil {
			n.Amount = &amt
		}
	}
	if raw.ReplyTo != "" {
		addr := raw.ReplyTo
		if m := addressRe.FindString(raw.ReplyTo); m != "" {
			addr = m
		}
		n.ReplyTo = &addr
	}
	if raw.Date != "" {
		if t, err := mail.ParseDate(raw.Date); err == nil {
			utc := t.UTC()
			n.ReceivedAt = &utc
		}
	}
	return n
}
