package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const depositSubject = "INTERAC e-Transfer: You have received $200.00 from Jane Doe and it has been automatically deposited."

func TestNotificationFullSubject(t *testing.T) {
	n := Notification(RawMessage{
		MessageID: "msg-1",
		Subject:   depositSubject,
		ReplyTo:   "Jane Doe <jane@example.com>",
		Date:      "Sun, 15 Feb 2026 09:30:00 -0500",
	})

	require.NotNil(t, n.PayerName)
	assert.Equal(t, "Jane Doe", *n.PayerName)

	require.NotNil(t, n.Amount)
	assert.True(t, n.Amount.Equal(decimal.RequireFromString("200.00")))

	require.NotNil(t, n.ReplyTo)
	assert.Equal(t, "jane@example.com", *n.ReplyTo)

	require.NotNil(t, n.ReceivedAt)
	assert.Equal(t, time.Date(2026, 2, 15, 14, 30, 0, 0, time.UTC), *n.ReceivedAt)
	assert.Equal(t, time.UTC, n.ReceivedAt.Location())

	assert.True(t, n.Complete())
}

func TestNotificationIsDeterministic(t *testing.T) {
	raw := RawMessage{
		MessageID: "msg-1",
		Subject:   depositSubject,
		ReplyTo:   "jane@example.com",
		Date:      "Sun, 15 Feb 2026 14:30:00 +0000",
	}
	a := Notification(raw)
	b := Notification(raw)

	assert.Equal(t, *a.PayerName, *b.PayerName)
	assert.True(t, a.Amount.Equal(*b.Amount))
	assert.Equal(t, *a.ReplyTo, *b.ReplyTo)
	assert.Equal(t, *a.ReceivedAt, *b.ReceivedAt)
}

func TestNotificationPayerPatternIsCaseInsensitive(t *testing.T) {
	n := Notification(RawMessage{
		Subject: "You Have RECEIVED $75 FROM Bob Lee AND IT HAS BEEN automatically deposited",
	})
	require.NotNil(t, n.PayerName)
	assert.Equal(t, "Bob Lee", *n.PayerName)
}

func TestNotificationUnparsableFieldsAreNil(t *testing.T) {
	tests := []struct {
		name string
		raw  RawMessage
	}{
		{"empty subject", RawMessage{Subject: ""}},
		{"no deposit pattern", RawMessage{Subject: "Your statement is ready"}},
		{"amount without payer", RawMessage{Subject: "You sent $50.00 to someone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notification(tt.raw)
			assert.Nil(t, n.PayerName)
			assert.Nil(t, n.ReplyTo)
			assert.Nil(t, n.ReceivedAt)
			assert.False(t, n.Complete())
		})
	}
}

func TestNotificationAmountWithoutPayer(t *testing.T) {
	n := Notification(RawMessage{Subject: "You sent $50.25 to someone"})
	require.NotNil(t, n.Amount)
	assert.True(t, n.Amount.Equal(decimal.RequireFromString("50.25")))
	assert.Nil(t, n.PayerName)
}

func TestNotificationReplyToFallsBackToRawHeader(t *testing.T) {
	n := Notification(RawMessage{Subject: depositSubject, ReplyTo: "not-an-address"})
	require.NotNil(t, n.ReplyTo)
	assert.Equal(t, "not-an-address", *n.ReplyTo)
}

func TestNotificationBadDateIsNil(t *testing.T) {
	n := Notification(RawMessage{Subject: depositSubject, Date: "yesterday-ish"})
	assert.Nil(t, n.ReceivedAt)
}
