package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sjpiano/paytrack/internal/application/receipt"
	"github.com/sjpiano/paytrack/internal/config"
)

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer(&config.Config{
		AcademyName:    "SJ Piano Academy.",
		AcademyAddress: "2869 Battleford Rd",
		AcademyCity:    "Mississauga,ON L5N 2S6",
	})

	out, err := r.Render(receipt.Fields{
		ReceiptNumber: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		PaidOn:        time.Date(2026, 2, 15, 14, 30, 0, 0, time.UTC),
		StudentName:   "Yanish",
		StudentEmail:  "jane@example.com",
		Amount:        200.0,
	})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}
