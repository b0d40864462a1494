package receipt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sjpiano/paytrack/internal/domain"
)

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) Render(f Fields) ([]byte, error) {
	args := m.Called(f)
	if b, _ := args.Get(0).([]byte); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendWithAttachment(to, subject, body, filename string, attachment []byte) error {
	return m.Called(to, subject, body, filename, attachment).Error(0)
}

type mockArchive struct{ mock.Mock }

func (m *mockArchive) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

type mockReceiptStore struct{ mock.Mock }

func (m *mockReceiptStore) Get(ctx context.Context, invoiceNumber string) (*domain.ReceiptRecord, error) {
	args := m.Called(ctx, invoiceNumber)
	if r, _ := args.Get(0).(*domain.ReceiptRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReceiptStore) PutNew(ctx context.Context, rec *domain.ReceiptRecord) error {
	return m.Called(ctx, rec).Error(0)
}

var feePaid = time.Date(2026, 2, 15, 14, 30, 0, 0, time.UTC)

func newIssuer(r *mockRenderer, ml *mockMailer, a *mockArchive, st *mockReceiptStore) Service {
	deps := ServiceDeps{Renderer: r, Mailer: ml, ReceiptRepo: st, AcademyName: "SJ Piano Academy"}
	if a != nil {
		deps.Archive = a
	}
	return NewService(deps)
}

func TestIssueRendersArchivesSendsAndRecords(t *testing.T) {
	r := &mockRenderer{}
	ml := &mockMailer{}
	a := &mockArchive{}
	st := &mockReceiptStore{}

	pdf := []byte("%PDF-1.3 fake")
	st.On("Get", mock.Anything, "INV-1").Return(nil, domain.ErrNotFound)
	r.On("Render", Fields{
		ReceiptNumber: "INV-1",
		PaidOn:        feePaid,
		StudentName:   "Yanish",
		StudentEmail:  "jane@example.com",
		Amount:        200.0,
	}).Return(pdf, nil)
	a.On("Upload", mock.Anything, "receipts/Receipt_INV-1.pdf", pdf, "application/pdf").
		Return("s3://paytrack-receipts/receipts/Receipt_INV-1.pdf", nil)
	ml.On("SendWithAttachment", "jane@example.com",
		"Receipt for lesson payment Feb 2026 | SJ Piano Academy",
		"We have attached a digital copy of your receipt for your convenience.",
		"Receipt_INV-1.pdf", pdf).Return(nil)
	st.On("PutNew", mock.Anything, mock.Anything).Return(nil)

	rec, err := newIssuer(r, ml, a, st).Issue(context.Background(), "Yanish", "jane@example.com", 200.0, "INV-1", feePaid)
	require.NoError(t, err)
	assert.Equal(t, "INV-1", rec.InvoiceNumber)
	assert.Equal(t, "jane@example.com", rec.SentTo)
	assert.Equal(t, "s3://paytrack-receipts/receipts/Receipt_INV-1.pdf", rec.ArchiveURL)
	ml.AssertExpectations(t)
	st.AssertExpectations(t)
}

func TestIssueIsIdempotentPerInvoiceNumber(t *testing.T) {
	r := &mockRenderer{}
	ml := &mockMailer{}
	st := &mockReceiptStore{}

	existing := &domain.ReceiptRecord{InvoiceNumber: "INV-1", SentTo: "jane@example.com"}
	st.On("Get", mock.Anything, "INV-1").Return(existing, nil)

	rec, err := newIssuer(r, ml, nil, st).Issue(context.Background(), "Yanish", "jane@example.com", 200.0, "INV-1", feePaid)
	require.NoError(t, err)
	assert.Equal(t, existing, rec)
	ml.AssertNotCalled(t, "SendWithAttachment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	r.AssertNotCalled(t, "Render", mock.Anything)
}

func TestIssueArchiveFailureDoesNotBlockDelivery(t *testing.T) {
	r := &mockRenderer{}
	ml := &mockMailer{}
	a := &mockArchive{}
	st := &mockReceiptStore{}

	st.On("Get", mock.Anything, "INV-1").Return(nil, domain.ErrNotFound)
	r.On("Render", mock.Anything).Return([]byte("pdf"), nil)
	a.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket gone"))
	ml.On("SendWithAttachment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	st.On("PutNew", mock.Anything, mock.Anything).Return(nil)

	rec, err := newIssuer(r, ml, a, st).Issue(context.Background(), "Yanish", "jane@example.com", 200.0, "INV-1", feePaid)
	require.NoError(t, err)
	assert.Empty(t, rec.ArchiveURL)
	ml.AssertExpectations(t)
}

func TestIssueDeliveryFailureLeavesNoRecord(t *testing.T) {
	r := &mockRenderer{}
	ml := &mockMailer{}
	st := &mockReceiptStore{}

	st.On("Get", mock.Anything, "INV-1").Return(nil, domain.ErrNotFound)
	r.On("Render", mock.Anything).Return([]byte("pdf"), nil)
	ml.On("SendWithAttachment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp refused"))

	_, err := newIssuer(r, ml, nil, st).Issue(context.Background(), "Yanish", "jane@example.com", 200.0, "INV-1", feePaid)
	require.Error(t, err)
	st.AssertNotCalled(t, "PutNew", mock.Anything, mock.Anything)
}

func TestIssuedReportsExistingRecord(t *testing.T) {
	st := &mockReceiptStore{}
	st.On("Get", mock.Anything, "INV-1").Return(&domain.ReceiptRecord{InvoiceNumber: "INV-1"}, nil)
	st.On("Get", mock.Anything, "INV-2").Return(nil, domain.ErrNotFound)

	svc := newIssuer(&mockRenderer{}, &mockMailer{}, nil, st)

	issued, rec, err := svc.Issued(context.Background(), "INV-1")
	require.NoError(t, err)
	assert.True(t, issued)
	assert.Equal(t, "INV-1", rec.InvoiceNumber)

	issued, rec, err = svc.Issued(context.Background(), "INV-2")
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Nil(t, rec)
}
