package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sjpiano/paytrack/internal/domain"
)

type mockStudentStore struct{ mock.Mock }

func (m *mockStudentStore) ListByEmail(ctx context.Context, email string) ([]domain.Student, error) {
	args := m.Called(ctx, email)
	if s, _ := args.Get(0).([]domain.Student); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func jane() domain.Student {
	return domain.Student{
		StudentID:  "st-1",
		Name:       "Yanish",
		ParentName: "Jane Doe",
		Email:      "jane@example.com",
		Amount:     "200",
		Enable:     true,
	}
}

func TestMatchAllThreeFields(t *testing.T) {
	repo := &mockStudentStore{}
	repo.On("ListByEmail", mock.Anything, "jane@example.com").Return([]domain.Student{jane()}, nil)

	st, err := NewService(repo).Match(context.Background(), "Jane Doe", "jane@example.com", decimal.RequireFromString("200.00"))
	require.NoError(t, err)
	assert.Equal(t, "st-1", st.StudentID)
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	repo := &mockStudentStore{}
	repo.On("ListByEmail", mock.Anything, "JANE@Example.COM").Return([]domain.Student{jane()}, nil)

	st, err := NewService(repo).Match(context.Background(), "jane DOE", "JANE@Example.COM", decimal.RequireFromString("200"))
	require.NoError(t, err)
	assert.Equal(t, "st-1", st.StudentID)
}

func TestMatchTruncatesAmountTowardZero(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"200.99", true},
		{"200.40", true},
		{"200", true},
		{"199.99", false},
		{"201.00", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			repo := &mockStudentStore{}
			repo.On("ListByEmail", mock.Anything, "jane@example.com").Return([]domain.Student{jane()}, nil)

			_, err := NewService(repo).Match(context.Background(), "Jane Doe", "jane@example.com", decimal.RequireFromString(tt.amount))
			if tt.want {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrNotFound)
			}
		})
	}
}

func TestMatchPartialIsNotAMatch(t *testing.T) {
	repo := &mockStudentStore{}
	repo.On("ListByEmail", mock.Anything, "jane@example.com").Return([]domain.Student{jane()}, nil)

	_, err := NewService(repo).Match(context.Background(), "John Doe", "jane@example.com", decimal.RequireFromString("200"))
	require.ErrorIs(t, err, domain.ErrNotFound)
	// The reason carries all three compared values for operator diagnosis.
	assert.Contains(t, err.Error(), `parent="John Doe"`)
	assert.Contains(t, err.Error(), `email="jane@example.com"`)
	assert.Contains(t, err.Error(), `amount="200"`)
}

func TestMatchSkipsDisabledStudents(t *testing.T) {
	disabled := jane()
	disabled.Enable = false
	repo := &mockStudentStore{}
	repo.On("ListByEmail", mock.Anything, "jane@example.com").Return([]domain.Student{disabled}, nil)

	_, err := NewService(repo).Match(context.Background(), "Jane Doe", "jane@example.com", decimal.RequireFromString("200"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMatchRejectsAmbiguous(t *testing.T) {
	twin := jane()
	twin.StudentID = "st-2"
	repo := &mockStudentStore{}
	repo.On("ListByEmail", mock.Anything, "jane@example.com").Return([]domain.Student{jane(), twin}, nil)

	_, err := NewService(repo).Match(context.Background(), "Jane Doe", "jane@example.com", decimal.RequireFromString("200"))
	assert.ErrorIs(t, err, domain.ErrAmbiguous)
}

func TestMatchPropagatesStoreError(t *testing.T) {
	repo := &mockStudentStore{}
	boom := errors.New("dynamo unavailable")
	repo.On("ListByEmail", mock.Anything, "jane@example.com").Return(nil, boom)

	_, err := NewService(repo).Match(context.Background(), "Jane Doe", "jane@example.com", decimal.RequireFromString("200"))
	assert.ErrorIs(t, err, boom)
}
