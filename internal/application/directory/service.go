package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sjpiano/paytrack/internal/domain"
)

// Matching is deliberately exact: a student matches only when parent name,
// email, and the integer-dollar amount all line up. Anything fuzzier belongs
// in the directory, not here.

type studentStore interface {
	ListByEmail(ctx context.Context, email string) ([]domain.Student, error)
}

type Service interface {
	// Match resolves a payer to at most one directory record. Zero matches
	// return domain.ErrNotFound; more than one returns domain.ErrAmbiguous.
	Match(ctx context.Context, parentName, email string, amount decimal.Decimal) (*domain.Student, error)
}

type service struct {
	repo studentStore
}

func NewService(repo studentStore) Service {
	return &service{repo: repo}
}

func (s *service) Match(ctx context.Context, parentName, email string, amount decimal.Decimal) (*domain.Student, error) {
	// Truncate toward zero to an integer-dollar string; the directory stores
	// the expected fee as e.g. "200", so 200.40 and 200.99 both match it.
	amountStr := amount.Truncate(0).String()

	candidates, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list students by email: %w", err)
	}

	var matched []domain.Student
	for _, st := range candidates {
		if !st.Enable {
			continue
		}
		if strings.EqualFold(st.ParentName, parentName) &&
			strings.EqualFold(st.Email, email) &&
			st.Amount == amountStr {
			matched = append(matched, st)
		}
	}

	switch len(matched) {
	case 0:
		return nil, fmt.Errorf(
			"no active student found for parent=%q, email=%q, amount=%q: %w",
			parentName, email, amountStr, domain.ErrNotFound)
	case 1:
		st := matched[0]
		return &st, nil
	default:
		return nil, fmt.Errorf(
			"%d students match parent=%q, email=%q, amount=%q: %w",
			len(matched), parentName, email, amountStr, domain.ErrAmbiguous)
	}
}
