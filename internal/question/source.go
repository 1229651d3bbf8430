package question

import (
	"context"

	"tugofwar-quiz-service/internal/domain"
)

// Questions implements the game service's QuestionSource by generating a
// fresh random sequence.
func (g *Generator) Questions(_ context.Context, n int) ([]domain.Question, error) {
	return g.Sequence(n), nil
}

// BankRepository loads pre-authored question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// BankSource draws session questions from a named bank instead of generating
// them. Questions without an explicit duration get the configured default.
type BankSource struct {
	repo              BankRepository
	bankID            string
	defaultDurationMs int
}

func NewBankSource(repo BankRepository, bankID string, defaultDurationMs int) *BankSource {
	return &BankSource{repo: repo, bankID: bankID, defaultDurationMs: defaultDurationMs}
}

// Questions returns up to n questions from the bank, in bank order.
func (s *BankSource) Questions(ctx context.Context, n int) ([]domain.Question, error) {
	bank, err := s.repo.GetBank(ctx, s.bankID)
	if err != nil {
		return nil, err
	}

	qs := bank.Questions
	if n > 0 && len(qs) > n {
		qs = qs[:n]
	}
	out := make([]domain.Question, len(qs))
	for i, q := range qs {
		if q.DurationMs <= 0 {
			q.DurationMs = s.defaultDurationMs
		}
		out[i] = q
	}
	return out, nil
}
