package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tugofwar-quiz-service/internal/domain"
)

func TestBankRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string]domain.Bank{
			"tabuada": sampleBank(),
		}),
	}
	repo := NewBankRepository(loader, time.Minute)

	if _, err := repo.GetBank(context.Background(), "tabuada"); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetBank(context.Background(), "tabuada"); err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestBankRepositoryUnknownBank(t *testing.T) {
	repo := NewBankRepository(NewStaticBankLoader(nil), time.Minute)

	_, err := repo.GetBank(context.Background(), "missing")
	if !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

type countingLoader struct {
	BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, bankID)
}

func sampleBank() domain.Bank {
	return domain.Bank{
		ID: "tabuada",
		Questions: []domain.Question{
			{A: 7, B: 8, Op: domain.OpMul, Answer: 56, DurationMs: 30000},
			{A: 12, B: 4, Op: domain.OpDiv, Answer: 3, DurationMs: 30000},
		},
	}
}
