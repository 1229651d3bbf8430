package question

import (
	"testing"

	"tugofwar-quiz-service/internal/domain"
)

func TestDivideIsAlwaysExact(t *testing.T) {
	g := NewGeneratorWithSeed(Config{
		Operators:   []domain.Op{domain.OpDiv},
		MaxDivisor:  12,
		MaxQuotient: 12,
	}, 1)

	for i := 0; i < 1000; i++ {
		q := g.Generate()
		if q.B == 0 {
			t.Fatalf("generated zero divisor: %+v", q)
		}
		if q.A%q.B != 0 {
			t.Fatalf("dividend not divisible: %+v", q)
		}
		if q.A/q.B != q.Answer {
			t.Fatalf("answer mismatch: %+v", q)
		}
	}
}

func TestSubtractNeverNegative(t *testing.T) {
	g := NewGeneratorWithSeed(Config{
		Operators:  []domain.Op{domain.OpSub},
		MinOperand: 0,
		MaxOperand: 30,
	}, 2)

	for i := 0; i < 1000; i++ {
		q := g.Generate()
		if q.Answer < 0 {
			t.Fatalf("negative result: %+v", q)
		}
		if q.A-q.B != q.Answer {
			t.Fatalf("answer mismatch: %+v", q)
		}
	}
}

func TestAnswersMatchOperands(t *testing.T) {
	g := NewGeneratorWithSeed(DefaultConfig(), 3)

	for i := 0; i < 1000; i++ {
		q := g.Generate()
		var want int
		switch q.Op {
		case domain.OpAdd:
			want = q.A + q.B
		case domain.OpSub:
			want = q.A - q.B
		case domain.OpMul:
			want = q.A * q.B
		case domain.OpDiv:
			want = q.A / q.B
		default:
			t.Fatalf("unexpected operator %q", q.Op)
		}
		if q.Answer != want {
			t.Fatalf("wrong answer for %+v, want %d", q, want)
		}
	}
}

func TestSequenceLengthAndDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationMs = 15000
	g := NewGeneratorWithSeed(cfg, 4)

	qs := g.Sequence(25)
	if len(qs) != 25 {
		t.Fatalf("expected 25 questions, got %d", len(qs))
	}
	for _, q := range qs {
		if q.DurationMs != 15000 {
			t.Fatalf("expected duration 15000, got %d", q.DurationMs)
		}
	}
}
