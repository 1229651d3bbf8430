package question

import (
	"math/rand"
	"sync"
	"time"

	"tugofwar-quiz-service/internal/domain"
)

// Config bounds the operand ranges for generated questions.
type Config struct {
	Operators   []domain.Op
	MinOperand  int
	MaxOperand  int
	MaxDivisor  int
	MaxQuotient int
	DurationMs  int
}

// DefaultConfig matches a classroom-friendly difficulty.
func DefaultConfig() Config {
	return Config{
		Operators:   []domain.Op{domain.OpAdd, domain.OpSub, domain.OpMul, domain.OpDiv},
		MinOperand:  1,
		MaxOperand:  20,
		MaxDivisor:  10,
		MaxQuotient: 10,
		DurationMs:  30000,
	}
}

// Generator produces randomized arithmetic questions. Safe for concurrent
// use; sessions draw their sequences up front at creation.
type Generator struct {
	cfg Config
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator(cfg Config) *Generator {
	return NewGeneratorWithSeed(cfg, time.Now().UnixNano())
}

// NewGeneratorWithSeed allows deterministic sequences in tests.
func NewGeneratorWithSeed(cfg Config, seed int64) *Generator {
	if len(cfg.Operators) == 0 {
		cfg.Operators = DefaultConfig().Operators
	}
	if cfg.MinOperand < 0 {
		cfg.MinOperand = 0
	}
	if cfg.MaxOperand < cfg.MinOperand {
		cfg.MaxOperand = cfg.MinOperand
	}
	if cfg.MaxDivisor < 1 {
		cfg.MaxDivisor = 1
	}
	if cfg.MaxQuotient < 1 {
		cfg.MaxQuotient = 1
	}
	return &Generator{cfg: cfg, rnd: rand.New(rand.NewSource(seed))}
}

// Generate returns one question with its answer computed from the operands.
// Divide questions are built answer-first (divisor times quotient) so the
// result is always an exact integer; subtract questions never go negative.
func (g *Generator) Generate() domain.Question {
	g.mu.Lock()
	defer g.mu.Unlock()
	op := g.cfg.Operators[g.rnd.Intn(len(g.cfg.Operators))]

	q := domain.Question{Op: op, DurationMs: g.cfg.DurationMs}
	switch op {
	case domain.OpAdd:
		q.A = g.operand()
		q.B = g.operand()
		q.Answer = q.A + q.B
	case domain.OpSub:
		q.A = g.operand()
		if q.A < 1 {
			q.A = 1
		}
		// Subtrahend drawn from [1, minuend] keeps the result non-negative.
		q.B = 1 + g.rnd.Intn(q.A)
		q.Answer = q.A - q.B
	case domain.OpMul:
		q.A = g.operand()
		q.B = g.operand()
		q.Answer = q.A * q.B
	case domain.OpDiv:
		divisor := 1 + g.rnd.Intn(g.cfg.MaxDivisor)
		quotient := 1 + g.rnd.Intn(g.cfg.MaxQuotient)
		q.A = divisor * quotient
		q.B = divisor
		q.Answer = quotient
	}
	return q
}

// Sequence generates n questions.
func (g *Generator) Sequence(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = g.Generate()
	}
	return qs
}

func (g *Generator) operand() int {
	return g.cfg.MinOperand + g.rnd.Intn(g.cfg.MaxOperand-g.cfg.MinOperand+1)
}
