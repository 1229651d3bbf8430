package scoring

import (
	"testing"
	"time"

	"tugofwar-quiz-service/internal/domain"
)

func TestDecayBoundaries(t *testing.T) {
	cfg := Config{Mode: domain.ModeDecay, BasePoints: 1000}
	duration := 30 * time.Second

	tests := map[string]struct {
		correct bool
		elapsed time.Duration
		want    int
	}{
		"instant answer gets full points": {correct: true, elapsed: 0, want: 1000},
		"answer at deadline gets zero":    {correct: true, elapsed: duration, want: 0},
		"half window gets half points":    {correct: true, elapsed: 15 * time.Second, want: 500},
		"late answer gets zero":           {correct: true, elapsed: duration + time.Millisecond, want: 0},
		"incorrect gets zero":             {correct: false, elapsed: 0, want: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := Score(cfg, tt.correct, tt.elapsed, duration, 1)
			if got.Points != tt.want {
				t.Fatalf("expected %d points, got %d", tt.want, got.Points)
			}
			if got.ForceDelta != 0 {
				t.Fatalf("decay mode must not produce force, got %d", got.ForceDelta)
			}
		})
	}
}

func TestFlatScoring(t *testing.T) {
	cfg := Config{Mode: domain.ModeFlat, BasePoints: 10}

	if got := Score(cfg, true, time.Second, 30*time.Second, 1); got.Points != 10 {
		t.Fatalf("expected 10 points, got %d", got.Points)
	}
	if got := Score(cfg, true, 29*time.Second, 30*time.Second, 1); got.Points != 10 {
		t.Fatalf("expected full points late in the window, got %d", got.Points)
	}
	if got := Score(cfg, false, time.Second, 30*time.Second, 1); got.Points != 0 {
		t.Fatalf("expected 0 points for incorrect, got %d", got.Points)
	}
	if got := Score(cfg, true, 31*time.Second, 30*time.Second, 1); got.Points != 0 {
		t.Fatalf("expected 0 points past the window, got %d", got.Points)
	}
}

func TestForceDirectionByGroupParity(t *testing.T) {
	cfg := Config{Mode: domain.ModeForce, BasePoints: 10, ForceDelta: 15, MaxForce: 300}

	even := Score(cfg, true, time.Second, 30*time.Second, 2)
	if even.ForceDelta != 15 || even.Points != 10 {
		t.Fatalf("even group should pull +15 and score 10, got %+v", even)
	}

	odd := Score(cfg, true, time.Second, 30*time.Second, 3)
	if odd.ForceDelta != -15 || odd.Points != 10 {
		t.Fatalf("odd group should pull -15 and score 10, got %+v", odd)
	}

	if got := Score(cfg, false, time.Second, 30*time.Second, 2); got.ForceDelta != 0 {
		t.Fatalf("incorrect answer must not move the rope, got %d", got.ForceDelta)
	}
}

func TestClampForceNeverLeavesBounds(t *testing.T) {
	force := 0
	// Alternating groups with occasional repeats; the running total must stay
	// inside the bound no matter the order.
	groups := []int{2, 3, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 3}
	for _, g := range groups {
		force = ClampForce(force+15*Direction(g), 300)
		if force > 300 || force < -300 {
			t.Fatalf("force left bounds: %d", force)
		}
	}
	if force != 285 {
		t.Fatalf("expected clamped sum 285, got %d", force)
	}
}
