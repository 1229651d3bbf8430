package scoring

import (
	"math"
	"time"

	"tugofwar-quiz-service/internal/domain"
)

// Config holds the scoring constants for one session.
type Config struct {
	Mode       domain.Mode
	BasePoints int
	ForceDelta int
	MaxForce   int
}

// Result is the delta produced by one accepted answer. Exactly one of Points
// and ForceDelta is meaningful outside force mode; force mode sets both.
type Result struct {
	Points     int
	ForceDelta int
}

// Score maps an answer outcome to a point or force delta. Group parity sets
// the rope direction: even-numbered groups pull positive, odd-numbered groups
// pull negative (see domain.WinnerEven and domain.WinnerOdd).
func Score(cfg Config, correct bool, elapsed, duration time.Duration, group int) Result {
	if !correct {
		return Result{}
	}
	if duration > 0 && elapsed > duration {
		return Result{}
	}

	switch cfg.Mode {
	case domain.ModeDecay:
		if duration <= 0 {
			return Result{Points: cfg.BasePoints}
		}
		remaining := duration - elapsed
		points := int(math.Round(float64(cfg.BasePoints) * float64(remaining) / float64(duration)))
		if points < 0 {
			points = 0
		}
		if points > cfg.BasePoints {
			points = cfg.BasePoints
		}
		return Result{Points: points}
	case domain.ModeForce:
		return Result{Points: cfg.BasePoints, ForceDelta: cfg.ForceDelta * Direction(group)}
	default:
		return Result{Points: cfg.BasePoints}
	}
}

// Direction returns +1 for even-numbered groups and -1 for odd-numbered ones.
func Direction(group int) int {
	if group%2 == 0 {
		return 1
	}
	return -1
}

// ClampForce bounds a rope total to [-max, +max].
func ClampForce(force, max int) int {
	if force > max {
		return max
	}
	if force < -max {
		return -max
	}
	return force
}
