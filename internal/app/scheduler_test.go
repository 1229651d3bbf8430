package app

import (
	"testing"
	"time"

	"tugofwar-quiz-service/internal/domain"
)

func collectUntil(t *testing.T, ch <-chan domain.Event, want domain.EventType, timeout time.Duration) []domain.Event {
	t.Helper()
	deadline := time.After(timeout)
	var seen []domain.Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed while waiting for %s; saw %v", want, types(seen))
			}
			seen = append(seen, ev)
			if ev.Type == want {
				return seen
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s; saw %v", want, types(seen))
		}
	}
}

func types(events []domain.Event) []domain.EventType {
	out := make([]domain.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func countType(events []domain.Event, typ domain.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestSchedulerDrivesFullGame(t *testing.T) {
	questions := []domain.Question{
		{A: 1, B: 1, Op: domain.OpAdd, Answer: 2, DurationMs: 120},
		{A: 2, B: 3, Op: domain.OpMul, Answer: 6, DurationMs: 120},
	}
	cfg := domain.SessionConfig{
		Mode:       domain.ModeFlat,
		BasePoints: 10,
		Groups:     2,
		Cooldown:   30 * time.Millisecond,
		Tick:       30 * time.Millisecond,
	}
	s := NewSession("GAME01", questions, cfg)
	defer s.Destroy()
	s.Join("p1", "Alice", 1)

	events, cancel := s.Subscribe()
	defer cancel()

	if err := s.Start(""); err != nil {
		t.Fatalf("start: %v", err)
	}

	seen := collectUntil(t, events, domain.EventGameEnded, 5*time.Second)

	if got := countType(seen, domain.EventNewQuestion); got != 2 {
		t.Fatalf("expected 2 newQuestion events, got %d (%v)", got, types(seen))
	}
	if got := countType(seen, domain.EventQuestionEnded); got != 2 {
		t.Fatalf("expected 2 questionEnded events, got %d (%v)", got, types(seen))
	}
	if countType(seen, domain.EventTimerTick) == 0 {
		t.Fatalf("expected at least one timerTick, saw %v", types(seen))
	}
	if s.State() != domain.StateEnded {
		t.Fatalf("expected session ENDED after game, got %s", s.State())
	}
	if phase := s.sched.currentPhase(); phase != phaseFinished {
		t.Fatalf("expected scheduler finished, got %s", phase)
	}
}

func TestSchedulerQuestionOrderAndIndices(t *testing.T) {
	questions := []domain.Question{
		{A: 1, B: 1, Op: domain.OpAdd, Answer: 2, DurationMs: 80},
		{A: 9, B: 3, Op: domain.OpDiv, Answer: 3, DurationMs: 80},
	}
	cfg := domain.SessionConfig{
		Mode:       domain.ModeFlat,
		BasePoints: 10,
		Groups:     2,
		Cooldown:   20 * time.Millisecond,
		Tick:       20 * time.Millisecond,
	}
	s := NewSession("GAME02", questions, cfg)
	defer s.Destroy()

	events, cancel := s.Subscribe()
	defer cancel()

	if err := s.Start(""); err != nil {
		t.Fatalf("start: %v", err)
	}
	seen := collectUntil(t, events, domain.EventGameEnded, 5*time.Second)

	var issued []domain.NewQuestionPayload
	for _, ev := range seen {
		if ev.Type == domain.EventNewQuestion {
			issued = append(issued, ev.Payload.(domain.NewQuestionPayload))
		}
	}
	if len(issued) != 2 {
		t.Fatalf("expected 2 questions issued, got %d", len(issued))
	}
	if issued[0].Index != 1 || issued[0].Total != 2 || issued[0].A != 1 {
		t.Fatalf("unexpected first question payload: %+v", issued[0])
	}
	if issued[1].Index != 2 || issued[1].Op != domain.OpDiv {
		t.Fatalf("unexpected second question payload: %+v", issued[1])
	}
}

func TestRopeBoundEndsGameEarly(t *testing.T) {
	// One long question; the rope win must end the game well before expiry.
	questions := []domain.Question{
		{A: 2, B: 2, Op: domain.OpAdd, Answer: 4, DurationMs: 10000},
		{A: 3, B: 3, Op: domain.OpAdd, Answer: 6, DurationMs: 10000},
	}
	cfg := domain.SessionConfig{
		Mode:       domain.ModeForce,
		BasePoints: 10,
		ForceDelta: 15,
		MaxForce:   15,
		Groups:     4,
		Cooldown:   10 * time.Millisecond,
		Tick:       20 * time.Millisecond,
	}
	s := NewSession("GAME03", questions, cfg)
	defer s.Destroy()
	s.Join("p1", "Alice", 2)

	events, cancel := s.Subscribe()
	defer cancel()

	if err := s.Start(""); err != nil {
		t.Fatalf("start: %v", err)
	}
	collectUntil(t, events, domain.EventNewQuestion, 2*time.Second)

	res, ok := s.SubmitAnswer("p1", "4")
	if !ok || !res.Correct {
		t.Fatalf("expected accepted answer, got ok=%v res=%+v", ok, res)
	}

	seen := collectUntil(t, events, domain.EventGameEnded, 2*time.Second)
	ended := seen[len(seen)-1].Payload.(domain.GameEndedPayload)
	if ended.Winner != domain.WinnerEven {
		t.Fatalf("expected even side to win, got %q", ended.Winner)
	}
	if countType(seen, domain.EventNewQuestion) != 0 {
		t.Fatalf("no further questions may be issued after a rope win, saw %v", types(seen))
	}
}

func TestDestroyCancelsPendingTimers(t *testing.T) {
	questions := []domain.Question{
		{A: 2, B: 2, Op: domain.OpAdd, Answer: 4, DurationMs: 60},
	}
	cfg := domain.SessionConfig{
		Mode:       domain.ModeFlat,
		BasePoints: 10,
		Groups:     2,
		Cooldown:   time.Hour, // advancement pending long after the question
		Tick:       20 * time.Millisecond,
	}
	s := NewSession("GAME04", questions, cfg)

	events, cancel := s.Subscribe()
	defer cancel()

	if err := s.Start(""); err != nil {
		t.Fatalf("start: %v", err)
	}
	collectUntil(t, events, domain.EventQuestionEnded, 2*time.Second)

	s.Destroy()

	// The cancelled scheduler must never fire the pending advancement.
	deadline := time.After(300 * time.Millisecond)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type == domain.EventGameEnded || ev.Type == domain.EventNewQuestion {
				t.Fatalf("event %s fired against a destroyed session", ev.Type)
			}
		case <-deadline:
			return
		}
	}
}
