package app

import (
	"sync"
	"time"
)

// schedulerPhase tracks where the per-session timer loop currently is.
type schedulerPhase string

const (
	phaseIdle            schedulerPhase = "idle"
	phaseAwaitingAnswers schedulerPhase = "awaitingAnswers"
	phaseCooldown        schedulerPhase = "cooldown"
	phaseFinished        schedulerPhase = "finished"
)

// scheduler drives one session's question progression: issue a question,
// tick the countdown, expire the window, pause, advance. It runs as a single
// goroutine per session so every time-based transition is totally ordered
// with respect to the session's other operations (which it reaches only
// through Session methods).
type scheduler struct {
	sess     *Session
	tick     time.Duration
	cooldown time.Duration

	stop      chan struct{} // session destroyed, abandon everything
	interrupt chan struct{} // rope crossed a bound, end the game now
	stopOnce  sync.Once
	intOnce   sync.Once

	mu    sync.Mutex
	phase schedulerPhase
}

func newScheduler(sess *Session, tick, cooldown time.Duration) *scheduler {
	if tick <= 0 {
		tick = time.Second
	}
	return &scheduler{
		sess:      sess,
		tick:      tick,
		cooldown:  cooldown,
		stop:      make(chan struct{}),
		interrupt: make(chan struct{}),
		phase:     phaseIdle,
	}
}

func (sc *scheduler) run() {
	defer sc.setPhase(phaseFinished)

	for sc.sess.issueNext() {
		sc.setPhase(phaseAwaitingAnswers)
		if !sc.awaitAnswers() {
			return // cancelled, session is being torn down
		}
		sc.sess.closeQuestion()

		if sc.sess.winnerDecided() {
			break
		}

		sc.setPhase(phaseCooldown)
		if !sc.pause(sc.cooldown) {
			return
		}
	}

	sc.sess.finish()
}

// awaitAnswers broadcasts countdown ticks until the window expires or the
// game is interrupted. Returns false only when the scheduler was cancelled.
func (sc *scheduler) awaitAnswers() bool {
	ticker := time.NewTicker(sc.tick)
	defer ticker.Stop()

	for {
		remaining, open := sc.sess.remaining()
		if !open || remaining <= 0 {
			return true
		}
		sc.sess.broadcastTick(remaining)

		select {
		case <-ticker.C:
		case <-sc.interrupt:
			return true
		case <-sc.stop:
			return false
		}
	}
}

func (sc *scheduler) pause(d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-sc.stop:
		return false
	}
}

// cancel aborts any pending transition. Idempotent.
func (sc *scheduler) cancel() {
	sc.stopOnce.Do(func() { close(sc.stop) })
}

// interruptGame wakes the loop to end the game before the sequence runs out.
func (sc *scheduler) interruptGame() {
	sc.intOnce.Do(func() { close(sc.interrupt) })
}

func (sc *scheduler) setPhase(p schedulerPhase) {
	sc.mu.Lock()
	sc.phase = p
	sc.mu.Unlock()
}

func (sc *scheduler) currentPhase() schedulerPhase {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.phase
}
