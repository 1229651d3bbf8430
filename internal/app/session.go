package app

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"tugofwar-quiz-service/internal/domain"
	"tugofwar-quiz-service/internal/scoring"
)

// Session is the in-memory state of one game room. All mutable fields are
// owned here and guarded by mu; the scheduler and the transport layer only
// reach them through these methods.
type Session struct {
	id        string
	cfg       domain.SessionConfig
	createdAt time.Time
	now       func() time.Time

	mu            sync.Mutex
	state         domain.SessionState
	questions     []domain.Question
	current       int
	issuedAt      time.Time
	deadline      time.Time
	questionOpen  bool
	endedNotified bool
	answered      map[string]struct{}
	force         int
	winner        string
	participants  map[string]*domain.Participant
	joinSeq       int
	lastActive    time.Time
	subscribers   map[chan domain.Event]struct{}
	sched         *scheduler
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string, questions []domain.Question, cfg domain.SessionConfig) *Session {
	return NewSessionWithClock(id, questions, cfg, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, questions []domain.Question, cfg domain.SessionConfig, now func() time.Time) *Session {
	return &Session{
		id:           id,
		cfg:          cfg,
		createdAt:    now(),
		now:          now,
		state:        domain.StateWaiting,
		questions:    questions,
		current:      -1,
		answered:     make(map[string]struct{}),
		participants: make(map[string]*domain.Participant),
		subscribers:  make(map[chan domain.Event]struct{}),
		lastActive:   now(),
	}
}

func (s *Session) ID() string { return s.id }

// State reports the lifecycle state.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsEmpty reports whether the session has no participants.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants) == 0
}

// IdleFor reports how long the session has gone without participant activity.
func (s *Session) IdleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

// Force returns the current rope force.
func (s *Session) Force() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.force
}

// Join registers a participant, or refreshes name and group when the same
// identity reconnects, so a reconnect never duplicates a player.
func (s *Session) Join(participantID, name string, group int) domain.Rankings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.participants[participantID]; ok {
		p.Name = name
		p.Group = group
	} else {
		s.joinSeq++
		s.participants[participantID] = &domain.Participant{
			ID:        participantID,
			Name:      name,
			Group:     group,
			JoinOrder: s.joinSeq,
		}
	}
	s.lastActive = s.now()

	rankings := s.rankingsLocked()
	s.broadcastLocked(domain.Event{Type: domain.EventPlayersUpdate, Payload: rankings.Individual})
	return rankings
}

// Remove drops a participant on disconnect. No-op if already absent. The
// session's timers keep running; only the rankings are rebroadcast.
func (s *Session) Remove(participantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[participantID]; !ok {
		return
	}
	delete(s.participants, participantID)
	s.lastActive = s.now()
	s.broadcastLocked(domain.Event{Type: domain.EventPlayersUpdate, Payload: s.rankingsLocked().Individual})
}

// Start transitions WAITING -> RUNNING and hands control to the scheduler.
// An empty configured secret leaves the start open to any joiner.
func (s *Session) Start(credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.StartSecret != "" && credential != s.cfg.StartSecret {
		return domain.ErrAuthorizationDenied
	}
	if s.state != domain.StateWaiting {
		return domain.ErrInvalidState
	}

	s.state = domain.StateRunning
	s.force = 0
	s.winner = ""
	s.current = -1
	s.lastActive = s.now()

	s.sched = newScheduler(s, s.cfg.Tick, s.cfg.Cooldown)
	go s.sched.run()
	return nil
}

// SubmitAnswer scores a raw answer against the current question. Stale,
// duplicate, unknown-participant, and not-running submissions are silent
// no-ops per the error contract; the boolean reports whether a result should
// be delivered to the answering player.
func (s *Session) SubmitAnswer(participantID, rawAnswer string) (domain.AnswerResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateRunning || !s.questionOpen || s.winner != "" {
		return domain.AnswerResult{}, false
	}
	now := s.now()
	if now.After(s.deadline) {
		// The expiry transition is authoritative even before the scheduler
		// has observed it.
		return domain.AnswerResult{}, false
	}
	p, ok := s.participants[participantID]
	if !ok {
		return domain.AnswerResult{}, false
	}
	if _, dup := s.answered[participantID]; dup {
		return domain.AnswerResult{}, false
	}
	s.answered[participantID] = struct{}{}
	s.lastActive = now

	q := s.questions[s.current]
	parsed, err := strconv.Atoi(strings.TrimSpace(rawAnswer))
	correct := err == nil && parsed == q.Answer

	res := scoring.Score(s.scoringConfig(), correct, now.Sub(s.issuedAt), s.deadline.Sub(s.issuedAt), p.Group)
	p.Score += res.Points
	result := domain.AnswerResult{
		Correct:       correct,
		Points:        res.Points,
		ForceDelta:    res.ForceDelta,
		TotalScore:    p.Score,
		CorrectAnswer: q.Answer,
	}

	if s.cfg.Mode == domain.ModeForce {
		if res.ForceDelta != 0 {
			s.force = scoring.ClampForce(s.force+res.ForceDelta, s.cfg.MaxForce)
		}
		s.broadcastLocked(domain.Event{Type: domain.EventForceUpdate, Payload: domain.ForceUpdatePayload{Force: s.force}})
		if s.force >= s.cfg.MaxForce || s.force <= -s.cfg.MaxForce {
			if s.force > 0 {
				s.winner = domain.WinnerEven
			} else {
				s.winner = domain.WinnerOdd
			}
			s.sched.interruptGame()
		}
	} else if res.Points > 0 {
		s.broadcastLocked(domain.Event{Type: domain.EventRankingUpdate, Payload: s.rankingsLocked()})
	}

	return result, true
}

// Subscribe returns a channel receiving this session's broadcast events,
// primed with a players snapshot. The caller must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := domain.Event{Type: domain.EventPlayersUpdate, Payload: s.rankingsLocked().Individual}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Destroy tears the session down, cancelling any pending scheduler timers so
// no advancement fires against a gone session.
func (s *Session) Destroy() {
	s.mu.Lock()
	sched := s.sched
	s.state = domain.StateEnded
	s.questionOpen = false
	s.mu.Unlock()

	if sched != nil {
		sched.cancel()
	}
}

// Rankings recomputes both leaderboards from current scores.
func (s *Session) Rankings() domain.Rankings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rankingsLocked()
}

// --- scheduler-facing operations ---

// issueNext advances to the next question and broadcasts it. ok is false when
// the sequence is exhausted or the session is no longer running.
func (s *Session) issueNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateRunning {
		return false
	}
	if s.current+1 >= len(s.questions) {
		return false
	}

	s.current++
	q := s.questions[s.current]
	s.issuedAt = s.now()
	s.deadline = s.issuedAt.Add(time.Duration(q.DurationMs) * time.Millisecond)
	s.questionOpen = true
	s.endedNotified = false
	s.answered = make(map[string]struct{})

	s.broadcastLocked(domain.Event{Type: domain.EventNewQuestion, Payload: domain.NewQuestionPayload{
		Index:      s.current + 1,
		Total:      len(s.questions),
		A:          q.A,
		B:          q.B,
		Op:         q.Op,
		DurationMs: q.DurationMs,
	}})
	return true
}

// remaining reports the time left in the current answer window.
func (s *Session) remaining() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.questionOpen || s.winner != "" {
		return 0, false
	}
	return s.deadline.Sub(s.now()), true
}

func (s *Session) broadcastTick(remaining time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked(domain.Event{Type: domain.EventTimerTick, Payload: domain.TimerTickPayload{
		RemainingMs: int(remaining / time.Millisecond),
	}})
}

// closeQuestion marks the current window expired and broadcasts questionEnded
// exactly once per question.
func (s *Session) closeQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < 0 || s.endedNotified {
		return
	}
	s.questionOpen = false
	s.endedNotified = true
	s.broadcastLocked(domain.Event{Type: domain.EventQuestionEnded, Payload: struct{}{}})
}

// finish transitions to ENDED and broadcasts the final standings.
func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateEnded {
		return
	}
	s.state = domain.StateEnded
	s.questionOpen = false
	s.lastActive = s.now()
	s.broadcastLocked(domain.Event{Type: domain.EventGameEnded, Payload: domain.GameEndedPayload{
		Rankings: s.rankingsLocked(),
		Winner:   s.winner,
	}})
}

func (s *Session) winnerDecided() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner != ""
}

// --- internals, caller holds mu ---

func (s *Session) rankingsLocked() domain.Rankings {
	participants := make([]*domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		participants = append(participants, p)
	}
	return domain.Rankings{
		Individual: IndividualRanking(participants),
		Groups:     GroupRanking(participants, s.cfg.Groups),
	}
}

func (s *Session) broadcastLocked(ev domain.Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// A full subscriber drops its oldest event rather than blocking
			// the broadcast for everyone else.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *Session) scoringConfig() scoring.Config {
	return scoring.Config{
		Mode:       s.cfg.Mode,
		BasePoints: s.cfg.BasePoints,
		ForceDelta: s.cfg.ForceDelta,
		MaxForce:   s.cfg.MaxForce,
	}
}
