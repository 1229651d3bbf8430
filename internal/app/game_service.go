package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"time"

	"tugofwar-quiz-service/internal/domain"
)

// SessionRegistry abstracts how live sessions are tracked (in-memory, Redis-marked, etc).
type SessionRegistry interface {
	// Insert claims the code for the session; false means the code is taken.
	Insert(code string, s *Session) bool
	Get(code string) (*Session, bool)
	Delete(code string)
	// Sweep removes and returns sessions idle beyond the cutoff.
	Sweep(now time.Time, idleAfter time.Duration) []*Session
}

// QuestionSource supplies the question sequence for a new session.
type QuestionSource interface {
	Questions(ctx context.Context, n int) ([]domain.Question, error)
}

// GameService contains the game's use cases. The transport layer dispatches
// into it and fans its events out; it never touches session state directly.
type GameService struct {
	registry  SessionRegistry
	source    QuestionSource
	cfg       domain.SessionConfig
	perGame   int
	idleAfter time.Duration
}

// Config wires a GameService.
type Config struct {
	Registry         SessionRegistry
	Source           QuestionSource
	Session          domain.SessionConfig
	QuestionsPerGame int
	IdleAfter        time.Duration
}

func NewGameService(c Config) *GameService {
	if c.QuestionsPerGame <= 0 {
		c.QuestionsPerGame = 10
	}
	if c.IdleAfter <= 0 {
		c.IdleAfter = 30 * time.Minute
	}
	return &GameService{
		registry:  c.Registry,
		source:    c.Source,
		cfg:       c.Session,
		perGame:   c.QuestionsPerGame,
		idleAfter: c.IdleAfter,
	}
}

const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// newCode draws a 6-character room code from an unambiguous alphabet.
func newCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// CreateSession allocates a fresh session in WAITING with its question
// sequence fixed up front, and returns its code.
func (g *GameService) CreateSession(ctx context.Context) (string, error) {
	questions, err := g.source.Questions(ctx, g.perGame)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < 10; attempt++ {
		code, err := newCode()
		if err != nil {
			return "", err
		}
		if g.registry.Insert(code, NewSession(code, questions, g.cfg)) {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique session code")
}

// Join adds or refreshes a participant. Groups are numbered from 1; anything
// outside the configured range is rejected as a validation failure.
func (g *GameService) Join(_ context.Context, code, participantID, name string, group int) (domain.Rankings, error) {
	if g.cfg.Groups > 0 && (group < 1 || group > g.cfg.Groups) {
		return domain.Rankings{}, domain.ErrInvalidState
	}
	sess, ok := g.registry.Get(code)
	if !ok {
		return domain.Rankings{}, domain.ErrSessionNotFound
	}
	return sess.Join(participantID, name, group), nil
}

// Start transitions a session to RUNNING if the credential passes.
func (g *GameService) Start(_ context.Context, code, credential string) error {
	sess, ok := g.registry.Get(code)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return sess.Start(credential)
}

// SubmitAnswer scores an answer. The boolean reports whether a result should
// be unicast to the player; stale and duplicate submissions are silent no-ops.
func (g *GameService) SubmitAnswer(_ context.Context, code, participantID, rawAnswer string) (domain.AnswerResult, bool) {
	sess, ok := g.registry.Get(code)
	if !ok {
		return domain.AnswerResult{}, false
	}
	return sess.SubmitAnswer(participantID, rawAnswer)
}

// Subscribe returns a channel receiving the session's broadcast events.
// The caller must invoke the returned cancel function to avoid leaks.
func (g *GameService) Subscribe(_ context.Context, code string) (<-chan domain.Event, func(), error) {
	sess, ok := g.registry.Get(code)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := sess.Subscribe()
	return ch, cancel, nil
}

// Leave removes a participant on disconnect. The session and its timers stay
// alive; the janitor reclaims abandoned rooms later.
func (g *GameService) Leave(_ context.Context, code, participantID string) {
	sess, ok := g.registry.Get(code)
	if !ok {
		return
	}
	sess.Remove(participantID)
}

// RunJanitor periodically destroys sessions idle beyond the configured
// timeout, cancelling their pending timers. Blocks until ctx is done.
func (g *GameService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, sess := range g.registry.Sweep(now, g.idleAfter) {
				sess.Destroy()
				log.Printf("janitor: destroyed idle session %s", sess.ID())
			}
		}
	}
}
