package memory

import (
	"testing"
	"time"

	"tugofwar-quiz-service/internal/app"
	"tugofwar-quiz-service/internal/domain"
)

func TestRegistryInsertClaimsCode(t *testing.T) {
	registry := NewSessionRegistry()

	if !registry.Insert("ABC123", newSession("ABC123")) {
		t.Fatalf("expected first insert to claim the code")
	}
	if registry.Insert("ABC123", newSession("ABC123")) {
		t.Fatalf("expected duplicate insert to be rejected")
	}
	if _, ok := registry.Get("ABC123"); !ok {
		t.Fatalf("expected session present")
	}

	registry.Delete("ABC123")
	if _, ok := registry.Get("ABC123"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestRegistrySweepRemovesIdleSessions(t *testing.T) {
	registry := NewSessionRegistry()
	registry.Insert("OLD111", newSession("OLD111"))

	// A session created "now" is not idle yet.
	if swept := registry.Sweep(time.Now(), time.Hour); len(swept) != 0 {
		t.Fatalf("expected no sessions swept, got %d", len(swept))
	}

	swept := registry.Sweep(time.Now().Add(2*time.Hour), time.Hour)
	if len(swept) != 1 || swept[0].ID() != "OLD111" {
		t.Fatalf("expected OLD111 swept, got %v", swept)
	}
	if _, ok := registry.Get("OLD111"); ok {
		t.Fatalf("expected swept session gone from registry")
	}
}

func newSession(code string) *app.Session {
	return app.NewSession(code, []domain.Question{
		{A: 2, B: 2, Op: domain.OpAdd, Answer: 4, DurationMs: 30000},
	}, domain.SessionConfig{Mode: domain.ModeFlat, BasePoints: 10, Groups: 2})
}
