package domain

// EventType names a session-scoped broadcast event.
type EventType string

const (
	EventPlayersUpdate EventType = "playersUpdate"
	EventNewQuestion   EventType = "newQuestion"
	EventTimerTick     EventType = "timerTick"
	EventQuestionEnded EventType = "questionEnded"
	EventForceUpdate   EventType = "forceUpdate"
	EventRankingUpdate EventType = "rankingUpdate"
	EventGameEnded     EventType = "gameEnded"
)

// Event is a single broadcast delivered to every subscriber of a session.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// NewQuestionPayload announces the current question. Index is 1-based for
// display. The answer is deliberately not included.
type NewQuestionPayload struct {
	Index      int `json:"index"`
	Total      int `json:"total"`
	A          int `json:"a"`
	B          int `json:"b"`
	Op         Op  `json:"op"`
	DurationMs int `json:"durationMs"`
}

// TimerTickPayload carries the remaining answer window for the current question.
type TimerTickPayload struct {
	RemainingMs int `json:"remainingMs"`
}

// ForceUpdatePayload carries the rope force after an accepted answer.
type ForceUpdatePayload struct {
	Force int `json:"force"`
}

// Rope winner sides. Even-numbered groups pull positive, so a force at
// +MaxForce means the even side won.
const (
	WinnerEven = "even"
	WinnerOdd  = "odd"
)

// GameEndedPayload carries the final standings. Winner is set only in force
// mode when the rope crossed a bound before the questions ran out.
type GameEndedPayload struct {
	Rankings Rankings `json:"rankings"`
	Winner   string   `json:"winner,omitempty"`
}
