package domain

import "time"

// Mode selects how accepted answers move the game state.
type Mode string

const (
	// ModeFlat awards a fixed point value for any correct in-window answer.
	ModeFlat Mode = "flat"
	// ModeDecay awards points proportional to the time remaining when the
	// answer arrives (Kahoot-style).
	ModeDecay Mode = "decay"
	// ModeForce awards fixed points and additionally pulls the shared rope
	// in the direction of the participant's group.
	ModeForce Mode = "force"
)

// Op is an arithmetic operator as rendered to clients.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
)

// SessionState is the lifecycle state of a session.
type SessionState string

const (
	StateWaiting SessionState = "waiting"
	StateRunning SessionState = "running"
	StateEnded   SessionState = "ended"
)

// Question is a single arithmetic problem. Immutable once issued.
type Question struct {
	A          int `json:"a"`
	B          int `json:"b"`
	Op         Op  `json:"op"`
	Answer     int `json:"answer"`
	DurationMs int `json:"durationMs"`
}

// Bank is a named, pre-authored question sequence loaded from a backing store.
type Bank struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Participant is a connected player within a session.
type Participant struct {
	ID        string
	Name      string
	Group     int
	Score     int
	JoinOrder int
}

// PlayerStanding is one row of the individual leaderboard.
type PlayerStanding struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group int    `json:"group"`
	Score int    `json:"score"`
}

// GroupStanding is one row of the group leaderboard. Every configured group
// appears, even with no participants.
type GroupStanding struct {
	Group int `json:"group"`
	Score int `json:"score"`
}

// Rankings bundles both leaderboards for broadcast.
type Rankings struct {
	Individual []PlayerStanding `json:"individual"`
	Groups     []GroupStanding  `json:"groups"`
}

// AnswerResult is the unicast outcome of a submission for a single player.
type AnswerResult struct {
	Correct       bool `json:"correct"`
	Points        int  `json:"points"`
	ForceDelta    int  `json:"forceDelta"`
	TotalScore    int  `json:"totalScore"`
	CorrectAnswer int  `json:"correctAnswer"`
}

// SessionConfig carries the per-session game settings fixed at creation.
type SessionConfig struct {
	Mode        Mode
	StartSecret string
	BasePoints  int
	ForceDelta  int
	MaxForce    int
	Groups      int
	Cooldown    time.Duration
	Tick        time.Duration
}
