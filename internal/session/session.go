package session

import (
	"errors"

	"lingobuddy/internal/mistakes"
	"lingobuddy/internal/tutor"
)

// Phase is the lifecycle stage of the single practice session.
type Phase string

const (
	PhaseNotStarted  Phase = "not_started"
	PhaseConfiguring Phase = "configuring"
	PhaseActive      Phase = "active"
	PhaseReviewing   Phase = "reviewing"
)

var (
	ErrMissingField  = errors.New("target language, native language and level are required")
	ErrNoScene       = errors.New("scene is required")
	ErrNotConfigured = errors.New("configure the session first")
	ErrNotActive     = errors.New("no active scene; choose one first")
	ErrActive        = errors.New("session already active; reset to reconfigure")
	ErrEnded         = errors.New("session has ended; reset to start over")
	ErrEmptyMessage  = errors.New("empty message")
	ErrNotEnded      = errors.New("session is still running; end it first")
)

// Turn is one visible transcript entry. Turns are immutable once
// appended.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Review is the end-of-session summary: the mistakes recorded during
// this session only, plus a focus suggestion.
type Review struct {
	Records []mistakes.Record `json:"records"`
	Focus   string            `json:"focus"`
}

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	ID         string      `json:"id,omitempty"`
	Phase      Phase       `json:"phase"`
	TargetLang string      `json:"target_language,omitempty"`
	NativeLang string      `json:"native_language,omitempty"`
	Level      tutor.Level `json:"level,omitempty"`
	Scene      string      `json:"scene,omitempty"`
	Transcript []Turn      `json:"transcript"`
	UserTurns  int         `json:"user_turns"`
}

// TurnResult is the outcome of one accepted user message.
type TurnResult struct {
	// Reply is the assistant text shown to the learner. Empty when the
	// turn ended the session.
	Reply string
	// Feedback is the correction surfaced this turn, nil when the reply
	// carried none.
	Feedback *tutor.Correction
	// Stored is the persisted record, nil when there was no mistake or
	// storing it failed.
	Stored *mistakes.Record
	// Warning is a non-fatal notice for the learner, such as a storage
	// failure.
	Warning string
	// Review is set when this turn ended the session.
	Review *Review
}

type state struct {
	id         string
	phase      Phase
	target     string
	native     string
	level      tutor.Level
	scene      string
	transcript []Turn
	userTurns  int
	recorded   []mistakes.Record
}
