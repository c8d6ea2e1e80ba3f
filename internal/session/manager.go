package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"lingobuddy/internal/common"
	"lingobuddy/internal/llm"
	"lingobuddy/internal/mistakes"
	"lingobuddy/internal/observability"
	"lingobuddy/internal/tutor"
)

// exitToken ends the active session when sent as the whole message,
// compared case-insensitively after trimming.
const exitToken = "exit"

const defaultTurnTimeout = 30 * time.Second

// Manager owns the single in-memory session and serializes every
// operation on it. The mutex is held across the provider call, so one
// turn finishes before the next begins.
type Manager struct {
	mu       sync.Mutex
	provider llm.Provider
	store    *mistakes.Store
	timeout  time.Duration
	cur      state
}

func NewManager(provider llm.Provider, store *mistakes.Store, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = defaultTurnTimeout
	}
	return &Manager{
		provider: provider,
		store:    store,
		timeout:  timeout,
		cur:      state{phase: PhaseNotStarted},
	}
}

// Configure records the language pair and level. Allowed while the
// session has not started yet or is still being configured; values may
// be resubmitted until a scene is chosen.
func (m *Manager) Configure(target, native string, level tutor.Level) (Snapshot, error) {
	target = strings.TrimSpace(target)
	native = strings.TrimSpace(native)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.cur.phase {
	case PhaseNotStarted, PhaseConfiguring:
	case PhaseActive:
		return m.snapshotLocked(), ErrActive
	default:
		return m.snapshotLocked(), ErrEnded
	}

	if target == "" || native == "" || level == "" {
		return m.snapshotLocked(), ErrMissingField
	}

	if m.cur.id == "" {
		id, err := common.NewULID()
		if err != nil {
			return m.snapshotLocked(), err
		}
		m.cur.id = id
	}
	m.cur.target = target
	m.cur.native = native
	m.cur.level = level
	m.cur.phase = PhaseConfiguring
	return m.snapshotLocked(), nil
}

// ChooseScene fixes the roleplay scene and asks the model for its
// opening line. On success the session becomes active with the opening
// line as the first transcript turn. On failure the session stays
// configurable and the call can be retried.
func (m *Manager) ChooseScene(ctx context.Context, scene string) (Snapshot, error) {
	scene = strings.TrimSpace(scene)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.cur.phase {
	case PhaseConfiguring:
	case PhaseNotStarted:
		return m.snapshotLocked(), ErrNotConfigured
	case PhaseActive:
		return m.snapshotLocked(), ErrActive
	default:
		return m.snapshotLocked(), ErrEnded
	}

	if scene == "" {
		return m.snapshotLocked(), ErrNoScene
	}
	m.cur.scene = scene

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	raw, err := m.provider.Chat(cctx, m.buildMessagesLocked())
	if err != nil {
		return m.snapshotLocked(), err
	}

	// The opening line answers no learner message, so any correction
	// segment in it is dropped.
	display, _, _ := tutor.ParseReply(raw)
	m.cur.transcript = append(m.cur.transcript, Turn{Role: llm.RoleAssistant, Text: display})
	m.cur.phase = PhaseActive
	return m.snapshotLocked(), nil
}

// Say handles one user message in the active session: exit detection,
// the model round trip, correction parsing and mistake persistence.
func (m *Manager) Say(ctx context.Context, text string) (*TurnResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.cur.phase {
	case PhaseActive:
	case PhaseReviewing:
		if isExit(text) {
			// repeated exit just shows the review again
			r := m.reviewLocked()
			return &TurnResult{Review: &r}, nil
		}
		return nil, ErrEnded
	default:
		return nil, ErrNotActive
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	if isExit(trimmed) {
		// the exit token never reaches the model or the transcript
		m.cur.phase = PhaseReviewing
		r := m.reviewLocked()
		return &TurnResult{Review: &r}, nil
	}

	// The user turn goes in before the provider call; a failed call
	// must not lose it.
	m.cur.transcript = append(m.cur.transcript, Turn{Role: llm.RoleUser, Text: trimmed})
	m.cur.userTurns++

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	raw, err := m.provider.Chat(cctx, m.buildMessagesLocked())
	if err != nil {
		return nil, err
	}

	display, corr, parseErr := tutor.ParseReply(raw)
	if parseErr != nil {
		observability.LoggerFromContext(ctx).Warn("correction segment unreadable",
			"error", parseErr.Error())
	}

	m.cur.transcript = append(m.cur.transcript, Turn{Role: llm.RoleAssistant, Text: display})

	res := &TurnResult{Reply: display, Feedback: corr}
	if corr != nil {
		rec, err := m.store.Record(ctx, trimmed, corr.Mistake, corr.Correction)
		if err != nil {
			observability.LoggerFromContext(ctx).Error("mistake not stored",
				"error", err.Error())
			res.Warning = "Your mistake feedback could not be saved this turn."
		} else {
			res.Stored = rec
			m.cur.recorded = append(m.cur.recorded, *rec)
		}
	}
	return res, nil
}

// Review returns the end-of-session summary. Only valid once the
// session has ended.
func (m *Manager) Review() (Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur.phase != PhaseReviewing {
		return Review{}, ErrNotEnded
	}
	return m.reviewLocked(), nil
}

// Reset discards the session and returns to the initial phase. Stored
// mistakes are not touched.
func (m *Manager) Reset() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur = state{phase: PhaseNotStarted}
	return m.snapshotLocked()
}

// Snapshot returns a copy of the current session for rendering.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		ID:         m.cur.id,
		Phase:      m.cur.phase,
		TargetLang: m.cur.target,
		NativeLang: m.cur.native,
		Level:      m.cur.level,
		Scene:      m.cur.scene,
		Transcript: append([]Turn(nil), m.cur.transcript...),
		UserTurns:  m.cur.userTurns,
	}
}

func (m *Manager) reviewLocked() Review {
	recs := append([]mistakes.Record(nil), m.cur.recorded...)
	return Review{Records: recs, Focus: tutor.Focus(len(recs))}
}

// buildMessagesLocked assembles the provider conversation: system
// prompt, the hidden opening instruction, then the visible transcript.
// The hidden instruction keeps the message list alternating from a
// user turn even though the transcript starts with the assistant's
// opening line.
func (m *Manager) buildMessagesLocked() []llm.Message {
	msgs := make([]llm.Message, 0, len(m.cur.transcript)+2)
	msgs = append(msgs, llm.Message{
		Role:    llm.RoleSystem,
		Content: tutor.SystemPrompt(m.cur.target, m.cur.native, m.cur.level, m.cur.scene),
	})
	msgs = append(msgs, llm.Message{
		Role:    llm.RoleUser,
		Content: tutor.OpeningInstruction(m.cur.target),
	})
	for _, t := range m.cur.transcript {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Text})
	}
	return msgs
}

func isExit(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), exitToken)
}
