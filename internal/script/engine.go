package script

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cchalm/task-concierge/internal/chat"
)

// ErrNotStarted indicates a chat the engine is not driving
var ErrNotStarted = errors.New("no scripted walkthrough for chat")

// Phase is the engine's per-chat state
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseStepsRunning    Phase = "steps_running"
	PhaseAwaitingInitial Phase = "awaiting_initial"
	PhaseActive          Phase = "active"
	PhaseExhausted       Phase = "exhausted"
)

// Appender is the slice of the session store the engine writes through
type Appender interface {
	Append(chatID uuid.UUID, owner string, role chat.Role, content string) (chat.Chat, error)
}

// Engine replays walkthrough templates into chats: a presentational step sequence,
// exactly one initial assistant message, then one scripted reply per user message
// until the template is exhausted.
//
// Delayed appends are scheduled tasks keyed by chat id. Teardown or re-entry bumps
// the run's generation, and every scheduled task re-checks its generation before
// touching the store, so stale appends never land and the initial message is
// appended at most once per chat.
type Engine struct {
	store       Appender
	lib         *Library
	logger      zerolog.Logger
	typingDelay time.Duration

	mu   sync.Mutex
	runs map[uuid.UUID]*run
}

type run struct {
	owner       string
	template    Template
	phase       Phase
	index       int // progression index: next scripted reply to use
	initialSent bool
	pending     int // scheduled message appends not yet fired
	generation  int
	steps       []Step
	timers      []*time.Timer
}

// State is a point-in-time snapshot of a run for presentation
type State struct {
	Phase  Phase
	Index  int
	Typing bool
	Steps  []Step
	// SupportLinks is populated once the first assistant reply is present
	SupportLinks []SupportLink
}

type EngineOption func(*Engine)

// WithTypingDelay overrides the modeled "agent is typing" delay before the initial
// message and each scripted reply. Zero makes the engine fully synchronous.
func WithTypingDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.typingDelay = d
	}
}

// NewEngine creates a progression engine writing through the given store slice
func NewEngine(store Appender, lib *Library, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		store:       store,
		lib:         lib,
		logger:      logger,
		typingDelay: 1200 * time.Millisecond,
		runs:        map[uuid.UUID]*run{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins (or re-enters) the scripted walkthrough for a chat. The template is
// resolved from the chat title. Re-entry cancels any pending delayed appends and
// restarts the step sequence, but never re-appends an initial message that already
// landed.
func (e *Engine) Start(chatID uuid.UUID, owner string, title string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.runs[chatID]
	if !ok {
		r = &run{
			owner:    owner,
			template: e.lib.Resolve(title),
			phase:    PhaseIdle,
		}
		e.runs[chatID] = r
	} else {
		e.cancelPendingLocked(r)
	}

	if r.initialSent {
		// Nothing left to replay before ACTIVE; keep the current phase
		return
	}

	r.steps = make([]Step, len(r.template.Steps))
	copy(r.steps, r.template.Steps)
	for i := range r.steps {
		r.steps[i].Status = StepPending
	}
	r.phase = PhaseStepsRunning

	var lastStepDelay time.Duration
	for i, step := range r.template.Steps {
		i := i
		if d := step.Delay(); d > lastStepDelay {
			lastStepDelay = d
		}
		e.scheduleLocked(chatID, r, step.Delay(), false, func(r *run) {
			for j := 0; j < i; j++ {
				r.steps[j].Status = StepComplete
			}
			r.steps[i].Status = StepCurrent
		})
	}

	// The step sequence always completes into exactly one transition, after which
	// the initial message is due
	e.scheduleLocked(chatID, r, lastStepDelay, false, func(r *run) {
		for j := range r.steps {
			r.steps[j].Status = StepComplete
		}
		if r.phase == PhaseStepsRunning {
			r.phase = PhaseAwaitingInitial
		}
	})

	e.scheduleLocked(chatID, r, lastStepDelay+e.typingDelay, true, func(r *run) {
		e.appendInitialLocked(chatID, r)
	})
}

// appendInitialLocked appends the template's initial message exactly once,
// regardless of how many times the trigger fires
func (e *Engine) appendInitialLocked(chatID uuid.UUID, r *run) {
	if r.initialSent {
		return
	}
	r.initialSent = true
	r.phase = PhaseActive

	if _, err := e.store.Append(chatID, r.owner, chat.RoleAssistant, r.template.InitialMessage); err != nil {
		e.logger.Error().Err(err).Stringer("chat_id", chatID).Msg("failed to append initial message")
		return
	}
	e.logger.Debug().
		Stringer("chat_id", chatID).
		Str("template", r.template.Name).
		Msg("initial message appended")
}

// HandleUserMessage appends the user's message and, if the template has a scripted
// reply at the current progression index, schedules that reply after the typing
// delay and advances the index. When the template is exhausted the user message is
// still appended, no reply is produced, and the run stays in the terminal
// EXHAUSTED phase; this is not an error.
func (e *Engine) HandleUserMessage(chatID uuid.UUID, owner string, text string) (chat.Chat, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.runs[chatID]
	if !ok {
		return chat.Chat{}, ErrNotStarted
	}

	c, err := e.store.Append(chatID, owner, chat.RoleUser, text)
	if err != nil {
		return chat.Chat{}, err
	}

	if r.index >= len(r.template.Responses) {
		r.phase = PhaseExhausted
		return c, nil
	}

	// Reserve the reply index now so rapid successive messages consume replies in
	// arrival order
	reply := r.template.Responses[r.index].Assistant
	r.index++

	e.scheduleLocked(chatID, r, e.typingDelay, true, func(r *run) {
		if _, err := e.store.Append(chatID, r.owner, chat.RoleAssistant, reply); err != nil {
			e.logger.Error().Err(err).Stringer("chat_id", chatID).Msg("failed to append scripted reply")
		}
	})

	return c, nil
}

// Cancel tears down a chat's run, preventing any pending delayed append from
// landing. Safe to call for chats the engine never drove.
func (e *Engine) Cancel(chatID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.runs[chatID]
	if !ok {
		return
	}
	e.cancelPendingLocked(r)
	delete(e.runs, chatID)
}

// Snapshot returns the presentational state of a chat's run
func (e *Engine) Snapshot(chatID uuid.UUID) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.runs[chatID]
	if !ok {
		return State{}, false
	}

	st := State{
		Phase:  r.phase,
		Index:  r.index,
		Typing: r.pending > 0,
		Steps:  make([]Step, len(r.steps)),
	}
	copy(st.Steps, r.steps)
	if r.initialSent {
		st.SupportLinks = r.template.SupportLinks
	}
	return st, ok
}

// scheduleLocked runs fn after d, guarded by the run's generation. A zero delay
// runs fn inline, which keeps tests and demos deterministic. typing marks tasks
// that will append a message, so snapshots can show an "agent is typing" state
// while they are outstanding. Callers hold e.mu.
func (e *Engine) scheduleLocked(chatID uuid.UUID, r *run, d time.Duration, typing bool, fn func(r *run)) {
	if d <= 0 {
		fn(r)
		return
	}

	if typing {
		r.pending++
	}
	gen := r.generation
	timer := time.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		cur, ok := e.runs[chatID]
		if !ok || cur.generation != gen {
			// Torn down or re-entered while we were waiting; the append must not land
			return
		}
		if typing {
			cur.pending--
		}
		fn(cur)
	})
	r.timers = append(r.timers, timer)
}

func (e *Engine) cancelPendingLocked(r *run) {
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
	r.pending = 0
	r.generation++
}
