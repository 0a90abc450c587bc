// Package flow implements the conversation state machine that drives every
// multi-step dialogue in Jovis: the session store, the step registry, the
// dialogue engine and the terminal adapters that turn a completed draft
// into one storage write.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jovisbot/jovis/internal/models"
	"github.com/jovisbot/jovis/internal/store"
)

// Kind identifies which dialogue is running. The set is closed and every
// kind's states are declared at registry construction.
type Kind string

const (
	KindCreateSubject  Kind = "create_subject"
	KindManageSubject  Kind = "manage_subject"
	KindSubjectReport  Kind = "subject_report"
	KindAddAbsence     Kind = "add_absence"
	KindManageAbsence  Kind = "manage_absence"
	KindAddActivity    Kind = "add_activity"
	KindManageActivity Kind = "manage_activity"
	KindAddGrade       Kind = "add_grade"
	KindManageGrade    Kind = "manage_grade"
	KindBulkImport     Kind = "bulk_import"
	KindOnboarding     Kind = "onboarding"
	KindDeleteAccount  Kind = "delete_account"
	KindCustomReminder Kind = "custom_reminder"
	KindBroadcast      Kind = "broadcast"
	KindBugReport      Kind = "bug_report"
)

// State is one step tag inside a Kind's dialogue graph.
type State string

// Global cancel triggers, honored in every state of every kind before any
// step lookup.
const (
	CancelCommand = "/cancelar"
	CancelToken   = "cancel"
)

// EffectKind selects what the engine does after a successful transition.
type EffectKind int

const (
	// EffectPrompt persists the session at the new state and sends the
	// next prompt.
	EffectPrompt EffectKind = iota
	// EffectComplete invokes the kind's adapter with the full draft and
	// clears the session regardless of the adapter outcome.
	EffectComplete
	// EffectAbort clears the session and sends the attached messages (or
	// the default cancellation acknowledgment).
	EffectAbort
)

// Outcome is what a transition produces: the next state, draft updates and
// the side effect to apply.
type Outcome struct {
	Next     State
	Set      map[string]string
	Effect   EffectKind
	Messages []models.Message
}

// Validator parses raw input into its canonical string form. It must be
// pure: either the canonical value or a *models.ValidationError.
type Validator func(raw string) (string, error)

// Transition consumes a validated input value and the current session and
// yields an Outcome. Transitions may perform mid-dialogue storage writes
// (management dialogues loop back to their chooser state after a write);
// a returned *models.ValidationError self-loops, store.ErrNotFound aborts
// the dialogue with a not-found message.
type Transition func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error)

// StartFunc initializes a dialogue at its entry point. An EffectPrompt
// outcome creates the session at Outcome.Next; EffectAbort sends the
// messages without creating one (e.g. nothing to manage yet).
type StartFunc func(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error)

// Adapter translates a completed draft into exactly one logical write and
// renders the completion message. The engine clears the session whether or
// not the adapter succeeds.
type Adapter func(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error)

// StepDefinition declares, for one (kind, state), the admissible input
// kinds, the validator and the transition.
type StepDefinition struct {
	Inputs   []models.TriggerKind
	Validate Validator
	Apply    Transition
}

// Admits reports whether the step accepts the given input kind.
func (d StepDefinition) Admits(t models.TriggerKind) bool {
	for _, in := range d.Inputs {
		if in == t {
			return true
		}
	}
	return false
}

// Timer schedules one-shot callbacks, used by custom reminders.
type Timer interface {
	ScheduleAfter(delay time.Duration, fn func()) (string, error)
	ScheduleAt(when time.Time, fn func()) (string, error)
	Cancel(id string) error
	Stop()
}

// Sender delivers an outbound text to a transport recipient.
type Sender interface {
	SendMessage(ctx context.Context, to string, body string) error
}

// BugReporter forwards a user's bug description to the maintainer.
type BugReporter interface {
	Report(ctx context.Context, userID int64, description string) error
}

// Dependencies carries the collaborators transitions and adapters use.
type Dependencies struct {
	Store       store.Store
	Messenger   Sender
	Timer       Timer
	Bugs        BugReporter
	RecipientOf func(userID int64) string
	AdminID     int64
	Now         func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

type entryPoint struct {
	Kind      Kind
	Start     StartFunc
	AdminOnly bool
}

// Registry is the static lookup table built once at startup: entry
// triggers, per-state step definitions, declared state sets and terminal
// adapters.
type Registry struct {
	entries  map[string]entryPoint
	steps    map[Kind]map[State]StepDefinition
	states   map[Kind]map[State]bool
	adapters map[Kind]Adapter
}

// NewRegistry builds the full dialogue table for every conversation kind.
func NewRegistry() *Registry {
	r := &Registry{
		entries:  make(map[string]entryPoint),
		steps:    make(map[Kind]map[State]StepDefinition),
		states:   make(map[Kind]map[State]bool),
		adapters: make(map[Kind]Adapter),
	}
	registerCreateSubject(r)
	registerManageSubject(r)
	registerSubjectReport(r)
	registerAddAbsence(r)
	registerManageAbsence(r)
	registerAddActivity(r)
	registerManageActivity(r)
	registerAddGrade(r)
	registerManageGrade(r)
	registerBulkImport(r)
	registerOnboarding(r)
	registerDeleteAccount(r)
	registerCustomReminder(r)
	registerBroadcast(r)
	registerBugReport(r)
	slog.Debug("flow registry built", "kinds", len(r.steps), "entry_triggers", len(r.entries))
	return r
}

// registerEntry binds trigger tokens (command plus button aliases) to a
// kind's start function.
func (r *Registry) registerEntry(kind Kind, start StartFunc, adminOnly bool, tokens ...string) {
	for _, tok := range tokens {
		if _, dup := r.entries[tok]; dup {
			panic(fmt.Sprintf("flow: duplicate entry trigger %q", tok))
		}
		r.entries[tok] = entryPoint{Kind: kind, Start: start, AdminOnly: adminOnly}
	}
}

// registerStep declares one state and its step definition for a kind.
func (r *Registry) registerStep(kind Kind, state State, def StepDefinition) {
	if r.steps[kind] == nil {
		r.steps[kind] = make(map[State]StepDefinition)
		r.states[kind] = make(map[State]bool)
	}
	if _, dup := r.steps[kind][state]; dup {
		panic(fmt.Sprintf("flow: duplicate step %s/%s", kind, state))
	}
	r.steps[kind][state] = def
	r.states[kind][state] = true
}

func (r *Registry) registerAdapter(kind Kind, a Adapter) {
	r.adapters[kind] = a
}

// Entry resolves an entry trigger token.
func (r *Registry) Entry(token string) (entryPoint, bool) {
	e, ok := r.entries[token]
	return e, ok
}

// Step resolves the definition for (kind, state).
func (r *Registry) Step(kind Kind, state State) (StepDefinition, bool) {
	def, ok := r.steps[kind][state]
	return def, ok
}

// ValidState reports whether a state belongs to the kind's declared set.
func (r *Registry) ValidState(kind Kind, state State) bool {
	return r.states[kind][state]
}

// Adapter returns the terminal adapter registered for a kind.
func (r *Registry) Adapter(kind Kind) (Adapter, bool) {
	a, ok := r.adapters[kind]
	return a, ok
}

// Kinds returns every registered kind, for registry-level tests.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.steps))
	for k := range r.steps {
		kinds = append(kinds, k)
	}
	return kinds
}

// States returns the declared state set of a kind.
func (r *Registry) States(kind Kind) []State {
	states := make([]State, 0, len(r.states[kind]))
	for s := range r.states[kind] {
		states = append(states, s)
	}
	return states
}

// prompt is a shorthand for a single-message prompt outcome.
func prompt(next State, set map[string]string, msgs ...models.Message) Outcome {
	return Outcome{Next: next, Set: set, Effect: EffectPrompt, Messages: msgs}
}

// complete is a shorthand for invoking the kind's adapter.
func complete(set map[string]string) Outcome {
	return Outcome{Set: set, Effect: EffectComplete}
}

// abort is a shorthand for ending the dialogue with the given messages.
func abort(msgs ...models.Message) Outcome {
	return Outcome{Effect: EffectAbort, Messages: msgs}
}

func text(s string) models.Message {
	return models.Message{Text: s}
}
