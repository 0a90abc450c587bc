package flow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
	"github.com/jovisbot/jovis/internal/store"
)

// Engine drives one (user, kind) state machine per inbound event: it
// resolves the dialogue, validates the input, applies the transition and
// persists or clears the session.
type Engine struct {
	registry *Registry
	sessions *SessionStore
	deps     *Dependencies

	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

// NewEngine creates a dialogue engine over the given registry, session
// store and dependencies.
func NewEngine(registry *Registry, sessions *SessionStore, deps *Dependencies) *Engine {
	return &Engine{
		registry: registry,
		sessions: sessions,
		deps:     deps,
		users:    make(map[int64]*sync.Mutex),
	}
}

// Sessions exposes the session store, for the router's fallback checks.
func (e *Engine) Sessions() *SessionStore {
	return e.sessions
}

// ExpectsButton reports whether any of the user's live sessions currently
// admits a button token. The router uses this to decide whether a bare
// number is a menu pick or free text.
func (e *Engine) ExpectsButton(userID int64) bool {
	for _, sess := range e.sessions.Active(userID) {
		def, ok := e.registry.Step(sess.Kind, sess.State)
		if ok && def.Admits(models.TriggerButton) {
			return true
		}
	}
	return false
}

// userLock serializes events per user so no two events interleave their
// read-modify-write of the same sessions.
func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	mu, ok := e.users[userID]
	if !ok {
		mu = &sync.Mutex{}
		e.users[userID] = mu
	}
	return mu
}

// HandleEvent processes one inbound event and returns the messages to
// send back. It never returns an engine-crashing error for bad user
// input; unhandled input yields a generic reply.
func (e *Engine) HandleEvent(ctx context.Context, ev models.Event) []models.Message {
	mu := e.userLock(ev.UserID)
	mu.Lock()
	defer mu.Unlock()

	// Global cancel: checked before any step lookup, valid in every
	// state, idempotent when nothing is active.
	if ev.Payload == CancelCommand || ev.Payload == CancelToken {
		if n := e.sessions.ClearAll(ev.UserID); n > 0 {
			slog.Debug("dialogue canceled", "userID", ev.UserID, "cleared", n)
			return []models.Message{text(dialogs.OperationCanceled)}
		}
		slog.Debug("cancel with no active dialogue", "userID", ev.UserID)
		return nil
	}

	// Explicit entry triggers always start a fresh dialogue of their kind.
	if entry, ok := e.registry.Entry(ev.Payload); ok {
		return e.startDialogue(ctx, ev.UserID, entry)
	}

	// Continuation: route to whichever live session admits this input kind.
	sess, def := e.resolveContinuation(ev)
	if sess == nil {
		slog.Debug("unhandled input", "userID", ev.UserID, "trigger", ev.Trigger)
		return []models.Message{text(dialogs.NotUnderstood)}
	}

	value := ev.Payload
	if def.Validate != nil {
		parsed, err := def.Validate(ev.Payload)
		if err != nil {
			// Validation failure: self-loop, session unchanged.
			return []models.Message{text(validationMessage(err))}
		}
		value = parsed
	}

	outcome, err := def.Apply(ctx, e.deps, sess, value)
	if err != nil {
		return e.transitionError(ev.UserID, sess, err)
	}
	return e.applyOutcome(ctx, sess, outcome)
}

// startDialogue discards any stale session of the same kind and runs the
// kind's start function.
func (e *Engine) startDialogue(ctx context.Context, userID int64, entry entryPoint) []models.Message {
	if entry.AdminOnly && userID != e.deps.AdminID {
		slog.Debug("admin-only entry denied", "userID", userID, "kind", entry.Kind)
		return []models.Message{text(dialogs.AdminOnly)}
	}
	e.sessions.Clear(userID, entry.Kind)

	outcome, err := entry.Start(ctx, e.deps, userID)
	if err != nil {
		slog.Error("dialogue start failed", "error", err, "userID", userID, "kind", entry.Kind)
		return []models.Message{text(dialogs.GenericFailure)}
	}
	if outcome.Effect != EffectPrompt {
		// Nothing to collect (e.g. no records to manage): no session.
		return outcome.Messages
	}

	sess := NewSession(userID, entry.Kind, outcome.Next, e.deps.now())
	sess.Merge(outcome.Set)
	if !e.registry.ValidState(sess.Kind, sess.State) {
		slog.Error("entry state not declared for kind", "kind", sess.Kind, "state", sess.State)
		return []models.Message{text(dialogs.GenericFailure)}
	}
	e.sessions.Put(sess)
	slog.Debug("dialogue started", "userID", userID, "kind", sess.Kind, "state", sess.State)
	return outcome.Messages
}

// resolveContinuation picks the live session whose current step admits
// the event's input kind, preferring the most recently updated.
func (e *Engine) resolveContinuation(ev models.Event) (*Session, StepDefinition) {
	for _, sess := range e.sessions.Active(ev.UserID) {
		def, ok := e.registry.Step(sess.Kind, sess.State)
		if !ok {
			// Stale or unknown state: never crash, skip it.
			slog.Error("no step definition for session", "kind", sess.Kind, "state", sess.State)
			continue
		}
		if def.Admits(ev.Trigger) {
			return sess, def
		}
	}
	return nil, StepDefinition{}
}

// applyOutcome merges the draft and applies the side effect descriptor.
func (e *Engine) applyOutcome(ctx context.Context, sess *Session, outcome Outcome) []models.Message {
	sess.Merge(outcome.Set)

	switch outcome.Effect {
	case EffectPrompt:
		if !e.registry.ValidState(sess.Kind, outcome.Next) {
			slog.Error("transition produced undeclared state", "kind", sess.Kind, "state", outcome.Next)
			return []models.Message{text(dialogs.GenericFailure)}
		}
		sess.State = outcome.Next
		sess.UpdatedAt = e.deps.now()
		e.sessions.Put(sess)
		return outcome.Messages

	case EffectComplete:
		// The draft is one-shot: clear the session whatever the adapter
		// outcome; a failed write is not retried.
		defer e.sessions.Clear(sess.UserID, sess.Kind)
		adapter, ok := e.registry.Adapter(sess.Kind)
		if !ok {
			slog.Error("no adapter registered for kind", "kind", sess.Kind)
			return []models.Message{text(dialogs.GenericFailure)}
		}
		msgs, err := adapter(ctx, e.deps, sess)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				slog.Debug("adapter target vanished", "userID", sess.UserID, "kind", sess.Kind)
				return []models.Message{text(dialogs.ErrorNotFound)}
			}
			slog.Error("adapter failed", "error", err, "userID", sess.UserID, "kind", sess.Kind)
			return []models.Message{text(dialogs.GenericFailure)}
		}
		slog.Debug("dialogue completed", "userID", sess.UserID, "kind", sess.Kind)
		return msgs

	case EffectAbort:
		e.sessions.Clear(sess.UserID, sess.Kind)
		if len(outcome.Messages) == 0 {
			return []models.Message{text(dialogs.OperationCanceled)}
		}
		return outcome.Messages
	}

	slog.Error("unknown effect kind", "effect", outcome.Effect)
	return []models.Message{text(dialogs.GenericFailure)}
}

// transitionError maps errors surfaced by Apply: validation errors
// self-loop, vanished records end the dialogue, anything else ends it
// with a generic failure.
func (e *Engine) transitionError(userID int64, sess *Session, err error) []models.Message {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return []models.Message{text(validationMessage(verr))}
	}
	e.sessions.Clear(userID, sess.Kind)
	if errors.Is(err, store.ErrNotFound) {
		slog.Debug("dialogue target vanished", "userID", userID, "kind", sess.Kind)
		return []models.Message{text(dialogs.ErrorNotFound)}
	}
	slog.Error("transition failed", "error", err, "userID", userID, "kind", sess.Kind, "state", sess.State)
	return []models.Message{text(dialogs.GenericFailure)}
}

// validationMessage picks the user-facing text for a validation failure.
func validationMessage(err error) string {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return dialogs.NotUnderstood
	}
	if verr.Message != "" {
		return verr.Message
	}
	switch verr.Kind {
	case models.BadDateFormat:
		return dialogs.ErrorInvalidDate
	case models.BadTimeFormat:
		return dialogs.ErrorInvalidTime
	case models.NotPositiveInteger:
		return dialogs.ErrorInvalidNumberPositive
	case models.BadDecimal:
		return dialogs.ErrorInvalidGrade
	case models.BadWeekday:
		return dialogs.ErrorInvalidWeekday
	case models.BadChoice:
		return dialogs.ErrorInvalidChoice
	case models.EmptyField:
		return dialogs.ErrorEmptyField
	case models.NotFound:
		return dialogs.ErrorNotFound
	}
	return dialogs.NotUnderstood
}
