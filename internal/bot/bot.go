// Package bot is the composition root: it wires the store, the messaging
// service, the dialogue engine and the schedulers together, and routes
// every inbound response to the right handler.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jovisbot/jovis/internal/bugreport"
	"github.com/jovisbot/jovis/internal/flow"
	"github.com/jovisbot/jovis/internal/messaging"
	"github.com/jovisbot/jovis/internal/models"
	"github.com/jovisbot/jovis/internal/reminder"
	"github.com/jovisbot/jovis/internal/scheduler"
	"github.com/jovisbot/jovis/internal/store"
)

// DefaultReminderCron runs the due-date sweep every day at 08:00.
const DefaultReminderCron = "0 8 * * *"

// Opts holds configuration options for the bot.
type Opts struct {
	Store        store.Store
	Messenger    messaging.Service
	Timer        flow.Timer
	Bugs         flow.BugReporter
	AdminID      int64
	ReminderCron string
	Now          func() time.Time
}

// Option defines a configuration option for the bot.
type Option func(*Opts)

// WithStore sets the storage backend.
func WithStore(s store.Store) Option {
	return func(o *Opts) { o.Store = s }
}

// WithMessenger sets the messaging service.
func WithMessenger(m messaging.Service) Option {
	return func(o *Opts) { o.Messenger = m }
}

// WithTimer sets the one-shot timer used by custom reminders.
func WithTimer(t flow.Timer) Option {
	return func(o *Opts) { o.Timer = t }
}

// WithBugReporter sets the bug report sink.
func WithBugReporter(b flow.BugReporter) Option {
	return func(o *Opts) { o.Bugs = b }
}

// WithAdminID sets the user allowed to run admin commands.
func WithAdminID(id int64) Option {
	return func(o *Opts) { o.AdminID = id }
}

// WithReminderCron sets the cron expression for the daily reminder sweep.
func WithReminderCron(expr string) Option {
	return func(o *Opts) { o.ReminderCron = expr }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Bot routes inbound messages between the read-only commands and the
// dialogue engine, and owns the background schedulers.
type Bot struct {
	opts   Opts
	engine *flow.Engine
	sched  *scheduler.Scheduler
	sweep  *reminder.Job

	mu      sync.Mutex
	pending map[int64][]models.Choice
}

// New creates a bot over the given collaborators. Store and Messenger are
// required; the timer, bug reporter, clock and cron spec have defaults.
func New(options ...Option) (*Bot, error) {
	var opts Opts
	for _, opt := range options {
		opt(&opts)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("bot requires a store")
	}
	if opts.Messenger == nil {
		return nil, fmt.Errorf("bot requires a messaging service")
	}
	if opts.Timer == nil {
		opts.Timer = flow.NewSimpleTimer()
	}
	if opts.Bugs == nil {
		opts.Bugs = bugreport.NopReporter{}
	}
	if opts.ReminderCron == "" {
		opts.ReminderCron = DefaultReminderCron
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	deps := &flow.Dependencies{
		Store:       opts.Store,
		Messenger:   opts.Messenger,
		Timer:       opts.Timer,
		Bugs:        opts.Bugs,
		RecipientOf: RecipientOf,
		AdminID:     opts.AdminID,
		Now:         opts.Now,
	}
	engine := flow.NewEngine(flow.NewRegistry(), flow.NewSessionStore(), deps)

	bot := &Bot{
		opts:    opts,
		engine:  engine,
		sweep:   reminder.NewJob(opts.Store, opts.Messenger, RecipientOf, opts.Now),
		pending: make(map[int64][]models.Choice),
	}
	return bot, nil
}

// Run starts the messaging service and the reminder schedule, then consumes
// inbound responses until the context is canceled or the channel closes.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.opts.Messenger.Start(ctx); err != nil {
		return fmt.Errorf("failed to start messaging service: %w", err)
	}

	b.sched = scheduler.NewScheduler()
	err := b.sched.AddJob(b.opts.ReminderCron, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := b.sweep.Run(jobCtx); err != nil {
			slog.Error("reminder sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}
	slog.Info("bot started", "reminder_cron", b.opts.ReminderCron)

	defer func() {
		b.sched.Stop()
		b.opts.Timer.Stop()
		if err := b.opts.Messenger.Stop(); err != nil {
			slog.Error("messaging service stop failed", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("bot stopping", "reason", ctx.Err())
			return nil
		case resp, ok := <-b.opts.Messenger.Responses():
			if !ok {
				slog.Info("bot stopping: response channel closed")
				return nil
			}
			b.HandleResponse(ctx, resp)
		}
	}
}
