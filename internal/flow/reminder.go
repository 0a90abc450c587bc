package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

// Dialogue states for custom reminders.
const (
	stateReminderMessage State = "reminder_message"
	stateReminderTime    State = "reminder_time"
)

func registerCustomReminder(r *Registry) {
	r.registerEntry(KindCustomReminder, startCustomReminder, false, "/lembrar", "menu:lembrar")

	r.registerStep(KindCustomReminder, stateReminderMessage, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNonEmpty,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateReminderTime, map[string]string{"message": value},
				text(dialogs.ReminderCustomAskTime)), nil
		},
	})

	// The moment expression is parsed in Apply because it is relative to
	// the current clock, which lives in the dependencies.
	r.registerStep(KindCustomReminder, stateReminderTime, StepDefinition{
		Inputs: []models.TriggerKind{models.TriggerFreeText},
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			when, human, err := parseReminderWhen(deps.now(), value)
			if err != nil {
				return Outcome{}, err
			}
			return complete(map[string]string{
				"when":       when.Format(time.RFC3339),
				"when_human": human,
			}), nil
		},
	})

	r.registerAdapter(KindCustomReminder, customReminderAdapter)
}

func startCustomReminder(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	return prompt(stateReminderMessage, nil, text(dialogs.ReminderCustomAskMessage)), nil
}

// parseReminderWhen understands the moment expressions the prompt offers:
// "em N minutos", "em N horas", "amanhã às HH:MM", a bare "HH:MM" (next
// occurrence) and "DD/MM/AAAA HH:MM".
func parseReminderWhen(now time.Time, raw string) (time.Time, string, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.NewReplacer("ã", "a", "à", "a").Replace(v)

	badTime := func() (time.Time, string, error) {
		return time.Time{}, "", models.NewValidationMessage(models.BadTimeFormat, dialogs.ReminderCustomErrorTime)
	}

	if rest, ok := strings.CutPrefix(v, "em "); ok {
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return badTime()
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n <= 0 {
			return badTime()
		}
		switch fields[1] {
		case "minuto", "minutos", "min":
			return now.Add(time.Duration(n) * time.Minute), fmt.Sprintf("%d minuto(s)", n), nil
		case "hora", "horas", "h":
			return now.Add(time.Duration(n) * time.Hour), fmt.Sprintf("%d hora(s)", n), nil
		}
		return badTime()
	}

	if rest, ok := strings.CutPrefix(v, "amanha "); ok {
		rest = strings.TrimPrefix(rest, "as ")
		clock, err := validateTime(rest)
		if err != nil {
			return badTime()
		}
		t, _ := time.ParseInLocation(timeLayout, clock, now.Location())
		tomorrow := now.AddDate(0, 0, 1)
		when := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		return when, "amanhã às " + clock, nil
	}

	if fields := strings.Fields(v); len(fields) == 2 {
		day, derr := time.ParseInLocation(dateLayout, fields[0], now.Location())
		clock, cerr := validateTime(fields[1])
		if derr != nil || cerr != nil {
			return badTime()
		}
		t, _ := time.ParseInLocation(timeLayout, clock, now.Location())
		when := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if !when.After(now) {
			return badTime()
		}
		return when, fields[0] + " às " + clock, nil
	}

	if clock, err := validateTime(v); err == nil {
		t, _ := time.ParseInLocation(timeLayout, clock, now.Location())
		when := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if !when.After(now) {
			when = when.AddDate(0, 0, 1)
		}
		return when, "hoje às " + clock, nil
	}

	return badTime()
}

// customReminderAdapter schedules the one-shot delivery. The notification
// goes out through the messenger with a fresh context because the dialogue
// context is long gone when the timer fires.
func customReminderAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	when, err := time.Parse(time.RFC3339, sess.Draft["when"])
	if err != nil {
		return nil, fmt.Errorf("draft reminder time invalid: %w", err)
	}
	message := sess.Draft["message"]
	recipient := deps.RecipientOf(sess.UserID)
	messenger := deps.Messenger

	_, err = deps.Timer.ScheduleAt(when, func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := messenger.SendMessage(sendCtx, recipient, dialogs.ReminderCustomNotification(message)); err != nil {
			slog.Error("custom reminder delivery failed", "error", err, "recipient", recipient)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reminder: %w", err)
	}
	slog.Debug("custom reminder scheduled", "userID", sess.UserID, "when", when)
	return []models.Message{text(dialogs.ReminderCustomSuccess(message, sess.Draft["when_human"]))}, nil
}
