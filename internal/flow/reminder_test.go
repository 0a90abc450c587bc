package flow

import (
	"context"
	"testing"
	"time"

	"github.com/jovisbot/jovis/internal/dialogs"
)

type capturingTimer struct {
	when time.Time
	fn   func()
}

func (t *capturingTimer) ScheduleAfter(delay time.Duration, fn func()) (string, error) {
	return "", nil
}

func (t *capturingTimer) ScheduleAt(when time.Time, fn func()) (string, error) {
	t.when = when
	t.fn = fn
	return "timer_1", nil
}

func (t *capturingTimer) Cancel(id string) error { return nil }
func (t *capturingTimer) Stop()                  {}

func TestParseReminderWhen(t *testing.T) {
	now := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)

	cases := []struct {
		raw   string
		want  time.Time
		human string
	}{
		{"em 30 minutos", now.Add(30 * time.Minute), "30 minuto(s)"},
		{"em 2 horas", now.Add(2 * time.Hour), "2 hora(s)"},
		{"em 1 h", now.Add(time.Hour), "1 hora(s)"},
		{"amanhã às 08:00", time.Date(2025, time.March, 11, 8, 0, 0, 0, time.UTC), "amanhã às 08:00"},
		{"amanha 08:00", time.Date(2025, time.March, 11, 8, 0, 0, 0, time.UTC), "amanhã às 08:00"},
		{"15/03/2025 10:30", time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC), "15/03/2025 às 10:30"},
		{"16:00", time.Date(2025, time.March, 10, 16, 0, 0, 0, time.UTC), "hoje às 16:00"},
		// A clock already past rolls over to tomorrow.
		{"09:00", time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC), "hoje às 09:00"},
	}
	for _, tc := range cases {
		when, human, err := parseReminderWhen(now, tc.raw)
		if err != nil {
			t.Errorf("parseReminderWhen(%q) failed: %v", tc.raw, err)
			continue
		}
		if !when.Equal(tc.want) {
			t.Errorf("parseReminderWhen(%q) = %v, want %v", tc.raw, when, tc.want)
		}
		if human != tc.human {
			t.Errorf("parseReminderWhen(%q) human = %q, want %q", tc.raw, human, tc.human)
		}
	}
}

func TestParseReminderWhenRejectsBadInput(t *testing.T) {
	now := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"em banana minutos",
		"em -5 minutos",
		"em 5 dias",
		"amanhã às tarde",
		"01/01/2020 10:00", // in the past
		"depois",
		"",
	} {
		if _, _, err := parseReminderWhen(now, raw); err == nil {
			t.Errorf("Expected %q to be rejected", raw)
		}
	}
}

func TestCustomReminderSchedulesDelivery(t *testing.T) {
	engine, _, sender := newTestEngine(t)
	timer := &capturingTimer{}
	engine.deps.Timer = timer
	ctx := context.Background()
	userID := int64(3001)

	engine.HandleEvent(ctx, command(userID, "/lembrar"))
	engine.HandleEvent(ctx, freeText(userID, "estudar para a P2"))

	msgs := engine.HandleEvent(ctx, freeText(userID, "em 30 minutos"))
	if got := firstText(t, msgs); got != dialogs.ReminderCustomSuccess("estudar para a P2", "30 minuto(s)") {
		t.Errorf("Expected scheduling confirmation, got %q", got)
	}

	want := testNow().Add(30 * time.Minute)
	if !timer.when.Equal(want) {
		t.Errorf("Expected reminder at %v, got %v", want, timer.when)
	}
	if timer.fn == nil {
		t.Fatal("Expected a delivery callback scheduled")
	}

	timer.fn()
	if len(sender.sent) != 1 {
		t.Fatalf("Expected 1 delivered notification, got %d", len(sender.sent))
	}
	if sender.sent[0].Body != dialogs.ReminderCustomNotification("estudar para a P2") {
		t.Errorf("Unexpected notification body %q", sender.sent[0].Body)
	}
}

func TestCustomReminderBadTimeSelfLoops(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(3002)

	engine.HandleEvent(ctx, command(userID, "/lembrar"))
	engine.HandleEvent(ctx, freeText(userID, "pagar a mensalidade"))

	msgs := engine.HandleEvent(ctx, freeText(userID, "qualquer hora"))
	if got := firstText(t, msgs); got != dialogs.ReminderCustomErrorTime {
		t.Errorf("Expected custom time error, got %q", got)
	}

	sess := engine.Sessions().Get(userID, KindCustomReminder)
	if sess == nil || sess.State != stateReminderTime {
		t.Error("Expected dialogue still waiting for a valid time")
	}
}
