package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/messaging"
	"github.com/jovisbot/jovis/internal/models"
	"github.com/jovisbot/jovis/internal/store"
)

func fixedNow() time.Time {
	// A Monday.
	return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func newTestBot(t *testing.T) (*Bot, *store.InMemoryStore, *messaging.MockService) {
	t.Helper()
	st := store.NewInMemoryStore()
	svc := messaging.NewMockService()
	b, err := New(
		WithStore(st),
		WithMessenger(svc),
		WithAdminID(42),
		WithNow(fixedNow),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return b, st, svc
}

func lastSent(t *testing.T, svc *messaging.MockService) messaging.SentMessage {
	t.Helper()
	if len(svc.Sent) == 0 {
		t.Fatal("Expected at least one outbound message")
	}
	return svc.Sent[len(svc.Sent)-1]
}

func TestUserIDFromPhone(t *testing.T) {
	cases := map[string]int64{
		"+5511999990000":      5511999990000,
		"5511999990000":       5511999990000,
		"+55 (11) 99999-0000": 5511999990000,
	}
	for phone, want := range cases {
		got, err := UserIDFromPhone(phone)
		if err != nil {
			t.Errorf("UserIDFromPhone(%q) failed: %v", phone, err)
			continue
		}
		if got != want {
			t.Errorf("UserIDFromPhone(%q) = %d, want %d", phone, got, want)
		}
	}

	if _, err := UserIDFromPhone("whatsapp:"); err == nil {
		t.Error("Expected digitless sender to be rejected")
	}
}

func TestStartRegistersUserAndShowsMenu(t *testing.T) {
	b, st, svc := newTestBot(t)
	ctx := context.Background()

	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "/start"})

	user, err := st.GetUser(ctx, 5511999990000)
	if err != nil {
		t.Fatalf("Expected user registered on first contact: %v", err)
	}
	if user.FirstName != "estudante" {
		t.Errorf("Expected placeholder first name, got %q", user.FirstName)
	}
	if user.IsAdmin {
		t.Error("Expected regular user not to be admin")
	}

	if len(svc.Sent) != 2 {
		t.Fatalf("Expected welcome plus menu, got %d messages", len(svc.Sent))
	}
	if svc.Sent[0].Body != dialogs.WelcomeNew("estudante") {
		t.Errorf("Expected new-user welcome, got %q", svc.Sent[0].Body)
	}
	if len(svc.Sent[1].Choices) == 0 {
		t.Error("Expected the main menu to carry choices")
	}

	// Second /start greets a returning user.
	svc.Sent = nil
	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "/start"})
	if svc.Sent[0].Body != dialogs.WelcomeBack("estudante") {
		t.Errorf("Expected returning welcome, got %q", svc.Sent[0].Body)
	}
}

func TestAdminFlagOnFirstContact(t *testing.T) {
	b, st, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleResponse(ctx, models.Response{From: "+42", Body: "/start"})
	user, err := st.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if !user.IsAdmin {
		t.Error("Expected configured admin ID to get the admin flag")
	}
}

func TestNumberedReplySelectsChoice(t *testing.T) {
	b, st, svc := newTestBot(t)
	ctx := context.Background()
	userID := int64(5511999990000)

	for _, name := range []string{"Cálculo I", "Redes"} {
		s := models.Subject{UserID: userID, Name: name, DayOfWeek: models.Monday}
		if err := st.CreateSubject(ctx, &s); err != nil {
			t.Fatalf("CreateSubject failed: %v", err)
		}
	}

	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "/addnota"})
	if got := lastSent(t, svc); len(got.Choices) != 2 {
		t.Fatalf("Expected 2 subject choices, got %v", got.Choices)
	}

	// "2" picks the second offered subject (Redes).
	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "2"})
	if got := lastSent(t, svc); got.Body != dialogs.GradeCreateAskName {
		t.Errorf("Expected grade name prompt after numbered pick, got %q", got.Body)
	}
}

func TestNumericFreeTextIsNotAChoice(t *testing.T) {
	b, st, svc := newTestBot(t)
	ctx := context.Background()
	userID := int64(5511999990000)

	s := models.Subject{UserID: userID, Name: "Cálculo I", DayOfWeek: models.Monday}
	if err := st.CreateSubject(ctx, &s); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "/faltei"})
	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "1"}) // picks the subject
	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "10/03/2025"})
	// The quantity step admits only free text, so a bare "1" must be the
	// quantity, not a stale menu pick.
	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "1"})
	if got := lastSent(t, svc); got.Body != dialogs.AbsenceCreateAskNotes {
		t.Errorf("Expected notes prompt after numeric quantity, got %q", got.Body)
	}
}

func TestTokenBodyRoutesAsButton(t *testing.T) {
	b, st, svc := newTestBot(t)
	ctx := context.Background()
	userID := int64(5511999990000)

	s := models.Subject{UserID: userID, Name: "Cálculo I", DayOfWeek: models.Monday}
	if err := st.CreateSubject(ctx, &s); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "/addnota"})
	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "subject:1"})
	if got := lastSent(t, svc); got.Body != dialogs.GradeCreateAskName {
		t.Errorf("Expected grade name prompt after token reply, got %q", got.Body)
	}
}

func TestMenuTokenStartsDialogue(t *testing.T) {
	b, _, svc := newTestBot(t)
	ctx := context.Background()

	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "menu:addmateria"})
	if got := lastSent(t, svc); got.Body != dialogs.SubjectCreateAskName {
		t.Errorf("Expected subject creation to start from the menu token, got %q", got.Body)
	}
}

func TestHelpCommand(t *testing.T) {
	b, _, svc := newTestBot(t)
	ctx := context.Background()

	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "/help"})
	if got := lastSent(t, svc); got.Body != dialogs.HelpText {
		t.Errorf("Expected help text, got %q", got.Body)
	}
}

func TestTodayCommand(t *testing.T) {
	b, st, svc := newTestBot(t)
	ctx := context.Background()
	userID := int64(5511999990000)

	monday := models.Subject{UserID: userID, Name: "Cálculo I", DayOfWeek: models.Monday, StartTime: "19:00", EndTime: "20:40"}
	tuesday := models.Subject{UserID: userID, Name: "Redes", DayOfWeek: models.Tuesday, StartTime: "19:00", EndTime: "20:40"}
	for _, s := range []*models.Subject{&monday, &tuesday} {
		if err := st.CreateSubject(ctx, s); err != nil {
			t.Fatalf("CreateSubject failed: %v", err)
		}
	}
	activity := models.Activity{SubjectID: monday.ID, Type: models.ActivityExam, Name: "P1", DueDate: fixedNow()}
	if err := st.CreateActivity(ctx, &activity); err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "/hoje"})
	body := lastSent(t, svc).Body
	if !strings.Contains(body, "Cálculo I") {
		t.Errorf("Expected today's class in summary, got %q", body)
	}
	if strings.Contains(body, "Redes") {
		t.Errorf("Expected Tuesday class excluded from Monday summary, got %q", body)
	}
	if !strings.Contains(body, "P1") {
		t.Errorf("Expected today's exam in summary, got %q", body)
	}
}

func TestWeekCommandFiltersWindow(t *testing.T) {
	b, st, svc := newTestBot(t)
	ctx := context.Background()
	userID := int64(5511999990000)

	s := models.Subject{UserID: userID, Name: "Cálculo I", DayOfWeek: models.Monday}
	if err := st.CreateSubject(ctx, &s); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}
	inWeek := models.Activity{SubjectID: s.ID, Type: models.ActivityWork, Name: "Lista 1", DueDate: fixedNow().AddDate(0, 0, 3)}
	later := models.Activity{SubjectID: s.ID, Type: models.ActivityWork, Name: "Lista 9", DueDate: fixedNow().AddDate(0, 0, 12)}
	for _, a := range []*models.Activity{&inWeek, &later} {
		if err := st.CreateActivity(ctx, a); err != nil {
			t.Fatalf("CreateActivity failed: %v", err)
		}
	}

	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "/semana"})
	body := lastSent(t, svc).Body
	if !strings.Contains(body, "Lista 1") {
		t.Errorf("Expected this week's activity, got %q", body)
	}
	if strings.Contains(body, "Lista 9") {
		t.Errorf("Expected later activity excluded, got %q", body)
	}
}

func TestEmptyBodyIsIgnored(t *testing.T) {
	b, _, svc := newTestBot(t)
	ctx := context.Background()

	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "   "})
	if len(svc.Sent) != 0 {
		t.Errorf("Expected no reply for a blank message, got %v", svc.Sent)
	}
}

func TestFreeTextWithoutDialogue(t *testing.T) {
	b, _, svc := newTestBot(t)
	ctx := context.Background()

	b.HandleResponse(ctx, models.Response{From: "+5511999990000", Body: "bom dia"})
	if got := lastSent(t, svc); got.Body != dialogs.NotUnderstood {
		t.Errorf("Expected fallback reply, got %q", got.Body)
	}
}

func TestRecipientOfRoundTrips(t *testing.T) {
	id, err := UserIDFromPhone(RecipientOf(5511999990000))
	if err != nil {
		t.Fatalf("UserIDFromPhone failed: %v", err)
	}
	if id != 5511999990000 {
		t.Errorf("Expected round trip to preserve the ID, got %d", id)
	}
}
