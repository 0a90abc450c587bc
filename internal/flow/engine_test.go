package flow

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
	"github.com/jovisbot/jovis/internal/store"
)

type recordingSender struct {
	sent []sentMessage
	err  error
}

type sentMessage struct {
	To   string
	Body string
}

func (s *recordingSender) SendMessage(ctx context.Context, to, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMessage{To: to, Body: body})
	return nil
}

type recordingBugReporter struct {
	reports []string
	err     error
}

func (r *recordingBugReporter) Report(ctx context.Context, userID int64, description string) error {
	if r.err != nil {
		return r.err
	}
	r.reports = append(r.reports, description)
	return nil
}

func testNow() time.Time {
	return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T) (*Engine, *store.InMemoryStore, *recordingSender) {
	t.Helper()
	st := store.NewInMemoryStore()
	sender := &recordingSender{}
	timer := NewSimpleTimer()
	t.Cleanup(timer.Stop)
	deps := &Dependencies{
		Store:       st,
		Messenger:   sender,
		Timer:       timer,
		Bugs:        &recordingBugReporter{},
		RecipientOf: func(userID int64) string { return "5511999990000" },
		AdminID:     42,
		Now:         testNow,
	}
	return NewEngine(NewRegistry(), NewSessionStore(), deps), st, sender
}

func command(userID int64, payload string) models.Event {
	return models.Event{UserID: userID, Trigger: models.TriggerCommand, Payload: payload}
}

func freeText(userID int64, payload string) models.Event {
	return models.Event{UserID: userID, Trigger: models.TriggerFreeText, Payload: payload}
}

func button(userID int64, payload string) models.Event {
	return models.Event{UserID: userID, Trigger: models.TriggerButton, Payload: payload}
}

func firstText(t *testing.T, msgs []models.Message) string {
	t.Helper()
	if len(msgs) == 0 {
		t.Fatal("Expected at least one reply message, got none")
	}
	return msgs[0].Text
}

func TestCreateSubjectHappyPath(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(1001)

	msgs := engine.HandleEvent(ctx, command(userID, "/addmateria"))
	if got := firstText(t, msgs); got != dialogs.SubjectCreateAskName {
		t.Errorf("Expected name prompt, got %q", got)
	}

	engine.HandleEvent(ctx, freeText(userID, "Cálculo I"))
	engine.HandleEvent(ctx, freeText(userID, "Profa. Regina"))

	msgs = engine.HandleEvent(ctx, button(userID, "day:segunda"))
	if got := firstText(t, msgs); got != dialogs.SubjectCreateAskRoom {
		t.Errorf("Expected room prompt after weekday, got %q", got)
	}

	engine.HandleEvent(ctx, freeText(userID, "Lab 3"))
	engine.HandleEvent(ctx, freeText(userID, "19:00"))
	engine.HandleEvent(ctx, freeText(userID, "20:40"))

	msgs = engine.HandleEvent(ctx, freeText(userID, "2"))
	if got := firstText(t, msgs); got != dialogs.SubjectCreateSuccess("Cálculo I") {
		t.Errorf("Expected creation confirmation, got %q", got)
	}

	if sess := engine.Sessions().Get(userID, KindCreateSubject); sess != nil {
		t.Errorf("Expected session cleared after completion, still in state %q", sess.State)
	}

	subjects, err := st.ListSubjects(ctx, userID)
	if err != nil {
		t.Fatalf("ListSubjects failed: %v", err)
	}
	if len(subjects) != 1 {
		t.Fatalf("Expected 1 subject persisted, got %d", len(subjects))
	}
	s := subjects[0]
	if s.Name != "Cálculo I" || s.Professor != "Profa. Regina" {
		t.Errorf("Subject fields not persisted: %+v", s)
	}
	if s.DayOfWeek != models.Monday {
		t.Errorf("Expected weekday segunda, got %q", s.DayOfWeek)
	}
	if s.StartTime != "19:00" || s.EndTime != "20:40" {
		t.Errorf("Expected canonical times 19:00/20:40, got %q/%q", s.StartTime, s.EndTime)
	}
	if s.Semester != 2 {
		t.Errorf("Expected semester 2, got %d", s.Semester)
	}
}

func TestValidationFailureSelfLoops(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(1002)

	engine.HandleEvent(ctx, command(userID, "/addmateria"))
	engine.HandleEvent(ctx, freeText(userID, "Redes"))
	engine.HandleEvent(ctx, freeText(userID, "Prof. Dias"))
	engine.HandleEvent(ctx, button(userID, "day:terca"))
	engine.HandleEvent(ctx, freeText(userID, "B204"))

	msgs := engine.HandleEvent(ctx, freeText(userID, "sete da noite"))
	if got := firstText(t, msgs); got != dialogs.ErrorInvalidTime {
		t.Errorf("Expected time format error, got %q", got)
	}

	sess := engine.Sessions().Get(userID, KindCreateSubject)
	if sess == nil {
		t.Fatal("Expected session to survive validation failure")
	}
	if sess.State != stateSubjectStart {
		t.Errorf("Expected session still at %q, got %q", stateSubjectStart, sess.State)
	}
	if _, ok := sess.Draft["start_time"]; ok {
		t.Error("Expected draft untouched by rejected input")
	}

	msgs = engine.HandleEvent(ctx, freeText(userID, "19:00"))
	if got := firstText(t, msgs); got != dialogs.SubjectCreateAskEndTime {
		t.Errorf("Expected end time prompt after valid retry, got %q", got)
	}
}

func TestGlobalCancel(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(1003)

	if msgs := engine.HandleEvent(ctx, command(userID, "/cancelar")); msgs != nil {
		t.Errorf("Expected no reply canceling with nothing active, got %v", msgs)
	}

	engine.HandleEvent(ctx, command(userID, "/addmateria"))
	msgs := engine.HandleEvent(ctx, command(userID, "/cancelar"))
	if got := firstText(t, msgs); got != dialogs.OperationCanceled {
		t.Errorf("Expected cancellation acknowledgment, got %q", got)
	}
	if sess := engine.Sessions().Get(userID, KindCreateSubject); sess != nil {
		t.Error("Expected session cleared by cancel")
	}

	if msgs := engine.HandleEvent(ctx, command(userID, "/cancelar")); msgs != nil {
		t.Errorf("Expected repeated cancel to be a silent no-op, got %v", msgs)
	}
}

func TestCancelTokenMatchesCommand(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(1004)

	engine.HandleEvent(ctx, command(userID, "/addmateria"))
	msgs := engine.HandleEvent(ctx, button(userID, "cancel"))
	if got := firstText(t, msgs); got != dialogs.OperationCanceled {
		t.Errorf("Expected cancel token to cancel, got %q", got)
	}
}

func TestEntryTriggerRestartsStaleDialogue(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(1005)

	engine.HandleEvent(ctx, command(userID, "/addmateria"))
	engine.HandleEvent(ctx, freeText(userID, "Banco de Dados"))

	msgs := engine.HandleEvent(ctx, command(userID, "/addmateria"))
	if got := firstText(t, msgs); got != dialogs.SubjectCreateAskName {
		t.Errorf("Expected fresh name prompt on restart, got %q", got)
	}

	sess := engine.Sessions().Get(userID, KindCreateSubject)
	if sess == nil {
		t.Fatal("Expected a fresh session after restart")
	}
	if sess.State != stateSubjectName {
		t.Errorf("Expected restart at %q, got %q", stateSubjectName, sess.State)
	}
	if _, ok := sess.Draft["name"]; ok {
		t.Error("Expected stale draft discarded on restart")
	}
}

func TestManageGradeEditLoopsBackToActionMenu(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(1006)

	subject := models.Subject{UserID: userID, Name: "Estatística", DayOfWeek: models.Wednesday}
	if err := st.CreateSubject(ctx, &subject); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}
	grade := models.Grade{SubjectID: subject.ID, Name: "P1", Value: 6.5}
	if err := st.CreateGrade(ctx, &grade); err != nil {
		t.Fatalf("CreateGrade failed: %v", err)
	}

	engine.HandleEvent(ctx, command(userID, "/gerenciarnotas"))
	engine.HandleEvent(ctx, button(userID, "subject:"+itoa(subject.ID)))
	engine.HandleEvent(ctx, button(userID, "grade:"+itoa(grade.ID)))
	engine.HandleEvent(ctx, button(userID, "action:edit"))
	engine.HandleEvent(ctx, freeText(userID, "P1 substitutiva"))

	msgs := engine.HandleEvent(ctx, freeText(userID, "8,5"))
	if got := firstText(t, msgs); got != dialogs.GradeEditSuccess {
		t.Errorf("Expected edit confirmation, got %q", got)
	}
	if len(msgs) < 2 || len(msgs[1].Choices) == 0 {
		t.Fatal("Expected the action menu to be offered again after the edit")
	}

	sess := engine.Sessions().Get(userID, KindManageGrade)
	if sess == nil {
		t.Fatal("Expected dialogue to stay alive after the edit")
	}
	if sess.State != stateManageGradeAction {
		t.Errorf("Expected loop back to %q, got %q", stateManageGradeAction, sess.State)
	}

	updated, err := st.GetGrade(ctx, grade.ID)
	if err != nil {
		t.Fatalf("GetGrade failed: %v", err)
	}
	if updated.Name != "P1 substitutiva" {
		t.Errorf("Expected renamed grade, got %q", updated.Name)
	}
	if updated.Value != 8.5 {
		t.Errorf("Expected value 8.5, got %v", updated.Value)
	}

	engine.HandleEvent(ctx, button(userID, "action:delete"))
	msgs = engine.HandleEvent(ctx, button(userID, "confirm:yes"))
	if got := firstText(t, msgs); got != dialogs.GradeDeleteSuccess {
		t.Errorf("Expected deletion confirmation, got %q", got)
	}
	if _, err := st.GetGrade(ctx, grade.ID); err == nil {
		t.Error("Expected grade deleted")
	}
	if sess := engine.Sessions().Get(userID, KindManageGrade); sess != nil {
		t.Error("Expected session cleared after deletion")
	}
}

func TestUnhandledInputIsNotUnderstood(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	msgs := engine.HandleEvent(ctx, freeText(2001, "bom dia"))
	if got := firstText(t, msgs); got != dialogs.NotUnderstood {
		t.Errorf("Expected fallback reply, got %q", got)
	}

	msgs = engine.HandleEvent(ctx, command(2001, "/naoexiste"))
	if got := firstText(t, msgs); got != dialogs.NotUnderstood {
		t.Errorf("Expected fallback reply for unknown command, got %q", got)
	}
}

func TestBroadcastRequiresAdmin(t *testing.T) {
	engine, st, sender := newTestEngine(t)
	ctx := context.Background()

	msgs := engine.HandleEvent(ctx, command(7, "/broadcast"))
	if got := firstText(t, msgs); got != dialogs.AdminOnly {
		t.Errorf("Expected admin denial, got %q", got)
	}
	if sess := engine.Sessions().Get(7, KindBroadcast); sess != nil {
		t.Error("Expected no broadcast session for a regular user")
	}

	for _, id := range []int64{7, 8} {
		if err := st.UpsertUser(ctx, models.User{ID: id, FirstName: "estudante"}); err != nil {
			t.Fatalf("UpsertUser failed: %v", err)
		}
	}

	engine.HandleEvent(ctx, command(42, "/broadcast"))
	engine.HandleEvent(ctx, freeText(42, "Aula cancelada amanhã."))
	engine.HandleEvent(ctx, button(42, "broadcast:send"))

	if len(sender.sent) != 2 {
		t.Fatalf("Expected broadcast to reach 2 users, sent %d messages", len(sender.sent))
	}
	for _, m := range sender.sent {
		if !strings.Contains(m.Body, "Aula cancelada amanhã.") {
			t.Errorf("Expected broadcast body in %q", m.Body)
		}
	}
}

func TestAdapterTargetVanished(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(1007)

	subject := models.Subject{UserID: userID, Name: "Sistemas Operacionais", DayOfWeek: models.Friday}
	if err := st.CreateSubject(ctx, &subject); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	engine.HandleEvent(ctx, command(userID, "/gerenciarmaterias"))
	engine.HandleEvent(ctx, button(userID, "subject:"+itoa(subject.ID)))
	engine.HandleEvent(ctx, button(userID, "action:delete"))

	// The record vanishes out of band before the confirmation lands.
	if err := st.DeleteSubject(ctx, subject.ID); err != nil {
		t.Fatalf("DeleteSubject failed: %v", err)
	}

	msgs := engine.HandleEvent(ctx, button(userID, "confirm:yes"))
	if got := firstText(t, msgs); got != dialogs.ErrorNotFound {
		t.Errorf("Expected not-found reply, got %q", got)
	}
	if sess := engine.Sessions().Get(userID, KindManageSubject); sess != nil {
		t.Error("Expected session cleared even though the adapter failed")
	}
}

func TestTransitionNotFoundEndsDialogue(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(1008)

	subject := models.Subject{UserID: userID, Name: "Compiladores", DayOfWeek: models.Thursday}
	if err := st.CreateSubject(ctx, &subject); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	engine.HandleEvent(ctx, command(userID, "/gerenciarmaterias"))
	if err := st.DeleteSubject(ctx, subject.ID); err != nil {
		t.Fatalf("DeleteSubject failed: %v", err)
	}

	msgs := engine.HandleEvent(ctx, button(userID, "subject:"+itoa(subject.ID)))
	if got := firstText(t, msgs); got != dialogs.ErrorNotFound {
		t.Errorf("Expected not-found reply, got %q", got)
	}
	if sess := engine.Sessions().Get(userID, KindManageSubject); sess != nil {
		t.Error("Expected session cleared after the target vanished")
	}
}

func TestBugReportForwardsDescription(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	bugs := &recordingBugReporter{}
	engine.deps.Bugs = bugs
	ctx := context.Background()
	userID := int64(1009)

	msgs := engine.HandleEvent(ctx, command(userID, "/bug"))
	if got := firstText(t, msgs); got != dialogs.BugReportAsk {
		t.Errorf("Expected bug description prompt, got %q", got)
	}

	msgs = engine.HandleEvent(ctx, freeText(userID, "o /hoje mostra a matéria errada"))
	if got := firstText(t, msgs); got != dialogs.BugReportThanks {
		t.Errorf("Expected thanks reply, got %q", got)
	}
	if len(bugs.reports) != 1 || bugs.reports[0] != "o /hoje mostra a matéria errada" {
		t.Errorf("Expected description forwarded, got %v", bugs.reports)
	}
}

func TestExpectsButton(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(1010)

	if engine.ExpectsButton(userID) {
		t.Error("Expected no button expectation with nothing active")
	}

	engine.HandleEvent(ctx, command(userID, "/addmateria"))
	if engine.ExpectsButton(userID) {
		t.Error("Expected free-text step not to admit buttons")
	}

	engine.HandleEvent(ctx, freeText(userID, "Física"))
	engine.HandleEvent(ctx, freeText(userID, "Prof. Lima"))
	if !engine.ExpectsButton(userID) {
		t.Error("Expected weekday step to admit buttons")
	}
}

func TestRegistryCoversEveryKind(t *testing.T) {
	r := NewRegistry()
	kinds := r.Kinds()
	if len(kinds) != 15 {
		t.Errorf("Expected 15 dialogue kinds, got %d", len(kinds))
	}
	for _, kind := range kinds {
		if len(r.States(kind)) == 0 {
			t.Errorf("Kind %q declares no states", kind)
		}
		if _, ok := r.Adapter(kind); !ok {
			t.Errorf("Kind %q has no adapter", kind)
		}
	}
}

func TestIndependentDialoguesDoNotInterfere(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(1011)

	subject := models.Subject{UserID: userID, Name: "Lógica", DayOfWeek: models.Monday}
	if err := st.CreateSubject(ctx, &subject); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	engine.HandleEvent(ctx, command(userID, "/addmateria"))
	engine.HandleEvent(ctx, command(userID, "/lembrar"))

	if engine.Sessions().Get(userID, KindCreateSubject) == nil {
		t.Error("Expected create-subject session to survive a second dialogue")
	}
	if engine.Sessions().Get(userID, KindCustomReminder) == nil {
		t.Error("Expected reminder session alongside create-subject")
	}

	msgs := engine.HandleEvent(ctx, command(userID, "/cancelar"))
	if got := firstText(t, msgs); got != dialogs.OperationCanceled {
		t.Errorf("Expected one cancellation for both dialogues, got %q", got)
	}
	if n := engine.Sessions().ClearAll(userID); n != 0 {
		t.Errorf("Expected cancel to clear every session, %d left", n)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
