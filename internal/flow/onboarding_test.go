package flow

import (
	"context"
	"testing"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
	"github.com/jovisbot/jovis/internal/store"
)

func seedCatalog(st *store.InMemoryStore) {
	st.SeedCatalog([]models.CourseSubject{
		{Course: "ADS", Shift: "Noite", Semester: 1, Name: "Algoritmos", Professor: "Prof. Souza",
			DayOfWeek: models.Monday, Room: "B101", StartTime: "19:00", EndTime: "20:40"},
		{Course: "ADS", Shift: "Noite", Semester: 1, Name: "Matemática Discreta", Professor: "Profa. Regina",
			DayOfWeek: models.Tuesday, Room: "B102", StartTime: "19:00", EndTime: "20:40"},
		{Course: "ADS", Shift: "Noite", Semester: 2, Name: "Estrutura de Dados", Professor: "Prof. Dias",
			DayOfWeek: models.Monday, Room: "B103", StartTime: "20:50", EndTime: "22:30"},
		// Overlaps with Algoritmos on Monday evening.
		{Course: "ADS", Shift: "Noite", Semester: 3, Name: "Redes", Professor: "Prof. Lima",
			DayOfWeek: models.Monday, Room: "B104", StartTime: "19:50", EndTime: "21:30"},
	})
}

func TestOnboardingIdealGrade(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedCatalog(st)
	ctx := context.Background()
	userID := int64(4001)
	if err := st.UpsertUser(ctx, models.User{ID: userID, FirstName: "estudante"}); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	msgs := engine.HandleEvent(ctx, command(userID, "/fatec"))
	if len(msgs) == 0 || len(msgs[0].Choices) != 1 {
		t.Fatalf("Expected one course choice, got %v", msgs)
	}

	engine.HandleEvent(ctx, button(userID, "course:ADS"))
	engine.HandleEvent(ctx, button(userID, "shift:Noite"))
	engine.HandleEvent(ctx, button(userID, "gradetype:ideal"))

	msgs = engine.HandleEvent(ctx, button(userID, "sem:1"))
	if got := firstText(t, msgs); got != dialogs.OnboardingIdealSuccess(2, 1) {
		t.Errorf("Expected ideal grade confirmation, got %q", got)
	}

	subjects, err := st.ListSubjects(ctx, userID)
	if err != nil {
		t.Fatalf("ListSubjects failed: %v", err)
	}
	if len(subjects) != 2 {
		t.Fatalf("Expected 2 subjects created, got %d", len(subjects))
	}

	user, err := st.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.Course != "ADS" || user.Shift != "Noite" || user.Semester != 1 {
		t.Errorf("Profile not updated: %+v", user)
	}
}

func TestOnboardingIdealGradeEmptySemester(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedCatalog(st)
	ctx := context.Background()
	userID := int64(4002)

	engine.HandleEvent(ctx, command(userID, "/fatec"))
	engine.HandleEvent(ctx, button(userID, "course:ADS"))
	engine.HandleEvent(ctx, button(userID, "shift:Noite"))
	engine.HandleEvent(ctx, button(userID, "gradetype:ideal"))

	msgs := engine.HandleEvent(ctx, button(userID, "sem:6"))
	if got := firstText(t, msgs); got != dialogs.OnboardingNoIdealGrade(6) {
		t.Errorf("Expected empty semester notice, got %q", got)
	}
	if sess := engine.Sessions().Get(userID, KindOnboarding); sess != nil {
		t.Error("Expected dialogue ended on empty semester")
	}
}

func TestOnboardingCustomGradeConflict(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedCatalog(st)
	ctx := context.Background()
	userID := int64(4003)
	if err := st.UpsertUser(ctx, models.User{ID: userID, FirstName: "estudante"}); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	engine.HandleEvent(ctx, command(userID, "/fatec"))
	engine.HandleEvent(ctx, button(userID, "course:ADS"))
	engine.HandleEvent(ctx, button(userID, "shift:Noite"))
	engine.HandleEvent(ctx, button(userID, "gradetype:custom"))

	// Algoritmos and Redes overlap on Monday: the pick must be rejected
	// and the dialogue must stay put.
	msgs := engine.HandleEvent(ctx, freeText(userID, "1, 4"))
	if got := firstText(t, msgs); got == dialogs.OnboardingNoConflictAskSem {
		t.Fatal("Expected conflicting pick to be rejected")
	}
	sess := engine.Sessions().Get(userID, KindOnboarding)
	if sess == nil || sess.State != stateOnboardCustomIDs {
		t.Fatal("Expected dialogue still waiting for a consistent pick")
	}

	engine.HandleEvent(ctx, freeText(userID, "1, 3"))
	msgs = engine.HandleEvent(ctx, freeText(userID, "pular"))
	if got := firstText(t, msgs); got != dialogs.OnboardingCustomSuccess(2) {
		t.Errorf("Expected custom grade confirmation, got %q", got)
	}

	subjects, err := st.ListSubjects(ctx, userID)
	if err != nil {
		t.Fatalf("ListSubjects failed: %v", err)
	}
	if len(subjects) != 2 {
		t.Errorf("Expected 2 subjects created, got %d", len(subjects))
	}
}

func TestOnboardingWithoutCatalog(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	msgs := engine.HandleEvent(ctx, command(5001, "/fatec"))
	if got := firstText(t, msgs); got != dialogs.OnboardingNoCatalog {
		t.Errorf("Expected no-catalog notice, got %q", got)
	}
	if sess := engine.Sessions().Get(5001, KindOnboarding); sess != nil {
		t.Error("Expected no session without a catalog")
	}
}

func TestParseCatalogIDs(t *testing.T) {
	ids, err := parseCatalogIDs("3, 1 2,3")
	if err != nil {
		t.Fatalf("parseCatalogIDs failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("Expected deduplicated sorted IDs [1 2 3], got %v", ids)
	}

	for _, raw := range []string{"", "um, dois", "1; 2"} {
		if _, err := parseCatalogIDs(raw); err == nil {
			t.Errorf("Expected %q to be rejected", raw)
		}
	}
}

func TestScheduleConflict(t *testing.T) {
	a := models.CourseSubject{Name: "A", DayOfWeek: models.Monday, StartTime: "19:00", EndTime: "20:40"}
	b := models.CourseSubject{Name: "B", DayOfWeek: models.Monday, StartTime: "20:50", EndTime: "22:30"}
	c := models.CourseSubject{Name: "C", DayOfWeek: models.Monday, StartTime: "20:00", EndTime: "21:00"}
	d := models.CourseSubject{Name: "D", DayOfWeek: models.Tuesday, StartTime: "19:00", EndTime: "20:40"}

	if detail := scheduleConflict([]models.CourseSubject{a, b, d}); detail != "" {
		t.Errorf("Expected no conflict for back-to-back classes, got %q", detail)
	}
	if detail := scheduleConflict([]models.CourseSubject{a, c}); detail == "" {
		t.Error("Expected overlap between A and C to be reported")
	}
}

func TestValidateOptionalSemester(t *testing.T) {
	got, err := validateOptionalSemester("pular")
	expectValid(t, got, err, "")

	got, err = validateOptionalSemester("3")
	expectValid(t, got, err, "3")

	if _, err := validateOptionalSemester("-2"); err == nil {
		t.Error("Expected negative semester to be rejected")
	}
}
