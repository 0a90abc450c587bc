package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

const importPayload = `[
  {"nome": "Cálculo I", "professor": "Profa. Regina", "dia": "segunda", "sala": "B101", "inicio": "19:00", "fim": "20:40", "semestre": 1},
  {"nome": "Algoritmos", "professor": "Prof. Souza", "dia": "terça-feira", "sala": "Lab 2", "inicio": "7:30", "fim": "9:10", "semestre": 1}
]`

func TestBulkImport(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(8001)

	engine.HandleEvent(ctx, command(userID, "/import"))
	msgs := engine.HandleEvent(ctx, freeText(userID, "```"+importPayload+"```"))
	if got := firstText(t, msgs); got != dialogs.ImportSuccess(2) {
		t.Errorf("Expected import confirmation, got %q", got)
	}

	subjects, err := st.ListSubjects(ctx, userID)
	if err != nil {
		t.Fatalf("ListSubjects failed: %v", err)
	}
	if len(subjects) != 2 {
		t.Fatalf("Expected 2 subjects imported, got %d", len(subjects))
	}

	byName := make(map[string]models.Subject)
	for _, s := range subjects {
		byName[s.Name] = s
	}
	alg := byName["Algoritmos"]
	if alg.DayOfWeek != models.Tuesday {
		t.Errorf("Expected weekday normalized to terca, got %q", alg.DayOfWeek)
	}
	if alg.StartTime != "07:30" {
		t.Errorf("Expected start time zero-padded, got %q", alg.StartTime)
	}
}

func TestBulkImportRejectsBadPayloadAtomically(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(8002)

	engine.HandleEvent(ctx, command(userID, "/import"))

	bad := `[
	  {"nome": "Cálculo I", "dia": "segunda", "inicio": "19:00", "fim": "20:40", "semestre": 1},
	  {"nome": "", "dia": "domingo", "inicio": "19h", "fim": "20:40", "semestre": 0}
	]`
	msgs := engine.HandleEvent(ctx, freeText(userID, bad))
	if got := firstText(t, msgs); !strings.Contains(got, "entrada 2") {
		t.Errorf("Expected error listing the bad entry, got %q", got)
	}

	// All-or-nothing: the valid first entry must not have been written.
	if subjects, _ := st.ListSubjects(ctx, userID); len(subjects) != 0 {
		t.Errorf("Expected nothing written for a partially invalid payload, got %d subjects", len(subjects))
	}

	sess := engine.Sessions().Get(userID, KindBulkImport)
	if sess == nil || sess.State != stateImportPayload {
		t.Error("Expected dialogue still waiting for a corrected payload")
	}
}

func TestParseImportPayload(t *testing.T) {
	if _, err := parseImportPayload("isso não é json"); err == nil {
		t.Error("Expected non-JSON input to be rejected")
	}
	if _, err := parseImportPayload("[]"); err == nil {
		t.Error("Expected empty list to be rejected")
	}

	canonical, err := parseImportPayload(importPayload)
	if err != nil {
		t.Fatalf("parseImportPayload failed: %v", err)
	}
	if !strings.Contains(canonical, `"inicio":"07:30"`) {
		t.Errorf("Expected canonical times in encoded payload, got %s", canonical)
	}
}
