package flow

import (
	"context"
	"testing"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
	"github.com/jovisbot/jovis/internal/store"
)

func TestDeleteAccountRequiresExactPhrase(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()
	userID := int64(9001)

	if err := st.UpsertUser(ctx, models.User{ID: userID, FirstName: "estudante"}); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	subject := models.Subject{UserID: userID, Name: "Cálculo I", DayOfWeek: models.Monday}
	if err := st.CreateSubject(ctx, &subject); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	engine.HandleEvent(ctx, command(userID, "/deletardados"))
	msgs := engine.HandleEvent(ctx, freeText(userID, "pode apagar tudo"))
	if got := firstText(t, msgs); got != dialogs.DeleteDataConfirmationInvalid {
		t.Errorf("Expected wrong phrase to cancel, got %q", got)
	}
	if _, err := st.GetUser(ctx, userID); err != nil {
		t.Fatal("Expected account untouched after a wrong phrase")
	}
	if sess := engine.Sessions().Get(userID, KindDeleteAccount); sess != nil {
		t.Error("Expected dialogue ended by the wrong phrase")
	}

	engine.HandleEvent(ctx, command(userID, "/deletardados"))
	msgs = engine.HandleEvent(ctx, freeText(userID, "  Excluir Todos os Meus Dados  "))
	if got := firstText(t, msgs); got != dialogs.DeleteDataSuccess {
		t.Errorf("Expected deletion confirmation, got %q", got)
	}

	if _, err := st.GetUser(ctx, userID); err != store.ErrNotFound {
		t.Errorf("Expected user gone, got %v", err)
	}
	if subjects, _ := st.ListSubjects(ctx, userID); len(subjects) != 0 {
		t.Errorf("Expected subjects gone, got %d", len(subjects))
	}
}
