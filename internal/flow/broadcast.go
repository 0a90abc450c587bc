package flow

import (
	"context"
	"log/slog"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

// Dialogue states for the admin broadcast.
const (
	stateBroadcastMessage State = "broadcast_message"
	stateBroadcastConfirm State = "broadcast_confirm"
)

func registerBroadcast(r *Registry) {
	r.registerEntry(KindBroadcast, startBroadcast, true, "/broadcast", "menu:broadcast")

	r.registerStep(KindBroadcast, stateBroadcastMessage, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNonEmpty,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			users, err := deps.Store.ListUsers(ctx)
			if err != nil {
				return Outcome{}, err
			}
			return prompt(stateBroadcastConfirm, map[string]string{"message": value},
				models.Message{
					Text: dialogs.BroadcastConfirm(value, len(users)),
					Choices: []models.Choice{
						{Label: "✅ Sim, enviar para todos", Token: "broadcast:send"},
						{Label: "❌ Não, cancelar", Token: "broadcast:cancel"},
					},
				}), nil
		},
	})
	r.registerStep(KindBroadcast, stateBroadcastConfirm, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("broadcast"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			if value == "send" {
				return complete(nil), nil
			}
			return abort(text(dialogs.BroadcastCanceled)), nil
		},
	})

	r.registerAdapter(KindBroadcast, broadcastAdapter)
}

func startBroadcast(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	return prompt(stateBroadcastMessage, nil, text(dialogs.BroadcastStart)), nil
}

// broadcastAdapter fans the message out to every registered user and
// reports the delivery counts back to the admin.
func broadcastAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	users, err := deps.Store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	message := sess.Draft["message"]

	var success, failure int
	for _, u := range users {
		if err := deps.Messenger.SendMessage(ctx, deps.RecipientOf(u.ID), message); err != nil {
			slog.Error("broadcast delivery failed", "error", err, "userID", u.ID)
			failure++
			continue
		}
		success++
	}
	slog.Debug("broadcast finished", "success", success, "failure", failure)
	return []models.Message{text(dialogs.BroadcastReport(success, failure))}, nil
}
