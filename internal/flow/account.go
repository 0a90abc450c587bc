package flow

import (
	"context"
	"strings"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

const stateDeleteAccountConfirm State = "delete_account_confirm"

func registerDeleteAccount(r *Registry) {
	r.registerEntry(KindDeleteAccount, startDeleteAccount, false, "/deletardados", "menu:deletardados")

	// Anything other than the exact confirmation phrase cancels the
	// deletion. A typo must never erase an account.
	r.registerStep(KindDeleteAccount, stateDeleteAccountConfirm, StepDefinition{
		Inputs: []models.TriggerKind{models.TriggerFreeText},
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			if strings.TrimSpace(strings.ToLower(value)) != dialogs.DeleteDataPhrase {
				return abort(text(dialogs.DeleteDataConfirmationInvalid)), nil
			}
			return complete(nil), nil
		},
	})

	r.registerAdapter(KindDeleteAccount, deleteAccountAdapter)
}

func startDeleteAccount(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	return prompt(stateDeleteAccountConfirm, nil, text(dialogs.DeleteDataWarning)), nil
}

func deleteAccountAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	if err := deps.Store.DeleteUserData(ctx, sess.UserID); err != nil {
		return nil, err
	}
	return []models.Message{text(dialogs.DeleteDataSuccess)}, nil
}
