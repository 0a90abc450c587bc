package flow

import (
	"context"
	"log/slog"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

const stateBugDescription State = "bug_description"

func registerBugReport(r *Registry) {
	r.registerEntry(KindBugReport, startBugReport, false, "/bug", "menu:bug")

	r.registerStep(KindBugReport, stateBugDescription, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNonEmpty,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return complete(map[string]string{"description": value}), nil
		},
	})

	r.registerAdapter(KindBugReport, bugReportAdapter)
}

func startBugReport(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	return prompt(stateBugDescription, nil, text(dialogs.BugReportAsk)), nil
}

func bugReportAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	if err := deps.Bugs.Report(ctx, sess.UserID, sess.Draft["description"]); err != nil {
		slog.Error("bug report delivery failed", "error", err, "userID", sess.UserID)
		return []models.Message{text(dialogs.BugReportFailure)}, nil
	}
	return []models.Message{text(dialogs.BugReportThanks)}, nil
}
