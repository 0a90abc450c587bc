package flow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

// Dialogue states for the activity flows.
const (
	stateActivityName        State = "activity_name"
	stateActivityPickSubject State = "activity_pick_subject"
	stateActivityDate        State = "activity_date"
	stateActivityNotes       State = "activity_notes"

	stateManageActivityPick    State = "manage_activity_pick"
	stateManageActivityAction  State = "manage_activity_action"
	stateManageActivityNewName State = "manage_activity_new_name"
	stateManageActivityNewDate State = "manage_activity_new_date"
	stateManageActivityConfirm State = "manage_activity_delete_confirm"
)

func registerAddActivity(r *Registry) {
	// Two entry commands share one dialogue: the start closure fixes the
	// activity type in the draft and everything after is identical.
	r.registerEntry(KindAddActivity, startAddActivity(models.ActivityWork), false, "/addtrabalho", "menu:addtrabalho")
	r.registerEntry(KindAddActivity, startAddActivity(models.ActivityExam), false, "/addprova", "menu:addprova")

	r.registerStep(KindAddActivity, stateActivityName, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNonEmpty,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			subjects, err := deps.Store.ListSubjects(ctx, sess.UserID)
			if err != nil {
				return Outcome{}, err
			}
			if len(subjects) == 0 {
				return abort(text(dialogs.ActivityCreateNoSubjects)), nil
			}
			return prompt(stateActivityPickSubject, map[string]string{"name": value},
				models.Message{Text: dialogs.ActivityCreateAskSubject, Choices: subjectChoices(subjects)}), nil
		},
	})
	r.registerStep(KindAddActivity, stateActivityPickSubject, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("subject"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			id, _ := strconv.ParseInt(value, 10, 64)
			subject, err := deps.Store.GetSubject(ctx, id)
			if err != nil {
				return Outcome{}, err
			}
			return prompt(stateActivityDate,
				map[string]string{"subject_id": value, "subject_name": subject.Name},
				text(dialogs.ActivityCreateAskDate(subject.Name))), nil
		},
	})
	r.registerStep(KindAddActivity, stateActivityDate, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateDate,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateActivityNotes, map[string]string{"due_date": value},
				text(dialogs.ActivityCreateAskNotes)), nil
		},
	})
	r.registerStep(KindAddActivity, stateActivityNotes, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNotes,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return complete(map[string]string{"notes": value}), nil
		},
	})

	r.registerAdapter(KindAddActivity, addActivityAdapter)
}

func startAddActivity(t models.ActivityType) StartFunc {
	return func(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
		return prompt(stateActivityName, map[string]string{"type": string(t)},
			text(dialogs.ActivityCreatePrompt(string(t)))), nil
	}
}

func addActivityAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	subjectID, err := parseDraftInt(sess, "subject_id")
	if err != nil {
		return nil, err
	}
	dueDate, err := parseCanonicalDate(sess.Draft["due_date"])
	if err != nil {
		return nil, fmt.Errorf("draft due date invalid: %w", err)
	}
	activity := models.Activity{
		SubjectID: subjectID,
		Type:      models.ActivityType(sess.Draft["type"]),
		Name:      sess.Draft["name"],
		DueDate:   dueDate,
		Notes:     sess.Draft["notes"],
	}
	if err := deps.Store.CreateActivity(ctx, &activity); err != nil {
		return nil, err
	}
	return []models.Message{text(dialogs.ActivityCreateSuccess(sess.Draft["type"], activity.Name))}, nil
}

func registerManageActivity(r *Registry) {
	r.registerEntry(KindManageActivity, startManageActivity, false, "/gerenciaratividades", "menu:gerenciaratividades")

	r.registerStep(KindManageActivity, stateManageActivityPick, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("activity"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			id, _ := strconv.ParseInt(value, 10, 64)
			if _, err := deps.Store.GetActivity(ctx, id); err != nil {
				return Outcome{}, err
			}
			return prompt(stateManageActivityAction, map[string]string{"activity_id": value},
				activityActionMenu()), nil
		},
	})
	r.registerStep(KindManageActivity, stateManageActivityAction, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("action"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			switch value {
			case "name":
				return prompt(stateManageActivityNewName, nil, text(dialogs.ActivityEditAskName)), nil
			case "date":
				return prompt(stateManageActivityNewDate, nil, text(dialogs.ActivityEditAskDate)), nil
			case "delete":
				return prompt(stateManageActivityConfirm, nil,
					models.Message{
						Text: dialogs.ActivityManageDeleteConfirm,
						Choices: []models.Choice{
							{Label: "Sim, excluir", Token: "confirm:yes"},
							{Label: "Não", Token: "confirm:no"},
						},
					}), nil
			}
			return Outcome{}, models.NewValidationError(models.BadChoice)
		},
	})
	r.registerStep(KindManageActivity, stateManageActivityNewName, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNonEmpty,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return applyActivityEdit(ctx, deps, sess, func(a *models.Activity) { a.Name = value })
		},
	})
	r.registerStep(KindManageActivity, stateManageActivityNewDate, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateDate,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			dueDate, err := parseCanonicalDate(value)
			if err != nil {
				return Outcome{}, models.NewValidationError(models.BadDateFormat)
			}
			return applyActivityEdit(ctx, deps, sess, func(a *models.Activity) { a.DueDate = dueDate })
		},
	})
	r.registerStep(KindManageActivity, stateManageActivityConfirm, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("confirm"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			if value == "yes" {
				return complete(nil), nil
			}
			return abort(), nil
		},
	})

	r.registerAdapter(KindManageActivity, deleteActivityAdapter)
}

func startManageActivity(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	activities, err := deps.Store.ListActivities(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if len(activities) == 0 {
		return abort(text(dialogs.ActivityListNoActivities)), nil
	}
	subjects, err := deps.Store.ListSubjects(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	names := make(map[int64]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	choices := make([]models.Choice, 0, len(activities))
	for _, a := range activities {
		choices = append(choices, models.Choice{
			Label: fmt.Sprintf("%s %s (%s) - %s",
				dialogs.ActivityIcon(a.Type), a.Name, names[a.SubjectID], a.DueDate.Format("02/01")),
			Token: fmt.Sprintf("activity:%d", a.ID),
		})
	}
	return prompt(stateManageActivityPick, nil,
		models.Message{Text: dialogs.ActivityManagePrompt, Choices: choices}), nil
}

func activityActionMenu() models.Message {
	return models.Message{
		Text: dialogs.ActivityManageActionPrompt,
		Choices: []models.Choice{
			{Label: "✏️ Editar nome", Token: "action:name"},
			{Label: "📅 Editar data", Token: "action:date"},
			{Label: "🗑️ Excluir", Token: "action:delete"},
		},
	}
}

// applyActivityEdit writes the mutation and loops back to the action menu
// so the user can keep editing the same activity.
func applyActivityEdit(ctx context.Context, deps *Dependencies, sess *Session, mutate func(*models.Activity)) (Outcome, error) {
	id, err := parseDraftInt(sess, "activity_id")
	if err != nil {
		return Outcome{}, err
	}
	activity, err := deps.Store.GetActivity(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	mutate(activity)
	if err := deps.Store.UpdateActivity(ctx, *activity); err != nil {
		return Outcome{}, err
	}
	return prompt(stateManageActivityAction, nil,
		text(dialogs.ActivityManageUpdateSuccess), activityActionMenu()), nil
}

func deleteActivityAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	id, err := parseDraftInt(sess, "activity_id")
	if err != nil {
		return nil, err
	}
	if err := deps.Store.DeleteActivity(ctx, id); err != nil {
		return nil, err
	}
	return []models.Message{text(dialogs.ActivityManageDeleteSuccess)}, nil
}
