package flow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

// Dialogue states for the grade flows.
const (
	stateGradePickSubject State = "grade_pick_subject"
	stateGradeName        State = "grade_name"
	stateGradeValue       State = "grade_value"

	stateManageGradePickSubject State = "manage_grade_pick_subject"
	stateManageGradePickGrade   State = "manage_grade_pick_grade"
	stateManageGradeAction      State = "manage_grade_action"
	stateManageGradeNewName     State = "manage_grade_new_name"
	stateManageGradeNewValue    State = "manage_grade_new_value"
	stateManageGradeConfirm     State = "manage_grade_delete_confirm"
)

func registerAddGrade(r *Registry) {
	r.registerEntry(KindAddGrade, startAddGrade, false, "/addnota", "menu:addnota")

	r.registerStep(KindAddGrade, stateGradePickSubject, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("subject"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			id, _ := strconv.ParseInt(value, 10, 64)
			subject, err := deps.Store.GetSubject(ctx, id)
			if err != nil {
				return Outcome{}, err
			}
			return prompt(stateGradeName,
				map[string]string{"subject_id": value, "subject_name": subject.Name},
				text(dialogs.GradeCreateAskName)), nil
		},
	})
	r.registerStep(KindAddGrade, stateGradeName, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNonEmpty,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateGradeValue, map[string]string{"name": value},
				text(dialogs.GradeCreateAskValue)), nil
		},
	})
	r.registerStep(KindAddGrade, stateGradeValue, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateGrade,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return complete(map[string]string{"value": value}), nil
		},
	})

	r.registerAdapter(KindAddGrade, addGradeAdapter)
}

func startAddGrade(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	subjects, err := deps.Store.ListSubjects(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if len(subjects) == 0 {
		return abort(text(dialogs.GradeCreateNoSubjects)), nil
	}
	return prompt(stateGradePickSubject, nil,
		models.Message{Text: dialogs.GradeCreateAskSubject, Choices: subjectChoices(subjects)}), nil
}

func addGradeAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	subjectID, err := parseDraftInt(sess, "subject_id")
	if err != nil {
		return nil, err
	}
	value, err := strconv.ParseFloat(sess.Draft["value"], 64)
	if err != nil {
		return nil, fmt.Errorf("draft grade value invalid: %w", err)
	}
	grade := models.Grade{
		SubjectID: subjectID,
		Name:      sess.Draft["name"],
		Value:     value,
	}
	if err := deps.Store.CreateGrade(ctx, &grade); err != nil {
		return nil, err
	}
	return []models.Message{
		text(dialogs.GradeCreateSuccess(sess.Draft["value"], grade.Name, sess.Draft["subject_name"])),
	}, nil
}

func registerManageGrade(r *Registry) {
	r.registerEntry(KindManageGrade, startManageGrade, false, "/gerenciarnotas", "menu:gerenciarnotas")

	r.registerStep(KindManageGrade, stateManageGradePickSubject, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("subject"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			id, _ := strconv.ParseInt(value, 10, 64)
			subject, err := deps.Store.GetSubject(ctx, id)
			if err != nil {
				return Outcome{}, err
			}
			grades, err := deps.Store.ListGrades(ctx, id)
			if err != nil {
				return Outcome{}, err
			}
			if len(grades) == 0 {
				return abort(text(dialogs.GradeManageNoGrades(subject.Name))), nil
			}
			choices := make([]models.Choice, 0, len(grades))
			for _, g := range grades {
				choices = append(choices, models.Choice{
					Label: fmt.Sprintf("%s: %.2f", g.Name, g.Value),
					Token: fmt.Sprintf("grade:%d", g.ID),
				})
			}
			return prompt(stateManageGradePickGrade,
				map[string]string{"subject_id": value, "subject_name": subject.Name},
				models.Message{Text: dialogs.GradeManageListHeader(subject.Name), Choices: choices}), nil
		},
	})
	r.registerStep(KindManageGrade, stateManageGradePickGrade, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("grade"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateManageGradeAction, map[string]string{"grade_id": value},
				gradeActionMenu()), nil
		},
	})
	r.registerStep(KindManageGrade, stateManageGradeAction, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("action"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			switch value {
			case "edit":
				return prompt(stateManageGradeNewName, nil, text(dialogs.GradeEditAskName)), nil
			case "delete":
				return prompt(stateManageGradeConfirm, nil,
					models.Message{
						Text: dialogs.GradeManageDeleteConfirm,
						Choices: []models.Choice{
							{Label: "Sim, excluir", Token: "confirm:yes"},
							{Label: "Não", Token: "confirm:no"},
						},
					}), nil
			}
			return Outcome{}, models.NewValidationError(models.BadChoice)
		},
	})
	r.registerStep(KindManageGrade, stateManageGradeNewName, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNonEmpty,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateManageGradeNewValue, map[string]string{"new_name": value},
				text(dialogs.GradeEditAskValue)), nil
		},
	})
	r.registerStep(KindManageGrade, stateManageGradeNewValue, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateGrade,
		Apply:    applyGradeEdit,
	})
	r.registerStep(KindManageGrade, stateManageGradeConfirm, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("confirm"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			if value == "yes" {
				return complete(nil), nil
			}
			return abort(), nil
		},
	})

	r.registerAdapter(KindManageGrade, deleteGradeAdapter)
}

func startManageGrade(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	subjects, err := deps.Store.ListSubjects(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if len(subjects) == 0 {
		return abort(text(dialogs.GradeManageNoSubjects)), nil
	}
	return prompt(stateManageGradePickSubject, nil,
		models.Message{Text: dialogs.GradeManageAskSubject, Choices: subjectChoices(subjects)}), nil
}

func gradeActionMenu() models.Message {
	return models.Message{
		Text: dialogs.GradeManageActionPrompt,
		Choices: []models.Choice{
			{Label: "✏️ Editar", Token: "action:edit"},
			{Label: "🗑️ Excluir", Token: "action:delete"},
		},
	}
}

// applyGradeEdit writes the renamed, revalued grade and loops back to the
// action menu so the user can keep working on the same grade.
func applyGradeEdit(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
	id, err := parseDraftInt(sess, "grade_id")
	if err != nil {
		return Outcome{}, err
	}
	grade, err := deps.Store.GetGrade(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	grade.Name = sess.Draft["new_name"]
	grade.Value, err = strconv.ParseFloat(value, 64)
	if err != nil {
		return Outcome{}, models.NewValidationError(models.BadDecimal)
	}
	if err := deps.Store.UpdateGrade(ctx, *grade); err != nil {
		return Outcome{}, err
	}
	return prompt(stateManageGradeAction, nil,
		text(dialogs.GradeEditSuccess), gradeActionMenu()), nil
}

func deleteGradeAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	id, err := parseDraftInt(sess, "grade_id")
	if err != nil {
		return nil, err
	}
	if err := deps.Store.DeleteGrade(ctx, id); err != nil {
		return nil, err
	}
	return []models.Message{text(dialogs.GradeDeleteSuccess)}, nil
}
