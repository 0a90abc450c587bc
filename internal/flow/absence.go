package flow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

// Dialogue states for the absence flows.
const (
	stateAbsencePickSubject State = "absence_pick_subject"
	stateAbsenceDate        State = "absence_date"
	stateAbsenceQuantity    State = "absence_quantity"
	stateAbsenceNotes       State = "absence_notes"

	stateManageAbsencePickSubject State = "manage_absence_pick_subject"
	stateManageAbsencePickRecord  State = "manage_absence_pick_record"
	stateManageAbsenceAction      State = "manage_absence_action"
	stateManageAbsenceNewQuantity State = "manage_absence_new_quantity"
	stateManageAbsenceConfirm     State = "manage_absence_delete_confirm"
)

func registerAddAbsence(r *Registry) {
	r.registerEntry(KindAddAbsence, startAddAbsence, false, "/faltei", "menu:faltei")

	r.registerStep(KindAddAbsence, stateAbsencePickSubject, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("subject"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			id, _ := strconv.ParseInt(value, 10, 64)
			subject, err := deps.Store.GetSubject(ctx, id)
			if err != nil {
				return Outcome{}, err
			}
			return prompt(stateAbsenceDate,
				map[string]string{"subject_id": value, "subject_name": subject.Name},
				text(dialogs.AbsenceCreateAskDate)), nil
		},
	})
	r.registerStep(KindAddAbsence, stateAbsenceDate, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateDate,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateAbsenceQuantity, map[string]string{"date": value},
				text(dialogs.AbsenceCreateAskQuantity)), nil
		},
	})
	r.registerStep(KindAddAbsence, stateAbsenceQuantity, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validatePositiveInt,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateAbsenceNotes, map[string]string{"quantity": value},
				text(dialogs.AbsenceCreateAskNotes)), nil
		},
	})
	r.registerStep(KindAddAbsence, stateAbsenceNotes, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNotes,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return complete(map[string]string{"notes": value}), nil
		},
	})

	r.registerAdapter(KindAddAbsence, addAbsenceAdapter)
}

func startAddAbsence(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	subjects, err := deps.Store.ListSubjects(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if len(subjects) == 0 {
		return abort(text(dialogs.AbsenceCreateNoSubjects)), nil
	}
	return prompt(stateAbsencePickSubject, nil,
		models.Message{Text: dialogs.AbsenceCreateAskSubject, Choices: subjectChoices(subjects)}), nil
}

// addAbsenceAdapter performs the one atomic write of the dialogue: the
// absence row and the subject's running total move together in the store.
func addAbsenceAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	subjectID, err := parseDraftInt(sess, "subject_id")
	if err != nil {
		return nil, err
	}
	date, err := parseCanonicalDate(sess.Draft["date"])
	if err != nil {
		return nil, fmt.Errorf("draft date invalid: %w", err)
	}
	quantity, _ := strconv.Atoi(sess.Draft["quantity"])

	absence := models.Absence{
		SubjectID: subjectID,
		Date:      date,
		Quantity:  quantity,
		Notes:     sess.Draft["notes"],
	}
	total, err := deps.Store.AddAbsence(ctx, &absence)
	if err != nil {
		return nil, err
	}
	return []models.Message{text(dialogs.AbsenceCreateSuccess(quantity, sess.Draft["subject_name"], total))}, nil
}

func registerManageAbsence(r *Registry) {
	r.registerEntry(KindManageAbsence, startManageAbsence, false, "/gerenciarfaltas", "menu:gerenciarfaltas")

	r.registerStep(KindManageAbsence, stateManageAbsencePickSubject, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("subject"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			id, _ := strconv.ParseInt(value, 10, 64)
			subject, err := deps.Store.GetSubject(ctx, id)
			if err != nil {
				return Outcome{}, err
			}
			absences, err := deps.Store.ListAbsences(ctx, id)
			if err != nil {
				return Outcome{}, err
			}
			if len(absences) == 0 {
				return abort(text(dialogs.AbsenceManageNoRecords(subject.Name))), nil
			}
			choices := make([]models.Choice, 0, len(absences))
			for _, a := range absences {
				choices = append(choices, models.Choice{
					Label: fmt.Sprintf("%s - %d falta(s)", a.Date.Format("02/01/2006"), a.Quantity),
					Token: fmt.Sprintf("absence:%d", a.ID),
				})
			}
			return prompt(stateManageAbsencePickRecord,
				map[string]string{"subject_id": value, "subject_name": subject.Name},
				models.Message{
					Text:    dialogs.AbsenceManageHeader(subject.Name, subject.TotalAbsences),
					Choices: choices,
				}), nil
		},
	})
	r.registerStep(KindManageAbsence, stateManageAbsencePickRecord, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("absence"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateManageAbsenceAction, map[string]string{"absence_id": value},
				models.Message{
					Text: dialogs.AbsenceManageActionPrompt,
					Choices: []models.Choice{
						{Label: "✏️ Editar quantidade", Token: "action:edit"},
						{Label: "🗑️ Excluir", Token: "action:delete"},
					},
				}), nil
		},
	})
	r.registerStep(KindManageAbsence, stateManageAbsenceAction, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("action"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			switch value {
			case "edit":
				return prompt(stateManageAbsenceNewQuantity, map[string]string{"action": "edit"},
					text(dialogs.AbsenceManageAskNewQuantity)), nil
			case "delete":
				return prompt(stateManageAbsenceConfirm, map[string]string{"action": "delete"},
					models.Message{
						Text: dialogs.AbsenceManageDeleteConfirm,
						Choices: []models.Choice{
							{Label: "Sim, excluir", Token: "confirm:yes"},
							{Label: "Não", Token: "confirm:no"},
						},
					}), nil
			}
			return Outcome{}, models.NewValidationError(models.BadChoice)
		},
	})
	r.registerStep(KindManageAbsence, stateManageAbsenceNewQuantity, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validatePositiveInt,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return complete(map[string]string{"new_quantity": value}), nil
		},
	})
	r.registerStep(KindManageAbsence, stateManageAbsenceConfirm, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("confirm"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			if value == "yes" {
				return complete(nil), nil
			}
			return abort(), nil
		},
	})

	r.registerAdapter(KindManageAbsence, manageAbsenceAdapter)
}

func startManageAbsence(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	subjects, err := deps.Store.ListSubjects(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if len(subjects) == 0 {
		return abort(text(dialogs.AbsenceManageNoSubjects)), nil
	}
	return prompt(stateManageAbsencePickSubject, nil,
		models.Message{Text: dialogs.AbsenceManagePrompt, Choices: subjectChoices(subjects)}), nil
}

// manageAbsenceAdapter dispatches on the action collected in the draft:
// either an atomic quantity update or an atomic delete, both of which keep
// the subject total consistent inside the store.
func manageAbsenceAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	id, err := parseDraftInt(sess, "absence_id")
	if err != nil {
		return nil, err
	}
	switch sess.Draft["action"] {
	case "edit":
		quantity, _ := strconv.Atoi(sess.Draft["new_quantity"])
		if err := deps.Store.UpdateAbsenceQuantity(ctx, id, quantity); err != nil {
			return nil, err
		}
		return []models.Message{text(dialogs.AbsenceManageUpdateSuccess)}, nil
	case "delete":
		if err := deps.Store.DeleteAbsence(ctx, id); err != nil {
			return nil, err
		}
		return []models.Message{text(dialogs.AbsenceManageDeleteSuccess)}, nil
	}
	return nil, fmt.Errorf("unknown absence action %q", sess.Draft["action"])
}
