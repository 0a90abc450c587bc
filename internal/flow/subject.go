package flow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

// Dialogue states for the subject flows.
const (
	stateSubjectName      State = "subject_name"
	stateSubjectProfessor State = "subject_professor"
	stateSubjectDay       State = "subject_day"
	stateSubjectRoom      State = "subject_room"
	stateSubjectStart     State = "subject_start_time"
	stateSubjectEnd       State = "subject_end_time"
	stateSubjectSemester  State = "subject_semester"

	stateManageSubjectPick          State = "manage_subject_pick"
	stateManageSubjectAction        State = "manage_subject_action"
	stateManageSubjectField         State = "manage_subject_field"
	stateManageSubjectNewValue      State = "manage_subject_new_value"
	stateManageSubjectDeleteConfirm State = "manage_subject_delete_confirm"

	stateSubjectReportPick State = "subject_report_pick"
)

func weekdayChoices() []models.Choice {
	days := []models.Weekday{models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday, models.Saturday}
	choices := make([]models.Choice, 0, len(days))
	for _, d := range days {
		choices = append(choices, models.Choice{Label: models.WeekdayLabel(d), Token: "day:" + string(d)})
	}
	return choices
}

// subjectChoices renders one button per subject.
func subjectChoices(subjects []models.Subject) []models.Choice {
	choices := make([]models.Choice, 0, len(subjects))
	for _, s := range subjects {
		choices = append(choices, models.Choice{Label: s.Name, Token: fmt.Sprintf("subject:%d", s.ID)})
	}
	return choices
}

// subjectFieldLabels maps editable subject field tokens to display names.
var subjectFieldLabels = map[string]string{
	"name":       "Nome",
	"professor":  "Professor(a)",
	"day":        "Dia da semana",
	"room":       "Sala",
	"start_time": "Horário de início",
	"end_time":   "Horário de término",
	"semester":   "Semestre",
}

func subjectFieldChoices() []models.Choice {
	return []models.Choice{
		{Label: "Nome", Token: "field:name"},
		{Label: "Professor(a)", Token: "field:professor"},
		{Label: "Dia da semana", Token: "field:day"},
		{Label: "Sala", Token: "field:room"},
		{Label: "Horário de início", Token: "field:start_time"},
		{Label: "Horário de término", Token: "field:end_time"},
		{Label: "Semestre", Token: "field:semester"},
	}
}

func registerCreateSubject(r *Registry) {
	r.registerEntry(KindCreateSubject, startCreateSubject, false, "/addmateria", "menu:addmateria")

	r.registerStep(KindCreateSubject, stateSubjectName, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNonEmpty,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateSubjectProfessor, map[string]string{"name": value},
				text(dialogs.SubjectCreateAskProfessor(value))), nil
		},
	})
	r.registerStep(KindCreateSubject, stateSubjectProfessor, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNonEmpty,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateSubjectDay, map[string]string{"professor": value},
				models.Message{Text: dialogs.SubjectCreateAskDay, Choices: weekdayChoices()}), nil
		},
	})
	r.registerStep(KindCreateSubject, stateSubjectDay, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton, models.TriggerFreeText},
		Validate: validateWeekday,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateSubjectRoom, map[string]string{"day": value},
				text(dialogs.SubjectCreateAskRoom)), nil
		},
	})
	r.registerStep(KindCreateSubject, stateSubjectRoom, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateNonEmpty,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateSubjectStart, map[string]string{"room": value},
				text(dialogs.SubjectCreateAskStartTime)), nil
		},
	})
	r.registerStep(KindCreateSubject, stateSubjectStart, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateTime,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateSubjectEnd, map[string]string{"start_time": value},
				text(dialogs.SubjectCreateAskEndTime)), nil
		},
	})
	r.registerStep(KindCreateSubject, stateSubjectEnd, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateTime,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateSubjectSemester, map[string]string{"end_time": value},
				text(dialogs.SubjectCreateAskSemester)), nil
		},
	})
	r.registerStep(KindCreateSubject, stateSubjectSemester, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validatePositiveInt,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return complete(map[string]string{"semester": value}), nil
		},
	})

	r.registerAdapter(KindCreateSubject, createSubjectAdapter)
}

func startCreateSubject(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	return prompt(stateSubjectName, nil, text(dialogs.SubjectCreateAskName)), nil
}

// createSubjectAdapter turns the completed draft into one subject row.
func createSubjectAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	semester, _ := strconv.Atoi(sess.Draft["semester"])
	subject := models.Subject{
		UserID:    sess.UserID,
		Name:      sess.Draft["name"],
		Professor: sess.Draft["professor"],
		DayOfWeek: models.Weekday(sess.Draft["day"]),
		Room:      sess.Draft["room"],
		StartTime: sess.Draft["start_time"],
		EndTime:   sess.Draft["end_time"],
		Semester:  semester,
	}
	if err := deps.Store.CreateSubject(ctx, &subject); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return []models.Message{text(dialogs.SubjectCreateSuccess(subject.Name))}, nil
}

func registerManageSubject(r *Registry) {
	r.registerEntry(KindManageSubject, startManageSubject, false, "/gerenciarmaterias", "menu:gerenciarmaterias")

	r.registerStep(KindManageSubject, stateManageSubjectPick, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("subject"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			id, _ := strconv.ParseInt(value, 10, 64)
			subject, err := deps.Store.GetSubject(ctx, id)
			if err != nil {
				return Outcome{}, err
			}
			return prompt(stateManageSubjectAction,
				map[string]string{"subject_id": value, "subject_name": subject.Name},
				models.Message{
					Text: dialogs.SubjectManageActionPrompt(subject.Name),
					Choices: []models.Choice{
						{Label: "✏️ Editar", Token: "action:edit"},
						{Label: "🗑️ Excluir", Token: "action:delete"},
					},
				}), nil
		},
	})
	r.registerStep(KindManageSubject, stateManageSubjectAction, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("action"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			switch value {
			case "edit":
				return prompt(stateManageSubjectField, nil,
					models.Message{Text: dialogs.SubjectEditChooseField, Choices: subjectFieldChoices()}), nil
			case "delete":
				return prompt(stateManageSubjectDeleteConfirm, map[string]string{"action": "delete"},
					models.Message{
						Text: dialogs.SubjectDeleteConfirm(sess.Draft["subject_name"]),
						Choices: []models.Choice{
							{Label: "Sim, excluir", Token: "confirm:yes"},
							{Label: "Não", Token: "confirm:no"},
						},
					}), nil
			}
			return Outcome{}, models.NewValidationError(models.BadChoice)
		},
	})
	r.registerStep(KindManageSubject, stateManageSubjectField, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("field"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			label, ok := subjectFieldLabels[value]
			if !ok {
				return Outcome{}, models.NewValidationError(models.BadChoice)
			}
			if value == "day" {
				return prompt(stateManageSubjectNewValue, map[string]string{"field": value},
					models.Message{Text: dialogs.SubjectEditAskDay, Choices: weekdayChoices()}), nil
			}
			return prompt(stateManageSubjectNewValue, map[string]string{"field": value},
				text(dialogs.SubjectEditAskNewValue(label))), nil
		},
	})
	r.registerStep(KindManageSubject, stateManageSubjectNewValue, StepDefinition{
		Inputs: []models.TriggerKind{models.TriggerFreeText, models.TriggerButton},
		Apply:  applySubjectFieldEdit,
	})
	r.registerStep(KindManageSubject, stateManageSubjectDeleteConfirm, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("confirm"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			if value == "yes" {
				return complete(nil), nil
			}
			return abort(), nil
		},
	})

	r.registerAdapter(KindManageSubject, deleteSubjectAdapter)
}

func startManageSubject(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	subjects, err := deps.Store.ListSubjects(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if len(subjects) == 0 {
		return abort(text(dialogs.SubjectManageNoSubjects)), nil
	}
	return prompt(stateManageSubjectPick, nil,
		models.Message{Text: dialogs.SubjectManagePrompt, Choices: subjectChoices(subjects)}), nil
}

// applySubjectFieldEdit validates the new value for the field chosen
// earlier in the draft, writes it, and loops back to the field chooser.
// Field-dependent validation has to live here since the validator alone
// cannot see the draft.
func applySubjectFieldEdit(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
	field := sess.Draft["field"]
	var validate Validator
	switch field {
	case "day":
		validate = validateWeekday
	case "start_time", "end_time":
		validate = validateTime
	case "semester":
		validate = validatePositiveInt
	default:
		validate = validateNonEmpty
	}
	canonical, err := validate(value)
	if err != nil {
		return Outcome{}, err
	}

	id, err := parseDraftInt(sess, "subject_id")
	if err != nil {
		return Outcome{}, err
	}
	subject, err := deps.Store.GetSubject(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	switch field {
	case "name":
		subject.Name = canonical
	case "professor":
		subject.Professor = canonical
	case "day":
		subject.DayOfWeek = models.Weekday(canonical)
	case "room":
		subject.Room = canonical
	case "start_time":
		subject.StartTime = canonical
	case "end_time":
		subject.EndTime = canonical
	case "semester":
		subject.Semester, _ = strconv.Atoi(canonical)
	}
	if err := deps.Store.UpdateSubject(ctx, *subject); err != nil {
		return Outcome{}, err
	}

	// Loop back to the field chooser, the only state this dialogue revisits.
	return prompt(stateManageSubjectField, map[string]string{"subject_name": subject.Name},
		text(dialogs.SubjectEditSuccess),
		models.Message{Text: dialogs.SubjectEditChooseField, Choices: subjectFieldChoices()}), nil
}

// deleteSubjectAdapter is the only terminal write of the manage-subject
// dialogue: field edits happen mid-dialogue.
func deleteSubjectAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	id, err := parseDraftInt(sess, "subject_id")
	if err != nil {
		return nil, err
	}
	if err := deps.Store.DeleteSubject(ctx, id); err != nil {
		return nil, err
	}
	return []models.Message{text(dialogs.SubjectDeleteSuccess(sess.Draft["subject_name"]))}, nil
}

func registerSubjectReport(r *Registry) {
	r.registerEntry(KindSubjectReport, startSubjectReport, false, "/relatorio", "menu:relatorio")

	r.registerStep(KindSubjectReport, stateSubjectReportPick, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("subject"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return complete(map[string]string{"subject_id": value}), nil
		},
	})

	r.registerAdapter(KindSubjectReport, subjectReportAdapter)
}

func startSubjectReport(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	subjects, err := deps.Store.ListSubjects(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if len(subjects) == 0 {
		return abort(text(dialogs.ReportNoSubjects)), nil
	}
	return prompt(stateSubjectReportPick, nil,
		models.Message{Text: dialogs.ReportPrompt, Choices: subjectChoices(subjects)}), nil
}

// subjectReportAdapter reads, never writes: the report dialogue's terminal
// action renders one subject's full picture.
func subjectReportAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	id, err := parseDraftInt(sess, "subject_id")
	if err != nil {
		return nil, err
	}
	subject, err := deps.Store.GetSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	activities, err := deps.Store.ListActivitiesBySubject(ctx, id)
	if err != nil {
		return nil, err
	}
	grades, err := deps.Store.ListGrades(ctx, id)
	if err != nil {
		return nil, err
	}
	return []models.Message{text(dialogs.SubjectReport(*subject, activities, grades))}, nil
}
