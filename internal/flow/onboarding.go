package flow

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

// Dialogue states for onboarding.
const (
	stateOnboardCourse    State = "onboarding_course"
	stateOnboardShift     State = "onboarding_shift"
	stateOnboardGradeType State = "onboarding_grade_type"
	stateOnboardIdealSem  State = "onboarding_ideal_semester"
	stateOnboardCustomIDs State = "onboarding_custom_ids"
	stateOnboardCustomSem State = "onboarding_custom_semester"
)

func registerOnboarding(r *Registry) {
	r.registerEntry(KindOnboarding, startOnboarding, false, "/fatec", "menu:fatec")

	r.registerStep(KindOnboarding, stateOnboardCourse, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("course"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			shifts, err := deps.Store.ListShifts(ctx, value)
			if err != nil {
				return Outcome{}, err
			}
			if len(shifts) == 0 {
				return abort(text(dialogs.OnboardingNoCatalog)), nil
			}
			choices := make([]models.Choice, 0, len(shifts))
			for _, s := range shifts {
				choices = append(choices, models.Choice{Label: s, Token: "shift:" + s})
			}
			return prompt(stateOnboardShift, map[string]string{"course": value},
				models.Message{Text: dialogs.OnboardingAskShift, Choices: choices}), nil
		},
	})
	r.registerStep(KindOnboarding, stateOnboardShift, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("shift"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return prompt(stateOnboardGradeType, map[string]string{"shift": value},
				models.Message{
					Text: dialogs.OnboardingAskGradeType,
					Choices: []models.Choice{
						{Label: "📚 Grade ideal do semestre", Token: "gradetype:ideal"},
						{Label: "🛠️ Grade personalizada", Token: "gradetype:custom"},
					},
				}), nil
		},
	})
	r.registerStep(KindOnboarding, stateOnboardGradeType, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: tokenValidator("gradetype"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			switch value {
			case "ideal":
				choices := make([]models.Choice, 0, 6)
				for sem := 1; sem <= 6; sem++ {
					choices = append(choices, models.Choice{
						Label: fmt.Sprintf("%dº semestre", sem),
						Token: fmt.Sprintf("sem:%d", sem),
					})
				}
				return prompt(stateOnboardIdealSem, map[string]string{"grade_type": "ideal"},
					models.Message{Text: dialogs.OnboardingAskIdealSem, Choices: choices}), nil
			case "custom":
				catalog, err := deps.Store.ListCatalogSubjects(ctx, sess.Draft["course"], sess.Draft["shift"])
				if err != nil {
					return Outcome{}, err
				}
				if len(catalog) == 0 {
					return abort(text(dialogs.OnboardingNoCatalog)), nil
				}
				return prompt(stateOnboardCustomIDs, map[string]string{"grade_type": "custom"},
					text(dialogs.OnboardingCustomListHeader+catalogListing(catalog)),
					text(dialogs.OnboardingCustomPrompt)), nil
			}
			return Outcome{}, models.NewValidationError(models.BadChoice)
		},
	})
	r.registerStep(KindOnboarding, stateOnboardIdealSem, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerButton},
		Validate: choiceValidator("sem"),
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			semester, _ := strconv.Atoi(value)
			catalog, err := deps.Store.ListCatalogSubjectsBySemester(ctx,
				sess.Draft["course"], sess.Draft["shift"], semester)
			if err != nil {
				return Outcome{}, err
			}
			if len(catalog) == 0 {
				return abort(text(dialogs.OnboardingNoIdealGrade(semester))), nil
			}
			return complete(map[string]string{"semester": value}), nil
		},
	})
	r.registerStep(KindOnboarding, stateOnboardCustomIDs, StepDefinition{
		Inputs: []models.TriggerKind{models.TriggerFreeText},
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			ids, err := parseCatalogIDs(value)
			if err != nil {
				return Outcome{}, err
			}
			catalog, err := deps.Store.ListCatalogSubjects(ctx, sess.Draft["course"], sess.Draft["shift"])
			if err != nil {
				return Outcome{}, err
			}
			picked, err := resolveCatalogPick(catalog, ids)
			if err != nil {
				return Outcome{}, err
			}
			if detail := scheduleConflict(picked); detail != "" {
				return Outcome{}, models.NewValidationMessage(models.BadChoice, dialogs.OnboardingConflictError(detail))
			}
			return prompt(stateOnboardCustomSem, map[string]string{"subject_ids": joinIDs(ids)},
				text(dialogs.OnboardingNoConflictAskSem)), nil
		},
	})
	r.registerStep(KindOnboarding, stateOnboardCustomSem, StepDefinition{
		Inputs:   []models.TriggerKind{models.TriggerFreeText},
		Validate: validateOptionalSemester,
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			return complete(map[string]string{"semester": value}), nil
		},
	})

	r.registerAdapter(KindOnboarding, onboardingAdapter)
}

func startOnboarding(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	courses, err := deps.Store.ListCourses(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if len(courses) == 0 {
		return abort(text(dialogs.OnboardingNoCatalog)), nil
	}
	choices := make([]models.Choice, 0, len(courses))
	for _, c := range courses {
		choices = append(choices, models.Choice{Label: c, Token: "course:" + c})
	}
	return prompt(stateOnboardCourse, nil,
		models.Message{Text: dialogs.OnboardingStart, Choices: choices}), nil
}

// catalogListing renders the numbered catalog the custom flow asks the
// user to pick IDs from.
func catalogListing(catalog []models.CourseSubject) string {
	var b strings.Builder
	for _, cs := range catalog {
		fmt.Fprintf(&b, "\n*%d* - %s (%dº sem, %s %s-%s)",
			cs.ID, cs.Name, cs.Semester, models.WeekdayLabel(cs.DayOfWeek), cs.StartTime, cs.EndTime)
	}
	return b.String()
}

// parseCatalogIDs accepts comma or space separated numeric IDs.
func parseCatalogIDs(raw string) ([]int64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, models.NewValidationMessage(models.BadChoice, dialogs.OnboardingInvalidIDs)
	}
	seen := make(map[int64]bool)
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, models.NewValidationMessage(models.BadChoice, dialogs.OnboardingInvalidIDs)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// resolveCatalogPick maps the chosen IDs to catalog rows, rejecting IDs
// that are not in the user's course catalog.
func resolveCatalogPick(catalog []models.CourseSubject, ids []int64) ([]models.CourseSubject, error) {
	byID := make(map[int64]models.CourseSubject, len(catalog))
	for _, cs := range catalog {
		byID[cs.ID] = cs
	}
	picked := make([]models.CourseSubject, 0, len(ids))
	for _, id := range ids {
		cs, ok := byID[id]
		if !ok {
			return nil, models.NewValidationMessage(models.BadChoice,
				dialogs.OnboardingConflictError(fmt.Sprintf("O ID %d não existe no catálogo do seu curso.", id)))
		}
		picked = append(picked, cs)
	}
	return picked, nil
}

// scheduleConflict reports the first pair of picked subjects whose class
// times overlap on the same weekday, or "" when the pick is consistent.
func scheduleConflict(picked []models.CourseSubject) string {
	for i := 0; i < len(picked); i++ {
		for j := i + 1; j < len(picked); j++ {
			a, b := picked[i], picked[j]
			if a.DayOfWeek != b.DayOfWeek {
				continue
			}
			if minutesOf(a.StartTime) < minutesOf(b.EndTime) && minutesOf(b.StartTime) < minutesOf(a.EndTime) {
				return fmt.Sprintf("⚠️ Conflito de horário: *%s* e *%s* se sobrepõem na %s.",
					a.Name, b.Name, models.WeekdayLabel(a.DayOfWeek))
			}
		}
	}
	return ""
}

// validateOptionalSemester accepts a positive semester number or the skip
// words, canonicalized to "".
func validateOptionalSemester(raw string) (string, error) {
	v, _ := validateNotes(raw)
	if v == "" {
		return "", nil
	}
	return validatePositiveInt(v)
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// onboardingAdapter materializes the chosen grade as the user's subjects
// and records course, shift and semester on the profile.
func onboardingAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	course, shift := sess.Draft["course"], sess.Draft["shift"]
	semester, _ := strconv.Atoi(sess.Draft["semester"])

	var picked []models.CourseSubject
	switch sess.Draft["grade_type"] {
	case "ideal":
		rows, err := deps.Store.ListCatalogSubjectsBySemester(ctx, course, shift, semester)
		if err != nil {
			return nil, err
		}
		picked = rows
	case "custom":
		catalog, err := deps.Store.ListCatalogSubjects(ctx, course, shift)
		if err != nil {
			return nil, err
		}
		ids, err := parseCatalogIDs(sess.Draft["subject_ids"])
		if err != nil {
			return nil, fmt.Errorf("draft subject ids invalid: %w", err)
		}
		picked, err = resolveCatalogPick(catalog, ids)
		if err != nil {
			return nil, fmt.Errorf("draft subject ids stale: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown grade type %q", sess.Draft["grade_type"])
	}

	for _, cs := range picked {
		subject := models.Subject{
			UserID:    sess.UserID,
			Name:      cs.Name,
			Professor: cs.Professor,
			DayOfWeek: cs.DayOfWeek,
			Room:      cs.Room,
			StartTime: cs.StartTime,
			EndTime:   cs.EndTime,
			Semester:  cs.Semester,
		}
		if err := deps.Store.CreateSubject(ctx, &subject); err != nil {
			return nil, err
		}
	}

	user, err := deps.Store.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	user.Course = course
	user.Shift = shift
	if semester > 0 {
		user.Semester = semester
	}
	if err := deps.Store.UpsertUser(ctx, *user); err != nil {
		return nil, err
	}

	if sess.Draft["grade_type"] == "ideal" {
		return []models.Message{text(dialogs.OnboardingIdealSuccess(len(picked), semester))}, nil
	}
	return []models.Message{text(dialogs.OnboardingCustomSuccess(len(picked)))}, nil
}
