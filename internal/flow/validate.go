package flow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jovisbot/jovis/internal/models"
)

// Validators are pure: raw input in, canonical string or
// *models.ValidationError out. Transitions can assume valid input.

const (
	dateLayout = "02/01/2006"
	timeLayout = "15:04"
)

// validateNonEmpty trims the input and rejects blanks.
func validateNonEmpty(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", models.NewValidationError(models.EmptyField)
	}
	return v, nil
}

// validateDate accepts DD/MM/AAAA (or "hoje") and returns the canonical
// DD/MM/AAAA form.
func validateDate(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, "hoje") {
		return time.Now().Format(dateLayout), nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return "", models.NewValidationError(models.BadDateFormat)
	}
	return t.Format(dateLayout), nil
}

// validateTime accepts HH:MM with a real hour and minute and returns the
// zero-padded canonical form.
func validateTime(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		// Also accept H:MM.
		t, err = time.Parse("15:4", v)
		if err != nil {
			return "", models.NewValidationError(models.BadTimeFormat)
		}
	}
	return t.Format(timeLayout), nil
}

// validatePositiveInt accepts a strictly positive integer.
func validatePositiveInt(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return "", models.NewValidationError(models.NotPositiveInteger)
	}
	return strconv.Itoa(n), nil
}

// validateGrade accepts a decimal between 0 and 10, comma or dot, and
// returns the canonical two-decimal form.
func validateGrade(raw string) (string, error) {
	v := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 10 {
		return "", models.NewValidationError(models.BadDecimal)
	}
	return fmt.Sprintf("%.2f", f), nil
}

// validateWeekday accepts a weekday button token ("day:segunda") or a
// typed Portuguese weekday name and returns the canonical name.
func validateWeekday(raw string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.TrimPrefix(v, "day:")
	v = strings.NewReplacer("ç", "c", "á", "a", "é", "e", "-feira", "").Replace(v)
	if _, ok := models.WeekdayIndex(models.Weekday(v)); !ok {
		return "", models.NewValidationError(models.BadWeekday)
	}
	return v, nil
}

// validateNotes normalizes an optional notes answer: "não"/"nao"/"pular"
// mean no notes.
func validateNotes(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "não", "nao", "pular", "nenhuma", "n":
		return "", nil
	}
	return v, nil
}

// choiceValidator returns a validator that accepts only tokens with the
// given prefix and a numeric id, yielding the id as canonical value.
func choiceValidator(prefix string) Validator {
	return func(raw string) (string, error) {
		v := strings.TrimSpace(raw)
		if !strings.HasPrefix(v, prefix+":") {
			return "", models.NewValidationError(models.BadChoice)
		}
		id := strings.TrimPrefix(v, prefix+":")
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return "", models.NewValidationError(models.BadChoice)
		}
		return id, nil
	}
}

// tokenValidator returns a validator that accepts only tokens with the
// given prefix, yielding the suffix as canonical value.
func tokenValidator(prefix string) Validator {
	return func(raw string) (string, error) {
		v := strings.TrimSpace(raw)
		if !strings.HasPrefix(v, prefix+":") {
			return "", models.NewValidationError(models.BadChoice)
		}
		return strings.TrimPrefix(v, prefix+":"), nil
	}
}

// parseDraftInt reads a numeric draft field collected earlier.
func parseDraftInt(sess *Session, key string) (int64, error) {
	n, err := strconv.ParseInt(sess.Draft[key], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("draft field %q is not numeric: %w", key, err)
	}
	return n, nil
}

// parseCanonicalDate converts a canonical DD/MM/AAAA draft value back to
// a time.Time.
func parseCanonicalDate(v string) (time.Time, error) {
	return time.Parse(dateLayout, v)
}

// minutesOf converts a canonical HH:MM value to minutes since midnight.
func minutesOf(v string) int {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}
