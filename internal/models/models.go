// Package models defines the domain records and message shapes shared across Jovis.
package models

import "time"

// ActivityType distinguishes graded work from exams.
type ActivityType string

const (
	ActivityWork ActivityType = "trabalho"
	ActivityExam ActivityType = "prova"
)

// Weekday is the canonical lowercase Portuguese weekday name used in
// schedules ("segunda" through "sabado").
type Weekday string

const (
	Monday    Weekday = "segunda"
	Tuesday   Weekday = "terca"
	Wednesday Weekday = "quarta"
	Thursday  Weekday = "quinta"
	Friday    Weekday = "sexta"
	Saturday  Weekday = "sabado"
)

// weekdayOrder gives the display/sort position of each weekday, Monday first.
var weekdayOrder = map[Weekday]int{
	Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3, Friday: 4, Saturday: 5,
}

// WeekdayIndex returns the sort position of a weekday and whether it is known.
func WeekdayIndex(d Weekday) (int, bool) {
	i, ok := weekdayOrder[d]
	return i, ok
}

// WeekdayLabel returns the capitalized display name for a weekday.
func WeekdayLabel(d Weekday) string {
	switch d {
	case Monday:
		return "Segunda"
	case Tuesday:
		return "Terça"
	case Wednesday:
		return "Quarta"
	case Thursday:
		return "Quinta"
	case Friday:
		return "Sexta"
	case Saturday:
		return "Sábado"
	}
	return string(d)
}

// WeekdayFromTime maps a calendar date to its canonical weekday name.
// Sunday has no classes and reports false.
func WeekdayFromTime(t time.Time) (Weekday, bool) {
	switch t.Weekday() {
	case time.Monday:
		return Monday, true
	case time.Tuesday:
		return Tuesday, true
	case time.Wednesday:
		return Wednesday, true
	case time.Thursday:
		return Thursday, true
	case time.Friday:
		return Friday, true
	case time.Saturday:
		return Saturday, true
	}
	return "", false
}

// User is a registered student.
type User struct {
	ID        int64
	FirstName string
	Username  string
	Course    string
	Shift     string
	Semester  int
	IsAdmin   bool
	CreatedAt time.Time
}

// Subject is one enrolled class. StartTime and EndTime are canonical
// "HH:MM" strings. TotalAbsences is a running total maintained by the
// store together with the absence records.
type Subject struct {
	ID            int64
	UserID        int64
	Name          string
	Professor     string
	DayOfWeek     Weekday
	Room          string
	StartTime     string
	EndTime       string
	Semester      int
	TotalAbsences int
}

// Activity is a dated assignment (trabalho) or exam (prova) for a subject.
type Activity struct {
	ID        int64
	SubjectID int64
	Type      ActivityType
	Name      string
	DueDate   time.Time
	Notes     string
}

// Absence records missed classes for a subject on one date.
type Absence struct {
	ID        int64
	SubjectID int64
	Date      time.Time
	Quantity  int
	Notes     string
}

// Grade is a named score between 0 and 10 for a subject.
type Grade struct {
	ID        int64
	SubjectID int64
	Name      string
	Value     float64
}

// CourseSubject is one catalog entry used during onboarding to build a
// student's schedule from their course, shift and semester.
type CourseSubject struct {
	ID        int64
	Course    string
	Shift     string
	Semester  int
	Name      string
	Professor string
	DayOfWeek Weekday
	Room      string
	StartTime string
	EndTime   string
}
