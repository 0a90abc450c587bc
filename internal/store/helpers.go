package store

import (
	"database/sql"
	"fmt"

	"github.com/jovisbot/jovis/internal/models"
)

// requireRowAffected maps zero affected rows to ErrNotFound.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanSubject scans a Subject from sql.Rows.
func scanSubject(rows *sql.Rows) (models.Subject, error) {
	var s models.Subject
	err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Professor, &s.DayOfWeek, &s.Room,
		&s.StartTime, &s.EndTime, &s.Semester, &s.TotalAbsences)
	if err != nil {
		return s, fmt.Errorf("failed to scan subject row: %w", err)
	}
	return s, nil
}

// scanSubjectRow scans a Subject from a single sql.Row.
func scanSubjectRow(row *sql.Row) (models.Subject, error) {
	var s models.Subject
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Professor, &s.DayOfWeek, &s.Room,
		&s.StartTime, &s.EndTime, &s.Semester, &s.TotalAbsences)
	return s, err
}

func collectActivities(rows *sql.Rows) ([]models.Activity, error) {
	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.SubjectID, &a.Type, &a.Name, &a.DueDate, &a.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func collectCatalogSubjects(rows *sql.Rows) ([]models.CourseSubject, error) {
	var subjects []models.CourseSubject
	for rows.Next() {
		var cs models.CourseSubject
		if err := rows.Scan(&cs.ID, &cs.Course, &cs.Shift, &cs.Semester, &cs.Name,
			&cs.Professor, &cs.DayOfWeek, &cs.Room, &cs.StartTime, &cs.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		subjects = append(subjects, cs)
	}
	return subjects, rows.Err()
}
