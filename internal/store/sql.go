// Package store provides storage backends for Jovis.
//
// This file holds the SQL implementation shared by the SQLite and Postgres
// backends. Queries use $N placeholders and RETURNING clauses, which both
// drivers support, so the two backends differ only in how they open and
// migrate the database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jovisbot/jovis/internal/models"
)

type sqlStore struct {
	db *sql.DB
}

// Users

func (s *sqlStore) UpsertUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, first_name, username, course, shift, semester, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			username = EXCLUDED.username,
			course = EXCLUDED.course,
			shift = EXCLUDED.shift,
			semester = EXCLUDED.semester`,
		u.ID, u.FirstName, u.Username, u.Course, u.Shift, u.Semester, u.IsAdmin, u.CreatedAt)
	if err != nil {
		slog.Error("store UpsertUser failed", "error", err, "userID", u.ID)
		return fmt.Errorf("failed to upsert user %d: %w", u.ID, err)
	}
	return nil
}

func (s *sqlStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, username, course, shift, semester, is_admin, created_at
		FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.FirstName, &u.Username, &u.Course, &u.Shift, &u.Semester, &u.IsAdmin, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("store GetUser failed", "error", err, "userID", id)
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}

func (s *sqlStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, username, course, shift, semester, is_admin, created_at
		FROM users ORDER BY id`)
	if err != nil {
		slog.Error("store ListUsers query failed", "error", err)
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()
	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.Username, &u.Course, &u.Shift, &u.Semester, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *sqlStore) DeleteUserData(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM grades WHERE subject_id IN (SELECT id FROM subjects WHERE user_id = $1)`,
		`DELETE FROM absences WHERE subject_id IN (SELECT id FROM subjects WHERE user_id = $1)`,
		`DELETE FROM activities WHERE subject_id IN (SELECT id FROM subjects WHERE user_id = $1)`,
		`DELETE FROM subjects WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			slog.Error("store DeleteUserData failed", "error", err, "userID", userID)
			return fmt.Errorf("failed to delete user data for %d: %w", userID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user data deletion: %w", err)
	}
	slog.Debug("store DeleteUserData succeeded", "userID", userID)
	return nil
}

// Subjects

func (s *sqlStore) CreateSubject(ctx context.Context, sub *models.Subject) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO subjects (user_id, name, professor, day_of_week, room, start_time, end_time, semester, total_absences)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		sub.UserID, sub.Name, sub.Professor, sub.DayOfWeek, sub.Room, sub.StartTime, sub.EndTime, sub.Semester, sub.TotalAbsences).
		Scan(&sub.ID)
	if err != nil {
		slog.Error("store CreateSubject failed", "error", err, "userID", sub.UserID, "name", sub.Name)
		return fmt.Errorf("failed to insert subject %q: %w", sub.Name, err)
	}
	slog.Debug("store CreateSubject succeeded", "subjectID", sub.ID, "name", sub.Name)
	return nil
}

func (s *sqlStore) GetSubject(ctx context.Context, id int64) (*models.Subject, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, professor, day_of_week, room, start_time, end_time, semester, total_absences
		FROM subjects WHERE id = $1`, id)
	sub, err := scanSubjectRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("store GetSubject failed", "error", err, "subjectID", id)
		return nil, fmt.Errorf("failed to get subject %d: %w", id, err)
	}
	return &sub, nil
}

func (s *sqlStore) ListSubjects(ctx context.Context, userID int64) ([]models.Subject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, professor, day_of_week, room, start_time, end_time, semester, total_absences
		FROM subjects WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		slog.Error("store ListSubjects query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()
	var subjects []models.Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

func (s *sqlStore) UpdateSubject(ctx context.Context, sub models.Subject) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subjects SET name = $1, professor = $2, day_of_week = $3, room = $4,
			start_time = $5, end_time = $6, semester = $7
		WHERE id = $8`,
		sub.Name, sub.Professor, sub.DayOfWeek, sub.Room, sub.StartTime, sub.EndTime, sub.Semester, sub.ID)
	if err != nil {
		slog.Error("store UpdateSubject failed", "error", err, "subjectID", sub.ID)
		return fmt.Errorf("failed to update subject %d: %w", sub.ID, err)
	}
	return requireRowAffected(res)
}

func (s *sqlStore) DeleteSubject(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM grades WHERE subject_id = $1`,
		`DELETE FROM absences WHERE subject_id = $1`,
		`DELETE FROM activities WHERE subject_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			slog.Error("store DeleteSubject cascade failed", "error", err, "subjectID", id)
			return fmt.Errorf("failed to delete subject children: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		slog.Error("store DeleteSubject failed", "error", err, "subjectID", id)
		return fmt.Errorf("failed to delete subject %d: %w", id, err)
	}
	if err := requireRowAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// Activities

func (s *sqlStore) CreateActivity(ctx context.Context, a *models.Activity) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO activities (subject_id, type, name, due_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		a.SubjectID, a.Type, a.Name, a.DueDate, a.Notes).Scan(&a.ID)
	if err != nil {
		slog.Error("store CreateActivity failed", "error", err, "subjectID", a.SubjectID, "name", a.Name)
		return fmt.Errorf("failed to insert activity %q: %w", a.Name, err)
	}
	return nil
}

func (s *sqlStore) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	var a models.Activity
	err := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, type, name, due_date, notes FROM activities WHERE id = $1`, id).
		Scan(&a.ID, &a.SubjectID, &a.Type, &a.Name, &a.DueDate, &a.Notes)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("store GetActivity failed", "error", err, "activityID", id)
		return nil, fmt.Errorf("failed to get activity %d: %w", id, err)
	}
	return &a, nil
}

func (s *sqlStore) ListActivities(ctx context.Context, userID int64) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.subject_id, a.type, a.name, a.due_date, a.notes
		FROM activities a JOIN subjects s ON s.id = a.subject_id
		WHERE s.user_id = $1 ORDER BY a.due_date`, userID)
	if err != nil {
		slog.Error("store ListActivities query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()
	return collectActivities(rows)
}

func (s *sqlStore) ListActivitiesBySubject(ctx context.Context, subjectID int64) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, type, name, due_date, notes
		FROM activities WHERE subject_id = $1 ORDER BY due_date`, subjectID)
	if err != nil {
		slog.Error("store ListActivitiesBySubject query failed", "error", err, "subjectID", subjectID)
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()
	return collectActivities(rows)
}

func (s *sqlStore) ListActivitiesDueBetween(ctx context.Context, from, to time.Time) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, type, name, due_date, notes
		FROM activities WHERE due_date >= $1 AND due_date <= $2 ORDER BY due_date`, from, to)
	if err != nil {
		slog.Error("store ListActivitiesDueBetween query failed", "error", err)
		return nil, fmt.Errorf("failed to query activities by due date: %w", err)
	}
	defer rows.Close()
	return collectActivities(rows)
}

func (s *sqlStore) UpdateActivity(ctx context.Context, a models.Activity) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE activities SET name = $1, due_date = $2, notes = $3 WHERE id = $4`,
		a.Name, a.DueDate, a.Notes, a.ID)
	if err != nil {
		slog.Error("store UpdateActivity failed", "error", err, "activityID", a.ID)
		return fmt.Errorf("failed to update activity %d: %w", a.ID, err)
	}
	return requireRowAffected(res)
}

func (s *sqlStore) DeleteActivity(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		slog.Error("store DeleteActivity failed", "error", err, "activityID", id)
		return fmt.Errorf("failed to delete activity %d: %w", id, err)
	}
	return requireRowAffected(res)
}

// Absences. The absence row and the subject's running total always move
// together inside one transaction.

func (s *sqlStore) AddAbsence(ctx context.Context, a *models.Absence) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin absence transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO absences (subject_id, date, quantity, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, a.SubjectID, a.Date, a.Quantity, a.Notes).Scan(&a.ID)
	if err != nil {
		slog.Error("store AddAbsence insert failed", "error", err, "subjectID", a.SubjectID)
		return 0, fmt.Errorf("failed to insert absence: %w", err)
	}

	var total int
	err = tx.QueryRowContext(ctx, `
		UPDATE subjects SET total_absences = total_absences + $1 WHERE id = $2
		RETURNING total_absences`, a.Quantity, a.SubjectID).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		slog.Error("store AddAbsence total update failed", "error", err, "subjectID", a.SubjectID)
		return 0, fmt.Errorf("failed to update absence total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit absence: %w", err)
	}
	slog.Debug("store AddAbsence succeeded", "subjectID", a.SubjectID, "quantity", a.Quantity, "total", total)
	return total, nil
}

func (s *sqlStore) GetAbsence(ctx context.Context, id int64) (*models.Absence, error) {
	var a models.Absence
	err := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, date, quantity, notes FROM absences WHERE id = $1`, id).
		Scan(&a.ID, &a.SubjectID, &a.Date, &a.Quantity, &a.Notes)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("store GetAbsence failed", "error", err, "absenceID", id)
		return nil, fmt.Errorf("failed to get absence %d: %w", id, err)
	}
	return &a, nil
}

func (s *sqlStore) ListAbsences(ctx context.Context, subjectID int64) ([]models.Absence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, date, quantity, notes
		FROM absences WHERE subject_id = $1 ORDER BY date`, subjectID)
	if err != nil {
		slog.Error("store ListAbsences query failed", "error", err, "subjectID", subjectID)
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()
	var absences []models.Absence
	for rows.Next() {
		var a models.Absence
		if err := rows.Scan(&a.ID, &a.SubjectID, &a.Date, &a.Quantity, &a.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan absence row: %w", err)
		}
		absences = append(absences, a)
	}
	return absences, rows.Err()
}

func (s *sqlStore) UpdateAbsenceQuantity(ctx context.Context, id int64, quantity int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin absence transaction: %w", err)
	}
	defer tx.Rollback()

	var old int
	var subjectID int64
	err = tx.QueryRowContext(ctx, `SELECT quantity, subject_id FROM absences WHERE id = $1`, id).
		Scan(&old, &subjectID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read absence %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE absences SET quantity = $1 WHERE id = $2`, quantity, id); err != nil {
		slog.Error("store UpdateAbsenceQuantity failed", "error", err, "absenceID", id)
		return fmt.Errorf("failed to update absence %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE subjects SET total_absences = total_absences + $1 WHERE id = $2`,
		quantity-old, subjectID); err != nil {
		slog.Error("store UpdateAbsenceQuantity total update failed", "error", err, "subjectID", subjectID)
		return fmt.Errorf("failed to update absence total: %w", err)
	}
	return tx.Commit()
}

func (s *sqlStore) DeleteAbsence(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin absence transaction: %w", err)
	}
	defer tx.Rollback()

	var quantity int
	var subjectID int64
	err = tx.QueryRowContext(ctx, `SELECT quantity, subject_id FROM absences WHERE id = $1`, id).
		Scan(&quantity, &subjectID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read absence %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM absences WHERE id = $1`, id); err != nil {
		slog.Error("store DeleteAbsence failed", "error", err, "absenceID", id)
		return fmt.Errorf("failed to delete absence %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE subjects SET total_absences = total_absences - $1 WHERE id = $2`,
		quantity, subjectID); err != nil {
		slog.Error("store DeleteAbsence total update failed", "error", err, "subjectID", subjectID)
		return fmt.Errorf("failed to update absence total: %w", err)
	}
	return tx.Commit()
}

// Grades

func (s *sqlStore) CreateGrade(ctx context.Context, g *models.Grade) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO grades (subject_id, name, value) VALUES ($1, $2, $3)
		RETURNING id`, g.SubjectID, g.Name, g.Value).Scan(&g.ID)
	if err != nil {
		slog.Error("store CreateGrade failed", "error", err, "subjectID", g.SubjectID, "name", g.Name)
		return fmt.Errorf("failed to insert grade %q: %w", g.Name, err)
	}
	return nil
}

func (s *sqlStore) GetGrade(ctx context.Context, id int64) (*models.Grade, error) {
	var g models.Grade
	err := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, name, value FROM grades WHERE id = $1`, id).
		Scan(&g.ID, &g.SubjectID, &g.Name, &g.Value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("store GetGrade failed", "error", err, "gradeID", id)
		return nil, fmt.Errorf("failed to get grade %d: %w", id, err)
	}
	return &g, nil
}

func (s *sqlStore) ListGrades(ctx context.Context, subjectID int64) ([]models.Grade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, name, value FROM grades WHERE subject_id = $1 ORDER BY id`, subjectID)
	if err != nil {
		slog.Error("store ListGrades query failed", "error", err, "subjectID", subjectID)
		return nil, fmt.Errorf("failed to query grades: %w", err)
	}
	defer rows.Close()
	var grades []models.Grade
	for rows.Next() {
		var g models.Grade
		if err := rows.Scan(&g.ID, &g.SubjectID, &g.Name, &g.Value); err != nil {
			return nil, fmt.Errorf("failed to scan grade row: %w", err)
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}

func (s *sqlStore) UpdateGrade(ctx context.Context, g models.Grade) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE grades SET name = $1, value = $2 WHERE id = $3`, g.Name, g.Value, g.ID)
	if err != nil {
		slog.Error("store UpdateGrade failed", "error", err, "gradeID", g.ID)
		return fmt.Errorf("failed to update grade %d: %w", g.ID, err)
	}
	return requireRowAffected(res)
}

func (s *sqlStore) DeleteGrade(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		slog.Error("store DeleteGrade failed", "error", err, "gradeID", id)
		return fmt.Errorf("failed to delete grade %d: %w", id, err)
	}
	return requireRowAffected(res)
}

// Course catalog

func (s *sqlStore) ListCourses(ctx context.Context) ([]string, error) {
	return s.listDistinct(ctx, `SELECT DISTINCT course FROM course_subjects ORDER BY course`)
}

func (s *sqlStore) ListShifts(ctx context.Context, course string) ([]string, error) {
	return s.listDistinct(ctx, `SELECT DISTINCT shift FROM course_subjects WHERE course = $1 ORDER BY shift`, course)
}

func (s *sqlStore) listDistinct(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("store catalog query failed", "error", err)
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()
	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *sqlStore) ListCatalogSubjects(ctx context.Context, course, shift string) ([]models.CourseSubject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, course, shift, semester, name, professor, day_of_week, room, start_time, end_time
		FROM course_subjects WHERE course = $1 AND shift = $2 ORDER BY semester, id`, course, shift)
	if err != nil {
		slog.Error("store ListCatalogSubjects query failed", "error", err, "course", course, "shift", shift)
		return nil, fmt.Errorf("failed to query course catalog: %w", err)
	}
	defer rows.Close()
	return collectCatalogSubjects(rows)
}

func (s *sqlStore) ListCatalogSubjectsBySemester(ctx context.Context, course, shift string, semester int) ([]models.CourseSubject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, course, shift, semester, name, professor, day_of_week, room, start_time, end_time
		FROM course_subjects WHERE course = $1 AND shift = $2 AND semester = $3 ORDER BY id`,
		course, shift, semester)
	if err != nil {
		slog.Error("store ListCatalogSubjectsBySemester query failed", "error", err, "course", course, "shift", shift, "semester", semester)
		return nil, fmt.Errorf("failed to query course catalog: %w", err)
	}
	defer rows.Close()
	return collectCatalogSubjects(rows)
}

func (s *sqlStore) Close() error {
	slog.Debug("Closing database connection")
	return s.db.Close()
}
