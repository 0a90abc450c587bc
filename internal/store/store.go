// Package store provides storage backends for Jovis.
//
// It includes an in-memory store for tests and development, plus SQLite and
// PostgreSQL backends sharing one SQL implementation.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jovisbot/jovis/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist, for
// example when a subject was deleted while a dialogue about it was open.
var ErrNotFound = errors.New("record not found")

// Store is the storage collaborator consumed by the dialogue adapters and
// the read-only commands. Implementations must apply the absence quantity
// and the subject's running total atomically.
type Store interface {
	// Users
	UpsertUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// DeleteUserData removes the user and every record that belongs to them.
	DeleteUserData(ctx context.Context, userID int64) error

	// Subjects
	CreateSubject(ctx context.Context, s *models.Subject) error
	GetSubject(ctx context.Context, id int64) (*models.Subject, error)
	ListSubjects(ctx context.Context, userID int64) ([]models.Subject, error)
	UpdateSubject(ctx context.Context, s models.Subject) error
	DeleteSubject(ctx context.Context, id int64) error

	// Activities
	CreateActivity(ctx context.Context, a *models.Activity) error
	GetActivity(ctx context.Context, id int64) (*models.Activity, error)
	ListActivities(ctx context.Context, userID int64) ([]models.Activity, error)
	ListActivitiesBySubject(ctx context.Context, subjectID int64) ([]models.Activity, error)
	ListActivitiesDueBetween(ctx context.Context, from, to time.Time) ([]models.Activity, error)
	UpdateActivity(ctx context.Context, a models.Activity) error
	DeleteActivity(ctx context.Context, id int64) error

	// Absences. AddAbsence creates the record and increments the subject's
	// total by the quantity in one transaction, returning the new total.
	// Update and Delete adjust the total by the delta the same way.
	AddAbsence(ctx context.Context, a *models.Absence) (int, error)
	GetAbsence(ctx context.Context, id int64) (*models.Absence, error)
	ListAbsences(ctx context.Context, subjectID int64) ([]models.Absence, error)
	UpdateAbsenceQuantity(ctx context.Context, id int64, quantity int) error
	DeleteAbsence(ctx context.Context, id int64) error

	// Grades
	CreateGrade(ctx context.Context, g *models.Grade) error
	GetGrade(ctx context.Context, id int64) (*models.Grade, error)
	ListGrades(ctx context.Context, subjectID int64) ([]models.Grade, error)
	UpdateGrade(ctx context.Context, g models.Grade) error
	DeleteGrade(ctx context.Context, id int64) error

	// Course catalog, used by onboarding.
	ListCourses(ctx context.Context) ([]string, error)
	ListShifts(ctx context.Context, course string) ([]string, error)
	ListCatalogSubjects(ctx context.Context, course, shift string) ([]models.CourseSubject, error)
	ListCatalogSubjectsBySemester(ctx context.Context, course, shift string, semester int) ([]models.CourseSubject, error)

	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports which driver a DSN belongs to: "postgres" for
// URL-style or key=value connection strings, "sqlite3" for file paths.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite3"
}
