// Package store provides storage backends for Jovis.
//
// This file implements an in-memory store used in tests and when no
// database DSN is configured.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jovisbot/jovis/internal/models"
)

type InMemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]models.User
	subjects map[int64]models.Subject
	acts     map[int64]models.Activity
	absences map[int64]models.Absence
	grades   map[int64]models.Grade
	catalog  []models.CourseSubject
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		nextID:   1,
		users:    make(map[int64]models.User),
		subjects: make(map[int64]models.Subject),
		acts:     make(map[int64]models.Activity),
		absences: make(map[int64]models.Absence),
		grades:   make(map[int64]models.Grade),
	}
}

// SeedCatalog loads course catalog entries, assigning IDs. Intended for
// tests and development setups.
func (s *InMemoryStore) SeedCatalog(entries []models.CourseSubject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		e.ID = s.nextID
		s.nextID++
		s.catalog = append(s.catalog, e)
	}
}

func (s *InMemoryStore) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *InMemoryStore) UpsertUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[u.ID]; ok {
		u.CreatedAt = existing.CreatedAt
		u.IsAdmin = existing.IsAdmin || u.IsAdmin
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *InMemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *InMemoryStore) DeleteUserData(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sub := range s.subjects {
		if sub.UserID != userID {
			continue
		}
		s.deleteSubjectChildren(id)
		delete(s.subjects, id)
	}
	delete(s.users, userID)
	return nil
}

func (s *InMemoryStore) deleteSubjectChildren(subjectID int64) {
	for id, a := range s.acts {
		if a.SubjectID == subjectID {
			delete(s.acts, id)
		}
	}
	for id, a := range s.absences {
		if a.SubjectID == subjectID {
			delete(s.absences, id)
		}
	}
	for id, g := range s.grades {
		if g.SubjectID == subjectID {
			delete(s.grades, id)
		}
	}
}

func (s *InMemoryStore) CreateSubject(ctx context.Context, sub *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = s.allocID()
	s.subjects[sub.ID] = *sub
	return nil
}

func (s *InMemoryStore) GetSubject(ctx context.Context, id int64) (*models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subjects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (s *InMemoryStore) ListSubjects(ctx context.Context, userID int64) ([]models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subjects []models.Subject
	for _, sub := range s.subjects {
		if sub.UserID == userID {
			subjects = append(subjects, sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (s *InMemoryStore) UpdateSubject(ctx context.Context, sub models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.subjects[sub.ID]
	if !ok {
		return ErrNotFound
	}
	sub.UserID = existing.UserID
	sub.TotalAbsences = existing.TotalAbsences
	s.subjects[sub.ID] = sub
	return nil
}

func (s *InMemoryStore) DeleteSubject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[id]; !ok {
		return ErrNotFound
	}
	s.deleteSubjectChildren(id)
	delete(s.subjects, id)
	return nil
}

func (s *InMemoryStore) CreateActivity(ctx context.Context, a *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[a.SubjectID]; !ok {
		return ErrNotFound
	}
	a.ID = s.allocID()
	s.acts[a.ID] = *a
	return nil
}

func (s *InMemoryStore) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.acts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *InMemoryStore) ListActivities(ctx context.Context, userID int64) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var activities []models.Activity
	for _, a := range s.acts {
		sub, ok := s.subjects[a.SubjectID]
		if ok && sub.UserID == userID {
			activities = append(activities, a)
		}
	}
	sortActivities(activities)
	return activities, nil
}

func (s *InMemoryStore) ListActivitiesBySubject(ctx context.Context, subjectID int64) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var activities []models.Activity
	for _, a := range s.acts {
		if a.SubjectID == subjectID {
			activities = append(activities, a)
		}
	}
	sortActivities(activities)
	return activities, nil
}

func (s *InMemoryStore) ListActivitiesDueBetween(ctx context.Context, from, to time.Time) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var activities []models.Activity
	for _, a := range s.acts {
		if !a.DueDate.Before(from) && !a.DueDate.After(to) {
			activities = append(activities, a)
		}
	}
	sortActivities(activities)
	return activities, nil
}

func sortActivities(activities []models.Activity) {
	sort.Slice(activities, func(i, j int) bool { return activities[i].DueDate.Before(activities[j].DueDate) })
}

func (s *InMemoryStore) UpdateActivity(ctx context.Context, a models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.acts[a.ID]
	if !ok {
		return ErrNotFound
	}
	a.SubjectID = existing.SubjectID
	a.Type = existing.Type
	s.acts[a.ID] = a
	return nil
}

func (s *InMemoryStore) DeleteActivity(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.acts[id]; !ok {
		return ErrNotFound
	}
	delete(s.acts, id)
	return nil
}

func (s *InMemoryStore) AddAbsence(ctx context.Context, a *models.Absence) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subjects[a.SubjectID]
	if !ok {
		return 0, ErrNotFound
	}
	a.ID = s.allocID()
	s.absences[a.ID] = *a
	sub.TotalAbsences += a.Quantity
	s.subjects[sub.ID] = sub
	return sub.TotalAbsences, nil
}

func (s *InMemoryStore) GetAbsence(ctx context.Context, id int64) (*models.Absence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.absences[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *InMemoryStore) ListAbsences(ctx context.Context, subjectID int64) ([]models.Absence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var absences []models.Absence
	for _, a := range s.absences {
		if a.SubjectID == subjectID {
			absences = append(absences, a)
		}
	}
	sort.Slice(absences, func(i, j int) bool { return absences[i].Date.Before(absences[j].Date) })
	return absences, nil
}

func (s *InMemoryStore) UpdateAbsenceQuantity(ctx context.Context, id int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.absences[id]
	if !ok {
		return ErrNotFound
	}
	sub, ok := s.subjects[a.SubjectID]
	if !ok {
		return ErrNotFound
	}
	sub.TotalAbsences += quantity - a.Quantity
	a.Quantity = quantity
	s.absences[id] = a
	s.subjects[sub.ID] = sub
	return nil
}

func (s *InMemoryStore) DeleteAbsence(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.absences[id]
	if !ok {
		return ErrNotFound
	}
	if sub, ok := s.subjects[a.SubjectID]; ok {
		sub.TotalAbsences -= a.Quantity
		s.subjects[sub.ID] = sub
	}
	delete(s.absences, id)
	return nil
}

func (s *InMemoryStore) CreateGrade(ctx context.Context, g *models.Grade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[g.SubjectID]; !ok {
		return ErrNotFound
	}
	g.ID = s.allocID()
	s.grades[g.ID] = *g
	return nil
}

func (s *InMemoryStore) GetGrade(ctx context.Context, id int64) (*models.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grades[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *InMemoryStore) ListGrades(ctx context.Context, subjectID int64) ([]models.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var grades []models.Grade
	for _, g := range s.grades {
		if g.SubjectID == subjectID {
			grades = append(grades, g)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	return grades, nil
}

func (s *InMemoryStore) UpdateGrade(ctx context.Context, g models.Grade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.grades[g.ID]
	if !ok {
		return ErrNotFound
	}
	g.SubjectID = existing.SubjectID
	s.grades[g.ID] = g
	return nil
}

func (s *InMemoryStore) DeleteGrade(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grades[id]; !ok {
		return ErrNotFound
	}
	delete(s.grades, id)
	return nil
}

func (s *InMemoryStore) ListCourses(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var courses []string
	for _, e := range s.catalog {
		if !seen[e.Course] {
			seen[e.Course] = true
			courses = append(courses, e.Course)
		}
	}
	sort.Strings(courses)
	return courses, nil
}

func (s *InMemoryStore) ListShifts(ctx context.Context, course string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var shifts []string
	for _, e := range s.catalog {
		if e.Course == course && !seen[e.Shift] {
			seen[e.Shift] = true
			shifts = append(shifts, e.Shift)
		}
	}
	sort.Strings(shifts)
	return shifts, nil
}

func (s *InMemoryStore) ListCatalogSubjects(ctx context.Context, course, shift string) ([]models.CourseSubject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subjects []models.CourseSubject
	for _, e := range s.catalog {
		if e.Course == course && e.Shift == shift {
			subjects = append(subjects, e)
		}
	}
	return subjects, nil
}

func (s *InMemoryStore) ListCatalogSubjectsBySemester(ctx context.Context, course, shift string, semester int) ([]models.CourseSubject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subjects []models.CourseSubject
	for _, e := range s.catalog {
		if e.Course == course && e.Shift == shift && e.Semester == semester {
			subjects = append(subjects, e)
		}
	}
	return subjects, nil
}

func (s *InMemoryStore) Close() error { return nil }
