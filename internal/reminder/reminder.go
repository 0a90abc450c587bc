// Package reminder implements the daily due-date sweep: activities due in
// exactly one or three days produce a reminder message to their owner.
package reminder

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
	"github.com/jovisbot/jovis/internal/store"
)

// Sender delivers an outbound text to a transport recipient.
type Sender interface {
	SendMessage(ctx context.Context, to string, body string) error
}

// Job runs the daily reminder sweep.
type Job struct {
	store       store.Store
	sender      Sender
	recipientOf func(userID int64) string
	now         func() time.Time
}

// NewJob creates a reminder job. now defaults to time.Now when nil.
func NewJob(st store.Store, sender Sender, recipientOf func(int64) string, now func() time.Time) *Job {
	if now == nil {
		now = time.Now
	}
	return &Job{store: st, sender: sender, recipientOf: recipientOf, now: now}
}

// Run performs one sweep: every user with activities due tomorrow or in
// three days receives a single message listing them.
func (j *Job) Run(ctx context.Context) error {
	lines, err := j.collect(ctx)
	if err != nil {
		return err
	}
	for userID, userLines := range lines {
		body := dialogs.ReminderAutomaticHeader + strings.Join(userLines, "\n")
		if err := j.sender.SendMessage(ctx, j.recipientOf(userID), body); err != nil {
			slog.Error("reminder delivery failed", "error", err, "userID", userID)
			continue
		}
		slog.Debug("reminder sent", "userID", userID, "activities", len(userLines))
	}
	return nil
}

// collect builds the per-user reminder lines for the current date.
func (j *Job) collect(ctx context.Context) (map[int64][]string, error) {
	now := j.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	from := today.AddDate(0, 0, 1)
	to := today.AddDate(0, 0, 4)
	activities, err := j.store.ListActivitiesDueBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	lines := make(map[int64][]string)
	for _, a := range activities {
		due := a.DueDate
		dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
		days := int(dueDay.Sub(today).Hours() / 24)
		if days != 1 && days != 3 {
			continue
		}

		subject, err := j.store.GetSubject(ctx, a.SubjectID)
		if err != nil {
			slog.Error("reminder subject lookup failed", "error", err, "subjectID", a.SubjectID)
			continue
		}

		var line string
		if days == 1 {
			line = dialogs.ReminderDueTomorrow(activityLabel(a.Type), a.Name, subject.Name)
		} else {
			line = dialogs.ReminderDueInThreeDays(activityLabel(a.Type), a.Name, subject.Name)
		}
		lines[subject.UserID] = append(lines[subject.UserID], line)
	}
	return lines, nil
}

func activityLabel(t models.ActivityType) string {
	if t == models.ActivityExam {
		return "Prova"
	}
	return "Trabalho"
}
