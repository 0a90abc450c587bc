package dialogs

import (
	"strings"
	"testing"
	"time"

	"github.com/jovisbot/jovis/internal/models"
)

func TestTodaySummaryEmpty(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	got := TodaySummary(now, nil, nil, nil)
	if !strings.Contains(got, "10/03/2025") {
		t.Errorf("Expected formatted date, got %q", got)
	}
	if !strings.Contains(got, "Nenhuma aula hoje") {
		t.Errorf("Expected empty-classes line, got %q", got)
	}
	if !strings.Contains(got, "Nenhuma entrega ou prova") {
		t.Errorf("Expected empty-activities line, got %q", got)
	}
}

func TestTodaySummaryListsClassesAndActivities(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	subjects := []models.Subject{
		{Name: "Cálculo I", StartTime: "19:00", EndTime: "20:40", Room: "B101"},
	}
	activities := []models.Activity{
		{SubjectID: 1, Type: models.ActivityExam, Name: "P1"},
	}
	got := TodaySummary(now, subjects, activities, map[int64]string{1: "Cálculo I"})
	if !strings.Contains(got, "19:00–20:40: *Cálculo I* (Sala: B101)") {
		t.Errorf("Expected class line, got %q", got)
	}
	if !strings.Contains(got, "📝 *P1* (Matéria: Cálculo I)") {
		t.Errorf("Expected exam line with icon, got %q", got)
	}
}

func TestWeekAgenda(t *testing.T) {
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	if got := WeekAgenda(start, end, nil, nil); !strings.Contains(got, "Nenhuma atividade") {
		t.Errorf("Expected empty-week message, got %q", got)
	}

	activities := []models.Activity{
		{SubjectID: 1, Type: models.ActivityWork, Name: "Lista 1", DueDate: start.AddDate(0, 0, 2)},
	}
	got := WeekAgenda(start, end, activities, map[int64]string{1: "Redes"})
	if !strings.Contains(got, "de 10/03 a 17/03") {
		t.Errorf("Expected window in header, got %q", got)
	}
	if !strings.Contains(got, "*12/03:* 📚 Lista 1 (Redes)") {
		t.Errorf("Expected activity line, got %q", got)
	}
}

func TestWeeklyScheduleGroupsByDay(t *testing.T) {
	if got := WeeklySchedule(nil); got != SubjectListNoSubjects {
		t.Errorf("Expected empty-list message, got %q", got)
	}

	subjects := []models.Subject{
		{Name: "Redes", Professor: "Prof. Silva", DayOfWeek: models.Wednesday, Room: "Lab 2", StartTime: "19:00", EndTime: "20:40"},
		{Name: "Cálculo I", Professor: "Profa. Regina", DayOfWeek: models.Monday, Room: "B101", StartTime: "19:00", EndTime: "20:40"},
	}
	got := WeeklySchedule(subjects)
	monday := strings.Index(got, "*Segunda:*")
	wednesday := strings.Index(got, "*Quarta:*")
	if monday == -1 || wednesday == -1 {
		t.Fatalf("Expected weekday headers, got %q", got)
	}
	if monday > wednesday {
		t.Error("Expected Monday section before Wednesday")
	}
	if !strings.Contains(got, "Prof.(a) Profa. Regina") {
		t.Errorf("Expected professor line, got %q", got)
	}
}

func TestActivityCalendar(t *testing.T) {
	if got := ActivityCalendar(nil, nil); got != ActivityListNoActivities {
		t.Errorf("Expected empty-calendar message, got %q", got)
	}

	activities := []models.Activity{
		{SubjectID: 1, Type: models.ActivityExam, Name: "P2", DueDate: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)},
	}
	got := ActivityCalendar(activities, map[int64]string{1: "Cálculo I"})
	if !strings.Contains(got, "*02/04/2025:* 📝 P2 (Cálculo I)") {
		t.Errorf("Expected calendar line, got %q", got)
	}
}

func TestAbsenceReport(t *testing.T) {
	if got := AbsenceReport(nil); got != AbsenceReportNoSubjects {
		t.Errorf("Expected empty-report message, got %q", got)
	}

	got := AbsenceReport([]models.Subject{{Name: "Cálculo I", TotalAbsences: 3}})
	if !strings.Contains(got, "*Cálculo I:* 3 falta(s)") {
		t.Errorf("Expected totals line, got %q", got)
	}
}

func TestSubjectReport(t *testing.T) {
	subject := models.Subject{
		Name: "Cálculo I", Professor: "Profa. Regina", DayOfWeek: models.Monday,
		Room: "B101", StartTime: "19:00", EndTime: "20:40", Semester: 2, TotalAbsences: 4,
	}
	got := SubjectReport(subject, nil, nil)
	if !strings.Contains(got, "Segunda, das 19:00 às 20:40") {
		t.Errorf("Expected schedule line, got %q", got)
	}
	if !strings.Contains(got, "Nenhuma atividade cadastrada") || !strings.Contains(got, "Nenhuma nota lançada") {
		t.Errorf("Expected empty sections, got %q", got)
	}

	activities := []models.Activity{
		{Name: "P1", DueDate: time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)},
	}
	grades := []models.Grade{{Name: "P1", Value: 8.5}}
	got = SubjectReport(subject, activities, grades)
	if !strings.Contains(got, "20/03/2025: P1") {
		t.Errorf("Expected activity line, got %q", got)
	}
	if !strings.Contains(got, "P1: *8.50*") {
		t.Errorf("Expected grade line, got %q", got)
	}
}

func TestActivityIcon(t *testing.T) {
	if got := ActivityIcon(models.ActivityExam); got != "📝" {
		t.Errorf("Expected exam icon, got %q", got)
	}
	if got := ActivityIcon(models.ActivityWork); got != "📚" {
		t.Errorf("Expected work icon, got %q", got)
	}
}
