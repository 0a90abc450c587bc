package dialogs

import (
	"fmt"
	"strings"
	"time"

	"github.com/jovisbot/jovis/internal/models"
)

// ActivityIcon returns the emoji used for an activity type in listings.
func ActivityIcon(t models.ActivityType) string {
	if t == models.ActivityExam {
		return "📝"
	}
	return "📚"
}

// TodaySummary renders the /hoje response: today's classes and due items.
func TodaySummary(now time.Time, subjects []models.Subject, activities []models.Activity, subjectNames map[int64]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "☀️ *Resumo para hoje, %s:*\n\n", now.Format("02/01/2006"))
	b.WriteString("📚 *Aulas de Hoje:*\n")
	if len(subjects) == 0 {
		b.WriteString("   - Nenhuma aula hoje. Aproveite!\n")
	}
	for _, s := range subjects {
		fmt.Fprintf(&b, "   • %s–%s: *%s* (Sala: %s)\n", s.StartTime, s.EndTime, s.Name, s.Room)
	}
	b.WriteString("\n📌 *Entregas e Provas para Hoje:*\n")
	if len(activities) == 0 {
		b.WriteString("   - Nenhuma entrega ou prova agendada para hoje!\n")
	}
	for _, a := range activities {
		fmt.Fprintf(&b, "   %s *%s* (Matéria: %s)\n", ActivityIcon(a.Type), a.Name, subjectNames[a.SubjectID])
	}
	return b.String()
}

// WeekAgenda renders the /semana response: activities in the next 7 days.
func WeekAgenda(start, end time.Time, activities []models.Activity, subjectNames map[int64]string) string {
	if len(activities) == 0 {
		return "Nenhuma atividade agendada para esta semana. Que tranquilidade!"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🗓️ *Agenda para os próximos 7 dias (de %s a %s):*\n\n",
		start.Format("02/01"), end.Format("02/01"))
	for _, a := range activities {
		fmt.Fprintf(&b, " • *%s:* %s %s (%s)\n", a.DueDate.Format("02/01"), ActivityIcon(a.Type), a.Name, subjectNames[a.SubjectID])
	}
	return b.String()
}

// WeeklySchedule renders the /grade response grouped by weekday.
func WeeklySchedule(subjects []models.Subject) string {
	if len(subjects) == 0 {
		return SubjectListNoSubjects
	}
	byDay := make(map[models.Weekday][]models.Subject)
	for _, s := range subjects {
		byDay[s.DayOfWeek] = append(byDay[s.DayOfWeek], s)
	}
	var b strings.Builder
	b.WriteString("📅 *Sua Grade Horária Semanal:*\n\n")
	for _, day := range []models.Weekday{models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday, models.Saturday} {
		list := byDay[day]
		if len(list) == 0 {
			continue
		}
		fmt.Fprintf(&b, "*%s:*\n", models.WeekdayLabel(day))
		for _, s := range list {
			fmt.Fprintf(&b, "   %s–%s  *%s* - Prof.(a) %s\n   (Sala: %s)\n", s.StartTime, s.EndTime, s.Name, s.Professor, s.Room)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ActivityCalendar renders the /calendario response: all upcoming activities.
func ActivityCalendar(activities []models.Activity, subjectNames map[int64]string) string {
	if len(activities) == 0 {
		return ActivityListNoActivities
	}
	var b strings.Builder
	b.WriteString("🗓️ *Seu Calendário de Entregas e Provas:*\n\n")
	for _, a := range activities {
		fmt.Fprintf(&b, " • *%s:* %s %s (%s)\n", a.DueDate.Format("02/01/2006"), ActivityIcon(a.Type), a.Name, subjectNames[a.SubjectID])
	}
	return b.String()
}

// AbsenceReport renders the /faltas response: totals per subject.
func AbsenceReport(subjects []models.Subject) string {
	if len(subjects) == 0 {
		return AbsenceReportNoSubjects
	}
	var b strings.Builder
	b.WriteString("📊 *Relatório de Faltas:*\n\n")
	for _, s := range subjects {
		fmt.Fprintf(&b, "▪️ *%s:* %d falta(s)\n", s.Name, s.TotalAbsences)
	}
	return b.String()
}

// SubjectReport renders the /relatorio response for one subject.
func SubjectReport(s models.Subject, activities []models.Activity, grades []models.Grade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Relatório Completo: %s*\n\n", s.Name)
	fmt.Fprintf(&b, "▪️ *Semestre:* %d\n▪️ *Professor:* %s\n▪️ *Horário:* %s, das %s às %s\n▪️ *Sala:* %s\n▪️ *Total de Faltas:* %d\n\n",
		s.Semester, s.Professor, models.WeekdayLabel(s.DayOfWeek), s.StartTime, s.EndTime, s.Room, s.TotalAbsences)
	b.WriteString("🗓️ *Agenda de Atividades:*\n")
	if len(activities) == 0 {
		b.WriteString("   - Nenhuma atividade cadastrada.\n")
	}
	for _, a := range activities {
		fmt.Fprintf(&b, "   • %s: %s\n", a.DueDate.Format("02/01/2006"), a.Name)
	}
	b.WriteString("\n🎓 *Notas Lançadas:*\n")
	if len(grades) == 0 {
		b.WriteString("   - Nenhuma nota lançada.\n")
	}
	for _, g := range grades {
		fmt.Fprintf(&b, "   • %s: *%.2f*\n", g.Name, g.Value)
	}
	return b.String()
}
