package bot

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
	"github.com/jovisbot/jovis/internal/store"
)

// tokenPattern matches button tokens like "subject:3" or "action:edit".
var tokenPattern = regexp.MustCompile(`^[a-z]+:[a-zA-Z0-9_]`)

// UserIDFromPhone derives the stable numeric user ID from a phone number's
// digits.
func UserIDFromPhone(phone string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return 0, errors.New("phone number has no digits")
	}
	return strconv.ParseInt(digits, 10, 64)
}

// RecipientOf maps a user ID back to the transport recipient address.
func RecipientOf(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// HandleResponse routes one inbound response: read-only commands are
// answered directly, everything else goes through the dialogue engine.
func (b *Bot) HandleResponse(ctx context.Context, resp models.Response) {
	userID, err := UserIDFromPhone(resp.From)
	if err != nil {
		slog.Error("inbound response with unusable sender", "error", err, "from", resp.From)
		return
	}

	isNew, err := b.ensureUser(ctx, userID)
	if err != nil {
		slog.Error("user lookup failed", "error", err, "userID", userID)
		b.send(ctx, userID, []models.Message{{Text: dialogs.GenericFailure}})
		return
	}

	body := strings.TrimSpace(resp.Body)
	if body == "" {
		return
	}

	if strings.HasPrefix(body, "/") {
		command := strings.ToLower(strings.Fields(body)[0])
		if msgs, ok := b.readOnlyCommand(ctx, userID, command, isNew); ok {
			b.send(ctx, userID, msgs)
			return
		}
		b.dispatch(ctx, userID, models.Event{UserID: userID, Trigger: models.TriggerCommand, Payload: command})
		return
	}

	if token, ok := b.resolveNumberedChoice(userID, body); ok {
		b.dispatch(ctx, userID, models.Event{UserID: userID, Trigger: models.TriggerButton, Payload: token})
		return
	}
	if tokenPattern.MatchString(body) {
		b.dispatch(ctx, userID, models.Event{UserID: userID, Trigger: models.TriggerButton, Payload: body})
		return
	}
	b.dispatch(ctx, userID, models.Event{UserID: userID, Trigger: models.TriggerFreeText, Payload: body})
}

// dispatch runs the event through the engine and delivers the replies.
func (b *Bot) dispatch(ctx context.Context, userID int64, ev models.Event) {
	b.send(ctx, userID, b.engine.HandleEvent(ctx, ev))
}

// ensureUser creates a minimal profile on first contact and reports
// whether the user is new.
func (b *Bot) ensureUser(ctx context.Context, userID int64) (bool, error) {
	_, err := b.opts.Store.GetUser(ctx, userID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	user := models.User{
		ID:        userID,
		FirstName: "estudante",
		IsAdmin:   userID == b.opts.AdminID,
		CreatedAt: b.opts.Now(),
	}
	if err := b.opts.Store.UpsertUser(ctx, user); err != nil {
		return false, err
	}
	slog.Debug("new user registered", "userID", userID)
	return true, nil
}

// send delivers the reply batch and remembers the last offered choice set
// so a numbered reply can be mapped back to its token.
func (b *Bot) send(ctx context.Context, userID int64, msgs []models.Message) {
	recipient := RecipientOf(userID)
	var offered []models.Choice
	for _, m := range msgs {
		var err error
		if len(m.Choices) > 0 {
			err = b.opts.Messenger.SendChoices(ctx, recipient, m.Text, m.Choices)
			offered = m.Choices
		} else {
			err = b.opts.Messenger.SendMessage(ctx, recipient, m.Text)
		}
		if err != nil {
			slog.Error("reply delivery failed", "error", err, "userID", userID)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if offered != nil {
		b.pending[userID] = offered
	} else if len(msgs) > 0 && !b.engine.ExpectsButton(userID) {
		delete(b.pending, userID)
	}
}

// resolveNumberedChoice maps a bare number to the matching token of the
// last offered choice set, but only while some dialogue actually expects a
// button, so numeric free-text answers pass through untouched.
func (b *Bot) resolveNumberedChoice(userID int64, body string) (string, bool) {
	n, err := strconv.Atoi(body)
	if err != nil {
		return "", false
	}
	if !b.engine.ExpectsButton(userID) {
		return "", false
	}
	b.mu.Lock()
	choices := b.pending[userID]
	b.mu.Unlock()
	if n < 1 || n > len(choices) {
		return "", false
	}
	return choices[n-1].Token, true
}

// readOnlyCommand answers the stateless commands. The boolean reports
// whether the command was one of them.
func (b *Bot) readOnlyCommand(ctx context.Context, userID int64, command string, isNew bool) ([]models.Message, bool) {
	switch command {
	case "/start":
		return b.startReply(ctx, userID, isNew), true
	case "/help":
		return []models.Message{{Text: dialogs.HelpText}}, true
	case "/hoje":
		return b.todayReply(ctx, userID), true
	case "/semana":
		return b.weekReply(ctx, userID), true
	case "/grade":
		return b.scheduleReply(ctx, userID), true
	case "/calendario":
		return b.calendarReply(ctx, userID), true
	case "/faltas":
		return b.absencesReply(ctx, userID), true
	}
	return nil, false
}

func (b *Bot) startReply(ctx context.Context, userID int64, isNew bool) []models.Message {
	user, err := b.opts.Store.GetUser(ctx, userID)
	if err != nil {
		slog.Error("start command user lookup failed", "error", err, "userID", userID)
		return []models.Message{{Text: dialogs.GenericFailure}}
	}
	welcome := dialogs.WelcomeBack(user.FirstName)
	if isNew {
		welcome = dialogs.WelcomeNew(user.FirstName)
	}
	return []models.Message{
		{Text: welcome},
		{Text: dialogs.MenuMain, Choices: mainMenu()},
	}
}

func mainMenu() []models.Choice {
	return []models.Choice{
		{Label: "🚀 Configurar grade (FATEC)", Token: "menu:fatec"},
		{Label: "📚 Adicionar matéria", Token: "menu:addmateria"},
		{Label: "🗓️ Adicionar trabalho", Token: "menu:addtrabalho"},
		{Label: "📝 Adicionar prova", Token: "menu:addprova"},
		{Label: "✖️ Registrar falta", Token: "menu:faltei"},
		{Label: "🎓 Lançar nota", Token: "menu:addnota"},
		{Label: "📊 Relatório de matéria", Token: "menu:relatorio"},
		{Label: "🔔 Criar lembrete", Token: "menu:lembrar"},
	}
}

func (b *Bot) todayReply(ctx context.Context, userID int64) []models.Message {
	now := b.opts.Now()
	subjects, err := b.opts.Store.ListSubjects(ctx, userID)
	if err != nil {
		return failureReply(err, "today summary", userID)
	}
	activities, err := b.opts.Store.ListActivities(ctx, userID)
	if err != nil {
		return failureReply(err, "today summary", userID)
	}

	weekday, _ := models.WeekdayFromTime(now)
	var todayClasses []models.Subject
	for _, s := range subjects {
		if s.DayOfWeek == weekday {
			todayClasses = append(todayClasses, s)
		}
	}
	var dueToday []models.Activity
	for _, a := range activities {
		if sameDay(a.DueDate, now) {
			dueToday = append(dueToday, a)
		}
	}
	return []models.Message{{Text: dialogs.TodaySummary(now, todayClasses, dueToday, subjectNames(subjects))}}
}

func (b *Bot) weekReply(ctx context.Context, userID int64) []models.Message {
	now := b.opts.Now()
	subjects, err := b.opts.Store.ListSubjects(ctx, userID)
	if err != nil {
		return failureReply(err, "week agenda", userID)
	}
	activities, err := b.opts.Store.ListActivities(ctx, userID)
	if err != nil {
		return failureReply(err, "week agenda", userID)
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 7)
	var week []models.Activity
	for _, a := range activities {
		if !a.DueDate.Before(start) && a.DueDate.Before(end) {
			week = append(week, a)
		}
	}
	return []models.Message{{Text: dialogs.WeekAgenda(start, end, week, subjectNames(subjects))}}
}

func (b *Bot) scheduleReply(ctx context.Context, userID int64) []models.Message {
	subjects, err := b.opts.Store.ListSubjects(ctx, userID)
	if err != nil {
		return failureReply(err, "weekly schedule", userID)
	}
	return []models.Message{{Text: dialogs.WeeklySchedule(subjects)}}
}

func (b *Bot) calendarReply(ctx context.Context, userID int64) []models.Message {
	subjects, err := b.opts.Store.ListSubjects(ctx, userID)
	if err != nil {
		return failureReply(err, "activity calendar", userID)
	}
	activities, err := b.opts.Store.ListActivities(ctx, userID)
	if err != nil {
		return failureReply(err, "activity calendar", userID)
	}
	return []models.Message{{Text: dialogs.ActivityCalendar(activities, subjectNames(subjects))}}
}

func (b *Bot) absencesReply(ctx context.Context, userID int64) []models.Message {
	subjects, err := b.opts.Store.ListSubjects(ctx, userID)
	if err != nil {
		return failureReply(err, "absence report", userID)
	}
	return []models.Message{{Text: dialogs.AbsenceReport(subjects)}}
}

func failureReply(err error, op string, userID int64) []models.Message {
	slog.Error("read-only command failed", "op", op, "error", err, "userID", userID)
	return []models.Message{{Text: dialogs.GenericFailure}}
}

func subjectNames(subjects []models.Subject) map[int64]string {
	names := make(map[int64]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	return names
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
