package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jovisbot/jovis/internal/dialogs"
	"github.com/jovisbot/jovis/internal/models"
)

const stateImportPayload State = "import_payload"

// importedSubject is the wire shape of one bulk import entry. Field names
// are the Portuguese keys users paste in.
type importedSubject struct {
	Nome      string `json:"nome"`
	Professor string `json:"professor"`
	Dia       string `json:"dia"`
	Sala      string `json:"sala"`
	Inicio    string `json:"inicio"`
	Fim       string `json:"fim"`
	Semestre  int    `json:"semestre"`
}

func registerBulkImport(r *Registry) {
	r.registerEntry(KindBulkImport, startBulkImport, false, "/import", "menu:import")

	// One state: the payload is validated as a whole inside Apply so the
	// error message can list every bad entry at once. All-or-nothing: any
	// invalid entry re-prompts and nothing is written.
	r.registerStep(KindBulkImport, stateImportPayload, StepDefinition{
		Inputs: []models.TriggerKind{models.TriggerFreeText},
		Apply: func(ctx context.Context, deps *Dependencies, sess *Session, value string) (Outcome, error) {
			canonical, err := parseImportPayload(value)
			if err != nil {
				return Outcome{}, err
			}
			return complete(map[string]string{"payload": canonical}), nil
		},
	})

	r.registerAdapter(KindBulkImport, bulkImportAdapter)
}

func startBulkImport(ctx context.Context, deps *Dependencies, userID int64) (Outcome, error) {
	return prompt(stateImportPayload, nil, text(dialogs.ImportStartPrompt)), nil
}

// parseImportPayload decodes and fully validates the pasted JSON, returning
// the canonical encoding stored in the draft. Every validation problem is
// reported as a recoverable error with a message listing the bad entries.
func parseImportPayload(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var entries []importedSubject
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return "", models.NewValidationMessage(models.BadChoice, dialogs.ImportJSONError(err))
	}
	if len(entries) == 0 {
		return "", models.NewValidationMessage(models.BadChoice, dialogs.ImportJSONNotAList)
	}

	var problems []string
	for i, e := range entries {
		label := e.Nome
		if label == "" {
			label = fmt.Sprintf("entrada %d", i+1)
		}
		if strings.TrimSpace(e.Nome) == "" {
			problems = append(problems, fmt.Sprintf("• %s: campo 'nome' vazio", label))
		}
		if _, err := validateWeekday(e.Dia); err != nil {
			problems = append(problems, fmt.Sprintf("• %s: dia '%s' inválido", label, e.Dia))
		}
		if start, err := validateTime(e.Inicio); err != nil {
			problems = append(problems, fmt.Sprintf("• %s: horário de início '%s' inválido", label, e.Inicio))
		} else {
			entries[i].Inicio = start
		}
		if end, err := validateTime(e.Fim); err != nil {
			problems = append(problems, fmt.Sprintf("• %s: horário de fim '%s' inválido", label, e.Fim))
		} else {
			entries[i].Fim = end
		}
		if e.Semestre <= 0 {
			problems = append(problems, fmt.Sprintf("• %s: semestre deve ser um número positivo", label))
		}
	}
	if len(problems) > 0 {
		return "", models.NewValidationMessage(models.BadChoice, dialogs.ImportFailure(strings.Join(problems, "\n")))
	}

	canonical, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode import payload: %w", err)
	}
	return string(canonical), nil
}

func bulkImportAdapter(ctx context.Context, deps *Dependencies, sess *Session) ([]models.Message, error) {
	var entries []importedSubject
	if err := json.Unmarshal([]byte(sess.Draft["payload"]), &entries); err != nil {
		return nil, fmt.Errorf("draft import payload invalid: %w", err)
	}
	for _, e := range entries {
		day, err := validateWeekday(e.Dia)
		if err != nil {
			return nil, fmt.Errorf("draft weekday invalid: %q", e.Dia)
		}
		subject := models.Subject{
			UserID:    sess.UserID,
			Name:      strings.TrimSpace(e.Nome),
			Professor: strings.TrimSpace(e.Professor),
			DayOfWeek: models.Weekday(day),
			Room:      strings.TrimSpace(e.Sala),
			StartTime: e.Inicio,
			EndTime:   e.Fim,
			Semester:  e.Semestre,
		}
		if err := deps.Store.CreateSubject(ctx, &subject); err != nil {
			return nil, err
		}
	}
	return []models.Message{text(dialogs.ImportSuccess(len(entries)))}, nil
}
