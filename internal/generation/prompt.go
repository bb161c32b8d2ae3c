package generation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/Ketaiwk/10xcards/internal/domain"
)

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("flashcard").Parse(promptSource))

type promptData struct {
	Language    string
	MaxQuestion int
	MaxAnswer   int
	Existing    string
}

type existingCard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// BuildSystemPrompt renders the instructions for one card in the given
// language, listing the cards that must not be repeated. The source text is
// sent separately as the user message.
func BuildSystemPrompt(language string, existing []domain.GeneratedCard) (string, error) {
	if language == "" {
		language = "English"
	}
	list := make([]existingCard, len(existing))
	for i, c := range existing {
		list[i] = existingCard{Front: c.Front, Back: c.Back}
	}
	existingJSON, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode existing cards: %w", err)
	}

	var buf bytes.Buffer
	err = promptTemplate.Execute(&buf, promptData{
		Language:    language,
		MaxQuestion: domain.MaxQuestionLength,
		MaxAnswer:   domain.MaxAnswerLength,
		Existing:    string(existingJSON),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
