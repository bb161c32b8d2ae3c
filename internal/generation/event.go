package generation

import (
	"errors"

	"github.com/Ketaiwk/10xcards/internal/domain"
)

// Event types of a generation stream.
const (
	EventProgress = "progress"
	EventDone     = "done"
	EventError    = "error"
)

// Event is one line of an NDJSON generation stream. Which fields are set
// depends on Type.
type Event struct {
	Type string `json:"type"`

	// progress
	Progress int                   `json:"progress,omitempty"`
	Card     *domain.GeneratedCard `json:"card,omitempty"`

	// done
	Cards      []domain.GeneratedCard `json:"cards,omitempty"`
	Attempts   int                    `json:"attempts,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`

	// error
	Kind    domain.Kind `json:"kind,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ProgressEvent builds the event sent after an accepted card.
func ProgressEvent(p Progress) Event {
	card := p.Card
	return Event{Type: EventProgress, Progress: p.Progress, Card: &card}
}

// DoneEvent builds the final event of a successful run.
func DoneEvent(res Result) Event {
	cards := res.Cards
	if cards == nil {
		cards = []domain.GeneratedCard{}
	}
	return Event{
		Type:       EventDone,
		Cards:      cards,
		Attempts:   res.Attempts,
		DurationMs: res.Duration.Milliseconds(),
	}
}

// ErrorEvent builds the event sent when a run fails. The message is safe to
// show to users.
func ErrorEvent(err error) Event {
	kind := domain.KindOf(err)
	msg := UserMessage(kind)
	if kind == domain.KindValidation {
		var de *domain.Error
		if errors.As(err, &de) && de.Message != "" {
			msg = de.Message
			if de.Field != "" {
				msg = de.Field + ": " + de.Message
			}
		}
	}
	return Event{Type: EventError, Kind: kind, Message: msg}
}

// Err converts an error event back into an error carrying its kind.
func (e Event) Err() error {
	if e.Type != EventError {
		return nil
	}
	if e.Kind.IsProvider() {
		return &ProviderError{Kind: e.Kind, Message: e.Message}
	}
	kind := e.Kind
	if kind == "" {
		kind = domain.KindInternal
	}
	return &domain.Error{Kind: kind, Message: e.Message}
}
