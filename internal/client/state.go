package client

import (
	"github.com/Ketaiwk/10xcards/internal/domain"
)

// Phase is the stage of the set creation flow.
type Phase string

// Phases of the set creation flow.
const (
	PhaseIdle       Phase = "idle"
	PhaseGenerating Phase = "generating"
	PhaseReviewing  Phase = "reviewing"
	PhaseEditing    Phase = "editing"
	PhaseSaving     Phase = "saving"
	PhaseSaved      Phase = "saved"
	PhaseError      Phase = "error"
)

// Card is a flashcard under review. It has no id until the set is saved.
type Card struct {
	Question     string
	Answer       string
	CreationType domain.CreationType
}

// ErrorInfo is the notification shown for a failed step.
type ErrorInfo struct {
	Kind    domain.Kind
	Message string
}

// State is the full view state of the set creation flow. It is a value;
// Reduce never mutates the state it is given.
type State struct {
	Phase       Phase
	Name        string
	Description string
	SourceText  string
	Cards       []Card
	Progress    int
	// EditIndex is the card being edited, or -1.
	EditIndex int
	SavedSet  *domain.FlashcardSet
	// Error is set while the error phase is shown. ResumePhase is the
	// interactive phase DismissError returns to.
	Error       *ErrorInfo
	ResumePhase Phase
}

// NewState returns the initial state.
func NewState() State {
	return State{Phase: PhaseIdle, EditIndex: -1}
}

// Counts returns how many cards of each creation type are under review.
func (s State) Counts() domain.CreationCounts {
	var c domain.CreationCounts
	for _, card := range s.Cards {
		switch card.CreationType {
		case domain.CreationTypeManual:
			c.Manual++
		case domain.CreationTypeAIGenerated:
			c.AIGenerated++
		case domain.CreationTypeAIEdited:
			c.AIEdited++
		}
	}
	return c
}

// CanSave reports whether the set may be saved from this state.
func (s State) CanSave() bool {
	return s.Phase == PhaseReviewing && s.Name != ""
}

func (s State) cloneCards() []Card {
	if s.Cards == nil {
		return nil
	}
	out := make([]Card, len(s.Cards))
	copy(out, s.Cards)
	return out
}

// Action is an event fed to Reduce.
type Action interface {
	action()
}

// SetDetails changes the set name and description.
type SetDetails struct {
	Name        string
	Description string
}

// SetSourceText changes the text cards are generated from.
type SetSourceText struct {
	Text string
}

// GenerationStarted begins streaming generation.
type GenerationStarted struct{}

// CardGenerated adds a streamed card.
type CardGenerated struct {
	Progress int
	Card     domain.GeneratedCard
}

// GenerationFinished ends a successful generation.
type GenerationFinished struct{}

// GenerationFailed ends generation with an error.
type GenerationFailed struct {
	Err error
}

// AddCard adds a manually written card.
type AddCard struct {
	Question string
	Answer   string
}

// StartEdit opens the card at Index for editing.
type StartEdit struct {
	Index int
}

// SaveEdit stores the edited content of the card at Index.
type SaveEdit struct {
	Index    int
	Question string
	Answer   string
}

// CancelEdit closes the editor without changes.
type CancelEdit struct{}

// RemoveCard drops the card at Index.
type RemoveCard struct {
	Index int
}

// ClearCards drops every card under review.
type ClearCards struct{}

// SaveStarted begins saving the set.
type SaveStarted struct{}

// SaveSucceeded records the saved set. Err is set when some cards could not
// be created.
type SaveSucceeded struct {
	Set *domain.FlashcardSet
	Err error
}

// SaveFailed ends saving with an error.
type SaveFailed struct {
	Err error
}

// DismissError clears the error notification.
type DismissError struct{}

// Reset returns to the initial state.
type Reset struct{}

func (SetDetails) action()         {}
func (SetSourceText) action()      {}
func (GenerationStarted) action()  {}
func (CardGenerated) action()      {}
func (GenerationFinished) action() {}
func (GenerationFailed) action()   {}
func (AddCard) action()            {}
func (StartEdit) action()          {}
func (SaveEdit) action()           {}
func (CancelEdit) action()         {}
func (RemoveCard) action()         {}
func (ClearCards) action()         {}
func (SaveStarted) action()        {}
func (SaveSucceeded) action()      {}
func (SaveFailed) action()         {}
func (DismissError) action()       {}
func (Reset) action()              {}
