package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Flashcard content limits.
const (
	MaxQuestionLength = 200
	MaxAnswerLength   = 500
)

// CreationType classifies how a flashcard originated.
type CreationType string

// Valid creation types.
const (
	CreationTypeManual      CreationType = "manual"
	CreationTypeAIGenerated CreationType = "ai_generated"
	CreationTypeAIEdited    CreationType = "ai_edited"
)

// Flashcard validation errors
var (
	ErrFlashcardIDEmpty      = NewValidationError("id", "cannot be empty", nil)
	ErrFlashcardSetIDEmpty   = NewValidationError("set_id", "cannot be empty", nil)
	ErrQuestionEmpty         = NewValidationError("question", "is required", nil)
	ErrQuestionTooLong       = NewValidationError("question", "must be at most 200 characters", nil)
	ErrAnswerEmpty           = NewValidationError("answer", "is required", nil)
	ErrAnswerTooLong         = NewValidationError("answer", "must be at most 500 characters", nil)
	ErrInvalidCreationType   = NewValidationError("creation_type", "must be ai_generated, ai_edited, or manual", nil)
	ErrCreationTypeReversal  = NewValidationError("creation_type", "can only change from ai_generated to ai_edited", nil)
	ErrEmptyFlashcardPatch   = NewValidationError("", "at least one field must be provided for update", nil)
	ErrGeneratedCardTooShort = NewValidationError("card", "front and back must not be empty", nil)
)

// Valid reports whether c is one of the known creation types.
func (c CreationType) Valid() bool {
	switch c {
	case CreationTypeManual, CreationTypeAIGenerated, CreationTypeAIEdited:
		return true
	}
	return false
}

// CanTransitionTo reports whether a card of type c may be reclassified as next.
// The only transition is ai_generated to ai_edited.
func (c CreationType) CanTransitionTo(next CreationType) bool {
	return c == next || (c == CreationTypeAIGenerated && next == CreationTypeAIEdited)
}

// ParseCreationType converts a raw string into a CreationType.
func ParseCreationType(s string) (CreationType, error) {
	c := CreationType(s)
	if !c.Valid() {
		return "", ErrInvalidCreationType
	}
	return c, nil
}

// Flashcard is a single question/answer pair belonging to exactly one set.
type Flashcard struct {
	ID           uuid.UUID    `json:"id"`
	SetID        uuid.UUID    `json:"set_id"`
	Question     string       `json:"question"`
	Answer       string       `json:"answer"`
	CreationType CreationType `json:"creation_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	IsDeleted    bool         `json:"-"`
}

// NewFlashcard creates a new flashcard in the given set and validates it.
func NewFlashcard(setID uuid.UUID, question, answer string, creationType CreationType) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		ID:           uuid.New(),
		SetID:        setID,
		Question:     question,
		Answer:       answer,
		CreationType: creationType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the flashcard has valid data.
func (f *Flashcard) Validate() error {
	if f.ID == uuid.Nil {
		return ErrFlashcardIDEmpty
	}
	if f.SetID == uuid.Nil {
		return ErrFlashcardSetIDEmpty
	}
	if err := ValidateQuestion(f.Question); err != nil {
		return err
	}
	if err := ValidateAnswer(f.Answer); err != nil {
		return err
	}
	if !f.CreationType.Valid() {
		return ErrInvalidCreationType
	}
	return nil
}

// FlashcardPatch is a partial update of a flashcard. Nil fields are left
// unchanged.
type FlashcardPatch struct {
	Question     *string
	Answer       *string
	IsDeleted    *bool
	CreationType *CreationType
}

// IsEmpty reports whether the patch changes nothing.
func (p FlashcardPatch) IsEmpty() bool {
	return p.Question == nil && p.Answer == nil && p.IsDeleted == nil && p.CreationType == nil
}

// EditsContent reports whether the patch touches the question or the answer.
func (p FlashcardPatch) EditsContent() bool {
	return p.Question != nil || p.Answer != nil
}

// ApplyPatch applies p to the card. Editing the content of an ai_generated
// card promotes it to ai_edited. On error the card is left unchanged.
func (f *Flashcard) ApplyPatch(p FlashcardPatch, now time.Time) error {
	if p.IsEmpty() {
		return ErrEmptyFlashcardPatch
	}

	orig := *f

	if p.CreationType != nil {
		if !p.CreationType.Valid() {
			return ErrInvalidCreationType
		}
		if !f.CreationType.CanTransitionTo(*p.CreationType) {
			return ErrCreationTypeReversal
		}
		f.CreationType = *p.CreationType
	}
	if p.Question != nil {
		f.Question = *p.Question
	}
	if p.Answer != nil {
		f.Answer = *p.Answer
	}
	if p.IsDeleted != nil {
		f.IsDeleted = *p.IsDeleted
	}
	if p.EditsContent() && f.CreationType == CreationTypeAIGenerated {
		f.CreationType = CreationTypeAIEdited
	}

	if err := f.Validate(); err != nil {
		*f = orig
		return err
	}

	f.UpdatedAt = now.UTC()
	return nil
}

// ValidateQuestion checks the 1-200 character constraint on questions.
func ValidateQuestion(q string) error {
	n := utf8.RuneCountInString(q)
	if strings.TrimSpace(q) == "" {
		return ErrQuestionEmpty
	}
	if n > MaxQuestionLength {
		return ErrQuestionTooLong
	}
	return nil
}

// ValidateAnswer checks the 1-500 character constraint on answers.
func ValidateAnswer(a string) error {
	n := utf8.RuneCountInString(a)
	if strings.TrimSpace(a) == "" {
		return ErrAnswerEmpty
	}
	if n > MaxAnswerLength {
		return ErrAnswerTooLong
	}
	return nil
}

// GeneratedCard is the transient output of a generation call. It becomes a
// Flashcard only once the set is saved.
type GeneratedCard struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`
}

// Validate checks that the card has content and fits the flashcard limits.
func (g GeneratedCard) Validate() error {
	if strings.TrimSpace(g.Front) == "" || strings.TrimSpace(g.Back) == "" {
		return ErrGeneratedCardTooShort
	}
	if utf8.RuneCountInString(g.Front) > MaxQuestionLength {
		return ErrQuestionTooLong
	}
	if utf8.RuneCountInString(g.Back) > MaxAnswerLength {
		return ErrAnswerTooLong
	}
	return nil
}

// DuplicateOf reports whether g repeats the front or the back of any of the
// given cards. The comparison is exact and case-sensitive.
func (g GeneratedCard) DuplicateOf(cards []GeneratedCard) bool {
	for _, c := range cards {
		if c.Front == g.Front || c.Back == g.Back {
			return true
		}
	}
	return false
}
