package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Limits applied to flashcard sets.
const (
	MaxSetNameLength    = 255
	MinSourceTextLength = 1000
	MaxSourceTextLength = 10000
	MaxFlashcardsPerSet = 30
)

// Flashcard set validation errors
var (
	ErrSetIDEmpty        = NewValidationError("id", "cannot be empty", nil)
	ErrSetUserIDEmpty    = NewValidationError("user_id", "cannot be empty", nil)
	ErrSetNameEmpty      = NewValidationError("name", "is required", nil)
	ErrSetNameTooLong    = NewValidationError("name", "must be at most 255 characters", nil)
	ErrSourceTextLength  = NewValidationError("source_text", "must be between 1000 and 10000 characters", nil)
	ErrSourceTextMissing = NewValidationError("source_text", "is required for AI generation", nil)
)

// CreationCounts holds the number of non-deleted flashcards in a set
// partitioned by creation type.
type CreationCounts struct {
	Manual      int
	AIGenerated int
	AIEdited    int
}

// FlashcardSet is a named collection of flashcards owned by one user.
//
// The counters are derived from the flashcards table whenever a set is read
// and are never written directly.
type FlashcardSet struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	Name               string    `json:"name"`
	Description        *string   `json:"description"`
	SourceText         *string   `json:"source_text,omitempty"`
	ManualCount        int       `json:"manual_count"`
	AIGeneratedCount   int       `json:"ai_generated_count"`
	AIEditedCount      int       `json:"ai_edited_count"`
	AIAcceptedCount    int       `json:"ai_accepted_count"`
	GenerationDuration int64     `json:"generation_duration"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	IsDeleted          bool      `json:"-"`
}

// NewFlashcardSet creates a new set for the given owner and validates it.
func NewFlashcardSet(userID uuid.UUID, name string, description, sourceText *string) (*FlashcardSet, error) {
	now := time.Now().UTC()
	set := &FlashcardSet{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: description,
		SourceText:  sourceText,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	return set, nil
}

// Validate checks if the set has valid data.
func (s *FlashcardSet) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSetIDEmpty
	}
	if s.UserID == uuid.Nil {
		return ErrSetUserIDEmpty
	}
	if err := ValidateSetName(s.Name); err != nil {
		return err
	}
	if s.SourceText != nil {
		if err := ValidateSourceText(*s.SourceText); err != nil {
			return err
		}
	}
	return nil
}

// ApplyCounts sets the derived counters from the given partition.
func (s *FlashcardSet) ApplyCounts(c CreationCounts) {
	s.ManualCount = c.Manual
	s.AIGeneratedCount = c.AIGenerated
	s.AIEditedCount = c.AIEdited
	s.AIAcceptedCount = c.AIGenerated + c.AIEdited
}

// TotalCards returns the number of non-deleted flashcards in the set.
func (s *FlashcardSet) TotalCards() int {
	return s.ManualCount + s.AIGeneratedCount + s.AIEditedCount
}

// ValidateSetName checks the 1-255 character constraint on set names.
func ValidateSetName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 {
		return ErrSetNameEmpty
	}
	if n > MaxSetNameLength {
		return ErrSetNameTooLong
	}
	return nil
}

// ValidateSourceText checks the 1000-10000 character constraint on the text
// used for generation.
func ValidateSourceText(text string) error {
	n := utf8.RuneCountInString(text)
	if n < MinSourceTextLength || n > MaxSourceTextLength {
		return ErrSourceTextLength
	}
	return nil
}
