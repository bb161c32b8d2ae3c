package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
)

// Notices for actions rejected by Reduce.
var (
	ErrNameRequired       = domain.NewValidationError("name", "set name is required", nil)
	ErrSourceTextRequired = domain.NewValidationError("source_text", "source text is required", nil)
)

// Reduce returns the state that follows s after a. It performs no I/O and
// never modifies s. Actions that do not apply to the current phase are
// ignored.
func Reduce(s State, a Action) State {
	next := s
	next.Cards = s.cloneCards()

	switch a := a.(type) {
	case SetDetails:
		if s.busy() {
			return s
		}
		next.Name = a.Name
		next.Description = a.Description

	case SetSourceText:
		if s.busy() {
			return s
		}
		next.SourceText = a.Text

	case GenerationStarted:
		if s.Phase != PhaseIdle && s.Phase != PhaseReviewing {
			return s
		}
		if strings.TrimSpace(s.Name) == "" {
			return notice(next, ErrNameRequired)
		}
		if strings.TrimSpace(s.SourceText) == "" {
			return notice(next, ErrSourceTextRequired)
		}
		// Unedited AI cards are replaced by the new run.
		kept := next.Cards[:0]
		for _, c := range next.Cards {
			if c.CreationType != domain.CreationTypeAIGenerated {
				kept = append(kept, c)
			}
		}
		next.Cards = kept
		next.Phase = PhaseGenerating
		next.Progress = 0
		next.Error = nil

	case CardGenerated:
		if s.Phase != PhaseGenerating {
			return s
		}
		next.Cards = append(next.Cards, Card{
			Question:     a.Card.Front,
			Answer:       a.Card.Back,
			CreationType: domain.CreationTypeAIGenerated,
		})
		next.Progress = a.Progress

	case GenerationFinished:
		if s.Phase != PhaseGenerating {
			return s
		}
		next.Phase = PhaseReviewing

	case GenerationFailed:
		if s.Phase != PhaseGenerating {
			return s
		}
		resume := PhaseIdle
		if len(next.Cards) > 0 {
			resume = PhaseReviewing
		}
		return fail(next, a.Err, resume)

	case AddCard:
		if s.Phase != PhaseIdle && s.Phase != PhaseReviewing {
			return s
		}
		if err := validateContent(a.Question, a.Answer); err != nil {
			return notice(next, err)
		}
		next.Cards = append(next.Cards, Card{
			Question:     a.Question,
			Answer:       a.Answer,
			CreationType: domain.CreationTypeManual,
		})
		next.Phase = PhaseReviewing

	case StartEdit:
		if s.Phase != PhaseReviewing || !s.validIndex(a.Index) {
			return s
		}
		next.Phase = PhaseEditing
		next.EditIndex = a.Index

	case SaveEdit:
		if s.Phase != PhaseEditing || a.Index != s.EditIndex || !s.validIndex(a.Index) {
			return s
		}
		if err := validateContent(a.Question, a.Answer); err != nil {
			return notice(next, err)
		}
		card := next.Cards[a.Index]
		card.Question = a.Question
		card.Answer = a.Answer
		if card.CreationType == domain.CreationTypeAIGenerated {
			card.CreationType = domain.CreationTypeAIEdited
		}
		next.Cards[a.Index] = card
		next.Phase = PhaseReviewing
		next.EditIndex = -1

	case CancelEdit:
		if s.Phase != PhaseEditing {
			return s
		}
		next.Phase = PhaseReviewing
		next.EditIndex = -1

	case RemoveCard:
		if s.Phase != PhaseReviewing || !s.validIndex(a.Index) {
			return s
		}
		next.Cards = append(next.Cards[:a.Index], next.Cards[a.Index+1:]...)

	case ClearCards:
		if s.Phase != PhaseReviewing {
			return s
		}
		next.Cards = nil
		next.Progress = 0
		next.Phase = PhaseIdle

	case SaveStarted:
		if s.Phase != PhaseReviewing {
			return s
		}
		if strings.TrimSpace(s.Name) == "" {
			return notice(next, ErrNameRequired)
		}
		next.Phase = PhaseSaving
		next.Error = nil

	case SaveSucceeded:
		if s.Phase != PhaseSaving {
			return s
		}
		next.Phase = PhaseSaved
		next.SavedSet = a.Set
		if a.Err != nil {
			return notice(next, a.Err)
		}

	case SaveFailed:
		if s.Phase != PhaseSaving {
			return s
		}
		return fail(next, a.Err, PhaseReviewing)

	case DismissError:
		next.Error = nil
		if s.Phase == PhaseError {
			next.Phase = s.ResumePhase
			next.ResumePhase = ""
		}

	case Reset:
		return NewState()

	default:
		return s
	}
	return next
}

// busy reports whether a request is in flight.
func (s State) busy() bool {
	return s.Phase == PhaseGenerating || s.Phase == PhaseSaving
}

func (s State) validIndex(i int) bool {
	return i >= 0 && i < len(s.Cards)
}

// notice records a rejected action without leaving the current phase.
func notice(s State, err error) State {
	info := errorInfo(err)
	s.Error = &info
	return s
}

// fail moves to the error phase. DismissError resumes at resume.
func fail(s State, err error, resume Phase) State {
	info := errorInfo(err)
	s.Error = &info
	s.Phase = PhaseError
	s.ResumePhase = resume
	s.EditIndex = -1
	return s
}

func validateContent(question, answer string) error {
	if err := domain.ValidateQuestion(question); err != nil {
		return err
	}
	return domain.ValidateAnswer(answer)
}

// errorInfo converts an error into the notification shown to the user.
func errorInfo(err error) ErrorInfo {
	kind := domain.KindOf(err)
	if kind == "" {
		kind = domain.KindInternal
	}
	var partial *PartialSaveError
	if errors.As(err, &partial) {
		return ErrorInfo{
			Kind:    kind,
			Message: fmt.Sprintf("%d of %d flashcards could not be saved", partial.Failed, partial.Total),
		}
	}
	if kind.IsProvider() {
		return ErrorInfo{Kind: kind, Message: generation.UserMessage(kind)}
	}

	var de *domain.Error
	if errors.As(err, &de) && de.Message != "" {
		msg := de.Message
		if de.Field != "" && kind == domain.KindValidation {
			msg = de.Field + ": " + msg
		}
		return ErrorInfo{Kind: kind, Message: msg}
	}
	if err == nil {
		return ErrorInfo{Kind: kind, Message: "unknown error"}
	}
	return ErrorInfo{Kind: kind, Message: err.Error()}
}
