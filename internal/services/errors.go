package services

import (
	"errors"
	"fmt"

	"github.com/yungbote/sidequest-backend/internal/types"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation error")
)

// TransientLLMError marks a failed provider call. The generator swallows it
// and falls back to the curated library; it never reaches the facade.
type TransientLLMError struct {
	Err error
}

func (e *TransientLLMError) Error() string {
	return fmt.Sprintf("transient llm error: %v", e.Err)
}

func (e *TransientLLMError) Unwrap() error { return e.Err }

// InvalidStatusTransitionError carries the offending (from, to) pair.
type InvalidStatusTransitionError struct {
	From types.QuestStatus
	To   types.QuestStatus
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}
