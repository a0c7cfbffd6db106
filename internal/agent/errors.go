// Package agent implements the conversational trip-planning pipeline:
// intent classification, prompt selection, tool-calling generation, and the
// bounded generate/execute loop that drives one turn.
package agent

import "fmt"

// ClassificationError reports a failed classifier model call. Callers must
// recover by falling back to the general intent; it is never surfaced to the
// end user.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("intent classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// GenerationError reports a failed generator model call. The turn terminates
// with a generic apology message.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("response generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
