package storage

import "strings"

// ValidationError reports field-level problems with an entity about to be
// saved. Handlers surface it to the user as a warning instead of failing
// the whole update.
type ValidationError struct {
	Messages []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

// FullMessages returns the field errors formatted for a user-facing reply
func (e *ValidationError) FullMessages() string {
	return "[" + strings.Join(e.Messages, ", ") + "]"
}
