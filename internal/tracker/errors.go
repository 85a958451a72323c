package tracker

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a tracker failure into the taxonomy the rest of the
// system understands. The tracker reports errors as free text; Normalize
// maps that text onto a Kind, and anything unmatched falls through as
// KindUnknown with the original message preserved.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindCycle       Kind = "cycle"
	KindDuplicate   Kind = "duplicate"
	KindValidation  Kind = "validation_error"
	KindSyncFailure Kind = "sync_failure"
	KindUnknown     Kind = "unknown"
)

// Error is a normalized tracker failure.
type Error struct {
	Kind    Kind
	Op      string // the gateway operation that failed, e.g. "create"
	Message string // original tracker message, verbatim
}

func (e *Error) Error() string {
	return fmt.Sprintf("tracker %s: %s (%s)", e.Op, e.Message, e.Kind)
}

// KindOf extracts the Kind from an error chain. Non-tracker errors report
// KindUnknown.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// keyword tables for case-insensitive classification, checked in order.
// More specific kinds come first so e.g. "dependency cycle detected" is a
// cycle, not a validation error.
var kindKeywords = []struct {
	kind     Kind
	keywords []string
}{
	{KindCycle, []string{"cycle", "circular"}},
	{KindDuplicate, []string{"duplicate", "already exists", "already has"}},
	{KindNotFound, []string{"not found", "no such", "does not exist", "unknown issue"}},
	{KindValidation, []string{"invalid", "validation", "required", "must be", "cannot be empty"}},
}

// Normalize turns a raw tracker message into a typed *Error.
func Normalize(op, message string) *Error {
	lower := strings.ToLower(message)
	for _, entry := range kindKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return &Error{Kind: entry.kind, Op: op, Message: message}
			}
		}
	}
	return &Error{Kind: KindUnknown, Op: op, Message: message}
}

// validationError builds a synchronous validation failure raised before any
// subprocess is spawned.
func validationError(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}
