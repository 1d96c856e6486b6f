package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrEmptyQueue         = errors.New("speaker queue is empty")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrAlreadyExists      = errors.New("already exists")
)

var (
	ErrMeetingNotFound = fmt.Errorf("meeting %w", ErrNotFound)
	ErrEntryNotFound   = fmt.Errorf("queue entry %w", ErrNotFound)
	ErrNoSpeaker       = fmt.Errorf("current speaker %w", ErrNotFound)
	ErrChairNotFound   = fmt.Errorf("chair %w", ErrNotFound)
	ErrNoCurrentItem   = fmt.Errorf("%w: no agenda item is current", ErrInvalidReference)
	ErrLastChair       = fmt.Errorf("%w: a meeting needs at least one chair", ErrInvariantViolation)
	ErrNotChair        = fmt.Errorf("%w: chair only", ErrForbidden)
)

// DirectoryError carries a participant directory failure; its message is shown to the caller as-is.
type DirectoryError struct {
	Err error
}

func (e *DirectoryError) Error() string {
	if e.Err == nil {
		return "directory error"
	}
	return e.Err.Error()
}

func (e *DirectoryError) Unwrap() error { return e.Err }
