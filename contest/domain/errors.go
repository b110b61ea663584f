package domain

import "errors"

var (
	ErrWindowStartNotBeforeEnd = errors.New("contest start time must be before end time")
	ErrWindowTooShort          = errors.New("contest duration must be at least 5 minutes")
	ErrWindowTooLong           = errors.New("contest duration must be at most 24 hours")
)

// ErrContestNotFound is the storage-layer sentinel for a missing contest.
var ErrContestNotFound = errors.New("contest not found")
