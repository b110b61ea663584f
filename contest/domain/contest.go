package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is derived from the clock and the contest window on every read.
// It is intentionally never stored; a persisted status field goes stale the
// moment the window boundary passes.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusEnded      Status = "ended"
)

type Contest struct {
	ID        uuid.UUID
	CourseID  uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	IsActive  bool
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// StatusAt maps an instant onto the contest window. Both boundaries are
// inclusive for InProgress. All operands are normalized to UTC first; the
// HTTP boundary already rejects timestamps without an offset, so a non-UTC
// location here only ever means a zoned-but-unambiguous instant.
func StatusAt(now, start, end time.Time) Status {
	now = now.UTC()
	start = start.UTC()
	end = end.UTC()
	switch {
	case now.Before(start):
		return StatusNotStarted
	case now.After(end):
		return StatusEnded
	default:
		return StatusInProgress
	}
}

func (c Contest) StatusAt(now time.Time) Status {
	return StatusAt(now, c.StartTime, c.EndTime)
}

func (c Contest) CanSubmit(now time.Time) bool {
	return c.StatusAt(now) == StatusInProgress && c.IsActive
}

func (c Contest) CanBeDeleted(now time.Time) bool {
	return c.StatusAt(now) == StatusNotStarted
}

func (c Contest) IsAccessible(now time.Time) bool {
	return c.StatusAt(now) != StatusNotStarted && c.IsActive
}

func (c Contest) Duration() time.Duration {
	return c.EndTime.Sub(c.StartTime)
}

func (c Contest) SecondsUntilStart(now time.Time) int64 {
	return int64(c.StartTime.UTC().Sub(now.UTC()).Seconds())
}

func (c Contest) SecondsSinceEnd(now time.Time) int64 {
	return int64(now.UTC().Sub(c.EndTime.UTC()).Seconds())
}

const (
	MinDuration = 5 * time.Minute
	MaxDuration = 24 * time.Hour
)

// ValidateWindow enforces the contest window invariants at create/update
// time: start strictly before end, duration within [5min, 24h].
func ValidateWindow(start, end time.Time) error {
	if !start.UTC().Before(end.UTC()) {
		return ErrWindowStartNotBeforeEnd
	}
	d := end.UTC().Sub(start.UTC())
	if d < MinDuration {
		return ErrWindowTooShort
	}
	if d > MaxDuration {
		return ErrWindowTooLong
	}
	return nil
}
