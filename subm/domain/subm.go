package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/contestlab/backend/scoring"
)

// ErrDuplicateSubmission is returned by the storage layer when the unique
// (contest_id, student_id) index rejects a second insert. The protocol maps
// it to the already-submitted state error.
var ErrDuplicateSubmission = errors.New("submission already exists for this contest and student")

type ScoringMethod string

const (
	MethodExactMatch ScoringMethod = "exact_match"
	MethodKeyword    ScoringMethod = "keyword_based"
	MethodManual     ScoringMethod = "manual"
)

// Submission is the single graded attempt of one student in one contest.
// At most one row exists per (ContestID, StudentID); created once and only
// ever mutated through the review ledger afterwards.
type Submission struct {
	ID        uuid.UUID
	ContestID uuid.UUID
	StudentID uuid.UUID

	// Answers as received, keyed by problem id: an option list for MCQ
	// problems, a string for long answers.
	Answers map[uuid.UUID]json.RawMessage

	TotalScore       float64
	MaxPossibleScore float64
	ProblemScores    map[uuid.UUID]*ProblemScore

	SubmittedAt      time.Time
	TimeTakenSeconds int64
	IsAutoSubmitted  bool
}

func (s *Submission) Percentage() float64 {
	if s.MaxPossibleScore == 0 {
		return 0
	}
	return s.TotalScore / s.MaxPossibleScore * 100
}

// RedactAnswerKeys returns a copy with the grading internals removed from
// every problem score: the correct answer and the keyword analysis. Served
// to the submitting student while the contest window is still open, so an
// early submitter cannot hand the key to peers who have not submitted yet.
func (s *Submission) RedactAnswerKeys() *Submission {
	clone := *s
	clone.ProblemScores = make(map[uuid.UUID]*ProblemScore, len(s.ProblemScores))
	for problemID, ps := range s.ProblemScores {
		redacted := *ps
		redacted.CorrectAnswer = nil
		redacted.Keyword = nil
		clone.ProblemScores[problemID] = &redacted
	}
	return &clone
}

// ProblemScore is the per-problem grading record inside a submission,
// including everything the review UI needs: the student's answer, the key it
// was graded against and the keyword audit trail when applicable.
type ProblemScore struct {
	Score    float64       `json:"score"`
	MaxScore float64       `json:"max_score"`
	Method   ScoringMethod `json:"method"`

	StudentAnswer json.RawMessage          `json:"student_answer,omitempty"`
	CorrectAnswer json.RawMessage          `json:"correct_answer,omitempty"`
	Keyword       *scoring.KeywordAnalysis `json:"keyword_analysis,omitempty"`

	// Review provenance. OriginalScore keeps the first automatic score once
	// a human override lands.
	OriginalScore *float64   `json:"original_score,omitempty"`
	Feedback      string     `json:"feedback,omitempty"`
	ReviewedBy    *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
}

type ScoreStateKind string

const (
	StateUnscored   ScoreStateKind = "unscored"
	StateAutoScored ScoreStateKind = "auto_scored"
	StateReviewed   ScoreStateKind = "reviewed"
)

// ScoreState is the sum type over the grading lifecycle of one problem
// score: never scored, automatically scored (possibly provisional), or
// confirmed by a human reviewer.
type ScoreState struct {
	Kind ScoreStateKind

	// AutoScored
	Method      ScoringMethod
	Provisional bool

	// Reviewed
	ReviewedBy uuid.UUID
	ReviewedAt time.Time
}

// State derives the grading state. Keyword-based scores are provisional by
// definition: the matcher is a heuristic pre-grade pending human
// confirmation.
func (ps *ProblemScore) State() ScoreState {
	if ps.ReviewedBy != nil {
		reviewedAt := time.Time{}
		if ps.ReviewedAt != nil {
			reviewedAt = *ps.ReviewedAt
		}
		return ScoreState{Kind: StateReviewed, ReviewedBy: *ps.ReviewedBy, ReviewedAt: reviewedAt}
	}
	if ps.Method == "" {
		return ScoreState{Kind: StateUnscored}
	}
	return ScoreState{
		Kind:        StateAutoScored,
		Method:      ps.Method,
		Provisional: ps.Method == MethodKeyword,
	}
}

// HasScoringError reports whether the keyword analysis carries the error
// marker, i.e. the keyword configuration was unusable at grading time.
func (ps *ProblemScore) HasScoringError() bool {
	return ps.Keyword != nil && ps.Keyword.Error != ""
}

type ReviewPriority string

const (
	PriorityHigh   ReviewPriority = "high"
	PriorityMedium ReviewPriority = "medium"
)

// NeedsReview reports whether this problem score still awaits a human, and
// at which priority. Manual-method and error-marked items come first;
// clean keyword scores are provisional but lower priority.
func (ps *ProblemScore) NeedsReview() (bool, ReviewPriority) {
	state := ps.State()
	switch state.Kind {
	case StateReviewed:
		return false, ""
	case StateUnscored:
		return true, PriorityHigh
	}
	if ps.HasScoringError() || state.Method == MethodManual {
		return true, PriorityHigh
	}
	if state.Provisional {
		return true, PriorityMedium
	}
	return false, ""
}

// ErrSubmissionNotFound is the storage-layer sentinel for a missing
// submission row.
var ErrSubmissionNotFound = errors.New("submission not found")
