package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionMCQ        QuestionType = "mcq"
	QuestionLongAnswer QuestionType = "long_answer"
)

type ScoringType string

const (
	ScoringManual  ScoringType = "manual"
	ScoringKeyword ScoringType = "keyword_based"
)

// ValidOptions is the closed option set for multiple-choice problems.
var ValidOptions = []string{"A", "B", "C", "D"}

func IsValidOption(opt string) bool {
	for _, v := range ValidOptions {
		if opt == v {
			return true
		}
	}
	return false
}

// ContestProblem is a deep-copy snapshot of a question bank item taken at
// contest-creation time. Later edits to the source question do not reach
// the contest. Read-only once the contest has started.
type ContestProblem struct {
	ID           uuid.UUID
	ContestID    uuid.UUID
	QuestionType QuestionType
	Statement    string

	// multiple choice only
	OptionA     *string
	OptionB     *string
	OptionC     *string
	OptionD     *string
	CorrectJSON string // JSON array of correct options, stored as authored

	// long answer only
	MaxWordCount  *int
	SampleAnswer  *string
	ScoringType   ScoringType
	KeywordConfig string // JSON list, {essential,bonus} object, or comma string

	Marks      float64
	OrderIndex int
}

// CorrectOptionSet parses the stored correct-options JSON. A parse failure
// here means the stored snapshot is corrupt; callers abort the whole
// submission rather than guess.
func (p ContestProblem) CorrectOptionSet() (map[string]bool, error) {
	var opts []string
	if err := json.Unmarshal([]byte(p.CorrectJSON), &opts); err != nil {
		return nil, fmt.Errorf("corrupt correct-options for problem %s: %w", p.ID, err)
	}
	set := make(map[string]bool, len(opts))
	for _, o := range opts {
		set[o] = true
	}
	return set, nil
}
