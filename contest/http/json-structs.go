package http

import (
	"encoding/json"
	"time"

	"github.com/contestlab/backend/contest/domain"
	"github.com/contestlab/backend/contest/srvc"
)

type ContestView struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	StartTime string `json:"start_time"` // UTC RFC 3339
	EndTime   string `json:"end_time"`   // UTC RFC 3339
	Status    string `json:"status"`

	SecondsUntilStart int64 `json:"seconds_until_start,omitempty"`
	SecondsSinceEnd   int64 `json:"seconds_since_end,omitempty"`
	ProblemCount      int   `json:"problem_count,omitempty"`
	SubmissionCount   int   `json:"submission_count,omitempty"`
}

func mapContestView(v srvc.ContestView) ContestView {
	return ContestView{
		ID:                v.Contest.ID.String(),
		CourseID:          v.Contest.CourseID.String(),
		Name:              v.Contest.Name,
		IsActive:          v.Contest.IsActive,
		StartTime:         v.Contest.StartTime.UTC().Format(time.RFC3339),
		EndTime:           v.Contest.EndTime.UTC().Format(time.RFC3339),
		Status:            string(v.Status),
		SecondsUntilStart: v.SecondsUntilStart,
		SecondsSinceEnd:   v.SecondsSinceEnd,
		ProblemCount:      v.ProblemCount,
		SubmissionCount:   v.SubmissionCount,
	}
}

type ProblemView struct {
	ID           string  `json:"id"`
	QuestionType string  `json:"question_type"`
	Statement    string  `json:"statement"`
	OptionA      *string `json:"option_a,omitempty"`
	OptionB      *string `json:"option_b,omitempty"`
	OptionC      *string `json:"option_c,omitempty"`
	OptionD      *string `json:"option_d,omitempty"`
	MaxWordCount *int    `json:"max_word_count,omitempty"`
	ScoringType  string  `json:"scoring_type,omitempty"`
	Marks        float64 `json:"marks"`
	OrderIndex   int     `json:"order_index"`

	// grading internals, mapped for staff only
	CorrectOptions json.RawMessage `json:"correct_options,omitempty"`
	SampleAnswer   *string         `json:"sample_answer,omitempty"`
	KeywordConfig  string          `json:"keyword_config,omitempty"`
}

// mapProblem flattens a problem snapshot for the wire. The answer key,
// sample answer and keyword configuration are included only when includeKeys
// is set; participants never receive them.
func mapProblem(p domain.ContestProblem, includeKeys bool) ProblemView {
	v := ProblemView{
		ID:           p.ID.String(),
		QuestionType: string(p.QuestionType),
		Statement:    p.Statement,
		OptionA:      p.OptionA,
		OptionB:      p.OptionB,
		OptionC:      p.OptionC,
		OptionD:      p.OptionD,
		MaxWordCount: p.MaxWordCount,
		ScoringType:  string(p.ScoringType),
		Marks:        p.Marks,
		OrderIndex:   p.OrderIndex,
	}
	if includeKeys {
		if p.CorrectJSON != "" {
			v.CorrectOptions = json.RawMessage(p.CorrectJSON)
		}
		v.SampleAnswer = p.SampleAnswer
		v.KeywordConfig = p.KeywordConfig
	}
	return v
}

// parseUtcTime parses an RFC 3339 timestamp and normalizes it to UTC. A
// timestamp without an offset is rejected by the RFC 3339 grammar itself,
// which is exactly the policy: naive timestamps never enter the system.
func parseUtcTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
