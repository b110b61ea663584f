package http

import (
	"encoding/json"
	"time"

	"github.com/contestlab/backend/scoring"
	"github.com/contestlab/backend/subm/domain"
)

type ProblemScoreView struct {
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Method   string  `json:"method"`

	StudentAnswer json.RawMessage          `json:"student_answer,omitempty"`
	CorrectAnswer json.RawMessage          `json:"correct_answer,omitempty"`
	Keyword       *scoring.KeywordAnalysis `json:"keyword_analysis,omitempty"`

	Feedback      string   `json:"feedback,omitempty"`
	OriginalScore *float64 `json:"original_score,omitempty"`
	Reviewed      bool     `json:"reviewed"`
}

type SubmView struct {
	ID        string `json:"id"`
	ContestID string `json:"contest_id"`
	StudentID string `json:"student_id"`

	TotalScore       float64 `json:"total_score"`
	MaxPossibleScore float64 `json:"max_possible_score"`
	Percentage       float64 `json:"percentage"`

	ProblemScores map[string]ProblemScoreView `json:"problem_scores"`

	SubmittedAt      string `json:"submitted_at"` // UTC RFC 3339
	TimeTakenSeconds int64  `json:"time_taken_seconds"`
	IsAutoSubmitted  bool   `json:"is_auto_submitted"`
}

func mapSubm(s *domain.Submission) SubmView {
	scores := make(map[string]ProblemScoreView, len(s.ProblemScores))
	for problemID, ps := range s.ProblemScores {
		scores[problemID.String()] = ProblemScoreView{
			Score:         ps.Score,
			MaxScore:      ps.MaxScore,
			Method:        string(ps.Method),
			StudentAnswer: ps.StudentAnswer,
			CorrectAnswer: ps.CorrectAnswer,
			Keyword:       ps.Keyword,
			Feedback:      ps.Feedback,
			OriginalScore: ps.OriginalScore,
			Reviewed:      ps.State().Kind == domain.StateReviewed,
		}
	}
	return SubmView{
		ID:               s.ID.String(),
		ContestID:        s.ContestID.String(),
		StudentID:        s.StudentID.String(),
		TotalScore:       s.TotalScore,
		MaxPossibleScore: s.MaxPossibleScore,
		Percentage:       s.Percentage(),
		ProblemScores:    scores,
		SubmittedAt:      s.SubmittedAt.UTC().Format(time.RFC3339),
		TimeTakenSeconds: s.TimeTakenSeconds,
		IsAutoSubmitted:  s.IsAutoSubmitted,
	}
}
