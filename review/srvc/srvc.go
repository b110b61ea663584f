// Package srvc implements the review ledger: the layer where humans adjust
// automatic scores. Overrides keep full provenance (original score, reviewer,
// timestamp) and totals are updated incrementally so untouched problems are
// never re-derived.
package srvc

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/contestlab/backend/clock"
	contestdomain "github.com/contestlab/backend/contest/domain"
	submdomain "github.com/contestlab/backend/subm/domain"
)

type SubmStore interface {
	GetSubmission(ctx context.Context, id uuid.UUID) (*submdomain.Submission, error)
	ListSubmissions(ctx context.Context, contestID uuid.UUID) ([]*submdomain.Submission, error)
	UpdateSubmission(ctx context.Context, subm *submdomain.Submission) error
}

type ProblemReader interface {
	ListProblems(ctx context.Context, contestID uuid.UUID) ([]contestdomain.ContestProblem, error)
}

type ReviewSrvcClient interface {
	ListPendingReviews(ctx context.Context, contestID uuid.UUID) ([]PendingReview, error)
	UpdateReview(ctx context.Context, p UpdateReviewParams) (*submdomain.Submission, error)
	RescoreWithKeywords(ctx context.Context, p RescoreParams) (*submdomain.Submission, []RescoreRecord, error)
	Analytics(ctx context.Context, contestID uuid.UUID) (Analytics, error)
}

type ReviewSrvc struct {
	subms    SubmStore
	problems ProblemReader
	clock    clock.Clock
}

func NewReviewSrvc(subms SubmStore, problems ProblemReader, clk clock.Clock) *ReviewSrvc {
	return &ReviewSrvc{subms: subms, problems: problems, clock: clk}
}

// PendingReview is one problem score awaiting human attention.
type PendingReview struct {
	SubmissionID uuid.UUID
	StudentID    uuid.UUID
	ProblemID    uuid.UUID

	Score    float64
	MaxScore float64
	Method   submdomain.ScoringMethod

	Priority submdomain.ReviewPriority
	Reason   string
}

// ListPendingReviews scans every submission of the contest and flags the
// items that still need a human: manual-scored, error-marked, or carrying a
// provisional keyword score. High priority first.
func (s *ReviewSrvc) ListPendingReviews(ctx context.Context, contestID uuid.UUID) ([]PendingReview, error) {
	subms, err := s.subms.ListSubmissions(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	var pending []PendingReview
	for _, subm := range subms {
		for problemID, ps := range subm.ProblemScores {
			needs, priority := ps.NeedsReview()
			if !needs {
				continue
			}
			pending = append(pending, PendingReview{
				SubmissionID: subm.ID,
				StudentID:    subm.StudentID,
				ProblemID:    problemID,
				Score:        ps.Score,
				MaxScore:     ps.MaxScore,
				Method:       ps.Method,
				Priority:     priority,
				Reason:       reviewReason(ps),
			})
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority == submdomain.PriorityHigh
		}
		if pending[i].SubmissionID != pending[j].SubmissionID {
			return pending[i].SubmissionID.String() < pending[j].SubmissionID.String()
		}
		return pending[i].ProblemID.String() < pending[j].ProblemID.String()
	})
	return pending, nil
}

func reviewReason(ps *submdomain.ProblemScore) string {
	switch {
	case ps.HasScoringError():
		return "keyword scoring failed, manual grade required"
	case ps.Method == submdomain.MethodManual:
		return "manual scoring required"
	case ps.Method == submdomain.MethodKeyword:
		return "provisional keyword score pending confirmation"
	default:
		return "not automatically scored"
	}
}

type ReviewItem struct {
	ProblemID uuid.UUID
	NewScore  float64
	Feedback  string
}

type UpdateReviewParams struct {
	ReviewerID   uuid.UUID
	SubmissionID uuid.UUID
	Items        []ReviewItem
}

// UpdateReview applies human score overrides. Each touched problem keeps its
// first automatic score in OriginalScore and gets stamped with reviewer and
// time; the submission total moves by the sum of deltas, untouched problems
// stay byte-identical.
func (s *ReviewSrvc) UpdateReview(ctx context.Context, p UpdateReviewParams) (*submdomain.Submission, error) {
	subm, err := s.getSubmission(ctx, p.SubmissionID)
	if err != nil {
		return nil, err
	}

	// validate everything before mutating anything
	for _, item := range p.Items {
		ps, ok := subm.ProblemScores[item.ProblemID]
		if !ok {
			return nil, NewErrProblemNotInSubmission(item.ProblemID)
		}
		if item.NewScore < 0 || item.NewScore > ps.MaxScore {
			return nil, NewErrScoreOutOfRange(item.ProblemID, ps.MaxScore)
		}
	}

	now := s.clock.Now()
	for _, item := range p.Items {
		ps := subm.ProblemScores[item.ProblemID]
		if ps.OriginalScore == nil {
			orig := ps.Score
			ps.OriginalScore = &orig
		}
		subm.TotalScore += item.NewScore - ps.Score
		ps.Score = item.NewScore
		ps.Feedback = item.Feedback
		reviewer := p.ReviewerID
		reviewedAt := now
		ps.ReviewedBy = &reviewer
		ps.ReviewedAt = &reviewedAt
	}

	if err := s.subms.UpdateSubmission(ctx, subm); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}
	return subm, nil
}

type RescoreParams struct {
	SubmissionID uuid.UUID

	// ProblemIDs selects which problems to rescore; empty means every
	// keyword-scored problem of the submission.
	ProblemIDs []uuid.UUID
}

// RescoreRecord documents one keyword rescoring run for the audit trail.
type RescoreRecord struct {
	ProblemID uuid.UUID
	OldScore  float64
	NewScore  float64
}

// RescoreWithKeywords re-runs the keyword scorer on the stored answer text
// against the problem's current keyword configuration. Rescoring after an
// admin edits keywords is the intended use, so results may legitimately
// differ between runs. A rescored item becomes provisional again: review
// stamps are cleared, feedback is kept.
func (s *ReviewSrvc) RescoreWithKeywords(ctx context.Context, p RescoreParams) (*submdomain.Submission, []RescoreRecord, error) {
	subm, err := s.getSubmission(ctx, p.SubmissionID)
	if err != nil {
		return nil, nil, err
	}
	problems, err := s.problems.ListProblems(ctx, subm.ContestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list contest problems: %w", err)
	}
	problemByID := make(map[uuid.UUID]contestdomain.ContestProblem, len(problems))
	for _, problem := range problems {
		problemByID[problem.ID] = problem
	}

	targets := p.ProblemIDs
	explicit := len(targets) > 0
	if !explicit {
		for _, problem := range problems {
			if problem.ScoringType == contestdomain.ScoringKeyword {
				targets = append(targets, problem.ID)
			}
		}
	}

	var records []RescoreRecord
	for _, problemID := range targets {
		problem, ok := problemByID[problemID]
		ps, havePS := subm.ProblemScores[problemID]
		if !ok || !havePS {
			return nil, nil, NewErrProblemNotInSubmission(problemID)
		}
		if problem.QuestionType != contestdomain.QuestionLongAnswer ||
			problem.ScoringType != contestdomain.ScoringKeyword {
			if explicit {
				return nil, nil, NewErrNotKeywordScored(problemID)
			}
			continue
		}

		record, err := rescoreProblem(subm, ps, problem)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)
	}

	if len(records) > 0 {
		if err := s.subms.UpdateSubmission(ctx, subm); err != nil {
			return nil, nil, fmt.Errorf("failed to update submission: %w", err)
		}
	}
	return subm, records, nil
}

func (s *ReviewSrvc) getSubmission(ctx context.Context, id uuid.UUID) (*submdomain.Submission, error) {
	subm, err := s.subms.GetSubmission(ctx, id)
	if err != nil {
		if errors.Is(err, submdomain.ErrSubmissionNotFound) {
			return nil, NewErrSubmissionNotFound()
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return subm, nil
}

// Analytics is a read-only rollup over stored problem scores; it never
// touches a scoring path.
type Analytics struct {
	Submissions int

	ItemsByMethod map[submdomain.ScoringMethod]int

	PendingItems  int
	ReviewedItems int
	ErrorItems    int

	// MeanKeywordAccuracy averages the matched-keyword fraction over all
	// keyword-scored items.
	MeanKeywordAccuracy float64
}

func (s *ReviewSrvc) Analytics(ctx context.Context, contestID uuid.UUID) (Analytics, error) {
	subms, err := s.subms.ListSubmissions(ctx, contestID)
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to list submissions: %w", err)
	}

	a := Analytics{
		Submissions:   len(subms),
		ItemsByMethod: make(map[submdomain.ScoringMethod]int),
	}
	keywordItems := 0
	accuracySum := 0.0
	for _, subm := range subms {
		for _, ps := range subm.ProblemScores {
			a.ItemsByMethod[ps.Method]++
			if needs, _ := ps.NeedsReview(); needs {
				a.PendingItems++
			}
			if ps.State().Kind == submdomain.StateReviewed {
				a.ReviewedItems++
			}
			if ps.HasScoringError() {
				a.ErrorItems++
			}
			if ps.Method == submdomain.MethodKeyword && ps.Keyword != nil && !ps.HasScoringError() {
				keywordItems++
				accuracySum += ps.Keyword.MatchAccuracy()
			}
		}
	}
	if keywordItems > 0 {
		a.MeanKeywordAccuracy = accuracySum / float64(keywordItems)
	}
	return a, nil
}
