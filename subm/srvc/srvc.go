package srvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/contestlab/backend/clock"
	contestdomain "github.com/contestlab/backend/contest/domain"
	"github.com/contestlab/backend/subm/domain"
)

type ContestReader interface {
	GetContest(ctx context.Context, id uuid.UUID) (contestdomain.Contest, error)
	// ListProblems returns the contest's problem snapshots ordered by
	// their order index.
	ListProblems(ctx context.Context, contestID uuid.UUID) ([]contestdomain.ContestProblem, error)
}

type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID) (bool, error)
}

type SubmRepo interface {
	// InsertSubmission must be atomic and duplicate-safe: a second row for
	// the same (contest, student) returns domain.ErrDuplicateSubmission.
	InsertSubmission(ctx context.Context, subm *domain.Submission) error
	// FindSubmission returns (nil, nil) when no row exists.
	FindSubmission(ctx context.Context, contestID, studentID uuid.UUID) (*domain.Submission, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	ListSubmissions(ctx context.Context, contestID uuid.UUID) ([]*domain.Submission, error)
	UpdateSubmission(ctx context.Context, subm *domain.Submission) error
}

type SubmSrvcClient interface {
	Submit(ctx context.Context, p SubmitParams) (*domain.Submission, error)
	AutoSubmit(ctx context.Context, p SubmitParams) (*domain.Submission, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	GetStudentSubmission(ctx context.Context, contestID, studentID uuid.UUID) (*domain.Submission, error)
	ListContestSubmissions(ctx context.Context, contestID uuid.UUID) ([]*domain.Submission, error)
}

type SubmSrvc struct {
	contests ContestReader
	enroll   EnrollmentChecker
	repo     SubmRepo
	clock    clock.Clock
}

func NewSubmSrvc(
	contests ContestReader,
	enroll EnrollmentChecker,
	repo SubmRepo,
	clk clock.Clock,
) *SubmSrvc {
	return &SubmSrvc{
		contests: contests,
		enroll:   enroll,
		repo:     repo,
		clock:    clk,
	}
}

func (s *SubmSrvc) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	subm, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionNotFound) {
			return nil, NewErrSubmissionNotFound()
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return subm, nil
}

// GetStudentSubmission returns the student's own submission for a contest.
// While the contest window is still open the answer keys and keyword
// analyses are redacted; the full breakdown becomes visible once the
// contest has ended.
func (s *SubmSrvc) GetStudentSubmission(ctx context.Context, contestID, studentID uuid.UUID) (*domain.Submission, error) {
	contest, err := s.contests.GetContest(ctx, contestID)
	if err != nil {
		if errors.Is(err, contestdomain.ErrContestNotFound) {
			return nil, NewErrContestNotFound()
		}
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	subm, err := s.repo.FindSubmission(ctx, contestID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find submission: %w", err)
	}
	if subm == nil {
		return nil, NewErrSubmissionNotFound()
	}
	if contest.StatusAt(s.clock.Now()) != contestdomain.StatusEnded {
		return subm.RedactAnswerKeys(), nil
	}
	return subm, nil
}

func (s *SubmSrvc) ListContestSubmissions(ctx context.Context, contestID uuid.UUID) ([]*domain.Submission, error) {
	subms, err := s.repo.ListSubmissions(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subms, nil
}
