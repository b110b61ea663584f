package srvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contestlab/backend/clock"
	"github.com/contestlab/backend/contest/domain"
	"github.com/contestlab/backend/logger"
	"github.com/contestlab/backend/quesbank"
	"github.com/contestlab/backend/scoring"
)

type ContestRepo interface {
	CreateContest(ctx context.Context, contest domain.Contest, problems []domain.ContestProblem) error
	GetContest(ctx context.Context, id uuid.UUID) (domain.Contest, error)
	ListContests(ctx context.Context, courseID uuid.UUID) ([]domain.Contest, error)
	UpdateContest(ctx context.Context, contest domain.Contest) error
	SetContestActive(ctx context.Context, id uuid.UUID, isActive bool) error
	DeleteContest(ctx context.Context, id uuid.UUID) error
	ListProblems(ctx context.Context, contestID uuid.UUID) ([]domain.ContestProblem, error)
	CountSubmissions(ctx context.Context, contestID uuid.UUID) (int, error)
}

type QuestionBank interface {
	GetQuestions(ctx context.Context, ids []uuid.UUID) ([]quesbank.Question, error)
}

type ContestSrvcClient interface {
	CreateContest(ctx context.Context, p CreateContestParams) (domain.Contest, error)
	GetContest(ctx context.Context, id uuid.UUID) (domain.Contest, error)
	GetContestView(ctx context.Context, id uuid.UUID) (ContestView, error)
	ListContests(ctx context.Context, courseID uuid.UUID) ([]ContestView, error)
	ListProblems(ctx context.Context, contestID uuid.UUID) ([]domain.ContestProblem, error)
	GetParticipantProblems(ctx context.Context, contestID uuid.UUID) ([]domain.ContestProblem, error)
	UpdateContest(ctx context.Context, p UpdateContestParams) (domain.Contest, error)
	SetContestActive(ctx context.Context, callerID, contestID uuid.UUID, isActive bool) error
	DeleteContest(ctx context.Context, callerID, contestID uuid.UUID) error
}

type ContestSrvc struct {
	repo  ContestRepo
	bank  QuestionBank
	clock clock.Clock
}

func NewContestSrvc(repo ContestRepo, bank QuestionBank, clk clock.Clock) *ContestSrvc {
	return &ContestSrvc{repo: repo, bank: bank, clock: clk}
}

type CreateContestParams struct {
	CourseID    uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	IsActive    bool
	StartTime   time.Time
	EndTime     time.Time
	QuestionIDs []uuid.UUID

	// MarksOverride replaces a question's default marks, keyed by bank
	// question id.
	MarksOverride map[uuid.UUID]float64
}

// CreateContest validates the window, clones the selected bank questions
// into immutable contest problems and persists everything in one
// transaction. Later edits to the bank never reach a created contest.
func (s *ContestSrvc) CreateContest(ctx context.Context, p CreateContestParams) (domain.Contest, error) {
	log := logger.FromContext(ctx)

	if err := domain.ValidateWindow(p.StartTime, p.EndTime); err != nil {
		return domain.Contest{}, NewErrInvalidWindow(err)
	}
	if len(p.QuestionIDs) == 0 {
		return domain.Contest{}, NewErrEmptyProblemSet()
	}

	questions, err := s.bank.GetQuestions(ctx, p.QuestionIDs)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("failed to fetch bank questions: %w", err)
	}

	contest := domain.Contest{
		ID:        uuid.New(),
		CourseID:  p.CourseID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		IsActive:  p.IsActive,
		StartTime: p.StartTime.UTC(),
		EndTime:   p.EndTime.UTC(),
		CreatedAt: s.clock.Now(),
	}

	problems := make([]domain.ContestProblem, 0, len(questions))
	for i, q := range questions {
		problem, err := cloneQuestion(contest.ID, q, i, p.MarksOverride)
		if err != nil {
			return domain.Contest{}, err
		}
		problems = append(problems, problem)
	}

	if err := s.repo.CreateContest(ctx, contest, problems); err != nil {
		return domain.Contest{}, fmt.Errorf("failed to create contest: %w", err)
	}
	log.Info("contest created",
		"contest_id", contest.ID,
		"course_id", contest.CourseID,
		"problems", len(problems),
	)
	return contest, nil
}

// cloneQuestion snapshots one bank question into a contest problem. Keyword
// configurations are validated here, the authoring boundary, so scoring
// never has to reject one later.
func cloneQuestion(contestID uuid.UUID, q quesbank.Question, orderIndex int, marksOverride map[uuid.UUID]float64) (domain.ContestProblem, error) {
	marks := q.DefaultMarks
	if override, ok := marksOverride[q.ID]; ok {
		marks = override
	}
	if marks <= 0 {
		return domain.ContestProblem{}, NewErrBadQuestion(q.ID, "marks must be positive")
	}

	switch q.QuestionType {
	case domain.QuestionMCQ:
		if q.CorrectJSON == "" {
			return domain.ContestProblem{}, NewErrBadQuestion(q.ID, "missing correct options")
		}
		var correct []string
		if err := json.Unmarshal([]byte(q.CorrectJSON), &correct); err != nil {
			return domain.ContestProblem{}, NewErrBadQuestion(q.ID, "correct options are not a JSON list")
		}
		if len(correct) == 0 {
			return domain.ContestProblem{}, NewErrBadQuestion(q.ID, "correct options are empty")
		}
		for _, opt := range correct {
			if !domain.IsValidOption(opt) {
				return domain.ContestProblem{}, NewErrBadQuestion(q.ID, fmt.Sprintf("invalid correct option %q", opt))
			}
		}
	case domain.QuestionLongAnswer:
		if q.ScoringType == domain.ScoringKeyword {
			if err := scoring.ValidateKeywordConfig(q.KeywordConfig); err != nil {
				return domain.ContestProblem{}, NewErrInvalidKeywordConfig(q.ID, err)
			}
		}
	default:
		return domain.ContestProblem{}, NewErrBadQuestion(q.ID, "unknown question type")
	}

	return domain.ContestProblem{
		ID:            uuid.New(),
		ContestID:     contestID,
		QuestionType:  q.QuestionType,
		Statement:     q.Statement,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectJSON:   q.CorrectJSON,
		MaxWordCount:  q.MaxWordCount,
		SampleAnswer:  q.SampleAnswer,
		ScoringType:   q.ScoringType,
		KeywordConfig: q.KeywordConfig,
		Marks:         marks,
		OrderIndex:    orderIndex,
	}, nil
}

func (s *ContestSrvc) GetContest(ctx context.Context, id uuid.UUID) (domain.Contest, error) {
	contest, err := s.repo.GetContest(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrContestNotFound) {
			return domain.Contest{}, NewErrContestNotFound()
		}
		return domain.Contest{}, fmt.Errorf("failed to get contest: %w", err)
	}
	return contest, nil
}

// ContestView is a contest plus its derived, never-stored time status.
type ContestView struct {
	Contest domain.Contest
	Status  domain.Status

	SecondsUntilStart int64
	SecondsSinceEnd   int64
	ProblemCount      int
	SubmissionCount   int
}

func (s *ContestSrvc) GetContestView(ctx context.Context, id uuid.UUID) (ContestView, error) {
	contest, err := s.GetContest(ctx, id)
	if err != nil {
		return ContestView{}, err
	}
	problems, err := s.repo.ListProblems(ctx, id)
	if err != nil {
		return ContestView{}, fmt.Errorf("failed to list problems: %w", err)
	}
	submCount, err := s.repo.CountSubmissions(ctx, id)
	if err != nil {
		return ContestView{}, fmt.Errorf("failed to count submissions: %w", err)
	}
	return s.view(contest, len(problems), submCount), nil
}

func (s *ContestSrvc) ListContests(ctx context.Context, courseID uuid.UUID) ([]ContestView, error) {
	contests, err := s.repo.ListContests(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}
	views := make([]ContestView, 0, len(contests))
	for _, c := range contests {
		views = append(views, s.view(c, 0, 0))
	}
	return views, nil
}

func (s *ContestSrvc) ListProblems(ctx context.Context, contestID uuid.UUID) ([]domain.ContestProblem, error) {
	problems, err := s.repo.ListProblems(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}
	return problems, nil
}

// GetParticipantProblems returns the problem snapshots for a contest taker.
// Problems become visible only once the contest is accessible, that is,
// active and past its start time.
func (s *ContestSrvc) GetParticipantProblems(ctx context.Context, contestID uuid.UUID) ([]domain.ContestProblem, error) {
	contest, err := s.GetContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if !contest.IsAccessible(s.clock.Now()) {
		return nil, NewErrContestNotAccessible()
	}
	return s.ListProblems(ctx, contestID)
}

func (s *ContestSrvc) view(contest domain.Contest, problemCount, submCount int) ContestView {
	now := s.clock.Now()
	v := ContestView{
		Contest:         contest,
		Status:          contest.StatusAt(now),
		ProblemCount:    problemCount,
		SubmissionCount: submCount,
	}
	switch v.Status {
	case domain.StatusNotStarted:
		v.SecondsUntilStart = contest.SecondsUntilStart(now)
	case domain.StatusEnded:
		v.SecondsSinceEnd = contest.SecondsSinceEnd(now)
	}
	return v
}

type UpdateContestParams struct {
	ContestID uuid.UUID
	CallerID  uuid.UUID
	Name      string
	StartTime time.Time
	EndTime   time.Time
}

// UpdateContest rewrites the mutable contest fields. Allowed only to the
// owner, only before the start and only while no submissions exist.
func (s *ContestSrvc) UpdateContest(ctx context.Context, p UpdateContestParams) (domain.Contest, error) {
	contest, err := s.GetContest(ctx, p.ContestID)
	if err != nil {
		return domain.Contest{}, err
	}
	if contest.OwnerID != p.CallerID {
		return domain.Contest{}, NewErrNotContestOwner()
	}
	if contest.StatusAt(s.clock.Now()) != domain.StatusNotStarted {
		return domain.Contest{}, NewErrContestStarted()
	}
	submCount, err := s.repo.CountSubmissions(ctx, p.ContestID)
	if err != nil {
		return domain.Contest{}, fmt.Errorf("failed to count submissions: %w", err)
	}
	if submCount > 0 {
		return domain.Contest{}, NewErrContestHasSubmissions()
	}
	if err := domain.ValidateWindow(p.StartTime, p.EndTime); err != nil {
		return domain.Contest{}, NewErrInvalidWindow(err)
	}

	contest.Name = p.Name
	contest.StartTime = p.StartTime.UTC()
	contest.EndTime = p.EndTime.UTC()
	if err := s.repo.UpdateContest(ctx, contest); err != nil {
		return domain.Contest{}, fmt.Errorf("failed to update contest: %w", err)
	}
	return contest, nil
}

// SetContestActive flips the visibility switch. Unlike the other mutations
// this is allowed at any time; it is independent of the time status.
func (s *ContestSrvc) SetContestActive(ctx context.Context, callerID, contestID uuid.UUID, isActive bool) error {
	contest, err := s.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.OwnerID != callerID {
		return NewErrNotContestOwner()
	}
	if err := s.repo.SetContestActive(ctx, contestID, isActive); err != nil {
		return fmt.Errorf("failed to toggle contest: %w", err)
	}
	return nil
}

// DeleteContest removes a contest and its problem snapshots. Only possible
// while the contest has not started, which also means no submissions exist.
func (s *ContestSrvc) DeleteContest(ctx context.Context, callerID, contestID uuid.UUID) error {
	contest, err := s.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.OwnerID != callerID {
		return NewErrNotContestOwner()
	}
	if !contest.CanBeDeleted(s.clock.Now()) {
		return NewErrContestStarted()
	}
	if err := s.repo.DeleteContest(ctx, contestID); err != nil {
		return fmt.Errorf("failed to delete contest: %w", err)
	}
	return nil
}
