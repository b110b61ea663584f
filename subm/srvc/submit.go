package srvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	contestdomain "github.com/contestlab/backend/contest/domain"
	"github.com/contestlab/backend/logger"
	"github.com/contestlab/backend/scoring"
	"github.com/contestlab/backend/subm/domain"
)

// AutoSubmitGrace is the window after contest end during which a
// timer-driven auto-submission is still accepted. Pure time-window math
// evaluated at request time, no scheduled job involved.
const AutoSubmitGrace = 2 * time.Minute

// timeTakenBuffer absorbs network latency between the client timer and the
// server clock when validating the reported solving time.
const timeTakenBuffer = 60 * time.Second

type SubmitParams struct {
	ContestID uuid.UUID
	StudentID uuid.UUID

	// Answers keyed by problem id: JSON array of options for MCQ, JSON
	// string for long answers.
	Answers map[uuid.UUID]json.RawMessage

	// TimeTakenSeconds is optional; when absent it is derived from the
	// contest window.
	TimeTakenSeconds *int64
}

// Submit runs the regular submission protocol: window gate, duplicate
// check, per-problem scoring, persist. Any validation failure aborts with
// no partial writes.
func (s *SubmSrvc) Submit(ctx context.Context, p SubmitParams) (*domain.Submission, error) {
	return s.submit(ctx, p, false)
}

// AutoSubmit is the timer-expiry variant: rejected only before the contest
// starts, accepted up to AutoSubmitGrace past the end, and malformed answers
// are dropped instead of rejected. There is no user present to fix input
// when the client timer fires.
func (s *SubmSrvc) AutoSubmit(ctx context.Context, p SubmitParams) (*domain.Submission, error) {
	return s.submit(ctx, p, true)
}

func (s *SubmSrvc) submit(ctx context.Context, p SubmitParams, auto bool) (*domain.Submission, error) {
	log := logger.FromContext(ctx)

	contest, err := s.contests.GetContest(ctx, p.ContestID)
	if err != nil {
		if errors.Is(err, contestdomain.ErrContestNotFound) {
			return nil, NewErrContestNotFound()
		}
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}

	enrolled, err := s.enroll.IsEnrolled(ctx, p.StudentID, contest.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, NewErrNotEnrolled()
	}

	if !contest.IsActive {
		return nil, NewErrContestInactive()
	}

	now := s.clock.Now()
	switch status := contest.StatusAt(now); status {
	case contestdomain.StatusNotStarted:
		return nil, NewErrContestNotStarted(contest.SecondsUntilStart(now))
	case contestdomain.StatusEnded:
		if !auto {
			return nil, NewErrContestEnded(contest.SecondsSinceEnd(now))
		}
		if now.After(contest.EndTime.UTC().Add(AutoSubmitGrace)) {
			return nil, NewErrAutoSubmitWindowClosed(contest.SecondsSinceEnd(now))
		}
	}

	// Status said go, but re-check the raw window before writing anything.
	// Guards against a clock step between the two reads of the clock.
	now = s.clock.Now()
	deadline := contest.EndTime.UTC()
	if auto {
		deadline = deadline.Add(AutoSubmitGrace)
	}
	if now.Before(contest.StartTime.UTC()) || now.After(deadline) {
		if now.Before(contest.StartTime.UTC()) {
			return nil, NewErrContestNotStarted(contest.SecondsUntilStart(now))
		}
		return nil, NewErrContestEnded(contest.SecondsSinceEnd(now))
	}

	existing, err := s.repo.FindSubmission(ctx, p.ContestID, p.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing submission: %w", err)
	}
	if existing != nil {
		return nil, NewErrAlreadySubmitted()
	}

	timeTaken, err := s.resolveTimeTaken(p.TimeTakenSeconds, contest, now, auto)
	if err != nil {
		return nil, err
	}

	problems, err := s.contests.ListProblems(ctx, p.ContestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest problems: %w", err)
	}

	problemScores := make(map[uuid.UUID]*domain.ProblemScore, len(problems))
	totalScore := 0.0
	maxPossible := 0.0
	for _, problem := range problems {
		ps, err := scoreProblem(problem, p.Answers[problem.ID], auto)
		if err != nil {
			return nil, err
		}
		problemScores[problem.ID] = ps
		totalScore += ps.Score
		maxPossible += ps.MaxScore
	}

	subm := &domain.Submission{
		ID:               uuid.New(),
		ContestID:        p.ContestID,
		StudentID:        p.StudentID,
		Answers:          p.Answers,
		TotalScore:       totalScore,
		MaxPossibleScore: maxPossible,
		ProblemScores:    problemScores,
		SubmittedAt:      now,
		TimeTakenSeconds: timeTaken,
		IsAutoSubmitted:  auto,
	}

	// The existence check above is not atomic with the insert; a concurrent
	// duplicate lands on the unique (contest_id, student_id) index instead.
	if err := s.repo.InsertSubmission(ctx, subm); err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			return nil, NewErrAlreadySubmitted()
		}
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}

	log.Info("submission accepted",
		"subm_id", subm.ID,
		"contest_id", subm.ContestID,
		"student_id", subm.StudentID,
		"total_score", subm.TotalScore,
		"max_score", subm.MaxPossibleScore,
		"auto", auto,
	)
	return subm, nil
}

func (s *SubmSrvc) resolveTimeTaken(reported *int64, contest contestdomain.Contest, now time.Time, auto bool) (int64, error) {
	maxSeconds := int64((contest.Duration() + timeTakenBuffer).Seconds())
	if reported != nil {
		t := *reported
		if t >= 0 && t <= maxSeconds {
			return t, nil
		}
		if !auto {
			return 0, NewErrInvalidTimeTaken(maxSeconds)
		}
		// fall through: an out-of-range value from the timeout handler is
		// recomputed, not rejected
	}
	elapsed := now
	if end := contest.EndTime.UTC(); elapsed.After(end) {
		elapsed = end
	}
	t := int64(elapsed.Sub(contest.StartTime.UTC()).Seconds())
	if t < 0 {
		t = 0
	}
	return t, nil
}

func scoreProblem(problem contestdomain.ContestProblem, rawAnswer json.RawMessage, auto bool) (*domain.ProblemScore, error) {
	switch problem.QuestionType {
	case contestdomain.QuestionMCQ:
		return scoreMCQProblem(problem, rawAnswer, auto)
	case contestdomain.QuestionLongAnswer:
		return scoreLongAnswerProblem(problem, rawAnswer, auto)
	default:
		return nil, NewErrCorruptProblemData(problem.ID).
			SetDebug(fmt.Errorf("unknown question type %q", problem.QuestionType))
	}
}

func scoreMCQProblem(problem contestdomain.ContestProblem, rawAnswer json.RawMessage, auto bool) (*domain.ProblemScore, error) {
	selected, err := decodeOptionList(problem.ID, rawAnswer, auto)
	if err != nil {
		return nil, err
	}
	selected, err = checkOptions(problem.ID, selected, auto)
	if err != nil {
		return nil, err
	}

	correct, err := problem.CorrectOptionSet()
	if err != nil {
		// Corrupt stored key fails the whole submission; guessing at a
		// score would silently mis-grade.
		return nil, NewErrCorruptProblemData(problem.ID).SetDebug(err)
	}
	if len(correct) == 0 {
		// An empty key would grade an empty selection as a full-marks
		// match. Authoring rejects such questions, so a row like this
		// is corrupt data.
		return nil, NewErrCorruptProblemData(problem.ID).
			SetDebug(errors.New("empty correct option set"))
	}

	score, _ := scoring.ScoreMCQ(selected, correct, problem.Marks)
	studentAnswer, _ := json.Marshal(selected)
	return &domain.ProblemScore{
		Score:         score,
		MaxScore:      problem.Marks,
		Method:        domain.MethodExactMatch,
		StudentAnswer: studentAnswer,
		CorrectAnswer: json.RawMessage(problem.CorrectJSON),
	}, nil
}

func scoreLongAnswerProblem(problem contestdomain.ContestProblem, rawAnswer json.RawMessage, auto bool) (*domain.ProblemScore, error) {
	text, err := decodeAnswerText(problem.ID, rawAnswer, auto)
	if err != nil {
		return nil, err
	}
	studentAnswer, _ := json.Marshal(text)

	ps := &domain.ProblemScore{
		MaxScore:      problem.Marks,
		StudentAnswer: studentAnswer,
	}
	if problem.SampleAnswer != nil {
		ps.CorrectAnswer, _ = json.Marshal(*problem.SampleAnswer)
	}

	if problem.ScoringType == contestdomain.ScoringKeyword {
		score, analysis := scoring.ScoreKeywords(text, problem.KeywordConfig, problem.Marks)
		ps.Score = score
		ps.Method = domain.MethodKeyword
		ps.Keyword = &analysis
		return ps, nil
	}

	// manual scoring: zero until a reviewer lands a score
	ps.Method = domain.MethodManual
	return ps, nil
}

// decodeOptionList parses an MCQ answer. A missing answer is an empty
// selection. A value that is not a JSON array hard-rejects a regular submit
// and drops to empty on auto-submit.
func decodeOptionList(problemID uuid.UUID, raw json.RawMessage, auto bool) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var selected []string
	if err := json.Unmarshal(raw, &selected); err != nil {
		if auto {
			return nil, nil
		}
		return nil, NewErrAnswerNotOptionList(problemID).SetDebug(err)
	}
	return selected, nil
}

// checkOptions enforces the closed A-D option set: reject on regular
// submit, silently filter on auto-submit.
func checkOptions(problemID uuid.UUID, selected []string, auto bool) ([]string, error) {
	valid := selected[:0:0]
	for _, opt := range selected {
		if contestdomain.IsValidOption(opt) {
			valid = append(valid, opt)
			continue
		}
		if !auto {
			return nil, NewErrInvalidOption(problemID, opt)
		}
	}
	return valid, nil
}

func decodeAnswerText(problemID uuid.UUID, raw json.RawMessage, auto bool) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		if auto {
			return "", nil
		}
		return "", NewErrAnswerNotText(problemID).SetDebug(err)
	}
	return text, nil
}
