package srvc

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/contestlab/backend/srvcerror"
)

const (
	ErrCodeContestNotFound    = "contest_not_found"
	ErrCodeNotEnrolled        = "not_enrolled"
	ErrCodeContestNotStarted  = "contest_not_started"
	ErrCodeContestEnded       = "contest_ended"
	ErrCodeContestInactive    = "contest_inactive"
	ErrCodeAlreadySubmitted   = "already_submitted"
	ErrCodeInvalidTimeTaken   = "invalid_time_taken"
	ErrCodeInvalidAnswer      = "invalid_answer"
	ErrCodeCorruptProblemData = "corrupt_problem_data"
	ErrCodeSubmissionNotFound = "submission_not_found"
)

func NewErrContestNotFound() *srvcerror.Error {
	return srvcerror.NotFound(
		ErrCodeContestNotFound,
		"contest not found",
	)
}

func NewErrNotEnrolled() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeNotEnrolled,
		"you are not enrolled in this contest's course",
	).SetHttpStatusCode(http.StatusForbidden)
}

func NewErrContestNotStarted(secondsUntilStart int64) *srvcerror.Error {
	return srvcerror.State(
		ErrCodeContestNotStarted,
		fmt.Sprintf("contest has not started yet, it starts in %d seconds", secondsUntilStart),
	)
}

func NewErrContestEnded(secondsSinceEnd int64) *srvcerror.Error {
	return srvcerror.State(
		ErrCodeContestEnded,
		fmt.Sprintf("contest ended %d seconds ago", secondsSinceEnd),
	)
}

func NewErrAutoSubmitWindowClosed(secondsSinceEnd int64) *srvcerror.Error {
	return srvcerror.State(
		ErrCodeContestEnded,
		fmt.Sprintf("auto-submit grace period is over, contest ended %d seconds ago", secondsSinceEnd),
	)
}

func NewErrContestInactive() *srvcerror.Error {
	return srvcerror.State(
		ErrCodeContestInactive,
		"contest is not active",
	)
}

// NewErrAlreadySubmitted covers both the pre-insert existence check and the
// unique-index violation on a concurrent duplicate, so a retried request
// always sees the same answer.
func NewErrAlreadySubmitted() *srvcerror.Error {
	return srvcerror.State(
		ErrCodeAlreadySubmitted,
		"you have already submitted for this contest",
	)
}

func NewErrInvalidTimeTaken(maxSeconds int64) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidTimeTaken,
		fmt.Sprintf("time taken must be between 0 and %d seconds", maxSeconds),
	)
}

func NewErrAnswerNotOptionList(problemID uuid.UUID) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidAnswer,
		fmt.Sprintf("answer for problem %s must be a list of options", problemID),
	)
}

func NewErrInvalidOption(problemID uuid.UUID, option string) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidAnswer,
		fmt.Sprintf("answer for problem %s contains invalid option %q", problemID, option),
	)
}

func NewErrAnswerNotText(problemID uuid.UUID) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidAnswer,
		fmt.Sprintf("answer for problem %s must be a text string", problemID),
	)
}

func NewErrCorruptProblemData(problemID uuid.UUID) *srvcerror.Error {
	return srvcerror.DataIntegrity(
		ErrCodeCorruptProblemData,
		fmt.Sprintf("stored answer key for problem %s is corrupt", problemID),
	)
}

func NewErrSubmissionNotFound() *srvcerror.Error {
	return srvcerror.NotFound(
		ErrCodeSubmissionNotFound,
		"submission not found",
	)
}
