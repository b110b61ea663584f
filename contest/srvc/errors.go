package srvc

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/contestlab/backend/srvcerror"
)

const (
	ErrCodeContestNotFound      = "contest_not_found"
	ErrCodeInvalidContestWindow = "invalid_contest_window"
	ErrCodeContestStarted       = "contest_already_started"
	ErrCodeContestHasSubmitted  = "contest_has_submissions"
	ErrCodeNotContestOwner      = "not_contest_owner"
	ErrCodeInvalidProblemSet    = "invalid_problem_set"
	ErrCodeInvalidKeywords      = "invalid_keyword_config"
	ErrCodeContestNotOpen       = "contest_not_open"
)

func NewErrContestNotFound() *srvcerror.Error {
	return srvcerror.NotFound(
		ErrCodeContestNotFound,
		"contest not found",
	)
}

func NewErrContestNotAccessible() *srvcerror.Error {
	return srvcerror.State(
		ErrCodeContestNotOpen,
		"contest is not open",
	)
}

func NewErrInvalidWindow(reason error) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidContestWindow,
		reason.Error(),
	)
}

func NewErrContestStarted() *srvcerror.Error {
	return srvcerror.State(
		ErrCodeContestStarted,
		"contest can only be modified before it starts",
	)
}

func NewErrContestHasSubmissions() *srvcerror.Error {
	return srvcerror.State(
		ErrCodeContestHasSubmitted,
		"contest already has submissions and can no longer be modified",
	)
}

func NewErrNotContestOwner() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeNotContestOwner,
		"only the course owner may manage this contest",
	).SetHttpStatusCode(http.StatusForbidden)
}

func NewErrEmptyProblemSet() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidProblemSet,
		"a contest needs at least one question",
	)
}

func NewErrBadQuestion(id uuid.UUID, reason string) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidProblemSet,
		fmt.Sprintf("question %s cannot be used: %s", id, reason),
	)
}

func NewErrInvalidKeywordConfig(questionID uuid.UUID, reason error) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidKeywords,
		fmt.Sprintf("question %s has an unusable keyword configuration: %v", questionID, reason),
	)
}
