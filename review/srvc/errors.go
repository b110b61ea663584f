package srvc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/contestlab/backend/srvcerror"
)

const (
	ErrCodeSubmissionNotFound = "submission_not_found"
	ErrCodeProblemNotFound    = "problem_not_in_submission"
	ErrCodeScoreOutOfRange    = "score_out_of_range"
	ErrCodeNotKeywordScored   = "not_keyword_scored"
	ErrCodeCorruptAnswer      = "corrupt_stored_answer"
)

func NewErrSubmissionNotFound() *srvcerror.Error {
	return srvcerror.NotFound(
		ErrCodeSubmissionNotFound,
		"submission not found",
	)
}

func NewErrProblemNotInSubmission(problemID uuid.UUID) *srvcerror.Error {
	return srvcerror.NotFound(
		ErrCodeProblemNotFound,
		fmt.Sprintf("problem %s is not part of this submission", problemID),
	)
}

func NewErrScoreOutOfRange(problemID uuid.UUID, maxScore float64) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeScoreOutOfRange,
		fmt.Sprintf("score for problem %s must be between 0 and %g", problemID, maxScore),
	)
}

func NewErrCorruptStoredAnswer(problemID uuid.UUID) *srvcerror.Error {
	return srvcerror.DataIntegrity(
		ErrCodeCorruptAnswer,
		fmt.Sprintf("stored answer for problem %s is corrupt", problemID),
	)
}

func NewErrNotKeywordScored(problemID uuid.UUID) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeNotKeywordScored,
		fmt.Sprintf("problem %s is not keyword-scored and cannot be rescored", problemID),
	)
}
