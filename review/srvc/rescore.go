package srvc

import (
	"encoding/json"

	contestdomain "github.com/contestlab/backend/contest/domain"
	"github.com/contestlab/backend/scoring"
	submdomain "github.com/contestlab/backend/subm/domain"
)

func rescoreProblem(subm *submdomain.Submission, ps *submdomain.ProblemScore, problem contestdomain.ContestProblem) (RescoreRecord, error) {
	var text string
	if len(ps.StudentAnswer) > 0 {
		if err := json.Unmarshal(ps.StudentAnswer, &text); err != nil {
			return RescoreRecord{}, NewErrCorruptStoredAnswer(problem.ID).SetDebug(err)
		}
	}

	oldScore := ps.Score
	newScore, analysis := scoring.ScoreKeywords(text, problem.KeywordConfig, problem.Marks)

	subm.TotalScore += newScore - oldScore
	ps.Score = newScore
	ps.MaxScore = problem.Marks
	ps.Method = submdomain.MethodKeyword
	ps.Keyword = &analysis
	// provisional again, pending a fresh confirmation
	ps.ReviewedBy = nil
	ps.ReviewedAt = nil

	return RescoreRecord{ProblemID: problem.ID, OldScore: oldScore, NewScore: newScore}, nil
}
