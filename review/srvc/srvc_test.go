package srvc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contestlab/backend/clock"
	contestdomain "github.com/contestlab/backend/contest/domain"
	"github.com/contestlab/backend/scoring"
	"github.com/contestlab/backend/srvcerror"
	submdomain "github.com/contestlab/backend/subm/domain"
)

type memSubmStore struct {
	subms map[uuid.UUID]*submdomain.Submission
}

func newMemSubmStore(subms ...*submdomain.Submission) *memSubmStore {
	store := &memSubmStore{subms: make(map[uuid.UUID]*submdomain.Submission)}
	for _, subm := range subms {
		store.subms[subm.ID] = subm
	}
	return store
}

func (s *memSubmStore) GetSubmission(ctx context.Context, id uuid.UUID) (*submdomain.Submission, error) {
	subm, ok := s.subms[id]
	if !ok {
		return nil, submdomain.ErrSubmissionNotFound
	}
	return subm, nil
}

func (s *memSubmStore) ListSubmissions(ctx context.Context, contestID uuid.UUID) ([]*submdomain.Submission, error) {
	var subms []*submdomain.Submission
	for _, subm := range s.subms {
		if subm.ContestID == contestID {
			subms = append(subms, subm)
		}
	}
	return subms, nil
}

func (s *memSubmStore) UpdateSubmission(ctx context.Context, subm *submdomain.Submission) error {
	if _, ok := s.subms[subm.ID]; !ok {
		return submdomain.ErrSubmissionNotFound
	}
	s.subms[subm.ID] = subm
	return nil
}

type fakeProblemReader struct {
	problems []contestdomain.ContestProblem
}

func (f *fakeProblemReader) ListProblems(ctx context.Context, contestID uuid.UUID) ([]contestdomain.ContestProblem, error) {
	return f.problems, nil
}

func reviewErrCode(t *testing.T, err error) string {
	t.Helper()
	srvcErr := &srvcerror.Error{}
	require.ErrorAs(t, err, &srvcErr)
	return srvcErr.ErrorCode()
}

// gradedSubmission builds a submission with an exact-match MCQ item (5/5),
// a keyword item (3/5 against "osmosis","diffusion") and a manual item (0/10).
func gradedSubmission(contestID uuid.UUID) (*submdomain.Submission, contestdomain.ContestProblem, contestdomain.ContestProblem, contestdomain.ContestProblem) {
	mcq := contestdomain.ContestProblem{
		ID:           uuid.New(),
		ContestID:    contestID,
		QuestionType: contestdomain.QuestionMCQ,
		CorrectJSON:  `["A"]`,
		Marks:        5,
	}
	keyword := contestdomain.ContestProblem{
		ID:            uuid.New(),
		ContestID:     contestID,
		QuestionType:  contestdomain.QuestionLongAnswer,
		ScoringType:   contestdomain.ScoringKeyword,
		KeywordConfig: `["osmosis","diffusion"]`,
		Marks:         5,
	}
	manual := contestdomain.ContestProblem{
		ID:           uuid.New(),
		ContestID:    contestID,
		QuestionType: contestdomain.QuestionLongAnswer,
		ScoringType:  contestdomain.ScoringManual,
		Marks:        10,
	}

	kwScore, kwAnalysis := scoring.ScoreKeywords("osmosis moves water", keyword.KeywordConfig, keyword.Marks)
	subm := &submdomain.Submission{
		ID:               uuid.New(),
		ContestID:        contestID,
		StudentID:        uuid.New(),
		TotalScore:       5 + kwScore,
		MaxPossibleScore: 20,
		ProblemScores: map[uuid.UUID]*submdomain.ProblemScore{
			mcq.ID: {
				Score:         5,
				MaxScore:      5,
				Method:        submdomain.MethodExactMatch,
				StudentAnswer: json.RawMessage(`["A"]`),
			},
			keyword.ID: {
				Score:         kwScore,
				MaxScore:      5,
				Method:        submdomain.MethodKeyword,
				StudentAnswer: json.RawMessage(`"osmosis moves water"`),
				Keyword:       &kwAnalysis,
			},
			manual.ID: {
				Score:         0,
				MaxScore:      10,
				Method:        submdomain.MethodManual,
				StudentAnswer: json.RawMessage(`"an essay"`),
			},
		},
	}
	return subm, mcq, keyword, manual
}

func TestListPendingReviewsPriorities(t *testing.T) {
	contestID := uuid.New()
	subm, _, keyword, manual := gradedSubmission(contestID)
	srvc := NewReviewSrvc(newMemSubmStore(subm), &fakeProblemReader{}, clock.New())

	pending, err := srvc.ListPendingReviews(context.Background(), contestID)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// manual items outrank provisional keyword scores
	assert.Equal(t, manual.ID, pending[0].ProblemID)
	assert.Equal(t, submdomain.PriorityHigh, pending[0].Priority)
	assert.Equal(t, "manual scoring required", pending[0].Reason)

	assert.Equal(t, keyword.ID, pending[1].ProblemID)
	assert.Equal(t, submdomain.PriorityMedium, pending[1].Priority)
}

func TestListPendingReviewsErrorMarkedIsHigh(t *testing.T) {
	contestID := uuid.New()
	subm, _, keyword, _ := gradedSubmission(contestID)
	subm.ProblemScores[keyword.ID].Keyword = &scoring.KeywordAnalysis{Error: "keyword configuration is empty"}
	srvc := NewReviewSrvc(newMemSubmStore(subm), &fakeProblemReader{}, clock.New())

	pending, err := srvc.ListPendingReviews(context.Background(), contestID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, item := range pending {
		assert.Equal(t, submdomain.PriorityHigh, item.Priority)
	}
}

func TestUpdateReviewAppliesDelta(t *testing.T) {
	contestID := uuid.New()
	subm, mcq, keyword, manual := gradedSubmission(contestID)
	store := newMemSubmStore(subm)
	reviewer := uuid.New()
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	srvc := NewReviewSrvc(store, &fakeProblemReader{}, clock.NewFake(now))

	totalBefore := subm.TotalScore
	kwBefore := subm.ProblemScores[keyword.ID].Score
	mcqBefore := *subm.ProblemScores[mcq.ID]

	updated, err := srvc.UpdateReview(context.Background(), UpdateReviewParams{
		ReviewerID:   reviewer,
		SubmissionID: subm.ID,
		Items: []ReviewItem{
			{ProblemID: manual.ID, NewScore: 7, Feedback: "good structure"},
			{ProblemID: keyword.ID, NewScore: 5, Feedback: "covered both mechanisms"},
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, totalBefore+7+(5-kwBefore), updated.TotalScore, 1e-9)

	manualScore := updated.ProblemScores[manual.ID]
	assert.Equal(t, 7.0, manualScore.Score)
	require.NotNil(t, manualScore.OriginalScore)
	assert.Equal(t, 0.0, *manualScore.OriginalScore)
	assert.Equal(t, "good structure", manualScore.Feedback)
	require.NotNil(t, manualScore.ReviewedBy)
	assert.Equal(t, reviewer, *manualScore.ReviewedBy)
	require.NotNil(t, manualScore.ReviewedAt)
	assert.Equal(t, now, *manualScore.ReviewedAt)
	assert.Equal(t, submdomain.StateReviewed, manualScore.State().Kind)

	// the untouched MCQ item is identical
	assert.Equal(t, mcqBefore, *updated.ProblemScores[mcq.ID])

	// reviewed items no longer show up as pending
	pending, err := srvc.ListPendingReviews(context.Background(), contestID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUpdateReviewKeepsFirstOriginalScore(t *testing.T) {
	contestID := uuid.New()
	subm, _, _, manual := gradedSubmission(contestID)
	srvc := NewReviewSrvc(newMemSubmStore(subm), &fakeProblemReader{}, clock.New())

	_, err := srvc.UpdateReview(context.Background(), UpdateReviewParams{
		ReviewerID:   uuid.New(),
		SubmissionID: subm.ID,
		Items:        []ReviewItem{{ProblemID: manual.ID, NewScore: 4}},
	})
	require.NoError(t, err)

	updated, err := srvc.UpdateReview(context.Background(), UpdateReviewParams{
		ReviewerID:   uuid.New(),
		SubmissionID: subm.ID,
		Items:        []ReviewItem{{ProblemID: manual.ID, NewScore: 9}},
	})
	require.NoError(t, err)

	ps := updated.ProblemScores[manual.ID]
	assert.Equal(t, 9.0, ps.Score)
	require.NotNil(t, ps.OriginalScore)
	// still the automatic score, not the first override
	assert.Equal(t, 0.0, *ps.OriginalScore)
}

func TestUpdateReviewValidatesBeforeMutating(t *testing.T) {
	contestID := uuid.New()
	subm, _, _, manual := gradedSubmission(contestID)
	srvc := NewReviewSrvc(newMemSubmStore(subm), &fakeProblemReader{}, clock.New())
	totalBefore := subm.TotalScore

	_, err := srvc.UpdateReview(context.Background(), UpdateReviewParams{
		ReviewerID:   uuid.New(),
		SubmissionID: subm.ID,
		Items: []ReviewItem{
			{ProblemID: manual.ID, NewScore: 7},
			{ProblemID: manual.ID, NewScore: 11}, // above MaxScore 10
		},
	})
	assert.Equal(t, ErrCodeScoreOutOfRange, reviewErrCode(t, err))

	// the valid first item must not have been applied
	assert.Equal(t, totalBefore, subm.TotalScore)
	assert.Nil(t, subm.ProblemScores[manual.ID].ReviewedBy)

	_, err = srvc.UpdateReview(context.Background(), UpdateReviewParams{
		ReviewerID:   uuid.New(),
		SubmissionID: subm.ID,
		Items:        []ReviewItem{{ProblemID: uuid.New(), NewScore: 1}},
	})
	assert.Equal(t, ErrCodeProblemNotFound, reviewErrCode(t, err))

	_, err = srvc.UpdateReview(context.Background(), UpdateReviewParams{
		ReviewerID:   uuid.New(),
		SubmissionID: uuid.New(),
		Items:        []ReviewItem{{ProblemID: manual.ID, NewScore: 1}},
	})
	assert.Equal(t, ErrCodeSubmissionNotFound, reviewErrCode(t, err))
}

func TestRescoreWithUpdatedKeywords(t *testing.T) {
	contestID := uuid.New()
	subm, _, keyword, _ := gradedSubmission(contestID)
	oldScore := subm.ProblemScores[keyword.ID].Score
	totalBefore := subm.TotalScore

	// a reviewer confirmed the old score before the config edit
	reviewer := uuid.New()
	reviewedAt := time.Now().UTC()
	subm.ProblemScores[keyword.ID].ReviewedBy = &reviewer
	subm.ProblemScores[keyword.ID].ReviewedAt = &reviewedAt
	subm.ProblemScores[keyword.ID].Feedback = "looks right"

	// admin narrows the config to the one keyword the answer contains
	keyword.KeywordConfig = `["osmosis"]`
	srvc := NewReviewSrvc(newMemSubmStore(subm), &fakeProblemReader{
		problems: []contestdomain.ContestProblem{keyword},
	}, clock.New())

	updated, records, err := srvc.RescoreWithKeywords(context.Background(), RescoreParams{
		SubmissionID: subm.ID,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, keyword.ID, records[0].ProblemID)
	assert.Equal(t, oldScore, records[0].OldScore)
	// 1/1 essential on 5 marks at the 0.8 essential weight
	assert.Equal(t, 4.0, records[0].NewScore)

	ps := updated.ProblemScores[keyword.ID]
	assert.Equal(t, 4.0, ps.Score)
	assert.InDelta(t, totalBefore+(4.0-oldScore), updated.TotalScore, 1e-9)

	// provisional again: review stamps gone, feedback kept
	assert.Nil(t, ps.ReviewedBy)
	assert.Nil(t, ps.ReviewedAt)
	assert.Equal(t, "looks right", ps.Feedback)
	require.NotNil(t, ps.Keyword)
	assert.Equal(t, 1, ps.Keyword.TotalEssential)
}

func TestRescoreRejectsNonKeywordSelection(t *testing.T) {
	contestID := uuid.New()
	subm, mcq, keyword, manual := gradedSubmission(contestID)
	srvc := NewReviewSrvc(newMemSubmStore(subm), &fakeProblemReader{
		problems: []contestdomain.ContestProblem{mcq, keyword, manual},
	}, clock.New())

	_, _, err := srvc.RescoreWithKeywords(context.Background(), RescoreParams{
		SubmissionID: subm.ID,
		ProblemIDs:   []uuid.UUID{mcq.ID},
	})
	assert.Equal(t, ErrCodeNotKeywordScored, reviewErrCode(t, err))

	// the implicit all-keyword selection skips them silently
	_, records, err := srvc.RescoreWithKeywords(context.Background(), RescoreParams{
		SubmissionID: subm.ID,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, keyword.ID, records[0].ProblemID)
}

func TestRescoreCorruptStoredAnswer(t *testing.T) {
	contestID := uuid.New()
	subm, _, keyword, _ := gradedSubmission(contestID)
	subm.ProblemScores[keyword.ID].StudentAnswer = json.RawMessage(`{broken`)
	srvc := NewReviewSrvc(newMemSubmStore(subm), &fakeProblemReader{
		problems: []contestdomain.ContestProblem{keyword},
	}, clock.New())

	_, _, err := srvc.RescoreWithKeywords(context.Background(), RescoreParams{
		SubmissionID: subm.ID,
		ProblemIDs:   []uuid.UUID{keyword.ID},
	})
	assert.Equal(t, ErrCodeCorruptAnswer, reviewErrCode(t, err))
}

func TestAnalytics(t *testing.T) {
	contestID := uuid.New()
	subm1, _, _, manual1 := gradedSubmission(contestID)
	subm2, _, keyword2, _ := gradedSubmission(contestID)
	subm2.StudentID = uuid.New()
	subm2.ProblemScores[keyword2.ID].Keyword = &scoring.KeywordAnalysis{Error: "keyword configuration is empty"}

	// one reviewed item in subm1
	reviewer := uuid.New()
	reviewedAt := time.Now().UTC()
	subm1.ProblemScores[manual1.ID].ReviewedBy = &reviewer
	subm1.ProblemScores[manual1.ID].ReviewedAt = &reviewedAt

	srvc := NewReviewSrvc(newMemSubmStore(subm1, subm2), &fakeProblemReader{}, clock.New())
	a, err := srvc.Analytics(context.Background(), contestID)
	require.NoError(t, err)

	assert.Equal(t, 2, a.Submissions)
	assert.Equal(t, 2, a.ItemsByMethod[submdomain.MethodExactMatch])
	assert.Equal(t, 2, a.ItemsByMethod[submdomain.MethodKeyword])
	assert.Equal(t, 2, a.ItemsByMethod[submdomain.MethodManual])

	// pending: subm1 keyword (provisional), subm2 keyword (error) + manual
	assert.Equal(t, 3, a.PendingItems)
	assert.Equal(t, 1, a.ReviewedItems)
	assert.Equal(t, 1, a.ErrorItems)

	// only subm1's clean keyword item contributes; 1 of 2 keywords matched
	assert.InDelta(t, 0.5, a.MeanKeywordAccuracy, 1e-9)
}
