package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contestlab/backend/httpjson"
	"github.com/contestlab/backend/review/srvc"
)

type pendingReviewView struct {
	SubmissionID string  `json:"submission_id"`
	StudentID    string  `json:"student_id"`
	ProblemID    string  `json:"problem_id"`
	Score        float64 `json:"score"`
	MaxScore     float64 `json:"max_score"`
	Method       string  `json:"method"`
	Priority     string  `json:"priority"`
	Reason       string  `json:"reason"`
}

func (h *ReviewHttpHandler) GetPendingReviews(w http.ResponseWriter, r *http.Request) {
	if staffClaims(w, r) == nil {
		return
	}

	contestID, err := uuid.Parse(chi.URLParam(r, "contest-id"))
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid contest id", http.StatusBadRequest, "invalid_request")
		return
	}

	pending, err := h.reviewSrvc.ListPendingReviews(r.Context(), contestID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	views := make([]pendingReviewView, 0, len(pending))
	for _, p := range pending {
		views = append(views, pendingReviewView{
			SubmissionID: p.SubmissionID.String(),
			StudentID:    p.StudentID.String(),
			ProblemID:    p.ProblemID.String(),
			Score:        p.Score,
			MaxScore:     p.MaxScore,
			Method:       string(p.Method),
			Priority:     string(p.Priority),
			Reason:       p.Reason,
		})
	}
	httpjson.WriteSuccessJson(w, views)
}

func (h *ReviewHttpHandler) PostReview(w http.ResponseWriter, r *http.Request) {
	type reviewItemRequest struct {
		ProblemID string  `json:"problem_id"`
		NewScore  float64 `json:"new_score"`
		Feedback  string  `json:"feedback,omitempty"`
	}
	type postReviewRequest struct {
		Items []reviewItemRequest `json:"items"`
	}

	claims := staffClaims(w, r)
	if claims == nil {
		return
	}

	submID, err := uuid.Parse(chi.URLParam(r, "subm-id"))
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid submission id", http.StatusBadRequest, "invalid_request")
		return
	}

	var request postReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	items := make([]srvc.ReviewItem, 0, len(request.Items))
	for _, item := range request.Items {
		problemID, err := uuid.Parse(item.ProblemID)
		if err != nil {
			httpjson.WriteErrorJson(w, "invalid problem id", http.StatusBadRequest, "invalid_request")
			return
		}
		items = append(items, srvc.ReviewItem{
			ProblemID: problemID,
			NewScore:  item.NewScore,
			Feedback:  item.Feedback,
		})
	}

	subm, err := h.reviewSrvc.UpdateReview(r.Context(), srvc.UpdateReviewParams{
		ReviewerID:   claims.SubjectUUID(),
		SubmissionID: submID,
		Items:        items,
	})
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, map[string]any{
		"submission_id": subm.ID.String(),
		"total_score":   subm.TotalScore,
	})
}

func (h *ReviewHttpHandler) PostRescore(w http.ResponseWriter, r *http.Request) {
	type rescoreRequest struct {
		ProblemIDs []string `json:"problem_ids,omitempty"`
	}

	if staffClaims(w, r) == nil {
		return
	}

	submID, err := uuid.Parse(chi.URLParam(r, "subm-id"))
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid submission id", http.StatusBadRequest, "invalid_request")
		return
	}

	var request rescoreRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	problemIDs := make([]uuid.UUID, 0, len(request.ProblemIDs))
	for _, raw := range request.ProblemIDs {
		problemID, err := uuid.Parse(raw)
		if err != nil {
			httpjson.WriteErrorJson(w, "invalid problem id", http.StatusBadRequest, "invalid_request")
			return
		}
		problemIDs = append(problemIDs, problemID)
	}

	subm, records, err := h.reviewSrvc.RescoreWithKeywords(r.Context(), srvc.RescoreParams{
		SubmissionID: submID,
		ProblemIDs:   problemIDs,
	})
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	type rescoreRecordView struct {
		ProblemID string  `json:"problem_id"`
		OldScore  float64 `json:"old_score"`
		NewScore  float64 `json:"new_score"`
	}
	views := make([]rescoreRecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, rescoreRecordView{
			ProblemID: rec.ProblemID.String(),
			OldScore:  rec.OldScore,
			NewScore:  rec.NewScore,
		})
	}
	httpjson.WriteSuccessJson(w, map[string]any{
		"submission_id": subm.ID.String(),
		"total_score":   subm.TotalScore,
		"rescored":      views,
	})
}

func (h *ReviewHttpHandler) GetReviewAnalytics(w http.ResponseWriter, r *http.Request) {
	if staffClaims(w, r) == nil {
		return
	}

	contestID, err := uuid.Parse(chi.URLParam(r, "contest-id"))
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid contest id", http.StatusBadRequest, "invalid_request")
		return
	}

	analytics, err := h.reviewSrvc.Analytics(r.Context(), contestID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	byMethod := make(map[string]int, len(analytics.ItemsByMethod))
	for method, count := range analytics.ItemsByMethod {
		byMethod[string(method)] = count
	}
	httpjson.WriteSuccessJson(w, map[string]any{
		"submissions":           analytics.Submissions,
		"items_by_method":       byMethod,
		"pending_items":         analytics.PendingItems,
		"reviewed_items":        analytics.ReviewedItems,
		"error_items":           analytics.ErrorItems,
		"mean_keyword_accuracy": analytics.MeanKeywordAccuracy,
	})
}
