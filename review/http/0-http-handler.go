package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contestlab/backend/auth"
	"github.com/contestlab/backend/review/srvc"
)

type ReviewHttpHandler struct {
	reviewSrvc srvc.ReviewSrvcClient
}

func NewReviewHttpHandler(reviewSrvc srvc.ReviewSrvcClient) *ReviewHttpHandler {
	return &ReviewHttpHandler{reviewSrvc: reviewSrvc}
}

func (h *ReviewHttpHandler) RegisterRoutes(r *chi.Mux) {
	r.Get("/contests/{contest-id}/reviews/pending", h.GetPendingReviews)
	r.Get("/contests/{contest-id}/reviews/analytics", h.GetReviewAnalytics)
	r.Post("/submissions/{subm-id}/reviews", h.PostReview)
	r.Post("/submissions/{subm-id}/rescore", h.PostRescore)
}

// staffClaims rejects anonymous and student callers; the review ledger is a
// grading surface.
func staffClaims(w http.ResponseWriter, r *http.Request) *auth.JwtClaims {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil || claims.Role == auth.RoleStudent {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return nil
	}
	return claims
}
