package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contestlab/backend/auth"
	"github.com/contestlab/backend/httpjson"
)

// GetOwnSubm returns the caller's own submission with the per-problem
// breakdown.
func (h *SubmHttpHandler) GetOwnSubm(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	contestID, err := uuid.Parse(chi.URLParam(r, "contest-id"))
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid contest id", http.StatusBadRequest, "invalid_request")
		return
	}

	subm, err := h.submSrvc.GetStudentSubmission(r.Context(), contestID, claims.SubjectUUID())
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapSubm(subm))
}

// GetSubm returns a single submission by id with its full breakdown. Staff
// only; students read their own through the per-contest route.
func (h *SubmHttpHandler) GetSubm(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil || claims.Role == auth.RoleStudent {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	submID, err := uuid.Parse(chi.URLParam(r, "subm-id"))
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid submission id", http.StatusBadRequest, "invalid_request")
		return
	}

	subm, err := h.submSrvc.GetSubmission(r.Context(), submID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapSubm(subm))
}

// GetSubmList returns all submissions of a contest. Staff only.
func (h *SubmHttpHandler) GetSubmList(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil || claims.Role == auth.RoleStudent {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	contestID, err := uuid.Parse(chi.URLParam(r, "contest-id"))
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid contest id", http.StatusBadRequest, "invalid_request")
		return
	}

	subms, err := h.submSrvc.ListContestSubmissions(r.Context(), contestID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	views := make([]SubmView, 0, len(subms))
	for _, subm := range subms {
		views = append(views, mapSubm(subm))
	}
	httpjson.WriteSuccessJson(w, views)
}
