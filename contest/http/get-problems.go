package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contestlab/backend/auth"
	"github.com/contestlab/backend/contest/domain"
	"github.com/contestlab/backend/httpjson"
)

// GetContestProblems returns a contest's problem snapshots. Staff see the
// full snapshots at any time; participants get them only while the contest
// is accessible, with answer keys stripped.
func (h *ContestHttpHandler) GetContestProblems(w http.ResponseWriter, r *http.Request) {
	contestID, err := uuid.Parse(chi.URLParam(r, "contest-id"))
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid contest id", http.StatusBadRequest, "invalid_request")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	staff := claims != nil && claims.Role != auth.RoleStudent

	var problems []domain.ContestProblem
	if staff {
		problems, err = h.contestSrvc.ListProblems(r.Context(), contestID)
	} else {
		problems, err = h.contestSrvc.GetParticipantProblems(r.Context(), contestID)
	}
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	views := make([]ProblemView, 0, len(problems))
	for _, p := range problems {
		views = append(views, mapProblem(p, staff))
	}
	httpjson.WriteSuccessJson(w, views)
}
