package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contestlab/backend/auth"
	"github.com/contestlab/backend/contest/domain"
	"github.com/contestlab/backend/contest/srvc"
	"github.com/contestlab/backend/httpjson"
)

func (h *ContestHttpHandler) GetContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := uuid.Parse(chi.URLParam(r, "contest-id"))
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid contest id", http.StatusBadRequest, "invalid_request")
		return
	}

	var view ContestView
	cacheKey := contestID.String()
	if cached, found := h.viewCache.Get(cacheKey); found {
		view = cached.(ContestView)
	} else {
		// one database round-trip per key per cache window, no matter how
		// many participants poll concurrently
		result, err, _ := h.sfGroup.Do(cacheKey, func() (interface{}, error) {
			v, err := h.contestSrvc.GetContestView(r.Context(), contestID)
			if err != nil {
				return nil, err
			}
			mapped := mapContestView(v)
			h.viewCache.SetDefault(cacheKey, mapped)
			return mapped, nil
		})
		if err != nil {
			httpjson.HandleError(slog.Default(), w, err)
			return
		}
		view = result.(ContestView)
	}

	// Deactivated and not-yet-started contests stay hidden from
	// participants; staff see them regardless.
	claims := auth.ClaimsFromContext(r.Context())
	staff := claims != nil && claims.Role != auth.RoleStudent
	if !staff && (!view.IsActive || view.Status == string(domain.StatusNotStarted)) {
		httpjson.HandleError(slog.Default(), w, srvc.NewErrContestNotAccessible())
		return
	}

	httpjson.WriteSuccessJson(w, view)
}

func (h *ContestHttpHandler) GetContestList(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "course-id"))
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid course id", http.StatusBadRequest, "invalid_request")
		return
	}

	views, err := h.contestSrvc.ListContests(r.Context(), courseID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	mapped := make([]ContestView, 0, len(views))
	for _, v := range views {
		mapped = append(mapped, mapContestView(v))
	}
	httpjson.WriteSuccessJson(w, mapped)
}
