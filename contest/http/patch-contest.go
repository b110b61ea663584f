package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contestlab/backend/auth"
	"github.com/contestlab/backend/contest/srvc"
	"github.com/contestlab/backend/httpjson"
)

func (h *ContestHttpHandler) PatchContest(w http.ResponseWriter, r *http.Request) {
	type updateContestRequest struct {
		Name      string `json:"name"`
		StartTime string `json:"start_time"` // RFC 3339
		EndTime   string `json:"end_time"`   // RFC 3339
	}

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

	var request updateContestRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	startTime, err := parseUtcTime(request.StartTime)
	if err != nil {
		httpjson.WriteErrorJson(w, "start_time must be an RFC 3339 timestamp with offset", http.StatusBadRequest, "invalid_request")
		return
	}
	endTime, err := parseUtcTime(request.EndTime)
	if err != nil {
		httpjson.WriteErrorJson(w, "end_time must be an RFC 3339 timestamp with offset", http.StatusBadRequest, "invalid_request")
		return
	}

	contest, err := h.contestSrvc.UpdateContest(r.Context(), srvc.UpdateContestParams{
		ContestID: contestID,
		CallerID:  claims.SubjectUUID(),
		Name:      request.Name,
		StartTime: startTime,
		EndTime:   endTime,
	})
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	h.viewCache.Delete(contestID.String())

	view, err := h.contestSrvc.GetContestView(r.Context(), contest.ID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	httpjson.WriteSuccessJson(w, mapContestView(view))
}

func (h *ContestHttpHandler) PutContestActive(w http.ResponseWriter, r *http.Request) {
	type setActiveRequest struct {
		IsActive bool `json:"is_active"`
	}

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

	var request setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err = h.contestSrvc.SetContestActive(r.Context(), claims.SubjectUUID(), contestID, request.IsActive)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	h.viewCache.Delete(contestID.String())
	httpjson.WriteSuccessJson(w, map[string]bool{"is_active": request.IsActive})
}

func (h *ContestHttpHandler) DeleteContest(w http.ResponseWriter, r *http.Request) {
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

	err = h.contestSrvc.DeleteContest(r.Context(), claims.SubjectUUID(), contestID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	h.viewCache.Delete(contestID.String())
	w.WriteHeader(http.StatusNoContent)
}
