package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/contestlab/backend/auth"
	"github.com/contestlab/backend/contest/srvc"
	"github.com/contestlab/backend/httpjson"
)

func (h *ContestHttpHandler) PostContest(w http.ResponseWriter, r *http.Request) {
	type createContestRequest struct {
		CourseID    string             `json:"course_id"`
		Name        string             `json:"name"`
		IsActive    bool               `json:"is_active"`
		StartTime   string             `json:"start_time"` // RFC 3339
		EndTime     string             `json:"end_time"`   // RFC 3339
		QuestionIDs []string           `json:"question_ids"`
		Marks       map[string]float64 `json:"marks,omitempty"` // question id -> marks
	}

	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var request createContestRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	courseID, err := uuid.Parse(request.CourseID)
	if err != nil {
		httpjson.WriteErrorJson(w, "invalid course id", http.StatusBadRequest, "invalid_request")
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
	questionIDs := make([]uuid.UUID, 0, len(request.QuestionIDs))
	for _, raw := range request.QuestionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpjson.WriteErrorJson(w, "invalid question id", http.StatusBadRequest, "invalid_request")
			return
		}
		questionIDs = append(questionIDs, id)
	}
	marksOverride := make(map[uuid.UUID]float64, len(request.Marks))
	for raw, marks := range request.Marks {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpjson.WriteErrorJson(w, "invalid question id in marks", http.StatusBadRequest, "invalid_request")
			return
		}
		marksOverride[id] = marks
	}

	contest, err := h.contestSrvc.CreateContest(r.Context(), srvc.CreateContestParams{
		CourseID:      courseID,
		OwnerID:       claims.SubjectUUID(),
		Name:          request.Name,
		IsActive:      request.IsActive,
		StartTime:     startTime,
		EndTime:       endTime,
		QuestionIDs:   questionIDs,
		MarksOverride: marksOverride,
	})
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	view, err := h.contestSrvc.GetContestView(r.Context(), contest.ID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(mapContestView(view))
}
