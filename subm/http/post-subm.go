package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contestlab/backend/auth"
	"github.com/contestlab/backend/httpjson"
	"github.com/contestlab/backend/subm/srvc"
)

type submitRequest struct {
	// Answers keyed by problem id: JSON array of options for MCQ problems,
	// JSON string for long answers.
	Answers          map[string]json.RawMessage `json:"answers"`
	TimeTakenSeconds *int64                     `json:"time_taken_seconds,omitempty"`
}

func (h *SubmHttpHandler) PostSubm(w http.ResponseWriter, r *http.Request) {
	h.handleSubmit(w, r, false)
}

// PostAutoSubm is hit by the client-side timer on window expiry. It shares
// the submit flow but with the lenient auto-submit semantics.
func (h *SubmHttpHandler) PostAutoSubm(w http.ResponseWriter, r *http.Request) {
	h.handleSubmit(w, r, true)
}

func (h *SubmHttpHandler) handleSubmit(w http.ResponseWriter, r *http.Request, auto bool) {
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

	var request submitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	answers := make(map[uuid.UUID]json.RawMessage, len(request.Answers))
	for raw, answer := range request.Answers {
		problemID, err := uuid.Parse(raw)
		if err != nil {
			if auto {
				continue // unknown keys from a dying client are dropped
			}
			httpjson.WriteErrorJson(w, "invalid problem id in answers", http.StatusBadRequest, "invalid_request")
			return
		}
		answers[problemID] = answer
	}

	slog.Default().Info("submit request",
		"contest_id", contestID,
		"student_id", claims.SubjectUUID(),
		"auto", auto,
	)

	params := srvc.SubmitParams{
		ContestID:        contestID,
		StudentID:        claims.SubjectUUID(),
		Answers:          answers,
		TimeTakenSeconds: request.TimeTakenSeconds,
	}

	submit := h.submSrvc.Submit
	if auto {
		submit = h.submSrvc.AutoSubmit
	}
	created, err := submit(r.Context(), params)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(mapSubm(created))
}
