package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/contestlab/backend/subm/srvc"
)

type SubmHttpHandler struct {
	submSrvc srvc.SubmSrvcClient
}

func NewSubmHttpHandler(submSrvc srvc.SubmSrvcClient) *SubmHttpHandler {
	return &SubmHttpHandler{submSrvc: submSrvc}
}

func (h *SubmHttpHandler) RegisterRoutes(r *chi.Mux) {
	r.Post("/contests/{contest-id}/submissions", h.PostSubm)
	r.Post("/contests/{contest-id}/submissions/auto", h.PostAutoSubm)
	r.Get("/contests/{contest-id}/submissions/mine", h.GetOwnSubm)
	r.Get("/contests/{contest-id}/submissions", h.GetSubmList)
	r.Get("/submissions/{subm-id}", h.GetSubm)
}
