package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/contestlab/backend/contest/srvc"
)

type ContestHttpHandler struct {
	contestSrvc srvc.ContestSrvcClient

	// viewCache and singleflight shield the database during a live window,
	// when every participant polls the same contest.
	viewCache *cache.Cache
	sfGroup   singleflight.Group
}

func NewContestHttpHandler(contestSrvc srvc.ContestSrvcClient) *ContestHttpHandler {
	c := cache.New(1*time.Second, 1*time.Minute)
	return &ContestHttpHandler{
		contestSrvc: contestSrvc,
		viewCache:   c,
	}
}

func (h *ContestHttpHandler) RegisterRoutes(r *chi.Mux) {
	r.Post("/contests", h.PostContest)
	r.Get("/contests/{contest-id}", h.GetContest)
	r.Get("/contests/{contest-id}/problems", h.GetContestProblems)
	r.Get("/courses/{course-id}/contests", h.GetContestList)
	r.Patch("/contests/{contest-id}", h.PatchContest)
	r.Put("/contests/{contest-id}/active", h.PutContestActive)
	r.Delete("/contests/{contest-id}", h.DeleteContest)
}
