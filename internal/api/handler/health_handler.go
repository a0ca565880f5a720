package handler

import (
	"net/http"

	"ctf_practice_hub/internal/common"
	"ctf_practice_hub/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

// HealthHandler is the one place backend failures are reported with detail
// instead of being degraded, for operator debugging.
type HealthHandler struct {
	problemRepo  repository.ProblemRepository
	categoryRepo repository.CategoryRepository
}

func NewHealthHandler(problemRepo repository.ProblemRepository, categoryRepo repository.CategoryRepository) *HealthHandler {
	return &HealthHandler{problemRepo: problemRepo, categoryRepo: categoryRepo}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.liveness)
	r.Get("/db", h.dbProbe)
}

func (h *HealthHandler) liveness(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

type dbProbeResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Categories int    `json:"categories"`
	Problems   int    `json:"problems"`
}

func (h *HealthHandler) dbProbe(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.ListCategories(r.Context())
	if err != nil {
		common.RespondWithJSON(w, http.StatusInternalServerError,
			common.ErrorResponse{Error: "Failed to fetch categories", Details: err.Error()})
		return
	}

	problems, err := h.problemRepo.ListProblems(r.Context())
	if err != nil {
		common.RespondWithJSON(w, http.StatusInternalServerError,
			common.ErrorResponse{Error: "Failed to fetch problems", Details: err.Error()})
		return
	}

	common.RespondWithJSON(w, http.StatusOK, dbProbeResponse{
		Success:    true,
		Message:    "Database connection successful",
		Categories: len(categories),
		Problems:   len(problems),
	})
}
