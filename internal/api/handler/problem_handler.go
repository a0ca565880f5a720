package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ctf_practice_hub/internal/api/middleware"
	"ctf_practice_hub/internal/app/service"
	"ctf_practice_hub/internal/common"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
}

func NewProblemHandler(ps *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: ps}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProblems)          // GET /api/v1/problems?category=web
	r.Get("/{problemID}", h.getProblem) // GET /api/v1/problems/42

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createProblem) // POST /api/v1/problems
	})
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	// Role might be empty when unauthenticated; this route is public.
	viewerRole := middleware.ViewerRole(r.Context())

	category := r.URL.Query().Get("category")
	if category != "" {
		common.RespondWithJSON(w, http.StatusOK, h.problemService.ListProblemsByCategory(r.Context(), category, viewerRole))
		return
	}
	common.RespondWithJSON(w, http.StatusOK, h.problemService.ListProblems(r.Context(), viewerRole))
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "problemID"), 10, 64)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "problem id must be an integer")
		return
	}
	viewerRole := middleware.ViewerRole(r.Context())

	problem, err := h.problemService.GetProblem(r.Context(), id, viewerRole)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	problem, err := h.problemService.CreateProblem(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}
