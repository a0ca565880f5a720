package handler

import (
	"net/http"

	"ctf_practice_hub/internal/api/middleware"
	"ctf_practice_hub/internal/app/service"
	"ctf_practice_hub/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(us *service.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/me", h.getCurrentUser)
	r.Get("/me/progress", h.listProgress)
	r.Get("/me/stats", h.getStats)
}

func (h *UserHandler) getCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	email := middleware.GetUserEmailFromContext(r.Context())
	common.RespondWithJSON(w, http.StatusOK, h.userService.GetCurrentUser(r.Context(), userID, email))
}

func (h *UserHandler) listProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, h.userService.ListProgress(r.Context(), userID))
}

func (h *UserHandler) getStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, h.userService.GetUserStats(r.Context(), userID))
}
