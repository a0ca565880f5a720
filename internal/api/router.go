package api

import (
	"net/http"
	"time"

	"ctf_practice_hub/internal/api/handler"
	"ctf_practice_hub/internal/app/service"
	"ctf_practice_hub/internal/common/security"
	"ctf_practice_hub/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	problemService *service.ProblemService,
	categoryService *service.CategoryService,
	submissionService *service.SubmissionService,
	userService *service.UserService,
	leaderboardService *service.LeaderboardService,
	problemRepo repository.ProblemRepository,
	categoryRepo repository.CategoryRepository,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies token when present, puts claims in context. Public routes keep
	// working without one; Authenticator enforces it where required.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	healthHandler := handler.NewHealthHandler(problemRepo, categoryRepo)
	r.Route("/health", healthHandler.RegisterRoutes)

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		authHandler.RegisterRoutes(v1)

		problemHandler := handler.NewProblemHandler(problemService)
		v1.Route("/problems", problemHandler.RegisterRoutes)

		categoryHandler := handler.NewCategoryHandler(categoryService)
		v1.Route("/categories", categoryHandler.RegisterRoutes)

		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		userHandler := handler.NewUserHandler(userService)
		v1.Route("/users", userHandler.RegisterRoutes)

		leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
		v1.Route("/leaderboard", leaderboardHandler.RegisterRoutes)
	})

	return r
}
