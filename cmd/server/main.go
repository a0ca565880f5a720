package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctf_practice_hub/internal/api"
	"ctf_practice_hub/internal/app/service"
	"ctf_practice_hub/internal/common/security"
	"ctf_practice_hub/internal/domain/repository"
	"ctf_practice_hub/internal/platform/cache"
	"ctf_practice_hub/internal/platform/config"
	"ctf_practice_hub/internal/platform/database"
	"ctf_practice_hub/internal/platform/logger"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	config.Load()

	// 2. Initialize Logger
	logger.Init()
	defer logger.Sync()
	logger.Log.Info("configuration loaded")

	// 3. Initialize JWT
	security.InitJWT()

	// 4. Initialize Database
	database.Connect()
	defer database.Close()

	// 5. Initialize Redis (leaderboard cache)
	cache.ConnectRedis()
	defer cache.CloseRedis()

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	categoryRepo := repository.NewPgCategoryRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	progressRepo := repository.NewPgProgressRepository(database.DB)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	problemService := service.NewProblemService(problemRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, progressRepo,
		repository.NewTxManager(database.DB))
	userService := service.NewUserService(userRepo, progressRepo, problemRepo, categoryRepo)
	leaderboardService := service.NewLeaderboardService(userRepo, progressRepo, problemRepo,
		cache.RDB, config.AppConfig.LeaderboardCacheKey, config.AppConfig.LeaderboardCacheTTL)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, problemService, categoryService,
		submissionService, userService, leaderboardService, problemRepo, categoryRepo)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Log.Info("server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("could not listen", zap.String("port", config.AppConfig.APIPort), zap.Error(err))
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal("server shutdown failed", zap.Error(err))
	}

	logger.Log.Info("server stopped gracefully")
}
