package service

import (
	"context"
	"strings"
	"time"

	"ctf_practice_hub/internal/domain/model"
	"ctf_practice_hub/internal/domain/repository"
	"ctf_practice_hub/internal/platform/logger"

	"go.uber.org/zap"
)

type UserService struct {
	userRepo     repository.UserRepository
	progressRepo repository.ProgressRepository
	problemRepo  repository.ProblemRepository
	categoryRepo repository.CategoryRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	progressRepo repository.ProgressRepository,
	problemRepo repository.ProblemRepository,
	categoryRepo repository.CategoryRepository,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		progressRepo: progressRepo,
		problemRepo:  problemRepo,
		categoryRepo: categoryRepo,
	}
}

// GetCurrentUser joins the authenticated identity to its users row. When the
// row is missing (or the lookup fails) it synthesizes a minimal profile from
// the token's email local-part rather than failing the request.
func (s *UserService) GetCurrentUser(ctx context.Context, userID, email string) *model.User {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logger.L().Warn("users row missing for authenticated identity, synthesizing profile",
			zap.String("user_id", userID), zap.Error(err))
		username := "user"
		if at := strings.Index(email, "@"); at > 0 {
			username = email[:at]
		}
		return &model.User{
			ID:        userID,
			Username:  username,
			Email:     email,
			Role:      model.RoleUser,
			CreatedAt: time.Now().UTC(),
		}
	}
	user.HashedPassword = ""
	return user
}

// ListProgress returns the user's progress rows; empty on backend error.
func (s *UserService) ListProgress(ctx context.Context, userID string) []model.UserProgress {
	progress, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		logger.L().Error("listing user progress failed", zap.String("user_id", userID), zap.Error(err))
		return []model.UserProgress{}
	}
	return progress
}

type CategoryProgress struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Total      int    `json:"total"`
	Solved     int    `json:"solved"`
}

type UserStats struct {
	TotalProblems  int                `json:"total_problems"`
	ProblemsSolved int                `json:"problems_solved"`
	TotalPoints    int                `json:"total_points"`
	SuccessRate    int                `json:"success_rate"` // solved / total, percent
	ByCategory     []CategoryProgress `json:"by_category"`
}

// GetUserStats derives the dashboard aggregates: solved count, total points
// and per-category progress. Everything is recomputed from the problems list
// and the user's progress rows; nothing is stored.
func (s *UserService) GetUserStats(ctx context.Context, userID string) *UserStats {
	stats := &UserStats{ByCategory: []CategoryProgress{}}

	problems, err := s.problemRepo.ListProblems(ctx)
	if err != nil {
		logger.L().Error("listing problems for stats failed", zap.Error(err))
		return stats
	}
	progress := s.ListProgress(ctx, userID)

	solved := map[int64]bool{}
	for _, p := range progress {
		if p.Solved {
			solved[p.ProblemID] = true
		}
	}

	byCategory := map[string]*CategoryProgress{}
	for _, p := range problems {
		stats.TotalProblems++
		cp, ok := byCategory[p.Category]
		if !ok {
			cp = &CategoryProgress{CategoryID: p.Category, Name: p.Category}
			byCategory[p.Category] = cp
		}
		cp.Total++
		if solved[p.ID] {
			stats.ProblemsSolved++
			stats.TotalPoints += p.Points
			cp.Solved++
		}
	}
	if stats.TotalProblems > 0 {
		stats.SuccessRate = stats.ProblemsSolved * 100 / stats.TotalProblems
	}

	// Display names from the categories table; category order follows it too.
	for _, c := range s.listCategoriesSoft(ctx) {
		if cp, ok := byCategory[c.ID]; ok {
			cp.Name = c.Name
			stats.ByCategory = append(stats.ByCategory, *cp)
			delete(byCategory, c.ID)
		}
	}
	for _, cp := range byCategory { // Problems referencing an unknown category
		stats.ByCategory = append(stats.ByCategory, *cp)
	}
	return stats
}

func (s *UserService) listCategoriesSoft(ctx context.Context) []model.Category {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		logger.L().Error("listing categories for stats failed", zap.Error(err))
		return []model.Category{}
	}
	return categories
}
