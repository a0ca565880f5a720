package service

import (
	"context"
	"errors"

	"ctf_practice_hub/internal/common"
	"ctf_practice_hub/internal/domain/model"
	"ctf_practice_hub/internal/domain/repository"
	"ctf_practice_hub/internal/platform/logger"

	"go.uber.org/zap"
)

type ProblemService struct {
	problemRepo  repository.ProblemRepository
	categoryRepo repository.CategoryRepository
}

func NewProblemService(problemRepo repository.ProblemRepository, categoryRepo repository.CategoryRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo, categoryRepo: categoryRepo}
}

// ListProblems returns all problems, newest first. Backend failures are
// logged and degrade to an empty list so challenge pages still render.
func (s *ProblemService) ListProblems(ctx context.Context, viewerRole string) []model.Problem {
	problems, err := s.problemRepo.ListProblems(ctx)
	if err != nil {
		logger.L().Error("listing problems failed", zap.Error(err))
		return []model.Problem{}
	}
	return redactFlags(problems, viewerRole)
}

// ListProblemsByCategory filters server-side and orders by points ascending.
// An unknown category and a category with no problems both yield an empty list.
func (s *ProblemService) ListProblemsByCategory(ctx context.Context, categoryID, viewerRole string) []model.Problem {
	problems, err := s.problemRepo.ListProblemsByCategory(ctx, categoryID)
	if err != nil {
		logger.L().Error("listing problems by category failed",
			zap.String("category", categoryID), zap.Error(err))
		return []model.Problem{}
	}
	return redactFlags(problems, viewerRole)
}

// GetProblem distinguishes a missing row (common.ErrNotFound) from a backend
// failure so callers can render a 404 instead of a retry banner.
func (s *ProblemService) GetProblem(ctx context.Context, id int64, viewerRole string) (*model.Problem, error) {
	if id <= 0 {
		return nil, common.Errorf("problem id must be a positive integer: %w", common.ErrBadRequest)
	}
	problem, err := s.problemRepo.FindProblemByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		logger.L().Error("fetching problem failed", zap.Int64("problem_id", id), zap.Error(err))
		return nil, common.Errorf("failed to fetch problem: %w", err)
	}
	if viewerRole != model.RoleAdmin {
		problem.Flag = ""
	}
	return problem, nil
}

type CreateProblemRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Category    string                  `json:"category"`
	Difficulty  model.ProblemDifficulty `json:"difficulty"`
	Points      int                     `json:"points"`
	Flag        string                  `json:"flag"`
	Hints       []string                `json:"hints,omitempty"`
	Files       []model.FileInfo        `json:"files,omitempty"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, req CreateProblemRequest) (*model.Problem, error) {
	if req.Title == "" || req.Description == "" || req.Category == "" {
		return nil, common.Errorf("missing required fields for problem creation: %w", common.ErrBadRequest)
	}
	if !model.ValidDifficulty(req.Difficulty) {
		return nil, common.Errorf("difficulty must be Easy, Medium or Hard: %w", common.ErrValidation)
	}
	if req.Points <= 0 {
		return nil, common.Errorf("points must be a positive integer: %w", common.ErrValidation)
	}
	if !model.ValidFlagFormat(req.Flag) {
		return nil, common.Errorf("flag must match WOW{...}: %w", common.ErrValidation)
	}
	if _, err := s.categoryRepo.FindCategoryByID(ctx, req.Category); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("category %q does not exist: %w", req.Category, common.ErrValidation)
		}
		return nil, common.Errorf("failed to verify category: %w", err)
	}

	problem := &model.Problem{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Points:      req.Points,
		Flag:        req.Flag,
		Hints:       req.Hints,
		Files:       req.Files,
	}
	if err := s.problemRepo.CreateProblem(ctx, nil, problem); err != nil {
		return nil, common.Errorf("failed to create problem: %w", err)
	}
	return problem, nil
}

// The stored flag is a secret; only admin views carry it.
func redactFlags(problems []model.Problem, viewerRole string) []model.Problem {
	if viewerRole == model.RoleAdmin {
		return problems
	}
	for i := range problems {
		problems[i].Flag = ""
	}
	return problems
}
