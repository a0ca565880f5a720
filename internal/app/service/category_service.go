package service

import (
	"context"

	"ctf_practice_hub/internal/common"
	"ctf_practice_hub/internal/domain/model"
	"ctf_practice_hub/internal/domain/repository"
	"ctf_practice_hub/internal/platform/logger"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// ListCategories returns all categories ordered by name. Fail-soft: an empty
// list on backend error, logged.
func (s *CategoryService) ListCategories(ctx context.Context) []model.Category {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		logger.L().Error("listing categories failed", zap.Error(err))
		return []model.Category{}
	}
	return categories
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CreateCategory derives the id from the display name ("Web Exploitation"
// becomes "web-exploitation"), so problem rows reference a stable slug.
func (s *CategoryService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*model.Category, error) {
	if req.Name == "" {
		return nil, common.Errorf("category name is required: %w", common.ErrBadRequest)
	}

	category := &model.Category{
		ID:          slug.Make(req.Name),
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	if err := s.categoryRepo.CreateCategory(ctx, category); err != nil {
		return nil, common.Errorf("failed to create category: %w", err)
	}
	return category, nil
}
