package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ctf_practice_hub/internal/common"
	"ctf_practice_hub/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	FindCategoryByID(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type pgCategoryRepository struct {
	db *sql.DB
}

func NewPgCategoryRepository(db *sql.DB) CategoryRepository {
	return &pgCategoryRepository{db: db}
}

func (r *pgCategoryRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	query := `INSERT INTO categories (id, name, description, color) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Description, c.Color)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("category with this id already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCategoryRepository.CreateCategory: %w", err)
	}
	return nil
}

func (r *pgCategoryRepository) FindCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	query := `SELECT id, name, description, color FROM categories WHERE id = $1`
	c := &model.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.Color)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCategoryRepository.FindCategoryByID: %w", err)
	}
	return c, nil
}

func (r *pgCategoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	query := `SELECT id, name, description, color FROM categories ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgCategoryRepository.ListCategories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Color); err != nil {
			return nil, fmt.Errorf("pgCategoryRepository.ListCategories scan: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCategoryRepository.ListCategories rows.Err: %w", err)
	}
	return categories, nil
}
