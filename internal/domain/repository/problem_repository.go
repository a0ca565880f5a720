package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ctf_practice_hub/internal/common"
	"ctf_practice_hub/internal/domain/model"
)

type ProblemRepository interface {
	CreateProblem(ctx context.Context, tx Tx, problem *model.Problem) error
	FindProblemByID(ctx context.Context, id int64) (*model.Problem, error)
	ListProblems(ctx context.Context) ([]model.Problem, error)
	ListProblemsByCategory(ctx context.Context, categoryID string) ([]model.Problem, error)
	GetProblemFlag(ctx context.Context, id int64) (string, error)
	IncrementSolveCount(ctx context.Context, tx Tx, id int64) error
	ProblemPoints(ctx context.Context) (map[int64]int, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) CreateProblem(ctx context.Context, tx Tx, p *model.Problem) error {
	hints, err := json.Marshal(p.Hints)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.CreateProblem marshal hints: %w", err)
	}
	files, err := json.Marshal(p.Files)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.CreateProblem marshal files: %w", err)
	}

	query := `INSERT INTO problems (title, description, category, difficulty, points, solves, flag, hints, files)
	          VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8)
	          RETURNING id, created_at`

	var row *sql.Row
	if t := sqlTx(tx); t != nil {
		row = t.QueryRowContext(ctx, query, p.Title, p.Description, p.Category, p.Difficulty, p.Points, p.Flag, hints, files)
	} else {
		row = r.db.QueryRowContext(ctx, query, p.Title, p.Description, p.Category, p.Difficulty, p.Points, p.Flag, hints, files)
	}
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("pgProblemRepository.CreateProblem: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) FindProblemByID(ctx context.Context, id int64) (*model.Problem, error) {
	query := `SELECT id, title, description, category, difficulty, points, solves, created_at, flag, hints, files
	          FROM problems WHERE id = $1`

	p, err := scanProblem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindProblemByID: %w", err)
	}
	return p, nil
}

func (r *pgProblemRepository) ListProblems(ctx context.Context) ([]model.Problem, error) {
	query := `SELECT id, title, description, category, difficulty, points, solves, created_at, flag, hints, files
	          FROM problems ORDER BY created_at DESC`
	return r.queryProblems(ctx, query)
}

func (r *pgProblemRepository) ListProblemsByCategory(ctx context.Context, categoryID string) ([]model.Problem, error) {
	// Points ascending so category pages present easiest-first.
	query := `SELECT id, title, description, category, difficulty, points, solves, created_at, flag, hints, files
	          FROM problems WHERE category = $1 ORDER BY points ASC`
	return r.queryProblems(ctx, query, categoryID)
}

func (r *pgProblemRepository) queryProblems(ctx context.Context, query string, args ...interface{}) ([]model.Problem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository query: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("pgProblemRepository scan: %w", err)
		}
		problems = append(problems, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository rows.Err: %w", err)
	}
	return problems, nil
}

func (r *pgProblemRepository) GetProblemFlag(ctx context.Context, id int64) (string, error) {
	var flag string
	err := r.db.QueryRowContext(ctx, `SELECT flag FROM problems WHERE id = $1`, id).Scan(&flag)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("pgProblemRepository.GetProblemFlag: %w", err)
	}
	return flag, nil
}

// IncrementSolveCount bumps the counter server-side in a single statement,
// so two concurrent solvers cannot lose an increment.
func (r *pgProblemRepository) IncrementSolveCount(ctx context.Context, tx Tx, id int64) error {
	query := `UPDATE problems SET solves = solves + 1 WHERE id = $1`

	var err error
	if t := sqlTx(tx); t != nil {
		_, err = t.ExecContext(ctx, query, id)
	} else {
		_, err = r.db.ExecContext(ctx, query, id)
	}
	if err != nil {
		return fmt.Errorf("pgProblemRepository.IncrementSolveCount: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) ProblemPoints(ctx context.Context) (map[int64]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, points FROM problems`)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ProblemPoints: %w", err)
	}
	defer rows.Close()

	points := map[int64]int{}
	for rows.Next() {
		var id int64
		var pts int
		if err := rows.Scan(&id, &pts); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ProblemPoints scan: %w", err)
		}
		points[id] = pts
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ProblemPoints rows.Err: %w", err)
	}
	return points, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProblem(row rowScanner) (*model.Problem, error) {
	p := &model.Problem{}
	var hints, files []byte
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Difficulty,
		&p.Points, &p.Solves, &p.CreatedAt, &p.Flag, &hints, &files); err != nil {
		return nil, err
	}
	if len(hints) > 0 {
		if err := json.Unmarshal(hints, &p.Hints); err != nil {
			return nil, fmt.Errorf("malformed hints column for problem %d: %w", p.ID, err)
		}
	}
	if len(files) > 0 {
		if err := json.Unmarshal(files, &p.Files); err != nil {
			return nil, fmt.Errorf("malformed files column for problem %d: %w", p.ID, err)
		}
	}
	return p, nil
}
