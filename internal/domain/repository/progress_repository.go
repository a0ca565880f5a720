package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ctf_practice_hub/internal/common"
	"ctf_practice_hub/internal/domain/model"
)

type ProgressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.UserProgress, error)
	// EnsureRow inserts an unsolved placeholder when the user has never
	// attempted the problem, so GetForUpdate always has a row to lock.
	EnsureRow(ctx context.Context, tx Tx, userID string, problemID int64) error
	// GetForUpdate locks the (user, problem) row for the duration of tx so the
	// first-solve transition is decided exactly once under concurrent submits.
	GetForUpdate(ctx context.Context, tx Tx, userID string, problemID int64) (*model.UserProgress, error)
	Upsert(ctx context.Context, tx Tx, progress *model.UserProgress) error
}

type pgProgressRepository struct {
	db *sql.DB
}

func NewPgProgressRepository(db *sql.DB) ProgressRepository {
	return &pgProgressRepository{db: db}
}

func (r *pgProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.UserProgress, error) {
	query := `SELECT user_id, problem_id, solved, solved_at FROM user_progress WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	progress := []model.UserProgress{}
	for rows.Next() {
		var p model.UserProgress
		if err := rows.Scan(&p.UserID, &p.ProblemID, &p.Solved, &p.SolvedAt); err != nil {
			return nil, fmt.Errorf("pgProgressRepository.ListByUser scan: %w", err)
		}
		progress = append(progress, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListByUser rows.Err: %w", err)
	}
	return progress, nil
}

// A bare SELECT ... FOR UPDATE locks nothing when no row exists yet, so two
// concurrent first submissions would both observe "no prior solve". The
// placeholder makes the second transaction block on the first one's insert.
func (r *pgProgressRepository) EnsureRow(ctx context.Context, tx Tx, userID string, problemID int64) error {
	query := `INSERT INTO user_progress (user_id, problem_id, solved, solved_at)
	          VALUES ($1, $2, FALSE, NULL)
	          ON CONFLICT (user_id, problem_id) DO NOTHING`

	var err error
	if t := sqlTx(tx); t != nil {
		_, err = t.ExecContext(ctx, query, userID, problemID)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID, problemID)
	}
	if err != nil {
		return fmt.Errorf("pgProgressRepository.EnsureRow: %w", err)
	}
	return nil
}

func (r *pgProgressRepository) GetForUpdate(ctx context.Context, tx Tx, userID string, problemID int64) (*model.UserProgress, error) {
	t := sqlTx(tx)
	if t == nil {
		return nil, fmt.Errorf("pgProgressRepository.GetForUpdate requires a transaction")
	}
	query := `SELECT user_id, problem_id, solved, solved_at FROM user_progress
	          WHERE user_id = $1 AND problem_id = $2 FOR UPDATE`
	p := &model.UserProgress{}
	err := t.QueryRowContext(ctx, query, userID, problemID).Scan(&p.UserID, &p.ProblemID, &p.Solved, &p.SolvedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProgressRepository.GetForUpdate: %w", err)
	}
	return p, nil
}

// Upsert is idempotent on (user_id, problem_id). A solved row never reverts:
// solved is OR-ed with the stored value and the first solved_at wins.
func (r *pgProgressRepository) Upsert(ctx context.Context, tx Tx, p *model.UserProgress) error {
	query := `INSERT INTO user_progress (user_id, problem_id, solved, solved_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (user_id, problem_id) DO UPDATE
	          SET solved = user_progress.solved OR EXCLUDED.solved,
	              solved_at = COALESCE(user_progress.solved_at, EXCLUDED.solved_at)`

	var err error
	if t := sqlTx(tx); t != nil {
		_, err = t.ExecContext(ctx, query, p.UserID, p.ProblemID, p.Solved, p.SolvedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.UserID, p.ProblemID, p.Solved, p.SolvedAt)
	}
	if err != nil {
		return fmt.Errorf("pgProgressRepository.Upsert: %w", err)
	}
	return nil
}
