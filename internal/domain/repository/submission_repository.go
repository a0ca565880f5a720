package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ctf_practice_hub/internal/domain/model"
)

// SubmissionRepository writes the append-only attempt ledger. There is no
// update or delete: submissions are audit history, not state.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, tx Tx, sub *model.Submission) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx Tx, s *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, flag, correct, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	var err error
	if t := sqlTx(tx); t != nil {
		_, err = t.ExecContext(ctx, query, s.ID, s.UserID, s.ProblemID, s.Flag, s.Correct, s.SubmittedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, s.ID, s.UserID, s.ProblemID, s.Flag, s.Correct, s.SubmittedAt)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}
