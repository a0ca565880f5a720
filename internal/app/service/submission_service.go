package service

import (
	"context"
	"errors"
	"time"

	"ctf_practice_hub/internal/common"
	"ctf_practice_hub/internal/domain/model"
	"ctf_practice_hub/internal/domain/repository"
	"ctf_practice_hub/internal/platform/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	progressRepo   repository.ProgressRepository
	txm            repository.TxManager
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	progressRepo repository.ProgressRepository,
	txm repository.TxManager,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		progressRepo:   progressRepo,
		txm:            txm,
	}
}

// ValidateFlag decides whether a textual answer solves a problem. Malformed
// input is rejected before any storage lookup; a failed lookup counts as a
// wrong flag (fail closed). Comparison is byte-exact, no normalization.
func (s *SubmissionService) ValidateFlag(ctx context.Context, problemID int64, submitted string) bool {
	if !model.ValidFlagFormat(submitted) {
		return false
	}
	flag, err := s.problemRepo.GetProblemFlag(ctx, problemID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			logger.L().Error("fetching flag for validation failed",
				zap.Int64("problem_id", problemID), zap.Error(err))
		}
		return false
	}
	return flag == submitted
}

type SubmitFlagRequest struct {
	ProblemID int64  `json:"problem_id"`
	Flag      string `json:"flag"`
}

type SubmitFlagResult struct {
	Correct       bool `json:"correct"`
	NewSolve      bool `json:"new_solve"`
	AlreadySolved bool `json:"already_solved"`
	PointsEarned  int  `json:"points_earned"`
}

// SubmitFlag runs the whole attempt pipeline in one transaction: append the
// audit row, upsert progress, and bump the solve counter exactly once per
// (user, problem) first solve. The ledger and the projection cannot diverge.
func (s *SubmissionService) SubmitFlag(ctx context.Context, userID string, req SubmitFlagRequest) (*SubmitFlagResult, error) {
	if req.ProblemID <= 0 || req.Flag == "" {
		return nil, common.Errorf("problem_id and flag are required: %w", common.ErrBadRequest)
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, req.ProblemID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.Errorf("failed to fetch problem: %w", err)
	}

	correct := model.ValidFlagFormat(req.Flag) && req.Flag == problem.Flag
	now := time.Now().UTC()

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	submission := &model.Submission{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProblemID:   req.ProblemID,
		Flag:        req.Flag,
		Correct:     correct,
		SubmittedAt: now,
	}
	if err := s.submissionRepo.CreateSubmission(ctx, tx, submission); err != nil {
		return nil, common.Errorf("failed to record submission: %w", err)
	}

	// The placeholder guarantees a row for the lock below, so concurrent
	// submissions serialize and the first-solve transition happens exactly once.
	if err := s.progressRepo.EnsureRow(ctx, tx, userID, req.ProblemID); err != nil {
		return nil, common.Errorf("failed to prepare progress row: %w", err)
	}
	prev, err := s.progressRepo.GetForUpdate(ctx, tx, userID, req.ProblemID)
	if err != nil {
		return nil, common.Errorf("failed to read progress: %w", err)
	}
	alreadySolved := prev.Solved

	progress := &model.UserProgress{
		UserID:    userID,
		ProblemID: req.ProblemID,
		Solved:    correct,
	}
	if correct {
		progress.SolvedAt = &now
	}
	if err := s.progressRepo.Upsert(ctx, tx, progress); err != nil {
		return nil, common.Errorf("failed to update progress: %w", err)
	}

	newSolve := correct && !alreadySolved
	if newSolve {
		if err := s.problemRepo.IncrementSolveCount(ctx, tx, req.ProblemID); err != nil {
			return nil, common.Errorf("failed to increment solve count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit submission: %w", err)
	}

	result := &SubmitFlagResult{
		Correct:       correct,
		NewSolve:      newSolve,
		AlreadySolved: alreadySolved,
	}
	if newSolve {
		result.PointsEarned = problem.Points
	}
	logger.L().Info("flag submission processed",
		zap.String("user_id", userID),
		zap.Int64("problem_id", req.ProblemID),
		zap.Bool("correct", correct),
		zap.Bool("new_solve", newSolve))
	return result, nil
}
