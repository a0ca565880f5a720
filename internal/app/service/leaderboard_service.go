package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"ctf_practice_hub/internal/domain/model"
	"ctf_practice_hub/internal/domain/repository"
	"ctf_practice_hub/internal/platform/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type LeaderboardService struct {
	userRepo     repository.UserRepository
	progressRepo repository.ProgressRepository
	problemRepo  repository.ProblemRepository

	cache    *redis.Client // Optional; nil disables caching
	cacheKey string
	cacheTTL time.Duration
}

func NewLeaderboardService(
	userRepo repository.UserRepository,
	progressRepo repository.ProgressRepository,
	problemRepo repository.ProblemRepository,
	cache *redis.Client,
	cacheKey string,
	cacheTTL time.Duration,
) *LeaderboardService {
	return &LeaderboardService{
		userRepo:     userRepo,
		progressRepo: progressRepo,
		problemRepo:  problemRepo,
		cache:        cache,
		cacheKey:     cacheKey,
		cacheTTL:     cacheTTL,
	}
}

// ComputeLeaderboard ranks every user by the summed points of their solved
// problems. The aggregation is a full recompute per call (one progress scan
// per user against a points map); a short-TTL redis entry absorbs repeated
// page loads. Any failure degrades to an empty board, logged.
//
// Ordering: points descending; ties broken by earliest most-recent solve
// (whoever reached the total first), then username ascending.
func (s *LeaderboardService) ComputeLeaderboard(ctx context.Context) []model.LeaderboardEntry {
	if cached, ok := s.fromCache(ctx); ok {
		return cached
	}

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		logger.L().Error("listing users for leaderboard failed", zap.Error(err))
		return []model.LeaderboardEntry{}
	}
	points, err := s.problemRepo.ProblemPoints(ctx)
	if err != nil {
		logger.L().Error("loading problem points for leaderboard failed", zap.Error(err))
		return []model.LeaderboardEntry{}
	}

	entries := make([]model.LeaderboardEntry, 0, len(users))
	for _, user := range users {
		entry := model.LeaderboardEntry{UserID: user.ID, Username: user.Username}

		progress, err := s.progressRepo.ListByUser(ctx, user.ID)
		if err != nil {
			// A user whose progress cannot be read scores 0, like the original.
			logger.L().Error("listing progress for leaderboard failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
		for _, row := range progress {
			if !row.Solved {
				continue
			}
			pts, ok := points[row.ProblemID]
			if !ok {
				logger.L().Warn("solved progress row references unknown problem",
					zap.String("user_id", user.ID), zap.Int64("problem_id", row.ProblemID))
				continue
			}
			entry.Points += pts
			entry.ProblemsSolved++
			if row.SolvedAt != nil && (entry.LastSolveAt == nil || row.SolvedAt.After(*entry.LastSolveAt)) {
				entry.LastSolveAt = row.SolvedAt
			}
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		li, lj := entries[i].LastSolveAt, entries[j].LastSolveAt
		if li != nil && lj != nil && !li.Equal(*lj) {
			return li.Before(*lj)
		}
		if (li == nil) != (lj == nil) {
			return li != nil
		}
		return entries[i].Username < entries[j].Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	s.toCache(ctx, entries)
	return entries
}

func (s *LeaderboardService) fromCache(ctx context.Context) ([]model.LeaderboardEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.L().Warn("leaderboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.L().Warn("leaderboard cache entry malformed", zap.Error(err))
		return nil, false
	}
	return entries, true
}

func (s *LeaderboardService) toCache(ctx context.Context, entries []model.LeaderboardEntry) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		logger.L().Warn("marshaling leaderboard for cache failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey, raw, s.cacheTTL).Err(); err != nil {
		logger.L().Warn("leaderboard cache write failed", zap.Error(err))
	}
}
