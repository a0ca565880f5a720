package model

import "time"

type LeaderboardEntry struct {
	Rank           int        `json:"rank"`
	UserID         string     `json:"user_id"`
	Username       string     `json:"username"`
	Points         int        `json:"points"`
	ProblemsSolved int        `json:"problems_solved"`
	LastSolveAt    *time.Time `json:"last_solve_at,omitempty"`
}
