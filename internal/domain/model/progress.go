package model

import "time"

// UserProgress is the current-state projection keyed by (user, problem) and
// the sole source of truth for "has user X solved problem Y". Unlike the
// submissions ledger it is upserted in place; solved never reverts to false.
type UserProgress struct {
	UserID    string     `json:"user_id"`
	ProblemID int64      `json:"problem_id"`
	Solved    bool       `json:"solved"`
	SolvedAt  *time.Time `json:"solved_at,omitempty"`
}
