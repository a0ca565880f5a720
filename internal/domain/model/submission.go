package model

import "time"

// Submission is one flag attempt. Rows are append-only: the table is an
// audit log, never updated or deleted.
type Submission struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProblemID   int64     `json:"problem_id"`
	Flag        string    `json:"flag"`
	Correct     bool      `json:"correct"`
	SubmittedAt time.Time `json:"submitted_at"`
}
