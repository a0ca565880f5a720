package model

import (
	"regexp"
	"time"
)

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"
)

// flagPattern is the user-facing flag grammar: WOW{ + one or more
// non-'}' characters + }. Stored flags obey the same grammar.
var flagPattern = regexp.MustCompile(`^WOW\{[^}]+\}$`)

// ValidFlagFormat reports whether s is a well-formed flag. It is the cheap
// gate run before any storage lookup during submission validation.
func ValidFlagFormat(s string) bool {
	return flagPattern.MatchString(s)
}

func ValidDifficulty(d ProblemDifficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Problem struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Difficulty  ProblemDifficulty `json:"difficulty"`
	Points      int               `json:"points"`
	Solves      int               `json:"solves"`
	CreatedAt   time.Time         `json:"created_at"`
	Flag        string            `json:"flag,omitempty"` // Admin only view; redacted elsewhere
	Hints       []string          `json:"hints,omitempty"`
	Files       []FileInfo        `json:"files,omitempty"`
}

type FileInfo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size string `json:"size"`
}
