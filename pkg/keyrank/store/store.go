package store

import (
	"context"
	"time"
)

// Store persists ranking runs and the keywords they produced.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Aggregates
	TopPhrases(ctx context.Context, k int) ([]PhraseStat, error)
}

// Run is one ranked document.
type Run struct {
	ID        string // ULID
	Source    string // file name, URL or "-" for stdin
	CreatedAt time.Time
	Params    Params
	Keywords  []Keyword // best first
}

// Params records the ranking parameters a run used.
type Params struct {
	WindowSize    int
	NumKeywords   int
	NumIterations int
	Damping       float64
}

// Keyword is a ranked phrase of a run.
type Keyword struct {
	Phrase string
	Score  float64
}

// PhraseStat aggregates a phrase across all stored runs.
type PhraseStat struct {
	Phrase   string
	Runs     int64
	MaxScore float64
}
