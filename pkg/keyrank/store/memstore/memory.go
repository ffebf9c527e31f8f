package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
	"github.com/cognicore/keyrank/pkg/keyrank/store"
)

// Store is an in-memory implementation of store.Store for tests and
// one-shot runs that need no database.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]store.Run)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun inserts or replaces a run, keyed by ID.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run without id", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.runs[id]; ok {
		return copyRun(r), true, nil
	}
	return store.Run{}, false, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, copyRun(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TopPhrases returns the phrases found in the most runs. Ties are broken by
// best score, then by phrase.
func (s *Store) TopPhrases(ctx context.Context, k int) ([]store.PhraseStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		k = 10
	}

	stats := make(map[string]*store.PhraseStat)
	for _, r := range s.runs {
		seen := make(map[string]struct{}, len(r.Keywords))
		for _, kw := range r.Keywords {
			if _, dup := seen[kw.Phrase]; dup {
				continue
			}
			seen[kw.Phrase] = struct{}{}

			st, ok := stats[kw.Phrase]
			if !ok {
				st = &store.PhraseStat{Phrase: kw.Phrase, MaxScore: kw.Score}
				stats[kw.Phrase] = st
			}
			st.Runs++
			if kw.Score > st.MaxScore {
				st.MaxScore = kw.Score
			}
		}
	}

	out := make([]store.PhraseStat, 0, len(stats))
	for _, st := range stats {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Runs != out[j].Runs {
			return out[i].Runs > out[j].Runs
		}
		if out[i].MaxScore != out[j].MaxScore {
			return out[i].MaxScore > out[j].MaxScore
		}
		return out[i].Phrase < out[j].Phrase
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func copyRun(r store.Run) store.Run {
	cp := r
	if r.Keywords != nil {
		cp.Keywords = append([]store.Keyword(nil), r.Keywords...)
	}
	return cp
}
