package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vesseltrack/internal/domain"
)

// Dataset is one processed upload: the reconstruction result plus the merged
// row sequence it was built from, kept for replay.
type Dataset struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	CreatedAt time.Time           `json:"createdAt"`
	Result    *domain.Result      `json:"result"`
	Rows      []domain.RawDataRow `json:"-"`

	lastAccess time.Time
}

// Store holds processed datasets in memory, keyed by ID. Datasets that go
// unread past the stale window are pruned by the janitor.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset

	staleAfter time.Duration
}

func New(staleAfter time.Duration) *Store {
	return &Store{
		datasets:   make(map[string]*Dataset),
		staleAfter: staleAfter,
	}
}

// Put stores a new dataset and returns its generated ID.
func (s *Store) Put(name string, result *domain.Result, rows []domain.RawDataRow) *Dataset {
	now := time.Now()
	ds := &Dataset{
		ID:         uuid.NewString(),
		Name:       name,
		CreatedAt:  now,
		Result:     result,
		Rows:       rows,
		lastAccess: now,
	}

	s.mu.Lock()
	s.datasets[ds.ID] = ds
	s.mu.Unlock()

	return ds
}

// Get returns a dataset and refreshes its access time.
func (s *Store) Get(id string) (*Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, false
	}
	ds.lastAccess = time.Now()
	return ds, true
}

// Delete removes a dataset, reporting whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return false
	}
	delete(s.datasets, id)
	return true
}

// List returns dataset descriptors, newest first, without the bulky row data.
func (s *Store) List() []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		result = append(result, ds)
	}
	sort.Slice(result, func(a, b int) bool {
		return result[a].CreatedAt.After(result[b].CreatedAt)
	})
	return result
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// PruneStale drops datasets not accessed within the stale window and returns
// how many were removed.
func (s *Store) PruneStale() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.staleAfter)
	pruned := 0
	for id, ds := range s.datasets {
		if ds.lastAccess.Before(cutoff) {
			delete(s.datasets, id)
			pruned++
		}
	}
	return pruned
}

// RunJanitor prunes stale datasets on a ticker until the context is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	logger = logger.With("component", "dataset_janitor")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("janitor stopped")
			return
		case <-ticker.C:
			if pruned := s.PruneStale(); pruned > 0 {
				logger.Info("pruned stale datasets", "count", pruned, "remaining", s.Count())
			}
		}
	}
}
