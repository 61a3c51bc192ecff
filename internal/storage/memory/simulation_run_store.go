package memory

import (
	"context"
	"sort"
	"sync"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/storage"
)

// SimulationRunStore is an in-memory implementation of storage.SimulationRunStore.
type SimulationRunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SimulationRun // keyed by simulation_id
}

// NewSimulationRunStore creates a new in-memory simulation run store.
func NewSimulationRunStore() *SimulationRunStore {
	return &SimulationRunStore{
		data: make(map[string]*domain.SimulationRun),
	}
}

// Insert adds a completed run summary. Returns ErrDuplicateKey if simulation_id exists.
func (s *SimulationRunStore) Insert(_ context.Context, r *domain.SimulationRun) error {
	if r == nil || r.SimulationID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.SimulationID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	runCopy := *r
	s.data[r.SimulationID] = &runCopy
	return nil
}

// GetByID retrieves a run by its simulation ID. Returns ErrNotFound if not exists.
func (s *SimulationRunStore) GetByID(_ context.Context, simulationID string) (*domain.SimulationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[simulationID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	runCopy := *r
	return &runCopy, nil
}

// ListByShop retrieves the most recent runs for a shop, newest first.
func (s *SimulationRunStore) ListByShop(_ context.Context, shopID int64, limit int) ([]*domain.SimulationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SimulationRun
	for _, r := range s.data {
		if r.ShopID == shopID {
			runCopy := *r
			result = append(result, &runCopy)
		}
	}

	// Sort by created_at DESC, simulation_id as a stable tiebreaker
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].SimulationID < result[j].SimulationID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.SimulationRunStore = (*SimulationRunStore)(nil)
