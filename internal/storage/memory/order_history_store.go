package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/storage"
)

// OrderHistoryStore is an in-memory implementation of storage.OrderHistoryStore.
// Rows are seeded up front (synthetic data, fixtures) rather than derived from
// raw orders the way the postgres implementation does.
type OrderHistoryStore struct {
	mu   sync.RWMutex
	data map[int64][]domain.DailyMetric // keyed by shop_id

	// now is overridable for tests; the lookback window is anchored to it.
	now func() time.Time
}

// NewOrderHistoryStore creates a new in-memory order history store.
func NewOrderHistoryStore() *OrderHistoryStore {
	return &OrderHistoryStore{
		data: make(map[int64][]domain.DailyMetric),
		now:  time.Now,
	}
}

// InsertDay adds one aggregated day for a shop. Returns ErrDuplicateKey if the
// (shop_id, date) pair already exists.
func (s *OrderHistoryStore) InsertDay(_ context.Context, shopID int64, m domain.DailyMetric) error {
	if shopID == 0 || m.Date.IsZero() {
		return storage.ErrInvalidInput
	}

	day := m.Date.UTC().Truncate(24 * time.Hour)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data[shopID] {
		if existing.Date.Equal(day) {
			return storage.ErrDuplicateKey
		}
	}

	m.Date = day
	s.data[shopID] = append(s.data[shopID], m)
	return nil
}

// DailyHistory retrieves up to the last `days` days for a shop, ordered by
// date ASC. Days outside the lookback window are excluded.
func (s *OrderHistoryStore) DailyHistory(_ context.Context, shopID int64, days int) ([]domain.DailyMetric, error) {
	if days <= 0 {
		return nil, storage.ErrInvalidInput
	}

	cutoff := s.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.DailyMetric
	for _, m := range s.data[shopID] {
		if !m.Date.Before(cutoff) {
			result = append(result, m)
		}
	}

	// Sort by date ASC
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.OrderHistoryStore = (*OrderHistoryStore)(nil)
