package memory

import (
	"context"
	"sync"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/storage"
)

// ShopStore is an in-memory implementation of storage.ShopStore.
type ShopStore struct {
	mu       sync.RWMutex
	byID     map[int64]*domain.Shop
	byDomain map[string]*domain.Shop
}

// NewShopStore creates a new in-memory shop store.
func NewShopStore() *ShopStore {
	return &ShopStore{
		byID:     make(map[int64]*domain.Shop),
		byDomain: make(map[string]*domain.Shop),
	}
}

// Insert adds a new shop. Returns ErrDuplicateKey if shop_id or shop_domain exists.
func (s *ShopStore) Insert(_ context.Context, shop *domain.Shop) error {
	if shop == nil || shop.ShopID == 0 || shop.ShopDomain == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[shop.ShopID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byDomain[shop.ShopDomain]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	shopCopy := *shop
	s.byID[shop.ShopID] = &shopCopy
	s.byDomain[shop.ShopDomain] = &shopCopy
	return nil
}

// GetByID retrieves a shop by its ID. Returns ErrNotFound if not exists.
func (s *ShopStore) GetByID(_ context.Context, shopID int64) (*domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shop, exists := s.byID[shopID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	shopCopy := *shop
	return &shopCopy, nil
}

// GetByDomain retrieves a shop by its domain. Returns ErrNotFound if not exists.
func (s *ShopStore) GetByDomain(_ context.Context, shopDomain string) (*domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shop, exists := s.byDomain[shopDomain]
	if !exists {
		return nil, storage.ErrNotFound
	}

	shopCopy := *shop
	return &shopCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.ShopStore = (*ShopStore)(nil)
