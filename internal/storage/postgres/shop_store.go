package postgres

import (
	"context"
	"fmt"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/storage"
)

// ShopStore implements storage.ShopStore using PostgreSQL.
type ShopStore struct {
	pool *Pool
}

// NewShopStore creates a new ShopStore.
func NewShopStore(pool *Pool) *ShopStore {
	return &ShopStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ShopStore = (*ShopStore)(nil)

// Insert adds a new shop. Returns ErrDuplicateKey if shop_id or shop_domain exists.
func (s *ShopStore) Insert(ctx context.Context, shop *domain.Shop) error {
	query := `
		INSERT INTO shops (shop_id, shop_domain, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, shop.ShopID, shop.ShopDomain, shop.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert shop: %w", err)
	}
	return nil
}

// GetByID retrieves a shop by its ID. Returns ErrNotFound if not exists.
func (s *ShopStore) GetByID(ctx context.Context, shopID int64) (*domain.Shop, error) {
	query := `
		SELECT shop_id, shop_domain, created_at
		FROM shops
		WHERE shop_id = $1
	`

	var shop domain.Shop
	err := s.pool.QueryRow(ctx, query, shopID).Scan(&shop.ShopID, &shop.ShopDomain, &shop.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get shop by id: %w", err)
	}
	return &shop, nil
}

// GetByDomain retrieves a shop by its domain. Returns ErrNotFound if not exists.
func (s *ShopStore) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	query := `
		SELECT shop_id, shop_domain, created_at
		FROM shops
		WHERE shop_domain = $1
	`

	var shop domain.Shop
	err := s.pool.QueryRow(ctx, query, shopDomain).Scan(&shop.ShopID, &shop.ShopDomain, &shop.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get shop by domain: %w", err)
	}
	return &shop, nil
}
