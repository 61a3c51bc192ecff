package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/storage"
)

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	Shops  storage.ShopStore
	Secret string

	// CacheTTL bounds how long a resolved shop is served from cache.
	// Defaults to 5 minutes.
	CacheTTL time.Duration

	// FetchTimeout bounds one store lookup. Defaults to 5 seconds.
	FetchTimeout time.Duration
}

// Resolver verifies session tokens and maps shop domains to shop records.
// At most one store fetch is in flight per domain; concurrent callers for the
// same domain wait for that fetch instead of issuing their own.
type Resolver struct {
	shops        storage.ShopStore
	secret       string
	cacheTTL     time.Duration
	fetchTimeout time.Duration

	mu       sync.Mutex
	cache    map[string]cacheEntry
	inflight map[string]*fetchCall

	now func() time.Time
}

type cacheEntry struct {
	shop      domain.Shop
	expiresAt time.Time
}

type fetchCall struct {
	done chan struct{}
	shop *domain.Shop
	err  error
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions) (*Resolver, error) {
	if opts.Shops == nil {
		return nil, fmt.Errorf("shop store is required")
	}
	if opts.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 5 * time.Second
	}

	return &Resolver{
		shops:        opts.Shops,
		secret:       opts.Secret,
		cacheTTL:     opts.CacheTTL,
		fetchTimeout: opts.FetchTimeout,
		cache:        make(map[string]cacheEntry),
		inflight:     make(map[string]*fetchCall),
		now:          time.Now,
	}, nil
}

// ResolveToken verifies a session token and resolves the shop it belongs to.
func (r *Resolver) ResolveToken(ctx context.Context, token string) (*domain.Shop, error) {
	shopDomain, err := VerifySessionToken(token, r.secret, r.now())
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, shopDomain)
}

// Resolve maps a shop domain to its shop record, serving from cache when
// fresh. Returns storage.ErrNotFound for unknown domains.
func (r *Resolver) Resolve(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	r.mu.Lock()

	if entry, ok := r.cache[shopDomain]; ok && r.now().Before(entry.expiresAt) {
		shop := entry.shop
		r.mu.Unlock()
		return &shop, nil
	}

	if call, ok := r.inflight[shopDomain]; ok {
		r.mu.Unlock()
		select {
		case <-call.done:
			if call.err != nil {
				return nil, call.err
			}
			shop := *call.shop
			return &shop, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &fetchCall{done: make(chan struct{})}
	r.inflight[shopDomain] = call
	r.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(context.Background(), r.fetchTimeout)
	shop, err := r.shops.GetByDomain(fetchCtx, shopDomain)
	cancel()

	call.shop = shop
	call.err = err

	r.mu.Lock()
	delete(r.inflight, shopDomain)
	if err == nil {
		r.cache[shopDomain] = cacheEntry{shop: *shop, expiresAt: r.now().Add(r.cacheTTL)}
	}
	r.mu.Unlock()
	close(call.done)

	if err != nil {
		return nil, err
	}
	result := *shop
	return &result, nil
}

// Invalidate drops a domain from the cache.
func (r *Resolver) Invalidate(shopDomain string) {
	r.mu.Lock()
	delete(r.cache, shopDomain)
	r.mu.Unlock()
}
