// Package catalog provides cache-aside access to the pricing catalog
// and branch list.
package catalog

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"rental-quote/core/types"
	"rental-quote/internal/async"
	"rental-quote/internal/errors"
	"rental-quote/internal/logging"
)

// Cache is the keyed-blob cache the catalog reads through
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Store is the durable catalog source behind the cache
type Store interface {
	// LoadCatalog returns the current pricing catalog
	LoadCatalog(ctx context.Context) (*types.PricingCatalog, error)

	// LoadBranches returns the current branch list
	LoadBranches(ctx context.Context) ([]types.BranchLocation, error)
}

const (
	catalogKey  = "pricing_catalog"
	branchesKey = "branch_locations"
)

// CatalogStore serves the catalog cache-aside: cache first, durable
// store on miss, write-back in the background. Misses are not
// negatively cached.
type CatalogStore struct {
	cache Cache
	store Store
	bg    *async.Worker
}

// NewCatalogStore creates a catalog store
func NewCatalogStore(cache Cache, store Store, bg *async.Worker) *CatalogStore {
	return &CatalogStore{cache: cache, store: store, bg: bg}
}

// GetCatalog returns the pricing catalog. It fails with a
// CONFIG_UNAVAILABLE error only when the catalog is absent from both
// cache and durable store.
func (s *CatalogStore) GetCatalog(ctx context.Context) (*types.PricingCatalog, error) {
	if blob, ok := s.cache.Get(catalogKey); ok {
		var cat types.PricingCatalog
		if err := json.Unmarshal(blob, &cat); err == nil {
			return &cat, nil
		}
		// A corrupt blob is a miss; the durable store rebuilds it.
		logging.Warn("discarding unreadable cached catalog", zap.String("key", catalogKey))
	}

	cat, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return nil, errors.ConfigUnavailable("pricing catalog absent from cache and store", err)
	}
	if cat == nil {
		return nil, errors.ConfigUnavailable("pricing catalog absent from cache and store", nil)
	}

	s.writeBack(catalogKey, cat)
	return cat, nil
}

// GetBranches returns the branch list, cache-aside like the catalog
func (s *CatalogStore) GetBranches(ctx context.Context) ([]types.BranchLocation, error) {
	if blob, ok := s.cache.Get(branchesKey); ok {
		var branches []types.BranchLocation
		if err := json.Unmarshal(blob, &branches); err == nil {
			return branches, nil
		}
		logging.Warn("discarding unreadable cached branch list", zap.String("key", branchesKey))
	}

	branches, err := s.store.LoadBranches(ctx)
	if err != nil {
		return nil, errors.ConfigUnavailable("branch list absent from cache and store", err)
	}
	if len(branches) == 0 {
		return nil, errors.ConfigUnavailable("branch list absent from cache and store", nil)
	}

	s.writeBack(branchesKey, branches)
	return branches, nil
}

// writeBack caches a value in the background. Serialization failures
// are logged and dropped; they never reach the caller.
func (s *CatalogStore) writeBack(key string, value interface{}) {
	blob, err := json.Marshal(value)
	if err != nil {
		logging.Error("catalog write-back marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if s.bg == nil {
		s.cache.Set(key, blob)
		return
	}
	s.bg.Submit(func() {
		s.cache.Set(key, blob)
	})
}
