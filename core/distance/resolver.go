package distance

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"rental-quote/core/types"
	"rental-quote/internal/async"
	"rental-quote/internal/errors"
	"rental-quote/internal/logging"
)

// Coordinates is a geocoded point
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Route is a resolved driving route
type Route struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Provider is the external geocoding/routing service
type Provider interface {
	// Route resolves a driving route between two addresses
	Route(ctx context.Context, origin, destination string) (*Route, error)

	// Geocode resolves an address to coordinates
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

// BranchSource supplies the current branch list
type BranchSource interface {
	GetBranches(ctx context.Context) ([]types.BranchLocation, error)
}

// Cache is the per-pair distance cache
type Cache interface {
	Get(key string) ([]byte, bool)
	SetWithTTL(key string, value []byte, ttl time.Duration)
}

// Options configures a Resolver
type Options struct {
	// CacheTTL is the fixed expiry for cached distance results
	CacheTTL time.Duration

	// MaxConcurrent bounds per-request branch fan-out
	MaxConcurrent int

	// Hub is the straight-line fallback origin
	Hub Hub

	// AverageSpeedMPH approximates drive time in fallback results
	AverageSpeedMPH float64

	// ServiceAreaStates overrides the default serviced-state list
	ServiceAreaStates []string
}

// Resolver finds the nearest branch by driving distance. Per-branch
// lookups run concurrently, cache-or-fetch, with concurrent misses for
// the same pair coalesced into one provider call.
type Resolver struct {
	branches    BranchSource
	cache       Cache
	provider    Provider
	bg          *async.Worker
	opts        Options
	serviceArea *ServiceArea

	mu       sync.Mutex
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done chan struct{}
	res  *types.DistanceResult
	err  error
}

// NewResolver creates a distance resolver
func NewResolver(branches BranchSource, cache Cache, provider Provider, bg *async.Worker, opts Options) *Resolver {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}
	states := opts.ServiceAreaStates
	if len(states) == 0 {
		states = DefaultServiceAreaStates
	}
	return &Resolver{
		branches:    branches,
		cache:       cache,
		provider:    provider,
		bg:          bg,
		opts:        opts,
		serviceArea: NewServiceArea(states),
		inflight:    make(map[string]*inflightCall),
	}
}

// GetNearestBranch resolves the branch with minimum driving distance
// to the delivery location. It returns a LOCATION_UNRESOLVED error when
// no branch resolves; callers may then fall back to EstimateStraightLine.
func (r *Resolver) GetNearestBranch(ctx context.Context, deliveryLocation string) (*types.DistanceResult, error) {
	branches, err := r.branches.GetBranches(ctx)
	if err != nil {
		return nil, err
	}

	results := make(chan *types.DistanceResult, len(branches))
	sem := make(chan struct{}, r.opts.MaxConcurrent)
	var wg sync.WaitGroup

	for _, branch := range branches {
		wg.Add(1)
		go func(b types.BranchLocation) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := r.resolveBranch(ctx, b, deliveryLocation)
			if err != nil {
				r.reportError(err)
				return
			}
			results <- res
		}(branch)
	}

	wg.Wait()
	close(results)

	var nearest *types.DistanceResult
	for res := range results {
		if nearest == nil || res.DistanceMiles < nearest.DistanceMiles {
			nearest = res
		}
	}
	if nearest == nil {
		return nil, errors.LocationUnresolved(deliveryLocation)
	}
	return nearest, nil
}

// resolveBranch returns the distance to one branch, cache first
func (r *Resolver) resolveBranch(ctx context.Context, branch types.BranchLocation, deliveryLocation string) (*types.DistanceResult, error) {
	key := CacheKey(branch.Address, deliveryLocation)

	if blob, ok := r.cache.Get(key); ok {
		var cached types.DistanceResult
		if err := json.Unmarshal(blob, &cached); err == nil {
			// A cached entry whose branch identity no longer matches
			// is stale reference data; discard and refetch.
			if cached.Branch.Name == branch.Name && cached.Branch.Address == branch.Address {
				return &cached, nil
			}
			logging.Debug("discarding distance cache entry with stale branch identity",
				zap.String("key", key), zap.String("cached_branch", cached.Branch.Name))
		}
	}

	return r.fetchCoalesced(ctx, key, branch, deliveryLocation)
}

// fetchCoalesced collapses concurrent misses for one cache key into a
// single provider call.
func (r *Resolver) fetchCoalesced(ctx context.Context, key string, branch types.BranchLocation, deliveryLocation string) (*types.DistanceResult, error) {
	r.mu.Lock()
	if call, ok := r.inflight[key]; ok {
		r.mu.Unlock()
		select {
		case <-call.done:
			return call.res, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	r.inflight[key] = call
	r.mu.Unlock()

	call.res, call.err = r.fetch(ctx, key, branch, deliveryLocation)

	r.mu.Lock()
	delete(r.inflight, key)
	r.mu.Unlock()
	close(call.done)

	return call.res, call.err
}

// fetch queries the provider, trying address variations in order of
// specificity. The first usable route wins and is cached with the
// fixed TTL; remaining variations are not attempted.
func (r *Resolver) fetch(ctx context.Context, key string, branch types.BranchLocation, deliveryLocation string) (*types.DistanceResult, error) {
	for _, variation := range AddressVariations(deliveryLocation) {
		route, err := r.provider.Route(ctx, branch.Address, variation)
		if err != nil {
			r.reportError(errors.Provider("route lookup failed", err).
				WithContext("branch", branch.Name).
				WithContext("variation", variation))
			continue
		}
		if route == nil || route.DistanceMeters <= 0 {
			continue
		}

		result := &types.DistanceResult{
			Branch:            branch,
			DeliveryLocation:  deliveryLocation,
			DistanceMiles:     route.DistanceMeters / metersPerMile,
			DistanceMeters:    route.DistanceMeters,
			DurationSeconds:   route.DurationSeconds,
			WithinServiceArea: r.serviceArea.Contains(deliveryLocation),
			Estimated:         false,
		}
		r.cacheResult(key, result)
		return result, nil
	}
	return nil, errors.LocationUnresolved(deliveryLocation).
		WithContext("branch", branch.Name)
}

// cacheResult writes a result back in the background; the write can
// never block or fail the response path.
func (r *Resolver) cacheResult(key string, result *types.DistanceResult) {
	blob, err := json.Marshal(result)
	if err != nil {
		logging.Error("distance result marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	write := func() { r.cache.SetWithTTL(key, blob, r.opts.CacheTTL) }
	if r.bg == nil {
		write()
		return
	}
	r.bg.Submit(write)
}

// reportError sends a recoverable issue to the out-of-band error log,
// best-effort
func (r *Resolver) reportError(err error) {
	log := func() { logging.Warn("distance resolution issue", zap.Error(err)) }
	if r.bg == nil {
		log()
		return
	}
	r.bg.Submit(log)
}
