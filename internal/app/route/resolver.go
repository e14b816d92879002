package route

import (
	"context"
	"sync"

	"github.com/rideshare-app/rideshare-client/internal/domain"
	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
	"github.com/rideshare-app/rideshare-client/internal/ports/out/gateway"
)

// Source is the slice of the gateway the resolver needs.
type Source interface {
	Route(ctx context.Context, origin, destination domain.Coord) (gateway.Route, error)
}

// Result is a resolved path plus its human-readable duration.
type Result struct {
	Coordinates     []domain.Coord
	DurationSeconds float64
	DurationText    string
}

type pairKey struct {
	originLat, originLon           float64
	destinationLat, destinationLon float64
}

// Resolver computes routes between selected endpoints, memoized per coordinate
// pair. Callers must have both endpoints selected; that precondition is enforced
// once at the lifecycle controller, not re-validated here.
type Resolver struct {
	src Source
	log logger.Logger

	mu   sync.Mutex
	memo map[pairKey]Result
}

func NewResolver(src Source, log logger.Logger) *Resolver {
	return &Resolver{
		src:  src,
		log:  log,
		memo: make(map[pairKey]Result),
	}
}

func (r *Resolver) Resolve(ctx context.Context, origin, destination domain.Coord) (Result, error) {
	key := pairKey{
		originLat: origin.Latitude, originLon: origin.Longitude,
		destinationLat: destination.Latitude, destinationLon: destination.Longitude,
	}

	r.mu.Lock()
	if cached, ok := r.memo[key]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	rt, err := r.src.Route(ctx, origin, destination)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Coordinates:     rt.Coordinates,
		DurationSeconds: rt.DurationSeconds,
		DurationText:    domain.FormatDuration(rt.DurationSeconds),
	}

	r.mu.Lock()
	r.memo[key] = res
	r.mu.Unlock()
	return res, nil
}
