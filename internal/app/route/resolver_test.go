package route_test

import (
	"context"
	"testing"

	memgateway "github.com/rideshare-app/rideshare-client/internal/adapters/memory/gateway"
	"github.com/rideshare-app/rideshare-client/internal/app/route"
	"github.com/rideshare-app/rideshare-client/internal/domain"
	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
	gatewayport "github.com/rideshare-app/rideshare-client/internal/ports/out/gateway"
)

var (
	ikeja = domain.Coord{Latitude: 6.6018, Longitude: 3.3515}
	lekki = domain.Coord{Latitude: 6.4478, Longitude: 3.4723}
	yaba  = domain.Coord{Latitude: 6.5095, Longitude: 3.3711}
)

func TestResolveFormatsDuration(t *testing.T) {
	t.Parallel()
	gw := memgateway.NewClient()
	gw.RouteFn = func(_ context.Context, origin, destination domain.Coord) (gatewayport.Route, error) {
		return gatewayport.Route{
			Coordinates:     []domain.Coord{origin, destination},
			DurationSeconds: 3599,
		}, nil
	}
	r := route.NewResolver(gw, logger.NewNop())

	res, err := r.Resolve(context.Background(), ikeja, lekki)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.DurationText != "59 Minutes and 59 Seconds" {
		t.Fatalf("DurationText = %q, want %q", res.DurationText, "59 Minutes and 59 Seconds")
	}
	if res.DurationSeconds != 3599 {
		t.Fatalf("DurationSeconds = %v, want 3599", res.DurationSeconds)
	}
	if len(res.Coordinates) != 2 {
		t.Fatalf("Coordinates = %v, want the source path", res.Coordinates)
	}
}

func TestResolveMemoizesPerPair(t *testing.T) {
	t.Parallel()
	gw := memgateway.NewClient()
	r := route.NewResolver(gw, logger.NewNop())
	ctx := context.Background()

	first, err := r.Resolve(ctx, ikeja, lekki)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := r.Resolve(ctx, ikeja, lekki)
	if err != nil {
		t.Fatalf("Resolve again: %v", err)
	}
	if gw.Calls("Route") != 1 {
		t.Fatalf("Route calls = %d, want 1 (second hit served from memo)", gw.Calls("Route"))
	}
	if first.DurationText != second.DurationText {
		t.Fatalf("memoized result diverged: %q vs %q", first.DurationText, second.DurationText)
	}

	if _, err := r.Resolve(ctx, ikeja, yaba); err != nil {
		t.Fatalf("Resolve new pair: %v", err)
	}
	if gw.Calls("Route") != 2 {
		t.Fatalf("Route calls = %d, want 2 after a new pair", gw.Calls("Route"))
	}
}

func TestResolveFailureNotMemoized(t *testing.T) {
	t.Parallel()
	gw := memgateway.NewClient()
	fail := true
	gw.RouteFn = func(_ context.Context, origin, destination domain.Coord) (gatewayport.Route, error) {
		if fail {
			return gatewayport.Route{}, &gatewayport.Error{Kind: gatewayport.KindNetwork, Message: "down"}
		}
		return gatewayport.Route{Coordinates: []domain.Coord{origin, destination}, DurationSeconds: 60}, nil
	}
	r := route.NewResolver(gw, logger.NewNop())
	ctx := context.Background()

	if _, err := r.Resolve(ctx, ikeja, lekki); !gatewayport.IsNetworkError(err) {
		t.Fatalf("Resolve = %v, want network error", err)
	}

	fail = false
	res, err := r.Resolve(ctx, ikeja, lekki)
	if err != nil {
		t.Fatalf("Resolve after recovery: %v", err)
	}
	if gw.Calls("Route") != 2 {
		t.Fatalf("Route calls = %d, want 2 (failures must not be cached)", gw.Calls("Route"))
	}
	if res.DurationText != "1 Minutes and 0 Seconds" {
		t.Fatalf("DurationText = %q, want %q", res.DurationText, "1 Minutes and 0 Seconds")
	}
}
