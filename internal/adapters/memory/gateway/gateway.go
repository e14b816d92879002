package gateway

import (
	"context"
	"sync"

	"github.com/rideshare-app/rideshare-client/internal/domain"
	gatewayport "github.com/rideshare-app/rideshare-client/internal/ports/out/gateway"
)

// Client is a scriptable in-memory gateway. Tests set the function fields they
// care about; unset operations fall back to benign defaults. Every call is
// counted so tests can assert on traffic (e.g. "no network call issued").
type Client struct {
	mu    sync.Mutex
	calls map[string]int

	RegisterAccountFn func(ctx context.Context, in gatewayport.RegisterAccountInput) (string, error)
	LoginFn           func(ctx context.Context, username, password string) (gatewayport.Credentials, error)
	UpdatePushTokenFn func(ctx context.Context, token string) error
	PostTripFn        func(ctx context.Context, req domain.TripRequest) error
	TripStatusFn      func(ctx context.Context) (bool, error)
	FetchTripFn       func(ctx context.Context) (domain.TripID, error)
	MatchesFn         func(ctx context.Context, tripID domain.TripID) ([]domain.Match, error)
	CancelTripFn      func(ctx context.Context) error
	SuggestionsFn     func(ctx context.Context, query string) ([]domain.Suggestion, error)
	RouteFn           func(ctx context.Context, origin, destination domain.Coord) (gatewayport.Route, error)
}

func NewClient() *Client {
	return &Client{calls: make(map[string]int)}
}

// Calls reports how many times the named operation ran.
func (c *Client) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// TotalCalls reports traffic across all operations.
func (c *Client) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

func (c *Client) record(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
}

func (c *Client) RegisterAccount(ctx context.Context, in gatewayport.RegisterAccountInput) (string, error) {
	c.record("RegisterAccount")
	if c.RegisterAccountFn != nil {
		return c.RegisterAccountFn(ctx, in)
	}
	return "Account created", nil
}

func (c *Client) Login(ctx context.Context, username, password string) (gatewayport.Credentials, error) {
	c.record("Login")
	if c.LoginFn != nil {
		return c.LoginFn(ctx, username, password)
	}
	return gatewayport.Credentials{AccessToken: "test-token", TokenType: "bearer"}, nil
}

func (c *Client) UpdatePushToken(ctx context.Context, token string) error {
	c.record("UpdatePushToken")
	if c.UpdatePushTokenFn != nil {
		return c.UpdatePushTokenFn(ctx, token)
	}
	return nil
}

func (c *Client) PostTrip(ctx context.Context, req domain.TripRequest) error {
	c.record("PostTrip")
	if c.PostTripFn != nil {
		return c.PostTripFn(ctx, req)
	}
	return nil
}

func (c *Client) TripStatus(ctx context.Context) (bool, error) {
	c.record("TripStatus")
	if c.TripStatusFn != nil {
		return c.TripStatusFn(ctx)
	}
	return false, nil
}

func (c *Client) FetchTrip(ctx context.Context) (domain.TripID, error) {
	c.record("FetchTrip")
	if c.FetchTripFn != nil {
		return c.FetchTripFn(ctx)
	}
	return 0, &gatewayport.Error{Kind: gatewayport.KindNotFound, Status: 404, Message: "no active trip"}
}

func (c *Client) Matches(ctx context.Context, tripID domain.TripID) ([]domain.Match, error) {
	c.record("Matches")
	if c.MatchesFn != nil {
		return c.MatchesFn(ctx, tripID)
	}
	return nil, nil
}

func (c *Client) CancelTrip(ctx context.Context) error {
	c.record("CancelTrip")
	if c.CancelTripFn != nil {
		return c.CancelTripFn(ctx)
	}
	return nil
}

func (c *Client) Suggestions(ctx context.Context, query string) ([]domain.Suggestion, error) {
	c.record("Suggestions")
	if c.SuggestionsFn != nil {
		return c.SuggestionsFn(ctx, query)
	}
	return nil, nil
}

func (c *Client) Route(ctx context.Context, origin, destination domain.Coord) (gatewayport.Route, error) {
	c.record("Route")
	if c.RouteFn != nil {
		return c.RouteFn(ctx, origin, destination)
	}
	return gatewayport.Route{Coordinates: []domain.Coord{origin, destination}, DurationSeconds: 60}, nil
}
