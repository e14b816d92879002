package gateway

import (
	"context"

	"github.com/rideshare-app/rideshare-client/internal/domain"
)

// RegisterAccountInput is the account creation payload.
type RegisterAccountInput struct {
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Password string `json:"password"`
}

// Credentials is the token response from a successful login.
type Credentials struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Route is a resolved path between two coordinates.
type Route struct {
	Coordinates     []domain.Coord
	DurationSeconds float64
}

// Client is the backend HTTP surface the app consumes. Implementations attach the
// current credential as a bearer header on every call, perform no retries, and
// never mutate domain state — retry policy belongs to the callers.
type Client interface {
	RegisterAccount(ctx context.Context, in RegisterAccountInput) (message string, err error)
	Login(ctx context.Context, username, password string) (Credentials, error)
	UpdatePushToken(ctx context.Context, token string) error

	PostTrip(ctx context.Context, req domain.TripRequest) error
	// TripStatus reports whether the authenticated user has an active trip.
	TripStatus(ctx context.Context) (bool, error)
	// FetchTrip resolves the current trip id. A not-found error means "no active
	// trip", which callers treat as state, not failure.
	FetchTrip(ctx context.Context) (domain.TripID, error)
	Matches(ctx context.Context, tripID domain.TripID) ([]domain.Match, error)
	CancelTrip(ctx context.Context) error

	Suggestions(ctx context.Context, query string) ([]domain.Suggestion, error)
	Route(ctx context.Context, origin, destination domain.Coord) (Route, error)
}
