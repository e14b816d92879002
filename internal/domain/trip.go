package domain

import "time"

type TripStatus string

const (
	TripStatusNone      TripStatus = "NONE"
	TripStatusPending   TripStatus = "PENDING"
	TripStatusMatched   TripStatus = "MATCHED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Coord is a WGS84 coordinate. The JSON shape matches the backend's
// route_coordinates entries.
type Coord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TripDraft accumulates user input for an unsent trip. At most one draft exists
// client-side at a time; submitting it clears it.
type TripDraft struct {
	OriginName      string
	DestinationName string

	Origin      *Coord
	Destination *Coord

	// RouteCoordinates and DurationText are derived once both endpoints are set.
	RouteCoordinates []Coord
	DurationText     string

	ScheduledTime *time.Time
}

// Complete reports whether the draft has both endpoints selected.
func (d TripDraft) Complete() bool {
	return d.Origin != nil && d.Destination != nil
}

// TripRequest is the immutable submission shape. The backend expects the bearer
// token duplicated in the body in addition to the auth header.
type TripRequest struct {
	OriginName       string    `json:"origin_name"`
	TargetName       string    `json:"target_name"`
	Time             time.Time `json:"time"`
	RouteCoordinates []Coord   `json:"route_coordinates"`
	AccessToken      string    `json:"access_token"`
}

// Match is a server-provided candidate trip compatible with the user's pending
// trip. Ordering is server-determined and preserved as-is.
type Match struct {
	ID          int64     `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Gender      string    `json:"gender"`
	Time        time.Time `json:"time"`
}

// Suggestion is an ephemeral place candidate for free-text input. Result sets are
// replaced wholesale on every successful lookup, never merged.
type Suggestion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Place       string `json:"place"`
	Coordinates Coord  `json:"coordinates"`
}
