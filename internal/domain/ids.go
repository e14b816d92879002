package domain

// TripID identifies a submitted trip. The backend assigns it; the client treats it
// as an opaque handle used only to fetch matches.
type TripID int64
