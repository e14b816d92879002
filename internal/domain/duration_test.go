package domain_test

import (
	"testing"

	"github.com/rideshare-app/rideshare-client/internal/domain"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"exactly one hour", 3600, "1 Hours and 0 Minutes"},
		{"one second under an hour", 3599, "59 Minutes and 59 Seconds"},
		{"two hours", 7200, "2 Hours and 0 Minutes"},
		{"half minute rounds up", 5430, "1 Hours and 31 Minutes"},
		{"minute and a half", 90, "1 Minutes and 30 Seconds"},
		{"under a minute", 59, "0 Minutes and 59 Seconds"},
		{"fractional seconds round", 45.4, "0 Minutes and 45 Seconds"},
		{"zero", 0, "0 Minutes and 0 Seconds"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := domain.FormatDuration(tc.seconds); got != tc.want {
				t.Fatalf("FormatDuration(%v) = %q, want %q", tc.seconds, got, tc.want)
			}
		})
	}
}

func TestTripDraftComplete(t *testing.T) {
	t.Parallel()

	var d domain.TripDraft
	if d.Complete() {
		t.Fatal("empty draft must not be complete")
	}

	d.Origin = &domain.Coord{Latitude: 6.5, Longitude: 3.4}
	if d.Complete() {
		t.Fatal("draft with only an origin must not be complete")
	}

	d.Destination = &domain.Coord{Latitude: 6.6, Longitude: 3.5}
	if !d.Complete() {
		t.Fatal("draft with both endpoints must be complete")
	}
}
