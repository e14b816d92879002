package domain

import (
	"fmt"
	"math"
)

// FormatDuration renders a route duration (in seconds) as trip-card wording.
//
// Durations of an hour or more render as "{H} Hours and {M} Minutes" with the
// minute remainder rounded to the nearest whole minute; shorter durations render
// as "{M} Minutes and {S} Seconds" with minutes floored and the fractional minute
// rounded to the nearest whole second.
func FormatDuration(seconds float64) string {
	minutes := seconds / 60

	if minutes >= 60 {
		hours := int(math.Floor(minutes / 60))
		rem := int(math.Round(math.Mod(minutes, 60)))
		return fmt.Sprintf("%d Hours and %d Minutes", hours, rem)
	}

	whole := math.Floor(minutes)
	secs := int(math.Round((minutes - whole) * 60))
	return fmt.Sprintf("%d Minutes and %d Seconds", int(whole), secs)
}
