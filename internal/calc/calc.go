// Package calc holds the money and duration arithmetic for work entries.
// Every function is pure and rounds its result to 2 decimals so that
// floating-point drift never compounds across derived totals.
package calc

import (
	"fmt"
	"math"
	"time"

	internal "github.com/veidstad/craft-tracker/internal"
)

// Round2 rounds to 2 decimal places, the precision of every stored
// monetary value.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DurationHours returns the span between two RFC 3339 timestamps in hours,
// rounded to 2 decimals. End before start is an ordering violation; an
// end equal to start yields 0 (callers wanting strictly-positive spans
// must enforce that themselves).
func DurationHours(start, end string) (float64, error) {
	startAt, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return 0, internal.NewValidationError(
			fmt.Sprintf("invalid start time %q", start), internal.ErrCodeInvalidTimestamp).WithCause(err)
	}

	endAt, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return 0, internal.NewValidationError(
			fmt.Sprintf("invalid end time %q", end), internal.ErrCodeInvalidTimestamp).WithCause(err)
	}

	if endAt.Before(startAt) {
		return 0, internal.NewValidationError(
			"end time must not be before start time", internal.ErrCodeOrderingViolation)
	}

	return Round2(endAt.Sub(startAt).Hours()), nil
}

// LaborTotal is hours x hourly rate, rounded to 2 decimals.
func LaborTotal(hours, rate float64) (float64, error) {
	if hours < 0 || rate < 0 {
		return 0, internal.NewValidationError(
			"hours and rate must not be negative", internal.ErrCodeNegativeInput)
	}
	return Round2(hours * rate), nil
}

// KmTotal is kilometers x km rate, rounded to 2 decimals.
func KmTotal(km, rate float64) (float64, error) {
	if km < 0 || rate < 0 {
		return 0, internal.NewValidationError(
			"kilometers and rate must not be negative", internal.ErrCodeNegativeInput)
	}
	return Round2(km * rate), nil
}

// GrandTotal sums the three component totals, rounded to 2 decimals.
func GrandTotal(labor, km, expenses float64) (float64, error) {
	if labor < 0 || km < 0 || expenses < 0 {
		return 0, internal.NewValidationError(
			"totals must not be negative", internal.ErrCodeNegativeInput)
	}
	return Round2(labor + km + expenses), nil
}

// SumAmounts adds a list of expense amounts, rounded to 2 decimals.
func SumAmounts(amounts []float64) float64 {
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	return Round2(sum)
}
