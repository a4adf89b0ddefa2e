package pricing

import "fmt"

// DefaultCandidateCount gives roughly 0.15% price steps across the
// default +/-3% search band.
const DefaultCandidateCount = 41

// DefaultChangeWindowPct bounds the grid around the last price when no
// max_change_pct guardrail is configured.
const DefaultChangeWindowPct = 0.03

// GenerateCandidates builds a deterministic ascending price grid around
// lastPrice. The band is lastPrice*(1 +/- changePct), then clipped to the
// optional floor and ceiling. count <= 0 falls back to
// DefaultCandidateCount; count == 1 is rejected because a single-point grid
// cannot bracket the band.
func GenerateCandidates(lastPrice float64, maxChangePct *float64, minPrice, maxPrice *float64, count int) ([]float64, error) {
	if lastPrice <= 0 {
		return nil, fmt.Errorf("%w: last price %.4f must be positive", ErrInvalidRange, lastPrice)
	}
	if count <= 0 {
		count = DefaultCandidateCount
	}
	if count == 1 {
		return nil, fmt.Errorf("%w: count must be at least 2", ErrInvalidRange)
	}

	changePct := DefaultChangeWindowPct
	if maxChangePct != nil {
		changePct = *maxChangePct
	}

	lower := lastPrice * (1 - changePct)
	upper := lastPrice * (1 + changePct)
	if minPrice != nil && lower < *minPrice {
		lower = *minPrice
	}
	if maxPrice != nil && upper > *maxPrice {
		upper = *maxPrice
	}
	if lower > upper {
		return nil, fmt.Errorf("%w: lower bound %.4f above upper bound %.4f", ErrInvalidRange, lower, upper)
	}

	grid := make([]float64, count)
	step := (upper - lower) / float64(count-1)
	for i := range grid {
		grid[i] = lower + step*float64(i)
	}
	// Land exactly on the upper bound despite float accumulation.
	grid[count-1] = upper
	return grid, nil
}
