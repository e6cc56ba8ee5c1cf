package synthesis

// Thresholds collects the empirically chosen classifier constants. The
// defaults match long-observed product behavior; override only in tests or
// experiments.
type Thresholds struct {
	// DecliningDelta is the drop in positive-mood ratio between the older
	// and recent halves of the window that counts as a declining pattern.
	DecliningDelta float64
	// DecliningMinEntries is the minimum window size for declining-pattern
	// detection; below it the answer is always false.
	DecliningMinEntries int
	// VolatileFlipRatio is the fraction of adjacent mood flips that counts
	// as volatile.
	VolatileFlipRatio float64
	// VolatileMinEntries is the minimum window size for volatility
	// detection; below it the answer is always false.
	VolatileMinEntries int
	// NegativeMoodRatio is the negative-mood share that marks struggling.
	NegativeMoodRatio float64
	// PositiveMoodRatio is the positive-mood share that marks thriving.
	PositiveMoodRatio float64
}

// DefaultThresholds returns the production constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DecliningDelta:      0.2,
		DecliningMinEntries: 5,
		VolatileFlipRatio:   0.5,
		VolatileMinEntries:  4,
		NegativeMoodRatio:   0.6,
		PositiveMoodRatio:   0.7,
	}
}
