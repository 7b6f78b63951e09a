package liveness

// StabilityAccumulator debounces noisy per-frame signals. A signal only
// counts once it has held for threshold consecutive frames; any negative
// frame resets the streak to zero.
type StabilityAccumulator struct {
	count     int
	threshold int
}

func NewStabilityAccumulator(threshold int) StabilityAccumulator {
	if threshold < 1 {
		threshold = 1
	}
	return StabilityAccumulator{threshold: threshold}
}

// Observe records one frame and reports whether the streak has reached the
// threshold on this frame.
func (a *StabilityAccumulator) Observe(positive bool) bool {
	if !positive {
		a.count = 0
		return false
	}
	a.count++
	return a.count >= a.threshold
}

func (a *StabilityAccumulator) Reset() {
	a.count = 0
}

func (a *StabilityAccumulator) Count() int {
	return a.count
}
