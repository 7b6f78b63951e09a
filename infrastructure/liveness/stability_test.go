package liveness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStabilityAccumulator(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		frames    []bool
		fired     bool
	}{
		{
			name:      "exactly threshold consecutive positives fires",
			threshold: 3,
			frames:    []bool{true, true, true},
			fired:     true,
		},
		{
			name:      "one short of threshold does not fire",
			threshold: 3,
			frames:    []bool{true, true},
			fired:     false,
		},
		{
			name:      "negative frame resets the streak",
			threshold: 3,
			frames:    []bool{true, true, false, true},
			fired:     false,
		},
		{
			name:      "single positive after a run of negatives does not fire",
			threshold: 3,
			frames:    []bool{false, false, false, true},
			fired:     false,
		},
		{
			name:      "streak rebuilt after reset fires",
			threshold: 2,
			frames:    []bool{true, false, true, true},
			fired:     true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			accumulator := NewStabilityAccumulator(test.threshold)
			fired := false
			for _, positive := range test.frames {
				fired = accumulator.Observe(positive)
			}
			assert.Equal(t, test.fired, fired)
		})
	}
}

func TestStabilityAccumulatorReset(t *testing.T) {
	accumulator := NewStabilityAccumulator(2)
	accumulator.Observe(true)
	accumulator.Reset()
	assert.Equal(t, 0, accumulator.Count())
	assert.False(t, accumulator.Observe(true))
	assert.True(t, accumulator.Observe(true))
}

func TestStabilityAccumulatorMinimumThreshold(t *testing.T) {
	accumulator := NewStabilityAccumulator(0)
	assert.True(t, accumulator.Observe(true))
}
