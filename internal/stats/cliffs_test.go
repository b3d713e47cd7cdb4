package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCliffsDeltaFullySeparated(t *testing.T) {
	closed := []float64{2, 3, 4}
	open := []float64{10, 12, 14, 16, 18, 20, 22}

	got, err := CliffsDelta(closed, open)
	require.NoError(t, err)

	assert.InDelta(t, -1.0, got.Delta, 1e-9)
	assert.Equal(t, Large, got.Magnitude)

	reversed, err := CliffsDelta(open, closed)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, reversed.Delta, 1e-9)
}

func TestCliffsDeltaIdenticalSamples(t *testing.T) {
	got, err := CliffsDelta([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, got.Delta, 1e-9)
	assert.Equal(t, Negligible, got.Magnitude)
}

func TestCliffsDeltaEmptySample(t *testing.T) {
	_, err := CliffsDelta(nil, []float64{1})
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	_, err = CliffsDelta([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestDeltaMagnitudeThresholds(t *testing.T) {
	tests := []struct {
		delta float64
		want  Magnitude
	}{
		{0, Negligible},
		{0.146, Negligible},
		{-0.146, Negligible},
		{0.147, Small},
		{0.32, Small},
		{0.33, Medium},
		{-0.4, Medium},
		{0.474, Large},
		{-1, Large},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deltaMagnitude(tt.delta), "delta %v", tt.delta)
	}
}

func TestMagnitudeString(t *testing.T) {
	assert.Equal(t, "negligible", Negligible.String())
	assert.Equal(t, "small", Small.String())
	assert.Equal(t, "medium", Medium.String())
	assert.Equal(t, "large", Large.String())
}
