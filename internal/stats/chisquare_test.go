package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChiSquareIndependence2x2AppliesYates(t *testing.T) {
	observed := [][]int64{
		{10, 20},
		{30, 5},
	}

	got, err := ChiSquareIndependence(observed)
	require.NoError(t, err)

	// Yates-corrected 2x2 shortcut: n(|ad-bc|-n/2)^2 / (r1 r2 c1 c2).
	assert.Equal(t, 1, got.DOF)
	assert.InDelta(t, 16.5785, got.Statistic, 0.01)
	assert.Less(t, got.PValue, 0.001)
}

func TestChiSquareIndependence2x3(t *testing.T) {
	observed := [][]int64{
		{20, 30, 50},
		{30, 30, 40},
	}

	got, err := ChiSquareIndependence(observed)
	require.NoError(t, err)

	assert.Equal(t, 2, got.DOF)
	assert.InDelta(t, 3.1111, got.Statistic, 1e-3)
	assert.InDelta(t, math.Exp(-got.Statistic/2), got.PValue, 1e-9)
}

func TestChiSquareIndependenceUniformTable(t *testing.T) {
	got, err := ChiSquareIndependence([][]int64{{10, 10}, {10, 10}})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, got.Statistic, 1e-9)
	assert.InDelta(t, 1.0, got.PValue, 1e-9)
}

func TestChiSquareIndependenceDropsZeroMargins(t *testing.T) {
	observed := [][]int64{
		{10, 20},
		{0, 0},
		{30, 5},
	}

	got, err := ChiSquareIndependence(observed)
	require.NoError(t, err)

	assert.Equal(t, 1, got.DOF)
	assert.InDelta(t, 16.5785, got.Statistic, 0.01)
}

func TestChiSquareIndependenceDegenerate(t *testing.T) {
	tests := []struct {
		name     string
		observed [][]int64
	}{
		{"empty", nil},
		{"empty row", [][]int64{{}}},
		{"one informative row", [][]int64{{0, 0}, {5, 7}}},
		{"one informative column", [][]int64{{3, 0}, {5, 0}}},
		{"ragged", [][]int64{{1, 2}, {3}}},
		{"negative count", [][]int64{{1, -2}, {3, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChiSquareIndependence(tt.observed)
			assert.ErrorIs(t, err, ErrDegenerateTable)
		})
	}
}

func TestChiSquareSurvivalCriticalValues(t *testing.T) {
	// 95th percentiles of the chi-square distribution.
	assert.InDelta(t, 0.05, chiSquareSurvival(3.841459, 1), 1e-4)
	assert.InDelta(t, 0.05, chiSquareSurvival(5.991465, 2), 1e-4)
	assert.InDelta(t, 0.05, chiSquareSurvival(9.487729, 4), 1e-4)
	assert.InDelta(t, 0.01, chiSquareSurvival(6.634897, 1), 1e-4)
	assert.InDelta(t, 1.0, chiSquareSurvival(0, 3), 1e-9)
}

func TestNormalCDF(t *testing.T) {
	assert.InDelta(t, 0.5, normalCDF(0), 1e-12)
	assert.InDelta(t, 0.975, normalCDF(1.959964), 1e-5)
	assert.InDelta(t, 0.025, normalCDF(-1.959964), 1e-5)
}
