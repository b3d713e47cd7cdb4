package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/prloop/internal/stats"
)

func TestFormatCells(t *testing.T) {
	p := 0.02263
	effect := -1.0

	assert.Equal(t, "0.3", Num(0.3))
	assert.Equal(t, "16", Num(16))
	assert.Equal(t, "2.50", Fixed(2.5))
	assert.Equal(t, "7", Int(7))
	assert.Equal(t, "30.00%", Percent(0.3))
	assert.Equal(t, "100.00%", Percent(1))

	assert.Equal(t, NA, PValue(nil))
	assert.Equal(t, "0.0226", PValue(&p))

	assert.Equal(t, NA, Effect(nil, ""))
	assert.Equal(t, "-1.000 (large)", Effect(&effect, "large"))
	assert.Equal(t, "-1.000", Effect(&effect, ""))

	assert.Equal(t, NA, Optional(nil))
	assert.Equal(t, "0.3", Optional(fptr(0.3)))
}

func TestStatMarksEmptySamples(t *testing.T) {
	assert.Equal(t, NA, Stat(0, 0))
	assert.Equal(t, "3.14", Stat(3.14159, 5))
}

func TestRateMarksEmptyCohorts(t *testing.T) {
	assert.Equal(t, NA, Rate(stats.Descriptive{}))
	assert.Equal(t, "80.00%", Rate(stats.Descriptive{Count: 5, Mean: 0.8}))
}
