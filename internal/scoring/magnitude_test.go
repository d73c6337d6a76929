package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMagnitudeNonPositiveRevenue(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, 10.0, e.Magnitude(0, "DEX"))
	assert.Equal(t, 10.0, e.Magnitude(-5, "DEX"))
}

func TestMagnitudeReferenceScoresHundred(t *testing.T) {
	e := newTestEngine(t)

	got := e.Magnitude(5_000_000, "DEX")
	assert.InDelta(t, 100.0, got, 1e-6)
}

func TestMagnitudeAboveReferenceClamps(t *testing.T) {
	e := newTestEngine(t)

	got := e.Magnitude(50_000_000, "DEX")
	assert.Equal(t, 100.0, got)
}

func TestMagnitudeLogScaling(t *testing.T) {
	e := newTestEngine(t)

	// ln(1,000,001)/ln(5,000,001)*100 ~ 89.56
	got := e.Magnitude(1_000_000, "DEX")
	assert.InDelta(t, 89.56, got, 0.01)
	assert.Less(t, got, 100.0)
	assert.Greater(t, got, 0.0)
}

func TestMagnitudeCategoryReference(t *testing.T) {
	e := newTestEngine(t)

	// L1 uses a $20M reference, so $5M scores below 100 there
	dex := e.Magnitude(5_000_000, "DEX")
	l1 := e.Magnitude(5_000_000, "L1")
	assert.InDelta(t, 100.0, dex, 1e-6)
	assert.Less(t, l1, 100.0)
}

func TestMagnitudeUnknownCategoryUsesDefault(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, e.Magnitude(2_000_000, "DEX"), e.Magnitude(2_000_000, "SomethingNew"))
}
