package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiversificationSingleSource(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, 0.0, e.Diversification(nil))
	assert.Equal(t, 0.0, e.Diversification(map[string]float64{"swap_fees": 100_000}))
}

func TestDiversificationZeroRevenue(t *testing.T) {
	e := newTestEngine(t)

	got := e.Diversification(map[string]float64{"a": 0, "b": 0})
	assert.Equal(t, 0.0, got)
}

func TestDiversificationTwoEqualSources(t *testing.T) {
	e := newTestEngine(t)

	// Equal sources have zero variance
	got := e.Diversification(map[string]float64{"a": 500_000, "b": 500_000})
	assert.Equal(t, 0.0, got)
}

func TestDiversificationKnownValue(t *testing.T) {
	e := newTestEngine(t)

	// mean 300, sample stddev sqrt((200^2+200^2)/1)... values 100, 500:
	// mean 300, stddev ~282.84, cv ~0.9428 -> 47.14
	got := e.Diversification(map[string]float64{"a": 100, "b": 500})
	assert.InDelta(t, 47.14, got, 0.01)
}

func TestDiversificationCapsAtHundred(t *testing.T) {
	e := newTestEngine(t)

	// One dominant source drives the coefficient of variation past 2
	got := e.Diversification(map[string]float64{
		"a": 10_000_000,
		"b": 1,
		"c": 1,
		"d": 1,
		"e": 1,
	})
	assert.Equal(t, 100.0, got)
}
