package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return e
}

func f(v float64) *float64 { return &v }

func TestStabilityNoHistory(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, 50.0, e.Stability(nil))
	assert.Equal(t, 50.0, e.Stability([]*float64{}))
	assert.Equal(t, 50.0, e.Stability([]*float64{nil, nil, nil}))
}

func TestStabilityZeroVolatility(t *testing.T) {
	e := newTestEngine(t)

	got := e.Stability([]*float64{f(0), f(0), f(0)})
	assert.Equal(t, 100.0, got)
}

func TestStabilityHighVolatilityFloorsAtZero(t *testing.T) {
	e := newTestEngine(t)

	// Average absolute swing of 150% per month
	got := e.Stability([]*float64{f(1.5), f(-1.5)})
	assert.Equal(t, 0.0, got)
}

func TestStabilityMixed(t *testing.T) {
	e := newTestEngine(t)

	// |0.1|, |0.3|, nil dropped -> mean 0.2 -> 80
	got := e.Stability([]*float64{f(0.1), nil, f(-0.3)})
	assert.InDelta(t, 80.0, got, 1e-9)
}

func TestStabilityNegativeSwingsCountByMagnitude(t *testing.T) {
	e := newTestEngine(t)

	up := e.Stability([]*float64{f(0.25)})
	down := e.Stability([]*float64{f(-0.25)})
	assert.Equal(t, up, down)
	assert.InDelta(t, 75.0, up, 1e-9)
}
