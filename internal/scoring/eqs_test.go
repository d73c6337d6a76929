package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/how3io/how3-backend/internal/contracts"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestEQSEmptyTable(t *testing.T) {
	e := newTestEngine(t)

	res := e.EQS(nil, "DEX")
	assert.Nil(t, res.Score)
}

func TestEQSSingleSource(t *testing.T) {
	e := newTestEngine(t)

	obs := []contracts.RevenueObservation{
		{ProtocolID: 1, Month: month(2026, time.May), Source: "swap_fees", TotalFees: 5_000_000},
		{ProtocolID: 1, Month: month(2026, time.June), Source: "swap_fees", TotalFees: 5_000_000, MoMChange: f(0)},
	}

	res := e.EQS(obs, "DEX")
	require.NotNil(t, res.Score)

	// Flat revenue from one source at the reference level: stability 100,
	// no diversification component, magnitude 100.
	assert.Equal(t, 100.0, res.Stability)
	assert.Nil(t, res.Diversification)
	assert.InDelta(t, 100.0, res.Magnitude, 1e-6)
	assert.InDelta(t, 100.0, *res.Score, 1e-6)
}

func TestEQSSingleSourceQualityIsStability(t *testing.T) {
	e := newTestEngine(t)

	obs := []contracts.RevenueObservation{
		{ProtocolID: 1, Month: month(2026, time.June), Source: "swap_fees", TotalFees: 5_000_000, MoMChange: f(0.5)},
	}

	res := e.EQS(obs, "DEX")
	require.NotNil(t, res.Score)

	// Stability 50 carries full weight without a second source
	assert.InDelta(t, 50.0, res.Stability, 1e-9)
	assert.InDelta(t, 50.0, *res.Score, 0.01)
}

func TestEQSMultiSource(t *testing.T) {
	e := newTestEngine(t)

	obs := []contracts.RevenueObservation{
		{ProtocolID: 1, Month: month(2026, time.June), Source: "a", TotalFees: 2_500_000, MoMChange: f(0)},
		{ProtocolID: 1, Month: month(2026, time.June), Source: "b", TotalFees: 2_500_000, MoMChange: f(0)},
	}

	res := e.EQS(obs, "DEX")
	require.NotNil(t, res.Score)
	require.NotNil(t, res.Diversification)

	// Equal sources: diversification 0, so quality = 0.7*100 + 0.3*0
	assert.Equal(t, 100.0, res.Stability)
	assert.Equal(t, 0.0, *res.Diversification)
	assert.InDelta(t, 70.0, *res.Score, 0.01)
}

func TestEQSOnlyLatestMonthCountsForSources(t *testing.T) {
	e := newTestEngine(t)

	// Source "b" stopped reporting; only the latest month defines the mix
	obs := []contracts.RevenueObservation{
		{ProtocolID: 1, Month: month(2026, time.May), Source: "a", TotalFees: 1_000_000},
		{ProtocolID: 1, Month: month(2026, time.May), Source: "b", TotalFees: 1_000_000},
		{ProtocolID: 1, Month: month(2026, time.June), Source: "a", TotalFees: 1_000_000, MoMChange: f(0)},
	}

	res := e.EQS(obs, "DEX")
	require.NotNil(t, res.Score)
	assert.Nil(t, res.Diversification)
}

func TestEQSMagnitudeDampens(t *testing.T) {
	e := newTestEngine(t)

	// Perfectly stable but tiny revenue must not score high
	obs := []contracts.RevenueObservation{
		{ProtocolID: 1, Month: month(2026, time.June), Source: "fees", TotalFees: 100, MoMChange: f(0)},
	}

	res := e.EQS(obs, "DEX")
	require.NotNil(t, res.Score)
	assert.Equal(t, 100.0, res.Stability)
	assert.Less(t, *res.Score, 35.0)
}
