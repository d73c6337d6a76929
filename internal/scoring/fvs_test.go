package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/how3io/how3-backend/internal/contracts"
)

func TestFVSMissingInputsNeutral(t *testing.T) {
	e := newTestEngine(t)

	cases := []contracts.ValuationSnapshot{
		{ProtocolID: 1, MarketCap: nil, AnnualRevenue: 1e6},
		{ProtocolID: 1, MarketCap: f(0), AnnualRevenue: 1e6},
		{ProtocolID: 1, MarketCap: f(1e9), AnnualRevenue: 0},
		{ProtocolID: 1, MarketCap: f(1e9), AnnualRevenue: -100},
	}

	for _, v := range cases {
		res := e.FVS(v, "DEX", nil)
		require.NotNil(t, res.Score)
		assert.True(t, res.Insufficient)
		assert.Nil(t, res.PSRatio)
		assert.Equal(t, 50.0, *res.Score)
	}
}

func TestFVSUndervalued(t *testing.T) {
	e := newTestEngine(t)

	// DEX thresholds 12.5/50; P/S 10 is at or below the floor
	v := contracts.ValuationSnapshot{ProtocolID: 1, MarketCap: f(1e9), AnnualRevenue: 1e8}
	res := e.FVS(v, "DEX", nil)

	require.NotNil(t, res.Score)
	require.NotNil(t, res.PSRatio)
	assert.InDelta(t, 10.0, *res.PSRatio, 1e-9)
	assert.Equal(t, 100.0, *res.Score)
}

func TestFVSOvervalued(t *testing.T) {
	e := newTestEngine(t)

	// P/S 100 is well past the DEX ceiling of 50
	v := contracts.ValuationSnapshot{ProtocolID: 1, MarketCap: f(1e10), AnnualRevenue: 1e8}
	res := e.FVS(v, "DEX", nil)

	require.NotNil(t, res.Score)
	assert.Equal(t, 0.0, *res.Score)
}

func TestFVSLinearInBetween(t *testing.T) {
	e := newTestEngine(t)

	// P/S 31.25 sits midway between 12.5 and 50
	v := contracts.ValuationSnapshot{ProtocolID: 1, MarketCap: f(3.125e9), AnnualRevenue: 1e8}
	res := e.FVS(v, "DEX", nil)

	require.NotNil(t, res.Score)
	assert.InDelta(t, 50.0, *res.Score, 0.01)
}

func TestFVSUnknownCategoryPeerMedian(t *testing.T) {
	e := newTestEngine(t)

	// Peer median 20 -> thresholds 10/40; P/S 25 -> 100*(40-25)/30 = 50
	peers := []float64{10, 20, 30}
	v := contracts.ValuationSnapshot{ProtocolID: 1, MarketCap: f(2.5e9), AnnualRevenue: 1e8}
	res := e.FVS(v, "NFT", peers)

	require.NotNil(t, res.Score)
	assert.InDelta(t, 50.0, *res.Score, 0.01)
}

func TestFVSUnknownCategoryDefaultThresholds(t *testing.T) {
	e := newTestEngine(t)

	// No peers: default 5/50 pair; P/S 27.5 is midway
	v := contracts.ValuationSnapshot{ProtocolID: 1, MarketCap: f(2.75e9), AnnualRevenue: 1e8}
	res := e.FVS(v, "NFT", nil)

	require.NotNil(t, res.Score)
	assert.InDelta(t, 50.0, *res.Score, 0.01)
}
