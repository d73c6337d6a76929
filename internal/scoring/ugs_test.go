package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/how3io/how3-backend/internal/contracts"
)

func TestUGSNoObservation(t *testing.T) {
	e := newTestEngine(t)

	res := e.UGS(nil)
	assert.Nil(t, res.Score)

	res = e.UGS(&contracts.UserObservation{ProtocolID: 1, Month: month(2026, time.June)})
	assert.Nil(t, res.Score)
}

func TestUGSRankedWithGrowth(t *testing.T) {
	e := newTestEngine(t)

	obs := &contracts.UserObservation{
		ProtocolID:        1,
		Month:             month(2026, time.June),
		ActiveAddresses:   1000,
		TransactionCount:  5000,
		TransactionVolume: 1e7,
		AddressGrowth:     f(0.2),  // gs 60
		TxCountGrowth:     f(-0.4), // gs 30
		TxVolumeGrowth:    f(0),    // gs 50
	}
	obs.SetPercentile(contracts.MetricActiveAddresses, 0.8)   // ps 80
	obs.SetPercentile(contracts.MetricTransactionCount, 0.5)  // ps 50
	obs.SetPercentile(contracts.MetricTransactionVolume, 0.3) // ps 30

	res := e.UGS(obs)
	require.NotNil(t, res.Score)
	assert.False(t, res.Degraded)

	// components: addresses (80+60)/2=70, count (50+30)/2=40, volume (30+50)/2=40
	assert.InDelta(t, 70.0, res.Components[contracts.MetricActiveAddresses], 1e-9)
	assert.InDelta(t, 40.0, res.Components[contracts.MetricTransactionCount], 1e-9)
	assert.InDelta(t, 40.0, res.Components[contracts.MetricTransactionVolume], 1e-9)

	// 0.4*70 + 0.3*40 + 0.3*40 = 52
	assert.InDelta(t, 52.0, *res.Score, 0.01)
}

func TestUGSGrowthClamped(t *testing.T) {
	e := newTestEngine(t)

	obs := &contracts.UserObservation{
		ProtocolID:      1,
		Month:           month(2026, time.June),
		ActiveAddresses: 1000,
		AddressGrowth:   f(7.5), // clamps to +100%
	}
	obs.SetPercentile(contracts.MetricActiveAddresses, 0.5)

	res := e.UGS(obs)
	require.NotNil(t, res.Score)

	// (50 + 100) / 2 with the full weight on the only metric
	assert.InDelta(t, 75.0, *res.Score, 0.01)
}

func TestUGSWeightsRenormalize(t *testing.T) {
	e := newTestEngine(t)

	// Only two of three metrics have data; their 0.4/0.3 weights renormalize
	obs := &contracts.UserObservation{
		ProtocolID:       1,
		Month:            month(2026, time.June),
		ActiveAddresses:  1000,
		TransactionCount: 5000,
	}
	obs.SetPercentile(contracts.MetricActiveAddresses, 1.0)  // ps 100
	obs.SetPercentile(contracts.MetricTransactionCount, 0.3) // ps 30

	res := e.UGS(obs)
	require.NotNil(t, res.Score)

	// (0.4*100 + 0.3*30) / 0.7 = 70
	assert.InDelta(t, 70.0, *res.Score, 0.01)
}

func TestUGSDegradedFallback(t *testing.T) {
	e := newTestEngine(t)

	// No percentile ranks at all: absolute log scaling kicks in
	obs := &contracts.UserObservation{
		ProtocolID:      1,
		Month:           month(2026, time.June),
		ActiveAddresses: 10_000, // 25*log10(10000) = 100
	}

	res := e.UGS(obs)
	require.NotNil(t, res.Score)
	assert.True(t, res.Degraded)
	assert.InDelta(t, 100.0, *res.Score, 0.01)
}

func TestUGSDegradedWithGrowth(t *testing.T) {
	e := newTestEngine(t)

	obs := &contracts.UserObservation{
		ProtocolID:      1,
		Month:           month(2026, time.June),
		ActiveAddresses: 100,     // degraded ps 50
		AddressGrowth:   f(-0.5), // gs 25
	}

	res := e.UGS(obs)
	require.NotNil(t, res.Score)
	assert.True(t, res.Degraded)
	assert.InDelta(t, 37.5, *res.Score, 0.01)
}
