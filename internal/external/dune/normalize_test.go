package dune

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAdapterRevenueRows(t *testing.T) {
	rows := []map[string]any{
		{"month": "2026-06-01 00:00:00", "source": "ocr", "total_fees": 3395286.26},
		{"month": "2026-06-01 00:00:00", "source": "vrf", "total_fees": "31244.75"},
		{"month": "2026-06-01 00:00:00", "source": "bad"}, // no fee column
		{"source": "ocr", "total_fees": 1.0},              // no month
	}

	obs := AdapterFor("UNI").RevenueRows(7, rows)
	require.Len(t, obs, 2)

	assert.Equal(t, int64(7), obs[0].ProtocolID)
	assert.Equal(t, "ocr", obs[0].Source)
	assert.Equal(t, 3395286.26, obs[0].TotalFees)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), obs[0].Month)

	// Numeric strings parse too
	assert.Equal(t, 31244.75, obs[1].TotalFees)
}

func TestDefaultAdapterMissingSourceFallsBack(t *testing.T) {
	rows := []map[string]any{
		{"month": "2026-06-01", "total_fees": 100.0},
	}

	obs := AdapterFor("UNI").RevenueRows(1, rows)
	require.Len(t, obs, 1)
	assert.Equal(t, "total", obs[0].Source)
}

func TestDefaultAdapterUserRows(t *testing.T) {
	rows := []map[string]any{
		{
			"month":              "2026-06-01T00:00:00Z",
			"active_addresses":   45000.0,
			"transaction_count":  1200000.0,
			"transaction_volume": 8.4e9,
		},
	}

	obs := AdapterFor("UNI").UserRows(3, rows)
	require.Len(t, obs, 1)
	assert.Equal(t, int64(45000), obs[0].ActiveAddresses)
	assert.Equal(t, int64(1200000), obs[0].TransactionCount)
	assert.Equal(t, 8.4e9, obs[0].TransactionVolume)
}

func TestChainlinkAdapterScalesWeiVolume(t *testing.T) {
	rows := []map[string]any{
		{"month": "2026-06-01", "transaction_volume": 8.4e27}, // wei
		{"month": "2026-05-01", "transaction_volume": 8.4e9},  // already tokens
	}

	obs := AdapterFor("LINK").UserRows(1, rows)
	require.Len(t, obs, 2)
	assert.InDelta(t, 8.4e9, obs[0].TransactionVolume, 1e3)
	assert.InDelta(t, 8.4e9, obs[1].TransactionVolume, 1e3)
}

func TestAdapterForUnknownSymbol(t *testing.T) {
	assert.IsType(t, defaultAdapter{}, AdapterFor("???"))
}
