package dune

import (
	"strconv"
	"time"

	"github.com/how3io/how3-backend/internal/contracts"
)

// Adapter shapes raw Dune result rows into metric observations. Queries are
// maintained per protocol and their column conventions drift, so protocols
// with quirky outputs get their own adapter.
type Adapter interface {
	// RevenueRows maps result rows to revenue observations. Rows without a
	// parsable month or fee amount are skipped.
	RevenueRows(protocolID int64, rows []map[string]any) []contracts.RevenueObservation

	// UserRows maps result rows to user observations
	UserRows(protocolID int64, rows []map[string]any) []contracts.UserObservation
}

// adapters maps protocol symbols to their row adapters
var adapters = map[string]Adapter{
	"LINK": chainlinkAdapter{},
}

// AdapterFor returns the adapter for a protocol symbol
func AdapterFor(symbol string) Adapter {
	if a, ok := adapters[symbol]; ok {
		return a
	}
	return defaultAdapter{}
}

// defaultAdapter understands the standard column names of the curated
// revenue and user queries.
type defaultAdapter struct{}

func (defaultAdapter) RevenueRows(protocolID int64, rows []map[string]any) []contracts.RevenueObservation {
	var obs []contracts.RevenueObservation
	for _, row := range rows {
		month, ok := rowTime(row, "month", "block_month", "period")
		if !ok {
			continue
		}
		fees, ok := rowFloat(row, "total_fees", "fees_usd", "revenue")
		if !ok {
			continue
		}

		source, _ := row["source"].(string)
		if source == "" {
			source = "total"
		}

		obs = append(obs, contracts.RevenueObservation{
			ProtocolID: protocolID,
			Month:      contracts.MonthStart(month),
			Source:     source,
			TotalFees:  fees,
		})
	}
	return obs
}

func (defaultAdapter) UserRows(protocolID int64, rows []map[string]any) []contracts.UserObservation {
	var obs []contracts.UserObservation
	for _, row := range rows {
		month, ok := rowTime(row, "month", "block_month", "period")
		if !ok {
			continue
		}

		o := contracts.UserObservation{
			ProtocolID: protocolID,
			Month:      contracts.MonthStart(month),
		}
		if v, ok := rowFloat(row, "active_addresses", "unique_users"); ok {
			o.ActiveAddresses = int64(v)
		}
		if v, ok := rowFloat(row, "transaction_count", "tx_count"); ok {
			o.TransactionCount = int64(v)
		}
		if v, ok := rowFloat(row, "transaction_volume", "volume_usd"); ok {
			o.TransactionVolume = v
		}
		obs = append(obs, o)
	}
	return obs
}

// chainlinkAdapter corrects the transaction volume column, which the
// Chainlink query reports in wei rather than whole tokens.
type chainlinkAdapter struct {
	defaultAdapter
}

func (a chainlinkAdapter) UserRows(protocolID int64, rows []map[string]any) []contracts.UserObservation {
	obs := a.defaultAdapter.UserRows(protocolID, rows)
	for i := range obs {
		if obs[i].TransactionVolume > 1e18 {
			obs[i].TransactionVolume /= 1e18
		}
	}
	return obs
}

// rowFloat reads the first present numeric column, accepting JSON numbers
// and numeric strings.
func rowFloat(row map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int64:
			return float64(n), true
		case int:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// rowTime reads the first present timestamp column. Dune emits timestamps
// in a handful of layouts depending on the column type.
func rowTime(row map[string]any, keys ...string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05.000 MST",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, key := range keys {
		s, ok := row[key].(string)
		if !ok || s == "" {
			continue
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
