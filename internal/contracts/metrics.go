package contracts

import "time"

// RevenueObservation is one month of fees for one revenue source of a
// protocol. At most one observation exists per (protocol, month, source).
// Observations are appended as new months arrive and never mutated, except
// to backfill MoMChange once a prior month exists.
type RevenueObservation struct {
	ProtocolID int64     `json:"protocol_id"`
	Month      time.Time `json:"month"` // first of month, UTC
	Source     string    `json:"source"`
	TotalFees  float64   `json:"total_fees"`
	// MoMChange is the month-over-month fractional change for this source.
	// Nil for the first observed month of a source.
	MoMChange *float64 `json:"mom_change,omitempty"`
}

// UserMetric identifies one of the three ranked user metrics
type UserMetric string

const (
	MetricActiveAddresses   UserMetric = "active_addresses"
	MetricTransactionCount  UserMetric = "transaction_count"
	MetricTransactionVolume UserMetric = "transaction_volume"
)

// UserMetrics lists the ranked metrics in weighting order
var UserMetrics = []UserMetric{
	MetricActiveAddresses,
	MetricTransactionCount,
	MetricTransactionVolume,
}

// UserObservation is one month of user activity for a protocol.
// At most one observation exists per (protocol, month). Growth rates are
// nil for the first observed month; percentile ranks are nil until a
// ranking pass has run for the (category, month) cohort.
type UserObservation struct {
	ProtocolID        int64     `json:"protocol_id"`
	Month             time.Time `json:"month"`
	ActiveAddresses   int64     `json:"active_addresses"`
	TransactionCount  int64     `json:"transaction_count"`
	TransactionVolume float64   `json:"transaction_volume"`

	AddressGrowth  *float64 `json:"active_address_growth_rate,omitempty"`
	TxCountGrowth  *float64 `json:"transaction_count_growth_rate,omitempty"`
	TxVolumeGrowth *float64 `json:"transaction_volume_growth_rate,omitempty"`

	AddressPercentile  *float64 `json:"active_address_percentile,omitempty"`
	TxCountPercentile  *float64 `json:"transaction_count_percentile,omitempty"`
	TxVolumePercentile *float64 `json:"transaction_volume_percentile,omitempty"`
}

// Value returns the raw value for a metric
func (o *UserObservation) Value(m UserMetric) float64 {
	switch m {
	case MetricActiveAddresses:
		return float64(o.ActiveAddresses)
	case MetricTransactionCount:
		return float64(o.TransactionCount)
	case MetricTransactionVolume:
		return o.TransactionVolume
	}
	return 0
}

// Growth returns the growth rate for a metric, nil when unknown
func (o *UserObservation) Growth(m UserMetric) *float64 {
	switch m {
	case MetricActiveAddresses:
		return o.AddressGrowth
	case MetricTransactionCount:
		return o.TxCountGrowth
	case MetricTransactionVolume:
		return o.TxVolumeGrowth
	}
	return nil
}

// Percentile returns the percentile rank for a metric, nil until ranked
func (o *UserObservation) Percentile(m UserMetric) *float64 {
	switch m {
	case MetricActiveAddresses:
		return o.AddressPercentile
	case MetricTransactionCount:
		return o.TxCountPercentile
	case MetricTransactionVolume:
		return o.TxVolumePercentile
	}
	return nil
}

// SetPercentile stores a percentile rank for a metric
func (o *UserObservation) SetPercentile(m UserMetric, rank float64) {
	switch m {
	case MetricActiveAddresses:
		o.AddressPercentile = &rank
	case MetricTransactionCount:
		o.TxCountPercentile = &rank
	case MetricTransactionVolume:
		o.TxVolumePercentile = &rank
	}
}

// ValuationSnapshot holds the inputs for fair value scoring
type ValuationSnapshot struct {
	ProtocolID    int64    `json:"protocol_id"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	AnnualRevenue float64  `json:"annual_revenue"`
}

// MonthStart truncates t to the first day of its month in UTC
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
