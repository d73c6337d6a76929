package contracts

import "time"

// Protocol represents a tracked crypto protocol
type Protocol struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	MarketCap   *float64  `json:"market_cap,omitempty"`
	// AnnualRevenue is the trailing-12-month sum of total fees across all
	// revenue sources, recomputed whenever new revenue observations land.
	AnnualRevenue float64   `json:"annual_revenue"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CategoryPeerSet groups all protocols sharing a category label.
// Runtime-only: assembled by the pipeline for percentile ranking and
// FVS peer-threshold fallback, never persisted.
type CategoryPeerSet struct {
	Category  string
	Protocols []*Protocol
}

// FloatPtr returns a pointer to v. Convenience for nullable scores.
func FloatPtr(v float64) *float64 {
	return &v
}
