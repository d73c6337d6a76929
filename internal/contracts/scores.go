package contracts

import "time"

// ScoreRecord is one scoring run's output for a protocol.
// Records are append-only: every run creates a new record and prior records
// are kept as history for trend charts.
type ScoreRecord struct {
	ID         int64     `json:"id,omitempty"`
	ProtocolID int64     `json:"protocol_id"`
	ComputedAt time.Time `json:"computed_at"`

	// Sub-scores in [0,100]; nil when the underlying data was insufficient.
	EQS *float64 `json:"eqs,omitempty"`
	UGS *float64 `json:"ugs,omitempty"`
	FVS *float64 `json:"fvs,omitempty"`
	SS  *float64 `json:"ss,omitempty"`

	// How3 is the weighted composite, nil only when every sub-score is nil.
	How3 *float64 `json:"how3,omitempty"`
}

// Complete reports whether every sub-score was computable
func (r *ScoreRecord) Complete() bool {
	return r.EQS != nil && r.UGS != nil && r.FVS != nil && r.SS != nil
}

// SubScores returns the four sub-scores in canonical order (EQS, UGS, FVS, SS)
func (r *ScoreRecord) SubScores() []*float64 {
	return []*float64{r.EQS, r.UGS, r.FVS, r.SS}
}
