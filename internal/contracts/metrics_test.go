package contracts

import (
	"testing"
	"time"
)

func TestUserObservation_MetricAccessors(t *testing.T) {
	growth := 0.12
	obs := &UserObservation{
		ActiveAddresses:   1500,
		TransactionCount:  42000,
		TransactionVolume: 1_250_000.5,
		AddressGrowth:     &growth,
	}

	if got := obs.Value(MetricActiveAddresses); got != 1500 {
		t.Errorf("Value(active_addresses) = %v, want 1500", got)
	}
	if got := obs.Value(MetricTransactionCount); got != 42000 {
		t.Errorf("Value(transaction_count) = %v, want 42000", got)
	}
	if got := obs.Value(MetricTransactionVolume); got != 1_250_000.5 {
		t.Errorf("Value(transaction_volume) = %v, want 1250000.5", got)
	}

	if g := obs.Growth(MetricActiveAddresses); g == nil || *g != 0.12 {
		t.Errorf("Growth(active_addresses) = %v, want 0.12", g)
	}
	if g := obs.Growth(MetricTransactionCount); g != nil {
		t.Errorf("Growth(transaction_count) = %v, want nil", g)
	}

	if p := obs.Percentile(MetricActiveAddresses); p != nil {
		t.Errorf("Percentile before ranking = %v, want nil", p)
	}

	obs.SetPercentile(MetricTransactionVolume, 0.75)
	if p := obs.Percentile(MetricTransactionVolume); p == nil || *p != 0.75 {
		t.Errorf("Percentile after SetPercentile = %v, want 0.75", p)
	}
}

func TestSetPercentile_IndependentPointers(t *testing.T) {
	obs := &UserObservation{}
	obs.SetPercentile(MetricActiveAddresses, 0.1)
	obs.SetPercentile(MetricTransactionCount, 0.2)

	if *obs.AddressPercentile != 0.1 || *obs.TxCountPercentile != 0.2 {
		t.Errorf("percentiles overwrote each other: %v %v",
			*obs.AddressPercentile, *obs.TxCountPercentile)
	}
}

func TestMonthStart(t *testing.T) {
	ts := time.Date(2025, 3, 17, 13, 45, 2, 0, time.UTC)
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	if got := MonthStart(ts); !got.Equal(want) {
		t.Errorf("MonthStart() = %v, want %v", got, want)
	}
}

func TestScoreRecord_Complete(t *testing.T) {
	r := &ScoreRecord{
		EQS: FloatPtr(80),
		UGS: FloatPtr(70),
		FVS: FloatPtr(60),
	}
	if r.Complete() {
		t.Error("record missing SS should not be complete")
	}

	r.SS = FloatPtr(50)
	if !r.Complete() {
		t.Error("record with all sub-scores should be complete")
	}
}
