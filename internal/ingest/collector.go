// Package ingest refreshes the metric tables behind the scoring engine:
// revenue and user observations from Dune, market caps from the market data
// provider. One refresh per protocol is self-contained, so a failed upstream
// only costs that protocol its update.
package ingest

import (
	"context"
	"fmt"
	"sort"

	"github.com/how3io/how3-backend/internal/contracts"
	"github.com/how3io/how3-backend/internal/external/dune"
	"github.com/how3io/how3-backend/internal/store"
	"github.com/how3io/how3-backend/pkg/logger"
	"github.com/how3io/how3-backend/pkg/metrics"
)

// queryRunner is the slice of the Dune client the collector uses
type queryRunner interface {
	RunQuery(ctx context.Context, queryID int64) ([]map[string]any, error)
}

// capProvider supplies current market caps
type capProvider interface {
	MarketCap(ctx context.Context, symbol, slug string) (*float64, error)
}

// Collector pulls fresh observations for tracked protocols
type Collector struct {
	store    *store.Store
	dune     queryRunner
	market   capProvider
	registry *Registry
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// NewCollector creates a collector over the given sources
func NewCollector(s *store.Store, d queryRunner, m capProvider, reg *Registry, log *logger.Logger, met *metrics.Metrics) *Collector {
	return &Collector{
		store:    s,
		dune:     d,
		market:   m,
		registry: reg,
		logger:   log,
		metrics:  met,
	}
}

// RefreshAll refreshes every protocol in the catalog. Per-protocol failures
// are logged and counted but do not stop the sweep; the returned error only
// reports that some protocols failed.
func (c *Collector) RefreshAll(ctx context.Context) error {
	protocols, err := c.store.ListProtocols(ctx)
	if err != nil {
		return fmt.Errorf("list protocols: %w", err)
	}

	var failed int
	for _, p := range protocols {
		if err := c.Refresh(ctx, p); err != nil {
			failed++
			c.logger.WithFields(map[string]interface{}{
				"protocol": p.Symbol,
				"error":    err.Error(),
			}).Error("Protocol refresh failed")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d protocols failed to refresh", failed, len(protocols))
	}
	return nil
}

// Refresh updates one protocol's metric tables end to end
func (c *Collector) Refresh(ctx context.Context, p *contracts.Protocol) error {
	qs, ok := c.registry.Lookup(p.Symbol)
	if !ok {
		return fmt.Errorf("no query set registered for %s", p.Symbol)
	}

	adapter := dune.AdapterFor(p.Symbol)

	if err := c.refreshRevenue(ctx, p, qs, adapter); err != nil {
		c.metrics.UpstreamErrors.WithLabelValues("dune").Inc()
		return fmt.Errorf("revenue: %w", err)
	}

	if err := c.refreshUsers(ctx, p, qs, adapter); err != nil {
		c.metrics.UpstreamErrors.WithLabelValues("dune").Inc()
		return fmt.Errorf("users: %w", err)
	}

	if err := c.refreshMarketCap(ctx, p, qs); err != nil {
		// Market cap is optional input; FVS degrades to neutral without it
		c.metrics.UpstreamErrors.WithLabelValues("market").Inc()
		c.logger.WithFields(map[string]interface{}{
			"protocol": p.Symbol,
			"error":    err.Error(),
		}).Warn("Market cap refresh failed")
	}

	c.logger.WithField("protocol", p.Symbol).Info("Protocol refreshed")
	return nil
}

func (c *Collector) refreshRevenue(ctx context.Context, p *contracts.Protocol, qs QuerySet, adapter dune.Adapter) error {
	rows, err := c.dune.RunQuery(ctx, qs.RevenueQueryID)
	if err != nil {
		return err
	}

	obs := adapter.RevenueRows(p.ID, rows)
	refs := make([]*contracts.RevenueObservation, len(obs))
	for i := range obs {
		refs[i] = &obs[i]
	}

	if err := c.store.Revenue.SaveBatch(ctx, refs); err != nil {
		return err
	}
	if err := c.store.Revenue.BackfillMoMChanges(ctx, p.ID); err != nil {
		return err
	}
	return c.store.Protocols.RefreshAnnualRevenue(ctx, p.ID)
}

func (c *Collector) refreshUsers(ctx context.Context, p *contracts.Protocol, qs QuerySet, adapter dune.Adapter) error {
	rows, err := c.dune.RunQuery(ctx, qs.UserQueryID)
	if err != nil {
		return err
	}

	obs := adapter.UserRows(p.ID, rows)
	FillGrowthRates(obs)

	for i := range obs {
		if err := c.store.Users.Save(ctx, &obs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) refreshMarketCap(ctx context.Context, p *contracts.Protocol, qs QuerySet) error {
	cap, err := c.market.MarketCap(ctx, p.Symbol, qs.Slug)
	if err != nil {
		return err
	}
	return c.store.Protocols.UpdateMarketCap(ctx, p.ID, cap)
}

// FillGrowthRates computes month-over-month growth for each user metric from
// the prior month's observation. First observed months keep nil growth, as
// does any metric whose prior value was zero.
func FillGrowthRates(obs []contracts.UserObservation) {
	sort.Slice(obs, func(i, j int) bool { return obs[i].Month.Before(obs[j].Month) })

	for i := 1; i < len(obs); i++ {
		prev, cur := &obs[i-1], &obs[i]
		if !prev.Month.AddDate(0, 1, 0).Equal(cur.Month) {
			continue
		}

		if prev.ActiveAddresses > 0 {
			g := float64(cur.ActiveAddresses-prev.ActiveAddresses) / float64(prev.ActiveAddresses)
			cur.AddressGrowth = &g
		}
		if prev.TransactionCount > 0 {
			g := float64(cur.TransactionCount-prev.TransactionCount) / float64(prev.TransactionCount)
			cur.TxCountGrowth = &g
		}
		if prev.TransactionVolume > 0 {
			g := (cur.TransactionVolume - prev.TransactionVolume) / prev.TransactionVolume
			cur.TxVolumeGrowth = &g
		}
	}
}
