package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics holds the loyalty-core counters. A nil *Metrics is a valid no-op
// receiver so services can treat it as optional.
type Metrics struct {
	registry *prometheus.Registry

	entriesAppended *prometheus.CounterVec
	duplicateEvents *prometheus.CounterVec
	stickersIssued  *prometheus.CounterVec
	redemptions     *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		entriesAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tessera",
			Name:      "ledger_entries_appended_total",
			Help:      "Point-earning events appended to the ledger.",
		}, []string{"tenant", "action_type"}),
		duplicateEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tessera",
			Name:      "ledger_duplicate_events_total",
			Help:      "Idempotency-key replays answered from the original entry.",
		}, []string{"tenant"}),
		stickersIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tessera",
			Name:      "stickers_issued_total",
			Help:      "Stickers issued per tenant and tier.",
		}, []string{"tenant", "tier"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tessera",
			Name:      "sticker_redemptions_total",
			Help:      "Redemption attempts by outcome.",
		}, []string{"tenant", "outcome"}),
	}

	registry.MustRegister(
		m.entriesAppended,
		m.duplicateEvents,
		m.stickersIssued,
		m.redemptions,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncEntryAppended(tenant, actionType string) {
	if m == nil {
		return
	}
	m.entriesAppended.WithLabelValues(tenant, actionType).Inc()
}

func (m *Metrics) IncDuplicateEvent(tenant string) {
	if m == nil {
		return
	}
	m.duplicateEvents.WithLabelValues(tenant).Inc()
}

func (m *Metrics) IncStickerIssued(tenant, tier string) {
	if m == nil {
		return
	}
	m.stickersIssued.WithLabelValues(tenant, tier).Inc()
}

func (m *Metrics) IncRedemption(tenant, outcome string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(tenant, outcome).Inc()
}

// Module provides the shared metrics registry.
var Module = fx.Module("metrics",
	fx.Provide(New),
)
