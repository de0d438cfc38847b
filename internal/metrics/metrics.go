package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// Ingest results.
const (
	ResultCreated = "created"
	ResultUpdated = "updated"
	ResultFailed  = "failed"
)

// Assignment modes.
const (
	AssignmentAuto   = "auto"
	AssignmentManual = "manual"
)

// Webhook outcomes.
const (
	WebhookAccepted  = "accepted"
	WebhookDuplicate = "duplicate"
	WebhookRejected  = "rejected"
	WebhookFailed    = "failed"
)

// Registry holds the service collectors on a private prometheus registry.
type Registry struct {
	reg                *prometheus.Registry
	OrdersIngested     *prometheus.CounterVec
	PartnerAssignments *prometheus.CounterVec
	OrdersUnzoned      prometheus.Counter
	DeliveryUnresolved prometheus.Counter
	WebhookDeliveries  *prometheus.CounterVec
	SyncDuration       prometheus.Histogram
}

// Module provides the shared registry.
var Module = fx.Provide(NewRegistry)

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	ingested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_ingested_total",
		Help: "Orders ingested by source and result.",
	}, []string{"source", "result"})
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "partner_assignments_total",
		Help: "Partner assignments by mode.",
	}, []string{"mode"})
	unzoned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_unzoned_total",
		Help: "Ingested orders whose postal code matched no zone.",
	})
	unresolved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_unresolved_total",
		Help: "Ingested orders that fell back to the creation time as delivery date.",
	})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_total",
		Help: "Webhook deliveries by outcome.",
	}, []string{"outcome"})
	syncDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sync_duration_seconds",
		Help:    "Duration of order sync runs.",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(ingested, assignments, unzoned, unresolved, webhooks, syncDuration)
	return &Registry{
		reg:                r,
		OrdersIngested:     ingested,
		PartnerAssignments: assignments,
		OrdersUnzoned:      unzoned,
		DeliveryUnresolved: unresolved,
		WebhookDeliveries:  webhooks,
		SyncDuration:       syncDuration,
	}
}

// Gatherer exposes the underlying registry for scraping in tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
