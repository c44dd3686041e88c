package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exposes metrics in Prometheus exposition format. It
// registers its collectors on a private registry so tests can build as
// many recorders as they like.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	usersRegistered prometheus.Counter
	tokensIssued    prometheus.Counter
	tokensRevoked   prometheus.Counter

	recipesCreated prometheus.Counter
	recipesUpdated prometheus.Counter
	recipesDeleted prometheus.Counter

	imagesUploaded prometheus.Counter
	imagesRejected prometheus.Counter

	labelsCreated    *prometheus.CounterVec
	labelsDeleted    *prometheus.CounterVec
	labelsReconciled *prometheus.HistogramVec
}

// NewPrometheus returns a Recorder backed by Prometheus collectors.
func NewPrometheus() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusRecorder{
		registry: registry,
		usersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_users_registered_total",
			Help: "Total number of user registrations",
		}),
		tokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_tokens_issued_total",
			Help: "Total number of bearer tokens issued",
		}),
		tokensRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_tokens_revoked_total",
			Help: "Total number of bearer tokens revoked",
		}),
		recipesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_recipes_created_total",
			Help: "Total number of recipes created",
		}),
		recipesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_recipes_updated_total",
			Help: "Total number of recipes updated",
		}),
		recipesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_recipes_deleted_total",
			Help: "Total number of recipes deleted",
		}),
		imagesUploaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_images_uploaded_total",
			Help: "Total number of recipe images stored",
		}),
		imagesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_images_rejected_total",
			Help: "Total number of uploads rejected as invalid images",
		}),
		labelsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipebox_labels_created_total",
			Help: "Total number of labels created",
		}, []string{"kind"}),
		labelsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipebox_labels_deleted_total",
			Help: "Total number of labels deleted",
		}, []string{"kind"}),
		labelsReconciled: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipebox_labels_reconciled",
			Help:    "Number of labels submitted per recipe write",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		}, []string{"kind"}),
	}
}

// Handler serves the /metrics endpoint for this recorder's registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// IncUserRegistered increments the registration counter.
func (p *PrometheusRecorder) IncUserRegistered() {
	p.usersRegistered.Inc()
}

// IncTokenIssued increments the token issue counter.
func (p *PrometheusRecorder) IncTokenIssued() {
	p.tokensIssued.Inc()
}

// IncTokenRevoked increments the token revocation counter.
func (p *PrometheusRecorder) IncTokenRevoked() {
	p.tokensRevoked.Inc()
}

// IncRecipeCreated increments the recipe created counter.
func (p *PrometheusRecorder) IncRecipeCreated() {
	p.recipesCreated.Inc()
}

// IncRecipeUpdated increments the recipe updated counter.
func (p *PrometheusRecorder) IncRecipeUpdated() {
	p.recipesUpdated.Inc()
}

// IncRecipeDeleted increments the recipe deleted counter.
func (p *PrometheusRecorder) IncRecipeDeleted() {
	p.recipesDeleted.Inc()
}

// IncImageUploaded increments the image upload counter.
func (p *PrometheusRecorder) IncImageUploaded() {
	p.imagesUploaded.Inc()
}

// IncImageRejected increments the rejected upload counter.
func (p *PrometheusRecorder) IncImageRejected() {
	p.imagesRejected.Inc()
}

// IncLabelCreated increments the label created counter for the kind.
func (p *PrometheusRecorder) IncLabelCreated(kind string) {
	p.labelsCreated.WithLabelValues(kind).Inc()
}

// IncLabelDeleted increments the label deleted counter for the kind.
func (p *PrometheusRecorder) IncLabelDeleted(kind string) {
	p.labelsDeleted.WithLabelValues(kind).Inc()
}

// ObserveLabelsReconciled records the size of a reconciled label list.
func (p *PrometheusRecorder) ObserveLabelsReconciled(kind string, count int) {
	p.labelsReconciled.WithLabelValues(kind).Observe(float64(count))
}
