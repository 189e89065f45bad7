package markup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a Site updates. Create it with
// NewMetrics and pass it in SiteOptions.
type Metrics struct {
	componentsRendered *prometheus.CounterVec
	renderErrors       *prometheus.CounterVec
	assetsRegistered   *prometheus.CounterVec
	assetsDuplicate    *prometheus.CounterVec
	assetsMissing      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// means prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		componentsRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "markup",
			Name:      "components_rendered_total",
			Help:      "Total number of component and snippet renders.",
		}, []string{"kind"}),
		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "markup",
			Name:      "render_errors_total",
			Help:      "Total number of component renders that failed.",
		}, []string{"kind", "reason"}),
		assetsRegistered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "markup",
			Name:      "assets_registered_total",
			Help:      "Total number of scripts and stylesheets added to a registry.",
		}, []string{"bucket"}),
		assetsDuplicate: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "markup",
			Name:      "assets_duplicate_total",
			Help:      "Total number of registrations skipped because the asset was already registered.",
		}, []string{"bucket"}),
		assetsMissing: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "markup",
			Name:      "assets_missing_total",
			Help:      "Total number of registrations skipped because the file does not exist.",
		}, []string{"bucket"}),
	}
}

// the methods below are nil-safe so callers don't need to check whether
// metrics were configured

func (m *Metrics) rendered(kind string) {
	if m == nil {
		return
	}
	m.componentsRendered.WithLabelValues(kind).Inc()
}

func (m *Metrics) renderFailed(kind, reason string) {
	if m == nil {
		return
	}
	m.renderErrors.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) registered(bucket string, added bool) {
	if m == nil {
		return
	}
	if added {
		m.assetsRegistered.WithLabelValues(bucket).Inc()
		return
	}
	m.assetsDuplicate.WithLabelValues(bucket).Inc()
}

func (m *Metrics) missing(bucket string) {
	if m == nil {
		return
	}
	m.assetsMissing.WithLabelValues(bucket).Inc()
}
