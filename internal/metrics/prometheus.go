package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resumepdf"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	renderDuration  *prom.HistogramVec
	publishOutcomes *prom.CounterVec
	remoteFailures  *prom.CounterVec
	publishFailures prom.Counter
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of HTML to PDF renders, including browser launch",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"result"}),
		publishOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Published artifacts by origin and store",
		}, []string{"origin", "store"}),
		remoteFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "remote_failures_total",
			Help:      "Remote upload failures absorbed by fallback",
		}, []string{"store"}),
		publishFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failures_total",
			Help:      "Publishes that failed after the local fallback",
		}),
	}
	reg.MustRegister(pr.renderDuration, pr.publishOutcomes, pr.remoteFailures, pr.publishFailures)
	return pr
}

func (p *PrometheusRecorder) ObserveRender(d time.Duration, result ResultLabel) {
	p.renderDuration.WithLabelValues(string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPublish(origin, store string) {
	p.publishOutcomes.WithLabelValues(origin, store).Inc()
}

func (p *PrometheusRecorder) IncRemoteFailure(store string) {
	p.remoteFailures.WithLabelValues(store).Inc()
}

func (p *PrometheusRecorder) IncPublishFailure() {
	p.publishFailures.Inc()
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

var _ Recorder = (*PrometheusRecorder)(nil)
