package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/signalsfoundry/wmn-simulator/core"
)

// RunCollector bundles Prometheus metrics for simulation runs and the HTTP
// surface that triggers them.
type RunCollector struct {
	gatherer prometheus.Gatherer

	Runs         *prometheus.CounterVec
	RouteHops    prometheus.Histogram
	RunDurations prometheus.Histogram

	Links        prometheus.Gauge
	SelfishNodes prometheus.Gauge
	MeanPower    prometheus.Gauge
	MeanTrust    prometheus.Gauge

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewRunCollector registers run metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil. Registering twice
// against the same registry returns the existing collectors.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wmn_runs_total",
		Help: "Total number of simulation runs, labeled by delivery status.",
	}, []string{"status"}), "wmn_runs_total")
	if err != nil {
		return nil, err
	}

	hops, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wmn_route_hops",
		Help:    "Number of links on the route attempted by each run with a path.",
		Buckets: prometheus.LinearBuckets(0, 1, 12),
	}), "wmn_route_hops")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wmn_run_duration_seconds",
		Help:    "Wall-clock duration of a single simulation run.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}), "wmn_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	links, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wmn_links",
		Help: "Number of links in the most recent run.",
	}), "wmn_links")
	if err != nil {
		return nil, err
	}
	selfish, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wmn_selfish_nodes",
		Help: "Number of selfish nodes in the most recent run.",
	}), "wmn_selfish_nodes")
	if err != nil {
		return nil, err
	}
	power, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wmn_mean_power",
		Help: "Mean residual node power after the most recent run.",
	}), "wmn_mean_power")
	if err != nil {
		return nil, err
	}
	trust, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wmn_mean_trust",
		Help: "Mean node trust after the most recent run.",
	}), "wmn_mean_trust")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wmn_http_requests_total",
		Help: "Total number of handled API requests, labeled by route and HTTP status code.",
	}, []string{"route", "code"}), "wmn_http_requests_total")
	if err != nil {
		return nil, err
	}
	reqDurations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wmn_http_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route"}), "wmn_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &RunCollector{
		gatherer:      gatherer,
		Runs:          runs,
		RouteHops:     hops,
		RunDurations:  durations,
		Links:         links,
		SelfishNodes:  selfish,
		MeanPower:     power,
		MeanTrust:     trust,
		HTTPRequests:  requests,
		HTTPDurations: reqDurations,
	}, nil
}

// ObserveRun records the outcome of one finished run. Gauges always reflect
// the latest report passed in.
func (c *RunCollector) ObserveRun(r *core.Report, elapsed time.Duration) {
	if c == nil || r == nil {
		return
	}
	c.Runs.WithLabelValues(string(r.Status)).Inc()
	c.RunDurations.Observe(elapsed.Seconds())
	if r.Path != nil {
		c.RouteHops.Observe(float64(r.Stats.Hops))
	}
	c.Links.Set(float64(r.Stats.TotalLinks))
	c.SelfishNodes.Set(float64(len(r.SelfishNodes)))
	c.MeanPower.Set(r.Stats.MeanPower)
	c.MeanTrust.Set(r.Stats.MeanTrust)
}

// InstrumentHandler counts requests and their latency under route.
func (c *RunCollector) InstrumentHandler(route string, next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(
		c.HTTPDurations.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(c.HTTPRequests.MustCurryWith(labels), next),
	)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RunCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
