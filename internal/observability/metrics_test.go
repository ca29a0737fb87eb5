package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/signalsfoundry/wmn-simulator/core"
)

func TestObserveRunRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}

	collector.ObserveRun(&core.Report{
		Status:       core.StatusDelivered,
		Path:         []int{0, 3, 5},
		SelfishNodes: []int{3, 7},
		Stats:        core.Stats{TotalLinks: 12, MeanPower: 84.5, MeanTrust: 91, Hops: 2},
	}, 2*time.Millisecond)
	collector.ObserveRun(&core.Report{
		Status:       core.StatusNoPath,
		SelfishNodes: []int{},
		Stats:        core.Stats{TotalLinks: 4, MeanPower: 85, MeanTrust: 100},
	}, time.Millisecond)

	if got := testutil.ToFloat64(collector.Runs.WithLabelValues(string(core.StatusDelivered))); got != 1 {
		t.Fatalf("delivered runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Runs.WithLabelValues(string(core.StatusNoPath))); got != 1 {
		t.Fatalf("no-path runs = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "wmn_route_hops", nil); count != 1 {
		t.Fatalf("wmn_route_hops sample_count = %d, want 1 (no-path runs are skipped)", count)
	}
	if count := histogramSampleCount(t, reg, "wmn_run_duration_seconds", nil); count != 2 {
		t.Fatalf("wmn_run_duration_seconds sample_count = %d, want 2", count)
	}
	if got := testutil.ToFloat64(collector.Links); got != 4 {
		t.Fatalf("wmn_links = %v, want latest value 4", got)
	}
	if got := testutil.ToFloat64(collector.SelfishNodes); got != 0 {
		t.Fatalf("wmn_selfish_nodes = %v, want 0", got)
	}
	if got := testutil.ToFloat64(collector.MeanTrust); got != 100 {
		t.Fatalf("wmn_mean_trust = %v, want 100", got)
	}
}

func TestNewRunCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}
	second, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("second NewRunCollector: %v", err)
	}
	second.Runs.WithLabelValues("Delivered").Inc()
	if got := testutil.ToFloat64(first.Runs.WithLabelValues("Delivered")); got != 1 {
		t.Fatalf("collectors not shared: %v", got)
	}
}

func TestInstrumentHandlerRecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}

	h := collector.InstrumentHandler("/simulate", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/simulate", nil))

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/simulate", "400")); got != 1 {
		t.Fatalf("wmn_http_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "wmn_http_request_duration_seconds", map[string]string{"route": "/simulate"}); count != 1 {
		t.Fatalf("wmn_http_request_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestMetricsHandlerExposesRunMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}
	collector.ObserveRun(&core.Report{
		Status: core.StatusDropped,
		Path:   []int{1, 2},
		Stats:  core.Stats{TotalLinks: 9, Hops: 1},
	}, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		`wmn_runs_total{status="Dropped by selfish node"} 1`,
		"wmn_route_hops",
		"wmn_run_duration_seconds",
		"wmn_links 9",
		"wmn_selfish_nodes",
		"wmn_mean_power",
		"wmn_mean_trust",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output:\n%s", metric, body)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
