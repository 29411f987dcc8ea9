package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements every hook interface on Prometheus collectors.
type PrometheusHooks struct {
	diagnostics *prometheus.CounterVec
	conflicts   prometheus.Counter
	builds      *prometheus.CounterVec
	stageTime   *prometheus.HistogramVec
	positions   *prometheus.CounterVec
	selections  *prometheus.CounterVec
	cacheOps    *prometheus.CounterVec
	cacheBytes  prometheus.Counter
	requests    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// Registration panics on duplicate collectors, like prometheus.MustRegister.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pedigree",
			Name:      "lineage_diagnostics_total",
			Help:      "Data-integrity problems absorbed while building lineage.",
		}, []string{"kind"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pedigree",
			Name:      "generation_conflicts_total",
			Help:      "Relations proposing a generation that disagrees with the first assignment.",
		}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pedigree",
			Name:      "builds_total",
			Help:      "Full lineage rebuilds by result.",
		}, []string{"result"}),
		stageTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pedigree",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"stage"}),
		positions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pedigree",
			Name:      "layout_positions_total",
			Help:      "Positions computed fresh or retained from the position cache.",
		}, []string{"source"}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pedigree",
			Name:      "selection_changes_total",
			Help:      "Selection state transitions by target state.",
		}, []string{"state"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pedigree",
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes.",
		}, []string{"op", "key_type"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pedigree",
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pedigree",
			Name:      "http_requests_total",
			Help:      "HTTP API responses by route and status.",
		}, []string{"method", "route", "status"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pedigree",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP API latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(h.diagnostics, h.conflicts, h.builds, h.stageTime, h.positions,
		h.selections, h.cacheOps, h.cacheBytes, h.requests, h.reqDuration)
	return h
}

// Register installs h as the lineage, pipeline, cache and HTTP hooks.
func (h *PrometheusHooks) Register() {
	SetLineageHooks(h)
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *PrometheusHooks) OnDanglingReference(string, string, string) {
	h.diagnostics.WithLabelValues("dangling_reference").Inc()
}

func (h *PrometheusHooks) OnSelfReference(string) {
	h.diagnostics.WithLabelValues("self_reference").Inc()
}

func (h *PrometheusHooks) OnCycle(string, string) {
	h.diagnostics.WithLabelValues("cycle").Inc()
}

func (h *PrometheusHooks) OnGenerationConflict(string, int, int) {
	h.conflicts.Inc()
}

func (h *PrometheusHooks) OnBuild(_ string, _ int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.builds.WithLabelValues(result).Inc()
	h.stageTime.WithLabelValues("build").Observe(d.Seconds())
}

func (h *PrometheusHooks) OnLayout(fresh, retained int, d time.Duration) {
	h.positions.WithLabelValues("fresh").Add(float64(fresh))
	h.positions.WithLabelValues("retained").Add(float64(retained))
	h.stageTime.WithLabelValues("layout").Observe(d.Seconds())
}

func (h *PrometheusHooks) OnAssemble(_, _ int, d time.Duration) {
	h.stageTime.WithLabelValues("assemble").Observe(d.Seconds())
}

func (h *PrometheusHooks) OnSelection(selectedID string) {
	state := "selected"
	if selectedID == "" {
		state = "idle"
	}
	h.selections.WithLabelValues(state).Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues("hit", keyType).Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues("miss", keyType).Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues("set", keyType).Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ LineageHooks  = (*PrometheusHooks)(nil)
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
