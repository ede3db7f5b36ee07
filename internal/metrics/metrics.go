// Package metrics Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry 应用指标注册表
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "banmaytinh",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "banmaytinh",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "banmaytinh",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	advisorSuggestions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "banmaytinh",
			Subsystem: "advisor",
			Name:      "suggestions_total",
			Help:      "Advisor suggestions served, by best non-empty tier.",
		},
		[]string{"tier"},
	)

	cartLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "banmaytinh",
			Subsystem: "cart",
			Name:      "line_adds_total",
			Help:      "Products added to carts, by kind (plain or configured).",
		},
		[]string{"kind"},
	)

	ordersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "banmaytinh",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders created at checkout.",
		},
	)
)

func init() {
	Registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		httpInFlight,
		httpRequests,
		httpDuration,
		advisorSuggestions,
		cartLines,
		ordersPlaced,
	)
}

// Handler /metrics
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler 记录请求数、耗时与并发数
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := normalizePath(r.URL.Path)
		httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordSuggestion tier: "tier1" / "tier2" / "tier3" / "none"
func RecordSuggestion(tier string) {
	advisorSuggestions.WithLabelValues(tier).Inc()
}

// RecordCartAdd kind: "plain" / "configured"
func RecordCartAdd(kind string) {
	cartLines.WithLabelValues(kind).Inc()
}

// RecordOrderPlaced 下单成功
func RecordOrderPlaced() {
	ordersPlaced.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routeSegments 路由中出现的固定路径段
var routeSegments = map[string]bool{
	"api": true, "v1": true, "admin": true, "healthz": true, "metrics": true,
	"home": true, "products": true, "pc": true, "components": true, "brands": true, "categories": true,
	"advisor": true, "topics": true, "suggest": true,
	"auth": true, "register": true, "login": true, "logout": true,
	"cart": true, "items": true, "lines": true, "increase": true, "decrease": true,
	"checkout": true, "orders": true, "profile": true, "statistics": true, "export": true, "status": true,
	"tags": true, "option-groups": true, "candidates": true, "users": true, "admins": true,
}

// maxRouteDepth 已注册路由的最大段数
const maxRouteDepth = 6

// normalizePath 将数字路径段替换为 :id；未知路径统一记为 "other"，避免标签基数膨胀
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	depth := 0
	for i, p := range parts {
		if p == "" {
			continue
		}
		depth++
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
			continue
		}
		if !routeSegments[p] {
			return "other"
		}
	}
	if depth == 0 || depth > maxRouteDepth {
		return "other"
	}
	return strings.Join(parts, "/")
}
