// Package metrics exposes Prometheus counters and histograms for inspections
// and signature lookups.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "txinsight"

// 检查结果
const (
	OutcomeDecoded     = "decoded"
	OutcomeUnknown     = "unknown"
	OutcomeLookupError = "lookup_error"
	OutcomeDecodeError = "decode_error"
)

// Collector 持有服务的全部指标
type Collector struct {
	registry *prometheus.Registry

	inspections    *prometheus.CounterVec
	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
}

// NewCollector 创建指标收集器，每个收集器使用独立的注册表
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		inspections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inspections_total",
			Help:      "Transaction inspections by outcome.",
		}, []string{"outcome"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_lookups_total",
			Help:      "Signature directory lookups by status.",
		}, []string{"status"}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "signature_lookup_duration_seconds",
			Help:      "Signature directory lookup latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}

	c.registry.MustRegister(
		c.inspections,
		c.lookups,
		c.lookupDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveInspection 记录一次检查结果
func (c *Collector) ObserveInspection(outcome string) {
	c.inspections.WithLabelValues(outcome).Inc()
}

// ObserveLookup 记录一次签名查询
func (c *Collector) ObserveLookup(status string, duration time.Duration) {
	c.lookups.WithLabelValues(status).Inc()
	c.lookupDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// Registry 返回底层注册表
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 /metrics 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
