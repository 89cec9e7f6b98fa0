package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome 单次适应度评估的结果分类
type Outcome string

const (
	OutcomeFeasible    Outcome = "feasible"
	OutcomeInfeasible  Outcome = "infeasible"
	OutcomeDecodeError Outcome = "decode_error"
	OutcomePanic       Outcome = "panic"
)

// MetricsCollector 优化过程监控指标
// 所有方法对 nil 接收者安全，未启用监控时直接传 nil
type MetricsCollector struct {
	registry     *prometheus.Registry
	evaluations  *prometheus.CounterVec
	evalDuration prometheus.Histogram
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	generation   prometheus.Gauge
	bestCost     prometheus.Gauge
	runs         prometheus.Counter
	startTime    time.Time
}

// NewMetricsCollector 创建监控指标收集器，指标注册在独立的 registry 上
func NewMetricsCollector(namespace string) *MetricsCollector {
	m := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Fitness evaluations by outcome.",
		}, []string{"outcome"}),
		evalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Histogram of fitness evaluation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fitness_cache_hits_total",
			Help:      "Fitness lookups served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fitness_cache_misses_total",
			Help:      "Fitness lookups that required an evaluation.",
		}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation",
			Help:      "Current generation of the running optimization.",
		}),
		bestCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_cost",
			Help:      "Total cost of the best network found so far.",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed optimization runs.",
		}),
		startTime: time.Now(),
	}

	m.registry.MustRegister(
		m.evaluations,
		m.evalDuration,
		m.cacheHits,
		m.cacheMisses,
		m.generation,
		m.bestCost,
		m.runs,
	)
	return m
}

// RecordEvaluation 记录一次评估
func (m *MetricsCollector) RecordEvaluation(outcome Outcome, d time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(string(outcome)).Inc()
	m.evalDuration.Observe(d.Seconds())
}

// CacheHit 记录缓存命中
func (m *MetricsCollector) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss 记录缓存未命中
func (m *MetricsCollector) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// RecordGeneration 记录代数与当前最优成本
func (m *MetricsCollector) RecordGeneration(generation int, bestCost float64) {
	if m == nil {
		return
	}
	m.generation.Set(float64(generation))
	m.bestCost.Set(bestCost)
}

// RecordRun 记录一次完成的优化
func (m *MetricsCollector) RecordRun() {
	if m == nil {
		return
	}
	m.runs.Inc()
}

// Registry 返回指标 registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *MetricsCollector) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GetUptime 获取运行时间
func (m *MetricsCollector) GetUptime() time.Duration {
	if m == nil {
		return 0
	}
	return time.Since(m.startTime)
}
