// Package metrics 定义服务的 Prometheus 指标，通过 /metrics 暴露
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 推荐路径
const (
	PathScored    = "scored"
	PathColdStart = "cold_start"
	PathError     = "error"
)

var (
	// RecommendationsTotal 推荐请求数，按路径区分
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmeal_recommendations_total",
			Help: "Total number of friend recommendation requests",
		},
		[]string{"path"},
	)

	// RecommendationDuration 推荐计算耗时
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodmeal_recommendation_duration_seconds",
			Help:    "Duration of friend recommendation computation in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"path"},
	)

	// CandidatePoolSize 每次推荐的候选池大小
	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodmeal_recommendation_pool_size",
			Help:    "Number of candidates considered per recommendation request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// CandidatePoolTruncatedTotal 候选池被截断的次数
	CandidatePoolTruncatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodmeal_recommendation_pool_truncated_total",
			Help: "Number of recommendation requests whose candidate pool hit the cap",
		},
	)

	// HTTPRequestsTotal HTTP请求数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmeal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodmeal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RateLimitedTotal 被限流的请求数
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmeal_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

// RecordRecommendation 记录一次推荐
func RecordRecommendation(path string, poolSize int, truncated bool, d time.Duration) {
	RecommendationsTotal.WithLabelValues(path).Inc()
	RecommendationDuration.WithLabelValues(path).Observe(d.Seconds())
	if path == PathError {
		return
	}
	CandidatePoolSize.Observe(float64(poolSize))
	if truncated {
		CandidatePoolTruncatedTotal.Inc()
	}
}

// Middleware 记录请求数与耗时，route 使用路由模板避免标签基数膨胀
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
