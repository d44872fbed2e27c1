// Package metrics 提供基于Prometheus的指标收集
//
// 核心概念：
// - Counter（计数器）：只增不减的累计值，如HTTP请求总数
// - Gauge（仪表盘）：可增可减的瞬时值，如正在处理的请求数
// - Histogram（直方图）：观测值的分布，自动计算分位数（P50/P90/P99）
//
// 使用方式：
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/v1/books）、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 业务指标

	// BooksCreatedTotal 图书创建总数（Counter）
	BooksCreatedTotal prometheus.Counter

	// ReviewsCreatedTotal 书评创建总数（Counter）
	ReviewsCreatedTotal prometheus.Counter

	// ReviewsApprovedTotal 书评审核通过总数（Counter）
	ReviewsApprovedTotal prometheus.Counter

	// ImagesUploadedTotal 封面上传总数（Counter）
	ImagesUploadedTotal prometheus.Counter

	// CategoriesCascadeDeletedTotal 分类级联删除总数（Counter）
	CategoriesCascadeDeletedTotal prometheus.Counter

	// 缓存指标

	// CacheHitsTotal 缓存命中总数（Counter），标签：cache（list/detail）
	CacheHitsTotal *prometheus.CounterVec

	// CacheMissesTotal 缓存未命中总数（Counter），标签：cache（list/detail）
	CacheMissesTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry
// 设计要点：
// 1. 使用promauto.New*自动注册到默认Registry
// 2. Counter使用*Vec支持标签（多维度统计）
// 3. Histogram的Buckets根据业务场景定制
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewclub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reviewclub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reviewclub_http_requests_in_progress",
			Help: "Number of HTTP requests currently being served",
		},
	)

	BooksCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewclub_books_created_total",
			Help: "Total number of books created",
		},
	)

	ReviewsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewclub_reviews_created_total",
			Help: "Total number of reviews created",
		},
	)

	ReviewsApprovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewclub_reviews_approved_total",
			Help: "Total number of reviews approved",
		},
	)

	ImagesUploadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewclub_images_uploaded_total",
			Help: "Total number of book cover images uploaded",
		},
	)

	CategoriesCascadeDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewclub_categories_cascade_deleted_total",
			Help: "Total number of categories deleted together with their books",
		},
	)

	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewclub_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewclub_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)
}

// IncCounter 安全递增Counter（未初始化时不panic）
func IncCounter(counter prometheus.Counter) {
	if counter != nil {
		counter.Inc()
	}
}

// IncCounterVec 安全递增带标签的Counter
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter != nil {
		counter.With(labels).Inc()
	}
}

// ObserveHistogramVec 安全记录带标签的Histogram观测值
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram != nil {
		histogram.With(labels).Observe(value)
	}
}
