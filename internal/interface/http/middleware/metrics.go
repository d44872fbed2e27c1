package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/reviewclub/pkg/metrics"
)

// Metrics Prometheus指标采集中间件
// 教学要点:
// 1. 使用c.FullPath()而不是c.Request.URL.Path作为path标签,
//    避免/api/v1/books/123这类路径导致标签基数爆炸
// 2. InProgress用Gauge,进入时+1、defer -1
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		if metrics.HTTPRequestsInProgress != nil {
			metrics.HTTPRequestsInProgress.Inc()
			defer metrics.HTTPRequestsInProgress.Dec()
		}

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404等未命中路由
		}

		labels := map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}

		metrics.IncCounterVec(metrics.HTTPRequestsTotal, labels)
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration,
			map[string]string{"method": c.Request.Method, "path": path},
			time.Since(start).Seconds())
	}
}
