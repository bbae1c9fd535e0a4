// Package middleware 提供中间件
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/slacksweep/pkg/metrics"
)

// PrometheusMiddleware 创建Gin的Prometheus中间件.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// 执行下一个中间件/处理器
		c.Next()

		// 记录指标
		duration := time.Since(start).Seconds()

		metrics.RequestCounter.WithLabelValues(method, path).Inc()
		metrics.RequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
