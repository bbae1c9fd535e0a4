package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/yeisme/slacksweep/pkg/configs"
)

// errHandlerFailure 5xx 响应计入熔断失败统计.
var errHandlerFailure = errors.New("handler returned server error")

// CircuitBreakerMiddleware 基于 gobreaker 的入站熔断.
// 由 circuit_breaker.inbound 控制，与出站 Slack 调用的熔断相互独立.
func CircuitBreakerMiddleware(cfg configs.CircuitBreakerConfig) gin.HandlerFunc {
	if !cfg.Inbound {
		return func(c *gin.Context) { c.Next() }
	}

	settings := gobreaker.Settings{
		Name:        "http-inbound",
		MaxRequests: cfg.MaxRequestsInHalf,
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.Requests
			if total < cfg.MinRequests {
				return false
			}
			// 失败比例
			failureRate := float64(counts.TotalFailures) / float64(total)

			return failureRate >= cfg.FailureRate
		},
	}
	cb := gobreaker.NewCircuitBreaker(settings)

	return func(c *gin.Context) {
		_, err := cb.Execute(func() (any, error) {
			c.Next()
			// 将 5xx 视为失败
			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errHandlerFailure
			}

			return nil, nil
		})
		// 熔断打开时 handler 未执行，直接拒绝请求；5xx 本身已写出响应，只计数
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
			return
		}
	}
}
