// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集应用和系统指标.
//
// Example:
//
//	import "github.com/yeisme/slacksweep/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.SweepFilesDeleted.Add(3)
//	metrics.SweepBytesDeleted.Add(1 << 20)
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/slacksweep/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// SweepRuns 清理任务运行计数器，mode 取值 dry_run / delete.
	SweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Total number of sweep runs",
		},
		[]string{"mode", "status"},
	)

	// SweepFilesDeleted 已删除文件计数器.
	SweepFilesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_files_deleted_total",
			Help: "Total number of files deleted from the workspace",
		},
	)

	// SweepBytesDeleted 已删除文件体积计数器（字节）.
	SweepBytesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_bytes_deleted_total",
			Help: "Total size in bytes of files deleted from the workspace",
		},
	)

	// SweepDeleteFailures 删除失败计数器.
	SweepDeleteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_delete_failures_total",
			Help: "Total number of delete calls reported as failed",
		},
	)

	// SlackAPIDuration Slack API 调用耗时.
	SlackAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slack_api_request_duration_seconds",
			Help:    "Slack Web API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	// 注册标准收集器
	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 注册自定义指标
	registry.MustRegister(
		RequestCounter, RequestDuration,
		SweepRuns, SweepFilesDeleted, SweepBytesDeleted, SweepDeleteFailures,
		SlackAPIDuration,
	)

	return nil
}

// StartMetricsServer 启动Metrics HTTP服务器.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
