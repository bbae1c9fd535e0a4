// Package configs 管理应用程序配置，包括Metrics的配置信息.
// Metrics配置支持Prometheus等监控系统.
//
// Example:
//
//	config := configs.GetConfig()
//	metricsConfig := config.Metrics
//	if metricsConfig.Enabled {
//		// 初始化Metrics
//	}
package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Metrics相关配置.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`         // 是否启用Metrics
	ServiceName    string `mapstructure:"service_name"`    // 服务名称
	ServiceVersion string `mapstructure:"service_version"` // 服务版本
	RuntimeMetrics bool   `mapstructure:"runtime_metrics"` // 是否收集运行时指标
	Pprof          bool   `mapstructure:"pprof"`           // 是否暴露pprof端点
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.service_name", "slacksweep")
	v.SetDefault("metrics.service_version", AppVersion)
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.pprof", false)
}
