// Package configs 管理 Slack Web API 相关配置.
// Slack 的 files.list / files.delete 为旧式 GET + token 参数接口，
// 这里保留该调用方式以兼容既有部署的 bot token.
package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultSlackAPIBaseURL  = "https://slack.com/api" // Web API 根地址
	DefaultSlackTimeout     = 15                      // 单次 API 调用超时（秒）
	DefaultSlackDeleteRPS   = 1.0                     // files.delete 速率（Tier 3 约 50 req/min）
	DefaultSlackDeleteBurst = 1                       // 删除调用突发容量，保持严格顺序
)

type (
	// SlackConfig Slack Web API 配置.
	SlackConfig struct {
		APIBaseURL  string  `mapstructure:"api_base_url" rule:"url"`
		Timeout     int     `mapstructure:"timeout"      rule:"min=1,max=120"`
		DeleteRPS   float64 `mapstructure:"delete_rps"   rule:"gt=0"`
		DeleteBurst int     `mapstructure:"delete_burst" rule:"min=1"`
	}
)

// GetTimeoutDuration 返回 API 超时时间作为 time.Duration.
func (c *SlackConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// setDefaults 设置 Slack 配置的默认值.
func (c *SlackConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("slack.api_base_url", DefaultSlackAPIBaseURL)
	v.SetDefault("slack.timeout", DefaultSlackTimeout)
	v.SetDefault("slack.delete_rps", DefaultSlackDeleteRPS)
	v.SetDefault("slack.delete_burst", DefaultSlackDeleteBurst)
}
