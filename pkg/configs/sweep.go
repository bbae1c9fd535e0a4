package configs

import (
	"github.com/spf13/viper"
)

const (
	DefaultSweepDays   = 30   // 默认清理 N 天之前的文件
	DefaultSweepCount  = 1000 // 默认单次列举的文件数量上限
	DefaultSweepDryRun = true // 默认只预览，不真正删除

	DefaultSweepSchedule = "30 4 * * *" // 定时清理的 cron 表达式（每天 04:30）
)

type (
	// SweepConfig 清理策略默认值与定时任务配置.
	// Mimetypes 为 MIME 类别白名单：文件的 mimetype 包含任一类别子串即视为候选.
	// Slack 的 types 过滤参数偶尔会无故漏掉条目，因此在本地做包含匹配.
	SweepConfig struct {
		Days      int      `mapstructure:"days"      rule:"min=1"`
		Count     int      `mapstructure:"count"     rule:"min=1"`
		DryRun    bool     `mapstructure:"dry_run"`
		Mimetypes []string `mapstructure:"mimetypes" rule:"min=1,dive,required"`

		// 定时清理；ScheduleDryRun 独立于 DryRun，定时任务默认也是只预览
		ScheduleEnabled bool   `mapstructure:"schedule_enabled"`
		Schedule        string `mapstructure:"schedule"`
		ScheduleDryRun  bool   `mapstructure:"schedule_dry_run"`
	}
)

// setDefaults 设置清理策略的默认值.
func (c *SweepConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("sweep.days", DefaultSweepDays)
	v.SetDefault("sweep.count", DefaultSweepCount)
	v.SetDefault("sweep.dry_run", DefaultSweepDryRun)
	// audio / image / video 在源工作区中暂不启用，按需在配置中追加
	v.SetDefault("sweep.mimetypes", []string{"document"})
	v.SetDefault("sweep.schedule_enabled", false)
	v.SetDefault("sweep.schedule", DefaultSweepSchedule)
	v.SetDefault("sweep.schedule_dry_run", true)
}
