package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool              `mapstructure:"enabled"` // 总开关
	Sweep   SweepEventsConfig `mapstructure:"sweep"`
}

// SweepEventsConfig 针对清理领域的事件开关。
type SweepEventsConfig struct {
	Completed   bool `mapstructure:"completed"`
	FileDeleted bool `mapstructure:"file_deleted"`
	FileSkipped bool `mapstructure:"file_skipped"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：事件发布依赖 MQ，默认关闭
	v.SetDefault("events.enabled", false)

	v.SetDefault("events.sweep.completed", true)
	v.SetDefault("events.sweep.file_deleted", true)
	// 跳过事件量可能较大（归档失败、删除失败），默认关闭
	v.SetDefault("events.sweep.file_skipped", false)
}
