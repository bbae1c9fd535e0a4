// Package configs 管理应用程序配置，包括 Slack API、密钥源、数据库与事件队列的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	import "path/to/configs"
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing Slack config:
//
//	config := configs.GetConfig()
//	slackConfig := config.Slack
//	fmt.Println("API:", slackConfig.APIBaseURL)
//
// Example accessing Secret config:
//
//	config := configs.GetConfig()
//	secretConfig := config.Secret
//	fmt.Println("Resource:", secretConfig.ResourceName())
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用版本号.
const AppVersion = "1.0.0"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server    ServerConfig         `mapstructure:"server"`     // ServerConfig 服务器配置，监听地址、调试模式等
		Log       LogConfig            `mapstructure:"log"`        // LogConfig 日志相关配置
		Slack     SlackConfig          `mapstructure:"slack"`      // SlackConfig Slack Web API 配置
		Secret    SecretConfig         `mapstructure:"secret"`     // SecretConfig 密钥源配置
		Sweep     SweepConfig          `mapstructure:"sweep"`      // SweepConfig 清理策略默认值与定时任务
		DB        DBConfig             `mapstructure:"db"`         // DBConfig 清理历史数据库配置
		Archive   ArchiveConfig        `mapstructure:"archive"`    // ArchiveConfig 删除前归档（S3）配置
		MQ        MQConfig             `mapstructure:"mq"`         // MQConfig 事件队列配置
		Events    EventsConfig         `mapstructure:"events"`     // EventsConfig 事件发布开关
		Metrics   MetricsConfig        `mapstructure:"metrics"`    // MetricsConfig 监控配置
		Tracing   TracingConfig        `mapstructure:"tracing"`    // TracingConfig 追踪配置
		RateLimit RateLimitConfig      `mapstructure:"rate_limit"` // RateLimitConfig 入站限流配置
		Breaker   CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
func InitConfig(path string) error {
	appViper = viper.New()
	// 设置默认值
	setAllDefaults(appViper)

	// 检查path是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，使用SetConfigFile，Viper会自动检测类型
		appViper.SetConfigFile(path)
	} else {
		// 是目录，设置配置名和路径
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(path + "/configs")

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)

				break
			}
		}
	}

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("SLACKSWEEP")

	// GCP_PROJECT / SLACK_TOKEN_SECRET 由部署环境直接注入，不带前缀，需显式绑定
	_ = appViper.BindEnv("secret.project", "GCP_PROJECT")
	_ = appViper.BindEnv("secret.secret_id", "SLACK_TOKEN_SECRET")
	_ = appViper.BindEnv("secret.token", "SLACK_TOKEN")

	// 读取配置；找不到配置文件时退回默认值与环境变量
	if err := appViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 解析到全局配置
	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var serverConfig ServerConfig

	var logConfig LogConfig

	var slackConfig SlackConfig

	var secretConfig SecretConfig

	var sweepConfig SweepConfig

	var dbConfig DBConfig

	var archiveConfig ArchiveConfig

	var mqConfig MQConfig

	var eventsConfig EventsConfig

	var metricsConfig MetricsConfig

	var tracingConfig TracingConfig

	var rateLimitConfig RateLimitConfig

	var breakerConfig CircuitBreakerConfig

	serverConfig.setDefaults(v)
	logConfig.setDefaults(v)
	slackConfig.setDefaults(v)
	secretConfig.setDefaults(v)
	sweepConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	archiveConfig.setDefaults(v)
	mqConfig.setDefaults(v)
	eventsConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	rateLimitConfig.setDefaults(v)
	breakerConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
		fmt.Println("Reloading configuration...")

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
		}
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

func GetViper() *viper.Viper {
	return appViper
}
