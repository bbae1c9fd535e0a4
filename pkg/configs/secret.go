package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// SecretProviderType 密钥源类型.
type SecretProviderType string

const (
	SecretProviderGCP SecretProviderType = "gcp" // Google Secret Manager
	SecretProviderEnv SecretProviderType = "env" // 环境变量 / 静态配置，供本地调试

	DefaultSecretProvider = SecretProviderGCP
	DefaultSecretVersion  = "latest" // 默认读取最新版本
)

type (
	// SecretConfig 密钥源配置.
	// Project 与 SecretID 默认从裸环境变量 GCP_PROJECT / SLACK_TOKEN_SECRET 绑定（见 config.go）.
	SecretConfig struct {
		Provider SecretProviderType `mapstructure:"provider"  rule:"oneof=gcp env"`
		Project  string             `mapstructure:"project"`
		SecretID string             `mapstructure:"secret_id"`
		Version  string             `mapstructure:"version"`
		// Token 仅在 env provider 下使用，来自 SLACK_TOKEN，不落盘
		Token string `mapstructure:"token"`
	}
)

// ResourceName 返回 Secret Manager 的资源路径.
func (c *SecretConfig) ResourceName() string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", c.Project, c.SecretID, c.Version)
}

// setDefaults 设置密钥源配置的默认值.
func (c *SecretConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("secret.provider", DefaultSecretProvider)
	v.SetDefault("secret.version", DefaultSecretVersion)
}
