package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	DefaultArchiveEnabled         = false             // 默认不归档，保持与源工作流一致
	DefaultArchiveEndpoint        = "localhost:9000"  // 默认S3端点
	DefaultArchiveAccessKeyID     = "minioadmin"      // 默认访问密钥ID
	DefaultArchiveSecretAccessKey = "minioadmin"      // 默认秘密访问密钥
	DefaultArchiveUseSSL          = false             // 默认是否使用SSL
	DefaultArchiveBucketName      = "slacksweep"      // 默认存储桶名称
	DefaultArchiveRegion          = "us-east-1"       // 默认区域
	DefaultArchivePrefix          = "archive"         // 对象键前缀
)

// ArchiveConfig 删除前归档配置（MinIO / S3 兼容存储）.
// 启用后，文件内容会先写入对象存储，归档失败的文件跳过删除.
type ArchiveConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
}

// GetEndpointURL 获取完整的端点URL.
func (c *ArchiveConfig) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// setDefaults 设置归档配置的默认值.
func (c *ArchiveConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("archive.enabled", DefaultArchiveEnabled)
	v.SetDefault("archive.endpoint", DefaultArchiveEndpoint)
	v.SetDefault("archive.access_key_id", DefaultArchiveAccessKeyID)
	v.SetDefault("archive.secret_access_key", DefaultArchiveSecretAccessKey)
	v.SetDefault("archive.use_ssl", DefaultArchiveUseSSL)
	v.SetDefault("archive.bucket_name", DefaultArchiveBucketName)
	v.SetDefault("archive.region", DefaultArchiveRegion)
	v.SetDefault("archive.prefix", DefaultArchivePrefix)
}
