// Package s3 处理删除前归档的对象存储操作.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/slacksweep/pkg/configs"
	nlog "github.com/yeisme/slacksweep/pkg/log"
)

// Client 包装 MinIO 客户端.
type Client struct {
	*minio.Client

	bucket string
	prefix string
}

// New 初始化 MinIO 客户端，若归档 bucket 不存在则尝试创建.
func New(ctx context.Context, cfg *configs.ArchiveConfig) (*Client, error) {
	endpoint := cfg.Endpoint

	useSSL := cfg.UseSSL
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("slacksweep", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("archive bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("archive storage connected")

	return &Client{Client: cli, bucket: cfg.BucketName, prefix: cfg.Prefix}, nil
}

// Archive 把文件内容写入归档 bucket，返回对象键.
// size 未知时传 -1，走流式上传.
func (c *Client) Archive(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	objectKey := key
	if c.prefix != "" {
		objectKey = c.prefix + "/" + key
	}

	_, err := c.PutObject(ctx, c.bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("archive object %s: %w", objectKey, err)
	}

	return objectKey, nil
}

// HealthCheck 简单的健康检查，通过检查桶存在性来验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.BucketExists(ctx, c.bucket)
	return err
}

// Close 关闭客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}
