// Package secret 的 Google Secret Manager 实现.
// 资源路径形如 projects/<project>/secrets/<secret>/versions/latest，
// 路径由两个部署环境变量（GCP_PROJECT、SLACK_TOKEN_SECRET）拼出，见 configs.SecretConfig.
package secret

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	"github.com/yeisme/slacksweep/pkg/configs"
)

// init 注册 GCP 工厂.
func init() {
	RegisterFactory(configs.SecretProviderGCP, gcpFactory)
}

// gcpProvider 通过 Secret Manager 获取 token.
type gcpProvider struct {
	client *secretmanager.Client
	cfg    *configs.SecretConfig
}

func gcpFactory(ctx context.Context, cfg *configs.SecretConfig) (Provider, error) {
	if cfg.Project == "" || cfg.SecretID == "" {
		return nil, fmt.Errorf("secret provider gcp requires project and secret_id (GCP_PROJECT / SLACK_TOKEN_SECRET)")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}

	return &gcpProvider{client: client, cfg: cfg}, nil
}

// Token 读取密钥的指定版本（默认 latest），按 UTF-8 文本解码.
func (p *gcpProvider) Token(ctx context.Context) (string, error) {
	name := p.cfg.ResourceName()

	resp, err := p.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return "", fmt.Errorf("access secret version %s: %w", name, err)
	}

	return string(resp.GetPayload().GetData()), nil
}

func (p *gcpProvider) Close() error {
	return p.client.Close()
}
