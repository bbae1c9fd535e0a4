package secret

import (
	"context"
	"fmt"

	"github.com/yeisme/slacksweep/pkg/configs"
)

// init 注册 env 工厂.
func init() {
	RegisterFactory(configs.SecretProviderEnv, envFactory)
}

// envProvider 从配置/环境变量（SLACK_TOKEN）读取 token，供本地调试与测试.
type envProvider struct {
	token string
}

func envFactory(_ context.Context, cfg *configs.SecretConfig) (Provider, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("secret provider env requires SLACK_TOKEN")
	}

	return &envProvider{token: cfg.Token}, nil
}

func (p *envProvider) Token(_ context.Context) (string, error) {
	return p.token, nil
}

func (p *envProvider) Close() error { return nil }
