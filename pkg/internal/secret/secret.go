// Package secret 提供 Slack token 的密钥源抽象.
// token 每次清理时重新获取，不做缓存，密钥轮换后下一次调用即生效.
package secret

import (
	"context"
	"fmt"

	"github.com/yeisme/slacksweep/pkg/configs"
)

// Provider 按需返回 Slack bot token.
type Provider interface {
	// Token 获取当前有效的 token；失败视为本次清理致命错误.
	Token(ctx context.Context) (string, error)
	// Close 释放底层连接.
	Close() error
}

// Factory 定义创建 Provider 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.SecretConfig) (Provider, error)

// factories 密钥源类型到工厂的映射.
var factories = map[configs.SecretProviderType]Factory{}

// RegisterFactory 注册密钥源工厂函数.
func RegisterFactory(t configs.SecretProviderType, f Factory) {
	factories[t] = f
}

// New 根据配置创建密钥源.
func New(ctx context.Context, cfg *configs.SecretConfig) (Provider, error) {
	factory, ok := factories[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported secret provider: %s", cfg.Provider)
	}

	return factory(ctx, cfg)
}
