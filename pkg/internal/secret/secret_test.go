package secret_test

import (
	"context"
	"testing"

	"github.com/yeisme/slacksweep/pkg/configs"
	"github.com/yeisme/slacksweep/pkg/internal/secret"
)

// TestEnvProvider 测试 env 密钥源返回配置中的 token.
func TestEnvProvider(t *testing.T) {
	cfg := &configs.SecretConfig{
		Provider: configs.SecretProviderEnv,
		Token:    "xoxb-local",
	}

	prov, err := secret.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer func() { _ = prov.Close() }()

	token, err := prov.Token(context.Background())
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}

	if token != "xoxb-local" {
		t.Errorf("expected xoxb-local, got %q", token)
	}
}

// TestEnvProviderMissingToken 测试 token 缺失时创建失败.
func TestEnvProviderMissingToken(t *testing.T) {
	cfg := &configs.SecretConfig{Provider: configs.SecretProviderEnv}

	if _, err := secret.New(context.Background(), cfg); err == nil {
		t.Fatal("expected error for missing token")
	}
}

// TestNewUnsupportedProvider 测试未注册的密钥源类型.
func TestNewUnsupportedProvider(t *testing.T) {
	cfg := &configs.SecretConfig{Provider: "vault"}

	if _, err := secret.New(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

// TestResourceName 测试 Secret Manager 资源路径拼装.
func TestResourceName(t *testing.T) {
	cfg := &configs.SecretConfig{
		Project:  "my-project",
		SecretID: "slack-bot-token",
		Version:  "latest",
	}

	want := "projects/my-project/secrets/slack-bot-token/versions/latest"
	if got := cfg.ResourceName(); got != want {
		t.Errorf("ResourceName() = %q, want %q", got, want)
	}
}
