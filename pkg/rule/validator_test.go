package rule_test

import (
	"testing"

	"github.com/yeisme/slacksweep/pkg/rule"
)

// sweepLike 用于测试 ValidateStruct 的参数结构.
type sweepLike struct {
	Days  int `rule:"min=1"`
	Count int `rule:"min=1,max=1000"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	// 有效参数
	valid := sweepLike{Days: 30, Count: 1000}

	err := rule.ValidateStruct(valid)
	if err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 无效参数：Days 小于 1
	invalidDays := sweepLike{Days: 0, Count: 100}

	err = rule.ValidateStruct(invalidDays)
	if err == nil {
		t.Error("Expected error for days < 1, got nil")
	}

	// 无效参数：Count 超出上限
	invalidCount := sweepLike{Days: 30, Count: 1001}

	err = rule.ValidateStruct(invalidCount)
	if err == nil {
		t.Error("Expected error for count > 1000, got nil")
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	// 有效 cron 占位：非空字符串
	err := rule.ValidateVar("30 4 * * *", "required")
	if err != nil {
		t.Errorf("Expected no error for non-empty string, got %v", err)
	}

	// 无效：空字符串
	err = rule.ValidateVar("", "required")
	if err == nil {
		t.Error("Expected error for empty string, got nil")
	}

	// 有效数字
	err = rule.ValidateVar(25, "gte=18")
	if err != nil {
		t.Errorf("Expected no error for valid number, got %v", err)
	}

	// 无效数字
	err = rule.ValidateVar(15, "gte=18")
	if err == nil {
		t.Error("Expected error for invalid number, got nil")
	}
}
