package types_test

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/yeisme/slacksweep/pkg/configs"
	"github.com/yeisme/slacksweep/pkg/internal/types"
)

func intPtr(v int) *int { return &v }

// TestResolveSweepParamsDefaults 测试三个参数都缺省时取配置默认值.
func TestResolveSweepParamsDefaults(t *testing.T) {
	def := &configs.SweepConfig{Days: 30, Count: 1000, DryRun: true}

	params, err := types.ResolveSweepParams(url.Values{}, nil, def)
	if err != nil {
		t.Fatalf("ResolveSweepParams returned error: %v", err)
	}

	if params.Days != 30 || params.Count != 1000 || !params.DryRun {
		t.Errorf("expected defaults {30 1000 true}, got %+v", params)
	}
}

// TestResolveSweepParamsPrecedence 测试 查询参数 > 请求体 > 默认值 的优先级.
func TestResolveSweepParamsPrecedence(t *testing.T) {
	def := &configs.SweepConfig{Days: 30, Count: 1000, DryRun: true}
	body := &types.SweepBody{
		Days:      intPtr(10),
		Count:     intPtr(50),
		JustATest: intPtr(0),
	}

	// 查询参数覆盖请求体
	query := url.Values{}
	query.Set("days", "7")

	params, err := types.ResolveSweepParams(query, body, def)
	if err != nil {
		t.Fatalf("ResolveSweepParams returned error: %v", err)
	}

	if params.Days != 7 {
		t.Errorf("expected query days 7, got %d", params.Days)
	}

	// 请求体覆盖默认值
	if params.Count != 50 {
		t.Errorf("expected body count 50, got %d", params.Count)
	}

	if params.DryRun {
		t.Error("expected body just_a_test=0 to disable dry run")
	}
}

// TestResolveSweepParamsDryRunNonZero 测试 just_a_test 任何非零值都视为演练.
func TestResolveSweepParamsDryRunNonZero(t *testing.T) {
	def := &configs.SweepConfig{Days: 30, Count: 1000, DryRun: false}

	for _, raw := range []string{"1", "2", "-1"} {
		query := url.Values{}
		query.Set("just_a_test", raw)

		params, err := types.ResolveSweepParams(query, nil, def)
		if err != nil {
			t.Fatalf("ResolveSweepParams(%q) returned error: %v", raw, err)
		}

		if !params.DryRun {
			t.Errorf("expected just_a_test=%s to enable dry run", raw)
		}
	}
}

// TestResolveSweepParamsMalformed 测试无法解析的查询参数返回 ParamError.
func TestResolveSweepParamsMalformed(t *testing.T) {
	def := &configs.SweepConfig{Days: 30, Count: 1000, DryRun: true}

	for _, name := range []string{"days", "count", "just_a_test"} {
		query := url.Values{}
		query.Set(name, "not-a-number")

		_, err := types.ResolveSweepParams(query, nil, def)
		if err == nil {
			t.Fatalf("expected error for malformed %s, got nil", name)
		}

		var paramErr *types.ParamError
		if !errors.As(err, &paramErr) {
			t.Errorf("expected *ParamError for %s, got %T", name, err)
		}

		if paramErr.Name != name {
			t.Errorf("expected ParamError.Name=%s, got %s", name, paramErr.Name)
		}
	}
}

// TestCutoff 测试候选文件时间上界的计算.
func TestCutoff(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	params := types.SweepParams{Days: 30}

	want := now.Unix() - 30*24*60*60
	if got := params.Cutoff(now); got != want {
		t.Errorf("Cutoff() = %d, want %d", got, want)
	}
}

// TestFormatMB 测试字节到 MB 的格式化.
func TestFormatMB(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0.00"},
		{1048576, "1.00"},
		{1572864, "1.50"},
		{524288, "0.50"},
	}

	for _, c := range cases {
		if got := types.FormatMB(c.bytes); got != c.want {
			t.Errorf("FormatMB(%d) = %s, want %s", c.bytes, got, c.want)
		}
	}
}

// TestSweepResultHTML 测试报告行以 <br><br> 连接.
func TestSweepResultHTML(t *testing.T) {
	result := &types.SweepResult{
		Lines: []string{"first line", "second line", "third line"},
	}

	want := "first line<br><br>second line<br><br>third line"
	if got := result.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}

	empty := &types.SweepResult{}
	if got := empty.HTML(); got != "" {
		t.Errorf("HTML() on empty result = %q, want empty string", got)
	}
}

// TestFormatTimestamp 测试报告时间戳格式.
func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 6, 15, 9, 5, 3, 0, time.UTC)

	if got := types.FormatTimestamp(ts); got != "2024-06-15 09:05:03" {
		t.Errorf("FormatTimestamp() = %q", got)
	}
}
