package types

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yeisme/slacksweep/pkg/configs"
)

// MBFactor 字节到 MB 的换算系数.
const MBFactor = float64(1 << 20)

// TimestampLayout 报告中时间戳的格式.
const TimestampLayout = "2006-01-02 15:04:05"

// ParamError 请求参数解析失败，处理层据此返回 400.
type ParamError struct {
	Name  string
	Value string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %q", e.Name, e.Value)
}

// SweepBody JSON 请求体中的可选参数，指针区分"未提供"与零值.
type SweepBody struct {
	Days      *int `json:"days,omitempty"`
	Count     *int `json:"count,omitempty"`
	JustATest *int `json:"just_a_test,omitempty"`
}

// SweepParams 一次清理的生效参数.
type SweepParams struct {
	Days   int  `rule:"min=1"`
	Count  int  `rule:"min=1,max=1000"`
	DryRun bool // just_a_test != 0
}

// Cutoff 返回候选文件的时间上界（Unix 秒）：now − days*86400.
func (p SweepParams) Cutoff(now time.Time) int64 {
	return now.Unix() - int64(p.Days)*24*60*60
}

// ResolveSweepParams 按 查询参数 > JSON 请求体 > 配置默认值 的优先级解析参数.
// 查询参数无法解析为整数时返回 *ParamError.
func ResolveSweepParams(query url.Values, body *SweepBody, def *configs.SweepConfig) (SweepParams, error) {
	var bodyDays, bodyCount, bodyDry *int
	if body != nil {
		bodyDays, bodyCount, bodyDry = body.Days, body.Count, body.JustATest
	}

	days, err := resolveInt(query, "days", bodyDays, def.Days)
	if err != nil {
		return SweepParams{}, err
	}

	count, err := resolveInt(query, "count", bodyCount, def.Count)
	if err != nil {
		return SweepParams{}, err
	}

	dryDefault := 0
	if def.DryRun {
		dryDefault = 1
	}

	dry, err := resolveInt(query, "just_a_test", bodyDry, dryDefault)
	if err != nil {
		return SweepParams{}, err
	}

	return SweepParams{
		Days:   days,
		Count:  count,
		DryRun: dry != 0,
	}, nil
}

// resolveInt 单个整数参数的三级解析.
func resolveInt(query url.Values, name string, bodyValue *int, def int) (int, error) {
	if raw := query.Get(name); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, &ParamError{Name: name, Value: raw}
		}

		return v, nil
	}

	if bodyValue != nil {
		return *bodyValue, nil
	}

	return def, nil
}

// FileRecord 过滤后保留的候选文件.
type FileRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	When     string `json:"timestamp"` // 上传时间的本地格式化表示
	Mimetype string `json:"mimetype"`
	Size     int64  `json:"size"`
	// Uploaded 原始 Unix 秒，供事件负载使用
	Uploaded int64 `json:"-"`
	// URLPrivate 私有下载地址，仅归档流程使用
	URLPrivate string `json:"-"`
}

// SweepResult 一次清理运行的完整结果.
type SweepResult struct {
	RunID  string      `json:"run_id"`
	Mode   string      `json:"mode"`
	Params SweepParams `json:"params"`

	Matched        int   `json:"matched"`
	AttemptedBytes int64 `json:"attempted_bytes"`
	Deleted        int   `json:"deleted"`
	DeletedBytes   int64 `json:"deleted_bytes"`
	Failed         int   `json:"failed"`
	Archived       int   `json:"archived"`

	// Lines 报告行，渲染时以 <br><br> 连接
	Lines []string `json:"lines"`
}

// HTML 把报告行渲染为 HTML 片段.
func (r *SweepResult) HTML() string {
	return strings.Join(r.Lines, "<br><br>")
}

// FormatMB 字节数格式化为保留两位小数的 MB 字符串.
func FormatMB(bytes int64) string {
	return fmt.Sprintf("%.2f", float64(bytes)/MBFactor)
}

// FormatTimestamp 格式化报告时间戳.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// SweepRunsQuery /sweep/runs 列表查询参数.
type SweepRunsQuery struct {
	Limit int `form:"limit" rule:"min=1,max=200"`
}
