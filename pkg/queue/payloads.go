package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 清理运行领域 --------------------------

// SweepParams 一次运行的生效参数.
type SweepParams struct {
	Days   int   `json:"days"`
	Count  int   `json:"count"`
	DryRun bool  `json:"dry_run"`
	Cutoff int64 `json:"cutoff"` // Unix 秒
}

// SweepStartedPayload 清理运行开始.
type SweepStartedPayload struct {
	RunID  string      `json:"run_id"`
	Mode   string      `json:"mode"` // manual / scheduled
	Params SweepParams `json:"params"`
}

// SweepCompletedPayload 清理运行结束的计数汇总.
type SweepCompletedPayload struct {
	RunID        string      `json:"run_id"`
	Mode         string      `json:"mode"`
	Params       SweepParams `json:"params"`
	Matched      int         `json:"matched"`
	Deleted      int         `json:"deleted"`
	Failed       int         `json:"failed"`
	Archived     int         `json:"archived,omitempty"`
	BytesDeleted int64       `json:"bytes_deleted"`
	DurationMS   int64       `json:"duration_ms"`
}

// SweepFailedPayload 清理中止.
type SweepFailedPayload struct {
	RunID string `json:"run_id"`
	Mode  string `json:"mode"`
	Error string `json:"error"`
	// Partial 中止前已完成的删除数
	Partial int `json:"partial"`
}

// -------------------------- 单文件领域 --------------------------

// FileRef 标识一个 Slack 文件.
type FileRef struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Mimetype  string `json:"mimetype,omitempty"`
	Size      int64  `json:"size,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"` // 上传时间（Unix 秒）
}

// FileDeletedPayload 单个文件删除成功.
type FileDeletedPayload struct {
	RunID string  `json:"run_id"`
	File  FileRef `json:"file"`
	// ArchiveKey 删除前归档的对象键，未启用归档时为空
	ArchiveKey string `json:"archive_key,omitempty"`
}

// FileSkippedPayload 单个文件被跳过.
type FileSkippedPayload struct {
	RunID  string  `json:"run_id"`
	File   FileRef `json:"file"`
	Reason string  `json:"reason"` // 如 file_not_found / cant_delete_file / archive_failed
}

// -------------------------- 运维领域 --------------------------

// HealthPingPayload 健康检查心跳.
type HealthPingPayload struct {
	At time.Time `json:"at"` // UTC
}
