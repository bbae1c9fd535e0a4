package model

import (
	"time"
)

// 清理运行状态.
const (
	SweepStatusRunning   = "running"
	SweepStatusCompleted = "completed"
	SweepStatusFailed    = "failed"
)

// 触发方式.
const (
	SweepModeManual    = "manual"
	SweepModeScheduled = "scheduled"
)

// SweepRun 一次清理运行的审计记录.
type SweepRun struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// 运行标识，用于事件关联与日志检索
	RunID string `gorm:"size:64;uniqueIndex" json:"run_id"`
	Mode  string `gorm:"size:16;index"       json:"mode"`
	// 本次运行的生效参数
	Days   int   `json:"days"`
	Count  int   `json:"count"`
	DryRun bool  `json:"dry_run"`
	Cutoff int64 `gorm:"index" json:"cutoff"` // Unix 秒，早于该时刻的文件进入候选
	// 计数器：Matched 为命中过滤的候选数，Deleted 仅统计 ok=true 的删除
	Matched      int   `json:"matched"`
	Deleted      int   `json:"deleted"`
	Failed       int   `json:"failed"`
	Archived     int   `json:"archived"`
	BytesDeleted int64 `json:"bytes_deleted"`
	// 中途失败时记录错误文本
	Status    string    `gorm:"size:16;index" json:"status"`
	Error     string    `gorm:"type:text"     json:"error,omitempty"`
	StartedAt time.Time `gorm:"index"         json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
