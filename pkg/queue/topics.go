// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：sw.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：sweep(清理运行)、file(单文件)
// 动作/状态：started(开始)、completed(完成)、failed(失败)、deleted(已删除)、skipped(已跳过)

const (
	// 清理运行领域.
	TopicSweepStarted   = "sw.sweep.started"   // 一次清理运行开始（携带生效参数）
	TopicSweepCompleted = "sw.sweep.completed" // 一次清理运行结束（携带计数汇总，dry-run 同样发布）
	TopicSweepFailed    = "sw.sweep.failed"    // 清理因不可恢复错误中止

	// 单文件领域.
	TopicFileDeleted = "sw.file.deleted" // 单个文件删除成功（ok=true）
	TopicFileSkipped = "sw.file.skipped" // 单个文件被跳过（API 业务错误或归档失败）

	// 运维领域.
	TopicHealthPing = "sw.health.ping" // 健康检查心跳，验证 MQ 链路可写
)

// SweepTopics 清理运行相关主题集合，用于批量操作或权限控制.
var SweepTopics = []string{
	TopicSweepStarted, TopicSweepCompleted, TopicSweepFailed,
	TopicFileDeleted, TopicFileSkipped,
}
