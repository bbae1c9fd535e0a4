package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishSweepStarted 发布 sw.sweep.started 事件.
func PublishSweepStarted(pub message.Publisher, payload SweepStartedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicSweepStarted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicSweepStarted, msg)
}

// PublishSweepCompleted 发布 sw.sweep.completed 事件.
// 运行结束后通知下游消费方（告警、审计等），dry-run 运行同样发布.
func PublishSweepCompleted(pub message.Publisher, payload SweepCompletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicSweepCompleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicSweepCompleted, msg)
}

// PublishSweepFailed 发布 sw.sweep.failed 事件.
func PublishSweepFailed(pub message.Publisher, payload SweepFailedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicSweepFailed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicSweepFailed, msg)
}

// PublishFileDeleted 发布 sw.file.deleted 事件.
func PublishFileDeleted(pub message.Publisher, payload FileDeletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileDeleted, msg)
}

// PublishFileSkipped 发布 sw.file.skipped 事件.
func PublishFileSkipped(pub message.Publisher, payload FileSkippedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileSkipped, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileSkipped, msg)
}

// ParseSweepCompleted 将 Watermill 消息解析为强类型 Envelope（SweepCompletedPayload）.
func ParseSweepCompleted(msg *message.Message) (Message[SweepCompletedPayload], error) {
	return ParseWatermillMessage[SweepCompletedPayload](msg)
}

// ParseFileDeleted 将 Watermill 消息解析为强类型 Envelope（FileDeletedPayload）.
func ParseFileDeleted(msg *message.Message) (Message[FileDeletedPayload], error) {
	return ParseWatermillMessage[FileDeletedPayload](msg)
}
