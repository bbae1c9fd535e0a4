package queue_test

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/slacksweep/pkg/queue"
)

// capturingPublisher 记录发布到各主题的消息.
type capturingPublisher struct {
	published map[string][]*message.Message
}

func newCapturingPublisher() *capturingPublisher {
	return &capturingPublisher{published: make(map[string][]*message.Message)}
}

func (p *capturingPublisher) Publish(topic string, msgs ...*message.Message) error {
	p.published[topic] = append(p.published[topic], msgs...)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

// TestNewEventHeader 测试事件头的默认值与可选项.
func TestNewEventHeader(t *testing.T) {
	hdr := queue.NewEventHeader(queue.TopicSweepCompleted,
		queue.WithTraceID("run-123"),
		queue.WithProducer("slacksweep"),
	)

	if hdr.Topic != queue.TopicSweepCompleted {
		t.Errorf("unexpected topic %s", hdr.Topic)
	}

	if hdr.Version != queue.PayloadVersionV1 {
		t.Errorf("expected version v1, got %s", hdr.Version)
	}

	if hdr.TraceID != "run-123" || hdr.Producer != "slacksweep" {
		t.Errorf("options not applied: %+v", hdr)
	}

	if hdr.OccurredAt.IsZero() {
		t.Error("expected occurred_at to be set")
	}
}

// TestEncodeDecodeRoundTrip 测试信封编解码保留头与负载.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	env := queue.Message[queue.SweepCompletedPayload]{
		Header: queue.NewEventHeader(queue.TopicSweepCompleted, queue.WithTraceID("run-9")),
		Payload: queue.SweepCompletedPayload{
			RunID:        "run-9",
			Mode:         "manual",
			Matched:      10,
			Deleted:      8,
			Failed:       2,
			BytesDeleted: 4096,
		},
	}

	data, err := queue.Encode(env)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	decoded, err := queue.Decode[queue.SweepCompletedPayload](data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	if decoded.Header.TraceID != "run-9" || decoded.Header.Topic != queue.TopicSweepCompleted {
		t.Errorf("header mismatch: %+v", decoded.Header)
	}

	if decoded.Payload != env.Payload {
		t.Errorf("payload mismatch: %+v", decoded.Payload)
	}
}

// TestNewWatermillMessage 测试 watermill 消息的元数据设置.
func TestNewWatermillMessage(t *testing.T) {
	msg, err := queue.NewWatermillMessage(queue.TopicFileDeleted, queue.FileDeletedPayload{
		RunID: "run-1",
		File:  queue.FileRef{ID: "F001", Name: "report.pdf", Size: 2048},
	}, queue.WithProducer("slacksweep"))
	if err != nil {
		t.Fatalf("NewWatermillMessage returned error: %v", err)
	}

	if msg.UUID == "" {
		t.Error("expected message UUID to be set")
	}

	if msg.Metadata.Get("topic") != queue.TopicFileDeleted {
		t.Errorf("unexpected topic metadata %s", msg.Metadata.Get("topic"))
	}

	if msg.Metadata.Get("producer") != "slacksweep" {
		t.Errorf("unexpected producer metadata %s", msg.Metadata.Get("producer"))
	}

	parsed, err := queue.ParseWatermillMessage[queue.FileDeletedPayload](msg)
	if err != nil {
		t.Fatalf("ParseWatermillMessage returned error: %v", err)
	}

	if parsed.Payload.File.ID != "F001" {
		t.Errorf("unexpected payload %+v", parsed.Payload)
	}
}

// TestPublishSweepCompleted 测试发布助手把事件送到正确主题.
func TestPublishSweepCompleted(t *testing.T) {
	pub := newCapturingPublisher()

	err := queue.PublishSweepCompleted(pub, queue.SweepCompletedPayload{
		RunID:   "run-5",
		Mode:    "scheduled",
		Deleted: 3,
	}, queue.WithTraceID("run-5"))
	if err != nil {
		t.Fatalf("PublishSweepCompleted returned error: %v", err)
	}

	msgs := pub.published[queue.TopicSweepCompleted]
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message on %s, got %d", queue.TopicSweepCompleted, len(msgs))
	}

	parsed, err := queue.ParseSweepCompleted(msgs[0])
	if err != nil {
		t.Fatalf("ParseSweepCompleted returned error: %v", err)
	}

	if parsed.Payload.RunID != "run-5" || parsed.Payload.Deleted != 3 {
		t.Errorf("unexpected payload %+v", parsed.Payload)
	}
}
