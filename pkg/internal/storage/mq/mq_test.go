package mq

import (
	"context"
	"testing"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// newChannelClient 基于 watermill 内存通道构造客户端，用于链路验证.
func newChannelClient() *Client {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	return &Client{publisher: pubsub, subscriber: pubsub}
}

// TestPublishSubscribeRoundTrip 测试消息经 Publish 发出后能被 Subscribe 收到.
func TestPublishSubscribeRoundTrip(t *testing.T) {
	cli := newChannelClient()
	defer func() { _ = cli.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := cli.Subscribe(ctx, "sw.health.ping")
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"ping":true}`))
	if err := cli.Publish(ctx, "sw.health.ping", msg); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	select {
	case got := <-msgs:
		got.Ack()

		if string(got.Payload) != `{"ping":true}` {
			t.Errorf("unexpected payload %s", got.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

// TestNilClient 测试未初始化客户端的防御行为.
func TestNilClient(t *testing.T) {
	var cli *Client

	if err := cli.Publish(context.Background(), "sw.health.ping"); err == nil {
		t.Error("expected error publishing on nil client")
	}

	if _, err := cli.Subscribe(context.Background(), "sw.health.ping"); err == nil {
		t.Error("expected error subscribing on nil client")
	}

	if cli.Publisher() != nil {
		t.Error("expected nil publisher on nil client")
	}
}
