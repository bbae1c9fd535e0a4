package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeNATS MQType = "nats"

	DefaultMQEnabled     = false
	DefaultMQURL         = "localhost:4222"
	DefaultMQUser        = ""
	DefaultMQPassword    = ""
	DefaultMaxReconnects = 5                    // 默认最大重连次数.
	DefaultReconnectWait = 5                    // 默认重连等待时间（秒）.
	DefaultMQClientID    = "slacksweep-app"     // 默认客户端ID
	DefaultMaxPingsOut   = 3                    // 默认最大ping输出次数
	DefaultPingInterval  = 20                   // 默认ping间隔 (秒)
	DefaultBufferSize    = 32768                // 默认缓冲区大小 (32KB)

	// JetStream 流配置常量.

	DefaultStreamName = "SLACKSWEEP" // 默认流名称
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Type    MQType         `mapstructure:"type"   rule:"oneof=nats"`
	Common  MQCommonConfig `mapstructure:"common"`
	NATS    MQNATSConfig   `mapstructure:"nats"`
}

// MQCommonConfig 通用MQ配置.
type MQCommonConfig struct {
	URL           string `mapstructure:"url"            rule:"hostname_port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	ClientID      string `mapstructure:"client_id"`
	MaxReconnects int    `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int    `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
	MaxPingsOut   int    `mapstructure:"max_pings_out"  rule:"min=1,max=10"`
	PingInterval  int    `mapstructure:"ping_interval"  rule:"min=1,max=300"`
	BufferSize    int    `mapstructure:"buffer_size"    rule:"min=1024,max=1048576"`
}

// MQNATSConfig NATS MQ 配置.
type MQNATSConfig struct {
	JetStreamEnabled       bool   `mapstructure:"jetstream_enabled"`
	StreamName             string `mapstructure:"stream_name"`
	JetStreamAutoProvision bool   `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool   `mapstructure:"jetstream_track_msg_id"`
	JetStreamAckAsync      bool   `mapstructure:"jetstream_ack_async"`
	JetStreamDurablePrefix string `mapstructure:"jetstream_durable_prefix"`
	JWT                    string `mapstructure:"jwt"`
	NKey                   string `mapstructure:"nkey"`
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.enabled", DefaultMQEnabled)
	v.SetDefault("mq.type", MQTypeNATS)
	v.SetDefault("mq.common.url", DefaultMQURL)
	v.SetDefault("mq.common.user", DefaultMQUser)
	v.SetDefault("mq.common.password", DefaultMQPassword)
	v.SetDefault("mq.common.client_id", DefaultMQClientID)
	v.SetDefault("mq.common.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.common.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("mq.common.max_pings_out", DefaultMaxPingsOut)
	v.SetDefault("mq.common.ping_interval", DefaultPingInterval)
	v.SetDefault("mq.common.buffer_size", DefaultBufferSize)
	v.SetDefault("mq.nats.jetstream_enabled", false)
	v.SetDefault("mq.nats.stream_name", DefaultStreamName)
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", false)
	v.SetDefault("mq.nats.jetstream_ack_async", false)
	v.SetDefault("mq.nats.jetstream_durable_prefix", "")
}
