package session

import (
	"context"
	"encoding/json"
	"fmt"

	commonredis "quickfirstaid/common/redis"
	"quickfirstaid/internal/models"

	"github.com/go-redis/redis/v8"
)

// RedisStreamSink appends events to a Redis stream.
type RedisStreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStreamSink(client *redis.Client, stream string, maxLen int64) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStreamSink) Name() string { return "redis-stream:" + s.stream }

func (s *RedisStreamSink) Publish(ctx context.Context, ev models.SessionEvent) error {
	_, err := commonredis.PublishJSONToStream(ctx, s.client, s.stream, s.maxLen, ev)
	return err
}

// Publisher is the subset of the MQTT client the sink needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error
}

// MQTTSink publishes events as JSON to one topic.
type MQTTSink struct {
	pub   Publisher
	topic string
	qos   byte
}

func NewMQTTSink(pub Publisher, topic string, qos byte) *MQTTSink {
	return &MQTTSink{pub: pub, topic: topic, qos: qos}
}

func (s *MQTTSink) Name() string { return "mqtt:" + s.topic }

func (s *MQTTSink) Publish(ctx context.Context, ev models.SessionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode session event: %w", err)
	}
	return s.pub.Publish(ctx, s.topic, s.qos, false, payload)
}
