package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"profile-service/pkg/logger"
)

// Well-known topic names.
const (
	TopicConfirmationRequired = "profile.confirmation_required"
	TopicConfirmationDecided  = "profile.confirmation_decided"
)

const ensureAttempts = 20

// Client wraps Kafka operations.
type Client struct {
	brokers []string
	writer  *kafkago.Writer
	log     logger.ILogger
}

// NewClient returns a Client connected to the given brokers.
func NewClient(brokers []string, log logger.ILogger) *Client {
	return &Client{
		brokers: brokers,
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireAll,
		},
		log: log,
	}
}

// EnsureTopics creates topics if they don't already exist (with retry).
func (c *Client) EnsureTopics(ctx context.Context, topics ...string) error {
	for attempt := 1; attempt <= ensureAttempts; attempt++ {
		conn, err := kafkago.DialContext(ctx, "tcp", c.brokers[0])
		if err != nil {
			c.log.Warning("kafka not ready", logger.Int("attempt", attempt), logger.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		configs := make([]kafkago.TopicConfig, len(topics))
		for i, t := range topics {
			configs[i] = kafkago.TopicConfig{
				Topic:             t,
				NumPartitions:     3,
				ReplicationFactor: 1,
			}
		}

		err = conn.CreateTopics(configs...)
		conn.Close()
		if err != nil {
			c.log.Warning("topic creation returned (may already exist)", logger.Error(err))
		}
		c.log.Info("kafka topics ensured")
		return nil
	}
	return fmt.Errorf("kafka: could not connect after %d attempts", ensureAttempts)
}

// Publish sends a JSON-serialised message to a topic.
func (c *Client) Publish(ctx context.Context, topic, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	})
}

// Consume reads topic as part of groupID until ctx is cancelled. A handler
// error is logged and the message is still committed.
func (c *Client) Consume(ctx context.Context, topic, groupID string, handler func(context.Context, []byte) error) error {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  c.brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer r.Close()

	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("kafka read error", logger.String("topic", topic), logger.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		if err := handler(ctx, msg.Value); err != nil {
			c.log.Error("kafka handler error",
				logger.String("topic", topic), logger.Int64("offset", msg.Offset), logger.Error(err))
		}
	}
}

// Close flushes pending writes.
func (c *Client) Close() error { return c.writer.Close() }
