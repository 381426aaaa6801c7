package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"attribution/internal/models"
)

// EventHandler processes a validated, deserialized event envelope.
type EventHandler func(ctx context.Context, envelope *models.EventEnvelope, streamID string) error

// Consumer reads attribution events from a Redis stream using a consumer group.
// Messages are acknowledged only after the handler succeeds, so delivery is at-least-once.
type Consumer struct {
	client        *redis.Client
	streamKey     string
	consumerGroup string
	consumerName  string
	blockTime     time.Duration
	batchSize     int64
	handler       EventHandler
	validator     *envelopeValidator
	logger        *slog.Logger
}

// Config holds consumer configuration.
type Config struct {
	StreamKey     string        // e.g. "attribution:events"
	ConsumerGroup string        // e.g. "attribution"
	ConsumerName  string        // e.g. "attribution-1"
	BlockTime     time.Duration // how long XREADGROUP blocks waiting for messages
	BatchSize     int64         // messages per read
}

// New creates a consumer and its consumer group if missing.
func New(ctx context.Context, client *redis.Client, cfg Config, handler EventHandler, logger *slog.Logger) (*Consumer, error) {
	validator, err := newEnvelopeValidator()
	if err != nil {
		return nil, err
	}

	if cfg.BlockTime <= 0 {
		cfg.BlockTime = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}

	c := &Consumer{
		client:        client,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		consumerName:  cfg.ConsumerName,
		blockTime:     cfg.BlockTime,
		batchSize:     cfg.BatchSize,
		handler:       handler,
		validator:     validator,
		logger:        logger.With("component", "consumer", "stream_key", cfg.StreamKey),
	}

	// XGroupCreateMkStream also creates the stream
	err = client.XGroupCreateMkStream(ctx, cfg.StreamKey, cfg.ConsumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("consumer_initialized",
		"consumer_group", cfg.ConsumerGroup,
		"consumer_name", cfg.ConsumerName,
	)

	return c, nil
}

// Start consumes messages until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer_starting")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer_stopping")
			return ctx.Err()
		default:
		}

		if _, err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.logger.Error("xreadgroup_failed", "error", err)
			time.Sleep(1 * time.Second)
		}
	}
}

// poll reads one batch, handles it and acknowledges the successes.
func (c *Consumer) poll(ctx context.Context) (int, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    c.batchSize,
		Block:    c.blockTime,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}

	acked := 0
	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := c.processMessage(ctx, message); err != nil {
				c.logger.Error("message_processing_failed",
					"stream_id", message.ID,
					"error", err,
				)
				// left pending for redelivery
				continue
			}

			if err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, message.ID).Err(); err != nil {
				c.logger.Error("xack_failed",
					"stream_id", message.ID,
					"error", err,
				)
				continue
			}
			acked++
		}
	}
	return acked, nil
}

// processMessage validates and decodes a single message and passes it to the handler.
// Messages carry the envelope JSON in their "data" field.
func (c *Consumer) processMessage(ctx context.Context, msg redis.XMessage) error {
	startTime := time.Now()

	dataField, ok := msg.Values["data"]
	if !ok {
		return fmt.Errorf("message missing 'data' field")
	}

	jsonString, ok := dataField.(string)
	if !ok {
		return fmt.Errorf("data field is not a string")
	}

	if err := c.validator.Validate([]byte(jsonString)); err != nil {
		return err
	}

	var envelope models.EventEnvelope
	if err := json.Unmarshal([]byte(jsonString), &envelope); err != nil {
		return fmt.Errorf("json unmarshal failed: %w", err)
	}

	if err := c.handler(ctx, &envelope, msg.ID); err != nil {
		return fmt.Errorf("handler failed: %w", err)
	}

	c.logger.Debug("event_processed",
		"stream_id", msg.ID,
		"advertiser_id", envelope.AdvertiserID,
		"type", envelope.Type,
		"lag_ms", time.Since(envelope.TsEvent).Milliseconds(),
		"processing_ms", time.Since(startTime).Milliseconds(),
	)

	return nil
}
