package queue

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"agrisense/api/internal/config"
	"agrisense/api/internal/service"
)

// Consumer drains the disease report stream and runs the classification stub
// for each queued report.
type Consumer struct {
	client  *redis.Client
	cfg     config.DiseaseConfig
	disease *service.DiseaseService
	log     zerolog.Logger
}

func NewConsumer(client *redis.Client, cfg config.DiseaseConfig, disease *service.DiseaseService, log zerolog.Logger) *Consumer {
	return &Consumer{
		client:  client,
		cfg:     cfg,
		disease: disease,
		log:     log,
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.read(ctx); err != nil && err != context.Canceled {
				c.log.Error().Err(err).Msg("stream read error")
				time.Sleep(2 * time.Second)
			}
		}
	}
}

func (c *Consumer) read(ctx context.Context) error {
	result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			if err := c.handleMessage(ctx, msg); err != nil {
				c.log.Error().
					Err(err).
					Str("message_id", msg.ID).
					Msg("handle message failed")
				continue
			}
			if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
				c.log.Error().Err(err).Str("message_id", msg.ID).Msg("ack failed")
			}
		}
	}
	return nil
}

func (c *Consumer) handleMessage(ctx context.Context, msg redis.XMessage) error {
	reportID, _ := msg.Values["reportId"].(string)
	imageKey, _ := msg.Values["imageKey"].(string)
	if reportID == "" {
		c.log.Warn().Str("message_id", msg.ID).Msg("dropping message without reportId")
		return nil
	}

	return c.disease.Process(ctx, reportID, imageKey)
}
