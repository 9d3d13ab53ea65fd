package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"bdc_backend/platform/config"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) (*Client, error) {
	if cfg.GetRedisAddr() == "" {
		return nil, fmt.Errorf("redis address not configured")
	}

	return &Client{
		client: asynq.NewClient(redisClientOpt(cfg)),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueSequenceTick(ctx context.Context, at time.Time) error {
	task, err := NewSequenceTickTask(SequenceTickPayload{EnqueuedAt: at})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

func (c *Client) EnqueueLeadRescore(ctx context.Context, day string) error {
	task, err := NewLeadRescoreTask(LeadRescorePayload{Day: day})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

func redisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
	}
}
