package scheduler

import (
	"context"
	"time"

	"bdc_backend/platform/config"
	"bdc_backend/platform/logger"
)

// Dispatcher periodically enqueues the recurring jobs: a sequence tick
// every interval and a full lead rescore once per day at the configured
// UTC hour.
type Dispatcher struct {
	client       *Client
	log          *logger.Logger
	tickInterval time.Duration
	rescoreHour  int
	now          func() time.Time
}

func NewDispatcher(client *Client, cfg config.SchedulerConfig, log *logger.Logger) *Dispatcher {
	interval := cfg.GetSequenceTickInterval()
	if interval <= 0 {
		interval = time.Minute
	}
	return &Dispatcher{
		client:       client,
		log:          log,
		tickInterval: interval,
		rescoreHour:  cfg.GetRescoreHourUTC(),
		now:          time.Now,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()

	d.log.Info("dispatcher started",
		"tick_interval", d.tickInterval.String(),
		"rescore_hour_utc", d.rescoreHour,
	)

	var lastRescoreDay string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := d.now().UTC()
			if err := d.client.EnqueueSequenceTick(ctx, now); err != nil {
				d.log.Error("enqueue sequence tick failed", "error", err.Error())
			}

			if now.Hour() == d.rescoreHour {
				day := now.Format("2006-01-02")
				if day != lastRescoreDay {
					if err := d.client.EnqueueLeadRescore(ctx, day); err != nil {
						d.log.Error("enqueue lead rescore failed", "error", err.Error())
						continue
					}
					lastRescoreDay = day
				}
			}
		}
	}
}
