package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"bdc_backend/internal/leads/repository"
	"bdc_backend/internal/leads/scoring"
	"bdc_backend/internal/sequences/processor"
	"bdc_backend/platform/config"
	"bdc_backend/platform/logger"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	proc   *processor.Processor
	leads  *repository.Repository
	scorer *scoring.Service
	lock   *TickLock
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, proc *processor.Processor, leads *repository.Repository, scorer *scoring.Service, log *logger.Logger) (*Worker, error) {
	if cfg.GetRedisAddr() == "" {
		return nil, fmt.Errorf("redis address not configured")
	}

	opt := asynq.RedisClientOpt{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
	}
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"default": 1,
		},
	})

	lockTTL := cfg.GetSequenceTickInterval()
	if lockTTL < time.Minute {
		lockTTL = time.Minute
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		proc:   proc,
		leads:  leads,
		scorer: scorer,
		lock:   NewTickLock(rdb, lockTTL),
		log:    log,
	}

	mux.HandleFunc(TaskSequenceTick, w.handleSequenceTick)
	mux.HandleFunc(TaskLeadRescore, w.handleLeadRescore)

	return w, nil
}

// handleSequenceTick runs one batch of due assignments. The tick lock makes
// overlapping ticks from a slow previous run or a second worker a no-op.
func (w *Worker) handleSequenceTick(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseSequenceTickPayload(task); err != nil {
		return err
	}

	acquired, err := w.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		w.log.Debug("sequence tick already in flight, skipping")
		return nil
	}
	defer func() {
		if err := w.lock.Release(context.WithoutCancel(ctx)); err != nil {
			w.log.Warn("tick lock release failed", "error", err.Error())
		}
	}()

	n, err := w.proc.ProcessDue(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		w.log.Info("sequence tick processed", "executed_steps", n)
	}
	return nil
}

// handleLeadRescore recomputes score and lifecycle stage for the whole lead
// book. Recency points decay without writes, so a nightly pass keeps stored
// scores honest.
func (w *Worker) handleLeadRescore(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadRescorePayload(task)
	if err != nil {
		return err
	}

	ids, err := w.leads.ListIDs(ctx)
	if err != nil {
		return err
	}

	var failures int
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := w.scorer.Recalculate(ctx, id); err != nil {
			failures++
			w.log.Error("nightly rescore failed for lead", "lead_id", id.String(), "error", err.Error())
		}
	}

	w.log.Info("nightly rescore finished",
		"day", payload.Day,
		"leads", len(ids),
		"failures", failures,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
