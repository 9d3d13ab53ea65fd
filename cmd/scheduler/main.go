package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bdc_backend/internal/email"
	leadsrepo "bdc_backend/internal/leads/repository"
	"bdc_backend/internal/leads/scoring"
	"bdc_backend/internal/notification"
	"bdc_backend/internal/scheduler"
	"bdc_backend/internal/sequences/processor"
	seqrepo "bdc_backend/internal/sequences/repository"
	"bdc_backend/internal/sms"
	"bdc_backend/platform/config"
	"bdc_backend/platform/db"
	"bdc_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	var sender email.Sender = email.DisabledSender{}
	if cfg.IsEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
	} else {
		log.Warn("SMTP not configured; sequence email steps will fail and retry")
	}
	smsClient := sms.NewClient(cfg, log)
	if smsClient == nil {
		log.Warn("SMS gateway not configured; sequence SMS steps will fail and retry")
	}
	notifier := notification.New(sender, smsClient)

	proc := processor.New(seqrepo.New(pool), notifier, log, processor.Config{
		BatchSize:   cfg.GetSequenceBatchSize(),
		MaxAttempts: cfg.GetMaxStepAttempts(),
	})

	leadRepo := leadsrepo.New(pool)
	scorer := scoring.New(leadRepo, log)

	worker, err := scheduler.NewWorker(cfg, proc, leadRepo, scorer, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() {
		_ = client.Close()
	}()

	dispatcher := scheduler.NewDispatcher(client, cfg, log)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping scheduler")
	wg.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
