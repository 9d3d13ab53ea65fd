package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bdc_backend/internal/analytics"
	"bdc_backend/internal/appointments"
	"bdc_backend/internal/auth"
	"bdc_backend/internal/email"
	"bdc_backend/internal/events"
	apphttp "bdc_backend/internal/http"
	"bdc_backend/internal/http/router"
	"bdc_backend/internal/inventory"
	"bdc_backend/internal/leads"
	"bdc_backend/internal/notification"
	"bdc_backend/internal/reports"
	"bdc_backend/internal/sequences"
	"bdc_backend/internal/sms"
	"bdc_backend/internal/tasks"
	"bdc_backend/internal/templates"
	"bdc_backend/platform/config"
	"bdc_backend/platform/db"
	"bdc_backend/platform/logger"
	"bdc_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	var sender email.Sender = email.DisabledSender{}
	if cfg.IsEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
		log.Info("email sender initialized", "host", cfg.SMTPHost)
	} else {
		log.Warn("SMTP not configured; sequence email steps will fail and retry")
	}

	smsClient := sms.NewClient(cfg, log)
	if smsClient == nil {
		log.Warn("SMS gateway not configured; sequence SMS steps will fail and retry")
	}
	notifier := notification.New(sender, smsClient)

	templatesModule := templates.NewModule(pool, val)
	if err := templatesModule.Repository().Seed(ctx); err != nil {
		log.Error("failed to seed default templates", "error", err)
		panic("failed to seed default templates: " + err.Error())
	}

	authModule := auth.NewModule(pool, cfg, val, log)
	leadsModule := leads.NewModule(pool, eventBus, val, log, cfg.DefaultRegion)
	sequencesModule := sequences.NewModule(pool, eventBus, notifier, cfg, val, log)
	tasksModule := tasks.NewModule(pool, val)
	appointmentsModule := appointments.NewModule(pool, leadsModule.Repository(), leadsModule.Scorer(), val, log)
	inventoryModule := inventory.NewModule(pool, leadsModule.Scorer(), val, log)
	analyticsModule := analytics.NewModule(pool)
	reportsModule, err := reports.NewModule(pool, cfg, log)
	if err != nil {
		log.Error("failed to initialize reports module", "error", err)
		panic("failed to initialize reports module: " + err.Error())
	}

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			sequencesModule,
			templatesModule,
			tasksModule,
			appointmentsModule,
			inventoryModule,
			analyticsModule,
			reportsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
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
