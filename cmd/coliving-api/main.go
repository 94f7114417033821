// Command coliving-api runs the coliving backend HTTP server: audit log,
// reminder settings, and the scheduled reminder processor.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/MoonrakerAI/coliving-backend/internal/api"
	"github.com/MoonrakerAI/coliving-backend/internal/config"
	"github.com/MoonrakerAI/coliving-backend/internal/db"
	"github.com/MoonrakerAI/coliving-backend/internal/db/migrations"
	"github.com/MoonrakerAI/coliving-backend/internal/dbpool"
	"github.com/MoonrakerAI/coliving-backend/internal/kv"
	"github.com/MoonrakerAI/coliving-backend/internal/notify"
	"github.com/MoonrakerAI/coliving-backend/internal/service"
	"github.com/MoonrakerAI/coliving-backend/internal/store"
)

const shutdownGrace = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
			return err
		}
	}

	kvStore, err := newKVStore(cfg)
	if err != nil {
		return err
	}

	base := store.Base{KV: kvStore, Log: log}
	auditStore := store.NewAuditStore(base)
	settingsStore := store.NewSettingsStore(base)
	reminderLog := store.NewReminderLogStore(base)
	payments := store.NewPaymentStore(pool, log)

	auditSvc := service.NewAuditService(auditStore, log)
	auditWorker := service.NewAuditWorker(auditStore, log, cfg.AuditQueue)
	settingsSvc := service.NewSettingsService(settingsStore, log)

	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword.Value(), cfg.MailFrom, log)

	processor := service.NewReminderProcessor(service.ProcessorOpts{
		Payments:      payments,
		Settings:      settingsSvc,
		LogStore:      reminderLog,
		Sender:        mailer,
		Log:           log,
		RetentionDays: cfg.RetentionDays,
		Holidays:      cfg.Holidays,
	})

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		KV:          kvStore,
		Audit:       auditSvc,
		Auditor:     auditWorker,
		Settings:    settingsSvc,
		Runner:      processor,
		Deliveries:  reminderLog,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
		AdminAPIKey: cfg.AdminAPIKey.Value(),
		CronSecret:  cfg.CronSecret.Value(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		auditWorker.Run(gctx)

		return nil
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"version": config.Version,
		}).Info("server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		log.Info("shutting down")

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newKVStore(cfg *config.Config) (kv.Store, error) {
	if cfg.KVProvider == config.KVProviderMemory {
		return kv.NewMemoryStore(), nil
	}

	return kv.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword.Value(), cfg.RedisDB)
}
