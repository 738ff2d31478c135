package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mootosamy/backend-chronopost/internal/cache"
	"github.com/Mootosamy/backend-chronopost/internal/config"
	"github.com/Mootosamy/backend-chronopost/internal/database"
	"github.com/Mootosamy/backend-chronopost/internal/events"
	apphttp "github.com/Mootosamy/backend-chronopost/internal/http"
	"github.com/Mootosamy/backend-chronopost/internal/mailer"
	"github.com/Mootosamy/backend-chronopost/internal/modules/auth"
	"github.com/Mootosamy/backend-chronopost/internal/modules/email"
	"github.com/Mootosamy/backend-chronopost/internal/modules/links"
	"github.com/Mootosamy/backend-chronopost/internal/modules/payments"
	"github.com/Mootosamy/backend-chronopost/internal/paypal"
	"github.com/Mootosamy/backend-chronopost/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}

	gateway := paypal.New(cfg.PayPal)
	if c, ok := gateway.(*paypal.Client); ok {
		c.SetLogger(logger)
		logger.Info("paypal gateway ready", "mode", cfg.PayPal.Mode)
	} else {
		logger.Warn("paypal credentials missing, checkout disabled")
	}

	publisher := events.Publisher(events.Nop{})
	if len(cfg.Kafka.Brokers) > 0 {
		k, err := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		publisher = k
		logger.Info("publishing link events to kafka", "topic", cfg.Kafka.Topic)
	}
	defer publisher.Close()

	engine := payments.NewEngine(db, gateway, publisher, cfg.FrontendURL, cfg.PayPal.Timeout)
	engine.SetLogger(logger)

	webhooks := payments.NewWebhookService(db, engine, verifierFor(cfg, gateway, logger))
	webhooks.SetLogger(logger)

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Webhook.DedupTTL,
		})
		if err != nil {
			return err
		}
		defer rc.Close()
		webhooks.SetCache(rc)
	} else {
		webhooks.SetCache(cache.NewMemory(cfg.Webhook.DedupTTL))
	}

	archive, err := storage.FromConfig(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	webhooks.SetArchive(archive.Storage)
	logger.Info("webhook archive", "driver", archive.Driver)

	authSvc := auth.NewService(db, cfg.JWT.Secret, cfg.JWT.TTL)
	authSvc.SetLogger(logger)

	linkSvc := links.NewService(links.NewStore(db), cfg.FrontendURL)
	linkSvc.SetLogger(logger)

	mailSvc := email.NewService(mailer.NewSMTPMailer(cfg.SMTP), cfg.SMTP.From, cfg.SMTP.FromName)
	mailSvc.SetLogger(logger)

	r := apphttp.NewRouter(logger, apphttp.Deps{
		Auth:        authSvc,
		Links:       linkSvc,
		Engine:      engine,
		Webhooks:    webhooks,
		Email:       mailSvc,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// verifierFor picks how webhook signatures are checked. Without a webhook id
// events are rejected unless WEBHOOK_ALLOW_UNVERIFIED is set.
func verifierFor(cfg config.Config, gateway payments.Gateway, logger *slog.Logger) payments.Verifier {
	if c, ok := gateway.(*paypal.Client); ok && cfg.PayPal.WebhookID != "" {
		return paypal.WebhookVerifier{Client: c, WebhookID: cfg.PayPal.WebhookID}
	}
	if cfg.Webhook.AllowUnverified {
		logger.Warn("WEBHOOK_ALLOW_UNVERIFIED=true: webhook signatures are NOT verified; do not run this in production")
		return payments.PermissiveVerifier{Logger: logger}
	}
	logger.Warn("no PAYPAL_WEBHOOK_ID configured, every webhook will be rejected")
	return payments.RejectingVerifier{}
}
