package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"babsy-voucher-platform/internal/config"
	"babsy-voucher-platform/internal/domain/ports/adapter"
	pg "babsy-voucher-platform/internal/infra/db/postgres"
	"babsy-voucher-platform/internal/infra/logging"
	"babsy-voucher-platform/internal/infra/metrics"
	"babsy-voucher-platform/internal/infra/notify"
	red "babsy-voucher-platform/internal/infra/redis"
	"babsy-voucher-platform/internal/infra/sched"
	"babsy-voucher-platform/internal/infra/web"
	"babsy-voucher-platform/internal/infra/worker"
	"babsy-voucher-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop mailer)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	voucherRepo := pg.NewVoucherRepo(pool)
	partnerRepo := pg.NewPartnerRepoCacheDecorator(pg.NewPartnerRepo(pool), redisClient, cfg.Redis.TTL)
	userRepo := pg.NewUserRepo(pool)
	auditRepo := pg.NewAuditLogRepo(pool)

	// ---- Notifications ----
	notifyPool := worker.NewPool(8, logger)
	notifyPool.Start(ctx)
	defer notifyPool.Stop()

	var notifier adapter.Notifier = notify.NoopNotifier{}
	if cfg.SMTP.Host != "" && !cfg.Runtime.Dev {
		notifier = notify.NewEmailNotifier(&cfg.SMTP)
	} else {
		logger.Warn().Msg("SMTP not configured, notifications disabled")
	}
	asyncNotifier := notify.NewAsyncNotifier(notifier, notifyPool, logger)

	// ---- Use cases ----
	voucherUC := usecase.NewVoucherUseCase(voucherRepo, partnerRepo, userRepo, auditRepo, asyncNotifier, cfg.Voucher, logger)
	statsUC := usecase.NewStatsUseCase(voucherRepo, logger)
	partnerUC := usecase.NewPartnerUseCase(partnerRepo, logger)

	// ---- HTTP server ----
	metrics.MustRegister()
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	srv := web.NewServer(voucherUC, statsUC, partnerUC, auth, rateLimiter, cfg.HTTP.ValidateRateLimit, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Expiry reminder worker ----
	reminder := sched.NewExpiryReminderWorker(cfg.Scheduler.ExpiryReminderInterval, cfg.Scheduler.ExpiryReminderWindow, voucherRepo, logger)
	go func() { _ = reminder.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
