// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yakmarket-admin-bot/internal/application"
	"yakmarket-admin-bot/internal/config"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
	"yakmarket-admin-bot/internal/domain/ports/repository"
	"yakmarket-admin-bot/internal/infra/adapters/strapi"
	tele "yakmarket-admin-bot/internal/infra/adapters/telegram"
	pg "yakmarket-admin-bot/internal/infra/db/postgres"
	httpapi "yakmarket-admin-bot/internal/infra/http"
	"yakmarket-admin-bot/internal/infra/logging"
	"yakmarket-admin-bot/internal/infra/metrics"
	red "yakmarket-admin-bot/internal/infra/redis"
	"yakmarket-admin-bot/internal/infra/registry"
	"yakmarket-admin-bot/internal/infra/worker"
	"yakmarket-admin-bot/internal/render"
	"yakmarket-admin-bot/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: log outgoing Telegram traffic instead of sending it")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	logger.Info().
		Str("version", version).
		Bool("dev", cfg.Runtime.Dev).
		Int("operators", len(cfg.Bot.AdminIDs)).
		Str("bot_token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).
		Str("strapi_token", logging.Redact(cfg.Backend.APIToken, cfg.Runtime.Dev)).
		Msg("starting admin bot")

	// ---- Backend ----
	backend, err := strapi.NewClient(cfg.Backend, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("strapi client")
	}

	// ---- Redis (optional) ----
	var (
		redisClient red.RedisClient
		limiter     application.Limiter
	)
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer rc.Close()
		redisClient = rc
		limiter = red.NewRateLimiter(rc, cfg.RateLimit.CallbacksPerMinute, time.Minute)
	}

	// ---- Message registry ----
	var msgRegistry repository.MessageRegistry
	switch cfg.Registry.Driver {
	case "redis":
		msgRegistry = red.NewMessageRegistry(redisClient, cfg.Registry.TTL)
	default:
		msgRegistry = registry.NewMemory()
	}
	logger.Info().Str("driver", cfg.Registry.Driver).Msg("message registry ready")

	// ---- Postgres audit log (optional) ----
	var (
		audit   repository.AuditLog = repository.NoopAuditLog{}
		history repository.AuditHistory
	)
	if cfg.Database.URL != "" {
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		repo := pg.NewAuditLogRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("audit schema")
		}
		audit = repo
		history = repo
	}

	// ---- Telegram ----
	var (
		bot     adapter.TelegramBotAdapter
		realBot *tele.RealTelegramBotAdapter
	)
	if cfg.Runtime.Dev && cfg.Bot.Token == "" {
		logger.Warn().Msg("[DEV MODE] no bot token, Telegram traffic is only logged")
		bot = tele.NewNoopBotAdapter(logger)
	} else {
		realBot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		bot = realBot
	}

	// ---- Use cases ----
	opts := render.Options{Currency: cfg.UI.Currency, MaxTextLength: cfg.UI.MaxTextLength}
	gate := application.NewGate(cfg.Bot.AdminIDs)
	userUC := usecase.NewUserUseCase(backend, msgRegistry, audit, cfg.UI.UsersPageLimit, cfg.UI.StatsSample, logger)
	productUC := usecase.NewProductUseCase(backend, bot, msgRegistry, audit, opts, logger)
	notifyUC := usecase.NewNotificationUseCase(bot, msgRegistry, gate.Operators(), opts, cfg.Webhook.FanoutWorkers, logger)

	console := application.NewConsole(gate, userUC, productUC, bot, msgRegistry, limiter,
		application.ConsoleOptions{Render: opts, PendingLimit: cfg.UI.PendingLimit, History: history}, logger)

	// ---- Worker pool ----
	workers := worker.NewPool(cfg.Webhook.FanoutWorkers, logger)
	workers.Start(ctx)

	// ---- Polling ----
	if realBot != nil {
		if cfg.Bot.Mode != "polling" {
			logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot.mode not implemented; falling back to polling")
		}
		realBot.SetHandler(console)
		if err := realBot.SetMenuCommands(ctx, gate.Operators()); err != nil {
			logger.Warn().Err(err).Msg("menu commands not set")
		}
		go func() {
			if err := realBot.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- HTTP ----
	server := httpapi.NewServer(cfg.Webhook, backend.MediaBaseURL(), notifyUC, workers, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigc:
		logger.Info().Str("signal", sig.String()).Msg("shutdown requested")
	case <-ctx.Done():
	}

	if realBot != nil {
		realBot.StopPolling()
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	workers.Stop()
	if mem, ok := msgRegistry.(*registry.Memory); ok {
		_ = mem.Clear(shutdownCtx)
	}
	cancel()
	logger.Info().Msg("bye")
}
