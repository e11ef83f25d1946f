package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/archery/auth-system/internal/api"
	"github.com/archery/auth-system/internal/core/ports"
	"github.com/archery/auth-system/internal/core/service"
	"github.com/archery/auth-system/internal/core/token"
	"github.com/archery/auth-system/internal/infrastructure/config"
	mongodb "github.com/archery/auth-system/internal/infrastructure/db/mongo"
	redisdb "github.com/archery/auth-system/internal/infrastructure/db/redis"
	"github.com/archery/auth-system/internal/infrastructure/email"
	"github.com/archery/auth-system/internal/infrastructure/queue"
	"github.com/archery/auth-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet; write directly and bail.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Infrastructure ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	if err := mongodb.EnsureAccountIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Core wiring ---
	repo := mongodb.NewAccountRepository(db)
	codec := token.NewCodec(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	throttle := redisdb.NewLoginLimiter(rdb, cfg.Throttle.MaxFailures, time.Duration(cfg.Throttle.WindowMinutes)*time.Minute)

	var sender ports.NotificationSender
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			AppName:  cfg.SMTP.AppName,
			LoginURL: cfg.SMTP.LoginURL,
		})
	} else {
		sender = email.NewLogSender(log)
	}
	dispatcher := queue.NewDispatcher(0, sender, log)
	dispatcher.Start(ctx)

	authService := service.NewAuthService(repo, codec, throttle, log)
	accountService := service.NewAccountService(repo, dispatcher, log)

	// Seed the single super admin; a no-op on every startup after the first.
	if err := accountService.BootstrapSuperAdmin(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Password, cfg.Bootstrap.Email); err != nil {
		log.Fatal().Err(err).Msg("super admin bootstrap failed")
	}

	e := api.NewRouter(api.Dependencies{
		AuthService:    authService,
		AccountService: accountService,
		AccountRepo:    repo,
		Codec:          codec,
		Mongo:          db,
		Redis:          rdb,
		Logger:         log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("auth system listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
