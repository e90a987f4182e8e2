// cmd/screening-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"swipe-screening/internal/api"
	"swipe-screening/internal/auth"
	"swipe-screening/internal/common/aws"
	"swipe-screening/internal/common/camunda"
	"swipe-screening/internal/common/config"
	"swipe-screening/internal/common/database"
	"swipe-screening/internal/common/logger"
	"swipe-screening/internal/common/observability"
	"swipe-screening/internal/notify"
	"swipe-screening/internal/services/chat"
	"swipe-screening/internal/services/hiring"
	"swipe-screening/internal/services/screening"
	"swipe-screening/internal/store"
	"swipe-screening/internal/store/memory"
	"swipe-screening/internal/store/postgres"
	"swipe-screening/internal/store/seed"
)

const sweepInterval = time.Minute

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// closers run in reverse order on shutdown.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func main() {
	cfg, envFile, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log, zapLog, err := logger.NewStructured(cfg.Logging, cfg.App)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	zapLog.Info("Starting screening server...", zap.String("envFile", envFile), zap.String("store", cfg.Store.Driver))

	if err := run(cfg, log, zapLog); err != nil {
		zapLog.Fatal("server stopped with error", zap.Error(err))
	}
	zapLog.Info("Screening server stopped gracefully")
}

func run(cfg *config.Config, log logger.Logger, zapLog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cleanup closers
	defer cleanup.run()

	obs, err := observability.New(cfg.Observability)
	if err != nil {
		return fmt.Errorf("observability init: %w", err)
	}
	cleanup.add(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error shutting down observability", zap.Error(err))
		}
	})

	repo, checks, err := openStore(ctx, cfg, zapLog, &cleanup)
	if err != nil {
		return err
	}

	authOpts, authChecks := loginLimiter(ctx, cfg, log, zapLog, &cleanup)
	checks = append(checks, authChecks...)

	notifier, notifyChecks := decisionNotifier(ctx, cfg, log, zapLog, &cleanup)
	checks = append(checks, notifyChecks...)

	authSvc := auth.NewService(repo, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost, log, authOpts...)
	screeningSvc := screening.NewService(repo, notifier, screening.ConfigFrom(cfg.Screening), log,
		screening.WithTracer(obs.Tracer()))

	srv := api.New(cfg.Server, cfg.App, api.Deps{
		Auth:      authSvc,
		Hiring:    hiring.NewService(repo, log),
		Screening: screeningSvc,
		Chat:      chat.NewService(repo, log),
		Obs:       obs,
		Log:       log,
		Checks:    checks,
	})

	go sweep(ctx, authSvc, screeningSvc, zapLog)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	return nil
}

// openStore builds the repository selected by store.driver.
func openStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, cleanup *closers) (store.Repository, []api.Check, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		cleanup.add(func() { _ = pg.Close() })
		if err := pg.WaitReady(ctx, 15, 2*time.Second); err != nil {
			return nil, nil, err
		}
		zapLog.Info("PostgreSQL connected successfully")
		repo := postgres.New(pg.DB)
		return repo, []api.Check{{Name: "postgres", Check: repo.Ping}}, nil

	default:
		repo := memory.New()
		if cfg.Store.SeedPath != "" {
			sum, err := seed.LoadInto(repo, cfg.Store.SeedPath, cfg.Auth.BcryptCost, time.Now())
			if err != nil {
				return nil, nil, fmt.Errorf("load seed %s: %w", cfg.Store.SeedPath, err)
			}
			zapLog.Info("Seed data loaded",
				zap.Int("users", sum.Users),
				zap.Int("jobs", sum.Jobs),
				zap.Int("applications", sum.Applications),
				zap.Int("conversations", sum.Conversations),
			)
		}
		return repo, []api.Check{{Name: "store", Check: repo.Ping}}, nil
	}
}

// loginLimiter wires the Redis login limiter. Without Redis logins are not limited.
func loginLimiter(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger, cleanup *closers) ([]auth.Option, []api.Check) {
	if !cfg.Database.Redis.Enabled {
		return nil, nil
	}

	var rc *database.RedisClient
	err := retryWithBackoff(func() error {
		var err error
		rc, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return err
		}
		return nil
	}, 5, time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Warn("Redis unavailable, login attempts are not limited", zap.Error(err))
		return nil, nil
	}
	cleanup.add(func() { _ = rc.Close() })
	zapLog.Info("Redis connected successfully")

	limiter := auth.NewRedisLimiter(rc.Client, cfg.Auth.LoginLimit, cfg.Auth.LoginWindow, log)
	return []auth.Option{auth.WithLimiter(limiter)}, []api.Check{{Name: "redis", Check: rc.Ping}}
}

// decisionNotifier builds the fan-out of enabled decision channels. A channel whose
// client cannot be created is skipped.
func decisionNotifier(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger, cleanup *closers) (notify.Notifier, []api.Check) {
	var (
		channels []notify.Channel
		checks   []api.Check
	)
	nc := cfg.Notifications

	if nc.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, nc.Region)
		if err != nil {
			zapLog.Error("SNS client init failed", zap.Error(err))
		} else {
			channels = append(channels, notify.Channel{Name: "sns", Notifier: notify.NewSNSNotifier(client, nc.SNS.TopicARN)})
		}
	}

	if nc.SES.Enabled {
		client, err := aws.NewSESClient(ctx, nc.Region)
		if err != nil {
			zapLog.Error("SES client init failed", zap.Error(err))
		} else {
			channels = append(channels, notify.Channel{Name: "ses", Notifier: notify.NewSESNotifier(client, nc.SES.FromEmail)})
		}
	}

	if cfg.Camunda.Enabled {
		var zc *camunda.Client
		err := retryWithBackoff(func() error {
			var err error
			zc, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
			return err
		}, 5, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Error("Zeebe unavailable, decisions will not be correlated", zap.Error(err))
		} else {
			cleanup.add(func() {
				if err := zc.Close(); err != nil {
					zapLog.Error("Error closing Zeebe client", zap.Error(err))
				}
			})
			channels = append(channels, notify.Channel{Name: "zeebe", Notifier: notify.NewZeebeNotifier(zc, cfg.Camunda.MessageName)})
			checks = append(checks, api.Check{Name: "zeebe", Check: zc.HealthCheck})
			zapLog.Info("Zeebe client connected successfully")
		}
	}

	if len(channels) == 0 {
		return notify.Nop{}, checks
	}
	zapLog.Info("Decision notifications enabled", zap.Int("channels", len(channels)))
	return notify.NewMulti(log, channels...), checks
}

func sweep(ctx context.Context, authSvc *auth.Service, screeningSvc *screening.Service, zapLog *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tokens := authSvc.SweepExpired()
			sessions := screeningSvc.EvictIdle()
			if tokens > 0 || sessions > 0 {
				zapLog.Debug("Swept expired state", zap.Int("tokens", tokens), zap.Int("sessions", sessions))
			}
		}
	}
}
