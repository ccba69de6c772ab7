package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"taskmanager/internal/cache"
	"taskmanager/internal/config"
	"taskmanager/internal/pkg/logger"
	"taskmanager/internal/pkg/metrics"
	"taskmanager/internal/pkg/ratelimit"
	"taskmanager/internal/platform/database"
	redisClient "taskmanager/internal/platform/redis"
	"taskmanager/internal/session"
)

// App is built once at startup and handed to the router. Nothing in it is global.
type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	DB           *gorm.DB
	DBDriver     string
	DBFallback   bool
	Redis        *redis.Client
	Sessions     *session.Manager
	Metrics      *metrics.Metrics
	LoginLimiter *ratelimit.Store

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)
	slog.SetDefault(log)
	return Build(ctx, cfg, log)
}

// Build wires every dependency from an already loaded config.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	handle, err := database.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:       cfg,
		Logger:       log,
		DB:           handle.DB,
		DBDriver:     handle.Driver,
		DBFallback:   handle.Fallback,
		Metrics:      metrics.New(),
		LoginLimiter: ratelimit.NewPerMinute(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst),
		StartedAt:    time.Now(),
	}

	var opts []session.Option
	redisCli, err := redisClient.New(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.Warn("redis unavailable, sessions will not be revocable server-side",
			slog.String("addr", cfg.Redis.Addr),
			slog.String("error", err.Error()),
		)
	case redisCli != nil:
		app.Redis = redisCli
		opts = append(opts, session.WithRegistry(cache.NewSessionRegistry(redisCli, cfg.App.Name)))
	}
	app.Sessions = session.NewManager(cfg.Session.Secret, cfg.Session.Lifetime.Duration, cfg.Session.RememberLifetime.Duration, opts...)

	log.Info("application initialised",
		slog.String("env", cfg.App.Env),
		slog.String("database", app.DBDriver),
		slog.Bool("database_fallback", app.DBFallback),
		slog.Bool("session_registry", app.Sessions.Stateful()),
	)
	return app, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis failed: %w", err))
		}
	}
	if err := database.Close(a.DB); err != nil {
		errs = append(errs, fmt.Errorf("close database failed: %w", err))
	}
	return errors.Join(errs...)
}
