package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/librarydb/librarydb/internal/cache"
	"github.com/librarydb/librarydb/internal/config"
	"github.com/librarydb/librarydb/internal/handler"
	"github.com/librarydb/librarydb/internal/metrics"
	"github.com/librarydb/librarydb/internal/middleware"
	"github.com/librarydb/librarydb/internal/repository"
	"github.com/librarydb/librarydb/internal/server"
	"github.com/librarydb/librarydb/internal/service"
	"github.com/librarydb/librarydb/internal/view"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return fmt.Errorf("connect to database: %s", sanitizeError(err, cfg.DatabaseURL))
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return fmt.Errorf("connect to redis: %s", sanitizeError(err, cfg.RedisURL))
	}
	logger.Info("connected to Redis")

	views, err := view.New()
	if err != nil {
		repo.Close()
		_ = cacheClient.Close()
		return fmt.Errorf("load templates: %w", err)
	}

	sessions := cache.NewSessionStore(cacheClient, cfg.SessionTTL)
	recorder := metrics.NewInMemory()

	borrowService := service.NewBorrowService(repo, repo, repo, cfg.BorrowPeriod, recorder, logger)
	accountService := service.NewAccountService(repo, sessions, recorder, logger)
	searchService := service.NewSearchService(repo, cfg.MiniSearchLimit, recorder)
	mediaService := service.NewMediaService(repo)
	authService := service.NewAuthService(repo, sessions, logger)

	cookie := handler.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
		TTL:    sessions.TTL(),
	}

	r := handler.NewRouter(handler.RouterConfig{
		Logger: logger,
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		Session: middleware.Session(middleware.SessionConfig{
			Logger:     logger,
			Sessions:   sessions,
			Users:      repo,
			CookieName: cfg.SessionCookieName,
			Refresh:    cookie.Set,
		}),
		SearchLimit: middleware.RateLimitIP(middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: cacheClient,
			Enabled: cfg.RateLimitSearchEnabled,
			Bucket:  "search",
			RPS:     cfg.RateLimitSearchRPS,
			Burst:   cfg.RateLimitSearchBurst,
		}),
		API:      handler.NewAPIHandler(borrowService, accountService, searchService, mediaService, logger),
		Panel:    handler.NewPanelHandler(accountService, borrowService, views, logger),
		Sessions: handler.NewSessionHandler(authService, views, cookie, logger),
		Health:   handler.NewHealthHandler(repo, cacheClient, logger),
		Metrics:  handler.NewMetricsHandler(recorder),
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"borrow_period", cfg.BorrowPeriod.String(),
	)

	return srv.Run(ctx)
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
