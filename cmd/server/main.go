// Package main - точка входа HTTP-сервера Exchange Insight.
//
// Студенты ранжируют соглашения об обмене, а сервис оценивает, проходят ли
// они по каждому из них и каким номером.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: оценщики мест и модели студентов/соглашений без внешних зависимостей
// - Application: команды, запросы и обработчики событий
// - Infrastructure: PostgreSQL, Redis, шина событий
// - Interface: HTTP API
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Config
	"github.com/exchange-insight/exchange-insight/config"

	// Application layer
	"github.com/exchange-insight/exchange-insight/internal/application/command"
	"github.com/exchange-insight/exchange-insight/internal/application/eventhandler"
	"github.com/exchange-insight/exchange-insight/internal/application/query"

	// Domain
	"github.com/exchange-insight/exchange-insight/internal/domain/agreement"

	// Infrastructure layer
	"github.com/exchange-insight/exchange-insight/internal/infrastructure/messaging"
	"github.com/exchange-insight/exchange-insight/internal/infrastructure/persistence/postgres"
	"github.com/exchange-insight/exchange-insight/internal/infrastructure/persistence/redis"
	"github.com/exchange-insight/exchange-insight/internal/infrastructure/service"

	// Interface layer
	httpserver "github.com/exchange-insight/exchange-insight/internal/interface/http"
	"github.com/exchange-insight/exchange-insight/internal/interface/http/handlers"

	// Packages
	"github.com/exchange-insight/exchange-insight/pkg/circuitbreaker"
	"github.com/exchange-insight/exchange-insight/pkg/logger"
	"github.com/exchange-insight/exchange-insight/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	}).With(logger.String("service", cfg.App.Name))

	log.Info("starting Exchange Insight",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("redis", !cfg.Redis.Disabled),
	)

	onRetry := func(what string) func(int, error, time.Duration) {
		return func(attempt int, err error, delay time.Duration) {
			log.Warn(what+" not reachable yet",
				logger.Int("attempt", attempt),
				logger.Err(err),
				logger.Duration("retry_in", delay),
			)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	var dbConn *postgres.Connection
	err = retry.StartupRetrier(onRetry("database")).Do(ctx, func(ctx context.Context) error {
		conn, err := postgres.NewConnection(ctx, postgres.Config{
			URL:              cfg.Database.URL,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime:  cfg.Database.ConnMaxIdleTime,
			StatementTimeout: cfg.Database.QueryTimeout,
		})
		if err != nil {
			return err
		}
		dbConn = conn
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		if status, err := migrator.Status(ctx); err != nil {
			log.Warn("failed to get migration status", logger.Err(err))
		} else {
			applied := 0
			for _, m := range status {
				if m.IsApplied {
					applied++
				}
			}
			log.Info("migrations completed", logger.Int("applied", applied), logger.Int("total", len(status)))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var walkthroughCache *service.WalkthroughCacheAdapter
	var redisCache *redis.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		err := retry.StartupRetrier(onRetry("redis")).Do(ctx, func(ctx context.Context) error {
			c, err := redis.NewCache(ctx, redisCfg)
			if err != nil {
				return err
			}
			redisCache = c
			return nil
		})
		if err != nil {
			// Без кэша сервис работает, просто без мемоизации и ограничения частоты.
			log.Warn("failed to connect to Redis, walkthrough cache disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			breaker := circuitbreaker.CacheBreaker(
				func(err error) bool { return errors.Is(err, redis.ErrCacheMiss) },
				func(name string, from, to circuitbreaker.State) {
					log.Warn("circuit breaker state changed",
						logger.String("breaker", name),
						logger.String("from", from.String()),
						logger.String("to", to.String()),
					)
				},
			)
			walkthroughCache = service.NewWalkthroughCacheAdapter(
				redis.NewWalkthroughCache(redisCache, cfg.Estimator.CacheTTL), breaker)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	studentRepo := postgres.NewStudentRepository(dbConn)
	agreementRepo := postgres.NewAgreementRepository(dbConn)
	standingRepo := postgres.NewStandingRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	if err := eventhandler.NewAuditLogHandler(log).Register(eventBus); err != nil {
		return fmt.Errorf("failed to register audit log: %w", err)
	}
	if walkthroughCache != nil {
		if err := eventhandler.NewOnStudentChangedHandler(walkthroughCache, log).Register(eventBus); err != nil {
			return fmt.Errorf("failed to register cache invalidation: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	policy := agreement.Policy{
		HomeRegion:  agreement.RegionCode(cfg.Exchange.HomeRegion),
		WorldMinGPA: cfg.Exchange.WorldMinGPA,
	}

	// Интерфейс с nil-указателем внутри не равен nil, поэтому передаём явно.
	var cache query.WalkthroughCache
	if walkthroughCache != nil {
		cache = walkthroughCache
	}

	walkthroughQuery := query.NewGetWalkthroughHandler(standingRepo, cache, eventBus, query.WalkthroughConfig{
		MaxParallel:        cfg.Estimator.MaxParallel,
		MinRefreshInterval: cfg.Estimator.MinRefreshInterval,
	}, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	checker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	checker.SetTimeout(cfg.Observability.HealthCheckTimeout)
	// Для PostgreSQL в ответе видна загрузка пула.
	checker.AddReport("postgres", dbConn.Report)
	if redisCache != nil {
		checker.AddCheck("redis", handlers.NewPingCheck(redisCache))
	}
	checker.AddCheck("event_handlers", handlers.NewSuccessRateCheck(func() float64 {
		return eventBus.Metrics().Snapshot().HandlerSuccessRate
	}, 0.5))

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpserver.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpCfg.APIKeyHashes = cfg.HTTP.APIKeyHashes
	httpCfg.Version = cfg.App.Version

	server := httpserver.NewServer(httpCfg, httpserver.Dependencies{
		RegisterStudentHandler:   command.NewRegisterStudentHandler(studentRepo, eventBus),
		UpdatePreferencesHandler: command.NewUpdatePreferencesHandler(studentRepo, agreementRepo, policy, eventBus),
		DeleteStudentHandler:     command.NewDeleteStudentHandler(studentRepo, eventBus),
		GetStudentHandler:        query.NewGetStudentHandler(studentRepo),
		ListAgreementsHandler:    query.NewListAgreementsHandler(agreementRepo),
		GetWalkthroughHandler:    walkthroughQuery,
		Logger:                   log,
		HealthChecker:            checker,
	})

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", logger.Err(err))
	}

	log.Info("Exchange Insight stopped")
	return nil
}
