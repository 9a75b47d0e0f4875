package app

import (
	"context"
	"fmt"
	"fxconvert/internal/adapters"
	"fxconvert/internal/adapters/cache"
	"fxconvert/internal/adapters/httpclient"
	"fxconvert/internal/adapters/kafka"
	"fxconvert/internal/adapters/postgres"
	"fxconvert/internal/adapters/sqlite"
	"fxconvert/internal/api"
	"fxconvert/internal/api/handler"
	"fxconvert/internal/auth"
	"fxconvert/internal/config"
	"fxconvert/internal/conversion"
	"fxconvert/internal/domain"
	"fxconvert/internal/metrics"
	"fxconvert/internal/platform/db"
	httpserver "fxconvert/internal/platform/http"
	sqliteplatform "fxconvert/internal/platform/sqlite"
	"fxconvert/internal/quota"
	"fxconvert/internal/rate"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and the rate warm-up job
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, migrations)
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conversionRepo, closeStore, err := openConversionStore(startupCtx, appCfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	// External clients
	rateClient := httpclient.NewExchangeRateClient(
		baseHTTPClient,
		strings.TrimSuffix(appCfg.ExchangeRateAPI.BaseURL, "/"),
		domain.BaseCurrency,
	)

	m := metrics.New(prometheus.DefaultRegisterer)

	// Core
	codes := appCfg.Rates.SupportedCurrencies
	if len(codes) == 0 {
		codes = rate.DefaultCodes
	}
	currencies := rate.NewCurrencies(codes)
	rateCache := rate.NewCache(nil)
	provider := rate.NewProvider(rateCache, rateClient, currencies, m,
		rate.WithTTL(appCfg.Rates.CacheTTL),
		rate.WithFetchTimeout(appCfg.Rates.FetchTimeout),
	)
	logrus.Infof("✅ %d supported currencies loaded", len(currencies.SupportedCodes()))

	location, err := time.LoadLocation(appCfg.Quota.Location)
	if err != nil {
		return fmt.Errorf("load quota location: %w", err)
	}
	tracker := quota.NewTracker(m,
		quota.WithLimits(appCfg.Quota.WeekdayLimit, appCfg.Quota.WeekendLimit),
		quota.WithLocation(location),
	)

	var publisher adapters.EventPublisher
	if brokers := appCfg.KafkaBrokers(); len(brokers) > 0 {
		kafkaPublisher := kafka.NewConversionPublisher(brokers, appCfg.Kafka.Topic, appCfg.Kafka.WriteTimeout)
		defer func() {
			if closeErr := kafkaPublisher.Close(); closeErr != nil {
				logrus.Errorf("Kafka publisher close error: %v", closeErr)
			}
		}()
		publisher = kafkaPublisher
		logrus.Infof("✅ Conversion events go to kafka topic %q", appCfg.Kafka.Topic)
	}
	engine := conversion.NewEngine(provider, currencies, conversionRepo, publisher, m)

	// Rate cache warm-up
	if appCfg.Rates.WarmupInterval > 0 {
		scheduler := rate.NewScheduler(provider, appCfg.Rates.WarmupInterval)
		// Ensure scheduler stops before the store closes
		defer func() {
			if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
				logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
			}
		}()
		if startErr := scheduler.Start(ctx); startErr != nil {
			logrus.WithError(startErr).Error("Failed to start scheduler")
			return startErr
		}
		logrus.Info("✅ Scheduler activation successful")
	}

	// Auth
	identityCache, err := cache.NewIdentityCache(appCfg.Auth.CacheMaxItems)
	if err != nil {
		return err
	}
	defer identityCache.Close()
	authMiddleware := auth.NewMiddleware(appCfg.Auth.JWTSecret, auth.WithCache(identityCache, appCfg.Auth.CacheTTL))

	// Handlers and router
	h := handler.NewHandler(engine, provider)
	router := api.NewRouter(h, authMiddleware.Handler, tracker, promhttp.Handler())

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

// openConversionStore connects the configured storage driver and returns its repository with a close func.
func openConversionStore(ctx context.Context, appCfg *config.AppConfig) (adapters.ConversionRepository, func(), error) {
	switch appCfg.Storage.Driver {
	case config.StorageDriverSQLite:
		sqliteDB, err := sqliteplatform.Open(appCfg.SQLite.Path)
		if err != nil {
			logrus.WithError(err).Error("Error opening sqlite database")
			return nil, nil, err
		}
		logrus.Infof("✅ SQLite database %s ready", appCfg.SQLite.Path)
		return sqlite.NewConversionRepository(sqliteDB.DB), func() { _ = sqliteDB.Close() }, nil

	default:
		pool, err := db.CreatePoolAndPing(ctx, appCfg.DbServer)
		if err != nil {
			logrus.WithError(err).Error("Error connecting to db")
			return nil, nil, err
		}
		logrus.Info("✅ Postgres connection successful")

		if err = db.Migrate(ctx, pool); err != nil {
			pool.Close()
			logrus.WithError(err).Error("Error applying migrations")
			return nil, nil, err
		}
		logrus.Info("✅ Migrations applied")
		return postgres.NewConversionRepository(pool), pool.Close, nil
	}
}
