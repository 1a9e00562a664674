package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-api/internal/api"
	"booking-api/internal/appointments"
	"booking-api/internal/auth"
	"booking-api/internal/cache"
	"booking-api/internal/catalog"
	"booking-api/internal/config"
	"booking-api/internal/db"
	"booking-api/internal/events"
	"booking-api/internal/obs"
	"booking-api/internal/users"
	"booking-api/internal/validation"
)

const serviceName = "booking-api"

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		logger.Info("redis connected", slog.Duration("ttl", cfg.CacheTTL()))
		cacheStore = redisCache
	}

	var publisher events.Publisher = events.NewNoop()
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("rabbitmq connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		logger.Info("rabbitmq connected", slog.String("exchange", cfg.AMQPExchange))
		publisher = amqpPublisher
	}

	if cfg.OTelEndpoint != "" {
		shutdownTracer, err := obs.InitTracer(ctx, serviceName, version, cfg.Env, cfg.OTelEndpoint)
		if err != nil {
			logger.Error("tracer init failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer flushCancel()
			_ = shutdownTracer(flushCtx)
		}()
		logger.Info("tracing enabled", slog.String("endpoint", cfg.OTelEndpoint))
	}

	var google auth.ExternalVerifier
	if cfg.GoogleClientID != "" {
		google = auth.NewGoogleVerifier(cfg.GoogleClientID)
	} else {
		logger.Info("google sign-in disabled")
	}

	val := validation.New()
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.JWTIssuer)

	usersManager := users.NewManager(users.NewRepository(cols.Users), tokens, google, val, logger)
	catalogManager := catalog.NewManager(
		catalog.NewProviderRepository(cols.Providers),
		catalog.NewServiceRepository(cols.Services),
		cacheStore, cfg.CacheTTL(), val, logger,
	)
	appointmentsManager := appointments.NewManager(
		appointments.NewRepository(cols.Appointments),
		catalogManager, val, publisher, logger,
	)

	router := api.NewRouter(api.Deps{
		Log:            logger,
		Users:          usersManager,
		Catalog:        catalogManager,
		Appointments:   appointmentsManager,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout(),
		Health: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
