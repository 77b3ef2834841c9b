package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"restaurant-finder/config"
	"restaurant-finder/logger"
	httpapi "restaurant-finder/web-svc/internal/api/http"
	"restaurant-finder/web-svc/internal/service"
	"restaurant-finder/web-svc/internal/storage"

	"go.uber.org/zap"
)

type app struct {
	handler  http.Handler
	registry *service.Registry
	closers  []func() error
}

func (a *app) Close() {
	a.registry.CloseAll()
	for _, c := range a.closers {
		c()
	}
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{}

	backend := storage.NewBackendClient(cfg.Backend.URL, &http.Client{Timeout: cfg.Backend.Timeout}, log.Named("backend"))

	var (
		cache     service.SuggestionCache
		store     service.SnapshotStore
		publisher service.EventPublisher
	)
	if cfg.Redis.Enabled {
		client, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		redisCache := storage.NewRedisCache(client, cfg.Redis.SnapshotTTL, cfg.Redis.SuggestionTTL)
		cache, store = redisCache, redisCache
		log.Info("redis enabled", zap.String("address", cfg.Redis.Address))
	}
	if cfg.Kafka.Enabled {
		writer := config.NewKafkaWriter(cfg.Kafka)
		a.closers = append(a.closers, writer.Close)
		publisher = storage.NewKafkaPublisher(writer)
		log.Info("kafka enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	sessionCfg := service.SessionConfig{
		Debounce:        cfg.Session.Debounce,
		MinQueryLength:  cfg.Session.MinQueryLength,
		DefaultRadiusKm: cfg.Session.DefaultRadiusKm,
		MinRadiusKm:     cfg.Session.MinRadiusKm,
		MaxRadiusKm:     cfg.Session.MaxRadiusKm,
		IdleTTL:         cfg.Session.IdleTTL,
	}
	sessionLog := log.Named("session")
	a.registry = service.NewRegistry(sessionCfg, service.SessionDeps{
		Backend:   backend,
		Suggester: service.NewSuggester(backend, cache, sessionLog),
		Store:     store,
		Publisher: publisher,
		Log:       sessionLog,
	})

	finder := service.NewFinderService(a.registry, backend, service.DefaultQRGenerator{}, cfg.Server.PublicURL, cfg.Heatmap.Precision)
	a.handler = httpapi.NewRouter(httpapi.NewHandler(finder, log), cfg.Server.StaticDir)
	return a, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("web-svc", cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialise", zap.Error(err))
	}
	defer a.Close()

	go a.registry.Run(ctx, cfg.Session.SweepInterval)

	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: a.handler}
	go func() {
		log.Info("web-svc starting", zap.String("addr", srv.Addr), zap.String("backend", cfg.Backend.URL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
