package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "restaurant-finder/agg-svc/internal/api/http"
	"restaurant-finder/agg-svc/internal/service"
	"restaurant-finder/agg-svc/internal/storage"
	"restaurant-finder/config"
	"restaurant-finder/logger"

	"go.uber.org/zap"
)

type app struct {
	handler  http.Handler
	consumer *service.Consumer
	closers  []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		c()
	}
}

func newApp(ctx context.Context, cfg *config.Config, reader service.MessageReader, log *zap.Logger) (*app, error) {
	client, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	a := &app{closers: []func() error{client.Close}}

	store := storage.NewStore(client, cfg.Aggregator.CounterTTL)
	a.consumer = service.NewConsumer(reader, store, cfg.Heatmap.Precision, log)
	trends := service.NewTrendsService(store, cfg.Aggregator.TopLimit)
	a.handler = httpapi.NewRouter(httpapi.NewHandler(trends, log))
	return a, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("agg-svc", cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	if !cfg.Redis.Enabled || !cfg.Kafka.Enabled {
		log.Fatal("agg-svc needs redis and kafka enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := config.NewKafkaReader(cfg.Kafka)
	defer reader.Close()

	a, err := newApp(ctx, cfg, reader, log)
	if err != nil {
		log.Fatal("failed to initialise", zap.Error(err))
	}
	defer a.Close()

	go a.consumer.Start(ctx)

	srv := &http.Server{Addr: cfg.Aggregator.Addr(), Handler: a.handler}
	go func() {
		log.Info("agg-svc starting",
			zap.String("addr", srv.Addr),
			zap.String("topic", cfg.Kafka.Topic),
			zap.String("group_id", cfg.Kafka.GroupID))
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
