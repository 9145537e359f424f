package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"github.com/joripage/limit-orderbook/config"
	redis_wrapper "github.com/joripage/limit-orderbook/pkg/infra/redis"
	"github.com/joripage/limit-orderbook/pkg/engine"
	"github.com/joripage/limit-orderbook/pkg/logging"
	"github.com/joripage/limit-orderbook/pkg/metrics"
	"github.com/joripage/limit-orderbook/pkg/publisher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	logger := logging.NewLogger(level).With(zap.String("service", cfg.ServiceName))
	defer logger.Sync()
	zap.ReplaceGlobals(logger.Zap())

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMetrics(m),
		engine.WithQueueSize(cfg.Engine.QueueSize),
	}

	if cfg.Kafka != nil && cfg.Kafka.Enabled {
		fills := publisher.NewKafkaFillPublisher(*cfg.Kafka)
		defer fills.Close()
		opts = append(opts, engine.WithFillPublisher(fills))
	}

	if cfg.Redis != nil && cfg.Redis.Enabled {
		rdb, err := redis_wrapper.InitRedisWithBackoff(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal(ctx, "init redis failed", zap.Error(err))
		}
		defer rdb.Close()
		opts = append(opts,
			engine.WithSnapshotPublisher(publisher.NewRedisTopOfBookPublisher(rdb, cfg.Redis.KeyPrefix)),
			engine.WithDepth(cfg.Redis.DepthLevels),
		)
	}

	engines := make([]*engine.Engine, 0, len(cfg.Instruments))
	for _, tickID := range cfg.Instruments {
		engines = append(engines, engine.New(tickID, opts...))
	}
	router, err := engine.NewRouter(engines...)
	if err != nil {
		logger.Fatal(ctx, "build router failed", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "metrics server failed", zap.Error(err))
		}
	}()
	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()

	logger.Info(ctx, "order book started", zap.Strings("instruments", router.Instruments()))

	if err := router.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "engine exited", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info(context.Background(), "exited cleanly")
}
