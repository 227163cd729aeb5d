package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appanalysis "github.com/gitworth/gitworth/internal/application/analysis"
	"github.com/gitworth/gitworth/internal/config"
	domain "github.com/gitworth/gitworth/internal/domain/analysis"
	"github.com/gitworth/gitworth/internal/infra/ai/openai"
	"github.com/gitworth/gitworth/internal/infra/ai/static"
	"github.com/gitworth/gitworth/internal/infra/httpserver"
	"github.com/gitworth/gitworth/internal/infra/memstore"
	"github.com/gitworth/gitworth/internal/infra/storage"
	"github.com/gitworth/gitworth/internal/metrics"
	"github.com/gitworth/gitworth/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// init store + failure journal
	store := memstore.NewStore()
	journal := memstore.NewFailureJournal()

	// init analyzer: OpenAI when a key is configured, canned sections otherwise
	var analyzer domain.Analyzer
	if cfg.OpenAI.APIKey != "" {
		analyzer = openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		logger.Info("analyzer: openai", zap.String("model", cfg.OpenAI.Model))
	} else {
		analyzer = static.NewAnalyzer(cfg.Pipeline.StageDelay.Std())
		logger.Info("analyzer: static", zap.Duration("stage_delay", cfg.Pipeline.StageDelay.Std()))
	}

	// init report archive (optional)
	var archive domain.ReportArchive
	if cfg.ArchiveEnabled() {
		archive, err = storage.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatalf("metrics register error: %v", err)
	}

	// init service
	svc := appanalysis.NewService(store, analyzer, archive, journal, nil, logger)

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.Logging(logger))
	mux.Use(middleware.RateLimit(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	mux.Get("/health", middleware.HealthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Mount("/", httpserver.NewRouter(svc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
