package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/bugwatch/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/bugwatch/internal/adapter/kafka"
	"github.com/couchcryptid/bugwatch/internal/config"
	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/couchcryptid/bugwatch/internal/observability"
	"github.com/couchcryptid/bugwatch/internal/photo"
	"github.com/couchcryptid/bugwatch/internal/pipeline"
	"github.com/couchcryptid/bugwatch/internal/session"
	"github.com/couchcryptid/bugwatch/internal/submission"
	"github.com/couchcryptid/bugwatch/internal/verify"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	catalog := domain.DefaultCatalog()
	decoder := photo.NewDecoder(cfg.MaxUploadBytes, cfg.ThumbnailMaxDimension).WithMaxPixels(int64(cfg.MaxImagePixels))
	verifier := verify.NewCached(verify.NewStub(cfg.VerifyDelay, nil), cfg.VerifyCacheSize, metrics)
	sessions := session.NewStore(cfg.SessionCapacity, cfg.SeedDemo, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional outbound feed (enabled via KAFKA_BROKERS / FEED_ENABLED).
	var (
		publisher  submission.Publisher
		writer     *kafkaadapter.Writer
		feedDone   chan struct{}
		readyParts []sharedobs.ReadinessChecker
	)
	if cfg.FeedEnabled {
		queue := pipeline.NewQueue(cfg.FeedQueueSize, cfg.BatchFlushInterval, metrics)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(queue, pipeline.NewTransformer(), writer, logger, metrics, cfg.BatchSize)
		publisher = queue
		readyParts = append(readyParts, p)

		feedDone = make(chan struct{})
		go func() {
			defer close(feedDone)
			if err := p.Run(ctx); err != nil {
				logger.Error("feed pipeline error", "error", err)
			}
		}()
		logger.Info("event feed enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("event feed disabled")
	}

	svc := submission.NewService(catalog, decoder, verifier, publisher, logger, metrics)
	readyParts = append(readyParts, svc)

	if cfg.ExternalForm() {
		logger.Info("native submission form disabled", "form_url", cfg.SubmissionFormURL)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Submissions: svc,
		Sessions:    sessions,
		Ready:       observability.AllReady(readyParts...),
		CookieName:  cfg.SessionCookie,
		FormURL:     cfg.SubmissionFormURL,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if feedDone != nil {
		select {
		case <-feedDone:
		case <-shutdownCtx.Done():
			logger.Warn("feed pipeline did not stop before shutdown timeout")
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
