package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	api "github.com/oshokin/stopwatch-board/internal/api/grpc/stopwatch"
	"github.com/oshokin/stopwatch-board/internal/config"
	"github.com/oshokin/stopwatch-board/internal/logger"
	"github.com/oshokin/stopwatch-board/internal/metrics"
	"github.com/oshokin/stopwatch-board/internal/repository/kv"
	"github.com/oshokin/stopwatch-board/internal/repository/snapshot"
	"github.com/oshokin/stopwatch-board/internal/scheduler"
	svc "github.com/oshokin/stopwatch-board/internal/service/stopwatch"
)

// shutdownTimeout bounds the final flush and the metrics server shutdown.
const shutdownTimeout = 5 * time.Second

// errListenerRequired is returned when Serve gets no listener.
var errListenerRequired = errors.New("listener is required")

// Serve runs the daemon on lis with validated settings until ctx is cancelled.
//
// Shutdown order: watch streams are ended, the gRPC server drains, running
// stopwatches are flushed to the store, then the loop stops and the store closes.
//
//nolint:funlen // Linear wiring reads best in one place.
func Serve(ctx context.Context, settings *config.Config, lis net.Listener) error {
	if lis == nil {
		return errListenerRequired
	}

	store, err := kv.Open(ctx, settings.Storage)
	if err != nil {
		_ = lis.Close()

		return fmt.Errorf("open %s store: %w", settings.Storage.Backend, err)
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to close store", "error", closeErr)
		}
	}()

	codec, err := snapshot.CodecByName(settings.Storage.Codec)
	if err != nil {
		_ = lis.Close()

		return err
	}

	repo, err := snapshot.NewStore(store, codec, settings.Storage.Key)
	if err != nil {
		_ = lis.Close()

		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	recorder, err := metrics.NewPrometheus(registry, "")
	if err != nil {
		_ = lis.Close()

		return fmt.Errorf("register metrics: %w", err)
	}

	loop := scheduler.NewLoop(settings.TickInterval)
	broadcaster := svc.NewBroadcaster(svc.DefaultWatchBuffer)

	collection, err := svc.NewCollection(repo, broadcaster,
		svc.WithScheduler(loop),
		svc.WithMetrics(recorder),
	)
	if err != nil {
		_ = lis.Close()

		return err
	}

	service, err := svc.NewService(loop, collection)
	if err != nil {
		_ = lis.Close()

		return err
	}

	loopCtx, stopLoop := context.WithCancel(context.WithoutCancel(ctx))
	defer func() {
		stopLoop()
		<-loop.Done()
	}()

	go loop.Run(loopCtx)

	if err = service.Startup(ctx); err != nil {
		if errors.Is(err, svc.ErrLoad) {
			_ = lis.Close()

			return err
		}

		// A failed restore write is reported but the board still runs.
		logger.ErrorKV(ctx, "Startup finished with errors", "error", err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterStopwatchServiceServer(grpcServer, api.NewServer(service, broadcaster))

	metricsServer := startMetrics(ctx, settings.MetricsAddress, registry)

	logger.InfoKV(ctx, "Stopwatch server listening",
		"listen_address", lis.Addr().String(),
		"backend", settings.Storage.Backend,
		"codec", settings.Storage.Codec,
		"tick_interval", settings.TickInterval,
	)

	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")

		broadcaster.Close()
		grpcServer.GracefulStop()
	}()

	serveErr := grpcServer.Serve(lis)
	if serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
		serveErr = fmt.Errorf("serve gRPC: %w", serveErr)
	} else {
		serveErr = nil
		<-done
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		if err = metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorKV(ctx, "Failed to stop metrics server", "error", err)
		}
	}

	flushErr := service.Flush(shutdownCtx)
	if flushErr != nil {
		logger.ErrorKV(ctx, "Failed to flush running stopwatches", "error", flushErr)
	}

	logger.Info(ctx, "Stopwatch server stopped")

	return errors.Join(serveErr, flushErr)
}

// startMetrics serves the registry on address, or does nothing when address is empty.
func startMetrics(ctx context.Context, address string, registry *prometheus.Registry) *http.Server {
	if address == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.InfoKV(ctx, "Metrics server listening", "metrics_address", address)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "Metrics server failed", "error", err)
		}
	}()

	return srv
}
