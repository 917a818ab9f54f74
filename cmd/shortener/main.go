package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/nestjam/tinyurl/internal/cert"
	conf "github.com/nestjam/tinyurl/internal/config"
	env "github.com/nestjam/tinyurl/internal/config/environment"
	"github.com/nestjam/tinyurl/internal/domain/service"
	"github.com/nestjam/tinyurl/internal/factory"
	"github.com/nestjam/tinyurl/internal/interceptor"
	"github.com/nestjam/tinyurl/internal/metrics"
	grpcserver "github.com/nestjam/tinyurl/internal/server/grpc"
	httpserver "github.com/nestjam/tinyurl/internal/server/http"
)

const (
	eventKey          = "event"
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	config := conf.New().
		FromArgs(os.Args).
		FromEnv(env.New(env.WithPrefix("TINYURL_")))

	logger, syncLogger, err := factory.NewLogger(config.LogLevel)
	if err != nil {
		panic(err)
	}
	defer syncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Fatal(err.Error(), zap.String(eventKey, "run server"))
	}

	logger.Info("Server stopped")
}

func run(ctx context.Context, config conf.Config, logger *zap.Logger) error {
	store, closeStore, err := factory.NewStorage(ctx, config, logger)
	if err != nil {
		return errors.Wrap(err, "create storage")
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := service.New(store,
		service.WithCacheCapacity(config.CacheCapacity),
		service.WithLogger(logger),
		service.WithMetrics(metrics.New(registry)))

	doneCh := make(chan struct{})
	defer close(doneCh)
	svc.SetURLRemover(service.NewURLRemover(ctx, doneCh, svc, logger))

	httpServer := &http.Server{
		Addr: config.ServerAddress,
		Handler: httpserver.New(svc, config.BaseURL,
			httpserver.WithLogger(logger),
			httpserver.WithTrustedSubnet(config.TrustedSubnet),
			httpserver.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if config.EnableHTTPS {
		tlsConfig, err := cert.NewTLSConfig()
		if err != nil {
			return errors.Wrap(err, "create tls config")
		}
		httpServer.TLSConfig = tlsConfig
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(interceptor.Logger(logger)))
	grpcserver.Register(grpcServer, grpcserver.New(svc, config.BaseURL, grpcserver.WithLogger(logger)))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Running HTTP server",
			zap.String("address", config.ServerAddress),
			zap.Bool("https", config.EnableHTTPS))

		var err error
		if config.EnableHTTPS {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}

		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve http")
	})

	g.Go(func() error {
		listener, err := net.Listen("tcp", config.GRPCServerAddress)
		if err != nil {
			return errors.Wrap(err, "listen grpc")
		}

		logger.Info("Running gRPC server", zap.String("address", config.GRPCServerAddress))
		return errors.Wrap(grpcServer.Serve(listener), "serve grpc")
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		return errors.Wrap(httpServer.Shutdown(shutdownCtx), "shutdown http")
	})

	return g.Wait()
}
