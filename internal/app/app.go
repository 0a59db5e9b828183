// Package app собирает сервис кофейни: хранилище, каталог, журнал заказов, HTTP API, gRPC health и метрики.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/titan-coffee/internal/health"
	"github.com/vladislavdragonenkov/titan-coffee/internal/metrics"
	httpsvc "github.com/vladislavdragonenkov/titan-coffee/internal/service/http"
	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/supervisor"
	"github.com/vladislavdragonenkov/titan-coffee/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run запускает сервис и блокируется до отмены ctx или падения одного из серверов.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := log.WithField("component", "app")
	shopMetrics := metrics.NewShopMetrics()

	grpcHealth := health.NewServer()
	grpcHealth.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	deps, err := initRuntimeDependencies(ctx, cfg, logger,
		supervisor.WithLogger(logger.WithField("layer", "storage")),
		supervisor.WithStateListener(func(state domain.ConnectionState) {
			shopMetrics.SetStorageState(state)
			grpcHealth.SetServingStatus("", servingStatus(state))
		}),
		supervisor.WithAttemptObserver(shopMetrics.RecordConnectAttempt),
	)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	core := NewCore(deps.storage,
		WithLogger(logger.WithField("layer", "core")),
		WithPublisher(deps.publisher()),
		WithMetrics(shopMetrics),
		WithReadiness(cfg.DBReadyChecks, cfg.DBReadyInterval),
	)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = core.Shutdown(shutdownCtx)
	}()

	seeded, err := core.Initialize(ctx)
	if err != nil {
		return err
	}
	state := deps.storage.State()
	shopMetrics.SetStorageState(state)
	grpcHealth.SetServingStatus("", servingStatus(state))
	logger.WithFields(log.Fields{
		"driver": cfg.StorageDriver,
		"seeded": seeded,
	}).Info("Storage ready")

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterStorage(deps.storage)

	api := httpsvc.NewHandler(core.Catalog, core.Ledger, httpsvc.Config{
		AppName:     cfg.AppName,
		Health:      healthHandler,
		Metrics:     shopMetrics,
		FrontendURL: cfg.FrontendURL,
		Logger:      logger.WithField("layer", "http"),
		RateLimit:   cfg.RateLimitMax,
		RateWindow:  cfg.RateLimitWindow,
		RateCounter: deps.rateCounter,
	})

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	errCh := make(chan error, 2)

	apiLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
	}
	apiSrv := &http.Server{
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := apiSrv.Serve(apiLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	defer shutdownHTTP(apiSrv, logger)

	grpcServer, err := startGRPCServer(cfg.GRPCAddr, grpcHealth, logger, errCh)
	if err != nil {
		return err
	}

	logStartupBanner(logger, cfg, apiLis.Addr().String())

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		stopGRPC(grpcServer, grpcHealth, logger)
		return ctx.Err()
	case err := <-errCh:
		stopGRPC(grpcServer, grpcHealth, logger)
		return err
	}
}

func servingStatus(state domain.ConnectionState) healthpb.HealthCheckResponse_ServingStatus {
	if state == domain.StateConnected {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

// startGRPCServer поднимает grpc.health.v1 и reflection. Пустой addr отключает gRPC.
func startGRPCServer(addr string, healthServer *health.Server, logger *log.Entry, errCh chan<- error) (*grpc.Server, error) {
	if addr == "" {
		return nil, nil
	}

	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)
	grpcMetrics.InitializeMetrics(server)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen grpc %s: %w", addr, err)
	}
	go func() {
		logger.Infof("gRPC health сервер слушает %s", lis.Addr())
		if err := server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	return server, nil
}

// stopGRPC останавливает gRPC с таймаутом на graceful stop.
func stopGRPC(server *grpc.Server, healthServer *health.Server, logger *log.Entry) {
	healthServer.Shutdown()
	if server == nil {
		return
	}
	stoppedCh := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stoppedCh)
	}()
	select {
	case <-stoppedCh:
	case <-time.After(shutdownTimeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}

func logStartupBanner(logger *log.Entry, cfg Config, apiAddr string) {
	logger.Info("==================================================")
	logger.Infof("%s запущен", cfg.AppName)
	logger.WithFields(log.Fields{
		"environment": cfg.Environment,
		"version":     version.GetVersion(),
		"storage":     cfg.StorageDriver,
	}).Info("окружение")
	logger.Infof("HTTP API: http://%s", apiAddr)
	logger.Infof("Health check: http://%s/api/health", apiAddr)
	if cfg.GRPCAddr != "" {
		logger.Infof("gRPC health: %s", cfg.GRPCAddr)
	}
	logger.Info("==================================================")
}

// startMetricsServer запускает /metrics, /healthz, /livez и /readyz. Пустой addr отключает сервер.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
