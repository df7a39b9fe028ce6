package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/marte1309/PinkBlueberrySalon/internal/auth"
	"github.com/marte1309/PinkBlueberrySalon/internal/catalog"
	"github.com/marte1309/PinkBlueberrySalon/internal/config"
	h "github.com/marte1309/PinkBlueberrySalon/internal/http"
	"github.com/marte1309/PinkBlueberrySalon/internal/orders"
	"github.com/marte1309/PinkBlueberrySalon/internal/orders/publisher"
	"github.com/marte1309/PinkBlueberrySalon/internal/rewards"
	"github.com/marte1309/PinkBlueberrySalon/internal/snapshot"
	"github.com/marte1309/PinkBlueberrySalon/internal/storefront"
	"github.com/marte1309/PinkBlueberrySalon/internal/validation"
	"github.com/marte1309/PinkBlueberrySalon/pkg/circuitbreaker"
	"github.com/marte1309/PinkBlueberrySalon/pkg/logger"
	"github.com/marte1309/PinkBlueberrySalon/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Mode:  cfg.Log.Mode,
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()
	var wg sync.WaitGroup
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	v := validation.New()

	// Snapshot store
	snapshots, closeSnapshots, err := openSnapshots(ctx, cfg.Snapshot, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeSnapshots)

	// Catalog
	if err := os.MkdirAll(filepath.Dir(cfg.Catalog.DBPath), 0o755); err != nil {
		return fmt.Errorf("catalog dir: %w", err)
	}
	catalogRepo, err := catalog.NewRepository(cfg.Catalog.DBPath)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	closers = append(closers, func() { _ = catalogRepo.Close() })
	if err := catalogRepo.RunMigrations(cfg.Catalog.MigrationsPath); err != nil {
		return fmt.Errorf("catalog migrations: %w", err)
	}
	log.Info("catalog ready", zap.String("path", cfg.Catalog.DBPath))

	// Orders
	var orderStore orders.Store
	if cfg.Orders.DBHost != "" {
		creds := &orders.Credentials{
			Host:              cfg.Orders.DBHost,
			Port:              cfg.Orders.DBPort,
			User:              cfg.Orders.DBUser,
			Password:          cfg.Orders.DBPassword,
			DBName:            cfg.Orders.DBName,
			MigrationsDirPath: cfg.Orders.MigrationsPath,
		}
		repo, err := orders.NewRepository(creds)
		if err != nil {
			return fmt.Errorf("orders database: %w", err)
		}
		closers = append(closers, func() { _ = repo.Close() })
		if err := repo.RunMigrations(creds); err != nil {
			return fmt.Errorf("orders migrations: %w", err)
		}
		log.Info("orders stored in postgres", zap.String("host", cfg.Orders.DBHost))
		orderStore = repo
	} else {
		log.Warn("DB_HOST not set, orders are kept in memory")
		orderStore = orders.NewMemoryRepository()
	}

	// Identity provider
	var gateway auth.Gateway
	if cfg.Auth.APIURL != "" {
		gateway = auth.NewHTTPGateway(auth.HTTPGatewayConfig{
			BaseURL: cfg.Auth.APIURL,
			Timeout: cfg.Auth.Timeout,
			Breaker: circuitbreaker.Config{Name: "auth-api"},
		})
		log.Info("using auth api", zap.String("url", cfg.Auth.APIURL))
	} else {
		log.Warn("AUTH_API_URL not set, accounts are kept in memory")
		gateway = auth.NewMemoryGateway([]byte(cfg.Auth.Secret), cfg.Auth.AutoConfirm, v)
	}

	svc := storefront.NewService(storefront.Deps{
		Snapshots:     snapshots,
		Catalog:       catalogRepo,
		Orders:        orderStore,
		Auth:          gateway,
		Metrics:       m,
		Validate:      v,
		IdleTTL:       cfg.Visitors.IdleTTL,
		SweepInterval: cfg.Visitors.SweepInterval,
		AuthTimeout:   cfg.Auth.Timeout,
	})
	closers = append(closers, func() { _ = svc.Close() })

	// Order events and rewards
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	if len(cfg.Kafka.Brokers) > 0 {
		poller := publisher.NewOutboxPoller(orderStore, cfg.Kafka.Brokers...)
		consumer := rewards.NewConsumer(svc, cfg.Kafka.Brokers...)
		closers = append(closers, func() { _ = poller.Close() }, consumer.Close)

		wg.Add(2)
		go func() {
			defer wg.Done()
			poller.Run(workerCtx)
		}()
		go func() {
			defer wg.Done()
			consumer.Run(workerCtx)
		}()
		log.Info("order events enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		log.Warn("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	// HTTP API
	router := h.NewRouter(h.RouterConfig{
		Service:      svc,
		Logger:       log,
		Metrics:      m,
		Gatherer:     reg,
		Validate:     v,
		Timeout:      cfg.RequestTimeout,
		MaxBodyBytes: cfg.MaxRequestBodySize,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// gRPC health
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 2)
	go func() {
		log.Info("storefront http listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("storefront grpc health listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case <-quit:
	case runErr = <-errCh:
	}

	log.Info("shutting down storefront...")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	workerCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info("workers stopped cleanly")
	case <-shutdownCtx.Done():
		log.Warn("workers didn't stop in time")
	}

	log.Info("storefront stopped")
	return runErr
}

// openSnapshots builds the configured snapshot store and its cleanup.
func openSnapshots(ctx context.Context, cfg config.SnapshotConfig, log *zap.Logger) (snapshot.Store, func(), error) {
	openRedis := func() (*snapshot.RedisStore, func(), error) {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		return snapshot.NewRedisStore(client, cfg.RedisTTL, cfg.RedisJitter), func() { _ = client.Close() }, nil
	}
	openMongo := func() (*snapshot.MongoStore, func(), error) {
		db, err := snapshot.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		store := snapshot.NewMongoStore(db)
		if err := store.CreateIndexes(ctx); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info("connected to mongodb", zap.String("database", cfg.MongoDBName))
		return store, func() { _ = db.Client().Disconnect(context.Background()) }, nil
	}

	switch cfg.Backend {
	case config.BackendRedis:
		return openRedis()
	case config.BackendMongo:
		return openMongo()
	case config.BackendCached:
		durable, closeMongo, err := openMongo()
		if err != nil {
			return nil, nil, err
		}
		cache, closeRedis, err := openRedis()
		if err != nil {
			closeMongo()
			return nil, nil, err
		}
		return snapshot.NewCachedStore(durable, cache), func() {
			closeRedis()
			closeMongo()
		}, nil
	default:
		log.Warn("snapshots are kept in memory and lost on restart")
		return snapshot.NewMemoryStore(), func() {}, nil
	}
}
