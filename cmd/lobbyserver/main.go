// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/AccelByte/extend-lobby-server/pkg/accountstore"
	"github.com/AccelByte/extend-lobby-server/pkg/bridge"
	"github.com/AccelByte/extend-lobby-server/pkg/common"
	"github.com/AccelByte/extend-lobby-server/pkg/config"
	"github.com/AccelByte/extend-lobby-server/pkg/groups"
	"github.com/AccelByte/extend-lobby-server/pkg/lobby"
	"github.com/AccelByte/extend-lobby-server/pkg/matchmaker"
	"github.com/AccelByte/extend-lobby-server/pkg/metrics"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/queuepenalty"
	"github.com/AccelByte/extend-lobby-server/pkg/serverpool"
	"github.com/AccelByte/extend-lobby-server/pkg/session"
	"github.com/AccelByte/extend-lobby-server/pkg/status"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("lobby server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logFile := common.SetupLogger(cfg)
	defer logFile.Close()

	shutdownTracing, err := common.SetupTracing(cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logrus.WithError(err).Warn("unable to flush traces")
		}
	}()

	queues, err := config.QueuesFromJSON(cfg.QueuesConfig)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	lobbyMetrics := metrics.NewMetrics(registry)

	store, reporter, closeStore, err := setupAccountStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	workers, err := ants.NewPool(cfg.WorkerPoolSize, ants.WithPanicHandler(func(p any) {
		logrus.Errorf("worker panic: %v", p)
	}))
	if err != nil {
		return fmt.Errorf("unable to create worker pool: %w", err)
	}
	defer workers.Release()

	sessions := session.NewRegistry(cfg.ReconnectGracePeriod)
	groupManager := groups.NewManager(cfg.GroupMaxSize)
	pool := serverpool.New(lobbyMetrics)

	bridgeEnv := &bridge.Environment{
		Sessions: sessions,
		Pool:     pool,
		Accounts: store,
		Reporter: reporter,
		Workers:  workers,
		Metrics:  lobbyMetrics,
		Buffers:  models.NewPool(),
		Timings: bridge.Timings{
			ResultsDelay:    cfg.ResultsDelay,
			ShutdownDelay:   cfg.ShutdownDelay,
			StopGracePeriod: cfg.StopGracePeriod,
		},
	}

	launcher := lobby.NewLauncher(pool, sessions, workers, cfg.CharacterSelectTimeout)
	manager, err := matchmaker.NewManager(queues, store, launcher, sessions, lobbyMetrics, cfg.Matchmaking)
	if err != nil {
		return err
	}
	pool.SetUpdater(manager)

	penalties := queuepenalty.New(cfg.MatchAbandoningPenalty, store, groupManager, manager, sessions, lobbyMetrics)
	lobbyEnv := &lobby.Environment{
		Sessions:  sessions,
		Accounts:  store,
		Groups:    groupManager,
		Queues:    manager,
		Penalties: penalties,
		Servers:   pool,
		Metrics:   lobbyMetrics,
	}

	statusReporter := status.NewReporter(func(now time.Time) (status.Status, error) {
		return status.Build(sessions, groupManager, manager, pool, now)
	}, lobbyMetrics, cfg.StatusInterval)

	mux := http.NewServeMux()
	mux.Handle("/bridge", bridge.NewHandler(bridgeEnv))
	mux.Handle("/lobby", lobby.NewHandler(lobbyEnv))
	mux.Handle("/status", statusHandler(statusReporter))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, health := newGRPCServer(registry)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("unable to listen on grpc port %d: %w", cfg.GRPCPort, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return manager.Run(ctx)
	})
	eg.Go(func() error {
		return statusReporter.Run(ctx)
	})
	eg.Go(func() error {
		return watchBridgeHealth(ctx, health, pool)
	})
	eg.Go(func() error {
		logrus.Infof("http server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		logrus.Infof("grpc server listening on %s", grpcListener.Addr())
		if err := grpcServer.Serve(grpcListener); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logrus.Info("shutting down lobby server")
		health.Shutdown()
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func setupAccountStore(cfg *config.Config) (accountstore.Store, accountstore.GameReporter, func(), error) {
	if cfg.RedisAddr == "" {
		logrus.Warn("REDIS_ADDR is not set, accounts are kept in memory")
		return accountstore.NewMemoryStore(), accountstore.LogGameReporter{}, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("unable to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	closeClient := func() {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Warn("unable to close redis client")
		}
	}
	store := accountstore.NewCachedStore(accountstore.NewRedisStore(client), cfg.AccountCacheTTL)
	return store, accountstore.NewRedisGameReporter(client, cfg.GameHistoryLimit), closeClient, nil
}
