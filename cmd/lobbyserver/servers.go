// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/AccelByte/extend-lobby-server/pkg/common"
	"github.com/AccelByte/extend-lobby-server/pkg/status"
)

const (
	bridgeHealthService  = "lobby.bridge"
	bridgeHealthInterval = time.Second
)

func newGRPCServer(registry *prometheus.Registry) (*grpc.Server, *health.Server) {
	srvMetrics := grpcprom.NewServerMetrics(
		grpcprom.WithServerHandlingTimeHistogram(
			grpcprom.WithHistogramBuckets([]float64{0.001, 0.01, 0.1, 0.3, 0.6, 1, 3, 6, 9, 20, 30, 60, 90, 120}),
		),
	)
	registry.MustRegister(srvMetrics)

	loggingOptions := []logging.Option{
		logging.WithLogOnEvents(logging.StartCall, logging.FinishCall),
		logging.WithFieldsFromContext(common.TraceFields),
	}
	logger := common.InterceptorLogger(logrus.WithField("component", "grpc"))

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			srvMetrics.UnaryServerInterceptor(),
			logging.UnaryServerInterceptor(logger, loggingOptions...),
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandler(common.RecoverPanic)),
		),
		grpc.ChainStreamInterceptor(
			srvMetrics.StreamServerInterceptor(),
			logging.StreamServerInterceptor(logger, loggingOptions...),
			recovery.StreamServerInterceptor(recovery.WithRecoveryHandler(common.RecoverPanic)),
		),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(bridgeHealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)
	srvMetrics.InitializeMetrics(server)

	return server, healthServer
}

// BridgeAvailability is satisfied by *serverpool.Pool.
type BridgeAvailability interface {
	IsAnyServerAvailable() bool
}

// watchBridgeHealth reports lobby.bridge as serving while a game server can take a match.
func watchBridgeHealth(ctx context.Context, healthServer *health.Server, servers BridgeAvailability) error {
	ticker := time.NewTicker(bridgeHealthInterval)
	defer ticker.Stop()

	serving := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		available := servers.IsAnyServerAvailable()
		if available == serving {
			continue
		}
		serving = available
		if serving {
			healthServer.SetServingStatus(bridgeHealthService, healthpb.HealthCheckResponse_SERVING)
		} else {
			healthServer.SetServingStatus(bridgeHealthService, healthpb.HealthCheckResponse_NOT_SERVING)
		}
		logrus.Infof("bridge availability changed, serving: %t", serving)
	}
}

func statusHandler(reporter *status.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		latest := reporter.Latest()
		if latest == nil {
			reporter.Report(time.Now())
			latest = reporter.Latest()
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(latest); err != nil {
			logrus.WithError(err).Warn("unable to write lobby status")
		}
	})
}
