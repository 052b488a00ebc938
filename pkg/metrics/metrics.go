// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type LobbyMetrics interface {
	SessionsOnline(count int)
	QueuedGroups(queue string, groups int, players int)
	AddMatchmakingElapsedTimeMs(queue, function string, elapsedTime time.Duration)
	AddMatchCommitted(queue string)
	AddUnmatchedReason(queue string, reason string)
	BridgeServers(countByStatus map[string]int)
	AddBridgeMessage(messageType string)
	ObserveGameFrameTime(gameType string, frameTimeMs float64)
	AddQueuePenalty(gameType string)
}

func NewMetrics(registry *prometheus.Registry) LobbyMetrics {
	return setupPrometheusMetrics(registry)
}
