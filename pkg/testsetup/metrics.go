package testsetup

import (
	"time"

	"github.com/AccelByte/extend-lobby-server/pkg/metrics"
)

type stubMetricsCollection struct{}

func (s stubMetricsCollection) SessionsOnline(count int) {
}

func (s stubMetricsCollection) QueuedGroups(queue string, groups int, players int) {
}

func (s stubMetricsCollection) AddMatchmakingElapsedTimeMs(queue, function string, elapsedTime time.Duration) {
}

func (s stubMetricsCollection) AddMatchCommitted(queue string) {
}

func (s stubMetricsCollection) AddUnmatchedReason(queue string, reason string) {
}

func (s stubMetricsCollection) BridgeServers(countByStatus map[string]int) {
}

func (s stubMetricsCollection) AddBridgeMessage(messageType string) {
}

func (s stubMetricsCollection) ObserveGameFrameTime(gameType string, frameTimeMs float64) {
}

func (s stubMetricsCollection) AddQueuePenalty(gameType string) {
}

func NewMetrics() metrics.LobbyMetrics {
	return stubMetricsCollection{}
}
