// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	sessionsOnline         prometheus.Gauge
	queuedGroups           prometheus.GaugeVec
	queuedPlayers          prometheus.GaugeVec
	matchmakingElapsedTime prometheus.HistogramVec
	matchesCommitted       prometheus.CounterVec
	unmatchedReasons       prometheus.CounterVec
	bridgeServers          prometheus.GaugeVec
	bridgeMessagesReceived prometheus.CounterVec
	gameFrameTime          prometheus.HistogramVec
	queuePenaltiesApplied  prometheus.CounterVec
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)

	sessionsOnline := factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "lobby_sessions_online",
			Help: "Number of client sessions currently connected",
		})

	queuedGroups := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lobby_matchmaking_queued_groups",
			Help: "Number of groups waiting in a matchmaking queue",
		}, []string{"queue"})

	queuedPlayers := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lobby_matchmaking_queued_players",
			Help: "Number of players waiting in a matchmaking queue",
		}, []string{"queue"})

	//nolint:promlinter
	matchmakingElapsedTime := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lobby_matchmaking_elapsed_time_ms",
			Help:    "A histogram of matchmaking functions elapsed time in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"queue", "function"})

	matchesCommitted := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lobby_matchmaking_matches_committed_total",
			Help: "Number of matches handed to a game server",
		}, []string{"queue"})

	//nolint:promlinter
	unmatchedReasons := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lobby_matchmaking_unmatched_reasons",
			Help: "Reasons a matchmaking scan ended without a match",
		}, []string{"queue", "reason"})

	bridgeServers := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lobby_bridge_servers",
			Help: "Number of registered bridge servers per game status",
		}, []string{"status"})

	bridgeMessagesReceived := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lobby_bridge_messages_received_total",
			Help: "Bridge messages received per message type",
		}, []string{"type"})

	//nolint:promlinter
	gameFrameTime := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lobby_game_frame_time_ms",
			Help:    "Average frame time reported by running games in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"game_type"})

	queuePenaltiesApplied := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lobby_queue_penalties_applied_total",
			Help: "Queue dodge penalties applied per game type",
		}, []string{"game_type"})

	return prometheusMetrics{
		sessionsOnline:         sessionsOnline,
		queuedGroups:           *queuedGroups,
		queuedPlayers:          *queuedPlayers,
		matchmakingElapsedTime: *matchmakingElapsedTime,
		matchesCommitted:       *matchesCommitted,
		unmatchedReasons:       *unmatchedReasons,
		bridgeServers:          *bridgeServers,
		bridgeMessagesReceived: *bridgeMessagesReceived,
		gameFrameTime:          *gameFrameTime,
		queuePenaltiesApplied:  *queuePenaltiesApplied,
	}
}

func (metrics prometheusMetrics) SessionsOnline(count int) {
	metrics.sessionsOnline.Set(float64(count))
}

func (metrics prometheusMetrics) QueuedGroups(queue string, groups int, players int) {
	metrics.queuedGroups.With(prometheus.Labels{"queue": queue}).Set(float64(groups))
	metrics.queuedPlayers.With(prometheus.Labels{"queue": queue}).Set(float64(players))
}

func (metrics prometheusMetrics) AddMatchmakingElapsedTimeMs(queue, function string, elapsedTime time.Duration) {
	metrics.matchmakingElapsedTime.With(prometheus.Labels{"queue": queue, "function": function}).Observe(float64(elapsedTime.Milliseconds()))
}

func (metrics prometheusMetrics) AddMatchCommitted(queue string) {
	metrics.matchesCommitted.With(prometheus.Labels{"queue": queue}).Inc()
}

func (metrics prometheusMetrics) AddUnmatchedReason(queue string, reason string) {
	metrics.unmatchedReasons.With(prometheus.Labels{"queue": queue, "reason": reason}).Add(float64(1))
}

// BridgeServers replaces the per status gauges so statuses without servers drop to zero.
func (metrics prometheusMetrics) BridgeServers(countByStatus map[string]int) {
	metrics.bridgeServers.Reset()
	for status, count := range countByStatus {
		metrics.bridgeServers.With(prometheus.Labels{"status": status}).Set(float64(count))
	}
}

func (metrics prometheusMetrics) AddBridgeMessage(messageType string) {
	metrics.bridgeMessagesReceived.With(prometheus.Labels{"type": messageType}).Inc()
}

func (metrics prometheusMetrics) ObserveGameFrameTime(gameType string, frameTimeMs float64) {
	metrics.gameFrameTime.With(prometheus.Labels{"game_type": gameType}).Observe(frameTimeMs)
}

func (metrics prometheusMetrics) AddQueuePenalty(gameType string) {
	metrics.queuePenaltiesApplied.With(prometheus.Labels{"game_type": gameType}).Inc()
}
