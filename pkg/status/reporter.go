// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package status

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-lobby-server/pkg/metrics"
)

// Reporter periodically builds the status, keeps the latest copy and publishes it as gauges.
type Reporter struct {
	build    func(now time.Time) (Status, error)
	metrics  metrics.LobbyMetrics
	interval time.Duration
	latest   atomic.Pointer[Status]
}

func NewReporter(build func(now time.Time) (Status, error), lobbyMetrics metrics.LobbyMetrics, interval time.Duration) *Reporter {
	return &Reporter{build: build, metrics: lobbyMetrics, interval: interval}
}

// Latest returns the last published status, nil before the first report.
func (r *Reporter) Latest() *Status {
	return r.latest.Load()
}

// Run reports every interval until ctx is done.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			r.Report(now)
		}
	}
}

func (r *Reporter) Report(now time.Time) {
	status, err := r.build(now)
	if err != nil {
		logrus.WithError(err).Warn("lobby status is incomplete")
	}
	r.latest.Store(&status)

	r.metrics.SessionsOnline(len(status.Players))
	for _, q := range status.Queues {
		r.metrics.QueuedGroups(q.Key.String(), len(q.Groups), q.Players)
	}
	r.metrics.BridgeServers(status.ServersByStatus())

	logrus.WithFields(logrus.Fields{
		"players": len(status.Players),
		"groups":  len(status.Groups),
		"queued":  status.QueuedGroups(),
		"servers": len(status.Servers),
		"games":   len(status.Games),
	}).Debug("lobby status")
}
