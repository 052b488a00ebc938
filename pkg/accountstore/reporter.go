// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package accountstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

const gameHistoryKey = "lobby:games"

// GameReport is what a finished game leaves behind for outside integrations.
type GameReport struct {
	ProcessCode string             `json:"processCode"`
	GameInfo    models.GameInfo    `json:"gameInfo"`
	TeamInfo    models.TeamInfo    `json:"teamInfo"`
	Summary     models.GameSummary `json:"summary"`
	ReportedAt  time.Time          `json:"reportedAt"`
}

type GameReporter interface {
	ReportGame(ctx context.Context, report GameReport) error
}

// LogGameReporter writes reports to the log only.
type LogGameReporter struct{}

func (LogGameReporter) ReportGame(_ context.Context, report GameReport) error {
	logrus.WithFields(logrus.Fields{
		"processCode": report.ProcessCode,
		"gameType":    report.GameInfo.GameConfig.GameType.String(),
		"map":         report.GameInfo.GameConfig.Map,
		"result":      report.Summary.GameResult.String(),
		"score":       fmt.Sprintf("%d-%d", report.Summary.TeamAPoints, report.Summary.TeamBPoints),
		"turns":       report.Summary.NumOfTurns,
	}).Info("game finished")
	return nil
}

// RedisGameReporter keeps the most recent reports in a capped redis list, newest first.
type RedisGameReporter struct {
	client redis.UniversalClient
	limit  int64
}

func NewRedisGameReporter(client redis.UniversalClient, limit int64) *RedisGameReporter {
	if limit <= 0 {
		limit = 1
	}
	return &RedisGameReporter{client: client, limit: limit}
}

func (r *RedisGameReporter) ReportGame(ctx context.Context, report GameReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal game report %s: %w", report.ProcessCode, err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, gameHistoryKey, data)
		pipe.LTrim(ctx, gameHistoryKey, 0, r.limit-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis push game report %s: %w", report.ProcessCode, err)
	}
	return nil
}

// RecentGames returns up to count reports, newest first.
func (r *RedisGameReporter) RecentGames(ctx context.Context, count int64) ([]GameReport, error) {
	values, err := r.client.LRange(ctx, gameHistoryKey, 0, count-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read game history: %w", err)
	}
	reports := make([]GameReport, 0, len(values))
	for _, value := range values {
		var report GameReport
		if err := json.Unmarshal([]byte(value), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}
