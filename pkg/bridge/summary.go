// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"context"
	"time"

	"github.com/AccelByte/extend-lobby-server/pkg/accountstore"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// handleGameSummary finishes the game in the background: results, report, Stopped, then shutdown.
// The server is not handed out again until the shutdown request went out.
func (s *Server) handleGameSummary(scope *envelope.Scope, notification *ServerGameSummaryNotification) {
	s.mu.Lock()
	s.shuttingDown = true
	s.mu.Unlock()

	s.runInBackground(func() {
		s.processGameSummary(scope, notification.GameSummary)

		s.mu.Lock()
		s.setStatusLocked(models.GameStatusStopped)
		s.mu.Unlock()

		s.sleep(s.env.Timings.ShutdownDelay)
		if err := s.Send(scope, &ShutdownGameRequest{}, 0); err != nil {
			scope.Log.WithError(err).Warnf("unable to shut down game server %s", s.processCode)
		}

		s.mu.Lock()
		s.shuttingDown = false
		s.mu.Unlock()
	})
}

func (s *Server) processGameSummary(scope *envelope.Scope, summary *models.GameSummary) {
	defer func() {
		if r := recover(); r != nil {
			scope.Log.Errorf("failed to process game summary of %s: %v", s.processCode, r)
		}
	}()

	s.mu.Lock()
	if summary == nil {
		summary = &models.GameSummary{GameResult: models.GameResultTieGame}
	}
	s.gameInfo.GameResult = summary.GameResult
	s.mu.Unlock()

	scope.Log.Infof("Game %s at %s finished (%d turns), %s %d-%d",
		s.processCode, summary.GameServerAddress, summary.NumOfTurns,
		summary.GameResult, summary.TeamAPoints, summary.TeamBPoints)

	summary.BadgeAndParticipantsInfo = []models.BadgeAndParticipantInfo{}
	if summary.GameResult.HasWinner() {
		summary.BadgeAndParticipantsInfo = ComputeBadges(*summary)
	}

	// let players see the end of the game before the results screen
	s.sleep(s.env.Timings.ResultsDelay)

	results := models.MatchResultsNotification{
		BadgeAndParticipantsInfo: summary.BadgeAndParticipantsInfo,
		BaseXpGained:             0,
		CurrencyRewards:          []models.CurrencyReward{},
	}
	for _, client := range s.GetClients() {
		client.Send(results)
	}

	s.SendGameInfoNotifications()
	s.reportGame(scope, *summary)
}

// reportGame hands the report to the worker pool. Failures are logged and never hold up the game.
func (s *Server) reportGame(scope *envelope.Scope, summary models.GameSummary) {
	if s.env.Reporter == nil {
		return
	}

	s.mu.RLock()
	report := accountstore.GameReport{
		ProcessCode: s.processCode,
		GameInfo:    s.gameInfo,
		TeamInfo:    s.teamInfoLocked(),
		Summary:     summary,
		ReportedAt:  time.Now().UTC(),
	}
	s.mu.RUnlock()

	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()
		if err := s.env.Reporter.ReportGame(ctx, report); err != nil {
			scope.Log.WithError(err).Infof("Failed to report game %s", report.ProcessCode)
		}
	}
	if s.env.Workers == nil {
		go task()
		return
	}
	if err := s.env.Workers.Submit(task); err != nil {
		scope.Log.WithError(err).Warnf("unable to schedule report of game %s", report.ProcessCode)
	}
}
