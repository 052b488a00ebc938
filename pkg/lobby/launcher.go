// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package lobby

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-lobby-server/pkg/bridge"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/matchmaker"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/session"
)

var errNoPlayerOnline = errors.New("no player of the match is online")

// ServerSource hands out bridge servers for new games. *serverpool.Pool satisfies it.
type ServerSource interface {
	IsAnyServerAvailable() bool
	GetServer() *bridge.Server
}

// Launcher starts committed matches on bridge servers. The character selection phase and the launch
// run on the worker pool so the matchmaking loop never waits for them.
type Launcher struct {
	servers       ServerSource
	sessions      *session.Registry
	workers       bridge.Submitter
	selectTimeout time.Duration

	after func(d time.Duration) <-chan time.Time
}

func NewLauncher(servers ServerSource, sessions *session.Registry, workers bridge.Submitter, selectTimeout time.Duration) *Launcher {
	return &Launcher{
		servers:       servers,
		sessions:      sessions,
		workers:       workers,
		selectTimeout: selectTimeout,
		after:         time.After,
	}
}

func (l *Launcher) IsAnyServerAvailable() bool {
	return l.servers.IsAnyServerAvailable()
}

// LaunchMatch reserves a server, seats both teams and tells every player about the game. A failure
// leaves the server unreserved and no player assigned.
func (l *Launcher) LaunchMatch(
	scope *envelope.Scope,
	key matchmaker.QueueKey,
	subType models.GameSubType,
	mapName string,
	match matchmaker.Match,
) error {
	server := l.servers.GetServer()
	if server == nil {
		return models.ErrServerNotAvailable
	}
	processCode := server.ProcessCode()
	scope = scope.WithFields(logrus.Fields{"processCode": processCode})
	scope.SetAttributes(envelope.ProcessCodeTag, processCode)

	server.FillTeam(scope, match.TeamA.AccountIDs(), models.TeamA)
	server.FillTeam(scope, match.TeamB.AccountIDs(), models.TeamB)
	players := server.GetPlayers()
	if len(players) == 0 {
		server.CancelReservation()
		return errNoPlayerOnline
	}

	gameInfo := server.BuildGameInfo(key.GameType, subType, mapName)
	scope.Log.Infof("Launching %s %s on %s with %d players: %s", key, gameInfo.GameConfig.Map, processCode, len(players), match)

	for _, accountID := range players {
		l.sessions.SetCurrentServer(accountID, processCode)
		if conn := l.sessions.GetClientConnection(accountID); conn != nil {
			server.SendGameAssignmentNotification(conn, false)
		}
	}
	server.SendGameInfoNotifications()

	traceID := scope.TraceID
	err := l.workers.Submit(func() {
		l.runSelection(traceID, server)
	})
	if err != nil {
		l.abort(server, players)
		return fmt.Errorf("unable to schedule launch of %s: %w", processCode, err)
	}
	return nil
}

// runSelection gives players with a duplicate or fill pick time to choose, resolves the rest, then
// launches the game.
func (l *Launcher) runSelection(traceID string, server *bridge.Server) {
	scope := envelope.NewRootScope(context.Background(), "lobby.launch", traceID).
		WithFields(logrus.Fields{"processCode": server.ProcessCode()})
	defer scope.Finish()

	if server.CheckDuplicatedAndFill(scope) {
		server.SendGameInfoNotifications()
		<-l.after(l.selectTimeout)
		if err := server.CheckIfAllSelected(scope); err != nil {
			scope.Log.WithError(err).Warn("unable to persist resolved characters")
		}
		server.SendGameInfoNotifications()
	}

	if err := server.StartGame(scope); err != nil {
		scope.RecordError(err)
		scope.Log.WithError(err).Errorf("Failed to start game on %s", server.ProcessCode())
		l.abort(server, server.GetPlayers())
	}
}

func (l *Launcher) abort(server *bridge.Server, players []int64) {
	server.CancelReservation()
	for _, accountID := range players {
		l.sessions.ClearCurrentServer(accountID, server.ProcessCode())
	}
}
