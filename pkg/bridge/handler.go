// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/AccelByte/extend-lobby-server/pkg/common"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// HandleMessage decodes one frame from the game server and acts on it. Bad frames and handler
// panics are logged with the raw payload and never end the connection.
func (s *Server) HandleMessage(scope *envelope.Scope, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			scope.Log.WithField("payload", hex.EncodeToString(data)).
				Errorf("failed to handle bridge message: %v", r)
		}
	}()

	messageType, callbackID, msg, err := DecodeFrame(data)
	if err != nil {
		entry := scope.Log.WithField("payload", hex.EncodeToString(data)).WithError(err)
		if errors.Is(err, models.ErrUnknownMessageType) {
			entry.Errorf("Unknown bridge message type %d", uint16(messageType))
		} else {
			entry.Errorf("Failed to deserialize %s", messageType)
		}
		return
	}
	s.env.Metrics.AddBridgeMessage(messageType.String())
	if _, isHeartbeat := msg.(*MonitorHeartbeatNotification); isHeartbeat {
		scope.Log.Debugf("< %s heartbeat", messageType)
	} else {
		common.LogPayload(scope.Log, "<", messageType.String(), msg)
	}

	switch m := msg.(type) {
	case *RegisterGameServerRequest:
		s.handleRegister(scope, m, callbackID)
	case *ServerGameSummaryNotification:
		s.handleGameSummary(scope, m)
	case *PlayerDisconnectedNotification:
		s.handlePlayerDisconnected(scope, m)
	case *DisconnectPlayerRequest:
		scope.Log.Infof("Sending Disconnect player Request for accountId %d", m.PlayerInfo.AccountID)
	case *ReconnectPlayerRequest:
		scope.Log.Infof("Sending reconnect player Request for accountId %d with reconnection session id %d", m.AccountID, m.NewSessionID)
	case *ServerGameMetricsNotification:
		s.handleGameMetrics(scope, m)
	case *ServerGameStatusNotification:
		s.handleGameStatus(scope, m)
	case *MonitorHeartbeatNotification:
	case *LaunchGameResponse:
		s.handleLaunchGameResponse(scope, m)
	case *JoinGameServerResponse:
		s.handleJoinGameServerResponse(scope, m)
	default:
		scope.Log.Warnf("Received unhandled bridge message type %s", messageType)
	}
}

// HandleClose deregisters the server once its transport is gone. The server is not reused afterwards.
func (s *Server) HandleClose(scope *envelope.Scope) {
	s.env.Pool.RemoveServer(s.processCode)

	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()

	s.cancel()
	scope.Log.Infof("Game server %s disconnected", s.processCode)
}

func splitConnectionAddress(address string) (string, int, error) {
	host, portText, err := net.SplitHostPort(address)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portText, err)
	}
	return host, port, nil
}

func (s *Server) handleRegister(scope *envelope.Scope, request *RegisterGameServerRequest, callbackID int32) {
	host, port, err := splitConnectionAddress(request.SessionInfo.ConnectionAddress)
	if err != nil {
		scope.Log.WithError(err).Errorf("Game server sent invalid connection address %q", request.SessionInfo.ConnectionAddress)
		if sendErr := s.Send(scope, &RegisterGameServerResponse{Success: false, ErrorMessage: err.Error()}, callbackID); sendErr != nil {
			scope.Log.WithError(sendErr).Warn("unable to reject game server registration")
		}
		return
	}

	s.mu.Lock()
	s.address = host
	s.port = port
	s.sessionInfo = request.SessionInfo
	s.private = request.IsPrivate
	s.mu.Unlock()

	s.env.Pool.AddServer(s)

	if err := s.Send(scope, &RegisterGameServerResponse{Success: true}, callbackID); err != nil {
		scope.Log.WithError(err).Warn("unable to confirm game server registration")
	}
}

func (s *Server) handlePlayerDisconnected(scope *envelope.Scope, notification *PlayerDisconnectedNotification) {
	accountID := notification.PlayerInfo.AccountID
	scope.Log.Infof("Player %d left game %s", accountID, s.GameInfo().GameServerProcessCode)

	s.env.Sessions.ClearCurrentServer(accountID, s.processCode)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.teamInfo.Find(accountID)
	if i < 0 {
		scope.Log.Warnf("Player %d is not on the roster of %s", accountID, s.processCode)
		return
	}
	s.teamInfo.TeamPlayerInfo[i].ReplacedWithBots = true
}

func (s *Server) handleGameMetrics(scope *envelope.Scope, notification *ServerGameMetricsNotification) {
	gameInfo := s.GameInfo()
	m := notification.GameMetrics
	if m == nil {
		scope.Log.Infof("Game %s sent empty metrics", gameInfo.GameServerProcessCode)
		return
	}
	scope.Log.Infof("Game %s Turn %d, %d-%d, frame time: %f",
		gameInfo.GameServerProcessCode, m.CurrentTurn, m.TeamAPoints, m.TeamBPoints, m.AverageFrameTime)
	s.env.Metrics.ObserveGameFrameTime(gameInfo.GameConfig.GameType.String(), float64(m.AverageFrameTime))
}

func (s *Server) handleGameStatus(scope *envelope.Scope, notification *ServerGameStatusNotification) {
	scope.Log.Infof("Game %s %s", s.processCode, notification.GameStatus)

	s.mu.Lock()
	s.setStatusLocked(notification.GameStatus)
	s.mu.Unlock()

	if notification.GameStatus != models.GameStatusStopped {
		return
	}

	for _, client := range s.GetClients() {
		s.env.Sessions.ClearCurrentServer(client.AccountID(), s.processCode)
		client.Send(models.ForceMatchmakingQueueNotification{
			Action:   models.ForceMatchmakingQueueLeave,
			GameType: models.GameTypePvP,
		})
	}
	s.RevertSubstitutions(scope)
}

func (s *Server) handleLaunchGameResponse(scope *envelope.Scope, response *LaunchGameResponse) {
	var status models.GameStatus
	var humans int32
	if response.GameInfo != nil {
		status, humans = response.GameInfo.GameStatus, response.GameInfo.ActiveHumanPlayers
	}
	scope.Log.Infof("Game %s launched (%s, %s) with %d players", s.processCode, response.GameServerAddress, status, humans)
}

func (s *Server) handleJoinGameServerResponse(scope *envelope.Scope, response *JoinGameServerResponse) {
	if response.PlayerInfo == nil {
		scope.Log.Infof("Unknown player joined %s", response.GameServerProcessCode)
		return
	}
	p := response.PlayerInfo
	scope.Log.Infof("Player %s %d %s joined %s", p.Handle, p.AccountID, p.CharacterType, response.GameServerProcessCode)
}
