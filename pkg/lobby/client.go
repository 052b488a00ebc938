// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package lobby

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-lobby-server/pkg/bridge"
	"github.com/AccelByte/extend-lobby-server/pkg/common"
	"github.com/AccelByte/extend-lobby-server/pkg/constants"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/matchmaker"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/queuepenalty"
)

// Transport delivers encoded envelopes to the game client. WriteMessage never blocks.
type Transport interface {
	WriteMessage(data []byte) bool
	Close()
}

// ClientConnection is the lobby side of one game client. It implements session.Connection once the
// client registered.
type ClientConnection struct {
	env       *Environment
	transport Transport
	ipAddress string

	accountID atomic.Int64
}

func NewClientConnection(env *Environment, transport Transport, ipAddress string) *ClientConnection {
	return &ClientConnection{env: env, transport: transport, ipAddress: ipAddress}
}

// AccountID is 0 until the client registered.
func (c *ClientConnection) AccountID() int64 {
	return c.accountID.Load()
}

// Send pushes a notification to the client. It reports false when the message was dropped.
func (c *ClientConnection) Send(notification models.Notification) bool {
	payload, err := json.Marshal(notification)
	if err != nil {
		logrus.WithError(err).Errorf("unable to encode %s", notification.NotificationType())
		return false
	}
	return c.write(Envelope{Type: notification.NotificationType(), Payload: payload})
}

func (c *ClientConnection) Close() {
	c.transport.Close()
}

func (c *ClientConnection) write(e Envelope) bool {
	data, err := json.Marshal(e)
	if err != nil {
		logrus.WithError(err).Errorf("unable to encode %s", e.Type)
		return false
	}
	return c.transport.WriteMessage(data)
}

func (c *ClientConnection) respond(scope *envelope.Scope, request Envelope, response any) {
	payload, err := json.Marshal(response)
	if err != nil {
		scope.Log.WithError(err).Errorf("unable to encode response to %s", request.Type)
		return
	}
	if !c.write(Envelope{Type: responseType(request.Type), ResponseID: request.RequestID, Payload: payload}) {
		scope.Log.Warnf("dropped response to %s", request.Type)
	}
}

func failure(err error) Response {
	return Response{Success: false, ErrorMessage: err.Error(), ErrorCode: models.ErrorCode(err)}
}

func result(err error) Response {
	if err != nil {
		return failure(err)
	}
	return Response{Success: true}
}

// HandleMessage decodes one request and answers it. Every request but registration needs a
// registered connection. Handler panics are logged and never end the connection.
func (c *ClientConnection) HandleMessage(scope *envelope.Scope, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			scope.Log.WithField("payload", string(data)).Errorf("failed to handle lobby message: %v", r)
		}
	}()

	var request Envelope
	if err := json.Unmarshal(data, &request); err != nil || request.Type == "" {
		scope.Log.WithField("payload", string(data)).WithError(err).Warn("malformed lobby message")
		return
	}

	scope = scope.NewChildScope("lobby." + request.Type)
	defer scope.Finish()
	accountID := c.AccountID()
	if accountID != 0 {
		scope = scope.WithFields(logrus.Fields{"accountID": accountID})
		scope.SetAttributes(envelope.AccountIDTag, accountID)
	}
	common.LogPayload(scope.Log, "<", request.Type, request.Payload)

	if request.Type == TypeRegisterGameClientRequest {
		c.handleRegister(scope, request)
		return
	}
	if accountID == 0 {
		c.respond(scope, request, failure(models.ErrNotRegistered))
		return
	}

	switch request.Type {
	case TypeJoinMatchmakingQueueRequest:
		var payload JoinMatchmakingQueueRequest
		if !c.decode(scope, request, &payload) {
			return
		}
		c.respond(scope, request, c.joinMatchmakingQueue(scope, payload.GameType))
	case TypeLeaveMatchmakingQueueRequest:
		c.respond(scope, request, c.leaveMatchmakingQueue(scope))
	case TypeSelectCharacterRequest:
		var payload SelectCharacterRequest
		if !c.decode(scope, request, &payload) {
			return
		}
		c.respond(scope, request, c.selectCharacter(scope, payload.CharacterType))
	case TypeJoinGroupRequest:
		var payload JoinGroupRequest
		if !c.decode(scope, request, &payload) {
			return
		}
		c.respond(scope, request, c.joinGroup(scope, payload.GroupID))
	case TypeLeaveGroupRequest:
		c.respond(scope, request, c.leaveGroup(scope))
	case TypeLeaveGameRequest:
		c.respond(scope, request, result(c.leaveGame(scope)))
	default:
		scope.Log.Warnf("Received unhandled lobby message type %s", request.Type)
	}
}

func (c *ClientConnection) decode(scope *envelope.Scope, request Envelope, payload any) bool {
	if len(request.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(request.Payload, payload); err != nil {
		scope.Log.WithError(err).Warnf("malformed %s", request.Type)
		c.respond(scope, request, failure(fmt.Errorf("%w: %v", models.ErrMalformedPayload, err)))
		return false
	}
	return true
}

func (c *ClientConnection) handleRegister(scope *envelope.Scope, request Envelope) {
	var payload RegisterGameClientRequest
	if !c.decode(scope, request, &payload) {
		return
	}
	info, err := c.register(scope, payload.SessionInfo)
	if err != nil {
		scope.Log.WithError(err).Warnf("Registration of %d failed", payload.SessionInfo.AccountID)
		response := RegisterGameClientResponse{Response: failure(err)}
		if errors.Is(err, models.ErrAlreadyLoggedIn) {
			localized := models.NewLocalizationPayload(constants.TermAlreadyLoggedIn, constants.ContextGlobal)
			response.LocalizedFailure = &localized
		}
		c.respond(scope, request, response)
		return
	}

	reconnection := payload.SessionInfo.IsReconnection()
	c.respond(scope, request, RegisterGameClientResponse{
		Response:     Response{Success: true},
		SessionInfo:  &info,
		Reconnection: reconnection,
	})
	if reconnection {
		c.rejoinGame(scope.WithFields(logrus.Fields{"accountID": info.AccountID}), info.AccountID)
	}
}

// register logs the client in, or resumes its previous session when it presents one.
func (c *ClientConnection) register(scope *envelope.Scope, request models.SessionRequest) (models.SessionInfo, error) {
	if c.AccountID() != 0 {
		return models.SessionInfo{}, fmt.Errorf("%w: connection already registered as %d", models.ErrMalformedSession, c.AccountID())
	}
	if request.AccountID <= 0 {
		return models.SessionInfo{}, fmt.Errorf("%w: account id %d", models.ErrMalformedSession, request.AccountID)
	}
	if c.ipAddress != "" {
		request.IPAddress = c.ipAddress
	}

	account, err := c.env.getOrCreateAccount(scope, request.AccountID, request.Handle)
	if err != nil {
		return models.SessionInfo{}, err
	}

	c.accountID.Store(account.AccountID)
	var info models.SessionInfo
	if request.IsReconnection() {
		info, err = c.env.Sessions.Resume(c, account, request)
	} else if _, online := c.env.Sessions.GetSessionInfo(account.AccountID); online {
		err = models.ErrAlreadyLoggedIn
	} else {
		info, err = c.env.Sessions.Connect(c, account, request)
	}
	if err != nil {
		c.accountID.Store(0)
		return models.SessionInfo{}, err
	}

	c.env.Groups.GetPlayerGroup(account.AccountID)
	c.env.publishSessions()
	scope.Log.Infof("%s (%d) logged in from %s, build %s", account.Handle, account.AccountID, request.IPAddress, request.BuildVersion)
	return info, nil
}

// rejoinGame puts a reconnecting player back into the game still running with it on the roster.
func (c *ClientConnection) rejoinGame(scope *envelope.Scope, accountID int64) {
	server := c.env.Servers.GetServerWithPlayer(accountID)
	if server == nil {
		return
	}
	scope.Log.Infof("Reconnecting %d to game %s", accountID, server.ProcessCode())
	c.env.Sessions.SetCurrentServer(accountID, server.ProcessCode())
	server.SendGameAssignmentNotification(c, true)
	if err := server.StartGameForReconnection(scope, accountID); err != nil {
		scope.Log.WithError(err).Errorf("unable to reconnect %d to %s", accountID, server.ProcessCode())
	}
}

func (c *ClientConnection) joinMatchmakingQueue(scope *envelope.Scope, gameType models.GameType) Response {
	accountID := c.AccountID()
	group := c.env.Groups.GetPlayerGroup(accountID)
	if group.Leader != accountID {
		return failure(models.ErrNotGroupLeader)
	}
	if server, _ := c.env.currentServer(accountID); server != nil {
		return failure(fmt.Errorf("%w: already in game %s", models.ErrAlreadyQueued, server.ProcessCode()))
	}

	for _, member := range group.Members {
		err := c.env.Penalties.CheckQueuePenalties(scope, member, gameType)
		if err == nil {
			continue
		}
		response := failure(err)
		var penalty *queuepenalty.PenaltyError
		if errors.As(err, &penalty) && member == accountID {
			response.LocalizedFailure = &penalty.Payload
		}
		return response
	}

	err := c.env.Queues.AddGroup(scope, gameType, matchmaker.Group{GroupID: group.GroupID, Members: group.Members})
	if err != nil {
		scope.Log.WithError(err).Warnf("Group %d cannot join %s queue", group.GroupID, gameType)
	}
	return result(err)
}

func (c *ClientConnection) leaveMatchmakingQueue(scope *envelope.Scope) Response {
	group := c.env.Groups.GetPlayerGroup(c.AccountID())
	c.env.Queues.RemoveGroupFromQueue(scope, group.GroupID)
	return Response{Success: true}
}

// selectCharacter changes the pick in the game the player is assigned to, or its lobby character.
func (c *ClientConnection) selectCharacter(scope *envelope.Scope, character models.CharacterType) Response {
	accountID := c.AccountID()
	if server, _ := c.env.currentServer(accountID); server != nil {
		err := server.SelectCharacter(scope, accountID, character)
		response := result(err)
		if errors.Is(err, models.ErrCharacterUnavailable) {
			localized := models.NewLocalizationPayload(constants.TermCharacterUnavailable, constants.ContextGlobal)
			response.LocalizedFailure = &localized
		}
		return response
	}

	if cfg, known := models.CharacterConfigs[character]; !known || !cfg.AllowForPlayers {
		return failure(fmt.Errorf("%w: %s is not selectable", models.ErrCharacterUnavailable, character))
	}
	account, err := c.env.Accounts.GetAccount(scope.Ctx, accountID)
	if err != nil {
		return failure(err)
	}
	account.LastCharacter = character
	if err := c.env.Accounts.UpdateAccount(scope.Ctx, account); err != nil {
		return failure(err)
	}
	c.env.Sessions.UpdateCharacter(accountID, character)
	scope.Log.Debugf("%d selected %s", accountID, character)
	return Response{Success: true}
}

func (c *ClientConnection) joinGroup(scope *envelope.Scope, groupID int64) GroupResponse {
	accountID := c.AccountID()
	previous := c.env.Groups.GetPlayerGroup(accountID)
	if previous.GroupID == groupID {
		return GroupResponse{Response: Response{Success: true}, Group: &previous}
	}

	group, err := c.env.Groups.JoinGroup(groupID, accountID)
	if err != nil {
		return GroupResponse{Response: failure(err)}
	}
	c.env.Queues.RemoveGroupFromQueue(scope, previous.GroupID)
	c.env.Queues.RemoveGroupFromQueue(scope, group.GroupID)
	scope.Log.Infof("%d joined group %d", accountID, groupID)
	return GroupResponse{Response: Response{Success: true}, Group: &group}
}

func (c *ClientConnection) leaveGroup(scope *envelope.Scope) GroupResponse {
	accountID := c.AccountID()
	previous := c.env.Groups.GetPlayerGroup(accountID)
	if previous.IsSolo() {
		return GroupResponse{Response: Response{Success: true}, Group: &previous}
	}
	c.env.Queues.RemoveGroupFromQueue(scope, previous.GroupID)
	group := c.env.Groups.LeaveGroup(accountID)
	scope.Log.Infof("%d left group %d", accountID, previous.GroupID)
	return GroupResponse{Response: Response{Success: true}, Group: &group}
}

// leaveGame takes the player out of its current game. The game server replaces it with a bot.
func (c *ClientConnection) leaveGame(scope *envelope.Scope) error {
	accountID := c.AccountID()
	server, processCode := c.env.currentServer(accountID)
	if processCode == "" {
		return models.ErrPlayerNotInGame
	}
	defer c.env.Sessions.ClearCurrentServer(accountID, processCode)
	if server == nil {
		return fmt.Errorf("%w: game %s is gone", models.ErrPlayerNotInGame, processCode)
	}

	playerInfo, ok := server.GetPlayerInfo(accountID)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrPlayerNotInGame, processCode)
	}
	scope.Log.Infof("%d leaves game %s", accountID, processCode)
	c.env.penalizeLeaver(scope, accountID, server)

	sessionInfo, _ := c.env.Sessions.GetSessionInfo(accountID)
	return server.Send(scope, &bridge.DisconnectPlayerRequest{
		SessionInfo: sessionInfo,
		PlayerInfo:  playerInfo,
		GameResult:  models.GameResultNoResult,
	}, 0)
}

// HandleClose releases the session of the client unless a newer connection took it over. The
// player leaves its group and the queue. Walking out of a game counts as abandoning it.
func (c *ClientConnection) HandleClose(scope *envelope.Scope) {
	accountID := c.AccountID()
	if accountID == 0 {
		scope.Log.Debug("unregistered client disconnected")
		return
	}
	scope = scope.WithFields(logrus.Fields{"accountID": accountID})

	server, _ := c.env.currentServer(accountID)
	if !c.env.Sessions.Release(c) {
		scope.Log.Infof("Connection of %d was superseded", accountID)
		return
	}

	c.env.penalizeLeaver(scope, accountID, server)
	group := c.env.Groups.GetPlayerGroup(accountID)
	c.env.Queues.RemoveGroupFromQueue(scope, group.GroupID)
	c.env.Groups.Remove(accountID)

	c.env.publishSessions()
	scope.Log.Infof("%d disconnected", accountID)
}
