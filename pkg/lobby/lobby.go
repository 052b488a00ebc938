// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package lobby is the front door for game clients: registration, parties, queueing and leaving games.
package lobby

import (
	"errors"
	"fmt"

	"github.com/AccelByte/extend-lobby-server/pkg/accountstore"
	"github.com/AccelByte/extend-lobby-server/pkg/bridge"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/groups"
	"github.com/AccelByte/extend-lobby-server/pkg/matchmaker"
	"github.com/AccelByte/extend-lobby-server/pkg/metrics"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/queuepenalty"
	"github.com/AccelByte/extend-lobby-server/pkg/session"
)

// Queues is the matchmaking side of the lobby. *matchmaker.Manager satisfies it.
type Queues interface {
	AddGroup(scope *envelope.Scope, gameType models.GameType, group matchmaker.Group) error
	RemoveGroupFromQueue(scope *envelope.Scope, groupID int64) bool
}

// Penalties is satisfied by *queuepenalty.Manager.
type Penalties interface {
	SetQueuePenalty(scope *envelope.Scope, accountID int64, server queuepenalty.GameServer) error
	CheckQueuePenalties(scope *envelope.Scope, accountID int64, gameType models.GameType) error
}

// Servers finds the bridge server of a game. *serverpool.Pool satisfies it.
type Servers interface {
	GetServerByProcessCode(processCode string) *bridge.Server
	GetServerWithPlayer(accountID int64) *bridge.Server
}

// Environment holds the collaborators shared by every client connection.
type Environment struct {
	Sessions  *session.Registry
	Accounts  accountstore.Store
	Groups    *groups.Manager
	Queues    Queues
	Penalties Penalties
	Servers   Servers
	Metrics   metrics.LobbyMetrics
}

// getOrCreateAccount loads the account, creating it on first login.
func (env *Environment) getOrCreateAccount(scope *envelope.Scope, accountID int64, handle string) (models.Account, error) {
	account, err := env.Accounts.GetAccount(scope.Ctx, accountID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, models.ErrAccountNotFound) {
		return models.Account{}, fmt.Errorf("unable to load account %d: %w", accountID, err)
	}

	if handle == "" {
		handle = fmt.Sprintf("Player#%d", accountID)
	}
	account = models.Account{AccountID: accountID, Handle: handle}
	if err := env.Accounts.UpdateAccount(scope.Ctx, account); err != nil {
		return models.Account{}, fmt.Errorf("unable to create account %d: %w", accountID, err)
	}
	scope.Log.Infof("Created account %d for %s", accountID, handle)
	return account, nil
}

// currentServer returns the server of the game the account is assigned to, nil when there is none.
func (env *Environment) currentServer(accountID int64) (*bridge.Server, string) {
	processCode, ok := env.Sessions.GetCurrentServer(accountID)
	if !ok {
		return nil, ""
	}
	return env.Servers.GetServerByProcessCode(processCode), processCode
}

// penalizeLeaver applies the queue penalty for leaving the game on server.
func (env *Environment) penalizeLeaver(scope *envelope.Scope, accountID int64, server *bridge.Server) {
	if server == nil || env.Penalties == nil {
		return
	}
	if err := env.Penalties.SetQueuePenalty(scope, accountID, server); err != nil {
		scope.Log.WithError(err).Errorf("unable to apply queue penalty to %d", accountID)
	}
}

func (env *Environment) publishSessions() {
	env.Metrics.SessionsOnline(env.Sessions.OnlineCount())
}
