// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package queuepenalty blocks players who abandon a found PvP match from queueing again for a while.
package queuepenalty

import (
	"errors"
	"fmt"
	"time"

	"github.com/AccelByte/extend-lobby-server/pkg/accountstore"
	"github.com/AccelByte/extend-lobby-server/pkg/constants"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/groups"
	"github.com/AccelByte/extend-lobby-server/pkg/metrics"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// GameServer is the part of a bridge server a penalty decision looks at.
type GameServer interface {
	GameInfo() models.GameInfo
	TeamInfo() models.TeamInfo
	Status() models.GameStatus
	StopTime() time.Time
}

type GroupFinder interface {
	GetPlayerGroup(accountID int64) groups.Group
}

type QueueRemover interface {
	RemoveGroupFromQueue(scope *envelope.Scope, groupID int64) bool
}

type Notifier interface {
	Send(accountID int64, notification models.Notification) bool
}

// PenaltyError is returned when an active penalty blocks a queue entry. It wraps models.ErrQueuePenalty.
type PenaltyError struct {
	GameType  models.GameType
	Until     time.Time
	Remaining time.Duration
	Payload   models.LocalizationPayload
}

func (e *PenaltyError) Error() string {
	return fmt.Sprintf("%s: %s for %s", models.ErrQueuePenalty, e.GameType, e.Remaining.Round(time.Second))
}

func (e *PenaltyError) Unwrap() error {
	return models.ErrQueuePenalty
}

type Manager struct {
	enabled  bool
	accounts accountstore.Store
	groups   GroupFinder
	queues   QueueRemover
	notifier Notifier
	metrics  metrics.LobbyMetrics

	now func() time.Time
}

func New(
	enabled bool,
	accounts accountstore.Store,
	groupFinder GroupFinder,
	queues QueueRemover,
	notifier Notifier,
	lobbyMetrics metrics.LobbyMetrics,
) *Manager {
	return &Manager{
		enabled:  enabled,
		accounts: accounts,
		groups:   groupFinder,
		queues:   queues,
		notifier: notifier,
		metrics:  lobbyMetrics,
		now:      time.Now,
	}
}

// SetQueuePenalty penalizes the account for leaving the game on server. Only PvP games count, and only
// while fewer than half of the roster was replaced with bots.
func (m *Manager) SetQueuePenalty(scope *envelope.Scope, accountID int64, server GameServer) error {
	if !m.enabled || server == nil {
		return nil
	}
	gameInfo := server.GameInfo()
	if gameInfo.GameServerProcessCode == "" || gameInfo.GameConfig.GameType != models.GameTypePvP {
		return nil
	}
	roster := server.TeamInfo().TeamPlayerInfo
	replaced := 0
	for _, p := range roster {
		if p.ReplacedWithBots {
			replaced++
		}
	}
	if replaced*2 >= len(roster) {
		return nil
	}

	now := m.now()
	if server.Status() != models.GameStatusStopped {
		return m.addQueuePenalty(scope, accountID, models.GameTypePvP, constants.QueuePenaltyUnfinishedGame)
	}
	if stopTime := server.StopTime(); stopTime.After(now) {
		return m.addQueuePenalty(scope, accountID, models.GameTypePvP, stopTime.Sub(now)+constants.QueuePenaltyBuffer)
	}
	return nil
}

func (m *Manager) addQueuePenalty(scope *envelope.Scope, accountID int64, gameType models.GameType, duration time.Duration) error {
	account, err := m.getAccount(scope, accountID)
	if err != nil {
		return err
	}
	if account.ActiveQueuePenalties == nil {
		account.ActiveQueuePenalties = make(map[models.GameType]models.QueuePenalties)
	}
	penalties := account.ActiveQueuePenalties[gameType]
	timeout := m.now().Add(duration)
	penalties.QueueDodgeCount++
	if penalties.QueueDodgeBlockTimeout.Before(timeout) {
		penalties.QueueDodgeBlockTimeout = timeout
		scope.Log.Infof("%s queue penalty for %s: %s", gameType, account.Handle, duration.Round(time.Second))
	}
	account.ActiveQueuePenalties[gameType] = penalties

	if err := m.accounts.UpdateAccount(scope.Ctx, account); err != nil {
		return fmt.Errorf("unable to store queue penalty of %d: %w", accountID, err)
	}
	m.metrics.AddQueuePenalty(gameType.String())

	group := m.groups.GetPlayerGroup(accountID)
	m.queues.RemoveGroupFromQueue(scope, group.GroupID)
	return nil
}

func (m *Manager) getAccount(scope *envelope.Scope, accountID int64) (models.Account, error) {
	account, err := m.accounts.GetAccount(scope.Ctx, accountID)
	if errors.Is(err, models.ErrAccountNotFound) {
		return models.Account{AccountID: accountID}, nil
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("unable to load account %d: %w", accountID, err)
	}
	return account, nil
}

// CheckQueuePenalties fails with a *PenaltyError while the account is blocked from the game type. A few
// seconds before the end of a penalty the block is lifted. A blocked player's group leaves the queue
// and its other members are told why.
func (m *Manager) CheckQueuePenalties(scope *envelope.Scope, accountID int64, gameType models.GameType) error {
	account, err := m.getAccount(scope, accountID)
	if err != nil {
		return err
	}
	penalties, ok := account.ActiveQueuePenalties[gameType]
	now := m.now()
	if !ok || !penalties.QueueDodgeBlockTimeout.After(now.Add(constants.QueuePenaltyCheckGrace)) {
		return nil
	}

	remaining := penalties.QueueDodgeBlockTimeout.Sub(now)
	duration := models.LocalizationArg{TimeSpan: remaining}
	scope.Log.Infof("%s cannot join %s queue until %s", account.Handle, gameType, penalties.QueueDodgeBlockTimeout)

	group := m.groups.GetPlayerGroup(accountID)
	groupmateMessage := models.NewSystemMessage(models.NewLocalizationPayload(
		constants.TermQueueDodgerPenaltyAppliedToGroupmate,
		constants.ContextMatchmaking,
		models.LocalizationArg{Handle: account.Handle},
		duration,
	))
	for _, member := range group.Members {
		if member != accountID {
			m.notifier.Send(member, groupmateMessage)
		}
	}
	m.queues.RemoveGroupFromQueue(scope, group.GroupID)

	return &PenaltyError{
		GameType:  gameType,
		Until:     penalties.QueueDodgeBlockTimeout,
		Remaining: remaining,
		Payload:   models.NewLocalizationPayload(constants.TermQueueDodgerPenaltyAppliedToSelf, constants.ContextMatchmaking, duration),
	}
}
