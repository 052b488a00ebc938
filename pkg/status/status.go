// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package status assembles point in time copies of the whole lobby for monitoring.
package status

import (
	"errors"
	"slices"
	"time"

	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-lobby-server/pkg/bridge"
	"github.com/AccelByte/extend-lobby-server/pkg/groups"
	"github.com/AccelByte/extend-lobby-server/pkg/matchmaker"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/session"
)

// QueueSource is satisfied by *matchmaker.Manager.
type QueueSource interface {
	Queues() []matchmaker.QueueSnapshot
	LastScans() []matchmaker.ScanInfo
}

// ServerSource is satisfied by *serverpool.Pool.
type ServerSource interface {
	GetServers() []*bridge.Server
}

type Player struct {
	AccountID     int64                `json:"accountId"`
	Handle        string               `json:"handle"`
	CharacterType models.CharacterType `json:"characterType"`
	GroupID       int64                `json:"groupId"`
	Queued        bool                 `json:"queued"`
	ProcessCode   string               `json:"processCode,omitempty"`
}

type Game struct {
	ProcessCode string            `json:"processCode"`
	GameType    models.GameType   `json:"gameType"`
	SubType     string            `json:"subType"`
	Map         string            `json:"map"`
	Status      models.GameStatus `json:"status"`
	TeamA       []int64           `json:"teamA"`
	TeamB       []int64           `json:"teamB"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Status is a snapshot of the lobby. Nothing in it is shared with live state.
type Status struct {
	Timestamp time.Time                  `json:"timestamp"`
	Players   []Player                   `json:"players"`
	Groups    []groups.Group             `json:"groups"`
	Queues    []matchmaker.QueueSnapshot `json:"queues"`
	Scans     []matchmaker.ScanInfo      `json:"scans"`
	Servers   []bridge.Snapshot          `json:"servers"`
	Games     []Game                     `json:"games"`
}

// Build copies the state of every lobby component. Servers that cannot be copied are left out and
// reported in the returned error; the rest of the status is still valid.
func Build(sessions *session.Registry, groupManager *groups.Manager, queues QueueSource, servers ServerSource, now time.Time) (Status, error) {
	status := Status{
		Timestamp: now,
		Groups:    groupManager.Groups(),
		Queues:    queues.Queues(),
		Scans:     queues.LastScans(),
	}

	queued := map[int64]bool{}
	for _, q := range status.Queues {
		for _, g := range q.Groups {
			queued[g.GroupID] = true
		}
	}
	groupOf := map[int64]int64{}
	for _, g := range status.Groups {
		for _, member := range g.Members {
			groupOf[member] = g.GroupID
		}
	}

	accountIDs := sessions.OnlineAccounts()
	slices.Sort(accountIDs)
	for _, accountID := range accountIDs {
		playerInfo, ok := sessions.GetPlayerInfo(accountID)
		if !ok {
			continue
		}
		processCode, _ := sessions.GetCurrentServer(accountID)
		status.Players = append(status.Players, Player{
			AccountID:     accountID,
			Handle:        playerInfo.Handle,
			CharacterType: playerInfo.CharacterType,
			GroupID:       groupOf[accountID],
			Queued:        queued[groupOf[accountID]],
			ProcessCode:   processCode,
		})
	}

	var errs []error
	for _, server := range servers.GetServers() {
		snapshot, err := server.Snapshot()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		status.Servers = append(status.Servers, snapshot)
	}
	status.Games = pie.Map(pie.Filter(status.Servers, hostsGame), gameOf)

	return status, errors.Join(errs...)
}

func hostsGame(s bridge.Snapshot) bool {
	return s.GameInfo.GameServerProcessCode != "" && s.Status != models.GameStatusStopped
}

func gameOf(s bridge.Snapshot) Game {
	game := Game{
		ProcessCode: s.ProcessCode,
		GameType:    s.GameInfo.GameConfig.GameType,
		SubType:     s.GameInfo.GameConfig.SubType,
		Map:         s.GameInfo.GameConfig.Map,
		Status:      s.Status,
		CreatedAt:   s.GameInfo.CreateTimestamp,
	}
	for _, p := range s.TeamInfo.TeamPlayerInfo {
		switch p.TeamID {
		case models.TeamA:
			game.TeamA = append(game.TeamA, p.AccountID)
		case models.TeamB:
			game.TeamB = append(game.TeamB, p.AccountID)
		}
	}
	return game
}

// QueuedGroups counts groups across all queues. A group queued in several sub types counts once.
func (s Status) QueuedGroups() int {
	seen := map[int64]bool{}
	for _, q := range s.Queues {
		for _, g := range q.Groups {
			seen[g.GroupID] = true
		}
	}
	return len(seen)
}

// ServersByStatus counts servers per game status, private servers under "Private".
func (s Status) ServersByStatus() map[string]int {
	counts := map[string]int{}
	for _, server := range s.Servers {
		if server.Private {
			counts["Private"]++
			continue
		}
		counts[server.Status.String()]++
	}
	return counts
}
