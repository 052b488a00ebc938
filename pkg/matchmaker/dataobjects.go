// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package matchmaker provides the matchmaking queues, the search over queued groups and the loop
// that turns the best match into a game.
package matchmaker

import (
	"fmt"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-lobby-server/pkg/mathutil"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// Group is a queued unit of one or more accounts that must land on the same team.
type Group struct {
	GroupID   int64     `json:"groupId"`   // Stable id of the party
	Members   []int64   `json:"members"`   // Account ids of the party members
	QueueTime time.Time `json:"queueTime"` // When the group entered the queue, kept when it is re-queued
	Elo       float64   `json:"elo"`       // Mean elo of the members, filled when a match is built
}

// Players is the number of team slots the group takes.
func (g Group) Players() int {
	return len(g.Members)
}

// WaitTime is how long the group has been queued at now.
func (g Group) WaitTime(now time.Time) time.Duration {
	return now.Sub(g.QueueTime)
}

// MatchTeam is one side of a candidate match with the accounts of its members.
type MatchTeam struct {
	Groups   []Group                  // Groups in push order
	Accounts map[int64]models.Account // Accounts of every member, keyed by account id
	Elo      float64                  // Mean elo of the members
	MinElo   float64                  // Lowest member elo
	MaxElo   float64                  // Highest member elo
}

func newMatchTeam(groups []Group, accounts map[int64]models.Account, eloKey string) MatchTeam {
	team := MatchTeam{
		Groups:   make([]Group, 0, len(groups)),
		Accounts: make(map[int64]models.Account),
	}
	var elos []float64
	for _, g := range groups {
		groupElos := make([]float64, 0, len(g.Members))
		for _, accountID := range g.Members {
			account, ok := accounts[accountID]
			if !ok {
				account = models.Account{AccountID: accountID}
			}
			team.Accounts[accountID] = account
			elo, _ := account.GetElo(eloKey)
			groupElos = append(groupElos, elo)
		}
		g.Elo = mathutil.Mean(groupElos)
		team.Groups = append(team.Groups, g)
		elos = append(elos, groupElos...)
	}
	if len(elos) > 0 {
		team.Elo = mathutil.Mean(elos)
		team.MinElo = pie.Min(elos)
		team.MaxElo = pie.Max(elos)
	}
	return team
}

// AccountIDs lists the members of the team in group order.
func (t MatchTeam) AccountIDs() []int64 {
	var ids []int64
	for _, g := range t.Groups {
		ids = append(ids, g.Members...)
	}
	return ids
}

func (t MatchTeam) String() string {
	groupIDs := pie.Map(t.Groups, func(g Group) string { return fmt.Sprint(g.GroupID) })
	accountIDs := pie.Map(t.AccountIDs(), func(id int64) string { return fmt.Sprint(id) })
	return fmt.Sprintf("groups %s <%s> elo %.0f", strings.Join(groupIDs, ","), strings.Join(accountIDs, ","), t.Elo)
}

// Match is a candidate pairing of two full teams.
type Match struct {
	TeamA MatchTeam
	TeamB MatchTeam
}

// Groups lists the groups of both teams, team A first.
func (m Match) Groups() []Group {
	groups := make([]Group, 0, len(m.TeamA.Groups)+len(m.TeamB.Groups))
	groups = append(groups, m.TeamA.Groups...)
	return append(groups, m.TeamB.Groups...)
}

func (m Match) String() string {
	return fmt.Sprintf("%s vs %s", m.TeamA, m.TeamB)
}

// QueueKey names one queue: a game type and one of its sub types.
type QueueKey struct {
	GameType models.GameType
	SubType  string
}

func (k QueueKey) String() string {
	return k.GameType.String() + "/" + k.SubType
}
