// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameStatus_IsActive(t *testing.T) {
	tests := []struct {
		status GameStatus
		want   bool
	}{
		{GameStatusNone, false},
		{GameStatusAssembling, false},
		{GameStatusLaunching, false},
		{GameStatusLaunched, true},
		{GameStatusStarted, true},
		{GameStatusStopped, false},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsActive())
		})
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, 510202, ErrorCode(ErrAlreadyLoggedIn))
	assert.Equal(t, 510501, ErrorCode(fmt.Errorf("queue ranked: %w", ErrMatchScratchEmpty)))
	assert.Equal(t, 20002, ErrorCode(errors.New("something else")))
	assert.Equal(t, 20002, ErrorCode(nil))
}

func TestAccount_GetElo(t *testing.T) {
	account := Account{EloValues: map[string]EloValue{"ranked": {Elo: 1720, Confidence: 3}}}

	elo, conf := account.GetElo("ranked")
	assert.Equal(t, 1720.0, elo)
	assert.Equal(t, 3, conf)

	elo, conf = account.GetElo("casual")
	assert.Equal(t, DefaultElo, elo)
	assert.Equal(t, 0, conf)
}

func TestTeamInfo_Team(t *testing.T) {
	info := TeamInfo{TeamPlayerInfo: []PlayerInfo{
		{AccountID: 1, TeamID: TeamA},
		{AccountID: 2, TeamID: TeamB},
		{AccountID: 3, TeamID: TeamA},
	}}

	assert.Len(t, info.TeamA(), 2)
	assert.Len(t, info.TeamB(), 1)
	assert.Equal(t, 1, info.Find(2))
	assert.Equal(t, -1, info.Find(9))
}

func TestPlayerGameSummary_Derived(t *testing.T) {
	p := PlayerGameSummary{
		TotalGameTurns:                10,
		NumDeaths:                     1,
		TotalPlayerDamage:             300,
		TotalPlayerDamageReceived:     400,
		TotalPlayerHealingFromAbility: 50,
		TotalPlayerAbsorb:             50,
		FreelancerStats:               []int32{3, 9, 4},
	}

	assert.Equal(t, 30.0, p.GetDamageDealtPerTurn())
	assert.Equal(t, 150.0, p.GetDamageDonePerLife())
	assert.Equal(t, 200.0, p.GetDamageTakenPerLife())
	assert.Equal(t, 100.0, p.GetHealingAndAbsorb())
	assert.Equal(t, 10.0, p.GetSupportPerTurn())
	assert.Equal(t, 9.0, p.GetBestFreelancerStat())
}
