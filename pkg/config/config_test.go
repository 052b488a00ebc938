// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"testing"
	"time"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6060, cfg.HTTPPort)
	assert.True(t, cfg.MatchAbandoningPenalty)
	assert.Equal(t, 5*time.Second, cfg.ResultsDelay)
	assert.Equal(t, 60*time.Second, cfg.ShutdownDelay)
	assert.Equal(t, 4, cfg.GroupMaxSize)
	assert.Equal(t, 10*time.Second, cfg.StatusInterval)
	assert.Equal(t, 20, cfg.Matchmaking.MaxTeamEloDifferenceStart)
	assert.Equal(t, 200, cfg.Matchmaking.MaxTeamEloDifference)
	assert.Equal(t, 5*time.Minute, cfg.Matchmaking.MaxTeamEloDifferenceWaitTime)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MATCH_ABANDONING_PENALTY", "false")
	t.Setenv("MAX_TEAM_ELO_DIFFERENCE", "350")
	t.Setenv("RECONNECT_GRACE_PERIOD", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.MatchAbandoningPenalty)
	assert.Equal(t, 350, cfg.Matchmaking.MaxTeamEloDifference)
	assert.Equal(t, 90*time.Second, cfg.ReconnectGracePeriod)
}

func TestQueuesFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr error
		check   func(t *testing.T, queues []QueueConfig)
	}{
		{
			name: "empty uses defaults",
			json: "",
			check: func(t *testing.T, queues []QueueConfig) {
				require.Len(t, queues, 1)
				assert.Equal(t, "PvP", queues[0].GameType)
				assert.Equal(t, 4, queues[0].SubTypes[0].TeamAPlayers)
			},
		},
		{
			name: "elo key defaults to game type",
			json: `[{"gameType":"Ranked","subTypes":[{"name":"3v3","teamAPlayers":3,"teamBPlayers":3,"maps":["Skyway_Deathmatch"]}]}]`,
			check: func(t *testing.T, queues []QueueConfig) {
				assert.Equal(t, "Ranked", queues[0].EloKey)
			},
		},
		{
			name:    "unknown game type",
			json:    `[{"gameType":"Chess","subTypes":[{"name":"1v1","teamAPlayers":1,"teamBPlayers":1,"maps":["a"]}]}]`,
			wantErr: ErrUnknownGameType,
		},
		{
			name:    "no maps",
			json:    `[{"gameType":"PvP","subTypes":[{"name":"4v4","teamAPlayers":4,"teamBPlayers":4}]}]`,
			wantErr: ErrNoMaps,
		},
		{
			name:    "zero team size",
			json:    `[{"gameType":"PvP","subTypes":[{"name":"4v0","teamAPlayers":4,"teamBPlayers":0,"maps":["a"]}]}]`,
			wantErr: ErrInvalidTeamSize,
		},
		{
			name:    "duplicate sub type",
			json:    `[{"gameType":"PvP","subTypes":[{"name":"4v4","teamAPlayers":4,"teamBPlayers":4,"maps":["a"]},{"name":"4v4","teamAPlayers":4,"teamBPlayers":4,"maps":["b"]}]}]`,
			wantErr: ErrDuplicateSubType,
		},
		{
			name:    "duplicate game type",
			json:    `[{"gameType":"PvP","subTypes":[{"name":"4v4","teamAPlayers":4,"teamBPlayers":4,"maps":["a"]}]},{"gameType":"PvP","subTypes":[{"name":"2v2","teamAPlayers":2,"teamBPlayers":2,"maps":["a"]}]}]`,
			wantErr: ErrDuplicateGameType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queues, err := QueuesFromJSON(tt.json)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, queues)
		})
	}
}

func TestSubTypeConfig_Apply(t *testing.T) {
	base := MatchmakingConfig{MaxTeamEloDifferenceStart: 20, MaxTeamEloDifference: 200, MaxTeamEloDifferenceWaitTime: 5 * time.Minute}

	unchanged := SubTypeConfig{}.Apply(base)
	assert.Equal(t, base, unchanged)

	overridden := SubTypeConfig{
		MaxTeamEloDifference:                swag.Int(400),
		MaxTeamEloDifferenceWaitTimeSeconds: swag.Int64(120),
	}.Apply(base)
	assert.Equal(t, 20, overridden.MaxTeamEloDifferenceStart)
	assert.Equal(t, 400, overridden.MaxTeamEloDifference)
	assert.Equal(t, 2*time.Minute, overridden.MaxTeamEloDifferenceWaitTime)
}

func TestSubTypeConfig_GameSubType(t *testing.T) {
	sub := SubTypeConfig{Name: "2v2", TeamAPlayers: 2, TeamBPlayers: 2, Maps: []string{"m"}}
	assert.Equal(t, models.GameSubType{Name: "2v2", TeamAPlayers: 2, TeamBPlayers: 2, Maps: []string{"m"}}, sub.GameSubType())
}
