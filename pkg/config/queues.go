// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-openapi/swag"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

var (
	ErrUnknownGameType   = errors.New("unknown game type")
	ErrNoSubTypes        = errors.New("queue needs at least one sub type")
	ErrInvalidTeamSize   = errors.New("team sizes must be positive")
	ErrNoMaps            = errors.New("sub type needs at least one map")
	ErrDuplicateSubType  = errors.New("sub type names must be unique within a queue")
	ErrDuplicateGameType = errors.New("game type configured twice")
)

// QueueConfig describes the matchmaking queues of one game type.
type QueueConfig struct {
	GameType string          `json:"gameType"`
	EloKey   string          `json:"eloKey"`
	SubTypes []SubTypeConfig `json:"subTypes"`
}

// SubTypeConfig is one sub type with optional overrides of the global matchmaking limits.
type SubTypeConfig struct {
	Name                                string   `json:"name"`
	TeamAPlayers                        int      `json:"teamAPlayers"`
	TeamBPlayers                        int      `json:"teamBPlayers"`
	Maps                                []string `json:"maps"`
	MaxTeamEloDifferenceStart           *int     `json:"maxTeamEloDifferenceStart,omitempty"`
	MaxTeamEloDifference                *int     `json:"maxTeamEloDifference,omitempty"`
	MaxTeamEloDifferenceWaitTimeSeconds *int64   `json:"maxTeamEloDifferenceWaitTimeSeconds,omitempty"`
}

// GameSubType returns the model of this sub type.
func (s SubTypeConfig) GameSubType() models.GameSubType {
	return models.GameSubType{
		Name:         s.Name,
		TeamAPlayers: s.TeamAPlayers,
		TeamBPlayers: s.TeamBPlayers,
		Maps:         append([]string(nil), s.Maps...),
	}
}

// Apply returns base with the overrides of this sub type.
func (s SubTypeConfig) Apply(base MatchmakingConfig) MatchmakingConfig {
	if s.MaxTeamEloDifferenceStart != nil {
		base.MaxTeamEloDifferenceStart = swag.IntValue(s.MaxTeamEloDifferenceStart)
	}
	if s.MaxTeamEloDifference != nil {
		base.MaxTeamEloDifference = swag.IntValue(s.MaxTeamEloDifference)
	}
	if s.MaxTeamEloDifferenceWaitTimeSeconds != nil {
		base.MaxTeamEloDifferenceWaitTime = time.Duration(swag.Int64Value(s.MaxTeamEloDifferenceWaitTimeSeconds)) * time.Second
	}
	return base
}

// ParsedGameType returns the game type of the queue.
func (q QueueConfig) ParsedGameType() (models.GameType, error) {
	gameType, ok := models.ParseGameType(q.GameType)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGameType, q.GameType)
	}
	return gameType, nil
}

func (q QueueConfig) Validate() error {
	if _, err := q.ParsedGameType(); err != nil {
		return err
	}
	if len(q.SubTypes) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSubTypes, q.GameType)
	}
	names := make(map[string]struct{}, len(q.SubTypes))
	for _, subType := range q.SubTypes {
		if subType.TeamAPlayers <= 0 || subType.TeamBPlayers <= 0 {
			return fmt.Errorf("%w: %s/%s", ErrInvalidTeamSize, q.GameType, subType.Name)
		}
		if len(subType.Maps) == 0 {
			return fmt.Errorf("%w: %s/%s", ErrNoMaps, q.GameType, subType.Name)
		}
		if _, ok := names[subType.Name]; ok {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateSubType, q.GameType, subType.Name)
		}
		names[subType.Name] = struct{}{}
	}
	return nil
}

// QueuesFromJSON decodes and validates a queue list. An empty input yields DefaultQueues.
func QueuesFromJSON(data string) ([]QueueConfig, error) {
	if data == "" {
		return DefaultQueues(), nil
	}
	var queues []QueueConfig
	if err := json.Unmarshal([]byte(data), &queues); err != nil {
		return nil, fmt.Errorf("unable to decode queues config: %w", err)
	}
	seen := make(map[string]struct{}, len(queues))
	for _, q := range queues {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[q.GameType]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateGameType, q.GameType)
		}
		seen[q.GameType] = struct{}{}
	}
	for i := range queues {
		if queues[i].EloKey == "" {
			queues[i].EloKey = queues[i].GameType
		}
	}
	return queues, nil
}

// DefaultQueues is a single PvP 4v4 queue.
func DefaultQueues() []QueueConfig {
	return []QueueConfig{
		{
			GameType: models.GameTypePvP.String(),
			EloKey:   "PvP",
			SubTypes: []SubTypeConfig{
				{
					Name:         "4v4",
					TeamAPlayers: 4,
					TeamBPlayers: 4,
					Maps:         []string{"CargoShip_Deathmatch", "Casino01_Deathmatch", "EvosLab_Deathmatch", "Oblivion_Deathmatch", "Reactor_Deathmatch", "RobotFactory_Deathmatch", "Skyway_Deathmatch"},
				},
			},
		},
	}
}
