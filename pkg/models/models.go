// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"time"
)

// SessionInfo is the lobby session of one account, or of a bridge server when it registers.
type SessionInfo struct {
	AccountID             int64  `json:"accountId"`
	SessionToken          int64  `json:"sessionToken"`
	ReconnectSessionToken int64  `json:"reconnectSessionToken"`
	IPAddress             string `json:"ipAddress"`
	Handle                string `json:"handle"`
	UserName              string `json:"userName"`
	BuildVersion          string `json:"buildVersion"`
	ProcessCode           string `json:"processCode"`
	ConnectionAddress     string `json:"connectionAddress"`
	IsBinary              bool   `json:"isBinary"`
}

// SessionRequest is what a client presents when it registers with the lobby.
type SessionRequest struct {
	AccountID             int64  `json:"accountId"`
	Handle                string `json:"handle"`
	BuildVersion          string `json:"buildVersion"`
	IPAddress             string `json:"ipAddress"`
	SessionToken          int64  `json:"sessionToken"`
	ReconnectSessionToken int64  `json:"reconnectSessionToken"`
}

// IsReconnection is true when the client presents a previous session.
func (r SessionRequest) IsReconnection() bool {
	return r.SessionToken != 0
}

// PlayerInfo is one roster entry of a game.
type PlayerInfo struct {
	AccountID        int64         `json:"accountId"`
	PlayerID         int32         `json:"playerId"`
	Handle           string        `json:"handle"`
	TeamID           Team          `json:"teamId"`
	CharacterType    CharacterType `json:"characterType"`
	ReadyState       ReadyState    `json:"readyState"`
	IsSpectator      bool          `json:"isSpectator"`
	IsNPCBot         bool          `json:"isNpcBot"`
	ReplacedWithBots bool          `json:"replacedWithBots"`
}

// IsHumanParticipant is true for players that should receive game notifications.
func (p PlayerInfo) IsHumanParticipant() bool {
	return !p.IsSpectator && !p.IsNPCBot && !p.ReplacedWithBots
}

// TeamInfo is the roster of a game.
type TeamInfo struct {
	TeamPlayerInfo []PlayerInfo `json:"teamPlayerInfo"`
}

// Team returns a copy of the roster entries of one team.
func (t TeamInfo) Team(team Team) []PlayerInfo {
	players := make([]PlayerInfo, 0, len(t.TeamPlayerInfo))
	for _, p := range t.TeamPlayerInfo {
		if p.TeamID == team {
			players = append(players, p)
		}
	}
	return players
}

func (t TeamInfo) TeamA() []PlayerInfo {
	return t.Team(TeamA)
}

func (t TeamInfo) TeamB() []PlayerInfo {
	return t.Team(TeamB)
}

// Find returns the index of the account in the roster or -1.
func (t TeamInfo) Find(accountID int64) int {
	for i := range t.TeamPlayerInfo {
		if t.TeamPlayerInfo[i].AccountID == accountID {
			return i
		}
	}
	return -1
}

// GameSubType is one flavour of a queue with its team sizes.
type GameSubType struct {
	Name         string   `json:"name"`
	TeamAPlayers int      `json:"teamAPlayers"`
	TeamBPlayers int      `json:"teamBPlayers"`
	Maps         []string `json:"maps"`
}

type GameConfig struct {
	GameType               GameType `json:"gameType"`
	SubType                string   `json:"subType"`
	Map                    string   `json:"map"`
	RoomName               string   `json:"roomName"`
	TeamAPlayers           int32    `json:"teamAPlayers"`
	TeamBPlayers           int32    `json:"teamBPlayers"`
	TeamABots              int32    `json:"teamABots"`
	TeamBBots              int32    `json:"teamBBots"`
	Spectators             int32    `json:"spectators"`
	ResolveTimeoutLimit    int32    `json:"resolveTimeoutLimit"`
	GameServerShutdownTime int32    `json:"gameServerShutdownTime"`
	IsActive               bool     `json:"isActive"`
}

type GameInfo struct {
	GameServerProcessCode string        `json:"gameServerProcessCode"`
	GameServerAddress     string        `json:"gameServerAddress"`
	GameStatus            GameStatus    `json:"gameStatus"`
	GameResult            GameResult    `json:"gameResult"`
	GameConfig            GameConfig    `json:"gameConfig"`
	AcceptedPlayers       int32         `json:"acceptedPlayers"`
	ActivePlayers         int32         `json:"activePlayers"`
	ActiveHumanPlayers    int32         `json:"activeHumanPlayers"`
	LoadoutSelectTimeout  time.Duration `json:"loadoutSelectTimeout"`
	CreateTimestamp       time.Time     `json:"createTimestamp"`
}

// EloValue is a rating together with how settled it is.
type EloValue struct {
	Elo        float64 `json:"elo"`
	Confidence int     `json:"confidence"`
}

// QueuePenalties holds the queue dodge state of one game type.
type QueuePenalties struct {
	QueueDodgeBlockTimeout time.Time `json:"queueDodgeBlockTimeout"`
	QueueDodgeCount        int       `json:"queueDodgeCount"`
}

// Account is the persisted part of a player the lobby reads and writes.
type Account struct {
	AccountID            int64                       `json:"accountId"`
	Handle               string                      `json:"handle"`
	LastCharacter        CharacterType               `json:"lastCharacter"`
	LastSelectedGameType GameType                    `json:"lastSelectedGameType"`
	EloValues            map[string]EloValue         `json:"eloValues,omitempty"`
	BlockedAccounts      []int64                     `json:"blockedAccounts,omitempty"`
	ActiveQueuePenalties map[GameType]QueuePenalties `json:"activeQueuePenalties,omitempty"`
}

// DefaultElo is used for accounts without a rating for the requested key.
const DefaultElo = 1500.0

// GetElo returns the rating and confidence for a key.
func (a Account) GetElo(key string) (float64, int) {
	if v, ok := a.EloValues[key]; ok {
		return v.Elo, v.Confidence
	}
	return DefaultElo, 0
}

// HasBlocked reports whether this account blocked the other one.
func (a Account) HasBlocked(accountID int64) bool {
	for _, id := range a.BlockedAccounts {
		if id == accountID {
			return true
		}
	}
	return false
}

// LocalizationArg is one typed argument of a localized message.
type LocalizationArg struct {
	Handle   string        `json:"handle,omitempty"`
	TimeSpan time.Duration `json:"timeSpan,omitempty"`
	Text     string        `json:"text,omitempty"`
}

// LocalizationPayload is a message the client renders from its string tables as Term@Context.
type LocalizationPayload struct {
	Term    string            `json:"term"`
	Context string            `json:"context"`
	Args    []LocalizationArg `json:"args,omitempty"`
}

func NewLocalizationPayload(term, context string, args ...LocalizationArg) LocalizationPayload {
	return LocalizationPayload{Term: term, Context: context, Args: args}
}

func (p LocalizationPayload) String() string {
	return p.Term + "@" + p.Context
}
