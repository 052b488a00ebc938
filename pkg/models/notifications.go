// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

// Notification is a message pushed to a game client. Delivery is best effort.
type Notification interface {
	NotificationType() string
}

type GameAssignmentNotification struct {
	GameInfo     *GameInfo   `json:"gameInfo"`
	GameResult   GameResult  `json:"gameResult"`
	PlayerInfo   *PlayerInfo `json:"playerInfo"`
	Observer     bool        `json:"observer"`
	Reconnection bool        `json:"reconnection"`
}

func (GameAssignmentNotification) NotificationType() string { return "GameAssignmentNotification" }

type GameInfoNotification struct {
	GameInfo   GameInfo   `json:"gameInfo"`
	TeamInfo   TeamInfo   `json:"teamInfo"`
	PlayerInfo PlayerInfo `json:"playerInfo"`
}

func (GameInfoNotification) NotificationType() string { return "GameInfoNotification" }

type CurrencyReward struct {
	CurrencyType int32 `json:"currencyType"`
	BaseGained   int32 `json:"baseGained"`
}

type MatchResultsNotification struct {
	BadgeAndParticipantsInfo []BadgeAndParticipantInfo `json:"badgeAndParticipantsInfo"`
	BaseXpGained             int32                     `json:"baseXpGained"`
	CurrencyRewards          []CurrencyReward          `json:"currencyRewards"`
}

func (MatchResultsNotification) NotificationType() string { return "MatchResultsNotification" }

type ForcedCharacterChangeFromServerNotification struct {
	CharacterType CharacterType `json:"characterType"`
}

func (ForcedCharacterChangeFromServerNotification) NotificationType() string {
	return "ForcedCharacterChangeFromServerNotification"
}

type ForceMatchmakingQueueAction int32

const (
	ForceMatchmakingQueueJoin ForceMatchmakingQueueAction = iota
	ForceMatchmakingQueueLeave
)

type ForceMatchmakingQueueNotification struct {
	Action   ForceMatchmakingQueueAction `json:"action"`
	GameType GameType                    `json:"gameType"`
}

func (ForceMatchmakingQueueNotification) NotificationType() string {
	return "ForceMatchmakingQueueNotification"
}

// ChatNotification carries system messages to a single client.
type ChatNotification struct {
	ConsoleMessageType string               `json:"consoleMessageType"`
	Text               string               `json:"text,omitempty"`
	LocalizedText      *LocalizationPayload `json:"localizedText,omitempty"`
}

func (ChatNotification) NotificationType() string { return "ChatNotification" }

// NewSystemMessage wraps a localized text as a system chat line.
func NewSystemMessage(payload LocalizationPayload) ChatNotification {
	return ChatNotification{ConsoleMessageType: "SystemMessage", LocalizedText: &payload}
}

type MatchmakingQueueStatusNotification struct {
	GameType      GameType `json:"gameType"`
	SubType       string   `json:"subType"`
	QueuedPlayers int      `json:"queuedPlayers"`
	QueuedGroups  int      `json:"queuedGroups"`
	InQueue       bool     `json:"inQueue"`
}

func (MatchmakingQueueStatusNotification) NotificationType() string {
	return "MatchmakingQueueStatusNotification"
}
