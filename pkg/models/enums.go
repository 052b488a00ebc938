// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import "fmt"

// GameType is the queue family a game belongs to.
type GameType int32

const (
	GameTypeCustom GameType = iota
	GameTypePractice
	GameTypeTutorial
	GameTypeCoop
	GameTypePvP
	GameTypeDuel
	GameTypeQuickPlay
	GameTypeRanked
	GameTypeNewPlayerSolo
	GameTypePvE
)

var gameTypeNames = [...]string{"Custom", "Practice", "Tutorial", "Coop", "PvP", "Duel", "QuickPlay", "Ranked", "NewPlayerSolo", "PvE"}

func (t GameType) String() string {
	if t < 0 || int(t) >= len(gameTypeNames) {
		return fmt.Sprintf("GameType(%d)", int32(t))
	}
	return gameTypeNames[t]
}

// ParseGameType maps a name back to its GameType.
func ParseGameType(name string) (GameType, bool) {
	for i, n := range gameTypeNames {
		if n == name {
			return GameType(i), true
		}
	}
	return 0, false
}

// GameStatus is the lifecycle state of a game hosted by a bridge server.
// Values are ordered: a game is running while Launched <= status < Stopped.
type GameStatus int32

const (
	GameStatusNone GameStatus = iota
	GameStatusAssembling
	GameStatusFreelancerSelecting
	GameStatusLoadoutSelecting
	GameStatusLaunching
	GameStatusLaunched
	GameStatusConnecting
	GameStatusConnected
	GameStatusAuthenticated
	GameStatusLoading
	GameStatusLoaded
	GameStatusStarted
	GameStatusStopped
)

var gameStatusNames = [...]string{
	"None", "Assembling", "FreelancerSelecting", "LoadoutSelecting", "Launching", "Launched",
	"Connecting", "Connected", "Authenticated", "Loading", "Loaded", "Started", "Stopped",
}

func (s GameStatus) String() string {
	if s < 0 || int(s) >= len(gameStatusNames) {
		return fmt.Sprintf("GameStatus(%d)", int32(s))
	}
	return gameStatusNames[s]
}

// IsActive reports whether a game in this status is running on its server.
func (s GameStatus) IsActive() bool {
	return s >= GameStatusLaunched && s < GameStatusStopped
}

// GameResult is the outcome reported in a game summary.
type GameResult int32

const (
	GameResultNoResult GameResult = iota
	GameResultTieGame
	GameResultTeamAWon
	GameResultTeamBWon
)

var gameResultNames = [...]string{"NoResult", "TieGame", "TeamAWon", "TeamBWon"}

func (r GameResult) String() string {
	if r < 0 || int(r) >= len(gameResultNames) {
		return fmt.Sprintf("GameResult(%d)", int32(r))
	}
	return gameResultNames[r]
}

// HasWinner is true when one of the teams won.
func (r GameResult) HasWinner() bool {
	return r == GameResultTeamAWon || r == GameResultTeamBWon
}

type Team int32

const (
	TeamA Team = iota
	TeamB
	TeamSpectator
	TeamInvalid Team = -1
)

func (t Team) String() string {
	switch t {
	case TeamA:
		return "TeamA"
	case TeamB:
		return "TeamB"
	case TeamSpectator:
		return "Spectator"
	default:
		return "Invalid"
	}
}

type ReadyState int32

const (
	ReadyStateUnknown ReadyState = iota
	ReadyStateAccepted
	ReadyStateDeclined
	ReadyStateReady
	ReadyStateNotReady
)

var readyStateNames = [...]string{"Unknown", "Accepted", "Declined", "Ready", "NotReady"}

func (r ReadyState) String() string {
	if r < 0 || int(r) >= len(readyStateNames) {
		return fmt.Sprintf("ReadyState(%d)", int32(r))
	}
	return readyStateNames[r]
}

// TopParticipantSlot marks a standout player in the match results.
type TopParticipantSlot int32

const (
	TopParticipantDeadliest TopParticipantSlot = iota
	TopParticipantSupportiest
	TopParticipantTankiest
	TopParticipantMostDecorated
)

var topParticipantNames = [...]string{"Deadliest", "Supportiest", "Tankiest", "MostDecorated"}

func (s TopParticipantSlot) String() string {
	if s < 0 || int(s) >= len(topParticipantNames) {
		return fmt.Sprintf("TopParticipantSlot(%d)", int32(s))
	}
	return topParticipantNames[s]
}

// ClientProxyStatus is reported back to a client after a session assignment.
type ClientProxyStatus int32

const (
	ClientProxyStatusNone ClientProxyStatus = iota
	ClientProxyStatusAssigned
)
