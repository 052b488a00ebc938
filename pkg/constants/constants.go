// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package constants

import "time"

const (
	PoolLockTimeLimit = 10 * time.Second

	// ProcessCodePrefix starts every generated bridge server process code.
	ProcessCodePrefix = "Artemis"
)

const (
	// QueuePenaltyUnfinishedGame is applied when a player leaves a game that never stopped.
	QueuePenaltyUnfinishedGame = 200 * time.Second
	// QueuePenaltyBuffer is added to the remaining stop grace period.
	QueuePenaltyBuffer = 30 * time.Second
	// QueuePenaltyCheckGrace is ignored from the end of a penalty when checking it.
	QueuePenaltyCheckGrace = 5 * time.Second
)

const (
	FindMatchesFunction = "findMatches"
	CommitMatchFunction = "commitMatch"

	// not matched reason constants.
	ReasonNotEnoughPlayers   = "not_enough_players"
	ReasonNoFullMatch        = "no_full_match"
	ReasonAllMatchesFiltered = "all_matches_filtered"
	ReasonNoServerAvailable  = "no_server_available"
	ReasonLaunchFailed       = "launch_failed"
	ReasonInternalError      = "internal_error"
)

const (
	ContextMatchmaking = "Matchmaking"
	ContextGlobal      = "Global"

	TermQueueDodgerPenaltyAppliedToSelf      = "QueueDodgerPenaltyAppliedToSelf"
	TermQueueDodgerPenaltyAppliedToGroupmate = "QueueDodgerPenaltyAppliedToGroupmate"
	TermCharacterUnavailable                 = "SelectedCharacterUnavailable"
	TermDuplicateFreelancer                  = "DuplicateFreelancer"
	TermTooLateToChange                      = "TooLateToChange"
	TermAlreadyLoggedIn                      = "AlreadyLoggedIn"
)
