// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"time"

	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

/*
Matchmaker is the matching algorithm of one queue. Every scan the manager hands it the queued groups in
queue order and asks for every distinct full match. Each candidate is then checked with FilterMatch,
the hard constraint, and the survivors are ordered by RankMatch. The highest ranked match is committed.

FindMatches returns an error only when its own bookkeeping is broken. The manager logs it and skips the
queue for that scan; other queues are not affected.
*/
type Matchmaker interface {
	// FindMatches enumerates every distinct way to fill both teams from the queued groups.
	FindMatches(scope *envelope.Scope, groups []Group) ([]Match, error)

	// FilterMatch reports whether the match is fair enough to be played at now.
	FilterMatch(scope *envelope.Scope, match Match, now time.Time) bool

	// RankMatch scores an allowed match. Higher is better.
	RankMatch(scope *envelope.Scope, match Match, now time.Time) float64
}

// Launcher turns a committed match into a game on a bridge server.
type Launcher interface {
	// IsAnyServerAvailable reports whether a game could be launched right now.
	IsAnyServerAvailable() bool

	// LaunchMatch reserves a server and starts the game. The groups of a failed launch are re-queued.
	LaunchMatch(scope *envelope.Scope, key QueueKey, subType models.GameSubType, mapName string, match Match) error
}

// Notifier delivers queue updates to players. session.Registry satisfies it.
type Notifier interface {
	Send(accountID int64, notification models.Notification) bool
}
