// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"time"
)

// ScanInfo stores what the last scan of one queue saw and did
type ScanInfo struct {
	Timestamp        time.Time `json:"timestamp"`
	Queue            string    `json:"queue"`
	ScanID           int64     `json:"scanID"`
	QueuedGroups     int       `json:"queuedGroups"`
	QueuedPlayers    int       `json:"queuedPlayers"`
	MatchesFound     int       `json:"matchesFound"`
	MatchesAllowed   int       `json:"matchesAllowed"`
	MatchesCommitted int       `json:"matchesCommitted"`

	// UnmatchedReason is why the scan stopped, empty when it stopped after a failed commit
	UnmatchedReason string `json:"unmatchedReason,omitempty"`
}
