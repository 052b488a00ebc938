// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"slices"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// FitsSubType reports whether a group of the given size can be placed on either team of the sub type.
func FitsSubType(subType models.GameSubType, players int) bool {
	return players > 0 && players <= max(subType.TeamAPlayers, subType.TeamBPlayers)
}

// MatchSize is the number of players a full match of the sub type takes.
func MatchSize(subType models.GameSubType) int {
	return subType.TeamAPlayers + subType.TeamBPlayers
}

func totalPlayers(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += g.Players()
	}
	return total
}

// sortByQueueTime orders groups by when they entered the queue, keeping the order of equal times.
func sortByQueueTime(groups []Group) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		return a.QueueTime.Compare(b.QueueTime)
	})
}
