// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"github.com/AccelByte/extend-lobby-server/pkg/config"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// Queue holds the groups waiting for one game sub type, oldest first. It is guarded by the manager lock.
type Queue struct {
	Key        QueueKey
	SubType    models.GameSubType
	Config     config.MatchmakingConfig
	Matchmaker Matchmaker

	groups []Group
}

func (q *Queue) add(g Group) {
	q.groups = append(q.groups, g)
}

// addInOrder puts a re-queued group back where its queue time places it.
func (q *Queue) addInOrder(g Group) {
	q.groups = append(q.groups, g)
	sortByQueueTime(q.groups)
}

func (q *Queue) remove(groupID int64) (Group, bool) {
	for i, g := range q.groups {
		if g.GroupID == groupID {
			q.groups = append(q.groups[:i:i], q.groups[i+1:]...)
			return g, true
		}
	}
	return Group{}, false
}

func (q *Queue) contains(groupID int64) bool {
	for _, g := range q.groups {
		if g.GroupID == groupID {
			return true
		}
	}
	return false
}

func (q *Queue) snapshot() []Group {
	groups := make([]Group, len(q.groups))
	for i, g := range q.groups {
		g.Members = append([]int64(nil), g.Members...)
		groups[i] = g
	}
	return groups
}

// QueueSnapshot is a copy of one queue for status pages.
type QueueSnapshot struct {
	Key     QueueKey `json:"key"`
	Groups  []Group  `json:"groups"`
	Players int      `json:"players"`
}
