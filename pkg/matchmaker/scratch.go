// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"fmt"
	"slices"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

type scratchTeam struct {
	capacity int
	size     int
	groups   []Group
}

func (t *scratchTeam) isFull() bool {
	return t.size == t.capacity
}

func (t *scratchTeam) push(g Group) bool {
	if t.capacity-t.size < g.Players() {
		return false
	}
	t.size += g.Players()
	t.groups = append(t.groups, g)
	return true
}

func (t *scratchTeam) pop() (Group, bool) {
	if len(t.groups) == 0 {
		return Group{}, false
	}
	g := t.groups[len(t.groups)-1]
	t.groups = t.groups[:len(t.groups)-1]
	t.size -= g.Players()
	return g, true
}

// hash folds the sorted member ids, so the order groups were pushed in does not matter.
func (t *scratchTeam) hash() int32 {
	var members []int64
	for _, g := range t.groups {
		members = append(members, g.Members...)
	}
	slices.Sort(members)

	h := int32(17)
	for _, id := range members {
		h = h*31 + (int32(id) ^ int32(id>>32))
	}
	return h
}

// MatchScratch is the pair of team accumulators of the match search. Push fills team A first, then
// team B. Pop undoes the most recent push.
type MatchScratch struct {
	teamA  scratchTeam
	teamB  scratchTeam
	used   map[int64]struct{}
	pushed []*scratchTeam
}

func NewMatchScratch(subType models.GameSubType) *MatchScratch {
	return &MatchScratch{
		teamA: scratchTeam{capacity: subType.TeamAPlayers},
		teamB: scratchTeam{capacity: subType.TeamBPlayers},
		used:  make(map[int64]struct{}),
	}
}

// Push places the group on the first team with room. It fails when the group is already placed or fits nowhere.
func (s *MatchScratch) Push(g Group) bool {
	if _, used := s.used[g.GroupID]; used {
		return false
	}
	var team *scratchTeam
	switch {
	case s.teamA.push(g):
		team = &s.teamA
	case s.teamB.push(g):
		team = &s.teamB
	default:
		return false
	}
	s.used[g.GroupID] = struct{}{}
	s.pushed = append(s.pushed, team)
	return true
}

// Pop removes the most recently pushed group.
func (s *MatchScratch) Pop() error {
	if len(s.pushed) == 0 {
		return models.ErrMatchScratchEmpty
	}
	team := s.pushed[len(s.pushed)-1]
	g, ok := team.pop()
	if !ok {
		return fmt.Errorf("%w: team accumulator out of sync", models.ErrMatchScratchEmpty)
	}
	s.pushed = s.pushed[:len(s.pushed)-1]
	delete(s.used, g.GroupID)
	return nil
}

// IsMatch reports whether both teams are exactly full.
func (s *MatchScratch) IsMatch() bool {
	return s.teamA.isFull() && s.teamB.isFull()
}

// Hash identifies the split of accounts into two teams regardless of which side is which.
func (s *MatchScratch) Hash() int64 {
	a, b := s.teamA.hash(), s.teamB.hash()
	return int64(min(a, b))<<32 | int64(uint32(max(a, b)))
}

// ToMatch copies the current teams into a match.
func (s *MatchScratch) ToMatch(accounts map[int64]models.Account, eloKey string) Match {
	return Match{
		TeamA: newMatchTeam(s.teamA.groups, accounts, eloKey),
		TeamB: newMatchTeam(s.teamB.groups, accounts, eloKey),
	}
}
