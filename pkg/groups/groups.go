// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package groups

import (
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// Group is a party of players that queue together. Every online player belongs to exactly one group,
// a solo group when they did not team up.
type Group struct {
	GroupID int64   `json:"groupId"`
	Leader  int64   `json:"leader"`
	Members []int64 `json:"members"`
}

func (g Group) IsSolo() bool {
	return len(g.Members) == 1
}

func (g Group) Size() int {
	return len(g.Members)
}

func (g Group) HasMember(accountID int64) bool {
	return slices.Contains(g.Members, accountID)
}

func (g Group) copy() Group {
	g.Members = slices.Clone(g.Members)
	return g
}

// Manager owns all groups. Returned groups are copies.
type Manager struct {
	mu       sync.RWMutex
	counter  int64
	maxSize  int
	groups   map[int64]*Group
	byPlayer map[int64]int64
}

func NewManager(maxSize int) *Manager {
	return &Manager{
		maxSize:  maxSize,
		groups:   make(map[int64]*Group),
		byPlayer: make(map[int64]int64),
	}
}

// CreateGroup puts the leader into a new group, leaving any group it was part of.
func (m *Manager) CreateGroup(leader int64) Group {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(leader)
	return m.createLocked(leader).copy()
}

func (m *Manager) createLocked(leader int64) *Group {
	m.counter++
	group := &Group{GroupID: m.counter, Leader: leader, Members: []int64{leader}}
	m.groups[group.GroupID] = group
	m.byPlayer[leader] = group.GroupID
	return group
}

// GetPlayerGroup returns the group of the player, creating a solo group when it has none.
func (m *Manager) GetPlayerGroup(accountID int64) Group {
	m.mu.RLock()
	if groupID, ok := m.byPlayer[accountID]; ok {
		group := m.groups[groupID].copy()
		m.mu.RUnlock()
		return group
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if groupID, ok := m.byPlayer[accountID]; ok {
		return m.groups[groupID].copy()
	}
	return m.createLocked(accountID).copy()
}

func (m *Manager) GetGroup(groupID int64) (Group, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	group, ok := m.groups[groupID]
	if !ok {
		return Group{}, false
	}
	return group.copy(), true
}

// JoinGroup moves the player into an existing group.
func (m *Manager) JoinGroup(groupID int64, accountID int64) (Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	group, ok := m.groups[groupID]
	if !ok {
		return Group{}, models.ErrGroupNotFound
	}
	if group.HasMember(accountID) {
		return group.copy(), nil
	}
	if len(group.Members) >= m.maxSize {
		return Group{}, models.ErrGroupFull
	}

	m.removeLocked(accountID)
	group.Members = append(group.Members, accountID)
	m.byPlayer[accountID] = groupID

	logrus.WithFields(logrus.Fields{
		"groupID":   groupID,
		"accountID": accountID,
		"members":   group.Members,
	}).Debug("player joined group")

	return group.copy(), nil
}

// LeaveGroup moves the player into a new solo group. A solo player keeps its group.
func (m *Manager) LeaveGroup(accountID int64) Group {
	m.mu.Lock()
	defer m.mu.Unlock()

	if groupID, ok := m.byPlayer[accountID]; ok && m.groups[groupID].IsSolo() {
		return m.groups[groupID].copy()
	}
	m.removeLocked(accountID)
	return m.createLocked(accountID).copy()
}

// Remove forgets the player. Its group passes leadership on or is disbanded when empty.
func (m *Manager) Remove(accountID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(accountID)
}

func (m *Manager) removeLocked(accountID int64) {
	groupID, ok := m.byPlayer[accountID]
	if !ok {
		return
	}
	delete(m.byPlayer, accountID)

	group := m.groups[groupID]
	group.Members = slices.DeleteFunc(group.Members, func(id int64) bool { return id == accountID })
	if len(group.Members) == 0 {
		delete(m.groups, groupID)
		return
	}
	if group.Leader == accountID {
		group.Leader = group.Members[0]
	}
}

// Groups returns a snapshot of all groups ordered by id.
func (m *Manager) Groups() []Group {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Group, 0, len(m.groups))
	for _, group := range m.groups {
		result = append(result, group.copy())
	}
	slices.SortFunc(result, func(a, b Group) int { return int(a.GroupID - b.GroupID) })
	return result
}
