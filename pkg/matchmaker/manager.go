// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-lobby-server/pkg/accountstore"
	"github.com/AccelByte/extend-lobby-server/pkg/config"
	"github.com/AccelByte/extend-lobby-server/pkg/constants"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/metrics"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/utils"
)

var errStaleMatch = errors.New("match is stale")

// Manager owns every matchmaking queue and the loop that drains them.
type Manager struct {
	launcher Launcher
	notifier Notifier
	metrics  metrics.LobbyMetrics
	interval time.Duration

	mu     sync.Mutex
	queues map[models.GameType][]*Queue
	order  []*Queue
	scans  map[QueueKey]ScanInfo
	scanID int64

	update chan struct{}

	now      func() time.Time
	randIntN func(n int) int
}

// NewManager builds one queue per configured sub type, each with a ranked matchmaker using the
// sub type's overrides of conf.
func NewManager(
	queues []config.QueueConfig,
	accounts accountstore.Store,
	launcher Launcher,
	notifier Notifier,
	lobbyMetrics metrics.LobbyMetrics,
	conf config.MatchmakingConfig,
) (*Manager, error) {
	m := &Manager{
		launcher: launcher,
		notifier: notifier,
		metrics:  lobbyMetrics,
		interval: conf.Interval,
		queues:   make(map[models.GameType][]*Queue),
		scans:    make(map[QueueKey]ScanInfo),
		update:   make(chan struct{}, 1),
		now:      time.Now,
		randIntN: rand.IntN,
	}
	for _, queueConfig := range queues {
		if err := queueConfig.Validate(); err != nil {
			return nil, err
		}
		gameType, _ := queueConfig.ParsedGameType()
		for _, subTypeConfig := range queueConfig.SubTypes {
			subType := subTypeConfig.GameSubType()
			queueConf := subTypeConfig.Apply(conf)
			q := &Queue{
				Key:     QueueKey{GameType: gameType, SubType: subType.Name},
				SubType: subType,
				Config:  queueConf,
				Matchmaker: NewRankedMatchmaker(accounts, subType, queueConfig.EloKey, func() config.MatchmakingConfig {
					return queueConf
				}),
			}
			m.queues[gameType] = append(m.queues[gameType], q)
			m.order = append(m.order, q)
		}
	}
	return m, nil
}

// AddGroup queues the group on every sub type of the game type it fits.
func (m *Manager) AddGroup(scope *envelope.Scope, gameType models.GameType, group Group) error {
	m.mu.Lock()
	queues, ok := m.queues[gameType]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", models.ErrUnknownQueue, gameType)
	}
	if m.isQueuedLocked(group.GroupID) {
		m.mu.Unlock()
		return fmt.Errorf("%w: group %d", models.ErrAlreadyQueued, group.GroupID)
	}
	fitting := pie.Filter(queues, func(q *Queue) bool { return FitsSubType(q.SubType, group.Players()) })
	if len(fitting) == 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d players for %s", models.ErrGroupTooLarge, group.Players(), gameType)
	}
	if group.QueueTime.IsZero() {
		group.QueueTime = m.now()
	}
	for _, q := range fitting {
		q.add(group)
	}
	statuses := pie.Map(fitting, m.statusLocked)
	m.mu.Unlock()

	scope.Log.Infof("Group %d %v joined %s queue", group.GroupID, group.Members, gameType)
	for _, accountID := range group.Members {
		for _, status := range statuses {
			m.notifier.Send(accountID, status)
		}
	}
	m.Update()
	return nil
}

func (m *Manager) statusLocked(q *Queue) models.MatchmakingQueueStatusNotification {
	return models.MatchmakingQueueStatusNotification{
		GameType:      q.Key.GameType,
		SubType:       q.Key.SubType,
		QueuedPlayers: totalPlayers(q.groups),
		QueuedGroups:  len(q.groups),
		InQueue:       true,
	}
}

// RemoveGroupFromQueue takes the group out of every queue. It reports whether the group was queued.
func (m *Manager) RemoveGroupFromQueue(scope *envelope.Scope, groupID int64) bool {
	m.mu.Lock()
	removed, found := m.removeLocked(groupID)
	m.mu.Unlock()

	if !found {
		return false
	}
	scope.Log.Infof("Group %d left the %s queue", groupID, removed.gameType)
	for _, accountID := range removed.group.Members {
		m.notifier.Send(accountID, models.MatchmakingQueueStatusNotification{GameType: removed.gameType})
	}
	return true
}

type removedGroup struct {
	gameType models.GameType
	group    Group
}

func (m *Manager) removeLocked(groupID int64) (removedGroup, bool) {
	var removed removedGroup
	found := false
	for _, q := range m.order {
		if g, ok := q.remove(groupID); ok {
			removed = removedGroup{gameType: q.Key.GameType, group: g}
			found = true
		}
	}
	return removed, found
}

// IsQueued reports whether the group waits in any queue.
func (m *Manager) IsQueued(groupID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isQueuedLocked(groupID)
}

func (m *Manager) isQueuedLocked(groupID int64) bool {
	return pie.Any(m.order, func(q *Queue) bool { return q.contains(groupID) })
}

// Queues copies every queue in configuration order.
func (m *Manager) Queues() []QueueSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pie.Map(m.order, func(q *Queue) QueueSnapshot {
		return QueueSnapshot{Key: q.Key, Groups: q.snapshot(), Players: totalPlayers(q.groups)}
	})
}

// LastScans returns the outcome of the latest scan of every queue that was scanned.
func (m *Manager) LastScans() []ScanInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	scans := make([]ScanInfo, 0, len(m.scans))
	for _, q := range m.order {
		if info, ok := m.scans[q.Key]; ok {
			scans = append(scans, info)
		}
	}
	return scans
}

// Update asks the loop for a scan without waiting for the next tick. It never blocks.
func (m *Manager) Update() {
	select {
	case m.update <- struct{}{}:
	default:
	}
}

// Run scans the queues every interval and on every Update until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-m.update:
		}
		m.Scan(ctx)
	}
}

// Scan runs one matchmaking pass over every queue.
func (m *Manager) Scan(ctx context.Context) {
	scope := envelope.NewRootScope(ctx, "matchmaking.scan", utils.GenerateUUID())
	defer scope.Finish()

	m.mu.Lock()
	m.scanID++
	scanID := m.scanID
	queues := append([]*Queue(nil), m.order...)
	m.mu.Unlock()

	for _, q := range queues {
		if ctx.Err() != nil {
			return
		}
		m.processQueue(scope, q, scanID)
	}
}

func (m *Manager) processQueue(rootScope *envelope.Scope, q *Queue, scanID int64) {
	scope := rootScope.NewChildScope("matchmaking.processQueue")
	defer scope.Finish()
	scope.SetAttributes(envelope.QueueTag, q.Key.String())

	name := q.Key.String()
	info := ScanInfo{Timestamp: m.now(), Queue: name, ScanID: scanID}
	defer func() {
		if r := recover(); r != nil {
			scope.Log.Errorf("Matchmaking %s panicked: %v", name, r)
			m.metrics.AddUnmatchedReason(name, constants.ReasonInternalError)
			info.UnmatchedReason = constants.ReasonInternalError
		}
		m.mu.Lock()
		m.scans[q.Key] = info
		m.mu.Unlock()
	}()

	for {
		m.mu.Lock()
		groups := q.snapshot()
		m.mu.Unlock()

		players := totalPlayers(groups)
		info.QueuedGroups, info.QueuedPlayers = len(groups), players
		m.metrics.QueuedGroups(name, len(groups), players)

		reason := m.tryCommit(scope, q, groups, &info)
		if reason == "" {
			continue
		}
		m.metrics.AddUnmatchedReason(name, reason)
		info.UnmatchedReason = reason
		return
	}
}

// tryCommit commits the best match of groups. It returns the reason the scan of the queue stops, or an
// empty string when a match was launched and the queue should be scanned again.
func (m *Manager) tryCommit(scope *envelope.Scope, q *Queue, groups []Group, info *ScanInfo) string {
	name := q.Key.String()
	if totalPlayers(groups) < MatchSize(q.SubType) {
		return constants.ReasonNotEnoughPlayers
	}
	if !m.launcher.IsAnyServerAvailable() {
		scope.Log.Debugf("No server available for %s", name)
		return constants.ReasonNoServerAvailable
	}

	start := time.Now()
	matches, err := q.Matchmaker.FindMatches(scope, groups)
	m.metrics.AddMatchmakingElapsedTimeMs(name, constants.FindMatchesFunction, time.Since(start))
	if err != nil {
		scope.Log.Errorf("Unable to find matches for %s: %v", name, err)
		return constants.ReasonInternalError
	}
	info.MatchesFound += len(matches)
	if len(matches) == 0 {
		return constants.ReasonNoFullMatch
	}

	now := m.now()
	allowed := pie.Filter(matches, func(match Match) bool { return q.Matchmaker.FilterMatch(scope, match, now) })
	info.MatchesAllowed += len(allowed)
	if len(allowed) == 0 {
		return constants.ReasonAllMatchesFiltered
	}

	best, bestScore := allowed[0], q.Matchmaker.RankMatch(scope, allowed[0], now)
	for _, match := range allowed[1:] {
		if score := q.Matchmaker.RankMatch(scope, match, now); score > bestScore {
			best, bestScore = match, score
		}
	}
	scope.Log.Infof("Best %s match out of %d/%d, score %.2f: %s", name, len(allowed), len(matches), bestScore, best)

	start = time.Now()
	err = m.commit(scope, q, best)
	m.metrics.AddMatchmakingElapsedTimeMs(name, constants.CommitMatchFunction, time.Since(start))
	switch {
	case errors.Is(err, errStaleMatch):
		scope.Log.Warnf("Dropped %s match: %v", name, err)
		return ""
	case err != nil:
		scope.Log.Errorf("Unable to launch %s match: %v", name, err)
		return constants.ReasonLaunchFailed
	}
	info.MatchesCommitted++
	return ""
}

// commit removes the groups of the match from every queue of the game type and launches it. Groups of a
// failed launch go back with their original queue times.
func (m *Manager) commit(scope *envelope.Scope, q *Queue, match Match) error {
	groups := match.Groups()

	m.mu.Lock()
	stale := pie.Filter(groups, func(g Group) bool { return !q.contains(g.GroupID) })
	if len(stale) > 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d groups left the queue during the scan", errStaleMatch, len(stale))
	}
	for _, g := range groups {
		m.removeLocked(g.GroupID)
	}
	m.mu.Unlock()

	mapName := m.SelectMap(q.SubType)
	if err := m.launcher.LaunchMatch(scope, q.Key, q.SubType, mapName, match); err != nil {
		m.requeue(scope, q.Key.GameType, groups)
		return fmt.Errorf("map %s: %w", mapName, err)
	}

	m.metrics.AddMatchCommitted(q.Key.String())
	scope.Log.Infof("Committed %s match on %s: %s", q.Key, mapName, match)
	return nil
}

func (m *Manager) requeue(scope *envelope.Scope, gameType models.GameType, groups []Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range groups {
		if m.isQueuedLocked(g.GroupID) {
			continue
		}
		g.Elo = 0
		for _, q := range m.queues[gameType] {
			if FitsSubType(q.SubType, g.Players()) {
				q.addInOrder(g)
			}
		}
		scope.Log.Infof("Group %d re-queued for %s", g.GroupID, gameType)
	}
}

// SelectMap picks one of the sub type's maps uniformly. It is empty when the sub type has no maps.
func (m *Manager) SelectMap(subType models.GameSubType) string {
	if len(subType.Maps) == 0 {
		return ""
	}
	return subType.Maps[m.randIntN(len(subType.Maps))]
}
