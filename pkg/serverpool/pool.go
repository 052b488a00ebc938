// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package serverpool keeps track of every game server registered over the bridge.
package serverpool

import (
	"sync"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-lobby-server/pkg/bridge"
	"github.com/AccelByte/extend-lobby-server/pkg/constants"
	"github.com/AccelByte/extend-lobby-server/pkg/metrics"
)

// Updater is told when the pool changed in a way that can unblock queued matches. Update must not block.
type Updater interface {
	Update()
}

// Pool is the registry of bridge servers. Every operation runs under one pool-wide lock.
type Pool struct {
	mu      sync.Mutex
	servers []*bridge.Server
	metrics metrics.LobbyMetrics

	updaterMu sync.RWMutex
	updater   Updater
}

func New(lobbyMetrics metrics.LobbyMetrics) *Pool {
	return &Pool{metrics: lobbyMetrics}
}

// SetUpdater wires the matchmaking manager, which is created after the pool.
func (p *Pool) SetUpdater(updater Updater) {
	p.updaterMu.Lock()
	defer p.updaterMu.Unlock()
	p.updater = updater
}

func (p *Pool) lock() func() {
	p.mu.Lock()
	acquired := time.Now()
	return func() {
		if held := time.Since(acquired); held > constants.PoolLockTimeLimit {
			logrus.Warnf("server pool lock held for %s", held)
		}
		p.mu.Unlock()
	}
}

func (p *Pool) indexLocked(processCode string) int {
	for i, s := range p.servers {
		if s.ProcessCode() == processCode {
			return i
		}
	}
	return -1
}

// AddServer inserts the server or replaces the one with the same process code, then asks for a
// matchmaking scan.
func (p *Pool) AddServer(server *bridge.Server) {
	unlock := p.lock()
	if i := p.indexLocked(server.ProcessCode()); i >= 0 {
		p.servers[i] = server
		logrus.Infof("Game server %s reconnected (%s)", server.ProcessCode(), server.URI())
	} else {
		p.servers = append(p.servers, server)
		logrus.Infof("New game server connected: %s (%s)", server.ProcessCode(), server.URI())
	}
	p.publishLocked()
	unlock()

	p.updaterMu.RLock()
	updater := p.updater
	p.updaterMu.RUnlock()
	if updater != nil {
		updater.Update()
	}
}

// RemoveServer forgets the server. Unknown or empty process codes are ignored.
func (p *Pool) RemoveServer(processCode string) {
	if processCode == "" {
		return
	}
	unlock := p.lock()
	defer unlock()
	i := p.indexLocked(processCode)
	if i < 0 {
		return
	}
	p.servers = append(p.servers[:i], p.servers[i+1:]...)
	logrus.Infof("Game server %s removed from the pool", processCode)
	p.publishLocked()
}

// GetServer reserves and returns the first available server, nil when there is none.
func (p *Pool) GetServer() *bridge.Server {
	unlock := p.lock()
	defer unlock()
	for _, s := range p.servers {
		if s.TryReserveForGame() {
			p.publishLocked()
			return s
		}
	}
	return nil
}

// GetServerWithPlayer returns the server running a game that has the account on its roster.
func (p *Pool) GetServerWithPlayer(accountID int64) *bridge.Server {
	unlock := p.lock()
	defer unlock()
	for _, s := range p.servers {
		if s.Status().IsActive() && s.HasPlayer(accountID) {
			return s
		}
	}
	return nil
}

func (p *Pool) IsAnyServerAvailable() bool {
	unlock := p.lock()
	defer unlock()
	return pie.Any(p.servers, (*bridge.Server).IsAvailable)
}

// ListCustomServers returns the private servers.
func (p *Pool) ListCustomServers() []*bridge.Server {
	unlock := p.lock()
	defer unlock()
	return pie.Filter(p.servers, (*bridge.Server).IsPrivate)
}

func (p *Pool) GetServerByProcessCode(processCode string) *bridge.Server {
	unlock := p.lock()
	defer unlock()
	if i := p.indexLocked(processCode); i >= 0 {
		return p.servers[i]
	}
	return nil
}

// GetServers returns a copy of the server list in registration order.
func (p *Pool) GetServers() []*bridge.Server {
	unlock := p.lock()
	defer unlock()
	servers := make([]*bridge.Server, len(p.servers))
	copy(servers, p.servers)
	return servers
}

// CountByStatus counts servers per game status, private servers under "Private".
func (p *Pool) CountByStatus() map[string]int {
	unlock := p.lock()
	defer unlock()
	return p.countByStatusLocked()
}

func (p *Pool) countByStatusLocked() map[string]int {
	counts := map[string]int{}
	for _, s := range p.servers {
		if s.IsPrivate() {
			counts["Private"]++
			continue
		}
		counts[s.Status().String()]++
	}
	return counts
}

func (p *Pool) publishLocked() {
	if p.metrics != nil {
		p.metrics.BridgeServers(p.countByStatusLocked())
	}
}
