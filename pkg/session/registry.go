// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package session

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// Connection is the live link to one game client. Send never blocks; false means the message was dropped.
type Connection interface {
	AccountID() int64
	Send(notification models.Notification) bool
	Close()
}

// Registry owns every mapping between accounts, session tokens, live connections and lobby player info.
// Lookups are lock free. Connect, Resume and Disconnect are serialized so each account sees them in order.
type Registry struct {
	mu        sync.Mutex
	nextToken atomic.Int64

	sessions       SafeMap[int64, models.SessionInfo]
	tokens         SafeMap[int64, int64]
	connections    SafeMap[int64, Connection]
	players        SafeMap[int64, models.PlayerInfo]
	currentServers SafeMap[int64, string]

	disconnected *cache.Cache
}

// NewRegistry creates a registry keeping disconnected sessions resumable for gracePeriod.
func NewRegistry(gracePeriod time.Duration) *Registry {
	cleanup := gracePeriod / 2
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	r := &Registry{
		disconnected: cache.New(gracePeriod, cleanup),
	}
	r.nextToken.Store(time.Now().Unix())
	r.disconnected.OnEvicted(func(key string, _ interface{}) {
		logrus.WithField("accountID", key).Debug("disconnected session expired")
	})
	return r
}

func cacheKey(accountID int64) string {
	return strconv.FormatInt(accountID, 10)
}

func newReconnectToken() int64 {
	return rand.Int64N(math.MaxInt64-1) + 1
}

// Connect registers a fresh session for the account. It does not reject an account that is already
// connected; callers check GetSessionInfo first. An existing session of the account is superseded.
func (r *Registry) Connect(conn Connection, account models.Account, request models.SessionRequest) (models.SessionInfo, error) {
	if conn == nil || account.AccountID <= 0 {
		return models.SessionInfo{}, models.ErrMalformedSession
	}
	if request.AccountID != 0 && request.AccountID != account.AccountID {
		return models.SessionInfo{}, fmt.Errorf("%w: request for account %d presented by %d", models.ErrMalformedSession, request.AccountID, account.AccountID)
	}

	r.mu.Lock()
	info, superseded := r.connectLocked(conn, account, request)
	r.mu.Unlock()

	if superseded != nil && superseded != conn {
		superseded.Close()
	}
	return info, nil
}

// Resume re-establishes a session that is either disconnected within the grace period or still marked
// connected. The presented tokens must match; the resumed session gets a new session token.
func (r *Registry) Resume(conn Connection, account models.Account, request models.SessionRequest) (models.SessionInfo, error) {
	if conn == nil || account.AccountID <= 0 {
		return models.SessionInfo{}, models.ErrMalformedSession
	}

	r.mu.Lock()
	previous, ok := r.getDisconnected(account.AccountID)
	if !ok {
		previous, ok = r.sessions.Load(account.AccountID)
	}
	if !ok {
		r.mu.Unlock()
		return models.SessionInfo{}, models.ErrNoSessionToResume
	}
	if previous.SessionToken != request.SessionToken {
		r.mu.Unlock()
		return models.SessionInfo{}, models.ErrSessionTokenInvalid
	}
	if previous.ReconnectSessionToken != request.ReconnectSessionToken {
		r.mu.Unlock()
		return models.SessionInfo{}, models.ErrReconnectTokenInvalid
	}
	info, superseded := r.connectLocked(conn, account, request)
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"accountID":     account.AccountID,
		"previousToken": previous.SessionToken,
		"sessionToken":  info.SessionToken,
	}).Info("session resumed")

	if superseded != nil && superseded != conn {
		superseded.Close()
	}
	return info, nil
}

func (r *Registry) connectLocked(conn Connection, account models.Account, request models.SessionRequest) (models.SessionInfo, Connection) {
	info := models.SessionInfo{
		AccountID:             account.AccountID,
		SessionToken:          r.nextToken.Add(1),
		ReconnectSessionToken: newReconnectToken(),
		IPAddress:             request.IPAddress,
		Handle:                account.Handle,
		UserName:              account.Handle,
		BuildVersion:          request.BuildVersion,
	}

	if old, ok := r.sessions.Load(account.AccountID); ok {
		r.tokens.Delete(old.SessionToken)
	}
	superseded, _ := r.connections.Load(account.AccountID)

	r.sessions.Store(account.AccountID, info)
	r.tokens.Store(info.SessionToken, account.AccountID)
	r.connections.Store(account.AccountID, conn)
	r.players.Store(account.AccountID, models.PlayerInfo{
		AccountID:     account.AccountID,
		Handle:        account.Handle,
		TeamID:        models.TeamInvalid,
		CharacterType: account.LastCharacter,
	})
	r.disconnected.Delete(cacheKey(account.AccountID))

	return info, superseded
}

// Disconnect removes every mapping of the account and keeps its session resumable for the grace period.
func (r *Registry) Disconnect(accountID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnectLocked(accountID)
}

// Release disconnects the account of conn only if conn is still its registered connection.
// A connection superseded by a newer one releases nothing.
func (r *Registry) Release(conn Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.connections.Load(conn.AccountID())
	if !ok || current != conn {
		return false
	}
	r.disconnectLocked(conn.AccountID())
	return true
}

func (r *Registry) disconnectLocked(accountID int64) {
	info, ok := r.sessions.LoadAndDelete(accountID)
	if ok {
		r.tokens.Delete(info.SessionToken)
		r.disconnected.SetDefault(cacheKey(accountID), info)
	}
	r.connections.Delete(accountID)
	r.players.Delete(accountID)
	r.currentServers.Delete(accountID)
}

func (r *Registry) getDisconnected(accountID int64) (models.SessionInfo, bool) {
	v, ok := r.disconnected.Get(cacheKey(accountID))
	if !ok {
		return models.SessionInfo{}, false
	}
	info, ok := v.(models.SessionInfo)
	return info, ok
}

func (r *Registry) GetSessionInfo(accountID int64) (models.SessionInfo, bool) {
	return r.sessions.Load(accountID)
}

// GetDisconnectedSessionInfo returns a session preserved after its connection closed.
func (r *Registry) GetDisconnectedSessionInfo(accountID int64) (models.SessionInfo, bool) {
	return r.getDisconnected(accountID)
}

// GetClientConnection returns nil when the account is offline.
func (r *Registry) GetClientConnection(accountID int64) Connection {
	conn, ok := r.connections.Load(accountID)
	if !ok {
		return nil
	}
	return conn
}

func (r *Registry) GetPlayerInfo(accountID int64) (models.PlayerInfo, bool) {
	return r.players.Load(accountID)
}

// UpdateCharacter changes the lobby character of an online account.
func (r *Registry) UpdateCharacter(accountID int64, character models.CharacterType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.players.Load(accountID)
	if !ok {
		return false
	}
	info.CharacterType = character
	r.players.Store(accountID, info)
	return true
}

func (r *Registry) GetAccountIDOf(sessionToken int64) (int64, bool) {
	return r.tokens.Load(sessionToken)
}

// Send delivers a notification to an online account. It reports false when the account is offline
// or the message was dropped.
func (r *Registry) Send(accountID int64, notification models.Notification) bool {
	conn := r.GetClientConnection(accountID)
	if conn == nil {
		return false
	}
	return conn.Send(notification)
}

func (r *Registry) SetCurrentServer(accountID int64, processCode string) {
	r.currentServers.Store(accountID, processCode)
}

func (r *Registry) GetCurrentServer(accountID int64) (string, bool) {
	return r.currentServers.Load(accountID)
}

// ClearCurrentServer forgets the current server of the account only if it is processCode.
func (r *Registry) ClearCurrentServer(accountID int64, processCode string) bool {
	return r.currentServers.CompareAndDelete(accountID, processCode)
}

func (r *Registry) OnlineAccounts() []int64 {
	return r.connections.Keys()
}

func (r *Registry) OnlineCount() int {
	return r.connections.Len()
}
