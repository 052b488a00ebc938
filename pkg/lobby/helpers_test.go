// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package lobby

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-lobby-server/pkg/accountstore"
	"github.com/AccelByte/extend-lobby-server/pkg/bridge"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/groups"
	"github.com/AccelByte/extend-lobby-server/pkg/matchmaker"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/queuepenalty"
	"github.com/AccelByte/extend-lobby-server/pkg/session"
	"github.com/AccelByte/extend-lobby-server/pkg/testsetup"
)

var pvp4v4 = models.GameSubType{Name: "4v4", TeamAPlayers: 4, TeamBPlayers: 4, Maps: []string{"CargoShip"}}

// clientTransport records the envelopes written to one game client.
type clientTransport struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (t *clientTransport) WriteMessage(data []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.frames = append(t.frames, data)
	return true
}

func (t *clientTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

func (t *clientTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *clientTransport) envelopes(tb testing.TB) []Envelope {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]Envelope, 0, len(t.frames))
	for _, frame := range t.frames {
		var e Envelope
		require.NoError(tb, json.Unmarshal(frame, &e))
		result = append(result, e)
	}
	return result
}

// lastOf decodes the payload of the last envelope of the given type.
func lastOf[T any](tb testing.TB, t *clientTransport, messageType string) (T, Envelope) {
	var payload T
	envelopes := t.envelopes(tb)
	for i := len(envelopes) - 1; i >= 0; i-- {
		if envelopes[i].Type == messageType {
			require.NoError(tb, json.Unmarshal(envelopes[i].Payload, &payload))
			return payload, envelopes[i]
		}
	}
	require.Failf(tb, "no message", "%s was never sent", messageType)
	return payload, Envelope{}
}

func countOf(tb testing.TB, t *clientTransport, messageType string) int {
	n := 0
	for _, e := range t.envelopes(tb) {
		if e.Type == messageType {
			n++
		}
	}
	return n
}

// bridgeTransport records the frames sent to a game server.
type bridgeTransport struct {
	mu     sync.Mutex
	frames [][]byte
}

func (t *bridgeTransport) WriteMessage(frame []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, frame)
	return true
}

func (t *bridgeTransport) Close() {}

func sentOf[T bridge.Message](tb testing.TB, t *bridgeTransport) []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	var result []T
	for _, frame := range t.frames {
		_, _, msg, err := bridge.DecodeFrame(frame)
		require.NoError(tb, err)
		if typed, ok := msg.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}

type recordingQueues struct {
	mu      sync.Mutex
	added   []matchmaker.Group
	removed []int64
	err     error
}

func (q *recordingQueues) AddGroup(_ *envelope.Scope, _ models.GameType, group matchmaker.Group) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.added = append(q.added, group)
	return nil
}

func (q *recordingQueues) RemoveGroupFromQueue(_ *envelope.Scope, groupID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removed = append(q.removed, groupID)
	return true
}

type stubServers struct {
	mu      sync.Mutex
	servers []*bridge.Server
}

func (s *stubServers) add(server *bridge.Server) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.servers = append(s.servers, server)
}

func (s *stubServers) GetServerByProcessCode(processCode string) *bridge.Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, server := range s.servers {
		if server.ProcessCode() == processCode {
			return server
		}
	}
	return nil
}

func (s *stubServers) GetServerWithPlayer(accountID int64) *bridge.Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, server := range s.servers {
		if server.Status().IsActive() && server.HasPlayer(accountID) {
			return server
		}
	}
	return nil
}

func (s *stubServers) IsAnyServerAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, server := range s.servers {
		if server.IsAvailable() {
			return true
		}
	}
	return false
}

func (s *stubServers) GetServer() *bridge.Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, server := range s.servers {
		if server.TryReserveForGame() {
			return server
		}
	}
	return nil
}

type syncSubmitter struct{}

func (syncSubmitter) Submit(task func()) error {
	task()
	return nil
}

var errPoolClosed = errors.New("pool closed")

type closedSubmitter struct{}

func (closedSubmitter) Submit(func()) error {
	return errPoolClosed
}

type fixture struct {
	env      *Environment
	sessions *session.Registry
	accounts *accountstore.MemoryStore
	groups   *groups.Manager
	queues   *recordingQueues
	servers  *stubServers
	scope    *envelope.Scope
}

func newFixture(accounts ...models.Account) *fixture {
	f := &fixture{
		sessions: session.NewRegistry(time.Minute),
		accounts: accountstore.NewMemoryStore(accounts...),
		groups:   groups.NewManager(4),
		queues:   &recordingQueues{},
		servers:  &stubServers{},
		scope:    testsetup.NewTestScope(),
	}
	lobbyMetrics := testsetup.NewMetrics()
	f.env = &Environment{
		Sessions:  f.sessions,
		Accounts:  f.accounts,
		Groups:    f.groups,
		Queues:    f.queues,
		Penalties: queuepenalty.New(true, f.accounts, f.groups, f.queues, f.sessions, lobbyMetrics),
		Servers:   f.servers,
		Metrics:   lobbyMetrics,
	}
	return f
}

func (f *fixture) newClient() (*ClientConnection, *clientTransport) {
	transport := &clientTransport{}
	return NewClientConnection(f.env, transport, "10.0.0.1"), transport
}

func (f *fixture) send(t testing.TB, c *ClientConnection, requestID int32, messageType string, payload any) {
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	frame, err := json.Marshal(Envelope{Type: messageType, RequestID: requestID, Payload: data})
	require.NoError(t, err)
	c.HandleMessage(f.scope, frame)
}

// login registers a fresh client for the account and returns its session.
func (f *fixture) login(t testing.TB, accountID int64) (*ClientConnection, *clientTransport, models.SessionInfo) {
	c, transport := f.newClient()
	f.send(t, c, 1, TypeRegisterGameClientRequest, RegisterGameClientRequest{
		SessionInfo: models.SessionRequest{AccountID: accountID, Handle: "player", BuildVersion: "STABLE-122"},
	})
	response, _ := lastOf[RegisterGameClientResponse](t, transport, "RegisterGameClientResponse")
	require.True(t, response.Success, response.ErrorMessage)
	require.NotNil(t, response.SessionInfo)
	return c, transport, *response.SessionInfo
}

// newBridgeServer creates a connected bridge server known to the fixture.
func (f *fixture) newBridgeServer() (*bridge.Server, *bridgeTransport) {
	transport := &bridgeTransport{}
	server := bridge.NewServer(&bridge.Environment{
		Sessions: f.sessions,
		Accounts: f.accounts,
		Reporter: accountstore.LogGameReporter{},
		Workers:  syncSubmitter{},
		Metrics:  testsetup.NewMetrics(),
		Timings:  bridge.Timings{StopGracePeriod: time.Minute},
	}, transport)
	f.servers.add(server)
	return server, transport
}

// startGame puts the online accounts into a running PvP game.
func (f *fixture) startGame(t testing.TB, server *bridge.Server, teamA []int64, teamB []int64) {
	require.True(t, server.TryReserveForGame())
	server.FillTeam(f.scope, teamA, models.TeamA)
	server.FillTeam(f.scope, teamB, models.TeamB)
	server.BuildGameInfo(models.GameTypePvP, pvp4v4, "CargoShip")
	for _, accountID := range append(append([]int64{}, teamA...), teamB...) {
		f.sessions.SetCurrentServer(accountID, server.ProcessCode())
	}

	var buf bytes.Buffer
	require.NoError(t, bridge.EncodeFrame(bridge.NewWriter(&buf), &bridge.ServerGameStatusNotification{GameStatus: models.GameStatusStarted}, 0))
	server.HandleMessage(f.scope, buf.Bytes())
	require.True(t, server.Status().IsActive())
}

func (f *fixture) penaltyTimeout(t testing.TB, accountID int64) time.Time {
	account, err := f.accounts.GetAccount(f.scope.Ctx, accountID)
	require.NoError(t, err)
	return account.ActiveQueuePenalties[models.GameTypePvP].QueueDodgeBlockTimeout
}
