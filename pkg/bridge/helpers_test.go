// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-lobby-server/pkg/accountstore"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/session"
	"github.com/AccelByte/extend-lobby-server/pkg/testsetup"
)

type recordingTransport struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	full   bool
}

func (t *recordingTransport) WriteMessage(frame []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.full {
		return false
	}
	t.frames = append(t.frames, frame)
	return true
}

func (t *recordingTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

type sentMessage struct {
	callbackID int32
	msg        Message
}

func (t *recordingTransport) sent(tb testing.TB) []sentMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]sentMessage, 0, len(t.frames))
	for _, frame := range t.frames {
		_, callbackID, msg, err := DecodeFrame(frame)
		require.NoError(tb, err)
		result = append(result, sentMessage{callbackID, msg})
	}
	return result
}

func sentOf[T Message](tb testing.TB, t *recordingTransport) []T {
	var result []T
	for _, s := range t.sent(tb) {
		if typed, ok := s.msg.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}

type stubPool struct {
	mu      sync.Mutex
	added   []*Server
	removed []string
}

func (p *stubPool) AddServer(server *Server) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.added = append(p.added, server)
}

func (p *stubPool) RemoveServer(processCode string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, processCode)
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []accountstore.GameReport
}

func (r *recordingReporter) ReportGame(_ context.Context, report accountstore.GameReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

// syncSubmitter runs tasks inline.
type syncSubmitter struct{}

func (syncSubmitter) Submit(task func()) error {
	task()
	return nil
}

type testServer struct {
	*Server
	env       *Environment
	transport *recordingTransport
	pool      *stubPool
	accounts  *accountstore.MemoryStore
	reporter  *recordingReporter
	clients   map[int64]*testsetup.StubConnection
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	transport := &recordingTransport{}
	pool := &stubPool{}
	accounts := accountstore.NewMemoryStore()
	reporter := &recordingReporter{}
	env := &Environment{
		Sessions: session.NewRegistry(time.Minute),
		Pool:     pool,
		Accounts: accounts,
		Reporter: reporter,
		Workers:  syncSubmitter{},
		Metrics:  testsetup.NewMetrics(),
		Timings:  Timings{StopGracePeriod: time.Minute},
	}
	return &testServer{
		Server:    NewServer(env, transport),
		env:       env,
		transport: transport,
		pool:      pool,
		accounts:  accounts,
		reporter:  reporter,
		clients:   map[int64]*testsetup.StubConnection{},
	}
}

// connect logs an account into the lobby with the given last character.
func (ts *testServer) connect(t *testing.T, accountID int64, character models.CharacterType) *testsetup.StubConnection {
	t.Helper()
	account := models.Account{AccountID: accountID, Handle: handleOf(accountID), LastCharacter: character}
	require.NoError(t, ts.accounts.UpdateAccount(context.Background(), account))

	conn := testsetup.NewStubConnection(accountID)
	_, err := ts.env.Sessions.Connect(conn, account, models.SessionRequest{AccountID: accountID})
	require.NoError(t, err)
	ts.clients[accountID] = conn
	return conn
}

func handleOf(accountID int64) string {
	return fmt.Sprintf("player#%d", accountID)
}

// register sends a registration frame for a public server at 10.0.0.5:7777.
func (ts *testServer) register(t *testing.T) {
	t.Helper()
	ts.HandleMessage(testsetup.NewTestScope(), encode(t, &RegisterGameServerRequest{
		SessionInfo: models.SessionInfo{ConnectionAddress: "10.0.0.5:7777", UserName: "host-1", BuildVersion: "b42"},
	}, 3))
}

// assemble reserves the server and fills both teams with connected accounts.
func (ts *testServer) assemble(t *testing.T, teamA, teamB map[int64]models.CharacterType) {
	t.Helper()
	scope := testsetup.NewTestScope()
	var idsA, idsB []int64
	for id := int64(1); id <= 10; id++ {
		if c, ok := teamA[id]; ok {
			ts.connect(t, id, c)
			idsA = append(idsA, id)
		}
		if c, ok := teamB[id]; ok {
			ts.connect(t, id, c)
			idsB = append(idsB, id)
		}
	}
	require.True(t, ts.TryReserveForGame())
	ts.FillTeam(scope, idsA, models.TeamA)
	ts.FillTeam(scope, idsB, models.TeamB)
	ts.BuildGameInfo(models.GameTypePvP, models.GameSubType{Name: "4v4", TeamAPlayers: 4, TeamBPlayers: 4}, "Skyway_Deathmatch")
}

func encode(t testing.TB, msg Message, callbackID int32) []byte {
	var buf bytes.Buffer
	require.NoError(t, EncodeFrame(NewWriter(&buf), msg, callbackID))
	return buf.Bytes()
}
