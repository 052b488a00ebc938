// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/testsetup"
)

func TestRegisterAddsServerToPool(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t)

	require.Len(t, ts.pool.added, 1)
	assert.Same(t, ts.Server, ts.pool.added[0])
	assert.Equal(t, "10.0.0.5", ts.Address())
	assert.Equal(t, 7777, ts.Port())
	assert.Equal(t, "ws://10.0.0.5:7777", ts.URI())
	assert.Equal(t, "host-1", ts.Name())
	assert.Equal(t, "b42", ts.BuildVersion())

	sent := ts.transport.sent(t)
	require.Len(t, sent, 1)
	assert.Equal(t, int32(3), sent[0].callbackID)
	assert.Equal(t, &RegisterGameServerResponse{Success: true}, sent[0].msg)
}

func TestRegisterRejectsInvalidAddress(t *testing.T) {
	ts := newTestServer(t)

	ts.HandleMessage(testsetup.NewTestScope(), encode(t, &RegisterGameServerRequest{
		SessionInfo: models.SessionInfo{ConnectionAddress: "no-port"},
	}, 8))

	assert.Empty(t, ts.pool.added)
	responses := sentOf[*RegisterGameServerResponse](t, ts.transport)
	require.Len(t, responses, 1)
	assert.False(t, responses[0].Success)
	assert.NotEmpty(t, responses[0].ErrorMessage)
}

func TestServerDefaultsBeforeRegistration(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, "ATLAS", ts.Name())
	assert.Equal(t, models.GameStatusStopped, ts.Status())
	assert.True(t, ts.IsAvailable())
}

func TestReservation(t *testing.T) {
	ts := newTestServer(t)

	require.True(t, ts.TryReserveForGame())
	assert.Equal(t, models.GameStatusAssembling, ts.Status())
	assert.False(t, ts.IsAvailable())
	assert.False(t, ts.TryReserveForGame())

	assert.True(t, ts.CancelReservation())
	assert.True(t, ts.IsAvailable())
	assert.False(t, ts.CancelReservation())
}

func TestPrivateServerIsNeverAvailable(t *testing.T) {
	ts := newTestServer(t)

	ts.HandleMessage(testsetup.NewTestScope(), encode(t, &RegisterGameServerRequest{
		SessionInfo: models.SessionInfo{ConnectionAddress: "10.0.0.9:7000"},
		IsPrivate:   true,
	}, 1))

	assert.True(t, ts.IsPrivate())
	assert.False(t, ts.IsAvailable())
	assert.False(t, ts.TryReserveForGame())
}

func TestFillTeamSkipsOfflineAccounts(t *testing.T) {
	ts := newTestServer(t)
	ts.connect(t, 1, models.CharacterSpark)
	require.True(t, ts.TryReserveForGame())

	ts.FillTeam(testsetup.NewTestScope(), []int64{1, 2}, models.TeamB)

	assert.Equal(t, []int64{1}, ts.GetPlayers())
	player, ok := ts.GetPlayerInfo(1)
	require.True(t, ok)
	assert.Equal(t, models.TeamB, player.TeamID)
	assert.Equal(t, int32(1), player.PlayerID)
	assert.Equal(t, models.ReadyStateReady, player.ReadyState)
	assert.Equal(t, models.CharacterSpark, player.CharacterType)
}

func TestStartGameSendsJoinsBeforeLaunch(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t)
	ts.assemble(t,
		map[int64]models.CharacterType{1: models.CharacterSpark, 2: models.CharacterRampart},
		map[int64]models.CharacterType{3: models.CharacterSniper},
	)

	require.NoError(t, ts.StartGame(testsetup.NewTestScope()))

	sent := ts.transport.sent(t)[1:]
	require.Len(t, sent, 4)
	var joined []int64
	for _, s := range sent[:3] {
		join, ok := s.msg.(*JoinGameServerRequest)
		require.True(t, ok, "expected a join request, got %T", s.msg)
		assert.Equal(t, ts.ProcessCode(), join.GameServerProcessCode)
		assert.Equal(t, join.PlayerInfo.AccountID, join.SessionInfo.AccountID)
		joined = append(joined, join.PlayerInfo.AccountID)
	}
	assert.Equal(t, []int64{1, 2, 3}, joined)

	launch, ok := sent[3].msg.(*LaunchGameRequest)
	require.True(t, ok)
	assert.Len(t, launch.TeamInfo.TeamPlayerInfo, 3)
	assert.Len(t, launch.SessionInfo, 3)
	assert.Equal(t, int64(3), launch.SessionInfo[3].AccountID)
	assert.Equal(t, "ws://10.0.0.5:7777", launch.GameInfo.GameServerAddress)
	assert.Equal(t, int32(2), launch.GameInfo.GameConfig.TeamAPlayers)
	assert.Equal(t, int32(1), launch.GameInfo.GameConfig.TeamBPlayers)
	assert.Equal(t, models.GameStatusAssembling, ts.Status())
}

func TestStartGameFailsWhenDisconnected(t *testing.T) {
	ts := newTestServer(t)
	ts.assemble(t, map[int64]models.CharacterType{1: models.CharacterSpark}, nil)
	ts.HandleClose(testsetup.NewTestScope())

	err := ts.StartGame(testsetup.NewTestScope())

	assert.ErrorIs(t, err, models.ErrNotConnected)
	assert.Equal(t, []string{ts.ProcessCode()}, ts.pool.removed)
	assert.False(t, ts.IsAvailable())
}

func TestSendFailsWhenTransportIsFull(t *testing.T) {
	ts := newTestServer(t)
	ts.transport.full = true

	err := ts.Send(testsetup.NewTestScope(), &ShutdownGameRequest{}, 0)

	assert.ErrorIs(t, err, models.ErrNotConnected)
}

func TestStartGameForReconnection(t *testing.T) {
	ts := newTestServer(t)
	ts.assemble(t, map[int64]models.CharacterType{1: models.CharacterSpark}, nil)
	scope := testsetup.NewTestScope()

	assert.ErrorIs(t, ts.StartGameForReconnection(scope, 9), models.ErrPlayerNotInGame)
	require.NoError(t, ts.StartGameForReconnection(scope, 1))

	sent := ts.transport.sent(t)
	require.Len(t, sent, 2)
	session, _ := ts.env.Sessions.GetSessionInfo(1)
	assert.Equal(t, &ReconnectPlayerRequest{AccountID: 1, NewSessionID: session.ReconnectSessionToken}, sent[0].msg)
	assert.IsType(t, &JoinGameServerRequest{}, sent[1].msg)

	ts.env.Sessions.Disconnect(1)
	assert.ErrorIs(t, ts.StartGameForReconnection(scope, 1), models.ErrNoSessionToResume)
}

func TestGameStatusStoppedReleasesPlayers(t *testing.T) {
	ts := newTestServer(t)
	ts.assemble(t,
		map[int64]models.CharacterType{1: models.CharacterSpark},
		map[int64]models.CharacterType{2: models.CharacterRampart},
	)
	for _, id := range ts.GetPlayers() {
		ts.env.Sessions.SetCurrentServer(id, ts.ProcessCode())
	}
	scope := testsetup.NewTestScope()

	ts.HandleMessage(scope, encode(t, &ServerGameStatusNotification{GameStatus: models.GameStatusStarted}, 0))
	assert.Equal(t, models.GameStatusStarted, ts.Status())
	assert.Empty(t, testsetup.NotificationsOf[models.ForceMatchmakingQueueNotification](ts.clients[1]))

	before := time.Now()
	ts.HandleMessage(scope, encode(t, &ServerGameStatusNotification{GameStatus: models.GameStatusStopped}, 0))

	assert.Equal(t, models.GameStatusStopped, ts.Status())
	assert.Equal(t, models.GameStatusStopped, ts.GameInfo().GameStatus)
	assert.WithinDuration(t, before.Add(time.Minute), ts.StopTime(), time.Second)
	for _, id := range []int64{1, 2} {
		_, inGame := ts.env.Sessions.GetCurrentServer(id)
		assert.False(t, inGame)
		assert.Equal(t, []models.ForceMatchmakingQueueNotification{{
			Action:   models.ForceMatchmakingQueueLeave,
			GameType: models.GameTypePvP,
		}}, testsetup.NotificationsOf[models.ForceMatchmakingQueueNotification](ts.clients[id]))
	}
	assert.True(t, ts.IsAvailable())
}

func TestPlayerDisconnectedIsReplacedWithBot(t *testing.T) {
	ts := newTestServer(t)
	ts.assemble(t, map[int64]models.CharacterType{1: models.CharacterSpark, 2: models.CharacterRampart}, nil)
	ts.env.Sessions.SetCurrentServer(2, ts.ProcessCode())

	ts.HandleMessage(testsetup.NewTestScope(), encode(t, &PlayerDisconnectedNotification{
		PlayerInfo: models.PlayerInfo{AccountID: 2},
	}, 0))

	player, _ := ts.GetPlayerInfo(2)
	assert.True(t, player.ReplacedWithBots)
	_, inGame := ts.env.Sessions.GetCurrentServer(2)
	assert.False(t, inGame)
	require.Len(t, ts.GetClients(), 1)
	assert.Equal(t, int64(1), ts.GetClients()[0].AccountID())
}

func TestGameSummaryFinishesTheGame(t *testing.T) {
	g := testsetup.WithGomega(t)
	ts := newTestServer(t)
	ts.register(t)
	ts.assemble(t,
		map[int64]models.CharacterType{1: models.CharacterSpark},
		map[int64]models.CharacterType{2: models.CharacterRampart},
	)
	ts.HandleMessage(g.TestScope, encode(t, &ServerGameStatusNotification{GameStatus: models.GameStatusStarted}, 0))

	ts.HandleMessage(g.TestScope, encode(t, &ServerGameSummaryNotification{GameSummary: &models.GameSummary{
		GameResult: models.GameResultTeamAWon,
		PlayerGameSummaryList: []models.PlayerGameSummary{
			{PlayerID: 1, AccountID: 1, Team: models.TeamA, TotalPlayerDamage: 400, TotalGameTurns: 10},
			{PlayerID: 2, AccountID: 2, Team: models.TeamB, TotalPlayerDamageReceived: 400, TotalGameTurns: 10},
		},
	}}, 0))
	ts.Wait()

	g.Expect(ts.Status()).To(Equal(models.GameStatusStopped))
	g.Expect(ts.GameInfo().GameResult).To(Equal(models.GameResultTeamAWon))
	g.Expect(ts.IsAvailable()).To(BeTrue())
	g.Expect(ts.reporter.count()).To(Equal(1))

	for _, id := range []int64{1, 2} {
		results := testsetup.NotificationsOf[models.MatchResultsNotification](ts.clients[id])
		g.Expect(results).To(HaveLen(1))
		g.Expect(results[0].BadgeAndParticipantsInfo).To(HaveLen(2))
		g.Expect(testsetup.NotificationsOf[models.GameInfoNotification](ts.clients[id])).NotTo(BeEmpty())
	}

	sent := ts.transport.sent(t)
	g.Expect(sent[len(sent)-1].msg).To(Equal(&ShutdownGameRequest{}))
}

func TestTieGameHasNoBadges(t *testing.T) {
	g := testsetup.WithGomega(t)
	ts := newTestServer(t)
	ts.assemble(t, map[int64]models.CharacterType{1: models.CharacterSpark}, nil)

	ts.HandleMessage(g.TestScope, encode(t, &ServerGameSummaryNotification{}, 0))
	ts.Wait()

	g.Expect(ts.GameInfo().GameResult).To(Equal(models.GameResultTieGame))
	results := testsetup.NotificationsOf[models.MatchResultsNotification](ts.clients[1])
	g.Expect(results).To(HaveLen(1))
	g.Expect(results[0].BadgeAndParticipantsInfo).To(BeEmpty())
	g.Expect(ts.reporter.reports[0].Summary.GameResult).To(Equal(models.GameResultTieGame))
}

func TestServerIsNotReusedDuringShutdownDelay(t *testing.T) {
	g := testsetup.WithGomega(t)
	ts := newTestServer(t)
	ts.env.Timings.ShutdownDelay = time.Hour
	ts.assemble(t, map[int64]models.CharacterType{1: models.CharacterSpark}, nil)

	ts.HandleMessage(g.TestScope, encode(t, &ServerGameSummaryNotification{}, 0))

	g.Eventually(ts.Status).Should(Equal(models.GameStatusStopped))
	g.Expect(ts.IsAvailable()).To(BeFalse())
	g.Expect(ts.TryReserveForGame()).To(BeFalse())

	ts.HandleClose(g.TestScope)
	ts.Wait()
	g.Expect(sentOf[*ShutdownGameRequest](t, ts.transport)).To(BeEmpty())
}

func TestHandleMessageSurvivesBadFrames(t *testing.T) {
	ts := newTestServer(t)
	ts.env.Pool = nil
	scope, logs := testsetup.NewRecordingScope()

	assert.NotPanics(t, func() {
		ts.HandleMessage(scope, []byte{1})
		ts.HandleMessage(scope, []byte{99, 0, 0, 0, 0, 0})
		ts.HandleMessage(scope, encode(t, &MonitorHeartbeatNotification{}, 0))
		ts.HandleMessage(scope, encode(t, &ServerGameMetricsNotification{}, 0))
		ts.HandleMessage(scope, encode(t, &LaunchGameResponse{Success: true}, 0))
		ts.HandleMessage(scope, encode(t, &JoinGameServerResponse{}, 0))
		// nil pool makes registration panic
		ts.HandleMessage(scope, encode(t, &RegisterGameServerRequest{
			SessionInfo: models.SessionInfo{ConnectionAddress: "10.0.0.5:7777"},
		}, 0))
	})
	assert.Empty(t, ts.transport.sent(t))

	errorLogs := testsetup.EntriesAt(logs, logrus.ErrorLevel)
	require.Len(t, errorLogs, 3)
	assert.Contains(t, errorLogs[1].Message, "Unknown bridge message type 99")
	assert.Regexp(t, "^failed to handle bridge message: ", errorLogs[2].Message)
	assert.Contains(t, errorLogs[2].Data, "payload")
}

func TestSnapshotCopiesRoster(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t)
	ts.assemble(t, map[int64]models.CharacterType{1: models.CharacterSpark}, nil)

	snapshot, err := ts.Snapshot()
	require.NoError(t, err)
	snapshot.TeamInfo.TeamPlayerInfo[0].Handle = "changed"

	assert.Equal(t, "host-1", snapshot.Name)
	assert.Equal(t, models.GameStatusAssembling, snapshot.Status)
	player, _ := ts.GetPlayerInfo(1)
	assert.Equal(t, "player#1", player.Handle)
}
