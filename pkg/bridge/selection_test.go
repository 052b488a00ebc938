// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-lobby-server/pkg/constants"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/testsetup"
)

func (ts *testServer) lastCharacter(t *testing.T, accountID int64) models.CharacterType {
	t.Helper()
	account, err := ts.accounts.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	return account.LastCharacter
}

func (ts *testServer) addBot(team models.Team, character models.CharacterType) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.teamInfo.TeamPlayerInfo = append(ts.teamInfo.TeamPlayerInfo, models.PlayerInfo{
		PlayerID:      int32(len(ts.teamInfo.TeamPlayerInfo) + 1),
		Handle:        "bot",
		TeamID:        team,
		CharacterType: character,
		ReadyState:    models.ReadyStateReady,
		IsNPCBot:      true,
	})
}

func systemMessageTerms(conn *testsetup.StubConnection) []string {
	var terms []string
	for _, n := range testsetup.NotificationsOf[models.ChatNotification](conn) {
		if n.LocalizedText != nil {
			terms = append(terms, n.LocalizedText.Term)
		}
	}
	return terms
}

func newSelectionServer(t *testing.T) *testServer {
	ts := newTestServer(t)
	ts.randIntN = func(int) int { return 0 }
	ts.assemble(t,
		map[int64]models.CharacterType{
			1: models.CharacterSpark,
			2: models.CharacterSpark,
			3: models.CharacterPendingWillFill,
		},
		map[int64]models.CharacterType{4: models.CharacterSpark},
	)
	return ts
}

func TestCheckDuplicatedAndFillFlagsLaterDuplicates(t *testing.T) {
	ts := newSelectionServer(t)
	ts.addBot(models.TeamB, models.CharacterSpark)

	assert.True(t, ts.CheckDuplicatedAndFill(testsetup.NewTestScope()))

	readiness := map[int64]models.ReadyState{}
	for _, p := range ts.TeamInfo().TeamPlayerInfo {
		readiness[p.AccountID] = p.ReadyState
	}
	assert.Equal(t, models.ReadyStateReady, readiness[1])
	assert.Equal(t, models.ReadyStateUnknown, readiness[2])
	assert.Equal(t, models.ReadyStateUnknown, readiness[3])
	assert.Equal(t, models.ReadyStateReady, readiness[4])
	assert.Equal(t, models.ReadyStateReady, readiness[0], "bots are never flagged")

	chats := testsetup.NotificationsOf[models.ChatNotification](ts.clients[2])
	require.Len(t, chats, 1)
	assert.Equal(t, constants.TermDuplicateFreelancer, chats[0].LocalizedText.Term)
	assert.Equal(t, "player#1", chats[0].LocalizedText.Args[0].Handle)
	assert.Empty(t, ts.clients[1].Notifications())
	assert.Empty(t, ts.clients[3].Notifications())
}

func TestCheckDuplicatedAndFillWithDistinctPicks(t *testing.T) {
	ts := newTestServer(t)
	ts.assemble(t,
		map[int64]models.CharacterType{1: models.CharacterSpark, 2: models.CharacterRampart},
		map[int64]models.CharacterType{3: models.CharacterSpark},
	)

	assert.False(t, ts.CheckDuplicatedAndFill(testsetup.NewTestScope()))
	require.NoError(t, ts.CheckIfAllSelected(testsetup.NewTestScope()))
	assert.Empty(t, ts.clients[1].Notifications())
}

func TestCheckIfAllSelectedForcesFreeCharacters(t *testing.T) {
	ts := newSelectionServer(t)
	scope := testsetup.NewTestScope()
	require.True(t, ts.CheckDuplicatedAndFill(scope))

	require.NoError(t, ts.CheckIfAllSelected(scope))

	second, _ := ts.GetPlayerInfo(2)
	third, _ := ts.GetPlayerInfo(3)
	assert.Equal(t, models.CharacterBattleMonk, second.CharacterType)
	assert.Equal(t, models.CharacterBazookaGirl, third.CharacterType)
	assert.Equal(t, models.ReadyStateReady, second.ReadyState)
	assert.Equal(t, models.ReadyStateReady, third.ReadyState)

	assert.Equal(t, models.CharacterBattleMonk, ts.lastCharacter(t, 2))
	assert.Equal(t, models.CharacterBazookaGirl, ts.lastCharacter(t, 3))
	lobbyInfo, _ := ts.env.Sessions.GetPlayerInfo(2)
	assert.Equal(t, models.CharacterBattleMonk, lobbyInfo.CharacterType)

	assert.Equal(t, []models.ForcedCharacterChangeFromServerNotification{{CharacterType: models.CharacterBattleMonk}},
		testsetup.NotificationsOf[models.ForcedCharacterChangeFromServerNotification](ts.clients[2]))
	assert.Equal(t, []string{constants.TermDuplicateFreelancer, constants.TermTooLateToChange}, systemMessageTerms(ts.clients[2]))
	assert.Equal(t, []string{constants.TermTooLateToChange}, systemMessageTerms(ts.clients[3]))
	assert.Empty(t, ts.clients[1].Notifications())
}

func TestSubstitutionsAreRevertedWhenTheGameStops(t *testing.T) {
	ts := newSelectionServer(t)
	scope := testsetup.NewTestScope()
	ts.CheckDuplicatedAndFill(scope)
	require.NoError(t, ts.CheckIfAllSelected(scope))

	ts.HandleMessage(scope, encode(t, &ServerGameStatusNotification{GameStatus: models.GameStatusStopped}, 0))

	assert.Equal(t, models.CharacterSpark, ts.lastCharacter(t, 2))
	assert.Equal(t, models.CharacterPendingWillFill, ts.lastCharacter(t, 3))
	assert.Equal(t, models.CharacterSpark, ts.lastCharacter(t, 1))
}

func TestFlaggedPlayerMayPickAnotherCharacter(t *testing.T) {
	ts := newSelectionServer(t)
	scope := testsetup.NewTestScope()
	ts.CheckDuplicatedAndFill(scope)

	require.NoError(t, ts.SelectCharacter(scope, 2, models.CharacterScoundrel))
	require.NoError(t, ts.CheckIfAllSelected(scope))

	second, _ := ts.GetPlayerInfo(2)
	assert.Equal(t, models.CharacterScoundrel, second.CharacterType)
	assert.Equal(t, models.ReadyStateReady, second.ReadyState)
	assert.Equal(t, models.CharacterScoundrel, ts.lastCharacter(t, 2))
	assert.Empty(t, testsetup.NotificationsOf[models.ForcedCharacterChangeFromServerNotification](ts.clients[2]))

	ts.RevertSubstitutions(scope)
	assert.Equal(t, models.CharacterScoundrel, ts.lastCharacter(t, 2))
}

func TestSelectCharacter(t *testing.T) {
	ts := newTestServer(t)
	ts.assemble(t,
		map[int64]models.CharacterType{1: models.CharacterSpark, 2: models.CharacterRampart},
		map[int64]models.CharacterType{3: models.CharacterSniper},
	)
	scope := testsetup.NewTestScope()

	assert.ErrorIs(t, ts.SelectCharacter(scope, 2, models.CharacterLast), models.ErrCharacterUnavailable)
	assert.ErrorIs(t, ts.SelectCharacter(scope, 2, models.CharacterPunchingDummy), models.ErrCharacterUnavailable)
	assert.ErrorIs(t, ts.SelectCharacter(scope, 2, models.CharacterPendingWillFill), models.ErrCharacterUnavailable)
	assert.ErrorIs(t, ts.SelectCharacter(scope, 9, models.CharacterSniper), models.ErrPlayerNotInGame)
	assert.ErrorIs(t, ts.SelectCharacter(scope, 2, models.CharacterSpark), models.ErrCharacterUnavailable)

	assert.False(t, ts.ValidateSelectedCharacter(2, models.CharacterSpark))
	assert.True(t, ts.ValidateSelectedCharacter(3, models.CharacterSpark))
	require.NoError(t, ts.SelectCharacter(scope, 3, models.CharacterSpark))

	ts.HandleMessage(scope, encode(t, &ServerGameStatusNotification{GameStatus: models.GameStatusStarted}, 0))
	assert.ErrorIs(t, ts.SelectCharacter(scope, 2, models.CharacterSniper), models.ErrSelectionClosed)
}

func TestPlayableCharactersExcludeFillAndDisallowed(t *testing.T) {
	assert.NotContains(t, playableCharacters, models.CharacterPendingWillFill)
	assert.NotContains(t, playableCharacters, models.CharacterPunchingDummy)
	assert.Equal(t, models.CharacterBattleMonk, playableCharacters[0])
}
