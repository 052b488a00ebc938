// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-lobby-server/pkg/accountstore"
	"github.com/AccelByte/extend-lobby-server/pkg/config"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
	"github.com/AccelByte/extend-lobby-server/pkg/testsetup"
)

const eloKey = "PvP"

func testConfig() config.MatchmakingConfig {
	return config.MatchmakingConfig{
		Interval:                       time.Hour,
		MaxTeamEloDifferenceStart:      20,
		MaxTeamEloDifference:           200,
		MaxTeamEloDifferenceWaitTime:   5 * time.Minute,
		TeamEloDifferenceWeight:        1,
		TeammateEloDifferenceWeight:    0.2,
		TeammateEloDifferenceWeightCap: 500,
		WaitingTimeWeight:              2,
		WaitingTimeWeightCap:           10 * time.Minute,
		TeamCompositionWeight:          0.3,
		TeamBlockWeight:                0.5,
		TeamConfidenceBalanceWeight:    0.2,
	}
}

func account(id int64, elo float64) models.Account {
	return models.Account{
		AccountID: id,
		Handle:    "player",
		EloValues: map[string]models.EloValue{eloKey: {Elo: elo, Confidence: 1}},
	}
}

func newRanked(accounts accountstore.Store, subType models.GameSubType) *RankedMatchmaker {
	return NewRankedMatchmaker(accounts, subType, eloKey, testConfig)
}

type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) GetAccount(context.Context, int64) (models.Account, error) {
	return models.Account{}, errStoreDown
}

func (failingStore) UpdateAccount(context.Context, models.Account) error {
	return errStoreDown
}

func TestFindMatches_EnumeratesEveryExactSplit(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	mm := newRanked(accountstore.NewMemoryStore(), subType3v3)

	matches, err := mm.FindMatches(g.TestScope, []Group{group(1, 10, 11), group(2, 20, 21), group(3, 30), group(4, 40)})

	g.Expect(err).To(BeNil())
	g.Expect(matches).To(HaveLen(2))
	for _, match := range matches {
		g.Expect(match.TeamA.AccountIDs()).To(HaveLen(3))
		g.Expect(match.TeamB.AccountIDs()).To(HaveLen(3))
	}
}

func TestFindMatches_NoPartition(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	mm := newRanked(accountstore.NewMemoryStore(), subType3v3)

	matches, err := mm.FindMatches(g.TestScope, []Group{group(1, 10, 11), group(2, 20, 21), group(3, 30, 31)})

	g.Expect(err).To(BeNil())
	g.Expect(matches).To(BeEmpty())
}

func TestFindMatches_SkipsSwappedTeams(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	mm := newRanked(accountstore.NewMemoryStore(), subType3v3)

	var groups []Group
	for id := int64(1); id <= 6; id++ {
		groups = append(groups, group(id, id*10))
	}
	matches, err := mm.FindMatches(g.TestScope, groups)

	// 6 choose 3 splits, each reached once per side
	g.Expect(err).To(BeNil())
	g.Expect(matches).To(HaveLen(10))
	seen := map[int64]bool{}
	for _, match := range matches {
		s := NewMatchScratch(subType3v3)
		for _, grp := range match.Groups() {
			g.Expect(s.Push(grp)).To(BeTrue())
		}
		g.Expect(seen[s.Hash()]).To(BeFalse())
		seen[s.Hash()] = true
	}
}

func TestFindMatches_LoadsAccounts(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	store := accountstore.NewMemoryStore(account(10, 1200), account(11, 1300), account(20, 1250))
	mm := newRanked(store, models.GameSubType{Name: "2v2", TeamAPlayers: 2, TeamBPlayers: 2})

	matches, err := mm.FindMatches(g.TestScope, []Group{group(1, 10, 11), group(2, 20, 21)})

	g.Expect(err).To(BeNil())
	g.Expect(matches).To(HaveLen(1))
	teamA, teamB := matches[0].TeamA, matches[0].TeamB
	g.Expect(teamA.Elo).To(Equal(1250.0))
	g.Expect(teamA.MinElo).To(Equal(1200.0))
	g.Expect(teamA.MaxElo).To(Equal(1300.0))
	g.Expect(teamA.Groups[0].Elo).To(Equal(1250.0))
	g.Expect(teamB.Accounts[21].AccountID).To(Equal(int64(21)), "unknown accounts get defaults")
	g.Expect(teamB.Elo).To(Equal((1250.0 + models.DefaultElo) / 2))
}

func TestFindMatches_StoreFailure(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	mm := newRanked(failingStore{}, subType3v3)

	_, err := mm.FindMatches(g.TestScope, []Group{group(1, 10)})

	g.Expect(err).To(MatchError(errStoreDown))
}

func TestMaxEloDifference(t *testing.T) {
	conf := testConfig()

	assert.Equal(t, 20, MaxEloDifference(conf, 0))
	assert.Equal(t, 110, MaxEloDifference(conf, 150*time.Second))
	assert.Equal(t, 200, MaxEloDifference(conf, 5*time.Minute))
	assert.Equal(t, 200, MaxEloDifference(conf, time.Hour), "progress is clamped")
	assert.Equal(t, 20, MaxEloDifference(conf, -time.Minute))

	conf.MaxTeamEloDifferenceWaitTime = 0
	assert.Equal(t, 200, MaxEloDifference(conf, 0))
}

func TestMaxEloDifference_NeverShrinksWithWaitTime(t *testing.T) {
	conf := testConfig()
	previous := MaxEloDifference(conf, 0)
	for wait := time.Duration(0); wait <= 6*time.Minute; wait += 7 * time.Second {
		current := MaxEloDifference(conf, wait)
		require.GreaterOrEqual(t, current, previous, "wait %s", wait)
		previous = current
	}
}

func twoVsTwo(eloA, eloB float64, queueTime time.Time) Match {
	accounts := map[int64]models.Account{
		1: account(1, eloA), 2: account(2, eloA),
		3: account(3, eloB), 4: account(4, eloB),
	}
	s := NewMatchScratch(models.GameSubType{TeamAPlayers: 2, TeamBPlayers: 2})
	s.Push(Group{GroupID: 1, Members: []int64{1, 2}, QueueTime: queueTime})
	s.Push(Group{GroupID: 2, Members: []int64{3, 4}, QueueTime: queueTime})
	return s.ToMatch(accounts, eloKey)
}

func TestFilterMatch(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	now := time.Now()
	mm := newRanked(accountstore.NewMemoryStore(), subType3v3)

	g.Expect(mm.FilterMatch(g.TestScope, twoVsTwo(1200, 1220, now), now)).To(BeTrue())
	g.Expect(mm.FilterMatch(g.TestScope, twoVsTwo(1200, 1250, now), now)).To(BeFalse())
	g.Expect(mm.FilterMatch(g.TestScope, twoVsTwo(1200, 1250, now.Add(-time.Minute)), now)).To(BeTrue(), "the limit grows while groups wait")
	g.Expect(mm.FilterMatch(g.TestScope, twoVsTwo(1200, 1500, now.Add(-time.Hour)), now)).To(BeFalse())
}

func TestFilterMatch_HigherStartRelaxes(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	now := time.Now()
	match := twoVsTwo(1200, 1250, now)

	strict := newRanked(accountstore.NewMemoryStore(), subType3v3)
	relaxed := NewRankedMatchmaker(accountstore.NewMemoryStore(), subType3v3, eloKey, func() config.MatchmakingConfig {
		conf := testConfig()
		conf.MaxTeamEloDifferenceStart = 60
		return conf
	})

	g.Expect(strict.FilterMatch(g.TestScope, match, now)).To(BeFalse())
	g.Expect(relaxed.FilterMatch(g.TestScope, match, now)).To(BeTrue())
}

func TestReferenceWaitTime_UsesLongestWaitingHalf(t *testing.T) {
	now := time.Now()
	match := Match{
		TeamA: MatchTeam{Groups: []Group{{QueueTime: now.Add(-40 * time.Second)}, {QueueTime: now}}},
		TeamB: MatchTeam{Groups: []Group{{QueueTime: now.Add(-20 * time.Second)}, {QueueTime: now.Add(-time.Second)}}},
	}
	assert.Equal(t, 30*time.Second, referenceWaitTime(match, now))

	single := Match{TeamA: MatchTeam{Groups: []Group{{QueueTime: now.Add(-12 * time.Second)}}}}
	assert.Equal(t, 12*time.Second, referenceWaitTime(single, now))
}

func TestRankMatch_PrefersCloserTeams(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	now := time.Now()
	mm := newRanked(accountstore.NewMemoryStore(), subType3v3)

	even := mm.RankMatch(g.TestScope, twoVsTwo(1200, 1200, now), now)
	uneven := mm.RankMatch(g.TestScope, twoVsTwo(1200, 1300, now), now)
	waited := mm.RankMatch(g.TestScope, twoVsTwo(1200, 1200, now.Add(-5*time.Minute)), now)

	g.Expect(even).To(BeNumerically("~", 1+0.2+0.3+0.5+0.2, 1e-9))
	g.Expect(uneven).To(BeNumerically("<", even))
	g.Expect(waited).To(BeNumerically("~", even+1, 1e-9))
}

func TestTeamCompositionFactor(t *testing.T) {
	team := func(characters ...models.CharacterType) MatchTeam {
		result := MatchTeam{Accounts: map[int64]models.Account{}}
		for i, character := range characters {
			id := int64(i + 1)
			result.Groups = append(result.Groups, Group{GroupID: id, Members: []int64{id}})
			result.Accounts[id] = models.Account{AccountID: id, LastCharacter: character}
		}
		return result
	}

	premade := team(models.CharacterScoundrel, models.CharacterSniper)
	premade.Groups = premade.Groups[:1]
	assert.Equal(t, 1.0, teamCompositionFactor(premade))

	assert.InDelta(t, 0.3+0.3+0.2+0.2, teamCompositionFactor(team(models.CharacterRageBeast, models.CharacterNanoSmith, models.CharacterScoundrel, models.CharacterSniper)), 1e-9)
	assert.InDelta(t, 0.4, teamCompositionFactor(team(models.CharacterScoundrel, models.CharacterSniper, models.CharacterThief, models.CharacterTracker)), 1e-9)
	assert.InDelta(t, 0.6, teamCompositionFactor(team(models.CharacterRageBeast, models.CharacterBattleMonk, models.CharacterSpark, models.CharacterNanoSmith)), 1e-9)
	assert.Equal(t, 1.0, teamCompositionFactor(team(models.CharacterRageBeast, models.CharacterNanoSmith, models.CharacterNone, models.CharacterNone)))
}

func TestBlocksFactor(t *testing.T) {
	members := map[int64]models.Account{
		1: {AccountID: 1, BlockedAccounts: []int64{2, 3, 99}},
		2: {AccountID: 2, BlockedAccounts: []int64{1}},
		3: {AccountID: 3},
	}
	team := MatchTeam{
		Groups:   []Group{{GroupID: 1, Members: []int64{1}}, {GroupID: 2, Members: []int64{2, 3}}},
		Accounts: members,
	}
	assert.Equal(t, 1-3*0.125, blocksFactor(team))

	team.Groups = []Group{{GroupID: 1, Members: []int64{1, 2, 3}}}
	assert.Equal(t, 1.0, blocksFactor(team), "premade teams chose each other")
}

func TestConfidenceBalanceFactor(t *testing.T) {
	mm := newRanked(accountstore.NewMemoryStore(), subType3v3)
	match := Match{
		TeamA: MatchTeam{Accounts: map[int64]models.Account{
			1: {AccountID: 1, EloValues: map[string]models.EloValue{eloKey: {Elo: 1500, Confidence: 2}}},
		}},
		TeamB: MatchTeam{Accounts: map[int64]models.Account{2: {AccountID: 2}}},
	}
	assert.InDelta(t, 1-0.66, mm.confidenceBalanceFactor(match), 1e-9)

	match.TeamB = match.TeamA
	assert.Equal(t, 1.0, mm.confidenceBalanceFactor(match))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.5, ratio(50, 100))
	assert.Equal(t, 1.0, ratio(500, 100))
	assert.Equal(t, 1.0, ratio(1, 0))
	assert.Equal(t, 0.0, ratio(0, 0))
}
