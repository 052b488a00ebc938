// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AccelByte/extend-lobby-server/pkg/accountstore"
	"github.com/AccelByte/extend-lobby-server/pkg/config"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/mathutil"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

const accountLoadConcurrency = 8

// RankedMatchmaker balances teams by elo, queue time, roles, blocks and rating confidence.
type RankedMatchmaker struct {
	accounts accountstore.Store
	subType  models.GameSubType
	eloKey   string
	conf     func() config.MatchmakingConfig
}

func NewRankedMatchmaker(accounts accountstore.Store, subType models.GameSubType, eloKey string, conf func() config.MatchmakingConfig) *RankedMatchmaker {
	return &RankedMatchmaker{
		accounts: accounts,
		subType:  subType,
		eloKey:   eloKey,
		conf:     conf,
	}
}

// FindMatches loads the accounts of every queued player once and returns each distinct full match.
func (m *RankedMatchmaker) FindMatches(scope *envelope.Scope, groups []Group) ([]Match, error) {
	accounts, err := m.loadAccounts(scope, groups)
	if err != nil {
		return nil, err
	}

	var matches []Match
	processed := make(map[int64]struct{})
	if err := m.findMatches(NewMatchScratch(m.subType), groups, processed, accounts, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (m *RankedMatchmaker) findMatches(
	scratch *MatchScratch,
	groups []Group,
	processed map[int64]struct{},
	accounts map[int64]models.Account,
	matches *[]Match,
) error {
	for _, g := range groups {
		if !scratch.Push(g) {
			continue
		}
		if scratch.IsMatch() {
			hash := scratch.Hash()
			if _, seen := processed[hash]; !seen {
				processed[hash] = struct{}{}
				*matches = append(*matches, scratch.ToMatch(accounts, m.eloKey))
			}
		} else if err := m.findMatches(scratch, groups, processed, accounts, matches); err != nil {
			return err
		}
		if err := scratch.Pop(); err != nil {
			return err
		}
	}
	return nil
}

func (m *RankedMatchmaker) loadAccounts(scope *envelope.Scope, groups []Group) (map[int64]models.Account, error) {
	var mu sync.Mutex
	accounts := make(map[int64]models.Account)

	g, ctx := errgroup.WithContext(scope.Ctx)
	g.SetLimit(accountLoadConcurrency)
	for _, group := range groups {
		for _, accountID := range group.Members {
			g.Go(func() error {
				account, err := m.accounts.GetAccount(ctx, accountID)
				if errors.Is(err, models.ErrAccountNotFound) {
					scope.Log.Warnf("Account %d is queued but not found, using defaults", accountID)
					account, err = models.Account{AccountID: accountID}, nil
				}
				if err != nil {
					return fmt.Errorf("unable to load account %d: %w", accountID, err)
				}
				mu.Lock()
				accounts[accountID] = account
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// MaxEloDifference is the allowed team elo gap for a match whose reference wait time is waitTime.
func MaxEloDifference(conf config.MatchmakingConfig, waitTime time.Duration) int {
	progress := 1.0
	if conf.MaxTeamEloDifferenceWaitTime > 0 {
		progress = mathutil.Cap(waitTime.Seconds() / conf.MaxTeamEloDifferenceWaitTime.Seconds())
	}
	growth := float64(conf.MaxTeamEloDifference-conf.MaxTeamEloDifferenceStart) * progress
	return conf.MaxTeamEloDifferenceStart + int(math.RoundToEven(growth))
}

// referenceWaitTime is the mean wait of the longest waiting half of the groups, at least one group.
func referenceWaitTime(match Match, now time.Time) time.Duration {
	groups := match.Groups()
	waits := make([]float64, len(groups))
	for i, g := range groups {
		waits[i] = g.WaitTime(now).Seconds()
	}
	seconds := mathutil.MeanOfLargest(waits, max(1, len(groups)/2))
	return time.Duration(seconds * float64(time.Second))
}

// FilterMatch rejects matches whose team elo gap exceeds the limit for how long the groups waited.
func (m *RankedMatchmaker) FilterMatch(scope *envelope.Scope, match Match, now time.Time) bool {
	waitTime := referenceWaitTime(match, now)
	maxEloDiff := MaxEloDifference(m.conf(), waitTime)
	eloDiff := math.Abs(match.TeamA.Elo - match.TeamB.Elo)
	allowed := eloDiff <= float64(maxEloDiff)

	verdict := "Disallowed"
	if allowed {
		verdict = "Allowed"
	}
	scope.Log.Debugf("%s %s, elo diff %.0f/%d, reference queue time %s", verdict, match, eloDiff, maxEloDiff, waitTime.Round(time.Second))
	return allowed
}

// RankMatch is the weighted sum of the match factors, each in [0, 1].
func (m *RankedMatchmaker) RankMatch(scope *envelope.Scope, match Match, now time.Time) float64 {
	conf := m.conf()

	teamEloDifference := 1 - ratio(math.Abs(match.TeamA.Elo-match.TeamB.Elo), float64(conf.MaxTeamEloDifference))
	teammateEloDifference := (1 - ratio(match.TeamA.MaxElo-match.TeamA.MinElo, conf.TeammateEloDifferenceWeightCap) +
		1 - ratio(match.TeamB.MaxElo-match.TeamB.MinElo, conf.TeammateEloDifferenceWeightCap)) * 0.5

	groups := match.Groups()
	waits := make([]float64, len(groups))
	for i, g := range groups {
		waits[i] = g.WaitTime(now).Seconds()
	}
	waitTime := ratio(mathutil.QuadraticMean(waits), conf.WaitingTimeWeightCap.Seconds())

	teamComposition := (teamCompositionFactor(match.TeamA) + teamCompositionFactor(match.TeamB)) * 0.5
	teamBlocks := (blocksFactor(match.TeamA) + blocksFactor(match.TeamB)) * 0.5
	confidenceBalance := m.confidenceBalanceFactor(match)

	score := teamEloDifference*conf.TeamEloDifferenceWeight +
		teammateEloDifference*conf.TeammateEloDifferenceWeight +
		waitTime*conf.WaitingTimeWeight +
		teamComposition*conf.TeamCompositionWeight +
		teamBlocks*conf.TeamBlockWeight +
		confidenceBalance*conf.TeamConfidenceBalanceWeight

	scope.Log.Debugf("Score %.2f (tElo:%.2f, tmElo:%.2f, q:%.2f, tComp:%.2f, blocks:%.2f, tConf:%.2f) %s",
		score, teamEloDifference, teammateEloDifference, waitTime, teamComposition, teamBlocks, confidenceBalance, match)
	return score
}

// ratio is v/limit capped to [0, 1]. A limit of zero saturates on any positive value.
func ratio(v, limit float64) float64 {
	if limit <= 0 {
		if v > 0 {
			return 1
		}
		return 0
	}
	return mathutil.Cap(v / limit)
}

// teamCompositionFactor rewards a tank, a support, up to two assassins and fill picks. A premade team scores 1.
func teamCompositionFactor(team MatchTeam) float64 {
	if len(team.Groups) == 1 {
		return 1
	}

	roles := map[models.CharacterRole]int{}
	for _, account := range team.Accounts {
		roles[models.RoleOf(account.LastCharacter)]++
	}

	score := 0.0
	if roles[models.CharacterRoleTank] > 0 {
		score += 0.3
	}
	if roles[models.CharacterRoleSupport] > 0 {
		score += 0.3
	}
	score += 0.2 * float64(min(roles[models.CharacterRoleAssassin], 2))
	score += 0.27 * float64(min(roles[models.CharacterRoleNone], 4))
	return min(score, 1)
}

// blocksFactor loses 0.125 for every member blocking a teammate. A premade team scores 1.
func blocksFactor(team MatchTeam) float64 {
	if len(team.Groups) == 1 {
		return 1
	}

	teammates := team.AccountIDs()
	blocks := 0
	for _, account := range team.Accounts {
		for _, teammate := range teammates {
			if account.HasBlocked(teammate) {
				blocks++
			}
		}
	}
	return 1 - min(float64(blocks)*0.125, 1)
}

func (m *RankedMatchmaker) confidenceBalanceFactor(match Match) float64 {
	diff := m.confidence(match.TeamA) - m.confidence(match.TeamB)
	if diff < 0 {
		diff = -diff
	}
	return 1 - mathutil.Cap(float64(diff)*0.33)
}

func (m *RankedMatchmaker) confidence(team MatchTeam) int {
	total := 0
	for _, account := range team.Accounts {
		_, confidence := account.GetElo(m.eloKey)
		total += confidence
	}
	return total
}
