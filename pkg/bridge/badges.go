// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"cmp"
	"slices"

	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// Percentile tier thresholds, each strictly exceeded.
var percentileThresholds = [3]float64{50, 75, 80}

// rankDescending returns the 0-based rank of every item after a stable sort by key, highest first.
// Equal keys keep list order, so the first of several equal maximums gets rank 0.
func rankDescending[T any](items []T, key func(T) float64) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(key(items[b]), key(items[a]))
	})

	ranks := make([]int, len(items))
	for rank, i := range order {
		ranks[i] = rank
	}
	return ranks
}

// Percentile of a 0-based rank among n players.
func Percentile(rank, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(n-rank-1) * 100.0 / float64(n)
}

type statDimension struct {
	stat func(models.PlayerGameSummary) float64
	// tiers are awarded for >50, >75 and >80 percentile. Zero means the dimension has no tiers.
	tiers [3]int32
	// top is awarded to the player with the highest stat. Zero means none.
	top int32
}

var (
	enemiesSightedDimension = statDimension{
		stat:  func(p models.PlayerGameSummary) float64 { return float64(p.EnemiesSightedPerTurn) },
		tiers: [3]int32{4, 5, 6},
	}

	rankedDimensions = []statDimension{
		{
			stat:  func(p models.PlayerGameSummary) float64 { return p.GetBestFreelancerStat() },
			tiers: [3]int32{10, 11, 12},
		},
		{
			stat:  func(p models.PlayerGameSummary) float64 { return p.GetDamageDealtPerTurn() },
			tiers: [3]int32{14, 15, 16},
			top:   13,
		},
		{
			stat:  func(p models.PlayerGameSummary) float64 { return float64(p.DamageEfficiency) },
			tiers: [3]int32{17, 18, 19},
		},
		{
			stat:  func(p models.PlayerGameSummary) float64 { return p.GetDamageDonePerLife() },
			tiers: [3]int32{21, 22, 23},
		},
		{
			stat:  func(p models.PlayerGameSummary) float64 { return p.GetDamageTakenPerLife() },
			tiers: [3]int32{24, 25, 26},
			top:   20,
		},
		{
			stat:  func(p models.PlayerGameSummary) float64 { return float64(p.DamageAvoidedByEvades) },
			tiers: [3]int32{27, 28, 29},
		},
		{
			stat:  func(p models.PlayerGameSummary) float64 { return float64(p.MovementDeniedByMe) },
			tiers: [3]int32{30, 31, 32},
		},
		{
			stat: func(p models.PlayerGameSummary) float64 { return p.GetTeamMitigation() },
			top:  33,
		},
		{
			stat:  func(p models.PlayerGameSummary) float64 { return p.GetHealingAndAbsorb() },
			tiers: [3]int32{34, 35, 36},
		},
		{
			stat:  func(p models.PlayerGameSummary) float64 { return float64(p.MyOutgoingExtraDamageFromEmpowered) },
			tiers: [3]int32{37, 38, 39},
		},
		{
			stat:  func(p models.PlayerGameSummary) float64 { return float64(p.TeamExtraEnergyByEnergizedFromMe) },
			tiers: [3]int32{40, 41, 42},
		},
	}
)

type rankedDimension struct {
	statDimension
	ranks []int
}

func rankDimension(players []models.PlayerGameSummary, d statDimension) rankedDimension {
	return rankedDimension{statDimension: d, ranks: rankDescending(players, d.stat)}
}

// award appends the badges of player i. Only the player ranked first is eligible for percentile tiers.
func (d rankedDimension) award(i int, badges []models.BadgeInfo) []models.BadgeInfo {
	if d.ranks[i] != 0 {
		return badges
	}
	if d.top != 0 {
		badges = append(badges, models.BadgeInfo{BadgeID: d.top})
	}
	if d.tiers[0] == 0 {
		return badges
	}
	percentile := Percentile(d.ranks[i], len(d.ranks))
	for t, threshold := range percentileThresholds {
		if percentile > threshold {
			badges = append(badges, models.BadgeInfo{BadgeID: d.tiers[t]})
		}
	}
	return badges
}

func (d rankedDimension) leader() int {
	return pie.FindFirstUsing(d.ranks, func(rank int) bool { return rank == 0 })
}

func assistBadges(p models.PlayerGameSummary) []models.BadgeInfo {
	switch p.NumAssists {
	case 3:
		return []models.BadgeInfo{{BadgeID: 1}}
	case 4:
		return []models.BadgeInfo{{BadgeID: 2}}
	case 5:
		return []models.BadgeInfo{{BadgeID: 3}}
	default:
		return nil
	}
}

// compositeBadge rewards players who did a bit of everything. Only the highest matching tier is given.
func compositeBadge(p models.PlayerGameSummary) (models.BadgeInfo, bool) {
	damage, support, tanking := p.GetDamageDealtPerTurn(), p.GetSupportPerTurn(), p.GetTankingPerLife()
	switch {
	case damage >= 20 && support >= 20 && tanking >= 200:
		return models.BadgeInfo{BadgeID: 9}, true
	case damage >= 15 && support >= 15 && tanking >= 150:
		return models.BadgeInfo{BadgeID: 8}, true
	case damage >= 10 && support >= 10 && tanking >= 100:
		return models.BadgeInfo{BadgeID: 7}, true
	default:
		return models.BadgeInfo{}, false
	}
}

// ComputeBadges builds the badge and top participant list of a finished game, one entry per player
// in summary order.
func ComputeBadges(summary models.GameSummary) []models.BadgeAndParticipantInfo {
	players := summary.PlayerGameSummaryList
	if len(players) == 0 {
		return []models.BadgeAndParticipantInfo{}
	}

	enemiesSighted := rankDimension(players, enemiesSightedDimension)
	ranked := pie.Map(rankedDimensions, func(d statDimension) rankedDimension {
		return rankDimension(players, d)
	})

	badges := make([][]models.BadgeInfo, len(players))
	for i, p := range players {
		earned := assistBadges(p)
		earned = enemiesSighted.award(i, earned)
		if badge, ok := compositeBadge(p); ok {
			earned = append(earned, badge)
		}
		for _, d := range ranked {
			earned = d.award(i, earned)
		}
		if earned == nil {
			earned = []models.BadgeInfo{}
		}
		badges[i] = earned
	}

	supportiest := rankDimension(players, statDimension{stat: models.PlayerGameSummary.GetHealingAndAbsorb}).leader()
	deadliest := rankDimension(players, statDimension{stat: func(p models.PlayerGameSummary) float64 {
		return float64(p.TotalPlayerDamage)
	}}).leader()
	tankiest := rankDimension(players, statDimension{stat: func(p models.PlayerGameSummary) float64 {
		return float64(p.TotalPlayerDamageReceived)
	}}).leader()
	mostDecorated := mostDecoratedPlayer(badges)

	result := make([]models.BadgeAndParticipantInfo, 0, len(players))
	for i, p := range players {
		slots := []models.TopParticipantSlot{}
		if i == supportiest {
			slots = append(slots, models.TopParticipantSupportiest)
		}
		if i == deadliest {
			slots = append(slots, models.TopParticipantDeadliest)
		}
		if i == tankiest {
			slots = append(slots, models.TopParticipantTankiest)
		}
		if i == mostDecorated {
			slots = append(slots, models.TopParticipantMostDecorated)
		}

		result = append(result, models.BadgeAndParticipantInfo{
			PlayerID:               p.PlayerID,
			TeamID:                 resultTeam(p.Team, summary.GameResult),
			TeamSlot:               p.TeamSlot,
			BadgesEarned:           badges[i],
			TopParticipationEarned: slots,
			FreelancerPlayed:       p.CharacterPlayed,
		})
	}
	return result
}

// mostDecoratedPlayer returns the first player with the highest badge count, -1 when nobody earned a badge.
func mostDecoratedPlayer(badges [][]models.BadgeInfo) int {
	best, bestCount := -1, 0
	for i, earned := range badges {
		if len(earned) > bestCount {
			best, bestCount = i, len(earned)
		}
	}
	return best
}

// resultTeam reports winners as TeamA and everyone else as TeamB, the way the results screen expects.
func resultTeam(team models.Team, result models.GameResult) models.Team {
	if team == models.TeamA && result == models.GameResultTeamAWon {
		return models.TeamA
	}
	if team == models.TeamB && result == models.GameResultTeamBWon {
		return models.TeamA
	}
	return models.TeamB
}
