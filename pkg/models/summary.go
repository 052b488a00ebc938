// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

// PlayerGameSummary holds the end-of-game statistics of one player as reported by the game server.
type PlayerGameSummary struct {
	PlayerID        int32         `json:"playerId"`
	AccountID       int64         `json:"accountId"`
	CharacterPlayed CharacterType `json:"characterPlayed"`
	CharacterName   string        `json:"characterName"`
	Team            Team          `json:"team"`
	TeamSlot        int32         `json:"teamSlot"`
	TotalGameTurns  int32         `json:"totalGameTurns"`

	NumAssists int32 `json:"numAssists"`
	NumDeaths  int32 `json:"numDeaths"`
	NumKills   int32 `json:"numKills"`

	TotalPlayerDamage             int32   `json:"totalPlayerDamage"`
	TotalPlayerDamageReceived     int32   `json:"totalPlayerDamageReceived"`
	TotalPlayerHealingFromAbility int32   `json:"totalPlayerHealingFromAbility"`
	TotalPlayerAbsorb             int32   `json:"totalPlayerAbsorb"`
	DamageEfficiency              float32 `json:"damageEfficiency"`
	EnemiesSightedPerTurn         float32 `json:"enemiesSightedPerTurn"`
	DamageAvoidedByEvades         int32   `json:"damageAvoidedByEvades"`
	MovementDeniedByMe            float32 `json:"movementDeniedByMe"`

	MyOutgoingExtraDamageFromEmpowered  int32   `json:"myOutgoingExtraDamageFromEmpowered"`
	MyOutgoingReducedDamageFromWeakened int32   `json:"myOutgoingReducedDamageFromWeakened"`
	TeamExtraEnergyByEnergizedFromMe    int32   `json:"teamExtraEnergyByEnergizedFromMe"`
	FreelancerStats                     []int32 `json:"freelancerStats,omitempty"`
}

func (p PlayerGameSummary) IsSpectator() bool {
	return p.Team == TeamSpectator
}

func (p PlayerGameSummary) numLives() float64 {
	return float64(max(p.NumDeaths+1, 1))
}

func (p PlayerGameSummary) numTurns() float64 {
	return float64(max(p.TotalGameTurns, 1))
}

// GetTotalHealingFromAbility is the healing the player's abilities produced.
func (p PlayerGameSummary) GetTotalHealingFromAbility() int32 {
	return p.TotalPlayerHealingFromAbility
}

// GetHealingAndAbsorb is the stat behind the Supportiest slot.
func (p PlayerGameSummary) GetHealingAndAbsorb() float64 {
	return float64(p.GetTotalHealingFromAbility() + p.TotalPlayerAbsorb)
}

func (p PlayerGameSummary) GetDamageDealtPerTurn() float64 {
	return float64(p.TotalPlayerDamage) / p.numTurns()
}

func (p PlayerGameSummary) GetDamageTakenPerLife() float64 {
	return float64(p.TotalPlayerDamageReceived) / p.numLives()
}

func (p PlayerGameSummary) GetDamageDonePerLife() float64 {
	return float64(p.TotalPlayerDamage) / p.numLives()
}

// GetSupportPerTurn counts healing, shields and damage boosts granted to allies per turn.
func (p PlayerGameSummary) GetSupportPerTurn() float64 {
	return float64(p.TotalPlayerHealingFromAbility+p.TotalPlayerAbsorb+p.MyOutgoingExtraDamageFromEmpowered) / p.numTurns()
}

// GetTankingPerLife counts damage soaked, evaded and weakened away per life.
func (p PlayerGameSummary) GetTankingPerLife() float64 {
	return float64(p.TotalPlayerDamageReceived+p.DamageAvoidedByEvades+p.MyOutgoingReducedDamageFromWeakened) / p.numLives()
}

// GetTeamMitigation is the damage the player prevented for the team.
func (p PlayerGameSummary) GetTeamMitigation() float64 {
	return float64(p.TotalPlayerAbsorb + p.MyOutgoingReducedDamageFromWeakened)
}

// GetBestFreelancerStat is the highest of the freelancer specific stats.
func (p PlayerGameSummary) GetBestFreelancerStat() float64 {
	if len(p.FreelancerStats) == 0 {
		return 0
	}
	best := p.FreelancerStats[0]
	for _, s := range p.FreelancerStats[1:] {
		best = max(best, s)
	}
	return float64(best)
}

type BadgeInfo struct {
	BadgeID int32 `json:"badgeId"`
}

type BadgeAndParticipantInfo struct {
	PlayerID               int32                `json:"playerId"`
	TeamID                 Team                 `json:"teamId"`
	TeamSlot               int32                `json:"teamSlot"`
	BadgesEarned           []BadgeInfo          `json:"badgesEarned"`
	TopParticipationEarned []TopParticipantSlot `json:"topParticipationEarned"`
	FreelancerPlayed       CharacterType        `json:"freelancerPlayed"`
}

// GameSummary is the end-of-game report of a bridge server.
type GameSummary struct {
	GameResult               GameResult                `json:"gameResult"`
	GameServerAddress        string                    `json:"gameServerAddress"`
	NumOfTurns               int32                     `json:"numOfTurns"`
	TeamAPoints              int32                     `json:"teamAPoints"`
	TeamBPoints              int32                     `json:"teamBPoints"`
	PlayerGameSummaryList    []PlayerGameSummary       `json:"playerGameSummaryList"`
	BadgeAndParticipantsInfo []BadgeAndParticipantInfo `json:"badgeAndParticipantsInfo"`
}

// GameMetrics is the periodic progress report of a running game.
type GameMetrics struct {
	CurrentTurn      int32   `json:"currentTurn"`
	TeamAPoints      int32   `json:"teamAPoints"`
	TeamBPoints      int32   `json:"teamBPoints"`
	AverageFrameTime float32 `json:"averageFrameTime"`
}
