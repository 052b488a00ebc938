// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"sort"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// Field order in this file is the wire layout shared with the game server build. Append only.

func writeSessionInfo(w *Writer, s models.SessionInfo) {
	w.WriteInt64(s.AccountID)
	w.WriteInt64(s.SessionToken)
	w.WriteInt64(s.ReconnectSessionToken)
	w.WriteString(s.IPAddress)
	w.WriteString(s.Handle)
	w.WriteString(s.UserName)
	w.WriteString(s.BuildVersion)
	w.WriteString(s.ProcessCode)
	w.WriteString(s.ConnectionAddress)
	w.WriteBool(s.IsBinary)
}

func readSessionInfo(r *Reader) models.SessionInfo {
	return models.SessionInfo{
		AccountID:             r.ReadInt64(),
		SessionToken:          r.ReadInt64(),
		ReconnectSessionToken: r.ReadInt64(),
		IPAddress:             r.ReadString(),
		Handle:                r.ReadString(),
		UserName:              r.ReadString(),
		BuildVersion:          r.ReadString(),
		ProcessCode:           r.ReadString(),
		ConnectionAddress:     r.ReadString(),
		IsBinary:              r.ReadBool(),
	}
}

func writePlayerInfo(w *Writer, p models.PlayerInfo) {
	w.WriteInt64(p.AccountID)
	w.WriteInt32(p.PlayerID)
	w.WriteString(p.Handle)
	w.WriteInt32(int32(p.TeamID))
	w.WriteInt32(int32(p.CharacterType))
	w.WriteInt32(int32(p.ReadyState))
	w.WriteBool(p.IsSpectator)
	w.WriteBool(p.IsNPCBot)
	w.WriteBool(p.ReplacedWithBots)
}

func readPlayerInfo(r *Reader) models.PlayerInfo {
	return models.PlayerInfo{
		AccountID:        r.ReadInt64(),
		PlayerID:         r.ReadInt32(),
		Handle:           r.ReadString(),
		TeamID:           models.Team(r.ReadInt32()),
		CharacterType:    models.CharacterType(r.ReadInt32()),
		ReadyState:       models.ReadyState(r.ReadInt32()),
		IsSpectator:      r.ReadBool(),
		IsNPCBot:         r.ReadBool(),
		ReplacedWithBots: r.ReadBool(),
	}
}

func writeOptionalPlayerInfo(w *Writer, p *models.PlayerInfo) {
	w.WriteBool(p != nil)
	if p != nil {
		writePlayerInfo(w, *p)
	}
}

func readOptionalPlayerInfo(r *Reader) *models.PlayerInfo {
	if !r.ReadBool() {
		return nil
	}
	p := readPlayerInfo(r)
	return &p
}

func writeTeamInfo(w *Writer, t models.TeamInfo) {
	w.WriteInt32(int32(len(t.TeamPlayerInfo)))
	for _, p := range t.TeamPlayerInfo {
		writePlayerInfo(w, p)
	}
}

func readTeamInfo(r *Reader) models.TeamInfo {
	n := r.readCount()
	players := make([]models.PlayerInfo, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		players = append(players, readPlayerInfo(r))
	}
	return models.TeamInfo{TeamPlayerInfo: players}
}

func writeGameConfig(w *Writer, c models.GameConfig) {
	w.WriteInt32(int32(c.GameType))
	w.WriteString(c.SubType)
	w.WriteString(c.Map)
	w.WriteString(c.RoomName)
	w.WriteInt32(c.TeamAPlayers)
	w.WriteInt32(c.TeamBPlayers)
	w.WriteInt32(c.TeamABots)
	w.WriteInt32(c.TeamBBots)
	w.WriteInt32(c.Spectators)
	w.WriteInt32(c.ResolveTimeoutLimit)
	w.WriteInt32(c.GameServerShutdownTime)
	w.WriteBool(c.IsActive)
}

func readGameConfig(r *Reader) models.GameConfig {
	return models.GameConfig{
		GameType:               models.GameType(r.ReadInt32()),
		SubType:                r.ReadString(),
		Map:                    r.ReadString(),
		RoomName:               r.ReadString(),
		TeamAPlayers:           r.ReadInt32(),
		TeamBPlayers:           r.ReadInt32(),
		TeamABots:              r.ReadInt32(),
		TeamBBots:              r.ReadInt32(),
		Spectators:             r.ReadInt32(),
		ResolveTimeoutLimit:    r.ReadInt32(),
		GameServerShutdownTime: r.ReadInt32(),
		IsActive:               r.ReadBool(),
	}
}

func writeGameInfo(w *Writer, g models.GameInfo) {
	w.WriteString(g.GameServerProcessCode)
	w.WriteString(g.GameServerAddress)
	w.WriteInt32(int32(g.GameStatus))
	w.WriteInt32(int32(g.GameResult))
	writeGameConfig(w, g.GameConfig)
	w.WriteInt32(g.AcceptedPlayers)
	w.WriteInt32(g.ActivePlayers)
	w.WriteInt32(g.ActiveHumanPlayers)
	w.WriteDuration(g.LoadoutSelectTimeout)
	w.WriteTime(g.CreateTimestamp)
}

func readGameInfo(r *Reader) models.GameInfo {
	return models.GameInfo{
		GameServerProcessCode: r.ReadString(),
		GameServerAddress:     r.ReadString(),
		GameStatus:            models.GameStatus(r.ReadInt32()),
		GameResult:            models.GameResult(r.ReadInt32()),
		GameConfig:            readGameConfig(r),
		AcceptedPlayers:       r.ReadInt32(),
		ActivePlayers:         r.ReadInt32(),
		ActiveHumanPlayers:    r.ReadInt32(),
		LoadoutSelectTimeout:  r.ReadDuration(),
		CreateTimestamp:       r.ReadTime(),
	}
}

func writeOptionalGameInfo(w *Writer, g *models.GameInfo) {
	w.WriteBool(g != nil)
	if g != nil {
		writeGameInfo(w, *g)
	}
}

func readOptionalGameInfo(r *Reader) *models.GameInfo {
	if !r.ReadBool() {
		return nil
	}
	g := readGameInfo(r)
	return &g
}

// writeSessionInfoMap writes entries ordered by player id so equal maps encode to equal bytes.
func writeSessionInfoMap(w *Writer, m map[int32]models.SessionInfo) {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	w.WriteInt32(int32(len(keys)))
	for _, k := range keys {
		w.WriteInt32(k)
		writeSessionInfo(w, m[k])
	}
}

func readSessionInfoMap(r *Reader) map[int32]models.SessionInfo {
	n := r.readCount()
	m := make(map[int32]models.SessionInfo, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		k := r.ReadInt32()
		m[k] = readSessionInfo(r)
	}
	return m
}

func writePlayerGameSummary(w *Writer, p models.PlayerGameSummary) {
	w.WriteInt32(p.PlayerID)
	w.WriteInt64(p.AccountID)
	w.WriteInt32(int32(p.CharacterPlayed))
	w.WriteString(p.CharacterName)
	w.WriteInt32(int32(p.Team))
	w.WriteInt32(p.TeamSlot)
	w.WriteInt32(p.TotalGameTurns)
	w.WriteInt32(p.NumAssists)
	w.WriteInt32(p.NumDeaths)
	w.WriteInt32(p.NumKills)
	w.WriteInt32(p.TotalPlayerDamage)
	w.WriteInt32(p.TotalPlayerDamageReceived)
	w.WriteInt32(p.TotalPlayerHealingFromAbility)
	w.WriteInt32(p.TotalPlayerAbsorb)
	w.WriteFloat32(p.DamageEfficiency)
	w.WriteFloat32(p.EnemiesSightedPerTurn)
	w.WriteInt32(p.DamageAvoidedByEvades)
	w.WriteFloat32(p.MovementDeniedByMe)
	w.WriteInt32(p.MyOutgoingExtraDamageFromEmpowered)
	w.WriteInt32(p.MyOutgoingReducedDamageFromWeakened)
	w.WriteInt32(p.TeamExtraEnergyByEnergizedFromMe)
	w.WriteInt32(int32(len(p.FreelancerStats)))
	for _, s := range p.FreelancerStats {
		w.WriteInt32(s)
	}
}

func readPlayerGameSummary(r *Reader) models.PlayerGameSummary {
	p := models.PlayerGameSummary{
		PlayerID:                            r.ReadInt32(),
		AccountID:                           r.ReadInt64(),
		CharacterPlayed:                     models.CharacterType(r.ReadInt32()),
		CharacterName:                       r.ReadString(),
		Team:                                models.Team(r.ReadInt32()),
		TeamSlot:                            r.ReadInt32(),
		TotalGameTurns:                      r.ReadInt32(),
		NumAssists:                          r.ReadInt32(),
		NumDeaths:                           r.ReadInt32(),
		NumKills:                            r.ReadInt32(),
		TotalPlayerDamage:                   r.ReadInt32(),
		TotalPlayerDamageReceived:           r.ReadInt32(),
		TotalPlayerHealingFromAbility:       r.ReadInt32(),
		TotalPlayerAbsorb:                   r.ReadInt32(),
		DamageEfficiency:                    r.ReadFloat32(),
		EnemiesSightedPerTurn:               r.ReadFloat32(),
		DamageAvoidedByEvades:               r.ReadInt32(),
		MovementDeniedByMe:                  r.ReadFloat32(),
		MyOutgoingExtraDamageFromEmpowered:  r.ReadInt32(),
		MyOutgoingReducedDamageFromWeakened: r.ReadInt32(),
		TeamExtraEnergyByEnergizedFromMe:    r.ReadInt32(),
	}
	if n := r.readCount(); n > 0 {
		p.FreelancerStats = make([]int32, 0, n)
		for i := 0; i < n && r.Err() == nil; i++ {
			p.FreelancerStats = append(p.FreelancerStats, r.ReadInt32())
		}
	}
	return p
}

func writeBadgeAndParticipantInfo(w *Writer, b models.BadgeAndParticipantInfo) {
	w.WriteInt32(b.PlayerID)
	w.WriteInt32(int32(b.TeamID))
	w.WriteInt32(b.TeamSlot)
	w.WriteInt32(int32(len(b.BadgesEarned)))
	for _, badge := range b.BadgesEarned {
		w.WriteInt32(badge.BadgeID)
	}
	w.WriteInt32(int32(len(b.TopParticipationEarned)))
	for _, slot := range b.TopParticipationEarned {
		w.WriteInt32(int32(slot))
	}
	w.WriteInt32(int32(b.FreelancerPlayed))
}

func readBadgeAndParticipantInfo(r *Reader) models.BadgeAndParticipantInfo {
	b := models.BadgeAndParticipantInfo{
		PlayerID: r.ReadInt32(),
		TeamID:   models.Team(r.ReadInt32()),
		TeamSlot: r.ReadInt32(),
	}
	n := r.readCount()
	b.BadgesEarned = make([]models.BadgeInfo, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		b.BadgesEarned = append(b.BadgesEarned, models.BadgeInfo{BadgeID: r.ReadInt32()})
	}
	n = r.readCount()
	b.TopParticipationEarned = make([]models.TopParticipantSlot, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		b.TopParticipationEarned = append(b.TopParticipationEarned, models.TopParticipantSlot(r.ReadInt32()))
	}
	b.FreelancerPlayed = models.CharacterType(r.ReadInt32())
	return b
}

func writeGameSummary(w *Writer, s *models.GameSummary) {
	w.WriteBool(s != nil)
	if s == nil {
		return
	}
	w.WriteInt32(int32(s.GameResult))
	w.WriteString(s.GameServerAddress)
	w.WriteInt32(s.NumOfTurns)
	w.WriteInt32(s.TeamAPoints)
	w.WriteInt32(s.TeamBPoints)
	w.WriteInt32(int32(len(s.PlayerGameSummaryList)))
	for _, p := range s.PlayerGameSummaryList {
		writePlayerGameSummary(w, p)
	}
	w.WriteInt32(int32(len(s.BadgeAndParticipantsInfo)))
	for _, b := range s.BadgeAndParticipantsInfo {
		writeBadgeAndParticipantInfo(w, b)
	}
}

func readGameSummary(r *Reader) *models.GameSummary {
	if !r.ReadBool() {
		return nil
	}
	s := &models.GameSummary{
		GameResult:        models.GameResult(r.ReadInt32()),
		GameServerAddress: r.ReadString(),
		NumOfTurns:        r.ReadInt32(),
		TeamAPoints:       r.ReadInt32(),
		TeamBPoints:       r.ReadInt32(),
	}
	n := r.readCount()
	s.PlayerGameSummaryList = make([]models.PlayerGameSummary, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		s.PlayerGameSummaryList = append(s.PlayerGameSummaryList, readPlayerGameSummary(r))
	}
	n = r.readCount()
	s.BadgeAndParticipantsInfo = make([]models.BadgeAndParticipantInfo, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		s.BadgeAndParticipantsInfo = append(s.BadgeAndParticipantsInfo, readBadgeAndParticipantInfo(r))
	}
	return s
}

func writeGameMetrics(w *Writer, m *models.GameMetrics) {
	w.WriteBool(m != nil)
	if m == nil {
		return
	}
	w.WriteInt32(m.CurrentTurn)
	w.WriteInt32(m.TeamAPoints)
	w.WriteInt32(m.TeamBPoints)
	w.WriteFloat32(m.AverageFrameTime)
}

func readGameMetrics(r *Reader) *models.GameMetrics {
	if !r.ReadBool() {
		return nil
	}
	return &models.GameMetrics{
		CurrentTurn:      r.ReadInt32(),
		TeamAPoints:      r.ReadInt32(),
		TeamBPoints:      r.ReadInt32(),
		AverageFrameTime: r.ReadFloat32(),
	}
}
