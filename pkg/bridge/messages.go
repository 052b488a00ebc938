// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// Message is one payload of the bridge protocol.
type Message interface {
	MessageType() MessageType
	Serialize(w *Writer)
	Deserialize(r *Reader)
}

type RegisterGameServerRequest struct {
	SessionInfo models.SessionInfo `json:"sessionInfo"`
	IsPrivate   bool               `json:"isPrivate"`
}

func (*RegisterGameServerRequest) MessageType() MessageType {
	return MessageTypeRegisterGameServerRequest
}

func (m *RegisterGameServerRequest) Serialize(w *Writer) {
	writeSessionInfo(w, m.SessionInfo)
	w.WriteBool(m.IsPrivate)
}

func (m *RegisterGameServerRequest) Deserialize(r *Reader) {
	m.SessionInfo = readSessionInfo(r)
	m.IsPrivate = r.ReadBool()
}

type RegisterGameServerResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func (*RegisterGameServerResponse) MessageType() MessageType {
	return MessageTypeRegisterGameServerResponse
}

func (m *RegisterGameServerResponse) Serialize(w *Writer) {
	w.WriteBool(m.Success)
	w.WriteString(m.ErrorMessage)
}

func (m *RegisterGameServerResponse) Deserialize(r *Reader) {
	m.Success = r.ReadBool()
	m.ErrorMessage = r.ReadString()
}

type LaunchGameRequest struct {
	GameInfo    models.GameInfo              `json:"gameInfo"`
	TeamInfo    models.TeamInfo              `json:"teamInfo"`
	SessionInfo map[int32]models.SessionInfo `json:"sessionInfo"`
}

func (*LaunchGameRequest) MessageType() MessageType {
	return MessageTypeLaunchGameRequest
}

func (m *LaunchGameRequest) Serialize(w *Writer) {
	writeGameInfo(w, m.GameInfo)
	writeTeamInfo(w, m.TeamInfo)
	writeSessionInfoMap(w, m.SessionInfo)
}

func (m *LaunchGameRequest) Deserialize(r *Reader) {
	m.GameInfo = readGameInfo(r)
	m.TeamInfo = readTeamInfo(r)
	m.SessionInfo = readSessionInfoMap(r)
}

type JoinGameServerRequest struct {
	OrigRequestID         int32              `json:"origRequestId"`
	GameServerProcessCode string             `json:"gameServerProcessCode"`
	PlayerInfo            models.PlayerInfo  `json:"playerInfo"`
	SessionInfo           models.SessionInfo `json:"sessionInfo"`
}

func (*JoinGameServerRequest) MessageType() MessageType {
	return MessageTypeJoinGameServerRequest
}

func (m *JoinGameServerRequest) Serialize(w *Writer) {
	w.WriteInt32(m.OrigRequestID)
	w.WriteString(m.GameServerProcessCode)
	writePlayerInfo(w, m.PlayerInfo)
	writeSessionInfo(w, m.SessionInfo)
}

func (m *JoinGameServerRequest) Deserialize(r *Reader) {
	m.OrigRequestID = r.ReadInt32()
	m.GameServerProcessCode = r.ReadString()
	m.PlayerInfo = readPlayerInfo(r)
	m.SessionInfo = readSessionInfo(r)
}

type ShutdownGameRequest struct{}

func (*ShutdownGameRequest) MessageType() MessageType {
	return MessageTypeShutdownGameRequest
}

func (*ShutdownGameRequest) Serialize(*Writer) {}

func (*ShutdownGameRequest) Deserialize(*Reader) {}

type DisconnectPlayerRequest struct {
	SessionInfo models.SessionInfo `json:"sessionInfo"`
	PlayerInfo  models.PlayerInfo  `json:"playerInfo"`
	GameResult  models.GameResult  `json:"gameResult"`
}

func (*DisconnectPlayerRequest) MessageType() MessageType {
	return MessageTypeDisconnectPlayerRequest
}

func (m *DisconnectPlayerRequest) Serialize(w *Writer) {
	writeSessionInfo(w, m.SessionInfo)
	writePlayerInfo(w, m.PlayerInfo)
	w.WriteInt32(int32(m.GameResult))
}

func (m *DisconnectPlayerRequest) Deserialize(r *Reader) {
	m.SessionInfo = readSessionInfo(r)
	m.PlayerInfo = readPlayerInfo(r)
	m.GameResult = models.GameResult(r.ReadInt32())
}

type ReconnectPlayerRequest struct {
	AccountID    int64 `json:"accountId"`
	NewSessionID int64 `json:"newSessionId"`
}

func (*ReconnectPlayerRequest) MessageType() MessageType {
	return MessageTypeReconnectPlayerRequest
}

func (m *ReconnectPlayerRequest) Serialize(w *Writer) {
	w.WriteInt64(m.AccountID)
	w.WriteInt64(m.NewSessionID)
}

func (m *ReconnectPlayerRequest) Deserialize(r *Reader) {
	m.AccountID = r.ReadInt64()
	m.NewSessionID = r.ReadInt64()
}

// ServerGameSummaryNotification ends a game. GameSummary is nil when the server could not produce one.
type ServerGameSummaryNotification struct {
	GameSummary *models.GameSummary `json:"gameSummary"`
}

func (*ServerGameSummaryNotification) MessageType() MessageType {
	return MessageTypeServerGameSummaryNotification
}

func (m *ServerGameSummaryNotification) Serialize(w *Writer) {
	writeGameSummary(w, m.GameSummary)
}

func (m *ServerGameSummaryNotification) Deserialize(r *Reader) {
	m.GameSummary = readGameSummary(r)
}

type PlayerDisconnectedNotification struct {
	SessionInfo models.SessionInfo `json:"sessionInfo"`
	PlayerInfo  models.PlayerInfo  `json:"playerInfo"`
}

func (*PlayerDisconnectedNotification) MessageType() MessageType {
	return MessageTypePlayerDisconnectedNotification
}

func (m *PlayerDisconnectedNotification) Serialize(w *Writer) {
	writeSessionInfo(w, m.SessionInfo)
	writePlayerInfo(w, m.PlayerInfo)
}

func (m *PlayerDisconnectedNotification) Deserialize(r *Reader) {
	m.SessionInfo = readSessionInfo(r)
	m.PlayerInfo = readPlayerInfo(r)
}

type ServerGameMetricsNotification struct {
	GameMetrics *models.GameMetrics `json:"gameMetrics"`
}

func (*ServerGameMetricsNotification) MessageType() MessageType {
	return MessageTypeServerGameMetricsNotification
}

func (m *ServerGameMetricsNotification) Serialize(w *Writer) {
	writeGameMetrics(w, m.GameMetrics)
}

func (m *ServerGameMetricsNotification) Deserialize(r *Reader) {
	m.GameMetrics = readGameMetrics(r)
}

type ServerGameStatusNotification struct {
	GameStatus models.GameStatus `json:"gameStatus"`
}

func (*ServerGameStatusNotification) MessageType() MessageType {
	return MessageTypeServerGameStatusNotification
}

func (m *ServerGameStatusNotification) Serialize(w *Writer) {
	w.WriteInt32(int32(m.GameStatus))
}

func (m *ServerGameStatusNotification) Deserialize(r *Reader) {
	m.GameStatus = models.GameStatus(r.ReadInt32())
}

type MonitorHeartbeatNotification struct{}

func (*MonitorHeartbeatNotification) MessageType() MessageType {
	return MessageTypeMonitorHeartbeatNotification
}

func (*MonitorHeartbeatNotification) Serialize(*Writer) {}

func (*MonitorHeartbeatNotification) Deserialize(*Reader) {}

type LaunchGameResponse struct {
	Success           bool             `json:"success"`
	GameServerAddress string           `json:"gameServerAddress"`
	GameInfo          *models.GameInfo `json:"gameInfo"`
}

func (*LaunchGameResponse) MessageType() MessageType {
	return MessageTypeLaunchGameResponse
}

func (m *LaunchGameResponse) Serialize(w *Writer) {
	w.WriteBool(m.Success)
	w.WriteString(m.GameServerAddress)
	writeOptionalGameInfo(w, m.GameInfo)
}

func (m *LaunchGameResponse) Deserialize(r *Reader) {
	m.Success = r.ReadBool()
	m.GameServerAddress = r.ReadString()
	m.GameInfo = readOptionalGameInfo(r)
}

type JoinGameServerResponse struct {
	Success               bool               `json:"success"`
	OrigRequestID         int32              `json:"origRequestId"`
	GameServerProcessCode string             `json:"gameServerProcessCode"`
	PlayerInfo            *models.PlayerInfo `json:"playerInfo"`
}

func (*JoinGameServerResponse) MessageType() MessageType {
	return MessageTypeJoinGameServerResponse
}

func (m *JoinGameServerResponse) Serialize(w *Writer) {
	w.WriteBool(m.Success)
	w.WriteInt32(m.OrigRequestID)
	w.WriteString(m.GameServerProcessCode)
	writeOptionalPlayerInfo(w, m.PlayerInfo)
}

func (m *JoinGameServerResponse) Deserialize(r *Reader) {
	m.Success = r.ReadBool()
	m.OrigRequestID = r.ReadInt32()
	m.GameServerProcessCode = r.ReadString()
	m.PlayerInfo = readOptionalPlayerInfo(r)
}
