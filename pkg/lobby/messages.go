// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package lobby

import (
	"encoding/json"

	"github.com/AccelByte/extend-lobby-server/pkg/groups"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// Envelope is one JSON text frame between a game client and the lobby. Requests carry a request id
// that is echoed as the response id. Notifications carry none.
type Envelope struct {
	Type       string          `json:"type"`
	RequestID  int32           `json:"requestId,omitempty"`
	ResponseID int32           `json:"responseId,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

const (
	TypeRegisterGameClientRequest    = "RegisterGameClientRequest"
	TypeJoinMatchmakingQueueRequest  = "JoinMatchmakingQueueRequest"
	TypeLeaveMatchmakingQueueRequest = "LeaveMatchmakingQueueRequest"
	TypeSelectCharacterRequest       = "SelectCharacterRequest"
	TypeJoinGroupRequest             = "JoinGroupRequest"
	TypeLeaveGroupRequest            = "LeaveGroupRequest"
	TypeLeaveGameRequest             = "LeaveGameRequest"
)

func responseType(requestType string) string {
	return requestType[:len(requestType)-len("Request")] + "Response"
}

type RegisterGameClientRequest struct {
	SessionInfo models.SessionRequest `json:"sessionInfo"`
}

type JoinMatchmakingQueueRequest struct {
	GameType models.GameType `json:"gameType"`
}

type SelectCharacterRequest struct {
	CharacterType models.CharacterType `json:"characterType"`
}

type JoinGroupRequest struct {
	GroupID int64 `json:"groupId"`
}

// Response is the common part of every response.
type Response struct {
	Success          bool                        `json:"success"`
	ErrorMessage     string                      `json:"errorMessage,omitempty"`
	ErrorCode        int                         `json:"errorCode,omitempty"`
	LocalizedFailure *models.LocalizationPayload `json:"localizedFailure,omitempty"`
}

type RegisterGameClientResponse struct {
	Response
	SessionInfo  *models.SessionInfo `json:"sessionInfo,omitempty"`
	Reconnection bool                `json:"reconnection,omitempty"`
}

type GroupResponse struct {
	Response
	Group *groups.Group `json:"group,omitempty"`
}
