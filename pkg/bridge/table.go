// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"fmt"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// MessageType is the index of a payload type in the bridge message table.
type MessageType uint16

// Indices are shared with every game server build. Reserved slots stay empty.
const (
	MessageTypeRegisterGameServerRequest      MessageType = 0
	MessageTypeRegisterGameServerResponse     MessageType = 1
	MessageTypeLaunchGameRequest              MessageType = 2
	MessageTypeJoinGameServerRequest          MessageType = 3
	MessageTypeJoinGameAsObserverRequest      MessageType = 4
	MessageTypeShutdownGameRequest            MessageType = 5
	MessageTypeDisconnectPlayerRequest        MessageType = 6
	MessageTypeReconnectPlayerRequest         MessageType = 7
	MessageTypeMonitorHeartbeatResponse       MessageType = 8
	MessageTypeServerGameSummaryNotification  MessageType = 9
	MessageTypePlayerDisconnectedNotification MessageType = 10
	MessageTypeServerGameMetricsNotification  MessageType = 11
	MessageTypeServerGameStatusNotification   MessageType = 12
	MessageTypeMonitorHeartbeatNotification   MessageType = 13
	MessageTypeLaunchGameResponse             MessageType = 14
	MessageTypeJoinGameServerResponse         MessageType = 15
	MessageTypeJoinGameAsObserverResponse     MessageType = 16
)

type messageCodec struct {
	name string
	new  func() Message
}

var messageTable = [...]*messageCodec{
	MessageTypeRegisterGameServerRequest: {
		name: "RegisterGameServerRequest",
		new:  func() Message { return &RegisterGameServerRequest{} },
	},
	MessageTypeRegisterGameServerResponse: {
		name: "RegisterGameServerResponse",
		new:  func() Message { return &RegisterGameServerResponse{} },
	},
	MessageTypeLaunchGameRequest: {
		name: "LaunchGameRequest",
		new:  func() Message { return &LaunchGameRequest{} },
	},
	MessageTypeJoinGameServerRequest: {
		name: "JoinGameServerRequest",
		new:  func() Message { return &JoinGameServerRequest{} },
	},
	MessageTypeJoinGameAsObserverRequest: nil,
	MessageTypeShutdownGameRequest: {
		name: "ShutdownGameRequest",
		new:  func() Message { return &ShutdownGameRequest{} },
	},
	MessageTypeDisconnectPlayerRequest: {
		name: "DisconnectPlayerRequest",
		new:  func() Message { return &DisconnectPlayerRequest{} },
	},
	MessageTypeReconnectPlayerRequest: {
		name: "ReconnectPlayerRequest",
		new:  func() Message { return &ReconnectPlayerRequest{} },
	},
	MessageTypeMonitorHeartbeatResponse: nil,
	MessageTypeServerGameSummaryNotification: {
		name: "ServerGameSummaryNotification",
		new:  func() Message { return &ServerGameSummaryNotification{} },
	},
	MessageTypePlayerDisconnectedNotification: {
		name: "PlayerDisconnectedNotification",
		new:  func() Message { return &PlayerDisconnectedNotification{} },
	},
	MessageTypeServerGameMetricsNotification: {
		name: "ServerGameMetricsNotification",
		new:  func() Message { return &ServerGameMetricsNotification{} },
	},
	MessageTypeServerGameStatusNotification: {
		name: "ServerGameStatusNotification",
		new:  func() Message { return &ServerGameStatusNotification{} },
	},
	MessageTypeMonitorHeartbeatNotification: {
		name: "MonitorHeartbeatNotification",
		new:  func() Message { return &MonitorHeartbeatNotification{} },
	},
	MessageTypeLaunchGameResponse: {
		name: "LaunchGameResponse",
		new:  func() Message { return &LaunchGameResponse{} },
	},
	MessageTypeJoinGameServerResponse: {
		name: "JoinGameServerResponse",
		new:  func() Message { return &JoinGameServerResponse{} },
	},
	MessageTypeJoinGameAsObserverResponse: nil,
}

func lookupCodec(t MessageType) (*messageCodec, bool) {
	if int(t) >= len(messageTable) || messageTable[t] == nil {
		return nil, false
	}
	return messageTable[t], true
}

func (t MessageType) String() string {
	if codec, ok := lookupCodec(t); ok {
		return codec.name
	}
	return fmt.Sprintf("id_%d", uint16(t))
}

// MessageName is the payload type name used in logs and metrics.
func MessageName(msg Message) string {
	return msg.MessageType().String()
}

const frameHeaderSize = 6

// EncodeFrame writes [uint16 type][int32 callback id][payload] into w.
func EncodeFrame(w *Writer, msg Message, callbackID int32) error {
	t := msg.MessageType()
	if _, ok := lookupCodec(t); !ok {
		return fmt.Errorf("%w: %T", models.ErrNoSender, msg)
	}
	w.WriteUint16(uint16(t))
	w.WriteInt32(callbackID)
	msg.Serialize(w)
	return nil
}

// DecodeFrame parses one frame. The message type is returned even when the payload is malformed.
func DecodeFrame(data []byte) (MessageType, int32, Message, error) {
	if len(data) < frameHeaderSize {
		return 0, 0, nil, fmt.Errorf("%w: frame of %d bytes", models.ErrMalformedPayload, len(data))
	}
	r := NewReader(data)
	t := MessageType(r.ReadUint16())
	callbackID := r.ReadInt32()

	codec, ok := lookupCodec(t)
	if !ok {
		return t, callbackID, nil, fmt.Errorf("%w: %d", models.ErrUnknownMessageType, uint16(t))
	}
	msg := codec.new()
	msg.Deserialize(r)
	if err := r.Err(); err != nil {
		return t, callbackID, nil, fmt.Errorf("%s: %w", codec.name, err)
	}
	return t, callbackID, msg, nil
}
