// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"errors"
)

var (
	ErrMalformedSession      = errors.New("malformed session request")
	ErrAlreadyLoggedIn       = errors.New("this account is already logged in")
	ErrNoSessionToResume     = errors.New("no session to resume")
	ErrSessionTokenInvalid   = errors.New("ReconnectionError: SessionToken invalid")
	ErrReconnectTokenInvalid = errors.New("ReconnectionError: ReconnectSessionToken invalid")
	ErrAccountNotFound       = errors.New("account not found")
	ErrNotRegistered         = errors.New("connection is not registered")
)

var (
	ErrUnknownMessageType = errors.New("unknown bridge message type")
	ErrMalformedPayload   = errors.New("malformed bridge payload")
	ErrNoSender           = errors.New("message type has no sender")
	ErrNotConnected       = errors.New("bridge server is not connected")
)

var (
	ErrServerNotAvailable   = errors.New("no game server available")
	ErrCharacterUnavailable = errors.New("character is already selected by a teammate")
	ErrPlayerNotInGame      = errors.New("player is not in this game")
	ErrSelectionClosed      = errors.New("character selection is closed")
)

var (
	ErrMatchScratchEmpty = errors.New("matchmaking failure: pop from empty match scratch")
	ErrUnknownQueue      = errors.New("unknown matchmaking queue")
	ErrAlreadyQueued     = errors.New("group is already queued")
	ErrGroupTooLarge     = errors.New("group does not fit in a team of this sub type")
	ErrQueuePenalty      = errors.New("queue entry blocked by an active penalty")
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrGroupFull      = errors.New("group is full")
	ErrNotInGroup     = errors.New("player is not a member of this group")
	ErrNotGroupLeader = errors.New("only the group leader can do this")
)

var errorCodeMap = map[error]int{
	ErrMalformedSession:      510201,
	ErrAlreadyLoggedIn:       510202,
	ErrNoSessionToResume:     510203,
	ErrSessionTokenInvalid:   510204,
	ErrReconnectTokenInvalid: 510205,
	ErrAccountNotFound:       510206,
	ErrNotRegistered:         510207,
	ErrUnknownMessageType:    510301,
	ErrMalformedPayload:      510302,
	ErrNoSender:              510303,
	ErrNotConnected:          510304,
	ErrServerNotAvailable:    510401,
	ErrCharacterUnavailable:  510402,
	ErrPlayerNotInGame:       510403,
	ErrSelectionClosed:       510404,
	ErrMatchScratchEmpty:     510501,
	ErrUnknownQueue:          510502,
	ErrAlreadyQueued:         510503,
	ErrGroupTooLarge:         510504,
	ErrQueuePenalty:          510505,
	ErrGroupNotFound:         510601,
	ErrGroupFull:             510602,
	ErrNotInGroup:            510603,
	ErrNotGroupLeader:        510604,
}

// ErrorCode returns a code for the error, unwrapping it until a registered one is found.
// It returns 20002 if no registered error is in the chain.
func ErrorCode(err error) int {
	for err != nil {
		if code, ok := errorCodeMap[err]; ok {
			return code
		}
		err = errors.Unwrap(err)
	}
	return 20002
}
