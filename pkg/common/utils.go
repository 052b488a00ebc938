// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// LogPayload writes a debug line "<direction> <name> <payload as json>". Nothing is encoded unless
// debug logging is enabled.
func LogPayload(log *logrus.Entry, direction string, name string, payload any) {
	if !log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Debugf("%s %s (payload not encodable)", direction, name)
		return
	}
	log.Debugf("%s %s %s", direction, name, data)
}
