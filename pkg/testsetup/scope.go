// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
)

// NewTestScope creates a new scope for test use
func NewTestScope() *envelope.Scope {
	return envelope.NewRootScope(context.Background(), "lobby.test", "")
}

// NewRecordingScope returns a scope whose log lines are kept by the returned hook instead of printed.
func NewRecordingScope() (*envelope.Scope, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	scope := NewTestScope()
	scope.SetLogger(logger)
	return scope, hook
}

// EntriesAt returns the recorded entries logged at level.
func EntriesAt(hook *test.Hook, level logrus.Level) []logrus.Entry {
	var entries []logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == level {
			entries = append(entries, *entry)
		}
	}
	return entries
}
