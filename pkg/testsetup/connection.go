// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"sync"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// StubConnection records every notification sent to one account.
type StubConnection struct {
	ID int64

	mu            sync.Mutex
	notifications []models.Notification
	closed        bool
	// Drop makes Send discard messages as a full or closed connection would.
	Drop bool
}

func NewStubConnection(accountID int64) *StubConnection {
	return &StubConnection{ID: accountID}
}

func (s *StubConnection) AccountID() int64 {
	return s.ID
}

func (s *StubConnection) Send(notification models.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.Drop {
		return false
	}
	s.notifications = append(s.notifications, notification)
	return true
}

func (s *StubConnection) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *StubConnection) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *StubConnection) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

// NotificationsOf returns the notifications of type T in the order they were sent.
func NotificationsOf[T models.Notification](s *StubConnection) []T {
	var result []T
	for _, n := range s.Notifications() {
		if typed, ok := n.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}
