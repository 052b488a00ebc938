// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package accountstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/mitchellh/copystructure"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// Store is the account persistence the lobby depends on. GetAccount fails with models.ErrAccountNotFound
// for unknown accounts. Returned accounts are copies owned by the caller.
type Store interface {
	GetAccount(ctx context.Context, accountID int64) (models.Account, error)
	UpdateAccount(ctx context.Context, account models.Account) error
}

func copyAccount(account models.Account) (models.Account, error) {
	copied, err := copystructure.Copy(account)
	if err != nil {
		return models.Account{}, fmt.Errorf("unable to copy account %d: %w", account.AccountID, err)
	}
	return copied.(models.Account), nil
}

// MemoryStore keeps accounts in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[int64]models.Account
}

func NewMemoryStore(accounts ...models.Account) *MemoryStore {
	s := &MemoryStore{accounts: make(map[int64]models.Account, len(accounts))}
	for _, account := range accounts {
		s.accounts[account.AccountID] = account
	}
	return s
}

func (s *MemoryStore) GetAccount(_ context.Context, accountID int64) (models.Account, error) {
	s.mu.RLock()
	account, ok := s.accounts[accountID]
	s.mu.RUnlock()
	if !ok {
		return models.Account{}, fmt.Errorf("%w: %d", models.ErrAccountNotFound, accountID)
	}
	return copyAccount(account)
}

func (s *MemoryStore) UpdateAccount(_ context.Context, account models.Account) error {
	copied, err := copyAccount(account)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.accounts[account.AccountID] = copied
	s.mu.Unlock()
	return nil
}
