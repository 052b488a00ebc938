// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package accountstore

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

// CachedStore serves recently read accounts from memory. Concurrent misses for one account share a
// single read of the underlying store. Writes go through and refresh the cached copy.
type CachedStore struct {
	next  Store
	cache *cache.Cache
	group singleflight.Group
}

func NewCachedStore(next Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *CachedStore) GetAccount(ctx context.Context, accountID int64) (models.Account, error) {
	key := strconv.FormatInt(accountID, 10)
	if cached, found := s.cache.Get(key); found {
		return copyAccount(cached.(models.Account))
	}

	val, err, _ := s.group.Do(key, func() (interface{}, error) {
		if cached, found := s.cache.Get(key); found {
			return cached, nil
		}
		account, err := s.next.GetAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		s.cache.SetDefault(key, account)
		return account, nil
	})
	if err != nil {
		return models.Account{}, err
	}
	return copyAccount(val.(models.Account))
}

func (s *CachedStore) UpdateAccount(ctx context.Context, account models.Account) error {
	if err := s.next.UpdateAccount(ctx, account); err != nil {
		s.cache.Delete(strconv.FormatInt(account.AccountID, 10))
		return err
	}
	copied, err := copyAccount(account)
	if err != nil {
		return err
	}
	s.cache.SetDefault(strconv.FormatInt(account.AccountID, 10), copied)
	return nil
}
