// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package accountstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

const accountKeyPrefix = "lobby:account:"

// RedisStore keeps each account as a JSON document under lobby:account:<id>.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func accountKey(accountID int64) string {
	return accountKeyPrefix + strconv.FormatInt(accountID, 10)
}

func (s *RedisStore) GetAccount(ctx context.Context, accountID int64) (models.Account, error) {
	data, err := s.client.Get(ctx, accountKey(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Account{}, fmt.Errorf("%w: %d", models.ErrAccountNotFound, accountID)
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("redis get account %d: %w", accountID, err)
	}

	var account models.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return models.Account{}, fmt.Errorf("failed to unmarshal account %d: %w", accountID, err)
	}
	return account, nil
}

func (s *RedisStore) UpdateAccount(ctx context.Context, account models.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account %d: %w", account.AccountID, err)
	}
	if err := s.client.Set(ctx, accountKey(account.AccountID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set account %d: %w", account.AccountID, err)
	}
	return nil
}
