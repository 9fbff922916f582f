package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"sermonbot/pkg/domain"
)

// RedisTokenStore keeps the one-token-per-user record in Redis. The key TTL
// tracks the token expiry, so expired records disappear on their own.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore builds a Redis-backed token store.
func NewRedisTokenStore(addr, password string) *RedisTokenStore {
	return &RedisTokenStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// UpsertToken stores the single live token for a user.
func (s *RedisTokenStore) UpsertToken(t domain.AccessToken) error {
	ttl := time.Until(t.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.client.Set(ctx, tokenKey(t.UserID), raw, ttl).Err()
}

// GetToken returns the stored token record for a user.
func (s *RedisTokenStore) GetToken(userID string) (domain.AccessToken, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	raw, err := s.client.Get(ctx, tokenKey(userID)).Bytes()
	if err == redis.Nil {
		return domain.AccessToken{}, false, nil
	}
	if err != nil {
		return domain.AccessToken{}, false, err
	}
	var token domain.AccessToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return domain.AccessToken{}, false, err
	}
	return token, true, nil
}

// DeleteToken removes a user's token unconditionally.
func (s *RedisTokenStore) DeleteToken(userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	removed, err := s.client.Del(ctx, tokenKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func tokenKey(userID string) string {
	return "token:user:" + userID
}
