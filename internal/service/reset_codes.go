package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxResetCodeAttempts wrong guesses burn the code
const MaxResetCodeAttempts = 5

// ResetCodeStore keeps short-lived password reset codes
type ResetCodeStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume reports whether code matches; a matching code is deleted
	Consume(ctx context.Context, email, code string) (bool, error)
}

type redisResetCodeStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisResetCodeStore stores codes as redis hashes that expire on their own
func NewRedisResetCodeStore(client *redis.Client) ResetCodeStore {
	return &redisResetCodeStore{client: client, keyPrefix: "reset_code:"}
}

func (s *redisResetCodeStore) key(email string) string {
	return s.keyPrefix + strings.ToLower(strings.TrimSpace(email))
}

func (s *redisResetCodeStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	key := s.key(email)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "code", code, "attempts", 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}
	return nil
}

var consumeResetCode = redis.NewScript(`
local code = redis.call("HGET", KEYS[1], "code")
if not code then
	return 0
end
if code == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
local attempts = redis.call("HINCRBY", KEYS[1], "attempts", 1)
if attempts >= tonumber(ARGV[2]) then
	redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *redisResetCodeStore) Consume(ctx context.Context, email, code string) (bool, error) {
	n, err := consumeResetCode.Run(ctx, s.client, []string{s.key(email)}, code, MaxResetCodeAttempts).Int()
	if err != nil {
		return false, fmt.Errorf("failed to check reset code: %w", err)
	}
	return n == 1, nil
}

// generateResetCode returns a uniformly random 6 digit code
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
