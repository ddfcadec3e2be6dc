package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"sampoornaangan-backend/internal/infrastructure/config"
	Logger "sampoornaangan-backend/pkg/logger"
)

// ErrRedisUnavailable is returned when no Redis client is connected
var ErrRedisUnavailable = errors.New("redis is not available")

// InterfaceRedisService defines the Redis-backed cache and token
// blacklist. Every operation is best-effort: a missing or unreachable
// Redis never blocks a request.
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	BlacklistToken(token string, ttl time.Duration) error
	IsTokenBlacklisted(token string) bool
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service. The returned service
// degrades gracefully when the connection cannot be established.
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	ctx := context.Background()
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		Logger.Warning("Redis connection failed (%v), running without cache and token blacklist", err)
		return &RedisService{Client: nil, Ctx: ctx}
	}

	return &RedisService{Client: client, Ctx: ctx}
}

// NewRedisServiceWithClient wraps an existing client; used by tests
func NewRedisServiceWithClient(client *redis.Client) InterfaceRedisService {
	return &RedisService{Client: client, Ctx: context.Background()}
}

// Set stores a JSON-encoded value with an expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	if s.Client == nil {
		return ErrRedisUnavailable
	}

	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get reads a JSON-encoded value into dest
func (s *RedisService) Get(key string, dest interface{}) error {
	if s.Client == nil {
		return ErrRedisUnavailable
	}

	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Delete removes a key
func (s *RedisService) Delete(key string) error {
	if s.Client == nil {
		return ErrRedisUnavailable
	}
	return s.Client.Del(s.Ctx, key).Err()
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "jwt:blacklist:" + hex.EncodeToString(sum[:])
}

// BlacklistToken marks a session token revoked until it would have
// expired anyway
func (s *RedisService) BlacklistToken(token string, ttl time.Duration) error {
	if s.Client == nil {
		return ErrRedisUnavailable
	}
	if ttl <= 0 {
		return nil
	}
	return s.Client.Set(s.Ctx, blacklistKey(token), "1", ttl).Err()
}

// IsTokenBlacklisted reports whether a token was revoked. Redis being
// down reports false: a valid signature must keep working.
func (s *RedisService) IsTokenBlacklisted(token string) bool {
	if s.Client == nil {
		return false
	}
	n, err := s.Client.Exists(s.Ctx, blacklistKey(token)).Result()
	if err != nil {
		return false
	}
	return n > 0
}
