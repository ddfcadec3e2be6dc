package services

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) InterfaceRedisService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisServiceWithClient(client)
}

func TestRedisSetGetDelete(t *testing.T) {
	svc := newTestRedis(t)

	require.NoError(t, svc.Set("greeting", map[string]string{"hello": "world"}, time.Minute))

	var got map[string]string
	require.NoError(t, svc.Get("greeting", &got))
	assert.Equal(t, "world", got["hello"])

	require.NoError(t, svc.Delete("greeting"))
	assert.Error(t, svc.Get("greeting", &got))
}

func TestTokenBlacklist(t *testing.T) {
	svc := newTestRedis(t)

	assert.False(t, svc.IsTokenBlacklisted("session-token"))

	require.NoError(t, svc.BlacklistToken("session-token", time.Hour))
	assert.True(t, svc.IsTokenBlacklisted("session-token"))
	assert.False(t, svc.IsTokenBlacklisted("other-token"))
}

func TestBlacklistExpiredTokenIsNoop(t *testing.T) {
	svc := newTestRedis(t)

	// A token past its expiry needs no blacklist entry
	require.NoError(t, svc.BlacklistToken("stale-token", -time.Minute))
	assert.False(t, svc.IsTokenBlacklisted("stale-token"))
}

func TestRedisDegradedMode(t *testing.T) {
	svc := &RedisService{Client: nil}

	assert.ErrorIs(t, svc.Set("k", "v", time.Minute), ErrRedisUnavailable)
	assert.ErrorIs(t, svc.Get("k", nil), ErrRedisUnavailable)
	assert.ErrorIs(t, svc.Delete("k"), ErrRedisUnavailable)
	assert.ErrorIs(t, svc.BlacklistToken("t", time.Hour), ErrRedisUnavailable)

	// Revocation checks fail open so valid sessions keep working
	assert.False(t, svc.IsTokenBlacklisted("t"))
}
