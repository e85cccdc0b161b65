package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient covers the Redis calls made by the auth middleware and the
// readiness probe.
type MockRedisClient struct {
	mu   sync.RWMutex
	data map[string]time.Time // key -> expiry, zero means no expiry

	// Error injection
	ExistsError error
	PingError   error
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{data: make(map[string]time.Time)}
}

func (m *MockRedisClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewIntCmd(ctx)
	if m.ExistsError != nil {
		cmd.SetErr(m.ExistsError)
		return cmd
	}

	var count int64
	for _, key := range keys {
		if exp, ok := m.data[key]; ok && (exp.IsZero() || time.Now().Before(exp)) {
			count++
		}
	}
	cmd.SetVal(count)
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.PingError != nil {
		cmd.SetErr(m.PingError)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

// SetKey stores key directly for test setup.
func (m *MockRedisClient) SetKey(key string, expiration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var exp time.Time
	if expiration > 0 {
		exp = time.Now().Add(expiration)
	}
	m.data[key] = exp
}

func (m *MockRedisClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]time.Time)
	m.ExistsError = nil
	m.PingError = nil
}
