// Package store keeps completed execution results so repeat polls do not
// hit Judge0 again.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kursor/services/execution/models"
	"kursor/shared/redis"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultTTL is how long a completed result is kept
const DefaultTTL = time.Hour

// defaultMemorySize bounds the in-process store
const defaultMemorySize = 1024

// ErrNotFound is returned when no result is stored for a token
var ErrNotFound = errors.New("execution result not found")

// ResultStore persists completed execution results by submission token
type ResultStore interface {
	Get(ctx context.Context, token string) (*models.ExecutionResult, error)
	Put(ctx context.Context, token string, result *models.ExecutionResult) error
	Name() string
}

// RedisStore keeps results in Redis under execution:<token>
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis backed result store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(token string) string {
	return "execution:" + token
}

// Get returns the stored result for token
func (s *RedisStore) Get(ctx context.Context, token string) (*models.ExecutionResult, error) {
	var result models.ExecutionResult
	err := s.client.GetJSON(ctx, redisKey(token), &result)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read execution result: %w", err)
	}
	return &result, nil
}

// Put stores result for token
func (s *RedisStore) Put(ctx context.Context, token string, result *models.ExecutionResult) error {
	if err := s.client.SetJSON(ctx, redisKey(token), result, s.ttl); err != nil {
		return fmt.Errorf("failed to store execution result: %w", err)
	}
	return nil
}

// Name identifies the backend in the service info
func (s *RedisStore) Name() string { return "redis" }

// MemoryStore keeps results in a bounded in-process LRU with expiry
type MemoryStore struct {
	cache *expirable.LRU[string, models.ExecutionResult]
}

// NewMemoryStore creates an in-process result store
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = defaultMemorySize
	}
	return &MemoryStore{cache: expirable.NewLRU[string, models.ExecutionResult](size, nil, ttl)}
}

// Get returns the stored result for token
func (s *MemoryStore) Get(_ context.Context, token string) (*models.ExecutionResult, error) {
	result, ok := s.cache.Get(token)
	if !ok {
		return nil, ErrNotFound
	}
	return &result, nil
}

// Put stores a copy of result for token
func (s *MemoryStore) Put(_ context.Context, token string, result *models.ExecutionResult) error {
	s.cache.Add(token, *result)
	return nil
}

// Name identifies the backend in the service info
func (s *MemoryStore) Name() string { return "memory" }
