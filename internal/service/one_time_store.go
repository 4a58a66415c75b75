package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OneTimeStore guarda valores de un solo uso con vencimiento (state OAuth, tickets de registro).
type OneTimeStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Take devuelve el valor y lo elimina. Una segunda llamada con la misma clave no encuentra nada.
	Take(ctx context.Context, key string) (string, bool, error)
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type memoryOneTimeStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
}

func NewMemoryOneTimeStore() OneTimeStore {
	return &memoryOneTimeStore{
		items: make(map[string]memoryEntry),
	}
}

func (s *memoryOneTimeStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()
	s.items[key] = memoryEntry{value: value, expiresAt: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *memoryOneTimeStore) Take(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if !ok {
		return "", false, nil
	}
	delete(s.items, key)
	if time.Now().UTC().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

// evictExpired requiere s.mu tomado.
func (s *memoryOneTimeStore) evictExpired() {
	now := time.Now().UTC()
	for key, entry := range s.items {
		if now.After(entry.expiresAt) {
			delete(s.items, key)
		}
	}
}

type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

type redisOneTimeStore struct {
	client  redisKV
	prefix  string
	timeout time.Duration
}

func NewRedisOneTimeStore(client *redis.Client, prefix string) OneTimeStore {
	if client == nil {
		return nil
	}
	return newRedisOneTimeStore(client, prefix)
}

func newRedisOneTimeStore(client redisKV, prefix string) *redisOneTimeStore {
	return &redisOneTimeStore{
		client:  client,
		prefix:  prefix,
		timeout: 500 * time.Millisecond,
	}
}

func (s *redisOneTimeStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *redisOneTimeStore) Take(ctx context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	val, err := s.client.GetDel(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
