// Package prefs persists each owner's technician selection for the day view.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store loads and saves the selected technician ids of an owner. Load
// returns an empty selection when nothing was saved.
type Store interface {
	Load(ctx context.Context, owner string) ([]string, error)
	Save(ctx context.Context, owner string, technicianIDs []string) error
}

// RedisStore keeps selections as JSON arrays in Redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(owner string) string {
	return fmt.Sprintf("prefs:%s:technicians", owner)
}

func (s *RedisStore) Load(ctx context.Context, owner string) ([]string, error) {
	val, err := s.client.Get(ctx, key(owner)).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load technician selection: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(val), &ids); err != nil {
		return nil, fmt.Errorf("decode technician selection: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) Save(ctx context.Context, owner string, technicianIDs []string) error {
	data, err := json.Marshal(normalize(technicianIDs))
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key(owner), data, 0).Err(); err != nil {
		return fmt.Errorf("save technician selection: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store for tests and single-node runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]string)}
}

func (s *MemoryStore) Load(_ context.Context, owner string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.data[owner]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, owner string, technicianIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[owner] = normalize(technicianIDs)
	return nil
}

// normalize drops empty and duplicate ids, keeping first occurrences.
func normalize(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
