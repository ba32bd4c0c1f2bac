package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nurtura/leadline/internal/infrastructure/redis"
)

const sessionLifetime = 1 * time.Hour

// ErrNotFound is returned when no snapshot exists for a session ID.
var ErrNotFound = errors.New("session not found")

// Store persists conversation snapshots keyed by session ID.
type Store interface {
	Set(ctx context.Context, snap *Snapshot) error
	Get(ctx context.Context, sessionID string) (*Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps snapshots in Redis with the session lifetime as TTL.
type RedisStore struct {
	redisService *redis.Service
}

func (rs *RedisStore) Set(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return rs.redisService.Set(ctx, snapshotKey(snap.ID), string(data), sessionLifetime)
}

func (rs *RedisStore) Get(ctx context.Context, sessionID string) (*Snapshot, error) {
	data, err := rs.redisService.Get(ctx, snapshotKey(sessionID))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, snapshotKey(sessionID))
}

func snapshotKey(sessionID string) string {
	return "leadline:session:" + sessionID
}

// MemoryStore is the fallback when Redis is unavailable. Entries expire
// lazily on read.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	snap      *Snapshot
	expiresAt time.Time
}

func newMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

func (ms *MemoryStore) Set(ctx context.Context, snap *Snapshot) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.sessions[snap.ID] = memoryEntry{
		snap:      snap,
		expiresAt: time.Now().Add(sessionLifetime),
	}
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, sessionID string) (*Snapshot, error) {
	ms.mu.RLock()
	entry, exists := ms.sessions[sessionID]
	ms.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		ms.mu.Lock()
		delete(ms.sessions, sessionID)
		ms.mu.Unlock()
		return nil, ErrNotFound
	}
	return entry.snap, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, sessionID)
	return nil
}
