package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"relic-ledger/internal/config"
	"relic-ledger/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

// Comparison task lifecycle states
const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)

// taskTTL bounds how long finished comparison tasks stay queryable
const taskTTL = 30 * time.Minute

// ComparisonTask tracks one async preview comparison
type ComparisonTask struct {
	ID        string                   `json:"id"`
	Status    string                   `json:"status"`
	Progress  int                      `json:"progress"`
	Result    *domain.ComparisonResult `json:"result,omitempty"`
	Error     string                   `json:"error,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

// TaskStore persists comparison task state for polling clients
type TaskStore interface {
	Put(ctx context.Context, task *ComparisonTask) error
	Get(ctx context.Context, id string) (*ComparisonTask, error)
}

// NewTaskStore builds the configured store: redis when enabled, otherwise
// an in-process map (single-instance deployments and tests).
func NewTaskStore(cfg *config.Config) TaskStore {
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisTaskStore(client)
	}
	return NewMemoryTaskStore()
}

// ============================================================
// Redis implementation
// ============================================================

// RedisTaskStore keeps tasks in redis so polling survives restarts and
// works across instances
type RedisTaskStore struct {
	client *redis.Client
}

// NewRedisTaskStore creates a redis-backed task store
func NewRedisTaskStore(client *redis.Client) *RedisTaskStore {
	return &RedisTaskStore{client: client}
}

func taskKey(id string) string {
	return "comparison:task:" + id
}

// Put stores the task state with a TTL
func (s *RedisTaskStore) Put(ctx context.Context, task *ComparisonTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, taskKey(task.ID), data, taskTTL).Err()
}

// Get loads a task; unknown ids map to domain.ErrNotFound
func (s *RedisTaskStore) Get(ctx context.Context, id string) (*ComparisonTask, error) {
	data, err := s.client.Get(ctx, taskKey(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: comparison task", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var task ComparisonTask
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ============================================================
// In-memory implementation
// ============================================================

// MemoryTaskStore keeps tasks in a mutex-guarded map
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*ComparisonTask
}

// NewMemoryTaskStore creates an in-memory task store
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[string]*ComparisonTask)}
}

// Put stores a copy of the task state
func (s *MemoryTaskStore) Put(ctx context.Context, task *ComparisonTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

// Get loads a task; unknown ids map to domain.ErrNotFound
func (s *MemoryTaskStore) Get(ctx context.Context, id string) (*ComparisonTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: comparison task", domain.ErrNotFound)
	}
	copied := *task
	return &copied, nil
}
