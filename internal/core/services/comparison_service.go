package services

import (
	"context"
	"log"
	"time"

	"relic-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// ComparisonService exposes preview comparisons: the engine is invoked on
// an arbitrary pair of photo references and nothing is persisted.
type ComparisonService struct {
	engine ComparisonEngine
	tasks  TaskStore
}

// NewComparisonService creates a new comparison service
func NewComparisonService(engine ComparisonEngine, tasks TaskStore) *ComparisonService {
	return &ComparisonService{engine: engine, tasks: tasks}
}

// CompareInput represents a preview comparison request
type CompareInput struct {
	PhotoURLBefore string `json:"photo_url_before" validate:"required"`
	PhotoURLAfter  string `json:"photo_url_after" validate:"required"`
}

// Compare runs a synchronous preview comparison
func (s *ComparisonService) Compare(ctx context.Context, input *CompareInput) (*domain.ComparisonResult, error) {
	if input.PhotoURLBefore == "" || input.PhotoURLAfter == "" {
		return nil, domain.Validationf("both photo references are required")
	}
	return s.engine.Compare(ctx, input.PhotoURLBefore, input.PhotoURLAfter)
}

// CompareAsync starts a background preview comparison and returns the
// task id for polling. Task state lives in the TaskStore, not the
// request lifecycle, so the worker runs on a detached context.
func (s *ComparisonService) CompareAsync(ctx context.Context, input *CompareInput) (*ComparisonTask, error) {
	if input.PhotoURLBefore == "" || input.PhotoURLAfter == "" {
		return nil, domain.Validationf("both photo references are required")
	}

	task := &ComparisonTask{
		ID:        uuid.New().String(),
		Status:    TaskStatusPending,
		Progress:  0,
		CreatedAt: time.Now(),
	}
	if err := s.tasks.Put(ctx, task); err != nil {
		return nil, err
	}

	go s.runTask(task.ID, input.PhotoURLBefore, input.PhotoURLAfter)

	return task, nil
}

// GetTask returns the current state of an async comparison
func (s *ComparisonService) GetTask(ctx context.Context, id string) (*ComparisonTask, error) {
	return s.tasks.Get(ctx, id)
}

func (s *ComparisonService) runTask(id, beforePhoto, afterPhoto string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.updateTask(ctx, id, func(t *ComparisonTask) {
		t.Status = TaskStatusProcessing
		t.Progress = 10
	})

	result, err := s.engine.Compare(ctx, beforePhoto, afterPhoto)
	if err != nil {
		log.Printf("Comparison task %s failed: %v", id, err)
		s.updateTask(ctx, id, func(t *ComparisonTask) {
			t.Status = TaskStatusFailed
			t.Progress = 100
			t.Error = err.Error()
		})
		return
	}

	s.updateTask(ctx, id, func(t *ComparisonTask) {
		t.Status = TaskStatusCompleted
		t.Progress = 100
		t.Result = result
	})
}

func (s *ComparisonService) updateTask(ctx context.Context, id string, mutate func(*ComparisonTask)) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		log.Printf("Comparison task %s not found for update: %v", id, err)
		return
	}
	mutate(task)
	if err := s.tasks.Put(ctx, task); err != nil {
		log.Printf("Comparison task %s state write failed: %v", id, err)
	}
}
