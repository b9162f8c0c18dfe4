package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/planhub/planhub/internal/domain/task"
)

// TasksRepo is the in-memory counterpart of the postgres repo. It backs the
// handler tests and DB-less local runs, and keeps the same ownership
// semantics: a foreign task id reads as not found.
type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]task.Task),
	}
}

func (r *TasksRepo) ListForUser(_ context.Context, userID string) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]task.Task, 0)

	for _, t := range r.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *TasksRepo) ListForUserAndDay(_ context.Context, userID string, day task.Weekday) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]task.Task, 0)

	for _, t := range r.items {
		if t.UserID == userID && t.DayOfWeek == day {
			out = append(out, t)
		}
	}

	// "HH:MM" strings sort chronologically; id breaks ties
	sort.Slice(out, func(i, j int) bool {
		if out[i].TaskTime != out[j].TaskTime {
			return out[i].TaskTime < out[j].TaskTime
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *TasksRepo) Create(_ context.Context, req task.CreateTaskRequest, userID string) (task.Task, error) {
	t := task.NewFromCreateRequest(req, userID)

	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) Toggle(_ context.Context, taskID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[taskID]

	if !ok || t.UserID != userID {
		return false, task.ErrNotFound
	}

	t.Completed = !t.Completed
	r.items[taskID] = t

	return t.Completed, nil
}

func (r *TasksRepo) Delete(_ context.Context, taskID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[taskID]

	if !ok || t.UserID != userID {
		return task.ErrNotFound
	}

	delete(r.items, taskID)

	return nil
}
