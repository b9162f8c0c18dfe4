package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/internal/domain/task"
	"github.com/planhub/planhub/internal/domain/user"
	"github.com/planhub/planhub/internal/http/middlewares"
	"github.com/planhub/planhub/internal/progress"
)

type TaskStore interface {
	ListForUser(ctx context.Context, userID string) ([]task.Task, error)
	ListForUserAndDay(ctx context.Context, userID string, day task.Weekday) ([]task.Task, error)
	Create(ctx context.Context, req task.CreateTaskRequest, userID string) (task.Task, error)
	Toggle(ctx context.Context, taskID, userID string) (bool, error)
	Delete(ctx context.Context, taskID, userID string) error
}

type TasksHandler struct {
	tasks TaskStore
	users UserReader
}

func NewTasksHandler(tasks TaskStore, users UserReader) *TasksHandler {
	return &TasksHandler{tasks: tasks, users: users}
}

type enumEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func weekDayEntries() []enumEntry {
	out := make([]enumEntry, 0, 7)
	for _, d := range task.Weekdays() {
		out = append(out, enumEntry{Key: string(d), Name: d.DisplayName()})
	}
	return out
}

func categoryEntries() []enumEntry {
	out := make([]enumEntry, 0, 4)
	for _, c := range task.Categories() {
		out = append(out, enumEntry{Key: string(c), Name: c.DisplayName()})
	}
	return out
}

// Home renders the day view: the selected day's tasks in time order plus a
// progress summary over all of the user's tasks. Anonymous callers get the
// empty view.
func (h *TasksHandler) Home(ctx *gin.Context) {
	selectedDay := task.ParseWeekday(ctx.DefaultQuery("day", string(task.Monday)))

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		ctx.JSON(http.StatusOK, gin.H{
			"view":        "index",
			"username":    nil,
			"tasks":       []task.Task{},
			"selectedDay": selectedDay,
			"weekDays":    weekDayEntries(),
			"categories":  categoryEntries(),
			"progress":    progress.Calculate(nil),
		})
		return
	}

	cctx, cancel := config.WithTimeout(handlerTimeout)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// session points at a deleted row; show the anonymous view
			ctx.Redirect(http.StatusSeeOther, "/login")
			return
		}

		RespondInternal(ctx, "Could not load user")
		return
	}

	allTasks, err := h.tasks.ListForUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not load tasks")
		return
	}

	dayTasks, err := h.tasks.ListForUserAndDay(cctx, userID, selectedDay)

	if err != nil {
		RespondInternal(ctx, "Could not load tasks")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"view":        "index",
		"username":    u.Username,
		"tasks":       dayTasks,
		"selectedDay": selectedDay,
		"weekDays":    weekDayEntries(),
		"categories":  categoryEntries(),
		"progress":    progress.Calculate(allTasks),
	})
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	var req task.CreateTaskRequest

	if !BindForm(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(handlerTimeout)
	defer cancel()

	t, err := h.tasks.Create(cctx, req, userID)

	if err != nil {
		RespondInternal(ctx, "Could not create task")
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/?day="+string(t.DayOfWeek))
}

func (h *TasksHandler) ToggleTask(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	taskID := ctx.Param("id")

	cctx, cancel := config.WithTimeout(handlerTimeout)
	defer cancel()

	completed, err := h.tasks.Toggle(cctx, taskID, userID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Task not found",
			})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Could not update task",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"completed": completed,
	})
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	taskID := ctx.Param("id")

	cctx, cancel := config.WithTimeout(handlerTimeout)
	defer cancel()

	err := h.tasks.Delete(cctx, taskID, userID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Task not found",
			})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Could not delete task",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
