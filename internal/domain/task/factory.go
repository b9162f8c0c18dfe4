package task

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateTaskRequest, userID string) Task {
	category := Category(req.Category)
	if req.Category == "" {
		category = CategoryGeneral
	}

	day := Weekday(req.DayOfWeek)
	if req.DayOfWeek == "" {
		day = Monday
	}

	return Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		TaskTime:    req.TaskTime,
		Priority:    Priority(req.Priority),
		Category:    category,
		Completed:   false,
		UserID:      userID,
		DayOfWeek:   day,
		CreatedAt:   time.Now().UTC(),
	}
}
