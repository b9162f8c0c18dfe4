package task

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("task not found")

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Category string

const (
	CategoryWork    Category = "work"
	CategoryStudy   Category = "study"
	CategoryHealth  Category = "health"
	CategoryGeneral Category = "general"
)

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Categories returns the canonical category set in display order.
func Categories() []Category {
	return []Category{CategoryWork, CategoryStudy, CategoryHealth, CategoryGeneral}
}

// Weekdays returns the seven days in calendar order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

var categoryNames = map[Category]string{
	CategoryWork:    "💼 Работа",
	CategoryStudy:   "📚 Учеба",
	CategoryHealth:  "🏥 Здоровье",
	CategoryGeneral: "📋 Общее",
}

var weekdayNames = map[Weekday]string{
	Monday:    "Понедельник",
	Tuesday:   "Вторник",
	Wednesday: "Среда",
	Thursday:  "Четверг",
	Friday:    "Пятница",
	Saturday:  "Суббота",
	Sunday:    "Воскресенье",
}

func (c Category) DisplayName() string {
	return categoryNames[c]
}

func (d Weekday) DisplayName() string {
	return weekdayNames[d]
}

// ParseWeekday falls back to Monday for anything outside the enum, so a
// bogus ?day= query never produces a selected day the view cannot render.
func ParseWeekday(s string) Weekday {
	d := Weekday(s)
	if _, ok := weekdayNames[d]; ok {
		return d
	}
	return Monday
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TaskTime    string    `json:"taskTime"`
	Priority    Priority  `json:"priority"`
	Category    Category  `json:"category"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"-"`
	DayOfWeek   Weekday   `json:"dayOfWeek"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateTaskRequest struct {
	Title       string `form:"title" binding:"required,min=1,max=200"`
	TaskTime    string `form:"task_time" binding:"required,len=5"`
	Priority    string `form:"priority" binding:"required,oneof=low medium high urgent"`
	Category    string `form:"category" binding:"omitempty,oneof=work study health general"`
	DayOfWeek   string `form:"day_of_week" binding:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Description string `form:"description" binding:"omitempty,max=1000"`
}
