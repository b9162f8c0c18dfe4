// Package progress derives completion statistics over a user's tasks. The
// summary is recomputed per request and never persisted.
package progress

import (
	"math"

	"github.com/planhub/planhub/internal/domain/task"
)

// Breakdown is the per-category or per-day slice of a Summary.
type Breakdown struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

type Summary struct {
	Total      int         `json:"total"`
	Completed  int         `json:"completed"`
	Percentage float64     `json:"percentage"`
	Categories []Breakdown `json:"categories"`
	Days       []Breakdown `json:"days"`
}

// Calculate summarizes completion over tasks, sliced by the canonical
// category set and by day of week in calendar order. Empty input yields
// all-zero aggregates.
func Calculate(tasks []task.Task) Summary {
	total := len(tasks)
	completed := 0

	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}

	categories := make([]Breakdown, 0, len(task.Categories()))

	for _, c := range task.Categories() {
		catTotal, catCompleted := 0, 0

		for _, t := range tasks {
			if t.Category != c {
				continue
			}
			catTotal++
			if t.Completed {
				catCompleted++
			}
		}

		categories = append(categories, Breakdown{
			Key:        string(c),
			Name:       c.DisplayName(),
			Total:      catTotal,
			Completed:  catCompleted,
			Percentage: percentage(catCompleted, catTotal),
		})
	}

	days := make([]Breakdown, 0, len(task.Weekdays()))

	for _, d := range task.Weekdays() {
		dayTotal, dayCompleted := 0, 0

		for _, t := range tasks {
			if t.DayOfWeek != d {
				continue
			}
			dayTotal++
			if t.Completed {
				dayCompleted++
			}
		}

		days = append(days, Breakdown{
			Key:        string(d),
			Name:       d.DisplayName(),
			Total:      dayTotal,
			Completed:  dayCompleted,
			Percentage: percentage(dayCompleted, dayTotal),
		})
	}

	return Summary{
		Total:      total,
		Completed:  completed,
		Percentage: percentage(completed, total),
		Categories: categories,
		Days:       days,
	}
}

// percentage rounds completed/total*100 to one decimal place; 0 when total
// is 0 so empty slices never divide by zero.
func percentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}

	return math.Round(float64(completed)/float64(total)*1000) / 10
}
