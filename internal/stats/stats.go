// Package stats derives aggregate numbers from a task collection. Pure
// functions only: recomputed from the collection alone on every call, no
// caching across collection replacement.
package stats

import (
	"math"
	"time"

	"github.com/dianegit/develops-task-management/internal/model"
)

type Summary struct {
	ByStatus   map[model.Status]int
	ByPriority map[model.Priority]int
	Total      int
	Completed  int
	// CompletionRate is a percentage rounded to one decimal, 0 for an empty
	// collection (never NaN).
	CompletionRate float64
}

func Aggregate(tasks []model.Task) Summary {
	s := Summary{
		ByStatus: map[model.Status]int{
			model.StatusTodo:       0,
			model.StatusInProgress: 0,
			model.StatusDone:       0,
		},
		ByPriority: map[model.Priority]int{
			model.PriorityLow:      0,
			model.PriorityMedium:   0,
			model.PriorityHigh:     0,
			model.PriorityCritical: 0,
		},
	}
	for _, t := range tasks {
		s.Total++
		s.ByStatus[t.Status]++
		s.ByPriority[t.Priority]++
		if t.Status == model.StatusDone {
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = math.Round(float64(s.Completed)/float64(s.Total)*1000) / 10
	}
	return s
}

// Overdue counts tasks past their due date that are not done.
func Overdue(tasks []model.Task, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if t.Overdue(now) {
			n++
		}
	}
	return n
}
