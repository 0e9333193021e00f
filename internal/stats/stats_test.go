package stats

import (
	"testing"
	"time"

	"github.com/dianegit/develops-task-management/internal/model"
)

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	if s.Total != 0 || s.Completed != 0 || s.CompletionRate != 0 {
		t.Fatalf("expected all-zero summary, got %+v", s)
	}
	for _, st := range []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusDone} {
		if s.ByStatus[st] != 0 {
			t.Fatalf("expected ByStatus[%s]=0, got %d", st, s.ByStatus[st])
		}
	}
	for _, p := range []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical} {
		if s.ByPriority[p] != 0 {
			t.Fatalf("expected ByPriority[%s]=0, got %d", p, s.ByPriority[p])
		}
	}
}

func TestAggregateCompletionScenario(t *testing.T) {
	tasks := []model.Task{
		{Status: model.StatusDone},
		{Status: model.StatusTodo},
		{Status: model.StatusDone},
		{Status: model.StatusInProgress},
	}
	s := Aggregate(tasks)
	if s.Completed != 2 {
		t.Fatalf("expected completed=2, got %d", s.Completed)
	}
	if s.Total != 4 {
		t.Fatalf("expected total=4, got %d", s.Total)
	}
	if s.CompletionRate != 50.0 {
		t.Fatalf("expected completionRate=50.0, got %v", s.CompletionRate)
	}
}

func TestAggregateStatusCountsSumToTotal(t *testing.T) {
	tasks := []model.Task{
		{Status: model.StatusTodo, Priority: model.PriorityLow},
		{Status: model.StatusTodo, Priority: model.PriorityHigh},
		{Status: model.StatusInProgress, Priority: model.PriorityCritical},
		{Status: model.StatusDone, Priority: model.PriorityMedium},
		{Status: model.StatusDone, Priority: model.PriorityMedium},
		{Status: model.StatusDone, Priority: model.PriorityLow},
		{Status: model.StatusInProgress, Priority: model.PriorityHigh},
	}
	s := Aggregate(tasks)
	sum := s.ByStatus[model.StatusTodo] + s.ByStatus[model.StatusInProgress] + s.ByStatus[model.StatusDone]
	if sum != s.Total || s.Total != len(tasks) {
		t.Fatalf("expected status counts (%d) = total (%d) = len (%d)", sum, s.Total, len(tasks))
	}
}

func TestAggregateRounding(t *testing.T) {
	tasks := []model.Task{
		{Status: model.StatusDone},
		{Status: model.StatusTodo},
		{Status: model.StatusTodo},
	}
	s := Aggregate(tasks)
	// 1/3 = 33.333… -> one decimal.
	if s.CompletionRate != 33.3 {
		t.Fatalf("expected completionRate=33.3, got %v", s.CompletionRate)
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	tasks := []model.Task{
		{Status: model.StatusTodo, DueDate: &past},    // overdue
		{Status: model.StatusDone, DueDate: &past},    // done: never overdue
		{Status: model.StatusTodo, DueDate: &future},  // not yet due
		{Status: model.StatusInProgress},              // no due date
	}
	if got := Overdue(tasks, now); got != 1 {
		t.Fatalf("expected 1 overdue task, got %d", got)
	}
}
