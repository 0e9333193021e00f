package statusutil

import (
	"fmt"
	"strings"

	"github.com/dianegit/develops-task-management/internal/model"
)

func NormalizeStatus(s string) (model.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "todo":
		return model.StatusTodo, nil
	case "in_progress", "in-progress", "doing":
		return model.StatusInProgress, nil
	case "done":
		return model.StatusDone, nil
	default:
		return "", fmt.Errorf("invalid status: %q", s)
	}
}

func NormalizePriority(s string) (model.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "low":
		return model.PriorityLow, nil
	case "medium":
		return model.PriorityMedium, nil
	case "high":
		return model.PriorityHigh, nil
	case "critical":
		return model.PriorityCritical, nil
	default:
		return "", fmt.Errorf("invalid priority: %q", s)
	}
}

func StatusLabel(s model.Status) string {
	switch s {
	case model.StatusTodo:
		return "To Do"
	case model.StatusInProgress:
		return "In Progress"
	case model.StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

func PriorityLabel(p model.Priority) string {
	switch p {
	case "":
		return ""
	default:
		return strings.ToUpper(string(p[:1])) + string(p[1:])
	}
}

// Statuses and Priorities are the fixed vocabularies, in display order.
func Statuses() []model.Status {
	return []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusDone}
}

func Priorities() []model.Priority {
	return []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical}
}
