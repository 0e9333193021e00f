package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dianegit/develops-task-management/internal/model"
)

// ErrValidation marks draft errors rejected before any network dispatch.
var ErrValidation = errors.New("validation failed")

// ValidationError names the offending field so UIs can show the message
// next to the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// TaskDraft is user input for create/update, before validation. DueDate is
// the raw field value: empty means "no due date" and is transmitted as null,
// never as an empty-string date.
type TaskDraft struct {
	Title       string
	Description string
	Priority    model.Priority
	Status      model.Status
	Category    string
	Tags        []string
	DueDate     string
}

type taskPayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Priority    model.Priority `json:"priority,omitempty"`
	Status      model.Status   `json:"status,omitempty"`
	Category    string         `json:"category,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	DueDate     *time.Time     `json:"due_date"`
}

func (d TaskDraft) payload() (taskPayload, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return taskPayload{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	due, err := ParseDueDate(d.DueDate)
	if err != nil {
		return taskPayload{}, &ValidationError{Field: "due_date", Reason: err.Error()}
	}
	return taskPayload{
		Title:       title,
		Description: d.Description,
		Priority:    d.Priority,
		Status:      d.Status,
		Category:    strings.TrimSpace(d.Category),
		Tags:        d.Tags,
		DueDate:     due,
	}, nil
}

// ParseDueDate turns a raw field value into a UTC instant. A cleared field
// yields nil. Accepted forms: RFC 3339, "2006-01-02 15:04", and a bare date
// (midnight local time).
func ParseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q (want e.g. 2006-01-02 or 2006-01-02 15:04)", raw)
}
