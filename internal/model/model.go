package model

import "time"

type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleAuditor   Role = "auditor"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// TokenPair is the opaque bearer credential pair issued by the service.
// Valid states are both-present or both-absent, never one of the two.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (t TokenPair) Present() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Overdue is derived, never persisted: a due date in the past on a task that
// has not been completed.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return t.DueDate.Before(now)
}

// Filter selects the visible slice of the task collection. Empty fields mean
// "no constraint". Filters compare by value; a changed filter starts a new
// fetch generation.
type Filter struct {
	Search   string
	Status   Status
	Priority Priority
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

type TaskList struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

type AuditLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SecurityEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	EventType string    `json:"event_type"`
	Severity  string    `json:"severity"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Analytics struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	InactiveUsers int `json:"inactive_users"`
	TotalTasks    int `json:"total_tasks"`
}

// AdminSnapshot is the all-or-nothing batch the admin panel renders from.
type AdminSnapshot struct {
	Stats          Analytics
	Users          []UserProfile
	AuditLogs      []AuditLog
	SecurityEvents []SecurityEvent
}
