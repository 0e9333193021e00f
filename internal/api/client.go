// Package api is the REST client for the task-management service. It is the
// only component that talks to the network; everything above it consumes
// plain model values and wrapped errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dianegit/develops-task-management/internal/credstore"
	"github.com/dianegit/develops-task-management/internal/model"
)

var (
	// ErrNotAuthenticated: no stored credentials, or the server rejected the
	// bearer token. In the latter case the stored pair has already been
	// cleared by the 401 handler below.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidCredentials: the login endpoint rejected the email/password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden: authenticated but not allowed (e.g. non-admin on /admin).
	ErrForbidden = errors.New("forbidden")
)

// Error carries the HTTP status and the server's detail message for
// responses that don't map to a sentinel above.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if strings.TrimSpace(e.Detail) == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
}

// CredentialSource is the slice of the credential store the client needs.
// Clear is invoked only from the 401 handler; that path and the session
// manager's login/logout are the store's only writers.
type CredentialSource interface {
	Load(ctx context.Context) (model.TokenPair, error)
	Clear(ctx context.Context) error
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	logger  *log.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger enables diagnostics. Default is silence.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

type registerPayload struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. It never stores tokens; callers log in
// explicitly afterwards.
func (c *Client) Register(ctx context.Context, email, fullName, password string) (model.UserProfile, error) {
	var out model.UserProfile
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, registerPayload{Email: email, FullName: fullName, Password: password}, &out, false)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("register: %w", err)
	}
	return out, nil
}

// Login exchanges credentials for a token pair. Storing the pair is the
// session manager's job, not ours.
func (c *Client) Login(ctx context.Context, email, password string) (model.TokenPair, error) {
	var out model.TokenPair
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginPayload{Email: email, Password: password}, &out, false)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return model.TokenPair{}, ErrInvalidCredentials
		}
		return model.TokenPair{}, fmt.Errorf("login: %w", err)
	}
	if !out.Present() {
		return model.TokenPair{}, fmt.Errorf("login: server returned a partial token pair")
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil, true); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (c *Client) Profile(ctx context.Context) (model.UserProfile, error) {
	var out model.UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &out, true); err != nil {
		return model.UserProfile{}, fmt.Errorf("profile: %w", err)
	}
	return out, nil
}

func (c *Client) ListTasks(ctx context.Context, f model.Filter) (model.TaskList, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	var out model.TaskList
	if err := c.do(ctx, http.MethodGet, "/tasks", q, nil, &out, true); err != nil {
		return model.TaskList{}, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, nil, &out, true); err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return out, nil
}

// CreateTask validates the draft before any network dispatch.
func (c *Client) CreateTask(ctx context.Context, d TaskDraft) (model.Task, error) {
	payload, err := d.payload()
	if err != nil {
		return model.Task{}, err
	}
	var out model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, payload, &out, true); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, d TaskDraft) (model.Task, error) {
	payload, err := d.payload()
	if err != nil {
		return model.Task{}, err
	}
	var out model.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), nil, payload, &out, true); err != nil {
		return model.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	return out, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	var out model.Task
	body := struct {
		Status model.Status `json:"status"`
	}{Status: status}
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id)+"/status", nil, body, &out, true); err != nil {
		return model.Task{}, fmt.Errorf("update task %s status: %w", id, err)
	}
	return out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil, true); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func (c *Client) Analytics(ctx context.Context) (model.Analytics, error) {
	var out model.Analytics
	if err := c.do(ctx, http.MethodGet, "/admin/analytics", nil, nil, &out, true); err != nil {
		return model.Analytics{}, fmt.Errorf("analytics: %w", err)
	}
	return out, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	var out []model.UserProfile
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, nil, &out, true); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (c *Client) UpdateUserStatus(ctx context.Context, id string, active bool) (model.UserProfile, error) {
	var out model.UserProfile
	body := struct {
		IsActive bool `json:"is_active"`
	}{IsActive: active}
	if err := c.do(ctx, http.MethodPatch, "/admin/users/"+url.PathEscape(id)+"/status", nil, body, &out, true); err != nil {
		return model.UserProfile{}, fmt.Errorf("update user %s status: %w", id, err)
	}
	return out, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id string, role model.Role) (model.UserProfile, error) {
	var out model.UserProfile
	body := struct {
		Role model.Role `json:"role"`
	}{Role: role}
	if err := c.do(ctx, http.MethodPatch, "/admin/users/"+url.PathEscape(id)+"/role", nil, body, &out, true); err != nil {
		return model.UserProfile{}, fmt.Errorf("update user %s role: %w", id, err)
	}
	return out, nil
}

func (c *Client) AuditLogs(ctx context.Context, limit int) ([]model.AuditLog, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []model.AuditLog
	if err := c.do(ctx, http.MethodGet, "/admin/audit-logs", q, nil, &out, true); err != nil {
		return nil, fmt.Errorf("audit logs: %w", err)
	}
	return out, nil
}

func (c *Client) SecurityEvents(ctx context.Context, limit int) ([]model.SecurityEvent, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []model.SecurityEvent
	if err := c.do(ctx, http.MethodGet, "/admin/security-events", q, nil, &out, true); err != nil {
		return nil, fmt.Errorf("security events: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		pair, err := c.creds.Load(ctx)
		if err != nil {
			if errors.Is(err, credstore.ErrNoCredentials) {
				return ErrNotAuthenticated
			}
			return fmt.Errorf("load credentials: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && authed {
		// The server rejected the bearer token; the stored pair is dead.
		// This is the one write path the store grants the HTTP layer.
		if clearErr := c.creds.Clear(ctx); clearErr != nil {
			c.logf("clear credentials after 401: %v", clearErr)
		}
		return ErrNotAuthenticated
	}
	if resp.StatusCode == http.StatusForbidden {
		return ErrForbidden
	}
	if resp.StatusCode >= 400 {
		return &Error{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 8<<10))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(raw))
}
