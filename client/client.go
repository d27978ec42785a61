// Package client is a Go SDK for the task manager HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/domain/user"
	"github.com/gofiber/fiber/v2"
)

// DefaultTimeout bounds each request when the context has no deadline.
const DefaultTimeout = 10 * time.Second

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Message string
	// Detail is only sent by servers running in development mode.
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("task manager api: %d %s", e.Status, e.Message)
}

// Session is returned by Register and Login.
type Session struct {
	User  user.Profile `json:"user"`
	Token string       `json:"token"`
}

// Task is a task together with its owner.
type Task struct {
	task.Task
	User user.Summary `json:"user"`
}

// RegisterInput is the body of a registration.
type RegisterInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
}

// CreateTaskInput is the body of a task creation.
type CreateTaskInput struct {
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      *task.Status `json:"status,omitempty"`
}

// UpdateTaskInput is a partial update. Use task.Null to clear description or
// completedAt; zero fields are not sent.
type UpdateTaskInput struct {
	Title       *string               `json:"title,omitempty"`
	Description task.Field[string]    `json:"description,omitzero"`
	Status      *task.Status          `json:"status,omitempty"`
	CompletedAt task.Field[time.Time] `json:"completedAt,omitzero"`
}

// Health is the body of GET /health.
type Health struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Checks    map[string]struct {
		Healthy bool   `json:"healthy"`
		Message string `json:"message"`
	} `json:"checks"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
}

// Client talks to one task manager server. It is safe for concurrent use.
type Client struct {
	baseURL        string
	http           *fiber.Client
	timeout        time.Duration
	onUnauthorized func()

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithFiberClient sets the underlying HTTP client.
func WithFiberClient(c *fiber.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithToken starts the client with an existing bearer token.
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

// WithTimeout sets the per-request timeout used when the context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithUnauthorizedHandler registers fn to run whenever the server answers 401.
// The stored token is cleared before fn runs.
func WithUnauthorizedHandler(fn func()) Option {
	return func(cl *Client) {
		cl.onUnauthorized = fn
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:3001".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &fiber.Client{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		}
	}
	return c
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token. An empty token signs the client out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	var session Session
	if err := c.do(ctx, fiber.MethodPost, "/api/auth/register", in, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.do(ctx, fiber.MethodPost, "/api/auth/login", body, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// Logout forgets the stored token. Tokens are stateless, so the server is not called.
func (c *Client) Logout() {
	c.SetToken("")
}

// Me returns the profile of the signed-in user.
func (c *Client) Me(ctx context.Context) (*user.Profile, error) {
	var profile user.Profile
	if err := c.do(ctx, fiber.MethodGet, "/api/auth/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListTasks returns the caller's tasks, newest first. An empty status lists all.
func (c *Client) ListTasks(ctx context.Context, status task.Status) ([]Task, error) {
	path := "/api/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var tasks []Task
	if err := c.do(ctx, fiber.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, in CreateTaskInput) (*Task, error) {
	var t Task
	if err := c.do(ctx, fiber.MethodPost, "/api/tasks", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := c.do(ctx, fiber.MethodGet, taskPath(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (*Task, error) {
	var t Task
	if err := c.do(ctx, fiber.MethodPut, taskPath(id), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, fiber.MethodDelete, taskPath(id), nil, nil)
}

// Health reports server liveness. A degraded server still returns its report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	status, body, err := c.send(ctx, fiber.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("failed to decode health response (status %d): %w", status, err)
	}
	return &h, nil
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

// do sends a request and unwraps the envelope into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	status, body, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &APIError{Status: status, Message: fmt.Sprintf("unexpected response body: %v", err)}
	}

	if status >= 400 || !env.Success {
		if status == fiber.StatusUnauthorized {
			c.SetToken("")
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}
		return &APIError{Status: status, Message: env.Error, Detail: env.Detail}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// send performs one HTTP round trip.
func (c *Client) send(ctx context.Context, method, path string, in any) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	var agent *fiber.Agent
	target := c.baseURL + path
	switch method {
	case fiber.MethodPost:
		agent = c.http.Post(target)
	case fiber.MethodPut:
		agent = c.http.Put(target)
	case fiber.MethodDelete:
		agent = c.http.Delete(target)
	default:
		agent = c.http.Get(target)
	}

	agent.Timeout(timeout)
	if token := c.Token(); token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if in != nil {
		agent.JSON(in)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, nil, fmt.Errorf("%s %s failed: %w", method, path, errs[0])
	}
	return status, body, nil
}
