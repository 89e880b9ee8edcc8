// Package api implements the HTTP client for the TaskVault REST API.
// It wraps the wire contract (JSON bodies, bearer auth, status codes) behind
// typed methods so the CLI never touches net/http directly.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dklimov/taskvault/internal/common"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type TaskList struct {
	Tasks     []Task `json:"tasks"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Pending   int64  `json:"pending"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type taskPayload struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

type apiError struct {
	Detail string `json:"detail"`
}

// Client talks to one TaskVault server. Token is set after Signup/Signin and
// attached to every subsequent request.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

// ClearToken drops the bearer token, returning the client to anonymous state.
func (c *Client) ClearToken() { c.token = "" }

// HasToken reports whether a bearer token is currently set.
func (c *Client) HasToken() bool { return c.token != "" }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e apiError
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Detail != "" {
			return fmt.Errorf("server: %s", e.Detail)
		}
		return fmt.Errorf("server: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Signup creates an account and stores the returned token on the client.
func (c *Client) Signup(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Signin authenticates and stores the returned token on the client.
func (c *Client) Signin(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Signout acknowledges sign-out with the server and drops the local token.
func (c *Client) Signout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil)
	c.token = ""
	return err
}

func (c *Client) CreateTask(ctx context.Context, title string, description *string) (*Task, error) {
	var out Task
	req := taskPayload{Title: &title, Description: description}
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTasks(ctx context.Context) (*TaskList, error) {
	var out TaskList
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask sends only the provided fields; nil leaves a field unchanged.
func (c *Client) UpdateTask(ctx context.Context, id string, title, description *string) (*Task, error) {
	var out Task
	req := taskPayload{Title: title, Description: description}
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) ToggleTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id+"/toggle", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
