// Package todoapi implements the service.Gateway interface over the task service's REST API.
package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"todo/internal/config"
	"todo/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// UserAgent is sent with every request.
	UserAgent = "todo/0.1.0"

	// RequestIDHeader carries a per-request id for server-side correlation.
	RequestIDHeader = "X-Request-ID"
)

// Operation names used in failure messages.
const (
	opList   = "fetching tasks"
	opGet    = "fetching task"
	opCreate = "creating task"
	opUpdate = "updating task"
	opDelete = "deleting task"
)

// Client implements service.Gateway against the remote task service.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     *slog.Logger
}

// New creates a client from config. When an API token is configured, every
// request carries it as a bearer token.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Client, error) {
	httpClient := http.DefaultClient
	if cfg.Remote.APIToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Remote.APIToken, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	c, err := NewWithHTTPClient(cfg.Remote.BaseURL, httpClient, log)
	if err != nil {
		return nil, err
	}
	if cfg.Remote.Timeout > 0 {
		c.timeout = cfg.Remote.Timeout
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, log *slog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		base:    base,
		http:    httpClient,
		timeout: APITimeout,
		log:     log,
	}, nil
}

// ListTasks implements service.Gateway.
func (c *Client) ListTasks(ctx context.Context, completed *bool, sortSpec string) service.Outcome[[]service.Task] {
	q := url.Values{}
	if completed != nil {
		q.Set("completed", strconv.FormatBool(*completed))
	}
	if sortSpec != "" {
		q.Set("sort_by", sortSpec)
	}

	var tasks []service.Task
	present, f := c.do(ctx, opList, http.MethodGet, "tasks", nil, q, nil, &tasks)
	if f != nil {
		return service.Fail[[]service.Task](f)
	}
	if !present || tasks == nil {
		tasks = []service.Task{}
	}
	return service.Succeed(tasks)
}

// GetTask implements service.Gateway.
func (c *Client) GetTask(ctx context.Context, id string) service.Outcome[service.Task] {
	return c.taskCall(ctx, opGet, http.MethodGet, id, nil)
}

// CreateTask implements service.Gateway.
func (c *Client) CreateTask(ctx context.Context, draft service.Draft) service.Outcome[service.Task] {
	var task service.Task
	present, f := c.do(ctx, opCreate, http.MethodPost, "tasks", nil, nil, draft, &task)
	if f != nil {
		return service.Fail[service.Task](f)
	}
	if !present {
		return service.Fail[service.Task](service.EmptyTaskFailure(opCreate))
	}
	return service.Succeed(task)
}

// UpdateTask implements service.Gateway.
func (c *Client) UpdateTask(ctx context.Context, id string, draft service.Draft) service.Outcome[service.Task] {
	return c.taskCall(ctx, opUpdate, http.MethodPut, id, draft)
}

// DeleteTask implements service.Gateway.
// Any 2xx answer counts as deleted; the body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id string) service.Outcome[bool] {
	_, f := c.do(ctx, opDelete, http.MethodDelete, "tasks/{id}", map[string]string{"id": id}, nil, nil, nil)
	if f != nil {
		return service.Fail[bool](f)
	}
	return service.Succeed(true)
}

// taskCall runs a single-task call on tasks/{id} that must return a task body.
func (c *Client) taskCall(ctx context.Context, op, method, id string, body any) service.Outcome[service.Task] {
	var task service.Task
	present, f := c.do(ctx, op, method, "tasks/{id}", map[string]string{"id": id}, nil, body, &task)
	if f != nil {
		return service.Fail[service.Task](f)
	}
	if !present {
		return service.Fail[service.Task](service.EmptyTaskFailure(op))
	}
	return service.Succeed(task)
}

// do performs one request. It reports whether the success response carried a
// non-empty body decoded into out.
func (c *Client) do(ctx context.Context, op, method, path string, params map[string]string, query url.Values, body, out any) (bool, *service.Failure) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.base
	u.Path = c.base.Path + path
	u.RawPath = ""
	googleapi.Expand(&u, params)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return false, service.HTTPFailure(op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return false, service.HTTPFailure(op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "op", op, "method", method, "path", u.Path, "request_id", reqID, "error", err)
		return false, wrapError(op, err)
	}
	defer res.Body.Close()

	c.log.Debug("request done", "op", op, "method", method, "path", u.Path, "status", res.StatusCode, "request_id", reqID)

	if err := googleapi.CheckResponse(res); err != nil {
		var detail string
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			detail = gerr.Message
		}
		c.log.Debug("service rejected request", "op", op, "status", res.StatusCode, "detail", detail, "request_id", reqID)
		return false, service.StatusFailure(op, statusText(res), err)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return false, wrapError(op, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 || string(bytes.TrimSpace(data)) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, service.HTTPFailure(op, err)
	}
	return true, nil
}

// statusText returns the response reason phrase, e.g. "Not Found".
func statusText(res *http.Response) string {
	prefix := strconv.Itoa(res.StatusCode) + " "
	if text := strings.TrimPrefix(res.Status, prefix); text != "" && text != res.Status {
		return text
	}
	if text := http.StatusText(res.StatusCode); text != "" {
		return text
	}
	return strconv.Itoa(res.StatusCode)
}

// wrapError classifies a transport error. Everything that surfaces from the
// connection (dial, reset, timeout, truncated body) is a network failure;
// malformed responses are protocol failures.
func wrapError(op string, err error) *service.Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return service.NetworkFailure(op, errors.New("request timed out"))
	}

	var uerr *url.Error
	if errors.As(err, &uerr) {
		if strings.Contains(uerr.Err.Error(), "malformed HTTP") {
			return service.HTTPFailure(op, uerr.Err)
		}
		return service.NetworkFailure(op, uerr.Err)
	}
	return service.NetworkFailure(op, err)
}
