package data

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
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single request when no other timeout is configured.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

// Doer abstracts the HTTP round trip.
// *http.Client satisfies it; tests can substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues g3 console API calls.
// Every method maps to exactly one HTTP request; there is no retry.
type Client struct {
	// BaseURL is the server root, e.g. http://localhost:9090. The /api prefix is added.
	BaseURL string

	// HTTP performs requests. If nil, a default http.Client is used.
	HTTP Doer

	// Logger receives one debug record per request. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// NewClient creates a client for the given server using an http.Client
// with the given timeout (DefaultTimeout if zero).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithDoer creates a client with a custom request executor.
func NewClientWithDoer(baseURL string, doer Doer) *Client {
	return &Client{BaseURL: baseURL, HTTP: doer}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Client) doer() Doer {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// doJSON sends one request and decodes a successful JSON response into dst.
// body, if non-nil, is sent as JSON. An empty or null response leaves dst untouched.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, dst any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Op: op, Message: "encoding request", Err: err}
		}
		reqBody = bytes.NewReader(buf)
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/api" + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.doer().Do(req)
	if err != nil {
		c.logger().Debug("api request failed",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.logger().Debug("api request",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "latency", time.Since(start))
	if err != nil {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Message: "reading response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Message: serverMessage(raw)}
	}

	out := bytes.TrimSpace(raw)
	if len(out) == 0 || string(out) == "null" || dst == nil {
		return nil
	}
	if err := json.Unmarshal(out, dst); err != nil {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

// serverMessage extracts the message from an error body, or "" if there is none.
func serverMessage(raw []byte) string {
	var e apiError
	if err := json.Unmarshal(raw, &e); err != nil {
		return ""
	}
	return strings.TrimSpace(e.text())
}

// invalid wraps a validation failure of a decoded payload.
func invalid(op string, err error) error {
	return &RequestError{Op: op, StatusCode: http.StatusOK, Message: "invalid response", Err: err}
}

func instancePath(id string, suffix ...string) string {
	p := "/instances/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// ListInstances loads the summaries of all instances, in server order.
func (c *Client) ListInstances(ctx context.Context) ([]Instance, error) {
	const op = "listing instances"
	var instances []Instance
	if err := c.doJSON(ctx, op, http.MethodGet, "/instances", nil, &instances); err != nil {
		return nil, err
	}
	for _, inst := range instances {
		if err := inst.Validate(); err != nil {
			return nil, invalid(op, err)
		}
	}
	if instances == nil {
		instances = []Instance{}
	}
	return instances, nil
}

// GetInstance loads one instance with its git status and project files.
func (c *Client) GetInstance(ctx context.Context, id string) (*InstanceDetail, error) {
	op := fmt.Sprintf("loading instance %s", id)
	var detail InstanceDetail
	if err := c.doJSON(ctx, op, http.MethodGet, instancePath(id), nil, &detail); err != nil {
		return nil, err
	}
	if err := detail.Validate(); err != nil {
		return nil, invalid(op, err)
	}
	return &detail, nil
}

// GetInstanceLogs loads the tool calls and chat messages of one instance.
func (c *Client) GetInstanceLogs(ctx context.Context, id string) (*LogBundle, error) {
	op := fmt.Sprintf("loading logs for %s", id)
	var logs LogBundle
	if err := c.doJSON(ctx, op, http.MethodGet, instancePath(id, "logs"), nil, &logs); err != nil {
		return nil, err
	}
	if err := logs.Validate(id); err != nil {
		return nil, invalid(op, err)
	}
	if logs.InstanceID == "" {
		logs.InstanceID = id
	}
	return &logs, nil
}

// LaunchInstance starts a new instance and returns its summary.
// A failed launch carries the server's message when it sent one,
// otherwise a generic message with the status code.
func (c *Client) LaunchInstance(ctx context.Context, req LaunchRequest) (*Instance, error) {
	const op = "launching instance"
	if err := req.Validate(); err != nil {
		return nil, &RequestError{Op: op, Message: "invalid request", Err: err}
	}
	var inst Instance
	err := c.doJSON(ctx, op, http.MethodPost, "/instances/launch", req, &inst)
	if err != nil {
		var re *RequestError
		if errors.As(err, &re) && re.StatusCode != 0 && re.Message == "" {
			re.Message = fmt.Sprintf("launch failed with status %d", re.StatusCode)
		}
		return nil, err
	}
	if err := inst.Validate(); err != nil {
		return nil, invalid(op, err)
	}
	return &inst, nil
}

// KillInstance terminates an instance.
func (c *Client) KillInstance(ctx context.Context, id string) (*Ack, error) {
	return c.control(ctx, fmt.Sprintf("killing instance %s", id), instancePath(id, "kill"))
}

// RestartInstance restarts an instance.
func (c *Client) RestartInstance(ctx context.Context, id string) (*Ack, error) {
	return c.control(ctx, fmt.Sprintf("restarting instance %s", id), instancePath(id, "restart"))
}

func (c *Client) control(ctx context.Context, op, path string) (*Ack, error) {
	// An empty 2xx body counts as success.
	ack := Ack{Success: true}
	if err := c.doJSON(ctx, op, http.MethodPost, path, struct{}{}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// GetState loads the opaque UI state blob. A missing state yields "null".
func (c *Client) GetState(ctx context.Context) (json.RawMessage, error) {
	var state json.RawMessage
	if err := c.doJSON(ctx, "loading state", http.MethodGet, "/state", nil, &state); err != nil {
		return nil, err
	}
	if len(state) == 0 {
		state = json.RawMessage("null")
	}
	return state, nil
}

// SaveState stores the opaque UI state blob. It must be valid JSON.
func (c *Client) SaveState(ctx context.Context, state json.RawMessage) (*Ack, error) {
	const op = "saving state"
	if !json.Valid(state) {
		return nil, &RequestError{Op: op, Message: "state is not valid JSON"}
	}
	ack := Ack{Success: true}
	if err := c.doJSON(ctx, op, http.MethodPost, "/state", state, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
