// Package testutil provides testing utilities for the g3 console.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MockServer fakes the g3 console API over a real HTTP listener.
// It returns pre-configured responses based on request patterns.
type MockServer struct {
	mu       sync.Mutex
	handlers []MockHandler
	calls    []MockCall
	server   *httptest.Server

	// Default response when no handler matches
	DefaultStatus int
	DefaultBody   []byte
}

// MockHandler defines a response for a request pattern.
type MockHandler struct {
	// Match returns true if this handler should handle the request.
	Match func(call MockCall) bool

	// Response returns the status code and body.
	// Called only if Match returns true.
	Response func(call MockCall) (status int, body []byte)
}

// MockCall records a request for verification.
type MockCall struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Args returns the call as a pattern-comparable slice: method, then path segments.
// "GET /api/instances/abc" becomes ["GET", "api", "instances", "abc"].
func (c MockCall) Args() []string {
	args := []string{c.Method}
	for _, seg := range strings.Split(strings.Trim(c.Path, "/"), "/") {
		if seg != "" {
			args = append(args, seg)
		}
	}
	return args
}

// String returns a debug representation of the call.
func (c MockCall) String() string {
	return fmt.Sprintf("%s %s", c.Method, c.Path)
}

// NewMockServer starts a mock server that is closed when the test ends.
func NewMockServer(t testing.TB) *MockServer {
	t.Helper()
	m := &MockServer{
		DefaultStatus: http.StatusNotFound,
		DefaultBody:   []byte(`{"error":"not found"}`),
	}
	m.server = httptest.NewServer(m)
	t.Cleanup(m.Close)
	return m
}

// URL returns the server root, suitable as a client base URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// Close shuts the server down.
func (m *MockServer) Close() {
	m.server.Close()
}

// On registers a fixed response for requests matching the pattern.
// The pattern is method then path segments; "*" matches any single segment
// and a trailing "..." matches any remainder.
func (m *MockServer) On(pattern []string, status int, body []byte) *MockServer {
	return m.OnFunc(pattern, func(MockCall) (int, []byte) {
		return status, body
	})
}

// OnFunc registers a handler with a custom response function.
func (m *MockServer) OnFunc(pattern []string, fn func(call MockCall) (int, []byte)) *MockServer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers = append(m.handlers, MockHandler{
		Match: func(call MockCall) bool {
			return matchArgs(call.Args(), pattern)
		},
		Response: fn,
	})
	return m
}

// ServeHTTP implements http.Handler.
func (m *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	call := MockCall{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Header: r.Header.Clone(),
		Body:   body,
	}

	m.mu.Lock()
	m.calls = append(m.calls, call)

	// Find matching handler (last registered wins)
	var handler *MockHandler
	for i := len(m.handlers) - 1; i >= 0; i-- {
		if m.handlers[i].Match(call) {
			handler = &m.handlers[i]
			break
		}
	}
	status, out := m.DefaultStatus, m.DefaultBody
	m.mu.Unlock()

	if handler != nil {
		status, out = handler.Response(call)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

// Calls returns all recorded requests.
func (m *MockServer) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// Reset clears all recorded calls (but keeps handlers).
func (m *MockServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Called returns true if any request was received.
func (m *MockServer) Called() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls) > 0
}

// CalledWith returns true if a request matching the pattern was received.
func (m *MockServer) CalledWith(pattern []string) bool {
	return m.CallCount(pattern) > 0
}

// CallCount returns the number of requests matching the pattern.
func (m *MockServer) CallCount(pattern []string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, call := range m.calls {
		if matchArgs(call.Args(), pattern) {
			count++
		}
	}
	return count
}

// matchArgs returns true if args matches the pattern.
// Elements match one-to-one with "*" as wildcard; a final "..." accepts any tail.
func matchArgs(args, pattern []string) bool {
	if n := len(pattern); n > 0 && pattern[n-1] == "..." {
		pattern = pattern[:n-1]
		if len(args) < len(pattern) {
			return false
		}
	} else if len(args) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && p != args[i] {
			return false
		}
	}
	return true
}
