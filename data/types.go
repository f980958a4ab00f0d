// Package data provides the data access layer for the g3 console.
// It talks to the g3 console API over HTTP and parses its JSON responses.
package data

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the lifecycle state of an instance as reported by the server.
type Status string

const (
	StatusRunning    Status = "running"
	StatusIdle       Status = "idle"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusTerminated Status = "terminated"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusIdle, StatusCompleted, StatusFailed, StatusTerminated:
		return true
	}
	return false
}

// IsActive returns true if the instance is still doing (or waiting for) work.
func (s Status) IsActive() bool {
	return s == StatusRunning || s == StatusIdle
}

// Stats holds the usage counters of one instance.
type Stats struct {
	TotalTokens  int64   `json:"total_tokens"`
	ToolCalls    int64   `json:"tool_calls"`
	Errors       int64   `json:"errors"`
	DurationSecs float64 `json:"duration_secs"`
}

// Validate checks that no counter is negative.
func (s Stats) Validate() error {
	switch {
	case s.TotalTokens < 0:
		return fmt.Errorf("total_tokens is negative (%d)", s.TotalTokens)
	case s.ToolCalls < 0:
		return fmt.Errorf("tool_calls is negative (%d)", s.ToolCalls)
	case s.Errors < 0:
		return fmt.Errorf("errors is negative (%d)", s.Errors)
	case s.DurationSecs < 0:
		return fmt.Errorf("duration_secs is negative (%g)", s.DurationSecs)
	}
	return nil
}

// Instance is the summary of a running (or finished) agent instance.
// Served by: GET /api/instances
type Instance struct {
	ID            string     `json:"id"`
	Workspace     string     `json:"workspace"`
	Status        Status     `json:"status"`
	PID           int        `json:"pid,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	Stats         Stats      `json:"stats"`
	LatestMessage string     `json:"latest_message,omitempty"`
}

// Validate checks the fields the console relies on.
func (i Instance) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("instance has no id")
	}
	if !i.Status.Valid() {
		return fmt.Errorf("instance %s: unknown status %q", i.ID, i.Status)
	}
	if err := i.Stats.Validate(); err != nil {
		return fmt.Errorf("instance %s: %w", i.ID, err)
	}
	return nil
}

// InstanceDetail is one instance with its repository context.
// Served by: GET /api/instances/{id}
type InstanceDetail struct {
	Instance
	GitStatus    string   `json:"git_status"`
	ProjectFiles []string `json:"project_files"`
}

// Validate checks the embedded summary.
func (d InstanceDetail) Validate() error {
	return d.Instance.Validate()
}

// ToolCall is one tool invocation made by an agent.
type ToolCall struct {
	Tool      string          `json:"tool"`
	Args      json.RawMessage `json:"args,omitempty"`
	Result    string          `json:"result,omitempty"`
	Success   bool            `json:"success"`
	Timestamp time.Time       `json:"timestamp"`
}

// Agent roles that can author chat messages.
const (
	AgentPlayer = "player"
	AgentCoach  = "coach"
	AgentUser   = "user"
	AgentSystem = "system"
)

// ChatMessage is one message in an instance's conversation.
// Agent names the agent that produced it (player, coach, ...);
// Role is the conversational role (user, assistant, tool).
type ChatMessage struct {
	Agent     string    `json:"agent"`
	Role      string    `json:"role,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// LogBundle holds the tool calls and chat history of one instance, oldest first.
// Served by: GET /api/instances/{id}/logs
type LogBundle struct {
	InstanceID   string        `json:"instance_id"`
	ToolCalls    []ToolCall    `json:"tool_calls"`
	ChatMessages []ChatMessage `json:"chat_messages"`
}

// Validate checks the bundle against the instance it was requested for.
func (b LogBundle) Validate(id string) error {
	if b.InstanceID != "" && b.InstanceID != id {
		return fmt.Errorf("logs belong to instance %s, requested %s", b.InstanceID, id)
	}
	for n, tc := range b.ToolCalls {
		if tc.Tool == "" {
			return fmt.Errorf("tool call %d has no tool name", n)
		}
	}
	return nil
}

// LaunchRequest describes a new instance.
// Sent to: POST /api/instances/launch
type LaunchRequest struct {
	Workspace  string `json:"workspace"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	Prompt     string `json:"prompt,omitempty"`
	Autonomous bool   `json:"autonomous,omitempty"`
	MaxTurns   int    `json:"max_turns,omitempty"`
}

// Validate checks the request before it is sent.
func (r LaunchRequest) Validate() error {
	if r.Workspace == "" {
		return fmt.Errorf("workspace is required")
	}
	if r.MaxTurns < 0 {
		return fmt.Errorf("max_turns must not be negative")
	}
	return nil
}

// Ack is the acknowledgement returned by control endpoints.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// apiError is the error body the server sends with non-success statuses.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e apiError) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
