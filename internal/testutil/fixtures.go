package testutil

import (
	"encoding/json"
	"time"
)

// Fixtures provides pre-built API responses for mocking.
// Types here mirror data.* types as raw maps to avoid import cycles.
type Fixtures struct{}

// NewFixtures creates a new Fixtures instance.
func NewFixtures() *Fixtures {
	return &Fixtures{}
}

// fixtureTime is the fixed timestamp used in fixtures.
var fixtureTime = time.Date(2026, 1, 2, 7, 9, 3, 0, time.UTC)

// Instances returns a sample GET /api/instances response.
func (f *Fixtures) Instances() []map[string]any {
	return []map[string]any{
		{
			"id":         "alpha",
			"workspace":  "/work/alpha",
			"status":     "running",
			"pid":        4242,
			"started_at": fixtureTime.Format(time.RFC3339),
			"stats": map[string]any{
				"total_tokens":  1234567,
				"tool_calls":    42,
				"errors":        1,
				"duration_secs": 125.0,
			},
			"latest_message": "Running cargo test in crates/g3-core",
		},
		{
			"id":        "bravo",
			"workspace": "/work/bravo",
			"status":    "completed",
			"stats": map[string]any{
				"total_tokens":  5000,
				"tool_calls":    3,
				"errors":        0,
				"duration_secs": 30.0,
			},
		},
	}
}

// InstancesJSON returns the JSON encoding of Instances.
func (f *Fixtures) InstancesJSON() []byte {
	b, _ := json.Marshal(f.Instances())
	return b
}

// InstanceDetail returns a sample GET /api/instances/{id} response.
func (f *Fixtures) InstanceDetail(id string) map[string]any {
	detail := map[string]any{
		"id":        id,
		"workspace": "/work/" + id,
		"status":    "running",
		"stats": map[string]any{
			"total_tokens":  1234567,
			"tool_calls":    42,
			"errors":        1,
			"duration_secs": 125.0,
		},
		"git_status":    "On branch main\nChanges not staged for commit:\n\tmodified: src/lib.rs",
		"project_files": []string{"Cargo.toml", "src/lib.rs", "src/main.rs"},
	}
	for _, inst := range f.Instances() {
		if inst["id"] == id {
			for k, v := range inst {
				detail[k] = v
			}
		}
	}
	return detail
}

// InstanceDetailJSON returns the JSON encoding of InstanceDetail.
func (f *Fixtures) InstanceDetailJSON(id string) []byte {
	b, _ := json.Marshal(f.InstanceDetail(id))
	return b
}

// Logs returns a sample GET /api/instances/{id}/logs response.
func (f *Fixtures) Logs(id string) map[string]any {
	return map[string]any{
		"instance_id": id,
		"tool_calls": []map[string]any{
			{"tool": "read_file", "args": map[string]any{"path": "src/lib.rs"}, "result": "ok", "success": true, "timestamp": fixtureTime.Format(time.RFC3339)},
			{"tool": "shell", "args": map[string]any{"command": "cargo test"}, "result": "1 failed", "success": false, "timestamp": fixtureTime.Add(time.Minute).Format(time.RFC3339)},
		},
		"chat_messages": []map[string]any{
			{"agent": "player", "role": "assistant", "content": "Implemented the parser.", "timestamp": fixtureTime.Format(time.RFC3339)},
			{"agent": "coach", "role": "assistant", "content": "Tests fail on empty input.", "timestamp": fixtureTime.Add(2 * time.Minute).Format(time.RFC3339)},
		},
	}
}

// LogsJSON returns the JSON encoding of Logs.
func (f *Fixtures) LogsJSON(id string) []byte {
	b, _ := json.Marshal(f.Logs(id))
	return b
}

// Ack returns an acknowledgement body.
func (f *Fixtures) Ack(message string) []byte {
	b, _ := json.Marshal(map[string]any{"success": true, "message": message})
	return b
}

// Error returns an error body in the server's format.
func (f *Fixtures) Error(message string) []byte {
	b, _ := json.Marshal(map[string]any{"error": message})
	return b
}
