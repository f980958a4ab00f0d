package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// UIState is what the console remembers between runs.
type UIState struct {
	LastPath string `json:"last_path,omitempty"`
}

// EncodeState returns the blob stored for s.
func EncodeState(s UIState) (json.RawMessage, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding ui state: %w", err)
	}
	return b, nil
}

// DecodeState parses a stored blob. A null or empty blob is the zero state;
// unknown fields are ignored so other clients can share the blob.
func DecodeState(raw json.RawMessage) (UIState, error) {
	var s UIState
	if len(raw) == 0 || string(raw) == "null" {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return UIState{}, fmt.Errorf("decoding ui state: %w", err)
	}
	return s, nil
}

// RestorePath returns the last path stored on the server, or "" if none
// could be loaded. Failures are logged and otherwise ignored.
func RestorePath(ctx context.Context, api API, log *slog.Logger) string {
	raw, err := api.GetState(ctx)
	if err != nil {
		log.Warn("loading ui state failed", "error", err)
		return ""
	}
	s, err := DecodeState(raw)
	if err != nil {
		log.Warn("ignoring unreadable ui state", "error", err)
		return ""
	}
	if s.LastPath != "" && ParseRoute(s.LastPath).Kind == RouteNotFound {
		return ""
	}
	return s.LastPath
}

// SavePath stores path as the last visited path. Failures are logged and
// otherwise ignored.
func SavePath(ctx context.Context, api API, path string, log *slog.Logger) {
	if path == "" {
		return
	}
	raw, err := EncodeState(UIState{LastPath: path})
	if err != nil {
		log.Warn("saving ui state failed", "error", err)
		return
	}
	if _, err := api.SaveState(ctx, raw); err != nil {
		log.Warn("saving ui state failed", "error", err)
	}
}
