package tui

import (
	"context"
	"encoding/json"

	"github.com/andyrewlee/g3console/data"
)

// API is the data access layer the console works against.
// *data.Client implements it; tests substitute a stub.
type API interface {
	ListInstances(ctx context.Context) ([]data.Instance, error)
	GetInstance(ctx context.Context, id string) (*data.InstanceDetail, error)
	GetInstanceLogs(ctx context.Context, id string) (*data.LogBundle, error)
	LaunchInstance(ctx context.Context, req data.LaunchRequest) (*data.Instance, error)
	KillInstance(ctx context.Context, id string) (*data.Ack, error)
	RestartInstance(ctx context.Context, id string) (*data.Ack, error)
	GetState(ctx context.Context) (json.RawMessage, error)
	SaveState(ctx context.Context, state json.RawMessage) (*data.Ack, error)
}

var _ API = (*data.Client)(nil)
