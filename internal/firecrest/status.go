package firecrest

import (
	"context"
	"fmt"

	"github.com/cscs/firecrest-ui-api/internal/domain/model"
)

// StatusAPI wraps the backend status endpoints.
type StatusAPI struct {
	client *Client
}

// NewStatusAPI creates a StatusAPI over the given client.
func NewStatusAPI(client *Client) *StatusAPI {
	return &StatusAPI{client: client}
}

type systemsEnvelope struct {
	Systems []model.System `json:"systems"`
}

// GetSystems fetches all configured systems with their per-service health
// probes and mounted filesystems.
func (a *StatusAPI) GetSystems(ctx context.Context, token string) ([]model.System, error) {
	var envelope systemsEnvelope
	err := a.client.Get(ctx, Call{
		Path:   "/status/systems",
		Target: APIRemote,
		Token:  token,
	}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("get systems: %w", err)
	}
	return envelope.Systems, nil
}

// GetSystem fetches one system by name.
func (a *StatusAPI) GetSystem(ctx context.Context, token, name string) (*model.System, error) {
	systems, err := a.GetSystems(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range systems {
		if systems[i].Name == name {
			return &systems[i], nil
		}
	}
	return nil, &ErrorResponse{
		Message:    fmt.Sprintf("system %q not found", name),
		StatusCode: 404,
		StatusText: ReasonPhrase(404),
	}
}
