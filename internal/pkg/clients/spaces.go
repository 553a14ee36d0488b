package clients

import (
	"context"
	"fmt"
	"net/http"
)

type Space struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SpaceRegistry resolves workspace ids to the module (space type) they instantiate.
type SpaceRegistry struct {
	http *httpClient
}

func NewSpaceRegistry(baseURL string, cfg Config) *SpaceRegistry {
	return &SpaceRegistry{http: newHTTPClient("spaces", baseURL, cfg)}
}

func (r *SpaceRegistry) GetSpace(ctx context.Context, id int64) (*Space, error) {
	var space Space
	if err := r.http.do(ctx, http.MethodGet, fmt.Sprintf("/api/spaces/%d", id), nil, &space); err != nil {
		return nil, err
	}
	return &space, nil
}
