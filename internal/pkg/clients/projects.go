package clients

import (
	"context"
	"fmt"
	"net/http"
)

type Project struct {
	ID         int64  `json:"id"`
	Name       string `json:"name,omitempty"`
	PriceGenID *int64 `json:"price_gen_id,omitempty"`
}

type ProjectRegistry struct {
	http *httpClient
}

func NewProjectRegistry(baseURL string, cfg Config) *ProjectRegistry {
	return &ProjectRegistry{http: newHTTPClient("projects", baseURL, cfg)}
}

func (r *ProjectRegistry) GetProject(ctx context.Context, id int64) (*Project, error) {
	var project Project
	if err := r.http.do(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d", id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// LinkPriceGen stores the saved estimate id on the project record.
func (r *ProjectRegistry) LinkPriceGen(ctx context.Context, projectID, priceGenID int64) error {
	body := map[string]int64{"price_gen_id": priceGenID}
	return r.http.do(ctx, http.MethodPut, fmt.Sprintf("/api/projects/%d", projectID), body, nil)
}
