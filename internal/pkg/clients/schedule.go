package clients

import (
	"context"
	"net/http"
)

// timesRequest carries the fixed execution parameters the schedule is estimated with.
type timesRequest struct {
	AdmAgility         string  `json:"adm_agility"`
	ClientAgility      string  `json:"client_agility"`
	ConstructionMod    string  `json:"construction_mod"`
	ConstructionsTimes string  `json:"constructions_times"`
	Demolitions        string  `json:"demolitions"`
	M2                 float64 `json:"m2"`
	MunAgility         string  `json:"mun_agility"`
	ProcurementProcess string  `json:"procurement_process"`
}

type timesResponse struct {
	Weeks float64 `json:"weeks"`
}

type ScheduleEstimator struct {
	http *httpClient
}

func NewScheduleEstimator(baseURL string, cfg Config) *ScheduleEstimator {
	return &ScheduleEstimator{http: newHTTPClient("times", baseURL, cfg)}
}

// Weeks estimates the construction duration of a project of the given area.
func (e *ScheduleEstimator) Weeks(ctx context.Context, area float64) (float64, error) {
	req := timesRequest{
		AdmAgility:         "normal",
		ClientAgility:      "normal",
		ConstructionMod:    "const_adm",
		ConstructionsTimes: "daytime",
		Demolitions:        "no",
		M2:                 area,
		MunAgility:         "normal",
		ProcurementProcess: "direct",
	}

	var resp timesResponse
	if err := e.http.do(ctx, http.MethodPost, "/api/times", req, &resp); err != nil {
		return 0, err
	}
	return resp.Weeks, nil
}
