package clients

import (
	"context"
	"net/http"
)

type quotaResponse struct {
	RequestsRemaining int `json:"requests_remaining"`
}

type latestResponse struct {
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// ExchangeSource is the remote currency table, quoted against USD.
type ExchangeSource struct {
	http *httpClient
	key  string
}

func NewExchangeSource(baseURL, key string, cfg Config) *ExchangeSource {
	return &ExchangeSource{http: newHTTPClient("exchange", baseURL, cfg), key: key}
}

func (s *ExchangeSource) Quota(ctx context.Context) (int, error) {
	var resp quotaResponse
	if err := s.http.do(ctx, http.MethodGet, "/"+s.key+"/quota", nil, &resp); err != nil {
		return 0, err
	}
	return resp.RequestsRemaining, nil
}

func (s *ExchangeSource) Latest(ctx context.Context) (map[string]float64, error) {
	var resp latestResponse
	if err := s.http.do(ctx, http.MethodGet, "/"+s.key+"/latest/USD", nil, &resp); err != nil {
		return nil, err
	}
	return resp.ConversionRates, nil
}
