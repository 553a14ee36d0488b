// Package clients talks to the sibling services over HTTP.
package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"

	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
)

type Config struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 200 * time.Millisecond
	}
	return c
}

type tokenKey struct{}

// WithToken stores the caller's Authorization header for forwarding.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type httpClient struct {
	name    string
	baseURL string
	client  *http.Client
	cfg     Config
}

func newHTTPClient(name, baseURL string, cfg Config) *httpClient {
	cfg = cfg.withDefaults()
	return &httpClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
	}
}

// do sends one JSON request, retrying transport failures and 5xx answers.
// A 404 is constants.ErrDBNotFound; running out of retries is
// constants.ErrUpstreamUnavailable.
func (c *httpClient) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = sonic.Marshal(in); err != nil {
			return fmt.Errorf("marshal %s request: %w", c.name, err)
		}
	}

	var body []byte
	err := backoff.Retry(
		func() error {
			var reqErr error
			body, reqErr = c.roundTrip(ctx, method, path, payload)
			return reqErr
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryDelay), uint64(c.cfg.Retries)),
			ctx,
		),
	)
	if err != nil {
		if errors.Is(err, constants.ErrDBNotFound) {
			return err
		}
		logger.Warnf(ctx, "%s %s %s: %s", c.name, method, path, err.Error())
		return fmt.Errorf("%w: %s: %v", constants.ErrUpstreamUnavailable, c.name, err)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err = sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", constants.ErrUpstreamUnavailable, c.name, err)
	}
	return nil
}

func (c *httpClient) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set(constants.HeaderAuthorization, token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(fmt.Errorf("%s %s: %w", c.name, path, constants.ErrDBNotFound))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("status code error: %d", resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, backoff.Permanent(fmt.Errorf("status code error: %d", resp.StatusCode))
	}

	return body, nil
}
