package clients

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

var fast = Config{Timeout: time.Second, Retries: 2, RetryDelay: time.Millisecond}

func TestGetSpaceForwardsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/spaces/42" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = io.WriteString(w, `{"id": 42, "name": "OFICINA"}`)
	}))
	defer srv.Close()

	ctx := WithToken(context.Background(), "Bearer abc")
	space, err := NewSpaceRegistry(srv.URL+"/", fast).GetSpace(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if space.ID != 42 || space.Name != "OFICINA" {
		t.Fatalf("space = %+v", space)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"weeks": 12.5}`)
	}))
	defer srv.Close()

	weeks, err := NewScheduleEstimator(srv.URL, fast).Weeks(context.Background(), 300)
	if err != nil {
		t.Fatal(err)
	}
	if weeks != 12.5 || calls.Load() != 3 {
		t.Fatalf("weeks = %v after %d calls", weeks, calls.Load())
	}
}

func TestScheduleRequestDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		for _, want := range []string{`"construction_mod":"const_adm"`, `"m2":250`, `"procurement_process":"direct"`, `"demolitions":"no"`} {
			if !strings.Contains(string(body), want) {
				t.Errorf("request %s lacks %s", body, want)
			}
		}
		_, _ = io.WriteString(w, `{"weeks": 3}`)
	}))
	defer srv.Close()

	if _, err := NewScheduleEstimator(srv.URL, fast).Weeks(context.Background(), 250); err != nil {
		t.Fatal(err)
	}
}

func TestExhaustedRetriesAreUpstreamUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewExchangeSource(srv.URL, "k", fast).Quota(context.Background())
	if !errors.Is(err, constants.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("%d calls, want 3", calls.Load())
	}
}

func TestTimeoutIsUpstreamUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := Config{Timeout: 20 * time.Millisecond, Retries: 1, RetryDelay: time.Millisecond}
	_, err := NewScheduleEstimator(srv.URL, cfg).Weeks(context.Background(), 100)
	if !errors.Is(err, constants.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewProjectRegistry(srv.URL, fast).GetProject(context.Background(), 1)
	if !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("err = %v, want ErrDBNotFound", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("%d calls, want 1", calls.Load())
	}
}

func TestLinkPriceGenAndLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/projects/5":
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"price_gen_id":9}` {
				t.Errorf("PUT body = %s", body)
			}
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/key/latest/USD":
			_, _ = io.WriteString(w, `{"result":"success","conversion_rates":{"USD":1,"CLP":950.5}}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	if err := NewProjectRegistry(srv.URL, fast).LinkPriceGen(context.Background(), 5, 9); err != nil {
		t.Fatal(err)
	}

	rates, err := NewExchangeSource(srv.URL, "key", fast).Latest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rates["CLP"] != 950.5 || len(rates) != 2 {
		t.Fatalf("rates = %v", rates)
	}
}
