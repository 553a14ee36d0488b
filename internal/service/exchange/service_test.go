package exchange

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/store/memstore"
)

type fakeSource struct {
	mu      sync.Mutex
	quota   int
	rates   map[string]float64
	err     error
	release chan struct{}

	quotaCalls  atomic.Int32
	latestCalls atomic.Int32
}

func (f *fakeSource) Quota(context.Context) (int, error) {
	f.quotaCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quota, nil
}

func (f *fakeSource) Latest(context.Context) (map[string]float64, error) {
	f.latestCalls.Add(1)
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64, len(f.rates))
	for k, v := range f.rates {
		out[k] = v
	}
	return out, nil
}

type fixture struct {
	ctx    context.Context
	store  *memstore.Store
	source *fakeSource
	svc    *Service
	clock  time.Time
}

func newFixture(loc *time.Location) *fixture {
	f := &fixture{
		ctx:    context.Background(),
		store:  memstore.New(),
		source: &fakeSource{quota: 1000, rates: map[string]float64{"CLP": 950.5, "EUR": 0.92, "USD": 1}},
		clock:  time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.store, f.source, Config{MinQuota: 50, Location: loc})
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func TestLookupRefreshesOncePerDay(t *testing.T) {
	f := newFixture(nil)

	res, err := f.svc.Lookup(f.ctx, "clp")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Rate != 950.5 || res.Code != "CLP" || res.Stale {
		t.Errorf("unexpected result %+v", res)
	}

	f.clock = f.clock.Add(8 * time.Hour)
	if _, err = f.svc.Lookup(f.ctx, "EUR"); err != nil {
		t.Fatal(err)
	}
	if n := f.source.latestCalls.Load(); n != 1 {
		t.Fatalf("expected one fetch on the same day, got %d", n)
	}

	f.source.rates["CLP"] = 960
	f.clock = f.clock.Add(2 * time.Hour)
	res, err = f.svc.Lookup(f.ctx, "CLP")
	if err != nil {
		t.Fatal(err)
	}
	if n := f.source.latestCalls.Load(); n != 2 {
		t.Fatalf("expected a second fetch on the next day, got %d", n)
	}
	if res.Rate != 960 {
		t.Errorf("expected refreshed rate 960, got %v", res.Rate)
	}

	marker, err := f.store.GetRefreshMarker(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := marker.Format(dayLayout); got != "2024-03-02" {
		t.Errorf("expected marker 2024-03-02, got %s", got)
	}
}

func TestLookupUsesConfiguredTimezone(t *testing.T) {
	f := newFixture(time.FixedZone("CLT", -3*60*60))
	f.clock = time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)

	if _, err := f.svc.Lookup(f.ctx, "CLP"); err != nil {
		t.Fatal(err)
	}

	marker, err := f.store.GetRefreshMarker(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := marker.Format(dayLayout); got != "2024-02-29" {
		t.Errorf("expected local day 2024-02-29, got %s", got)
	}
}

func TestLookupQuotaExhaustedServesStoredRate(t *testing.T) {
	f := newFixture(nil)
	if err := f.store.UpsertExchangeRate(f.ctx, &domain.ExchangeRate{CurrencyCode: "CLP", Rate: 900}); err != nil {
		t.Fatal(err)
	}
	if err := f.store.SetRefreshMarker(f.ctx, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	f.source.quota = 49

	res, err := f.svc.Lookup(f.ctx, "CLP")
	if !errors.Is(err, constants.ErrQuotaExhausted) {
		t.Fatalf("expected quota exhausted, got %v", err)
	}
	if res == nil || !res.Found || res.Rate != 900 || !res.Stale {
		t.Errorf("expected stale stored rate, got %+v", res)
	}
	if f.source.latestCalls.Load() != 0 {
		t.Error("fetched with exhausted quota")
	}
}

func TestLookupUpstreamFailure(t *testing.T) {
	f := newFixture(nil)
	f.source.err = constants.ErrUpstreamUnavailable

	res, err := f.svc.Lookup(f.ctx, "CLP")
	if !errors.Is(err, constants.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if res.Found {
		t.Errorf("expected no rate, got %+v", res)
	}
	if _, err = f.store.GetRefreshMarker(f.ctx); !errors.Is(err, constants.ErrDBNotFound) {
		t.Error("marker set after a failed refresh")
	}
}

func TestLookupSourceNotFoundServesStoredRate(t *testing.T) {
	f := newFixture(nil)
	if _, err := f.svc.Lookup(f.ctx, "CLP"); err != nil {
		t.Fatal(err)
	}

	f.clock = f.clock.Add(24 * time.Hour)
	f.source.err = fmt.Errorf("exchange /latest/USD: %w", constants.ErrDBNotFound)

	res, err := f.svc.Lookup(f.ctx, "CLP")
	if !errors.Is(err, constants.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if res == nil || !res.Found || res.Rate != 950.5 || !res.Stale {
		t.Errorf("expected stale stored rate, got %+v", res)
	}
}

func TestLookupUnknownCode(t *testing.T) {
	f := newFixture(nil)

	res, err := f.svc.Lookup(f.ctx, "XYZ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Found {
		t.Errorf("expected not found, got %+v", res)
	}

	if _, err = f.svc.Lookup(f.ctx, " "); !errors.Is(err, constants.ErrInvalidInput) {
		t.Errorf("expected invalid input for an empty code, got %v", err)
	}
}

func TestConcurrentLookupsShareOneRefresh(t *testing.T) {
	f := newFixture(nil)
	f.source.release = make(chan struct{})

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Lookup(f.ctx, "CLP"); err != nil {
				errs <- err
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(f.source.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if n := f.source.latestCalls.Load(); n != 1 {
		t.Errorf("expected one fetch, got %d", n)
	}
	if n := f.source.quotaCalls.Load(); n != 1 {
		t.Errorf("expected one quota check, got %d", n)
	}
}

func TestRefreshAppliesDiff(t *testing.T) {
	f := newFixture(nil)
	for code, rate := range map[string]float64{"CLP": 900, "EUR": 0.92, "ARS": 850} {
		if err := f.store.UpsertExchangeRate(f.ctx, &domain.ExchangeRate{CurrencyCode: code, Rate: rate}); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.store.SetRefreshMarker(f.ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Refresh(f.ctx); err != nil {
		t.Fatal(err)
	}
	if f.source.latestCalls.Load() != 1 {
		t.Fatal("forced refresh did not fetch")
	}

	rates, err := f.svc.List(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]float64{}
	for _, r := range rates {
		got[r.CurrencyCode] = r.Rate
	}
	want := map[string]float64{"CLP": 950.5, "EUR": 0.92, "USD": 1}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for code, rate := range want {
		if got[code] != rate {
			t.Errorf("%s: expected %v, got %v", code, rate, got[code])
		}
	}
}

func TestRefreshDoesNotJoinLazyFlight(t *testing.T) {
	f := newFixture(nil)
	f.source.release = make(chan struct{})
	var once sync.Once
	release := func() { once.Do(func() { close(f.source.release) }) }
	defer release()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = f.svc.Lookup(f.ctx, "CLP")
	}()
	waitFor(t, func() bool { return f.source.latestCalls.Load() == 1 })

	go func() {
		defer wg.Done()
		if err := f.svc.Refresh(f.ctx); err != nil {
			t.Error(err)
		}
	}()
	waitFor(t, func() bool { return f.source.latestCalls.Load() == 2 })

	release()
	wg.Wait()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDiff(t *testing.T) {
	current := []*domain.ExchangeRate{
		{CurrencyCode: "ARS", Rate: 850},
		{CurrencyCode: "CLP", Rate: 900},
		{CurrencyCode: "EUR", Rate: 0.92},
	}
	changes := Diff(current, map[string]float64{"clp": 950, "EUR": 0.92, "PEN": 3.7})

	var upserts []string
	for _, r := range changes.Upserts {
		upserts = append(upserts, r.CurrencyCode)
	}
	if len(upserts) != 2 || upserts[0] != "CLP" || upserts[1] != "PEN" {
		t.Errorf("unexpected upserts %v", upserts)
	}
	if len(changes.Deletes) != 1 || changes.Deletes[0] != "ARS" {
		t.Errorf("unexpected deletes %v", changes.Deletes)
	}
}
