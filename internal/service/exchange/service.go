// Package exchange keeps the USD exchange-rate table, refreshed at most once
// per calendar day from a quota-limited source.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
	"github.com/wys-platform/prices/internal/pkg/store"
)

const dayLayout = "2006-01-02"

type Source interface {
	Quota(ctx context.Context) (int, error)
	Latest(ctx context.Context) (map[string]float64, error)
}

type Config struct {
	// MinQuota is the remaining source quota below which no fetch is made.
	MinQuota int
	Location *time.Location
}

type Service struct {
	store    store.Store
	source   Source
	minQuota int
	loc      *time.Location
	now      func() time.Time

	refreshes singleflight.Group
}

func NewService(st store.Store, src Source, cfg Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    st,
		source:   src,
		minQuota: cfg.MinQuota,
		loc:      loc,
		now:      time.Now,
	}
}

type Result struct {
	Code  string  `json:"code"`
	Rate  float64 `json:"rate"`
	Found bool    `json:"found"`
	// Stale is set when the table could not be refreshed today.
	Stale bool `json:"stale"`
}

// Lookup returns the USD rate of code, refreshing the table first when it
// was not refreshed today. When the refresh fails the stored rate is still
// returned together with the refresh error.
func (s *Service) Lookup(ctx context.Context, code string) (*Result, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: empty currency code", constants.ErrInvalidInput)
	}

	refreshErr := s.refresh(ctx, false)
	if refreshErr != nil && !isRefreshFailure(refreshErr) {
		return nil, refreshErr
	}

	res := &Result{Code: code, Stale: refreshErr != nil}
	rate, err := s.store.GetExchangeRate(ctx, code)
	switch {
	case errors.Is(err, constants.ErrDBNotFound):
		return res, refreshErr
	case err != nil:
		return nil, fmt.Errorf("store.GetExchangeRate: %w", err)
	}

	res.Rate, res.Found = rate.Rate, true
	return res, refreshErr
}

// Refresh fetches the table even if it was already refreshed today. The
// quota guard still applies.
func (s *Service) Refresh(ctx context.Context) error {
	return s.refresh(ctx, true)
}

func isRefreshFailure(err error) bool {
	return errors.Is(err, constants.ErrQuotaExhausted) || errors.Is(err, constants.ErrUpstreamUnavailable)
}

// sourceErr reports any source failure as a refresh failure, so a source 404
// is never mistaken for an unknown currency.
func sourceErr(op string, err error) error {
	if isRefreshFailure(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, constants.ErrUpstreamUnavailable, err)
}

func (s *Service) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) stale(ctx context.Context, today time.Time) (bool, error) {
	marker, err := s.store.GetRefreshMarker(ctx)
	if errors.Is(err, constants.ErrDBNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("store.GetRefreshMarker: %w", err)
	}
	return marker.Format(dayLayout) < today.Format(dayLayout), nil
}

// refresh runs at most one refresh at a time; concurrent callers share it.
func (s *Service) refresh(ctx context.Context, force bool) error {
	today := s.today()
	if !force {
		stale, err := s.stale(ctx, today)
		if err != nil || !stale {
			return err
		}
	}

	// forced refreshes never join a lazy flight, which may end without fetching
	key := today.Format(dayLayout)
	if force {
		key = "force:" + key
	}

	// the shared refresh must outlive the caller that started it
	flightCtx := context.WithoutCancel(ctx)
	_, err, _ := s.refreshes.Do(key, func() (any, error) {
		if !force {
			// a flight that finished just before this one may have refreshed already
			if stale, err := s.stale(flightCtx, today); err != nil || !stale {
				return nil, err
			}
		}
		return nil, s.fetch(flightCtx, today)
	})
	return err
}

func (s *Service) fetch(ctx context.Context, today time.Time) error {
	quota, err := s.source.Quota(ctx)
	if err != nil {
		return sourceErr("source.Quota", err)
	}
	if quota < s.minQuota {
		logger.Warnf(ctx, "exchange quota at %d, below %d, serving stored rates", quota, s.minQuota)
		return fmt.Errorf("%w: %d requests left", constants.ErrQuotaExhausted, quota)
	}

	latest, err := s.source.Latest(ctx)
	if err != nil {
		return sourceErr("source.Latest", err)
	}
	if len(latest) == 0 {
		return fmt.Errorf("%w: exchange source returned no rates", constants.ErrUpstreamUnavailable)
	}

	var changes *Changes
	err = s.store.InTx(ctx, func(tx store.Store) error {
		current, err := tx.ListExchangeRates(ctx)
		if err != nil {
			return fmt.Errorf("store.ListExchangeRates: %w", err)
		}

		changes = Diff(current, latest)
		for _, rate := range changes.Upserts {
			if err = tx.UpsertExchangeRate(ctx, rate); err != nil {
				return fmt.Errorf("store.UpsertExchangeRate %s: %w", rate.CurrencyCode, err)
			}
		}
		if err = tx.DeleteExchangeRates(ctx, changes.Deletes); err != nil {
			return fmt.Errorf("store.DeleteExchangeRates: %w", err)
		}
		if err = tx.SetRefreshMarker(ctx, today); err != nil {
			return fmt.Errorf("store.SetRefreshMarker: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Infof(ctx, "exchange rates refreshed for %s: %d changed, %d removed",
		today.Format(dayLayout), len(changes.Upserts), len(changes.Deletes))
	return nil
}

// List returns the stored table without refreshing it.
func (s *Service) List(ctx context.Context) ([]*domain.ExchangeRate, error) {
	rates, err := s.store.ListExchangeRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListExchangeRates: %w", err)
	}
	return rates, nil
}
