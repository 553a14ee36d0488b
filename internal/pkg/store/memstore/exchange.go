package memstore

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
)

func (s *Store) ListExchangeRates(_ context.Context) ([]*domain.ExchangeRate, error) {
	var out []*domain.ExchangeRate
	s.read(func(a *arena) {
		for _, code := range slices.Sorted(maps.Keys(a.rates)) {
			out = append(out, &domain.ExchangeRate{CurrencyCode: code, Rate: a.rates[code]})
		}
	})
	return out, nil
}

func (s *Store) GetExchangeRate(_ context.Context, code string) (*domain.ExchangeRate, error) {
	var (
		rate float64
		ok   bool
	)
	s.read(func(a *arena) {
		rate, ok = a.rates[code]
	})
	if !ok {
		return nil, constants.ErrDBNotFound
	}
	return &domain.ExchangeRate{CurrencyCode: code, Rate: rate}, nil
}

func (s *Store) UpsertExchangeRate(_ context.Context, rate *domain.ExchangeRate) error {
	return s.write(func(a *arena) error {
		a.rates[rate.CurrencyCode] = rate.Rate
		return nil
	})
}

func (s *Store) DeleteExchangeRates(_ context.Context, codes []string) error {
	return s.write(func(a *arena) error {
		for _, code := range codes {
			delete(a.rates, code)
		}
		return nil
	})
}

func (s *Store) GetRefreshMarker(_ context.Context) (time.Time, error) {
	var (
		day time.Time
		ok  bool
	)
	s.read(func(a *arena) {
		if a.marker != nil {
			day, ok = *a.marker, true
		}
	})
	if !ok {
		return time.Time{}, constants.ErrDBNotFound
	}
	return day, nil
}

func (s *Store) SetRefreshMarker(_ context.Context, day time.Time) error {
	return s.write(func(a *arena) error {
		a.marker = &day
		return nil
	})
}
