package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/store/xpgx"
)

var exchangeRateColumns = []string{"currency_code", "rate"}

func (s *store) ListExchangeRates(ctx context.Context) ([]*domain.ExchangeRate, error) {
	query := builder().Select(exchangeRateColumns...).
		From(tableExchangeRates).
		OrderBy("currency_code")

	selected, err := xpgx.Select[domain.ExchangeRate](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) GetExchangeRate(ctx context.Context, code string) (*domain.ExchangeRate, error) {
	query := builder().Select(exchangeRateColumns...).
		From(tableExchangeRates).
		Where(sq.Eq{"currency_code": code})

	selected, err := xpgx.Get[domain.ExchangeRate](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) UpsertExchangeRate(ctx context.Context, rate *domain.ExchangeRate) error {
	query := builder().Insert(tableExchangeRates).
		Columns("currency_code", "rate").
		Values(rate.CurrencyCode, rate.Rate).
		Suffix(`on conflict (currency_code) do update set rate = excluded.rate, updated_at = now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}

func (s *store) DeleteExchangeRates(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	query := builder().Delete(tableExchangeRates).Where(sq.Eq{"currency_code": codes})
	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}

func (s *store) GetRefreshMarker(ctx context.Context) (time.Time, error) {
	query := builder().Select("refreshed_on").
		From(tableExchangeMarker).
		Where(sq.Eq{"id": 1})

	day, err := xpgx.GetValue[time.Time](ctx, s.pool, query)
	if err != nil {
		return time.Time{}, wrapErr(err)
	}

	return day, nil
}

func (s *store) SetRefreshMarker(ctx context.Context, day time.Time) error {
	query := builder().Insert(tableExchangeMarker).
		Columns("id", "refreshed_on").
		Values(1, day).
		Suffix(`on conflict (id) do update set refreshed_on = excluded.refreshed_on`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}
