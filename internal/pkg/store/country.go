package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/store/xpgx"
)

var countryColumns = []string{"id", "name", "is_default"}

func (s *store) UpsertCountry(ctx context.Context, name string) (*domain.Country, error) {
	query := builder().Insert(tableCountries).
		Columns("name").
		Values(name).
		Suffix(`on conflict (name) do nothing`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, wrapErr(err)
	}

	return s.GetCountryByName(ctx, name)
}

func (s *store) GetCountryByName(ctx context.Context, name string) (*domain.Country, error) {
	query := builder().Select(countryColumns...).
		From(tableCountries).
		Where(sq.Eq{"name": name})

	selected, err := xpgx.Get[domain.Country](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListCountries(ctx context.Context) ([]*domain.Country, error) {
	query := builder().Select(countryColumns...).
		From(tableCountries).
		OrderBy("name")

	selected, err := xpgx.Select[domain.Country](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) SetDefaultCountry(ctx context.Context, name string) (*domain.Country, error) {
	if _, err := s.GetCountryByName(ctx, name); err != nil {
		return nil, err
	}

	query := builder().Update(tableCountries).
		Set("is_default", sq.Expr("name = ?", name)).
		Set("updated_at", sq.Expr("now()"))

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, wrapErr(err)
	}

	return s.GetCountryByName(ctx, name)
}

func (s *store) DeleteCountry(ctx context.Context, id int64) error {
	query := builder().Delete(tableCountries).Where(sq.Eq{"id": id})

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}
