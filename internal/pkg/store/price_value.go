package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/store/xpgx"
)

var priceValueColumns = []string{"id", "country_id", "category_id", "module_id", "low", "medium", "high"}

func (s *store) UpsertPriceValue(ctx context.Context, value *domain.PriceValue) (*domain.PriceValue, error) {
	query := builder().Insert(tablePriceValues).
		Columns("country_id", "category_id", "module_id", "low", "medium", "high").
		Values(value.CountryID, value.CategoryID, value.ModuleID, value.Low, value.Medium, value.High).
		Suffix(`
on conflict (country_id, category_id, (coalesce(module_id, 0)))
do update
set
	low = excluded.low,
	medium = excluded.medium,
	high = excluded.high,
	updated_at = now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, wrapErr(err)
	}

	return s.GetPriceValue(ctx, value.CountryID, value.CategoryID, value.ModuleID)
}

func (s *store) GetPriceValue(ctx context.Context, countryID, categoryID int64, moduleID *int64) (*domain.PriceValue, error) {
	query := builder().Select(priceValueColumns...).
		From(tablePriceValues).
		Where(sq.And{
			sq.Eq{"country_id": countryID},
			sq.Eq{"category_id": categoryID},
			nullableEq("module_id", moduleID),
		})

	selected, err := xpgx.Get[domain.PriceValue](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListPriceValues(ctx context.Context, opts ListPriceValuesOpts) ([]*domain.PriceValue, error) {
	query := builder().Select(priceValueColumns...).
		From(tablePriceValues).
		Where(sq.Eq{"country_id": opts.CountryID}).
		OrderBy("id")

	if len(opts.ModuleIDs) > 0 || opts.WithBase {
		or := sq.Or{}
		if len(opts.ModuleIDs) > 0 {
			or = append(or, sq.Eq{"module_id": opts.ModuleIDs})
		}
		if opts.WithBase {
			or = append(or, sq.Eq{"module_id": nil})
		}
		query = query.Where(or)
	}

	selected, err := xpgx.Select[domain.PriceValue](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ResetCatalog(ctx context.Context) error {
	for _, table := range []string{tableCategories, tableModules, tableCountries} {
		if _, err := s.pool.Execx(ctx, builder().Delete(table)); err != nil {
			return wrapErr(err)
		}
	}

	return nil
}
