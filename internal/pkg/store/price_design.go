package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/store/xpgx"
)

var priceDesignColumns = []string{"id", "country_id", "category_1", "category_2", "category_3", "category_4", "category_5"}

func (s *store) UpsertPriceDesign(ctx context.Context, design *domain.PriceDesign) (*domain.PriceDesign, error) {
	query := builder().Insert(tablePriceDesigns).
		Columns("country_id", "category_1", "category_2", "category_3", "category_4", "category_5").
		Values(design.CountryID, design.Category1, design.Category2, design.Category3, design.Category4, design.Category5).
		Suffix(`
on conflict (country_id)
do update
set
	category_1 = excluded.category_1,
	category_2 = excluded.category_2,
	category_3 = excluded.category_3,
	category_4 = excluded.category_4,
	category_5 = excluded.category_5,
	updated_at = now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, wrapErr(err)
	}

	return s.GetPriceDesign(ctx, design.CountryID)
}

func (s *store) GetPriceDesign(ctx context.Context, countryID int64) (*domain.PriceDesign, error) {
	query := builder().Select(priceDesignColumns...).
		From(tablePriceDesigns).
		Where(sq.Eq{"country_id": countryID})

	selected, err := xpgx.Get[domain.PriceDesign](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
