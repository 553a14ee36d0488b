package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/store/xpgx"
)

var priceGenColumns = []string{"id", "project_id", "total_value", "area"}

func (s *store) UpsertPriceGen(ctx context.Context, gen *domain.PriceGen) (*domain.PriceGen, error) {
	query := builder().Insert(tablePriceGens).
		Columns("project_id", "total_value", "area").
		Values(gen.ProjectID, gen.TotalValue, gen.Area).
		Suffix(`
on conflict (project_id)
do update
set
	total_value = excluded.total_value,
	area = excluded.area,
	updated_at = now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, wrapErr(err)
	}

	return s.GetPriceGenByProject(ctx, gen.ProjectID)
}

func (s *store) GetPriceGenByProject(ctx context.Context, projectID int64) (*domain.PriceGen, error) {
	query := builder().Select(priceGenColumns...).
		From(tablePriceGens).
		Where(sq.Eq{"project_id": projectID})

	selected, err := xpgx.Get[domain.PriceGen](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ReplacePriceGenValues(ctx context.Context, priceGenID int64, values []*domain.PriceGenValue) error {
	del := builder().Delete(tablePriceGenValues).Where(sq.Eq{"price_gen_id": priceGenID})
	if _, err := s.pool.Execx(ctx, del); err != nil {
		return wrapErr(err)
	}

	if len(values) == 0 {
		return nil
	}

	query := builder().Insert(tablePriceGenValues).
		Columns("price_gen_id", "price_value_id", "tier")
	for _, v := range values {
		query = query.Values(priceGenID, v.PriceValueID, string(v.Tier))
	}
	query = query.Suffix(`on conflict (price_gen_id, price_value_id) do update set tier = excluded.tier`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}

func (s *store) ListSavedSelections(ctx context.Context, priceGenID int64) ([]*domain.SavedSelection, error) {
	query := builder().Select("pgv.price_value_id", "pv.category_id", "pv.module_id", "pgv.tier").
		From(tablePriceGenValues + " pgv").
		Join(tablePriceValues + " pv on pv.id = pgv.price_value_id").
		Where(sq.Eq{"pgv.price_gen_id": priceGenID}).
		OrderBy("pv.category_id", "pv.module_id")

	selected, err := xpgx.Select[domain.SavedSelection](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
