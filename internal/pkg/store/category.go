package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/store/xpgx"
)

var categoryColumns = []string{"id", "code", "name", "kind", "parent_id"}

func (s *store) UpsertCategory(ctx context.Context, opts UpsertCategoryOpts) (*domain.Category, error) {
	query := builder().Insert(tableCategories).
		Columns("code", "name", "kind", "parent_id").
		Values(opts.Code, opts.Name, opts.Kind, opts.ParentID).
		Suffix(`
on conflict (name, (coalesce(parent_id, 0)))
do update
set
	code = excluded.code,
	kind = excluded.kind,
	updated_at = now()
where categories.code <> excluded.code or categories.kind <> excluded.kind`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, wrapErr(err)
	}

	selectQuery := builder().Select(categoryColumns...).
		From(tableCategories).
		Where(sq.And{
			sq.Eq{"name": opts.Name},
			nullableEq("parent_id", opts.ParentID),
		})

	selected, err := xpgx.Get[domain.Category](ctx, s.pool, selectQuery)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	query := builder().Select(categoryColumns...).
		From(tableCategories).
		Where(sq.Eq{"id": id})

	selected, err := xpgx.Get[domain.Category](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListCategories(ctx context.Context, opts ListCategoriesOpts) ([]*domain.Category, error) {
	query := builder().Select(categoryColumns...).
		From(tableCategories).
		OrderBy("id")

	switch {
	case opts.ParentID != nil:
		query = query.Where(sq.Eq{"parent_id": *opts.ParentID})
	case opts.RootsOnly:
		query = query.Where(sq.Eq{"parent_id": nil})
	}

	selected, err := xpgx.Select[domain.Category](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) DeleteCategory(ctx context.Context, id int64) error {
	query := builder().Delete(tableCategories).Where(sq.Eq{"id": id})

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}
