package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/store/xpgx"
)

var moduleColumns = []string{"id", "name"}

func (s *store) UpsertModule(ctx context.Context, name string) (*domain.Module, error) {
	query := builder().Insert(tableModules).
		Columns("name").
		Values(name).
		Suffix(`on conflict (name) do nothing`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, wrapErr(err)
	}

	return s.GetModuleByName(ctx, name)
}

func (s *store) GetModuleByName(ctx context.Context, name string) (*domain.Module, error) {
	query := builder().Select(moduleColumns...).
		From(tableModules).
		Where(sq.Eq{"name": name})

	selected, err := xpgx.Get[domain.Module](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListModules(ctx context.Context) ([]*domain.Module, error) {
	query := builder().Select(moduleColumns...).
		From(tableModules).
		OrderBy("id")

	selected, err := xpgx.Select[domain.Module](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
