package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
)

func (s *Store) UpsertPriceGen(_ context.Context, gen *domain.PriceGen) (*domain.PriceGen, error) {
	var out *domain.PriceGen
	err := s.write(func(a *arena) error {
		g := findOne(a.gens, func(g *domain.PriceGen) bool { return g.ProjectID == gen.ProjectID })
		if g == nil {
			g = &domain.PriceGen{ID: a.nextID(), ProjectID: gen.ProjectID}
			a.gens[g.ID] = g
		}
		g.TotalValue, g.Area = gen.TotalValue, gen.Area
		out = copyOf(g)
		return nil
	})
	return out, err
}

func (s *Store) GetPriceGenByProject(_ context.Context, projectID int64) (*domain.PriceGen, error) {
	var out *domain.PriceGen
	s.read(func(a *arena) {
		if g := findOne(a.gens, func(g *domain.PriceGen) bool { return g.ProjectID == projectID }); g != nil {
			out = copyOf(g)
		}
	})
	if out == nil {
		return nil, constants.ErrDBNotFound
	}
	return out, nil
}

func (s *Store) ReplacePriceGenValues(_ context.Context, priceGenID int64, values []*domain.PriceGenValue) error {
	return s.write(func(a *arena) error {
		if _, ok := a.gens[priceGenID]; !ok {
			return constants.ErrDBNotFound
		}
		rows := make([]domain.PriceGenValue, 0, len(values))
		for _, v := range values {
			if _, ok := a.values[v.PriceValueID]; !ok {
				return constants.ErrDBNotFound
			}
			rows = slices.DeleteFunc(rows, func(r domain.PriceGenValue) bool { return r.PriceValueID == v.PriceValueID })
			rows = append(rows, domain.PriceGenValue{PriceGenID: priceGenID, PriceValueID: v.PriceValueID, Tier: v.Tier})
		}
		a.genValues[priceGenID] = rows
		return nil
	})
}

func (s *Store) ListSavedSelections(_ context.Context, priceGenID int64) ([]*domain.SavedSelection, error) {
	var out []*domain.SavedSelection
	s.read(func(a *arena) {
		for _, row := range a.genValues[priceGenID] {
			v, ok := a.values[row.PriceValueID]
			if !ok {
				continue
			}
			sel := &domain.SavedSelection{PriceValueID: v.ID, CategoryID: v.CategoryID, Tier: row.Tier}
			if v.ModuleID != nil {
				sel.ModuleID = copyOf(v.ModuleID)
			}
			out = append(out, sel)
		}
	})
	slices.SortFunc(out, func(x, y *domain.SavedSelection) int {
		if c := cmp.Compare(x.CategoryID, y.CategoryID); c != 0 {
			return c
		}
		return cmp.Compare(moduleKey(x.ModuleID), moduleKey(y.ModuleID))
	})
	return out, nil
}

func moduleKey(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
