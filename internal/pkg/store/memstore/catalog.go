package memstore

import (
	"context"
	"slices"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/store"
)

func (s *Store) UpsertCountry(_ context.Context, name string) (*domain.Country, error) {
	var out *domain.Country
	err := s.write(func(a *arena) error {
		c := findOne(a.countries, func(c *domain.Country) bool { return c.Name == name })
		if c == nil {
			c = &domain.Country{ID: a.nextID(), Name: name}
			a.countries[c.ID] = c
		}
		out = copyOf(c)
		return nil
	})
	return out, err
}

func (s *Store) GetCountryByName(_ context.Context, name string) (*domain.Country, error) {
	var out *domain.Country
	s.read(func(a *arena) {
		if c := findOne(a.countries, func(c *domain.Country) bool { return c.Name == name }); c != nil {
			out = copyOf(c)
		}
	})
	if out == nil {
		return nil, constants.ErrDBNotFound
	}
	return out, nil
}

func (s *Store) ListCountries(_ context.Context) ([]*domain.Country, error) {
	var out []*domain.Country
	s.read(func(a *arena) {
		out = sortedByID(a.countries, nil)
	})
	slices.SortFunc(out, byName(func(c *domain.Country) string { return c.Name }))
	return out, nil
}

func (s *Store) SetDefaultCountry(_ context.Context, name string) (*domain.Country, error) {
	var out *domain.Country
	err := s.write(func(a *arena) error {
		if findOne(a.countries, func(c *domain.Country) bool { return c.Name == name }) == nil {
			return constants.ErrDBNotFound
		}
		for _, c := range a.countries {
			c.IsDefault = c.Name == name
			if c.IsDefault {
				out = copyOf(c)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) DeleteCountry(_ context.Context, id int64) error {
	return s.write(func(a *arena) error {
		delete(a.countries, id)
		delete(a.designs, id)
		a.dropValues(func(v *domain.PriceValue) bool { return v.CountryID == id })
		return nil
	})
}

func (s *Store) UpsertModule(_ context.Context, name string) (*domain.Module, error) {
	var out *domain.Module
	err := s.write(func(a *arena) error {
		m := findOne(a.modules, func(m *domain.Module) bool { return m.Name == name })
		if m == nil {
			m = &domain.Module{ID: a.nextID(), Name: name}
			a.modules[m.ID] = m
		}
		out = copyOf(m)
		return nil
	})
	return out, err
}

func (s *Store) GetModuleByName(_ context.Context, name string) (*domain.Module, error) {
	var out *domain.Module
	s.read(func(a *arena) {
		if m := findOne(a.modules, func(m *domain.Module) bool { return m.Name == name }); m != nil {
			out = copyOf(m)
		}
	})
	if out == nil {
		return nil, constants.ErrDBNotFound
	}
	return out, nil
}

func (s *Store) ListModules(_ context.Context) ([]*domain.Module, error) {
	var out []*domain.Module
	s.read(func(a *arena) {
		out = sortedByID(a.modules, nil)
	})
	return out, nil
}

func (s *Store) UpsertCategory(_ context.Context, opts store.UpsertCategoryOpts) (*domain.Category, error) {
	var out *domain.Category
	err := s.write(func(a *arena) error {
		if opts.ParentID != nil {
			if _, ok := a.categories[*opts.ParentID]; !ok {
				return constants.ErrDBNotFound
			}
		}
		c := findOne(a.categories, func(c *domain.Category) bool {
			return c.Name == opts.Name && sameID(c.ParentID, opts.ParentID)
		})
		if c == nil {
			c = &domain.Category{ID: a.nextID(), Name: opts.Name}
			if opts.ParentID != nil {
				parent := *opts.ParentID
				c.ParentID = &parent
			}
			a.categories[c.ID] = c
		}
		c.Code = opts.Code
		c.Kind = opts.Kind
		out = copyOf(c)
		return nil
	})
	return out, err
}

func (s *Store) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	var out *domain.Category
	s.read(func(a *arena) {
		if c, ok := a.categories[id]; ok {
			out = copyOf(c)
		}
	})
	if out == nil {
		return nil, constants.ErrDBNotFound
	}
	return out, nil
}

func (s *Store) ListCategories(_ context.Context, opts store.ListCategoriesOpts) ([]*domain.Category, error) {
	var keep func(*domain.Category) bool
	switch {
	case opts.ParentID != nil:
		keep = func(c *domain.Category) bool { return c.ParentID != nil && *c.ParentID == *opts.ParentID }
	case opts.RootsOnly:
		keep = func(c *domain.Category) bool { return c.ParentID == nil }
	}

	var out []*domain.Category
	s.read(func(a *arena) {
		out = sortedByID(a.categories, keep)
	})
	return out, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	return s.write(func(a *arena) error {
		doomed := a.subtree(id)
		for cid := range doomed {
			delete(a.categories, cid)
		}
		a.dropValues(func(v *domain.PriceValue) bool { return doomed[v.CategoryID] })
		return nil
	})
}

// subtree returns id and all of its descendants.
func (a *arena) subtree(id int64) map[int64]bool {
	out := map[int64]bool{}
	queue := []int64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := a.categories[cur]; !ok || out[cur] {
			continue
		}
		out[cur] = true
		for _, c := range a.categories {
			if c.ParentID != nil && *c.ParentID == cur {
				queue = append(queue, c.ID)
			}
		}
	}
	return out
}

// dropValues deletes matching price values and the saved selections pointing at them.
func (a *arena) dropValues(match func(*domain.PriceValue) bool) {
	dropped := map[int64]bool{}
	for id, v := range a.values {
		if match(v) {
			dropped[id] = true
			delete(a.values, id)
		}
	}
	if len(dropped) == 0 {
		return
	}
	for genID, rows := range a.genValues {
		a.genValues[genID] = slices.DeleteFunc(rows, func(v domain.PriceGenValue) bool {
			return dropped[v.PriceValueID]
		})
	}
}

func (s *Store) UpsertPriceValue(_ context.Context, value *domain.PriceValue) (*domain.PriceValue, error) {
	var out *domain.PriceValue
	err := s.write(func(a *arena) error {
		if _, ok := a.countries[value.CountryID]; !ok {
			return constants.ErrDBNotFound
		}
		if _, ok := a.categories[value.CategoryID]; !ok {
			return constants.ErrDBNotFound
		}
		if value.ModuleID != nil {
			if _, ok := a.modules[*value.ModuleID]; !ok {
				return constants.ErrDBNotFound
			}
		}

		v := a.findValue(value.CountryID, value.CategoryID, value.ModuleID)
		if v == nil {
			v = copyOf(value)
			v.ID = a.nextID()
			if value.ModuleID != nil {
				v.ModuleID = copyOf(value.ModuleID)
			}
			a.values[v.ID] = v
		}
		v.Low, v.Medium, v.High = value.Low, value.Medium, value.High
		out = copyOf(v)
		return nil
	})
	return out, err
}

func (a *arena) findValue(countryID, categoryID int64, moduleID *int64) *domain.PriceValue {
	return findOne(a.values, func(v *domain.PriceValue) bool {
		return v.CountryID == countryID && v.CategoryID == categoryID && sameID(v.ModuleID, moduleID)
	})
}

func (s *Store) GetPriceValue(_ context.Context, countryID, categoryID int64, moduleID *int64) (*domain.PriceValue, error) {
	var out *domain.PriceValue
	s.read(func(a *arena) {
		if v := a.findValue(countryID, categoryID, moduleID); v != nil {
			out = copyOf(v)
		}
	})
	if out == nil {
		return nil, constants.ErrDBNotFound
	}
	return out, nil
}

func (s *Store) ListPriceValues(_ context.Context, opts store.ListPriceValuesOpts) ([]*domain.PriceValue, error) {
	filtered := len(opts.ModuleIDs) > 0 || opts.WithBase
	keep := func(v *domain.PriceValue) bool {
		if v.CountryID != opts.CountryID {
			return false
		}
		if !filtered {
			return true
		}
		if v.ModuleID == nil {
			return opts.WithBase
		}
		return slices.Contains(opts.ModuleIDs, *v.ModuleID)
	}

	var out []*domain.PriceValue
	s.read(func(a *arena) {
		out = sortedByID(a.values, keep)
	})
	return out, nil
}

func (s *Store) UpsertPriceDesign(_ context.Context, design *domain.PriceDesign) (*domain.PriceDesign, error) {
	var out *domain.PriceDesign
	err := s.write(func(a *arena) error {
		if _, ok := a.countries[design.CountryID]; !ok {
			return constants.ErrDBNotFound
		}
		d, ok := a.designs[design.CountryID]
		if !ok {
			d = &domain.PriceDesign{ID: a.nextID(), CountryID: design.CountryID}
			a.designs[design.CountryID] = d
		}
		id := d.ID
		*d = *design
		d.ID = id
		out = copyOf(d)
		return nil
	})
	return out, err
}

func (s *Store) GetPriceDesign(_ context.Context, countryID int64) (*domain.PriceDesign, error) {
	var out *domain.PriceDesign
	s.read(func(a *arena) {
		if d, ok := a.designs[countryID]; ok {
			out = copyOf(d)
		}
	})
	if out == nil {
		return nil, constants.ErrDBNotFound
	}
	return out, nil
}

func (s *Store) ResetCatalog(_ context.Context) error {
	return s.write(func(a *arena) error {
		a.dropValues(func(*domain.PriceValue) bool { return true })
		clear(a.countries)
		clear(a.modules)
		clear(a.categories)
		clear(a.designs)
		return nil
	})
}
