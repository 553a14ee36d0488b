package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/store"
)

func (s *Store) UpsertCountry(ctx context.Context, name string) (*domain.Country, error) {
	err := s.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&country{Name: name}).Error
	if err != nil {
		return nil, wrapErr(err)
	}

	return s.GetCountryByName(ctx, name)
}

func (s *Store) GetCountryByName(ctx context.Context, name string) (*domain.Country, error) {
	var selected country
	if err := s.conn(ctx).Where("name = ?", name).First(&selected).Error; err != nil {
		return nil, wrapErr(err)
	}
	return selected.toDomain(), nil
}

func (s *Store) ListCountries(ctx context.Context) ([]*domain.Country, error) {
	var rows []country
	if err := s.conn(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}

	out := make([]*domain.Country, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) SetDefaultCountry(ctx context.Context, name string) (*domain.Country, error) {
	if _, err := s.GetCountryByName(ctx, name); err != nil {
		return nil, err
	}

	err := s.conn(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&country{}).
		Update("is_default", gorm.Expr("name = ?", name)).Error
	if err != nil {
		return nil, wrapErr(err)
	}

	return s.GetCountryByName(ctx, name)
}

func (s *Store) DeleteCountry(ctx context.Context, id int64) error {
	return wrapErr(s.conn(ctx).Delete(&country{}, id).Error)
}

func (s *Store) UpsertModule(ctx context.Context, name string) (*domain.Module, error) {
	err := s.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&module{Name: name}).Error
	if err != nil {
		return nil, wrapErr(err)
	}

	return s.GetModuleByName(ctx, name)
}

func (s *Store) GetModuleByName(ctx context.Context, name string) (*domain.Module, error) {
	var selected module
	if err := s.conn(ctx).Where("name = ?", name).First(&selected).Error; err != nil {
		return nil, wrapErr(err)
	}
	return selected.toDomain(), nil
}

func (s *Store) ListModules(ctx context.Context) ([]*domain.Module, error) {
	var rows []module
	if err := s.conn(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}

	out := make([]*domain.Module, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) UpsertCategory(ctx context.Context, opts store.UpsertCategoryOpts) (*domain.Category, error) {
	var selected category
	err := nullableEq(s.conn(ctx).Where("name = ?", opts.Name), "parent_id", opts.ParentID).
		First(&selected).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		selected = category{Name: opts.Name, Code: opts.Code, Kind: opts.Kind, ParentID: opts.ParentID}
		if err = s.conn(ctx).Create(&selected).Error; err != nil {
			return nil, wrapErr(err)
		}
	case err != nil:
		return nil, wrapErr(err)
	case selected.Code != opts.Code || selected.Kind != opts.Kind:
		err = s.conn(ctx).Model(&selected).Updates(map[string]any{"code": opts.Code, "kind": opts.Kind}).Error
		if err != nil {
			return nil, wrapErr(err)
		}
	}

	return selected.toDomain(), nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var selected category
	if err := s.conn(ctx).First(&selected, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return selected.toDomain(), nil
}

func (s *Store) ListCategories(ctx context.Context, opts store.ListCategoriesOpts) ([]*domain.Category, error) {
	query := s.conn(ctx).Order("id")
	switch {
	case opts.ParentID != nil:
		query = query.Where("parent_id = ?", *opts.ParentID)
	case opts.RootsOnly:
		query = query.Where("parent_id IS NULL")
	}

	var rows []category
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}

	out := make([]*domain.Category, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return wrapErr(s.conn(ctx).Delete(&category{}, id).Error)
}

func (s *Store) UpsertPriceValue(ctx context.Context, value *domain.PriceValue) (*domain.PriceValue, error) {
	var selected priceValue
	err := nullableEq(
		s.conn(ctx).Where("country_id = ? AND category_id = ?", value.CountryID, value.CategoryID),
		"module_id", value.ModuleID,
	).First(&selected).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		selected = priceValue{
			CountryID:  value.CountryID,
			CategoryID: value.CategoryID,
			ModuleID:   value.ModuleID,
			Low:        value.Low,
			Medium:     value.Medium,
			High:       value.High,
		}
		if err = s.conn(ctx).Create(&selected).Error; err != nil {
			return nil, wrapErr(err)
		}
	case err != nil:
		return nil, wrapErr(err)
	default:
		err = s.conn(ctx).Model(&selected).Updates(map[string]any{
			"low":    value.Low,
			"medium": value.Medium,
			"high":   value.High,
		}).Error
		if err != nil {
			return nil, wrapErr(err)
		}
	}

	return selected.toDomain(), nil
}

func (s *Store) GetPriceValue(ctx context.Context, countryID, categoryID int64, moduleID *int64) (*domain.PriceValue, error) {
	var selected priceValue
	err := nullableEq(
		s.conn(ctx).Where("country_id = ? AND category_id = ?", countryID, categoryID),
		"module_id", moduleID,
	).First(&selected).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return selected.toDomain(), nil
}

func (s *Store) ListPriceValues(ctx context.Context, opts store.ListPriceValuesOpts) ([]*domain.PriceValue, error) {
	query := s.conn(ctx).Where("country_id = ?", opts.CountryID).Order("id")

	switch {
	case len(opts.ModuleIDs) > 0 && opts.WithBase:
		query = query.Where(s.db.Where("module_id IN ?", opts.ModuleIDs).Or("module_id IS NULL"))
	case len(opts.ModuleIDs) > 0:
		query = query.Where("module_id IN ?", opts.ModuleIDs)
	case opts.WithBase:
		query = query.Where("module_id IS NULL")
	}

	var rows []priceValue
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}

	out := make([]*domain.PriceValue, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) UpsertPriceDesign(ctx context.Context, design *domain.PriceDesign) (*domain.PriceDesign, error) {
	row := priceDesign{
		CountryID: design.CountryID,
		Category1: design.Category1,
		Category2: design.Category2,
		Category3: design.Category3,
		Category4: design.Category4,
		Category5: design.Category5,
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "country_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category_1", "category_2", "category_3", "category_4", "category_5", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, wrapErr(err)
	}

	return s.GetPriceDesign(ctx, design.CountryID)
}

func (s *Store) GetPriceDesign(ctx context.Context, countryID int64) (*domain.PriceDesign, error) {
	var selected priceDesign
	if err := s.conn(ctx).Where("country_id = ?", countryID).First(&selected).Error; err != nil {
		return nil, wrapErr(err)
	}
	return selected.toDomain(), nil
}

func (s *Store) ResetCatalog(ctx context.Context) error {
	db := s.conn(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&category{}, &module{}, &country{}} {
		if err := db.Delete(model).Error; err != nil {
			return wrapErr(err)
		}
	}
	return nil
}

