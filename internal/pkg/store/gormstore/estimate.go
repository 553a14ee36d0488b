package gormstore

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/wys-platform/prices/internal/domain"
)

func (s *Store) UpsertPriceGen(ctx context.Context, gen *domain.PriceGen) (*domain.PriceGen, error) {
	row := priceGen{ProjectID: gen.ProjectID, TotalValue: gen.TotalValue, Area: gen.Area}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_value", "area", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, wrapErr(err)
	}

	return s.GetPriceGenByProject(ctx, gen.ProjectID)
}

func (s *Store) GetPriceGenByProject(ctx context.Context, projectID int64) (*domain.PriceGen, error) {
	var selected priceGen
	if err := s.conn(ctx).Where("project_id = ?", projectID).First(&selected).Error; err != nil {
		return nil, wrapErr(err)
	}
	return selected.toDomain(), nil
}

func (s *Store) ReplacePriceGenValues(ctx context.Context, priceGenID int64, values []*domain.PriceGenValue) error {
	if err := s.conn(ctx).Where("price_gen_id = ?", priceGenID).Delete(&priceGenValue{}).Error; err != nil {
		return wrapErr(err)
	}
	if len(values) == 0 {
		return nil
	}

	rows := make([]priceGenValue, 0, len(values))
	for _, v := range values {
		rows = append(rows, priceGenValue{PriceGenID: priceGenID, PriceValueID: v.PriceValueID, Tier: string(v.Tier)})
	}

	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "price_gen_id"}, {Name: "price_value_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tier"}),
	}).Create(&rows).Error
	return wrapErr(err)
}

func (s *Store) ListSavedSelections(ctx context.Context, priceGenID int64) ([]*domain.SavedSelection, error) {
	var out []*domain.SavedSelection
	err := s.conn(ctx).Table("price_gen_values pgv").
		Select("pgv.price_value_id, pv.category_id, pv.module_id, pgv.tier").
		Joins("JOIN price_values pv ON pv.id = pgv.price_value_id").
		Where("pgv.price_gen_id = ?", priceGenID).
		Order("pv.category_id, pv.module_id").
		Scan(&out).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return out, nil
}
