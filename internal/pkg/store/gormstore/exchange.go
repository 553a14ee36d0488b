package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/wys-platform/prices/internal/domain"
)

const dayLayout = "2006-01-02"

func (s *Store) ListExchangeRates(ctx context.Context) ([]*domain.ExchangeRate, error) {
	var rows []exchangeRate
	if err := s.conn(ctx).Order("currency_code").Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}

	out := make([]*domain.ExchangeRate, 0, len(rows))
	for _, r := range rows {
		out = append(out, &domain.ExchangeRate{CurrencyCode: r.CurrencyCode, Rate: r.Rate})
	}
	return out, nil
}

func (s *Store) GetExchangeRate(ctx context.Context, code string) (*domain.ExchangeRate, error) {
	var row exchangeRate
	if err := s.conn(ctx).Where("currency_code = ?", code).First(&row).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &domain.ExchangeRate{CurrencyCode: row.CurrencyCode, Rate: row.Rate}, nil
}

func (s *Store) UpsertExchangeRate(ctx context.Context, rate *domain.ExchangeRate) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "currency_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(&exchangeRate{CurrencyCode: rate.CurrencyCode, Rate: rate.Rate}).Error
	return wrapErr(err)
}

func (s *Store) DeleteExchangeRates(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	return wrapErr(s.conn(ctx).Where("currency_code IN ?", codes).Delete(&exchangeRate{}).Error)
}

func (s *Store) GetRefreshMarker(ctx context.Context) (time.Time, error) {
	var row exchangeRefresh
	if err := s.conn(ctx).First(&row, 1).Error; err != nil {
		return time.Time{}, wrapErr(err)
	}

	day, err := time.Parse(dayLayout, row.RefreshedOn)
	if err != nil {
		return time.Time{}, wrapErr(err)
	}
	return day, nil
}

func (s *Store) SetRefreshMarker(ctx context.Context, day time.Time) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"refreshed_on"}),
	}).Create(&exchangeRefresh{ID: 1, RefreshedOn: day.Format(dayLayout)}).Error
	return wrapErr(err)
}
