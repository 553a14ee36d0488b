package gormstore

import (
	"time"

	"github.com/wys-platform/prices/internal/domain"
)

type country struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"not null;uniqueIndex"`
	IsDefault bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (country) TableName() string { return "countries" }

func (c *country) toDomain() *domain.Country {
	return &domain.Country{ID: c.ID, Name: c.Name, IsDefault: c.IsDefault}
}

type module struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (module) TableName() string { return "modules" }

func (m *module) toDomain() *domain.Module {
	return &domain.Module{ID: m.ID, Name: m.Name}
}

type category struct {
	ID        int64  `gorm:"primaryKey"`
	Code      string `gorm:"not null"`
	Name      string `gorm:"not null"`
	Kind      string `gorm:"not null"`
	ParentID  *int64 `gorm:"index"`
	Parent    *category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (category) TableName() string { return "categories" }

func (c *category) toDomain() *domain.Category {
	return &domain.Category{ID: c.ID, Code: c.Code, Name: c.Name, Kind: c.Kind, ParentID: c.ParentID}
}

type priceValue struct {
	ID         int64     `gorm:"primaryKey"`
	CountryID  int64     `gorm:"not null;index"`
	Country    *country  `gorm:"constraint:OnDelete:CASCADE"`
	CategoryID int64     `gorm:"not null;index"`
	Category   *category `gorm:"constraint:OnDelete:CASCADE"`
	ModuleID   *int64    `gorm:"index"`
	Module     *module   `gorm:"constraint:OnDelete:CASCADE"`
	Low        float64   `gorm:"not null;default:0"`
	Medium     float64   `gorm:"not null;default:0"`
	High       float64   `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (priceValue) TableName() string { return "price_values" }

func (v *priceValue) toDomain() *domain.PriceValue {
	return &domain.PriceValue{
		ID:         v.ID,
		CountryID:  v.CountryID,
		CategoryID: v.CategoryID,
		ModuleID:   v.ModuleID,
		Low:        v.Low,
		Medium:     v.Medium,
		High:       v.High,
	}
}

type priceDesign struct {
	ID        int64    `gorm:"primaryKey"`
	CountryID int64    `gorm:"not null;uniqueIndex"`
	Country   *country `gorm:"constraint:OnDelete:CASCADE"`
	Category1 float64  `gorm:"column:category_1;not null;default:0"`
	Category2 float64  `gorm:"column:category_2;not null;default:0"`
	Category3 float64  `gorm:"column:category_3;not null;default:0"`
	Category4 float64  `gorm:"column:category_4;not null;default:0"`
	Category5 float64  `gorm:"column:category_5;not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (priceDesign) TableName() string { return "price_designs" }

func (d *priceDesign) toDomain() *domain.PriceDesign {
	return &domain.PriceDesign{
		ID:        d.ID,
		CountryID: d.CountryID,
		Category1: d.Category1,
		Category2: d.Category2,
		Category3: d.Category3,
		Category4: d.Category4,
		Category5: d.Category5,
	}
}

type priceGen struct {
	ID         int64   `gorm:"primaryKey"`
	ProjectID  int64   `gorm:"not null;uniqueIndex"`
	TotalValue float64 `gorm:"not null;default:0"`
	Area       float64 `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (priceGen) TableName() string { return "price_gens" }

func (g *priceGen) toDomain() *domain.PriceGen {
	return &domain.PriceGen{ID: g.ID, ProjectID: g.ProjectID, TotalValue: g.TotalValue, Area: g.Area}
}

type priceGenValue struct {
	PriceGenID   int64       `gorm:"primaryKey;autoIncrement:false"`
	PriceGen     *priceGen   `gorm:"constraint:OnDelete:CASCADE"`
	PriceValueID int64       `gorm:"primaryKey;autoIncrement:false"`
	PriceValue   *priceValue `gorm:"constraint:OnDelete:CASCADE"`
	Tier         string      `gorm:"not null"`
}

func (priceGenValue) TableName() string { return "price_gen_values" }

type exchangeRate struct {
	CurrencyCode string  `gorm:"primaryKey"`
	Rate         float64 `gorm:"not null"`
	UpdatedAt    time.Time
}

func (exchangeRate) TableName() string { return "exchange_rates" }

type exchangeRefresh struct {
	ID          int    `gorm:"primaryKey;autoIncrement:false"`
	RefreshedOn string `gorm:"not null"`
}

func (exchangeRefresh) TableName() string { return "exchange_refresh" }

var models = []any{
	&country{},
	&module{},
	&category{},
	&priceValue{},
	&priceDesign{},
	&priceGen{},
	&priceGenValue{},
	&exchangeRate{},
	&exchangeRefresh{},
}
