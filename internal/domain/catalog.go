package domain

import (
	"fmt"
	"strings"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

type Country struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	IsDefault bool   `db:"is_default" json:"default"`
}

type Module struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Category is a node of the cost category tree. ParentID is nil for roots.
// Subcategories is only filled by reads that ask for the tree.
type Category struct {
	ID            int64       `db:"id" json:"id"`
	Code          string      `db:"code" json:"code"`
	Name          string      `db:"name" json:"name"`
	Kind          string      `db:"kind" json:"type"`
	ParentID      *int64      `db:"parent_id" json:"parent_category_id,omitempty"`
	Subcategories []*Category `db:"-" json:"subcategories,omitempty"`
}

func (c *Category) IsBase() bool {
	return c.Code == constants.BaseCode
}

// KindOf infers the question kind from a category name.
func KindOf(name string) string {
	if strings.Contains(name, "(") {
		return constants.KindParameterized
	}
	return constants.KindPlain
}

// PriceValue is one cell of the cost matrix. ModuleID is nil for BASE categories.
type PriceValue struct {
	ID         int64   `db:"id" json:"id"`
	CountryID  int64   `db:"country_id" json:"country_id"`
	CategoryID int64   `db:"category_id" json:"category_id"`
	ModuleID   *int64  `db:"module_id" json:"module_id"`
	Low        float64 `db:"low" json:"low"`
	Medium     float64 `db:"medium" json:"medium"`
	High       float64 `db:"high" json:"high"`
}

func (v *PriceValue) Tier(t Tier) float64 {
	switch t {
	case TierLow:
		return v.Low
	case TierMedium:
		return v.Medium
	case TierHigh:
		return v.High
	}
	return 0
}

// PriceDesign holds the flat design surcharge per floor-area bracket.
type PriceDesign struct {
	ID        int64   `db:"id" json:"id"`
	CountryID int64   `db:"country_id" json:"country_id"`
	Category1 float64 `db:"category_1" json:"category_1"`
	Category2 float64 `db:"category_2" json:"category_2"`
	Category3 float64 `db:"category_3" json:"category_3"`
	Category4 float64 `db:"category_4" json:"category_4"`
	Category5 float64 `db:"category_5" json:"category_5"`
}

// Bracket returns the 1-based bracket for area. Bracket limits are inclusive.
func Bracket(area float64) int {
	for i, limit := range constants.DesignBracketLimits {
		if area <= limit {
			return i + 1
		}
	}
	return len(constants.DesignBracketLimits) + 1
}

func (d *PriceDesign) Surcharge(area float64) float64 {
	return d.Get(Bracket(area))
}

func (d *PriceDesign) Get(bracket int) float64 {
	switch bracket {
	case 1:
		return d.Category1
	case 2:
		return d.Category2
	case 3:
		return d.Category3
	case 4:
		return d.Category4
	case 5:
		return d.Category5
	}
	return 0
}

func (d *PriceDesign) Set(bracket int, amount float64) error {
	switch bracket {
	case 1:
		d.Category1 = amount
	case 2:
		d.Category2 = amount
	case 3:
		d.Category3 = amount
	case 4:
		d.Category4 = amount
	case 5:
		d.Category5 = amount
	default:
		return fmt.Errorf("design bracket %d out of range", bracket)
	}
	return nil
}

// PriceGen is the saved estimate of a project.
type PriceGen struct {
	ID         int64   `db:"id" json:"id"`
	ProjectID  int64   `db:"project_id" json:"project_id"`
	TotalValue float64 `db:"total_value" json:"value"`
	Area       float64 `db:"area" json:"m2"`
}

// PriceGenValue records which price cell and tier a saved estimate used.
type PriceGenValue struct {
	PriceGenID   int64 `db:"price_gen_id" json:"price_gen_id"`
	PriceValueID int64 `db:"price_value_id" json:"price_value_id"`
	Tier         Tier  `db:"tier" json:"resp"`
}

type ExchangeRate struct {
	CurrencyCode string  `db:"currency_code" json:"code"`
	Rate         float64 `db:"rate" json:"rate"`
}

// SavedSelection is a saved PriceGenValue joined with the cell it points at.
type SavedSelection struct {
	PriceValueID int64  `db:"price_value_id" json:"price_value_id"`
	CategoryID   int64  `db:"category_id" json:"category_id"`
	ModuleID     *int64 `db:"module_id" json:"module_id"`
	Tier         Tier   `db:"tier" json:"resp"`
}
