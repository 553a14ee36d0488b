package catalog

import (
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/shopspring/decimal"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/spreadsheet"
)

var errRequired = errors.New("value is required")

type RowKind int

const (
	RowVariable RowKind = iota
	RowBase
)

// Row is one classified catalog line.
type Row struct {
	Number          int
	Kind            RowKind
	Module          string
	Category        string
	CategoryKind    string
	Subcategory     string
	SubcategoryKind string
	Low             decimal.Decimal
	Medium          decimal.Decimal
	High            decimal.Decimal
}

func (r *Row) HasSubcategory() bool {
	return r.Subcategory != ""
}

func (r *Row) key() cellKey {
	return cellKey{Base: r.Kind == RowBase, Module: r.Module, Category: r.Category}
}

func rowNumber(i int) int {
	// data row i sits below the 1-based header row
	return i + 2
}

// Classify reads data row i of a catalog sheet. Blank rows must be skipped by the caller.
func Classify(sheet string, df dataframe.DataFrame, i int) (*Row, error) {
	row := &Row{Number: rowNumber(i)}

	required := func(col int) (string, error) {
		v, ok := spreadsheet.Text(df, i, col)
		if !ok {
			return "", &constants.RowError{
				Sheet:  sheet,
				Row:    row.Number,
				Column: constants.CatalogColumnNames[col],
				Err:    errRequired,
			}
		}
		return v, nil
	}

	pre, _ := spreadsheet.Text(df, i, constants.ColumnPre)
	var err error
	if pre == constants.BaseCode {
		row.Kind = RowBase
		if row.Category, err = required(constants.ColumnModule); err != nil {
			return nil, err
		}
	} else {
		row.Kind = RowVariable
		if row.Module, err = required(constants.ColumnModule); err != nil {
			return nil, err
		}
		if row.Category, err = required(constants.ColumnParameter); err != nil {
			return nil, err
		}
	}
	row.CategoryKind = domain.KindOf(row.Category)

	if sub, ok := spreadsheet.Text(df, i, constants.ColumnDetail); ok {
		row.Subcategory = sub
		row.SubcategoryKind = domain.KindOf(sub)
	}

	tiers := []struct {
		col int
		dst *decimal.Decimal
	}{
		{constants.ColumnLow, &row.Low},
		{constants.ColumnMedium, &row.Medium},
		{constants.ColumnHigh, &row.High},
	}
	for _, t := range tiers {
		if *t.dst, err = amount(sheet, df, i, t.col, constants.CatalogColumnNames[t.col]); err != nil {
			return nil, err
		}
	}

	return row, nil
}

// amount parses a numeric cell. A missing value reads as zero.
func amount(sheet string, df dataframe.DataFrame, i, col int, column string) (decimal.Decimal, error) {
	v, ok := spreadsheet.Text(df, i, col)
	if !ok {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, &constants.RowError{
			Sheet:  sheet,
			Row:    rowNumber(i),
			Column: column,
			Err:    fmt.Errorf("%q is not a number", v),
		}
	}
	return d, nil
}
