package store

import (
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

const (
	tableCountries      = "countries"
	tableModules        = "modules"
	tableCategories     = "categories"
	tablePriceValues    = "price_values"
	tablePriceDesigns   = "price_designs"
	tablePriceGens      = "price_gens"
	tablePriceGenValues = "price_gen_values"
	tableExchangeRates  = "exchange_rates"
	tableExchangeMarker = "exchange_refresh"
)

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

// wrapErr maps driver errors onto coded errors. Anything unknown is a storage error.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return fmt.Errorf("%w: %w", constants.ErrStorage, err)
}

// builder returns a squirrel statement builder with $n placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// nullableEq compares col with v, or checks it IS NULL when v is nil.
func nullableEq(col string, v *int64) squirrel.Eq {
	if v == nil {
		return squirrel.Eq{col: nil}
	}
	return squirrel.Eq{col: *v}
}
