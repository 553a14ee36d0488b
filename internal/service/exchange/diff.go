package exchange

import (
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wys-platform/prices/internal/domain"
)

// Changes is what it takes to turn the stored table into the fetched one.
type Changes struct {
	Upserts []*domain.ExchangeRate
	Deletes []string
}

// Diff compares the stored rates with a fetched table. Rates are compared as
// decimals so float noise in the source does not rewrite unchanged rows.
func Diff(current []*domain.ExchangeRate, latest map[string]float64) *Changes {
	stored := make(map[string]decimal.Decimal, len(current))
	for _, r := range current {
		stored[r.CurrencyCode] = decimal.NewFromFloat(r.Rate)
	}

	fetched := make(map[string]float64, len(latest))
	for code, rate := range latest {
		fetched[strings.ToUpper(code)] = rate
	}

	changes := &Changes{}
	for _, code := range slices.Sorted(maps.Keys(fetched)) {
		rate := fetched[code]
		if old, ok := stored[code]; ok && old.Equal(decimal.NewFromFloat(rate)) {
			continue
		}
		changes.Upserts = append(changes.Upserts, &domain.ExchangeRate{CurrencyCode: code, Rate: rate})
	}
	for _, code := range slices.Sorted(maps.Keys(stored)) {
		if _, ok := fetched[code]; !ok {
			changes.Deletes = append(changes.Deletes, code)
		}
	}

	return changes
}
