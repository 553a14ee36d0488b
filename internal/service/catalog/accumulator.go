package catalog

import "github.com/shopspring/decimal"

// cellKey identifies the price cell a catalog row contributes to.
type cellKey struct {
	Base     bool
	Module   string
	Category string
}

// aggregate is the summed value of a run of rows sharing one cellKey.
type aggregate struct {
	key               cellKey
	low, medium, high decimal.Decimal
	rows              int
}

// accumulator is the open aggregate while folding over a sheet.
type accumulator struct {
	open bool
	agg  aggregate
}

// step folds row into acc. When the row starts a new run the previous run is
// returned as flushed.
func step(acc accumulator, row *Row) (flushed *aggregate, next accumulator) {
	key := row.key()
	if acc.open && acc.agg.key != key {
		done := acc.agg
		flushed = &done
		acc = accumulator{}
	}

	if !acc.open {
		acc = accumulator{open: true, agg: aggregate{
			key:    key,
			low:    decimal.Zero,
			medium: decimal.Zero,
			high:   decimal.Zero,
		}}
	}

	acc.agg.low = acc.agg.low.Add(row.Low)
	acc.agg.medium = acc.agg.medium.Add(row.Medium)
	acc.agg.high = acc.agg.high.Add(row.High)
	acc.agg.rows++

	return flushed, acc
}

// final returns the run still open after the last row, if any.
func (acc accumulator) final() *aggregate {
	if !acc.open {
		return nil
	}
	done := acc.agg
	return &done
}
