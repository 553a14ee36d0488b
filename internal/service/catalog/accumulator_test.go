package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func row(kind RowKind, module, category string, low int64) *Row {
	return &Row{
		Kind:     kind,
		Module:   module,
		Category: category,
		Low:      decimal.NewFromInt(low),
		Medium:   decimal.NewFromInt(low * 2),
		High:     decimal.NewFromInt(low * 3),
	}
}

func TestStep(t *testing.T) {
	rows := []*Row{
		row(RowVariable, "OFICINA", "SEGURIDAD", 1),
		row(RowVariable, "OFICINA", "SEGURIDAD", 2),
		row(RowVariable, "SALA", "SEGURIDAD", 4),
		row(RowBase, "", "SEGURIDAD", 8),
		row(RowBase, "", "SEGURIDAD", 16),
	}

	var (
		acc     accumulator
		flushed []*aggregate
	)
	for _, r := range rows {
		var f *aggregate
		f, acc = step(acc, r)
		if f != nil {
			flushed = append(flushed, f)
		}
	}
	if last := acc.final(); last != nil {
		flushed = append(flushed, last)
	}

	want := []struct {
		key  cellKey
		low  int64
		rows int
	}{
		{cellKey{Module: "OFICINA", Category: "SEGURIDAD"}, 3, 2},
		{cellKey{Module: "SALA", Category: "SEGURIDAD"}, 4, 1},
		{cellKey{Base: true, Category: "SEGURIDAD"}, 24, 2},
	}
	if len(flushed) != len(want) {
		t.Fatalf("flushed %d aggregates, want %d", len(flushed), len(want))
	}
	for i, w := range want {
		got := flushed[i]
		if got.key != w.key {
			t.Errorf("aggregate %d key = %+v, want %+v", i, got.key, w.key)
		}
		if !got.low.Equal(decimal.NewFromInt(w.low)) || !got.high.Equal(decimal.NewFromInt(w.low*3)) {
			t.Errorf("aggregate %d = %s/%s/%s, want low %d", i, got.low, got.medium, got.high, w.low)
		}
		if got.rows != w.rows {
			t.Errorf("aggregate %d rows = %d, want %d", i, got.rows, w.rows)
		}
	}
}

func TestFinalOnEmptySheet(t *testing.T) {
	if agg := (accumulator{}).final(); agg != nil {
		t.Fatalf("final on empty accumulator = %+v", agg)
	}
}

func TestStepSumsExactly(t *testing.T) {
	var acc accumulator
	for i := 0; i < 10; i++ {
		_, acc = step(acc, &Row{Category: "X", Low: decimal.RequireFromString("0.1")})
	}
	if got := acc.final().low.InexactFloat64(); got != 1 {
		t.Fatalf("ten times 0.1 = %v, want 1", got)
	}
}
