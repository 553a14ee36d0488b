// Package storetest is a behaviour suite every store.Store implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/store"
)

// Factory returns an empty store.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("countries", func(t *testing.T) { testCountries(t, newStore(t)) })
	t.Run("categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("price values", func(t *testing.T) { testPriceValues(t, newStore(t)) })
	t.Run("cascade", func(t *testing.T) { testCascade(t, newStore(t)) })
	t.Run("reset", func(t *testing.T) { testReset(t, newStore(t)) })
	t.Run("transaction rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
	t.Run("saved estimates", func(t *testing.T) { testPriceGen(t, newStore(t)) })
	t.Run("exchange", func(t *testing.T) { testExchange(t, newStore(t)) })
}

func must[T any](v T, err error) func(t *testing.T) T {
	return func(t *testing.T) T {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return v
	}
}

func testCountries(t *testing.T, s store.Store) {
	ctx := context.Background()

	chile := must(s.UpsertCountry(ctx, "CHILE"))(t)
	again := must(s.UpsertCountry(ctx, "CHILE"))(t)
	if chile.ID != again.ID {
		t.Fatalf("upsert changed id: %d -> %d", chile.ID, again.ID)
	}
	must(s.UpsertCountry(ctx, "PERU"))(t)

	if _, err := s.GetCountryByName(ctx, "ARGENTINA"); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("unknown country: err = %v, want ErrDBNotFound", err)
	}

	must(s.SetDefaultCountry(ctx, "PERU"))(t)
	def := must(s.SetDefaultCountry(ctx, "CHILE"))(t)
	if !def.IsDefault {
		t.Fatal("CHILE is not default")
	}
	defaults := 0
	for _, c := range must(s.ListCountries(ctx))(t) {
		if c.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("%d default countries, want 1", defaults)
	}

	if _, err := s.SetDefaultCountry(ctx, "BOLIVIA"); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("default on unknown country: err = %v", err)
	}
}

func testCategories(t *testing.T, s store.Store) {
	ctx := context.Background()

	root := must(s.UpsertCategory(ctx, store.UpsertCategoryOpts{Name: "SEGURIDAD", Code: "SEGURIDAD", Kind: constants.KindPlain}))(t)
	same := must(s.UpsertCategory(ctx, store.UpsertCategoryOpts{Name: "SEGURIDAD", Code: "SEGURIDAD", Kind: constants.KindPlain}))(t)
	if root.ID != same.ID {
		t.Fatalf("root upsert changed id: %d -> %d", root.ID, same.ID)
	}

	sub := must(s.UpsertCategory(ctx, store.UpsertCategoryOpts{Name: "CAMARAS", Code: "SEGURIDAD", Kind: constants.KindPlain, ParentID: &root.ID}))(t)
	if sub.ParentID == nil || *sub.ParentID != root.ID {
		t.Fatalf("subcategory parent = %v", sub.ParentID)
	}
	// Same name under another parent is another category.
	other := must(s.UpsertCategory(ctx, store.UpsertCategoryOpts{Name: "ILUMINACION", Code: "ILUMINACION", Kind: constants.KindPlain}))(t)
	sub2 := must(s.UpsertCategory(ctx, store.UpsertCategoryOpts{Name: "CAMARAS", Code: "ILUMINACION", Kind: constants.KindPlain, ParentID: &other.ID}))(t)
	if sub2.ID == sub.ID {
		t.Fatal("subcategories of different parents share an id")
	}

	roots := must(s.ListCategories(ctx, store.ListCategoriesOpts{RootsOnly: true}))(t)
	if len(roots) != 2 {
		t.Fatalf("%d roots, want 2", len(roots))
	}
	children := must(s.ListCategories(ctx, store.ListCategoriesOpts{ParentID: &root.ID}))(t)
	if len(children) != 1 || children[0].ID != sub.ID {
		t.Fatalf("children of root = %+v", children)
	}
	if all := must(s.ListCategories(ctx, store.ListCategoriesOpts{}))(t); len(all) != 4 {
		t.Fatalf("%d categories, want 4", len(all))
	}

	got := must(s.GetCategory(ctx, sub.ID))(t)
	if got.Name != "CAMARAS" || got.Code != "SEGURIDAD" {
		t.Fatalf("GetCategory = %+v", got)
	}
}

func seedCell(t *testing.T, s store.Store) (*domain.Country, *domain.Module, *domain.Category, *domain.Category) {
	t.Helper()
	ctx := context.Background()

	country := must(s.UpsertCountry(ctx, "CHILE"))(t)
	module := must(s.UpsertModule(ctx, "OFICINA"))(t)
	cat := must(s.UpsertCategory(ctx, store.UpsertCategoryOpts{Name: "SEGURIDAD", Code: "SEGURIDAD", Kind: constants.KindPlain}))(t)
	base := must(s.UpsertCategory(ctx, store.UpsertCategoryOpts{Name: "GASTOS GENERALES", Code: constants.BaseCode, Kind: constants.KindPlain}))(t)
	return country, module, cat, base
}

func testPriceValues(t *testing.T, s store.Store) {
	ctx := context.Background()
	country, module, cat, base := seedCell(t, s)

	v1 := must(s.UpsertPriceValue(ctx, &domain.PriceValue{CountryID: country.ID, CategoryID: cat.ID, ModuleID: &module.ID, Low: 1, Medium: 2, High: 3}))(t)
	v2 := must(s.UpsertPriceValue(ctx, &domain.PriceValue{CountryID: country.ID, CategoryID: cat.ID, ModuleID: &module.ID, Low: 4, Medium: 5, High: 6}))(t)
	if v1.ID != v2.ID {
		t.Fatalf("cell upsert changed id: %d -> %d", v1.ID, v2.ID)
	}
	if v2.Low != 4 || v2.Medium != 5 || v2.High != 6 {
		t.Fatalf("cell not updated: %+v", v2)
	}

	b1 := must(s.UpsertPriceValue(ctx, &domain.PriceValue{CountryID: country.ID, CategoryID: base.ID, Low: 10, Medium: 10, High: 10}))(t)
	b2 := must(s.UpsertPriceValue(ctx, &domain.PriceValue{CountryID: country.ID, CategoryID: base.ID, Low: 20, Medium: 20, High: 20}))(t)
	if b1.ID != b2.ID || b2.ModuleID != nil {
		t.Fatalf("base cell: %+v then %+v", b1, b2)
	}

	got := must(s.GetPriceValue(ctx, country.ID, base.ID, nil))(t)
	if got.Medium != 20 {
		t.Fatalf("base medium = %v", got.Medium)
	}
	if _, err := s.GetPriceValue(ctx, country.ID, cat.ID, nil); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("missing base cell: err = %v", err)
	}

	tests := []struct {
		name string
		opts store.ListPriceValuesOpts
		want int
	}{
		{"all", store.ListPriceValuesOpts{CountryID: country.ID}, 2},
		{"modules", store.ListPriceValuesOpts{CountryID: country.ID, ModuleIDs: []int64{module.ID}}, 1},
		{"base", store.ListPriceValuesOpts{CountryID: country.ID, WithBase: true}, 1},
		{"modules and base", store.ListPriceValuesOpts{CountryID: country.ID, ModuleIDs: []int64{module.ID}, WithBase: true}, 2},
		{"other country", store.ListPriceValuesOpts{CountryID: country.ID + 100}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := must(s.ListPriceValues(ctx, tt.opts))(t); len(got) != tt.want {
				t.Fatalf("got %d values, want %d", len(got), tt.want)
			}
		})
	}

	d := must(s.UpsertPriceDesign(ctx, &domain.PriceDesign{CountryID: country.ID, Category1: 100}))(t)
	d2 := must(s.UpsertPriceDesign(ctx, &domain.PriceDesign{CountryID: country.ID, Category1: 150, Category5: 900}))(t)
	if d.ID != d2.ID || d2.Category1 != 150 || d2.Category5 != 900 {
		t.Fatalf("design upsert: %+v then %+v", d, d2)
	}
}

func testCascade(t *testing.T, s store.Store) {
	ctx := context.Background()
	country, module, cat, _ := seedCell(t, s)

	sub := must(s.UpsertCategory(ctx, store.UpsertCategoryOpts{Name: "CAMARAS", Code: cat.Code, Kind: constants.KindPlain, ParentID: &cat.ID}))(t)
	must(s.UpsertPriceValue(ctx, &domain.PriceValue{CountryID: country.ID, CategoryID: sub.ID, ModuleID: &module.ID, Low: 1}))(t)
	must(s.UpsertPriceValue(ctx, &domain.PriceValue{CountryID: country.ID, CategoryID: cat.ID, ModuleID: &module.ID, Low: 1}))(t)

	if err := s.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetCategory(ctx, sub.ID); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("subcategory survived its parent: err = %v", err)
	}
	if got := must(s.ListPriceValues(ctx, store.ListPriceValuesOpts{CountryID: country.ID}))(t); len(got) != 0 {
		t.Fatalf("%d price values survived category delete", len(got))
	}

	cat2 := must(s.UpsertCategory(ctx, store.UpsertCategoryOpts{Name: "ASEO", Code: "ASEO", Kind: constants.KindPlain}))(t)
	must(s.UpsertPriceValue(ctx, &domain.PriceValue{CountryID: country.ID, CategoryID: cat2.ID, ModuleID: &module.ID, Low: 1}))(t)
	must(s.UpsertPriceDesign(ctx, &domain.PriceDesign{CountryID: country.ID, Category1: 1}))(t)

	if err := s.DeleteCountry(ctx, country.ID); err != nil {
		t.Fatal(err)
	}
	if got := must(s.ListPriceValues(ctx, store.ListPriceValuesOpts{CountryID: country.ID}))(t); len(got) != 0 {
		t.Fatalf("%d price values survived country delete", len(got))
	}
	if _, err := s.GetPriceDesign(ctx, country.ID); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("design survived country delete: err = %v", err)
	}
	if _, err := s.GetCategory(ctx, cat2.ID); err != nil {
		t.Fatalf("category deleted with country: %v", err)
	}
}

func testReset(t *testing.T, s store.Store) {
	ctx := context.Background()
	country, module, cat, _ := seedCell(t, s)
	must(s.UpsertPriceValue(ctx, &domain.PriceValue{CountryID: country.ID, CategoryID: cat.ID, ModuleID: &module.ID}))(t)

	if err := s.ResetCatalog(ctx); err != nil {
		t.Fatal(err)
	}

	if n := len(must(s.ListCountries(ctx))(t)); n != 0 {
		t.Errorf("%d countries after reset", n)
	}
	if n := len(must(s.ListModules(ctx))(t)); n != 0 {
		t.Errorf("%d modules after reset", n)
	}
	if n := len(must(s.ListCategories(ctx, store.ListCategoriesOpts{}))(t)); n != 0 {
		t.Errorf("%d categories after reset", n)
	}
	if n := len(must(s.ListPriceValues(ctx, store.ListPriceValuesOpts{CountryID: country.ID}))(t)); n != 0 {
		t.Errorf("%d price values after reset", n)
	}
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	must(s.UpsertCountry(ctx, "CHILE"))(t)

	err := s.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.UpsertCountry(ctx, "PERU"); err != nil {
			return err
		}
		if _, err := tx.UpsertModule(ctx, "OFICINA"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v, want boom", err)
	}

	if _, err = s.GetCountryByName(ctx, "PERU"); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("rolled back country visible: err = %v", err)
	}
	if n := len(must(s.ListModules(ctx))(t)); n != 0 {
		t.Fatalf("%d modules after rollback", n)
	}

	err = s.InTx(ctx, func(tx store.Store) error {
		_, err := tx.UpsertCountry(ctx, "PERU")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.GetCountryByName(ctx, "PERU"); err != nil {
		t.Fatalf("committed country missing: %v", err)
	}
}

func testPriceGen(t *testing.T, s store.Store) {
	ctx := context.Background()
	country, module, cat, base := seedCell(t, s)
	cell := must(s.UpsertPriceValue(ctx, &domain.PriceValue{CountryID: country.ID, CategoryID: cat.ID, ModuleID: &module.ID}))(t)
	baseCell := must(s.UpsertPriceValue(ctx, &domain.PriceValue{CountryID: country.ID, CategoryID: base.ID}))(t)

	gen := must(s.UpsertPriceGen(ctx, &domain.PriceGen{ProjectID: 7, TotalValue: 30, Area: 120}))(t)
	gen2 := must(s.UpsertPriceGen(ctx, &domain.PriceGen{ProjectID: 7, TotalValue: 45, Area: 120}))(t)
	if gen.ID != gen2.ID || gen2.TotalValue != 45 {
		t.Fatalf("price gen upsert: %+v then %+v", gen, gen2)
	}

	err := s.ReplacePriceGenValues(ctx, gen.ID, []*domain.PriceGenValue{
		{PriceValueID: cell.ID, Tier: domain.TierLow},
		{PriceValueID: baseCell.ID, Tier: domain.TierHigh},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = s.ReplacePriceGenValues(ctx, gen.ID, []*domain.PriceGenValue{
		{PriceValueID: cell.ID, Tier: domain.TierMedium},
	})
	if err != nil {
		t.Fatal(err)
	}

	saved := must(s.ListSavedSelections(ctx, gen.ID))(t)
	if len(saved) != 1 {
		t.Fatalf("%d selections, want 1", len(saved))
	}
	sel := saved[0]
	if sel.PriceValueID != cell.ID || sel.CategoryID != cat.ID || sel.ModuleID == nil || *sel.ModuleID != module.ID || sel.Tier != domain.TierMedium {
		t.Fatalf("selection = %+v", sel)
	}

	if _, err = s.GetPriceGenByProject(ctx, 8); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("unknown project: err = %v", err)
	}
}

func testExchange(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetRefreshMarker(ctx); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("marker before refresh: err = %v", err)
	}

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := s.SetRefreshMarker(ctx, day); err != nil {
		t.Fatal(err)
	}
	if err := s.SetRefreshMarker(ctx, day.AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}
	got := must(s.GetRefreshMarker(ctx))(t)
	if y, m, d := got.Date(); y != 2024 || m != time.March || d != 2 {
		t.Fatalf("marker = %s", got)
	}

	for _, r := range []*domain.ExchangeRate{{CurrencyCode: "CLP", Rate: 900}, {CurrencyCode: "PEN", Rate: 3.7}, {CurrencyCode: "CLP", Rate: 950}} {
		if err := s.UpsertExchangeRate(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	if clp := must(s.GetExchangeRate(ctx, "CLP"))(t); clp.Rate != 950 {
		t.Fatalf("CLP = %v", clp.Rate)
	}

	if err := s.DeleteExchangeRates(ctx, []string{"PEN"}); err != nil {
		t.Fatal(err)
	}
	rates := must(s.ListExchangeRates(ctx))(t)
	if len(rates) != 1 || rates[0].CurrencyCode != "CLP" {
		t.Fatalf("rates = %+v", rates)
	}
	if _, err := s.GetExchangeRate(ctx, "PEN"); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("deleted rate: err = %v", err)
	}
}
