package store

import (
	"context"
	"time"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

type UpsertCategoryOpts struct {
	Name     string
	Code     string
	Kind     string
	ParentID *int64
}

// ListCategoriesOpts filters categories. The zero value lists every category.
type ListCategoriesOpts struct {
	ParentID  *int64
	RootsOnly bool
}

// ListPriceValuesOpts selects the price cells of a country. With neither
// ModuleIDs nor WithBase set every cell of the country is returned.
type ListPriceValuesOpts struct {
	CountryID int64
	ModuleIDs []int64
	WithBase  bool
}

type CatalogStore interface {
	UpsertCountry(ctx context.Context, name string) (*domain.Country, error)
	GetCountryByName(ctx context.Context, name string) (*domain.Country, error)
	ListCountries(ctx context.Context) ([]*domain.Country, error)
	SetDefaultCountry(ctx context.Context, name string) (*domain.Country, error)
	DeleteCountry(ctx context.Context, id int64) error

	UpsertModule(ctx context.Context, name string) (*domain.Module, error)
	GetModuleByName(ctx context.Context, name string) (*domain.Module, error)
	ListModules(ctx context.Context) ([]*domain.Module, error)

	UpsertCategory(ctx context.Context, opts UpsertCategoryOpts) (*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context, opts ListCategoriesOpts) ([]*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	UpsertPriceValue(ctx context.Context, value *domain.PriceValue) (*domain.PriceValue, error)
	GetPriceValue(ctx context.Context, countryID, categoryID int64, moduleID *int64) (*domain.PriceValue, error)
	ListPriceValues(ctx context.Context, opts ListPriceValuesOpts) ([]*domain.PriceValue, error)

	UpsertPriceDesign(ctx context.Context, design *domain.PriceDesign) (*domain.PriceDesign, error)
	GetPriceDesign(ctx context.Context, countryID int64) (*domain.PriceDesign, error)

	// ResetCatalog removes every country, module and category together with
	// the price rows they own.
	ResetCatalog(ctx context.Context) error
}

type EstimateStore interface {
	UpsertPriceGen(ctx context.Context, gen *domain.PriceGen) (*domain.PriceGen, error)
	GetPriceGenByProject(ctx context.Context, projectID int64) (*domain.PriceGen, error)
	ReplacePriceGenValues(ctx context.Context, priceGenID int64, values []*domain.PriceGenValue) error
	ListSavedSelections(ctx context.Context, priceGenID int64) ([]*domain.SavedSelection, error)
}

type ExchangeStore interface {
	ListExchangeRates(ctx context.Context) ([]*domain.ExchangeRate, error)
	GetExchangeRate(ctx context.Context, code string) (*domain.ExchangeRate, error)
	UpsertExchangeRate(ctx context.Context, rate *domain.ExchangeRate) error
	DeleteExchangeRates(ctx context.Context, codes []string) error
	// GetRefreshMarker returns constants.ErrDBNotFound before the first refresh.
	GetRefreshMarker(ctx context.Context) (time.Time, error)
	SetRefreshMarker(ctx context.Context, day time.Time) error
}

type Store interface {
	CatalogStore
	EstimateStore
	ExchangeStore

	// InTx runs fn against a transactional view of the store. An error from
	// fn rolls back everything fn wrote.
	InTx(ctx context.Context, fn func(Store) error) error
}

type store struct {
	pool *Pool
}

func NewStore(pool *Pool) Store {
	return &store{pool}
}

func (s *store) InTx(ctx context.Context, fn func(Store) error) error {
	return s.pool.InTx(ctx, func(tx *Pool) error {
		return fn(&store{tx})
	})
}
