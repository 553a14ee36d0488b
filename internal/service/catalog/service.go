package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
	"github.com/wys-platform/prices/internal/pkg/store"
)

// Archiver keeps a copy of every accepted upload.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte) error
}

type Config struct {
	// DefaultCountry is marked as default whenever a sheet of that name is ingested.
	DefaultCountry string
	Archive        Archiver
}

type Service struct {
	store          store.Store
	archive        Archiver
	defaultCountry string
	now            func() time.Time

	// uploadMx serializes uploads and resets; upserts look up then create.
	uploadMx sync.Mutex
}

func NewService(st store.Store, cfg Config) *Service {
	return &Service{
		store:          st,
		archive:        cfg.Archive,
		defaultCountry: countryName(cfg.DefaultCountry),
		now:            time.Now,
	}
}

func countryName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Catalog is the listing the estimate form is built from.
type Catalog struct {
	Categories []*domain.Category `json:"categories"`
	Countries  []*domain.Country  `json:"countries"`
}

func (s *Service) GetCatalog(ctx context.Context, withSubcategories bool) (*Catalog, error) {
	roots, err := s.store.ListCategories(ctx, store.ListCategoriesOpts{RootsOnly: true})
	if err != nil {
		return nil, fmt.Errorf("store.ListCategories: %w", err)
	}

	if withSubcategories {
		if err = s.attachSubcategories(ctx, roots); err != nil {
			return nil, err
		}
	}

	countries, err := s.store.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListCountries: %w", err)
	}

	return &Catalog{Categories: roots, Countries: countries}, nil
}

func (s *Service) attachSubcategories(ctx context.Context, roots []*domain.Category) error {
	all, err := s.store.ListCategories(ctx, store.ListCategoriesOpts{})
	if err != nil {
		return fmt.Errorf("store.ListCategories: %w", err)
	}

	byParent := make(map[int64][]*domain.Category)
	for _, c := range all {
		if c.ParentID != nil {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}
	for _, root := range roots {
		root.Subcategories = byParent[root.ID]
	}
	return nil
}

// GetCategory returns a category with its subcategories.
func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", id, err)
	}

	category.Subcategories, err = s.store.ListCategories(ctx, store.ListCategoriesOpts{ParentID: &category.ID})
	if err != nil {
		return nil, fmt.Errorf("store.ListCategories: %w", err)
	}

	return category, nil
}

func (s *Service) SetDefaultCountry(ctx context.Context, name string) (*domain.Country, error) {
	name = countryName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: country name is empty", constants.ErrInvalidInput)
	}

	country, err := s.store.SetDefaultCountry(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("country %q: %w", name, err)
	}

	return country, nil
}

// DeleteCountry removes a country with its price values and design prices.
func (s *Service) DeleteCountry(ctx context.Context, name string) error {
	s.uploadMx.Lock()
	defer s.uploadMx.Unlock()

	country, err := s.store.GetCountryByName(ctx, countryName(name))
	if err != nil {
		return fmt.Errorf("country %q: %w", name, err)
	}

	if err = s.store.DeleteCountry(ctx, country.ID); err != nil {
		return fmt.Errorf("store.DeleteCountry: %w", err)
	}

	logger.Infof(ctx, "country %s deleted", country.Name)
	return nil
}

// Reset deletes the whole catalog.
func (s *Service) Reset(ctx context.Context) error {
	s.uploadMx.Lock()
	defer s.uploadMx.Unlock()

	if err := s.store.ResetCatalog(ctx); err != nil {
		return fmt.Errorf("store.ResetCatalog: %w", err)
	}

	logger.Warn(ctx, "catalog reset")
	return nil
}
