package estimate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/clients"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
	"github.com/wys-platform/prices/internal/pkg/store"
)

type SpaceRegistry interface {
	GetSpace(ctx context.Context, id int64) (*clients.Space, error)
}

type Scheduler interface {
	Weeks(ctx context.Context, area float64) (float64, error)
}

type ProjectRegistry interface {
	GetProject(ctx context.Context, id int64) (*clients.Project, error)
	LinkPriceGen(ctx context.Context, projectID, priceGenID int64) error
}

type Config struct {
	// BaseScaling is keyed by lowercased BASE category name.
	BaseScaling map[string]Rule

	Spaces   SpaceRegistry
	Schedule Scheduler
	Projects ProjectRegistry
}

type Service struct {
	store    store.Store
	rules    map[string]Rule
	spaces   SpaceRegistry
	schedule Scheduler
	projects ProjectRegistry
}

func NewService(st store.Store, cfg Config) *Service {
	rules := make(map[string]Rule, len(cfg.BaseScaling))
	for name, rule := range cfg.BaseScaling {
		rules[ruleKey(name)] = rule
	}

	return &Service{
		store:    st,
		rules:    rules,
		spaces:   cfg.Spaces,
		schedule: cfg.Schedule,
		projects: cfg.Projects,
	}
}

// Workspace is one instance of a module in the project. Either SpaceID or
// Module names it; Module wins when both are set.
type Workspace struct {
	SpaceID  *int64  `json:"space_id,omitempty"`
	Module   string  `json:"module,omitempty"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
}

// Selection is the answer tier picked for a category.
type Selection struct {
	ID   int64  `json:"id" validate:"required"`
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
	Resp string `json:"resp" validate:"required"`
}

type Request struct {
	Country    string      `json:"country" validate:"required"`
	Area       float64     `json:"m2" validate:"gte=0"`
	Workspaces []Workspace `json:"workspaces" validate:"dive"`
	Categories []Selection `json:"categories" validate:"required,dive"`
}

type cellRef struct {
	module   int64 // 0 for BASE
	category int64
}

type resolvedWorkspace struct {
	module   *domain.Module
	quantity float64
}

type selected struct {
	category *domain.Category
	tier     domain.Tier
}

// pricing is everything an estimate reads from the catalog.
type pricing struct {
	country    *domain.Country
	area       float64
	workspaces []resolvedWorkspace
	selections []selected
	children   map[int64][]*domain.Category
	cells      map[cellRef]*domain.PriceValue
}

func (s *Service) prepare(ctx context.Context, req *Request) (*pricing, error) {
	if req.Area < 0 {
		return nil, fmt.Errorf("%w: negative area %v", constants.ErrInvalidInput, req.Area)
	}

	name := strings.ToUpper(strings.TrimSpace(req.Country))
	country, err := s.store.GetCountryByName(ctx, name)
	if errors.Is(err, constants.ErrDBNotFound) {
		return nil, fmt.Errorf("%w: %s is an invalid country", constants.ErrInvalidInput, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store.GetCountryByName: %w", err)
	}

	p := &pricing{country: country, area: req.Area}

	if p.selections, p.children, err = s.resolveSelections(ctx, req.Categories); err != nil {
		return nil, err
	}
	if p.workspaces, err = s.resolveWorkspaces(ctx, req.Workspaces); err != nil {
		return nil, err
	}

	moduleIDs := make([]int64, 0, len(p.workspaces))
	for _, ws := range p.workspaces {
		moduleIDs = append(moduleIDs, ws.module.ID)
	}

	values, err := s.store.ListPriceValues(ctx, store.ListPriceValuesOpts{
		CountryID: country.ID,
		ModuleIDs: moduleIDs,
		WithBase:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("store.ListPriceValues: %w", err)
	}

	p.cells = make(map[cellRef]*domain.PriceValue, len(values))
	for _, v := range values {
		ref := cellRef{category: v.CategoryID}
		if v.ModuleID != nil {
			ref.module = *v.ModuleID
		}
		p.cells[ref] = v
	}

	return p, nil
}

func (s *Service) resolveSelections(ctx context.Context, in []Selection) ([]selected, map[int64][]*domain.Category, error) {
	all, err := s.store.ListCategories(ctx, store.ListCategoriesOpts{})
	if err != nil {
		return nil, nil, fmt.Errorf("store.ListCategories: %w", err)
	}

	byID := make(map[int64]*domain.Category, len(all))
	children := make(map[int64][]*domain.Category)
	for _, c := range all {
		byID[c.ID] = c
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	out := make([]selected, 0, len(in))
	for _, sel := range in {
		category, ok := byID[sel.ID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: unknown category %d", constants.ErrInvalidInput, sel.ID)
		}
		tier, err := domain.ParseTier(sel.Resp)
		if err != nil {
			return nil, nil, fmt.Errorf("category %d: %w", sel.ID, err)
		}
		out = append(out, selected{category: category, tier: tier})
	}

	return out, children, nil
}

// resolveWorkspaces maps workspaces to catalog modules. Workspaces whose
// module is unknown are dropped with a warning.
func (s *Service) resolveWorkspaces(ctx context.Context, in []Workspace) ([]resolvedWorkspace, error) {
	names, err := s.moduleNames(ctx, in)
	if err != nil {
		return nil, err
	}

	modules, err := s.store.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListModules: %w", err)
	}
	byName := make(map[string]*domain.Module, len(modules))
	for _, m := range modules {
		byName[m.Name] = m
	}

	out := make([]resolvedWorkspace, 0, len(in))
	for i, ws := range in {
		if names[i] == "" {
			continue
		}
		module, ok := byName[names[i]]
		if !ok {
			logger.Warnf(ctx, "no module named %q, workspace dropped", names[i])
			continue
		}
		out = append(out, resolvedWorkspace{module: module, quantity: ws.Quantity})
	}

	return out, nil
}

// moduleNames returns the module name of every workspace, asking the space
// registry for the ones that only carry a space id. An empty name means the
// workspace was dropped.
func (s *Service) moduleNames(ctx context.Context, in []Workspace) ([]string, error) {
	names := make([]string, len(in))
	for i, ws := range in {
		names[i] = strings.TrimSpace(ws.Module)
		if names[i] != "" {
			continue
		}
		if ws.SpaceID == nil {
			return nil, fmt.Errorf("%w: workspace %d has neither module nor space_id", constants.ErrInvalidInput, i)
		}
		if s.spaces == nil {
			return nil, fmt.Errorf("%w: no space registry configured", constants.ErrUpstreamUnavailable)
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i, ws := range in {
		if names[i] != "" {
			continue
		}

		id := *ws.SpaceID
		eg.Go(func() error {
			space, err := s.spaces.GetSpace(egCtx, id)
			if errors.Is(err, constants.ErrDBNotFound) {
				logger.Warnf(ctx, "space %d not found, workspace dropped", id)
				return nil
			}
			if err != nil {
				return fmt.Errorf("spaces.GetSpace, id-%d: %w", id, err)
			}
			names[i] = strings.TrimSpace(space.Name)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		if !errors.Is(err, constants.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", constants.ErrUpstreamUnavailable, err)
		}
		return nil, err
	}

	return names, nil
}
