package estimate

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
	"github.com/wys-platform/prices/internal/pkg/store"
)

type SaveRequest struct {
	Request
	ProjectID int64 `json:"project_id" validate:"required"`
	// Value is the total the caller was shown. When set it must match the
	// estimate priced on save.
	Value float64 `json:"value" validate:"gte=0"`
}

type SavedEstimate struct {
	*domain.PriceGen
	Selections []*domain.SavedSelection `json:"selections"`
}

// SaveEstimate stores the configuration behind an estimate on its project so
// it can be edited later. The project must exist in the project registry.
func (s *Service) SaveEstimate(ctx context.Context, req *SaveRequest) (*domain.PriceGen, error) {
	ctx = logger.With(ctx, "project_id", req.ProjectID)

	if s.projects == nil {
		return nil, fmt.Errorf("%w: no project registry configured", constants.ErrUpstreamUnavailable)
	}
	if _, err := s.projects.GetProject(ctx, req.ProjectID); err != nil {
		return nil, fmt.Errorf("project %d: %w", req.ProjectID, err)
	}

	p, err := s.prepare(ctx, &req.Request)
	if err != nil {
		return nil, err
	}

	// the stored total is always the one priced here
	res, err := s.evaluate(ctx, p, false)
	if err != nil {
		return nil, err
	}
	if req.Value != 0 && !decimal.NewFromFloat(req.Value).Round(2).Equal(decimal.NewFromFloat(res.Value).Round(2)) {
		return nil, fmt.Errorf("%w: value %v does not match the estimate %v", constants.ErrInvalidInput, req.Value, res.Value)
	}

	var gen *domain.PriceGen
	err = s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		gen, err = tx.UpsertPriceGen(ctx, &domain.PriceGen{
			ProjectID:  req.ProjectID,
			TotalValue: res.Value,
			Area:       req.Area,
		})
		if err != nil {
			return fmt.Errorf("store.UpsertPriceGen: %w", err)
		}

		if err = tx.ReplacePriceGenValues(ctx, gen.ID, touchedCells(p, gen.ID)); err != nil {
			return fmt.Errorf("store.ReplacePriceGenValues: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err = s.projects.LinkPriceGen(ctx, req.ProjectID, gen.ID); err != nil {
		return nil, fmt.Errorf("projects.LinkPriceGen: %w", err)
	}

	logger.Infof(ctx, "estimate saved as price gen %d", gen.ID)
	return gen, nil
}

// touchedCells lists the price cells a selection read: the BASE cell of a
// BASE category, otherwise one cell per resolved module.
func touchedCells(p *pricing, genID int64) []*domain.PriceGenValue {
	seen := make(map[int64]bool)
	var out []*domain.PriceGenValue

	add := func(ref cellRef, tier domain.Tier) {
		cell, ok := p.cells[ref]
		if !ok || seen[cell.ID] {
			return
		}
		seen[cell.ID] = true
		out = append(out, &domain.PriceGenValue{PriceGenID: genID, PriceValueID: cell.ID, Tier: tier})
	}

	for _, sel := range p.selections {
		if sel.category.IsBase() {
			add(cellRef{category: sel.category.ID}, sel.tier)
			continue
		}
		for _, ws := range p.workspaces {
			add(cellRef{module: ws.module.ID, category: sel.category.ID}, sel.tier)
		}
	}

	return out
}

func (s *Service) GetSavedEstimate(ctx context.Context, projectID int64) (*SavedEstimate, error) {
	gen, err := s.store.GetPriceGenByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, constants.ErrDBNotFound) {
			return nil, fmt.Errorf("no saved estimate for project %d: %w", projectID, err)
		}
		return nil, fmt.Errorf("store.GetPriceGenByProject: %w", err)
	}

	selections, err := s.store.ListSavedSelections(ctx, gen.ID)
	if err != nil {
		return nil, fmt.Errorf("store.ListSavedSelections: %w", err)
	}

	return &SavedEstimate{PriceGen: gen, Selections: selections}, nil
}
