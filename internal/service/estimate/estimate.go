package estimate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
)

type SubcategoryValue struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Resp  domain.Tier `json:"resp"`
	Value float64     `json:"value"`
}

type CategoryValue struct {
	ID            int64               `json:"id"`
	Code          string              `json:"code"`
	Name          string              `json:"name"`
	Kind          string              `json:"type"`
	Resp          domain.Tier         `json:"resp"`
	Value         float64             `json:"value"`
	Subcategories []*SubcategoryValue `json:"subcategories,omitempty"`
}

type Result struct {
	Country    string           `json:"country"`
	Area       float64          `json:"m2"`
	Weeks      *float64         `json:"weeks,omitempty"`
	Design     float64          `json:"design"`
	Value      float64          `json:"value"`
	Categories []*CategoryValue `json:"categories"`
}

// Estimate prices a project configuration. With detail set every category
// that has subcategories is also priced per subcategory.
func (s *Service) Estimate(ctx context.Context, req *Request, detail bool) (*Result, error) {
	ctx = logger.With(ctx, "country", req.Country)

	p, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.evaluate(ctx, p, detail)
}

// evaluate prices a prepared configuration.
func (s *Service) evaluate(ctx context.Context, p *pricing, detail bool) (*Result, error) {
	var fetched bool
	weeks := sync.OnceValues(func() (float64, error) {
		if s.schedule == nil {
			return 0, fmt.Errorf("%w: no schedule estimator configured", constants.ErrUpstreamUnavailable)
		}
		fetched = true
		w, err := s.schedule.Weeks(ctx, p.area)
		if err != nil {
			return 0, fmt.Errorf("schedule.Weeks: %w", err)
		}
		return w, nil
	})

	res := &Result{Country: p.country.Name, Area: p.area, Categories: []*CategoryValue{}}
	total := decimal.Zero

	for _, sel := range p.selections {
		value, err := s.price(ctx, p, sel.category, sel.category, sel.tier, weeks)
		if err != nil {
			return nil, err
		}
		total = total.Add(value)

		// zero-valued categories still count toward the total
		if value.IsZero() {
			continue
		}

		item := &CategoryValue{
			ID:    sel.category.ID,
			Code:  sel.category.Code,
			Name:  sel.category.Name,
			Kind:  sel.category.Kind,
			Resp:  sel.tier,
			Value: value.InexactFloat64(),
		}
		if detail {
			for _, sub := range p.children[sel.category.ID] {
				subValue, err := s.price(ctx, p, sel.category, sub, sel.tier, weeks)
				if err != nil {
					return nil, err
				}
				item.Subcategories = append(item.Subcategories, &SubcategoryValue{
					ID:    sub.ID,
					Name:  sub.Name,
					Resp:  sel.tier,
					Value: subValue.InexactFloat64(),
				})
			}
		}
		res.Categories = append(res.Categories, item)
	}

	design, err := s.designSurcharge(ctx, p)
	if err != nil {
		return nil, err
	}
	res.Design = design.InexactFloat64()
	res.Value = total.Add(design).InexactFloat64()

	if fetched {
		if w, err := weeks(); err == nil {
			res.Weeks = &w
		}
	}

	return res, nil
}

// price computes the value of one priced cell row. owner is the root category
// that decides BASE-ness and scaling; target is owner itself or one of its
// subcategories.
func (s *Service) price(ctx context.Context, p *pricing, owner, target *domain.Category, tier domain.Tier, weeks func() (float64, error)) (decimal.Decimal, error) {
	if owner.IsBase() {
		cell, ok := p.cells[cellRef{category: target.ID}]
		if !ok {
			logger.Warnf(ctx, "no BASE price for category %q", target.Name)
			return decimal.Zero, nil
		}

		rule := s.rules[ruleKey(owner.Name)]
		var w float64
		if rule.Scale == ScalePerWeek {
			var err error
			if w, err = weeks(); err != nil {
				return decimal.Zero, err
			}
		}
		return decimal.NewFromFloat(cell.Tier(tier)).Mul(rule.factor(p.area, w)), nil
	}

	sum := decimal.Zero
	for _, ws := range p.workspaces {
		cell, ok := p.cells[cellRef{module: ws.module.ID, category: target.ID}]
		if !ok {
			logger.Warnf(ctx, "no price for category %q in module %q", target.Name, ws.module.Name)
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(cell.Tier(tier)).Mul(decimal.NewFromFloat(ws.quantity)))
	}
	return sum, nil
}

func (s *Service) designSurcharge(ctx context.Context, p *pricing) (decimal.Decimal, error) {
	design, err := s.store.GetPriceDesign(ctx, p.country.ID)
	if errors.Is(err, constants.ErrDBNotFound) {
		logger.Warnf(ctx, "no design prices for %s", p.country.Name)
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("store.GetPriceDesign: %w", err)
	}
	return decimal.NewFromFloat(design.Surcharge(p.area)), nil
}
