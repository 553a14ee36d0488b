package estimate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

type Scale int

const (
	ScaleFlat Scale = iota
	ScalePerArea
	ScalePerWeek
)

// Rule says how a BASE category price grows with the project.
type Rule struct {
	Scale   Scale
	Divisor float64
}

// ParseRule reads the "m2/<divisor>", "m2", "weeks" and "flat" forms.
// An empty rule is flat.
func ParseRule(s string) (Rule, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	unit, div, hasDiv := strings.Cut(s, "/")

	switch unit {
	case "", "flat":
		if hasDiv {
			break
		}
		return Rule{Scale: ScaleFlat}, nil
	case "weeks":
		if hasDiv {
			break
		}
		return Rule{Scale: ScalePerWeek}, nil
	case "m2":
		if !hasDiv {
			return Rule{Scale: ScalePerArea, Divisor: 1}, nil
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(div), 64)
		if err != nil || d <= 0 {
			return Rule{}, fmt.Errorf("%w: bad area divisor in scaling rule %q", constants.ErrInvalidInput, s)
		}
		return Rule{Scale: ScalePerArea, Divisor: d}, nil
	}

	return Rule{}, fmt.Errorf("%w: unknown scaling rule %q", constants.ErrInvalidInput, s)
}

// ParseRules turns the configured name -> rule table into rules keyed by
// lowercased category name.
func ParseRules(raw map[string]string) (map[string]Rule, error) {
	rules := make(map[string]Rule, len(raw))
	for name, s := range raw {
		rule, err := ParseRule(s)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		rules[ruleKey(name)] = rule
	}
	return rules, nil
}

func ruleKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r Rule) factor(area, weeks float64) decimal.Decimal {
	switch r.Scale {
	case ScalePerArea:
		return decimal.NewFromFloat(area).Div(decimal.NewFromFloat(r.Divisor))
	case ScalePerWeek:
		return decimal.NewFromFloat(weeks)
	}
	return decimal.NewFromInt(1)
}

func (r Rule) String() string {
	switch r.Scale {
	case ScalePerArea:
		if r.Divisor == 1 {
			return "m2"
		}
		return "m2/" + strconv.FormatFloat(r.Divisor, 'f', -1, 64)
	case ScalePerWeek:
		return "weeks"
	}
	return "flat"
}
