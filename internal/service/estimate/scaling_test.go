package estimate

import (
	"errors"
	"testing"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		in      string
		want    Rule
		wantErr bool
	}{
		{in: "", want: Rule{Scale: ScaleFlat}},
		{in: "flat", want: Rule{Scale: ScaleFlat}},
		{in: "weeks", want: Rule{Scale: ScalePerWeek}},
		{in: " M2 ", want: Rule{Scale: ScalePerArea, Divisor: 1}},
		{in: "m2/100", want: Rule{Scale: ScalePerArea, Divisor: 100}},
		{in: "m2/2.5", want: Rule{Scale: ScalePerArea, Divisor: 2.5}},
		{in: "m2/0", wantErr: true},
		{in: "m2/abc", wantErr: true},
		{in: "weeks/2", wantErr: true},
		{in: "days", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRule(tt.in)
			if tt.wantErr {
				if !errors.Is(err, constants.ErrInvalidInput) {
					t.Fatalf("expected invalid input, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules(map[string]string{"Gastos Generales": "m2/100", "supervision": "weeks"})
	if err != nil {
		t.Fatal(err)
	}
	if got := rules["gastos generales"]; got.String() != "m2/100" {
		t.Errorf("unexpected rule %v", got)
	}
	if got := rules["supervision"]; got.Scale != ScalePerWeek {
		t.Errorf("unexpected rule %v", got)
	}

	if _, err = ParseRules(map[string]string{"x": "hourly"}); err == nil {
		t.Error("expected an error for an unknown rule")
	}
}

func TestRuleFactor(t *testing.T) {
	if f := (Rule{Scale: ScalePerArea, Divisor: 100}).factor(250, 0); f.String() != "2.5" {
		t.Errorf("expected 2.5, got %s", f)
	}
	if f := (Rule{Scale: ScalePerWeek}).factor(250, 8); f.String() != "8" {
		t.Errorf("expected 8, got %s", f)
	}
	if f := (Rule{}).factor(250, 8); f.String() != "1" {
		t.Errorf("expected 1, got %s", f)
	}
}
