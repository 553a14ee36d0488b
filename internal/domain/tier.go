package domain

import (
	"fmt"
	"strings"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// ParseTier accepts low, medium (or its alias normal) and high.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return TierLow, nil
	case "medium", "normal":
		return TierMedium, nil
	case "high":
		return TierHigh, nil
	}
	return "", fmt.Errorf("%w: unknown response tier %q", constants.ErrInvalidInput, s)
}
