package strategy

import (
	"fmt"
	"strings"

	"github.com/arbovm/levenshtein"
)

// Fallback names accepted in configuration
const (
	ZeroFallbackName    = "zero"
	NearestFallbackName = "nearest"
)

// CategoryStrategy decides how a category outside the frozen set is encoded.
// Resolve returns the one-hot position to set, or -1 for all zeros.
type CategoryStrategy interface {
	Resolve(value string, categories []string) int
	Name() string
}

// ZeroFallback encodes every unknown category as an all-zero block
type ZeroFallback struct{}

// NewZeroFallback creates the default unknown-category strategy
func NewZeroFallback() CategoryStrategy {
	return ZeroFallback{}
}

// Resolve always selects the all-zero encoding
func (ZeroFallback) Resolve(string, []string) int {
	return -1
}

// Name returns the strategy name
func (ZeroFallback) Name() string {
	return ZeroFallbackName
}

// NearestFallback maps near-misses such as "near bay" or "NEAR  BAY" onto a
// known category. Anything further than maxDistance edits stays all-zero.
type NearestFallback struct {
	maxDistance int
}

// NewNearestFallback creates a strategy tolerating up to maxDistance edits
func NewNearestFallback(maxDistance int) CategoryStrategy {
	if maxDistance < 0 {
		maxDistance = 0
	}
	return NearestFallback{maxDistance: maxDistance}
}

// Resolve returns the closest category; ties go to the earliest one
func (s NearestFallback) Resolve(value string, categories []string) int {
	normalized := normalize(value)
	if normalized == "" {
		return -1
	}

	best, bestDistance := -1, s.maxDistance+1
	for i, category := range categories {
		candidate := normalize(category)
		if candidate == normalized {
			return i
		}
		if d := levenshtein.Distance(normalized, candidate); d < bestDistance {
			best, bestDistance = i, d
		}
	}
	return best
}

// Name returns the strategy name
func (s NearestFallback) Name() string {
	return NearestFallbackName
}

// New builds a strategy from its configured name
func New(name string, maxDistance int) (CategoryStrategy, error) {
	switch name {
	case "", ZeroFallbackName:
		return NewZeroFallback(), nil
	case NearestFallbackName:
		return NewNearestFallback(maxDistance), nil
	default:
		return nil, fmt.Errorf("unsupported category fallback: %s", name)
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
