package plume

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Params is a flat set of named numeric parameters.
type Params map[string]float64

// validate checks that p holds every required name and nothing outside
// required and optional.
func (p Params) validate(required []string, optional ...string) error {
	for _, name := range slices.Sorted(maps.Keys(p)) {
		if !slices.Contains(required, name) && !slices.Contains(optional, name) {
			return fmt.Errorf("%w %q", ErrUnknownParam, name)
		}
	}
	for _, name := range required {
		if _, ok := p[name]; !ok {
			return fmt.Errorf("%w %q", ErrMissingParam, name)
		}
	}
	return nil
}

// hitCount reads an optional max_hit_number entry, falling back to def.
func (p Params) hitCount(def int) (int, error) {
	v, ok := p[ParamMaxHitNumber]
	if !ok {
		return def, nil
	}
	return toHitCount(v)
}

func toHitCount(v float64) (int, error) {
	if !(v >= 1 && v <= MaxHitNumberLimit) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s must be a whole number in [1, %d], got %v",
			ErrInvalidParam, ParamMaxHitNumber, MaxHitNumberLimit, v)
	}
	return int(v), nil
}

func requirePositive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be positive and finite, got %v", ErrInvalidParam, name, v)
	}
	return nil
}

func requireFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParam, name, v)
	}
	return nil
}

// Parameter names shared by several variants.
const (
	ParamMaxHitNumber = "max_hit_number"
)

// DefaultMaxHitNumber models a binary detector.
const DefaultMaxHitNumber = 1

// MaxHitNumberLimit bounds max_hit_number; the odor domain holds one entry
// per possible count.
const MaxHitNumberLimit = 1 << 16

// hitDomain returns {0, ..., maxHits}.
func hitDomain(maxHits int) []int {
	d := make([]int, maxHits+1)
	for i := range d {
		d[i] = i
	}
	return d
}

func errNegative(name string, v float64) error {
	return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidParam, name, v)
}
