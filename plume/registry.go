package plume

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/olfaction/config"
	"github.com/pthm-cable/olfaction/env"
)

// Variant names.
const (
	VariantEmpty             = "empty"
	VariantBasic             = "basic"
	VariantCollimated        = "collimated"
	VariantSpreadingGaussian = "spreading_gaussian"
)

// Variants lists every registered variant name.
func Variants() []string {
	return []string{VariantEmpty, VariantBasic, VariantCollimated, VariantSpreadingGaussian}
}

// NewGenerator returns an unconfigured generator for a variant name.
func NewGenerator(name string) (Generator, error) {
	switch name {
	case VariantEmpty:
		return NewEmpty(), nil
	case VariantBasic:
		return NewBasic(nil), nil
	case VariantCollimated:
		return NewCollimated(), nil
	case VariantSpreadingGaussian:
		return NewSpreadingGaussian(), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownVariant, name)
}

// NewFromConfig builds, configures, places and initializes a plume.
func NewFromConfig(e *env.Environment3d, cfg config.PlumeConfig, rng *rand.Rand) (*Plume, error) {
	gen, err := NewGenerator(cfg.Type)
	if err != nil {
		return nil, err
	}
	p, err := New(e, gen, cfg.DT, rng)
	if err != nil {
		return nil, err
	}
	if err := p.SetAuxParams(Params(cfg.Params)); err != nil {
		return nil, err
	}

	if cfg.SourceIsIndex {
		var idx env.Index
		for axis, v := range cfg.Source {
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("%w: source index %v is not integral", ErrInvalidParam, cfg.Source)
			}
			idx[axis] = int(v)
		}
		if err := p.SetSrcIdx(idx); err != nil {
			return nil, err
		}
	} else {
		p.SetSrcPos(env.Point(cfg.Source))
	}

	if err := p.Initialize(); err != nil {
		return nil, err
	}
	return p, nil
}
