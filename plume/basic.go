package plume

import (
	"fmt"

	"github.com/pthm-cable/olfaction/advdiff"
	"github.com/pthm-cable/olfaction/env"
)

// Parameter names accepted by Basic.
const (
	ParamWind        = "w"
	ParamRate        = "r"
	ParamDiffusivity = "d"
	ParamSize        = "a"
	ParamLifetime    = "tau"
)

// DefaultBasicParams are the reference constants: 0.4 m/s wind, 10 particles/s,
// 0.1 m^2/s diffusivity, 2 mm searcher and 1000 s lifetime.
func DefaultBasicParams() advdiff.Params {
	return advdiff.Params{W: 0.4, R: 10, D: 0.1, A: 0.002, Tau: 1000}
}

// Basic is a stationary advection-diffusion plume. Its field holds the mean
// hit number per timestep, dt * rate, so samples draw Poisson(field) directly.
type Basic struct {
	hitRate advdiff.Func
	params  advdiff.Params
	maxHits int

	configured bool
}

// NewBasic returns an unconfigured generator using f, or advdiff.MeanHitRate
// when f is nil.
func NewBasic(f advdiff.Func) *Basic {
	if f == nil {
		f = advdiff.MeanHitRate
	}
	return &Basic{hitRate: f, maxHits: DefaultMaxHitNumber}
}

// Name implements Generator.
func (g *Basic) Name() string { return VariantBasic }

// SetAuxParams sets the physical constants.
func (g *Basic) SetAuxParams(p advdiff.Params) error {
	if err := requireFinite(ParamWind, p.W); err != nil {
		return err
	}
	if p.R < 0 {
		return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidParam, ParamRate, p.R)
	}
	for name, v := range map[string]float64{
		ParamDiffusivity: p.D,
		ParamSize:        p.A,
		ParamLifetime:    p.Tau,
	} {
		if err := requirePositive(name, v); err != nil {
			return err
		}
	}
	g.params = p
	g.configured = true
	return nil
}

// SetMaxHitNumber overrides the binary-detector default.
func (g *Basic) SetMaxHitNumber(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %s must be >= 1, got %d", ErrInvalidParam, ParamMaxHitNumber, n)
	}
	g.maxHits = n
	return nil
}

// Configure implements Generator. w, r, d, a and tau are required;
// max_hit_number is optional.
func (g *Basic) Configure(params Params) error {
	err := params.validate(
		[]string{ParamWind, ParamRate, ParamDiffusivity, ParamSize, ParamLifetime},
		ParamMaxHitNumber,
	)
	if err != nil {
		return err
	}
	maxHits, err := params.hitCount(DefaultMaxHitNumber)
	if err != nil {
		return err
	}
	if err := g.SetAuxParams(advdiff.Params{
		W:   params[ParamWind],
		R:   params[ParamRate],
		D:   params[ParamDiffusivity],
		A:   params[ParamSize],
		Tau: params[ParamLifetime],
	}); err != nil {
		return err
	}
	g.maxHits = maxHits
	return nil
}

// Params returns the physical constants.
func (g *Basic) Params() advdiff.Params { return g.params }

// Configured implements Generator.
func (g *Basic) Configured() bool { return g.configured }

// NeedsSource implements Generator.
func (g *Basic) NeedsSource() bool { return true }

// Build implements Generator. The dimensionality is 2 when the environment
// has a single z cell.
func (g *Basic) Build(e *env.Environment3d, src env.Point, dt float64) (*Field, error) {
	dim := e.Dim()
	p := g.params
	if dim == 2 && advdiff.CorrelationLength(p.W, p.D, p.Tau) <= p.A {
		return nil, fmt.Errorf("%w: correlation length must exceed searcher size in 2D", ErrInvalidParam)
	}

	f := NewField(e.Shape())
	f.fill(e, func(x, y, z float64) float64 {
		return dt * g.hitRate(x-src[0], y-src[1], z-src[2], p.W, p.R, p.D, p.A, p.Tau, dim)
	})
	return f, nil
}

// MeanScale implements Generator. dt is already folded into the field.
func (g *Basic) MeanScale(float64) float64 { return 1 }

// MaxHits implements Generator.
func (g *Basic) MaxHits() int { return g.maxHits }

// OdorDomain implements Generator.
func (g *Basic) OdorDomain() []int { return hitDomain(g.maxHits) }
