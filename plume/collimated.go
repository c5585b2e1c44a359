package plume

import (
	"math"

	"github.com/pthm-cable/olfaction/env"
)

// Parameter names accepted by Collimated.
const (
	ParamWidth = "width"
	ParamPeak  = "peak"
)

// Collimated is a stationary plume that does not spread downwind:
// peak * exp(-(dy^2+dz^2) / (2*width)) for x >= source x and zero upwind.
// The field holds a rate; samples draw Poisson(field * dt).
type Collimated struct {
	width   float64
	peak    float64
	maxHits int

	configured bool
}

// NewCollimated returns an unconfigured generator.
func NewCollimated() *Collimated { return &Collimated{maxHits: DefaultMaxHitNumber} }

// Name implements Generator.
func (g *Collimated) Name() string { return VariantCollimated }

// SetAuxParams sets the cross-section width (m^2), peak rate and hit cap.
func (g *Collimated) SetAuxParams(width, peak float64, maxHitNumber int) error {
	if err := requirePositive(ParamWidth, width); err != nil {
		return err
	}
	if err := requireFinite(ParamPeak, peak); err != nil {
		return err
	}
	if peak < 0 {
		return errNegative(ParamPeak, peak)
	}
	maxHits, err := toHitCount(float64(maxHitNumber))
	if err != nil {
		return err
	}
	g.width, g.peak, g.maxHits = width, peak, maxHits
	g.configured = true
	return nil
}

// Configure implements Generator. width, peak and max_hit_number are required.
func (g *Collimated) Configure(params Params) error {
	if err := params.validate([]string{ParamWidth, ParamPeak, ParamMaxHitNumber}); err != nil {
		return err
	}
	maxHits, err := toHitCount(params[ParamMaxHitNumber])
	if err != nil {
		return err
	}
	return g.SetAuxParams(params[ParamWidth], params[ParamPeak], maxHits)
}

// Width returns the configured width.
func (g *Collimated) Width() float64 { return g.width }

// Peak returns the configured peak rate.
func (g *Collimated) Peak() float64 { return g.peak }

// Configured implements Generator.
func (g *Collimated) Configured() bool { return g.configured }

// NeedsSource implements Generator.
func (g *Collimated) NeedsSource() bool { return true }

// Build implements Generator.
func (g *Collimated) Build(e *env.Environment3d, src env.Point, _ float64) (*Field, error) {
	f := NewField(e.Shape())
	f.fill(e, func(x, y, z float64) float64 {
		if x < src[0] {
			return 0
		}
		dy, dz := y-src[1], z-src[2]
		return g.peak * math.Exp(-(dy*dy+dz*dz)/(2*g.width))
	})
	return f, nil
}

// MeanScale implements Generator.
func (g *Collimated) MeanScale(dt float64) float64 { return dt }

// MaxHits implements Generator.
func (g *Collimated) MaxHits() int { return g.maxHits }

// OdorDomain implements Generator.
func (g *Collimated) OdorDomain() []int { return hitDomain(g.maxHits) }
