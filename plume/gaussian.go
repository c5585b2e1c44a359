package plume

import (
	"math"

	"github.com/pthm-cable/olfaction/env"
)

// Parameter names accepted by SpreadingGaussian.
const (
	ParamMaxConc   = "max_conc"
	ParamThreshold = "threshold"
	ParamYMean     = "ymean"
	ParamZMean     = "zmean"
	ParamYStd      = "ystd"
	ParamZStd      = "zstd"
)

// GaussianParams configures a SpreadingGaussian generator.
type GaussianParams struct {
	MaxConc float64
	// Threshold is a detection threshold for consumers of the field. It does
	// not shape the field.
	Threshold    float64
	YMean, ZMean float64
	YStd, ZStd   float64
}

// SpreadingGaussian is a crosswind Gaussian profile that is constant along x:
// max_conc * exp(-0.5*((y-ymean)/ystd)^2 - 0.5*((z-zmean)/zstd)^2).
// It ignores the plume source. The field is sampled as Poisson(field) with no
// dt scaling.
type SpreadingGaussian struct {
	params  GaussianParams
	maxHits int

	configured bool
}

// NewSpreadingGaussian returns an unconfigured generator.
func NewSpreadingGaussian() *SpreadingGaussian {
	return &SpreadingGaussian{maxHits: DefaultMaxHitNumber}
}

// Name implements Generator.
func (g *SpreadingGaussian) Name() string { return VariantSpreadingGaussian }

// SetParams sets the profile.
func (g *SpreadingGaussian) SetParams(p GaussianParams) error {
	for name, v := range map[string]float64{
		ParamMaxConc:   p.MaxConc,
		ParamThreshold: p.Threshold,
		ParamYMean:     p.YMean,
		ParamZMean:     p.ZMean,
	} {
		if err := requireFinite(name, v); err != nil {
			return err
		}
	}
	if p.MaxConc < 0 {
		return errNegative(ParamMaxConc, p.MaxConc)
	}
	if err := requirePositive(ParamYStd, p.YStd); err != nil {
		return err
	}
	if err := requirePositive(ParamZStd, p.ZStd); err != nil {
		return err
	}
	g.params = p
	g.configured = true
	return nil
}

// Configure implements Generator. The six profile parameters are required;
// max_hit_number is optional.
func (g *SpreadingGaussian) Configure(params Params) error {
	err := params.validate(
		[]string{ParamMaxConc, ParamThreshold, ParamYMean, ParamZMean, ParamYStd, ParamZStd},
		ParamMaxHitNumber,
	)
	if err != nil {
		return err
	}
	maxHits, err := params.hitCount(DefaultMaxHitNumber)
	if err != nil {
		return err
	}
	if err := g.SetParams(GaussianParams{
		MaxConc:   params[ParamMaxConc],
		Threshold: params[ParamThreshold],
		YMean:     params[ParamYMean],
		ZMean:     params[ParamZMean],
		YStd:      params[ParamYStd],
		ZStd:      params[ParamZStd],
	}); err != nil {
		return err
	}
	g.maxHits = maxHits
	return nil
}

// Params returns the profile parameters.
func (g *SpreadingGaussian) Params() GaussianParams { return g.params }

// Threshold returns the downstream detection threshold.
func (g *SpreadingGaussian) Threshold() float64 { return g.params.Threshold }

// Configured implements Generator.
func (g *SpreadingGaussian) Configured() bool { return g.configured }

// NeedsSource implements Generator.
func (g *SpreadingGaussian) NeedsSource() bool { return false }

// Build implements Generator.
func (g *SpreadingGaussian) Build(e *env.Environment3d, _ env.Point, _ float64) (*Field, error) {
	p := g.params
	f := NewField(e.Shape())
	f.fill(e, func(_, y, z float64) float64 {
		ny := (y - p.YMean) / p.YStd
		nz := (z - p.ZMean) / p.ZStd
		return p.MaxConc * math.Exp(-0.5*ny*ny-0.5*nz*nz)
	})
	return f, nil
}

// MeanScale implements Generator.
func (g *SpreadingGaussian) MeanScale(float64) float64 { return 1 }

// MaxHits implements Generator.
func (g *SpreadingGaussian) MaxHits() int { return g.maxHits }

// OdorDomain implements Generator.
func (g *SpreadingGaussian) OdorDomain() []int { return hitDomain(g.maxHits) }
