package plume

import (
	"github.com/pthm-cable/olfaction/env"
)

// Empty is an odorless plume: the field is zero everywhere and every sample
// is 0.
type Empty struct {
	configured bool
}

// NewEmpty returns an unconfigured empty generator.
func NewEmpty() *Empty { return &Empty{} }

// Name implements Generator.
func (g *Empty) Name() string { return VariantEmpty }

// SetAuxParams marks the generator configured. It takes no parameters.
func (g *Empty) SetAuxParams() { g.configured = true }

// Configure implements Generator. Any parameter is rejected.
func (g *Empty) Configure(params Params) error {
	if err := params.validate(nil); err != nil {
		return err
	}
	g.SetAuxParams()
	return nil
}

// Configured implements Generator.
func (g *Empty) Configured() bool { return g.configured }

// NeedsSource implements Generator.
func (g *Empty) NeedsSource() bool { return false }

// Build implements Generator.
func (g *Empty) Build(e *env.Environment3d, _ env.Point, _ float64) (*Field, error) {
	return NewField(e.Shape()), nil
}

// MeanScale implements Generator.
func (g *Empty) MeanScale(float64) float64 { return 0 }

// MaxHits implements Generator.
func (g *Empty) MaxHits() int { return 0 }

// OdorDomain implements Generator.
func (g *Empty) OdorDomain() []int { return []int{0} }
