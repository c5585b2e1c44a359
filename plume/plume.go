// Package plume builds static odor concentration fields over an
// env.Environment3d and draws stochastic hit counts from them.
//
// A Plume goes through four states: constructed (Unconfigured), parameters set
// (Configured), source placed (SourcePlaced) and field built (Initialized).
// The field generator is pluggable; see Empty, Basic, Collimated and
// SpreadingGaussian.
package plume

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/olfaction/env"
)

// State is the lifecycle stage of a Plume.
type State uint8

const (
	StateUnconfigured State = iota
	StateConfigured
	StateSourcePlaced
	StateInitialized
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateSourcePlaced:
		return "source_placed"
	case StateInitialized:
		return "initialized"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Generator builds the concentration field of one plume variant.
type Generator interface {
	// Name identifies the variant in configs and logs.
	Name() string
	// Configure sets parameters from a flat name->value map.
	Configure(params Params) error
	// Configured reports whether parameters have been set.
	Configured() bool
	// NeedsSource reports whether Build reads the source position.
	NeedsSource() bool
	// Build evaluates the field over the whole grid.
	Build(e *env.Environment3d, src env.Point, dt float64) (*Field, error)
	// MeanScale converts a field value into a Poisson mean for one timestep.
	MeanScale(dt float64) float64
	// MaxHits caps the sampled hit count.
	MaxHits() int
	// OdorDomain lists the finite values Sample can return.
	OdorDomain() []int
}

// Clock counts timesteps and elapsed simulated time.
type Clock struct {
	Timestep int
	Elapsed  float64
}

// Plume binds a Generator to an environment, a timestep and a source.
//
// The field and environment are read-only after Initialize and may be shared
// across goroutines via Clone. The clock and RNG are per instance.
type Plume struct {
	env *env.Environment3d
	gen Generator
	dt  float64
	rng *rand.Rand

	clock Clock

	srcPos    env.Point
	srcIdx    env.Index
	hasSource bool

	field  *Field
	policy samplingPolicy
}

// samplingPolicy is the generator's sampling behavior captured when the field
// is built, so a built plume and its clones never read the generator again.
type samplingPolicy struct {
	scale   float64
	maxHits int
	domain  []int
}

// New creates an unconfigured plume. A nil rng is replaced by a fixed-seed
// generator so sampling stays reproducible.
func New(e *env.Environment3d, gen Generator, dt float64, rng *rand.Rand) (*Plume, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil environment", ErrInvalidParam)
	}
	if gen == nil {
		return nil, fmt.Errorf("%w: nil generator", ErrInvalidParam)
	}
	if err := requirePositive("dt", dt); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &Plume{env: e, gen: gen, dt: dt, rng: rng}, nil
}

// Name returns the generator's variant name.
func (p *Plume) Name() string { return p.gen.Name() }

// Generator returns the field generator.
func (p *Plume) Generator() Generator { return p.gen }

// Env returns the environment the plume is bound to.
func (p *Plume) Env() *env.Environment3d { return p.env }

// Dt returns the timestep.
func (p *Plume) Dt() float64 { return p.dt }

// Clock returns the current clock.
func (p *Plume) Clock() Clock { return p.clock }

// State returns the lifecycle stage.
func (p *Plume) State() State {
	switch {
	case p.field != nil:
		return StateInitialized
	case p.gen.Configured() && p.hasSource:
		return StateSourcePlaced
	case p.gen.Configured():
		return StateConfigured
	}
	return StateUnconfigured
}

// SetAuxParams configures the generator. Any previously built field is
// discarded.
func (p *Plume) SetAuxParams(params Params) error {
	if err := p.gen.Configure(params); err != nil {
		return fmt.Errorf("%s: %w", p.gen.Name(), err)
	}
	p.field = nil
	return nil
}

// SetSrcPos places the source at the center of the cell containing pos.
func (p *Plume) SetSrcPos(pos env.Point) {
	p.placeSource(p.env.IdxFromPos(pos))
}

// SetSrcIdx places the source at a pre-resolved cell index.
func (p *Plume) SetSrcIdx(idx env.Index) error {
	if p.env.IdxOutOfBounds(idx) {
		return fmt.Errorf("%w: source %v", ErrIndexOutOfBounds, idx)
	}
	p.placeSource(idx)
	return nil
}

func (p *Plume) placeSource(idx env.Index) {
	p.srcIdx = idx
	p.srcPos = p.env.PosFromIdx(idx)
	p.hasSource = true
	p.field = nil
}

// SourcePosition returns the snapped source position and whether it is set.
func (p *Plume) SourcePosition() (env.Point, bool) { return p.srcPos, p.hasSource }

// SourceIndex returns the source cell and whether it is set.
func (p *Plume) SourceIndex() (env.Index, bool) { return p.srcIdx, p.hasSource }

// Initialize builds the field over the whole grid.
func (p *Plume) Initialize() error {
	if !p.gen.Configured() {
		return fmt.Errorf("%s: %w", p.gen.Name(), ErrNotConfigured)
	}
	if p.gen.NeedsSource() && !p.hasSource {
		return fmt.Errorf("%s: %w", p.gen.Name(), ErrSourceNotSet)
	}

	field, err := p.gen.Build(p.env, p.srcPos, p.dt)
	if err != nil {
		return fmt.Errorf("%s: building field: %w", p.gen.Name(), err)
	}
	p.field = field
	p.policy = samplingPolicy{
		scale:   p.gen.MeanScale(p.dt),
		maxHits: p.gen.MaxHits(),
		domain:  slices.Clone(p.gen.OdorDomain()),
	}

	slog.Debug("plume initialized",
		"variant", p.gen.Name(),
		"shape", p.env.Shape(),
		"source", p.srcIdx,
		"max", field.Max(),
		"singular_cells", field.InfCount(),
	)
	return nil
}

// Field returns the built field, or nil before Initialize.
func (p *Plume) Field() *Field { return p.field }

// OdorDomain lists the finite values Sample can return.
func (p *Plume) OdorDomain() []int {
	if p.field != nil {
		return slices.Clone(p.policy.domain)
	}
	return p.gen.OdorDomain()
}

// MaxHits returns the cap applied to sampled hit counts.
func (p *Plume) MaxHits() int {
	if p.field != nil {
		return p.policy.maxHits
	}
	return p.gen.MaxHits()
}

// Sample draws a hit count at idx with the plume's own RNG.
// The result is a whole number in [0, MaxHits] or +Inf at a singular cell.
func (p *Plume) Sample(idx env.Index) (float64, error) {
	return p.SampleWith(p.rng, idx)
}

// SampleWith is Sample with a caller-owned RNG. It does not touch plume state
// and is safe for concurrent use when each goroutine has its own rng.
func (p *Plume) SampleWith(rng *rand.Rand, idx env.Index) (float64, error) {
	if p.field == nil {
		return 0, ErrNotInitialized
	}
	if p.env.IdxOutOfBounds(idx) {
		return 0, fmt.Errorf("%w: %v (shape %v)", ErrIndexOutOfBounds, idx, p.env.Shape())
	}
	mean := p.field.At(idx) * p.policy.scale
	return SamplePoisson(rng, mean, p.policy.maxHits), nil
}

// MeanAt returns the Poisson mean used by Sample at idx.
func (p *Plume) MeanAt(idx env.Index) (float64, error) {
	if p.field == nil {
		return 0, ErrNotInitialized
	}
	if p.env.IdxOutOfBounds(idx) {
		return 0, fmt.Errorf("%w: %v", ErrIndexOutOfBounds, idx)
	}
	return p.field.At(idx) * p.policy.scale, nil
}

// Update advances the clock by one timestep. The field is static.
func (p *Plume) Update() {
	p.clock.Timestep++
	p.clock.Elapsed += p.dt
}

// Reset zeroes the clock. Parameters, source and field are kept.
func (p *Plume) Reset() {
	p.clock = Clock{}
}

// ConcXY returns the x-y cross section at the environment's center z index.
func (p *Plume) ConcXY() (*mat.Dense, error) {
	if p.field == nil {
		return nil, ErrNotInitialized
	}
	return p.field.XY(p.env.CenterIndex()[env.AxisZ])
}

// ConcXZ returns the x-z cross section at the environment's center y index.
func (p *Plume) ConcXZ() (*mat.Dense, error) {
	if p.field == nil {
		return nil, ErrNotInitialized
	}
	return p.field.XZ(p.env.CenterIndex()[env.AxisY])
}

// Clone returns a plume sharing the environment, source and field with a fresh
// clock and its own rng. A nil rng is seeded from the original's.
// A clone of an initialized plume keeps the field and sampling policy it was
// cloned with; reconfiguring the original afterwards does not affect it.
// A clone taken before Initialize must not be used while the original is
// being reconfigured, since both share the generator.
func (p *Plume) Clone(rng *rand.Rand) *Plume {
	if rng == nil {
		rng = rand.New(rand.NewPCG(p.rng.Uint64(), p.rng.Uint64()))
	}
	c := *p
	c.clock = Clock{}
	c.rng = rng
	return &c
}
