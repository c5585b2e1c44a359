// Package env provides the bounded, discretized 3D volume that plumes and
// searchers live in: bin edges, bin centers and the mapping between continuous
// positions and integer cell indices.
package env

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrDomain is returned when bin edges cannot describe a grid.
var ErrDomain = errors.New("env: invalid bin edges")

// Axis identifiers.
const (
	AxisX = iota
	AxisY
	AxisZ
	NumAxes
)

// Index is an integer cell index (xi, yi, zi).
type Index [NumAxes]int

// Point is a continuous position (x, y, z).
type Point [NumAxes]float64

// Environment3d is an immutable 3D grid. Safe for concurrent reads.
type Environment3d struct {
	bins    [NumAxes][]float64
	centers [NumAxes][]float64
	shape   [NumAxes]int

	rng   [NumAxes]float64 // centers[-1] - centers[0]
	step  [NumAxes]float64 // bins[1] - bins[0]
	slope [NumAxes]float64 // (n-1)/range, 0 for a single-cell axis
	icept [NumAxes]float64 // centers[0]

	center Index
}

// New builds an environment from bin edges along x, y and z.
// Each edge sequence must hold at least two strictly increasing finite values.
// The slices are copied.
func New(xbins, ybins, zbins []float64) (*Environment3d, error) {
	e := &Environment3d{}
	for axis, b := range [NumAxes][]float64{xbins, ybins, zbins} {
		if err := validateBins(b); err != nil {
			return nil, fmt.Errorf("axis %d: %w", axis, err)
		}

		bins := make([]float64, len(b))
		copy(bins, b)
		n := len(bins) - 1

		centers := make([]float64, n)
		for i := range centers {
			centers[i] = 0.5 * (bins[i] + bins[i+1])
		}

		e.bins[axis] = bins
		e.centers[axis] = centers
		e.shape[axis] = n
		e.rng[axis] = centers[n-1] - centers[0]
		e.step[axis] = bins[1] - bins[0]
		e.icept[axis] = centers[0]
		if n > 1 {
			e.slope[axis] = float64(n-1) / e.rng[axis]
		}
		e.center[axis] = n / 2
	}
	return e, nil
}

// MustNew is like New but panics on error.
func MustNew(xbins, ybins, zbins []float64) *Environment3d {
	e, err := New(xbins, ybins, zbins)
	if err != nil {
		panic(err)
	}
	return e
}

// Linspace returns n evenly spaced values over [start, stop].
func Linspace(start, stop float64, n int) []float64 {
	if n < 2 {
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, stop)
}

func validateBins(b []float64) error {
	if len(b) < 2 {
		return fmt.Errorf("%w: need at least 2 edges, got %d", ErrDomain, len(b))
	}
	for i, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: edge %d is %v", ErrDomain, i, v)
		}
		if i > 0 && v <= b[i-1] {
			return fmt.Errorf("%w: edges not strictly increasing at %d (%g <= %g)", ErrDomain, i, v, b[i-1])
		}
	}
	return nil
}

// Shape returns the cell count per axis.
func (e *Environment3d) Shape() Index { return e.shape }

// Size returns the total number of cells.
func (e *Environment3d) Size() int { return e.shape[0] * e.shape[1] * e.shape[2] }

// Bins returns the bin edges along an axis. Callers must not modify the slice.
func (e *Environment3d) Bins(axis int) []float64 { return e.bins[axis] }

// Centers returns the bin centers along an axis. Callers must not modify the slice.
func (e *Environment3d) Centers(axis int) []float64 { return e.centers[axis] }

// Range returns the distance between the first and last center along an axis.
func (e *Environment3d) Range(axis int) float64 { return e.rng[axis] }

// Step returns the width of the first bin along an axis.
func (e *Environment3d) Step(axis int) float64 { return e.step[axis] }

// CenterIndex returns floor(n/2) per axis.
func (e *Environment3d) CenterIndex() Index { return e.center }

// Dim returns 2 when the z axis has a single cell, otherwise 3.
func (e *Environment3d) Dim() int {
	if e.shape[AxisZ] == 1 {
		return 2
	}
	return 3
}

// Bounds returns the outer edges of the volume.
func (e *Environment3d) Bounds() (lo, hi Point) {
	for axis := range NumAxes {
		lo[axis] = e.bins[axis][0]
		hi[axis] = e.bins[axis][e.shape[axis]]
	}
	return lo, hi
}

// PosFromIdx returns the center of a cell. The index must be in bounds.
func (e *Environment3d) PosFromIdx(idx Index) Point {
	return Point{
		e.centers[AxisX][idx[AxisX]],
		e.centers[AxisY][idx[AxisY]],
		e.centers[AxisZ][idx[AxisZ]],
	}
}

// IdxFromPos returns the index of the cell nearest to pos.
// Positions outside the volume saturate to the boundary cell.
func (e *Environment3d) IdxFromPos(pos Point) Index {
	var idx Index
	for axis := range NumAxes {
		// Half-way values round to even, matching the reference grids.
		f := math.RoundToEven((pos[axis] - e.icept[axis]) * e.slope[axis])
		idx[axis] = clampIndex(f, e.shape[axis])
	}
	return idx
}

// IdxOutOfBounds reports whether any component of idx falls outside the grid.
func (e *Environment3d) IdxOutOfBounds(idx Index) bool {
	for axis := range NumAxes {
		if idx[axis] < 0 || idx[axis] >= e.shape[axis] {
			return true
		}
	}
	return false
}

// Flat returns the row-major (x slowest, z fastest) offset of idx.
func (e *Environment3d) Flat(idx Index) int {
	return (idx[AxisX]*e.shape[AxisY]+idx[AxisY])*e.shape[AxisZ] + idx[AxisZ]
}

// Unflat is the inverse of Flat.
func (e *Environment3d) Unflat(i int) Index {
	nz := e.shape[AxisZ]
	ny := e.shape[AxisY]
	return Index{i / (ny * nz), (i / nz) % ny, i % nz}
}

// Clamp limits pos to the outer edges of the volume.
func (e *Environment3d) Clamp(pos Point) Point {
	lo, hi := e.Bounds()
	for axis := range NumAxes {
		pos[axis] = math.Max(lo[axis], math.Min(hi[axis], pos[axis]))
	}
	return pos
}

// clampIndex converts f to a cell index in [0, n). The clamp happens in float
// space since int conversion of out-of-range floats is undefined. NaN maps to 0.
func clampIndex(f float64, n int) int {
	switch {
	case !(f > 0):
		return 0
	case f >= float64(n-1):
		return n - 1
	}
	return int(f)
}
