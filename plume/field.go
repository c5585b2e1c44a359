package plume

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/olfaction/env"
)

// Field is a dense 3D array of mean hit values with one entry per grid cell.
// Values are non-negative or +Inf. A Field is read-only once built.
type Field struct {
	shape env.Index
	data  []float64 // x slowest, z fastest
}

// NewField returns a zero field with the given shape.
func NewField(shape env.Index) *Field {
	return &Field{
		shape: shape,
		data:  make([]float64, shape[0]*shape[1]*shape[2]),
	}
}

// fill evaluates fn at every cell center.
func (f *Field) fill(e *env.Environment3d, fn func(x, y, z float64) float64) {
	xs, ys, zs := e.Centers(env.AxisX), e.Centers(env.AxisY), e.Centers(env.AxisZ)
	i := 0
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				f.data[i] = fn(x, y, z)
				i++
			}
		}
	}
}

func (f *Field) offset(idx env.Index) int {
	return (idx[0]*f.shape[1]+idx[1])*f.shape[2] + idx[2]
}

// Shape returns the cell count per axis.
func (f *Field) Shape() env.Index { return f.shape }

// At returns the value at idx. The index must be in bounds.
func (f *Field) At(idx env.Index) float64 { return f.data[f.offset(idx)] }

// Data exposes the backing slice. Callers must not modify it.
func (f *Field) Data() []float64 { return f.data }

// XY returns the x-y cross section at z index zi as an nx-by-ny matrix.
func (f *Field) XY(zi int) (*mat.Dense, error) {
	if zi < 0 || zi >= f.shape[2] {
		return nil, fmt.Errorf("%w: z index %d", ErrIndexOutOfBounds, zi)
	}
	m := mat.NewDense(f.shape[0], f.shape[1], nil)
	for xi := 0; xi < f.shape[0]; xi++ {
		for yi := 0; yi < f.shape[1]; yi++ {
			m.Set(xi, yi, f.At(env.Index{xi, yi, zi}))
		}
	}
	return m, nil
}

// XZ returns the x-z cross section at y index yi as an nx-by-nz matrix.
func (f *Field) XZ(yi int) (*mat.Dense, error) {
	if yi < 0 || yi >= f.shape[1] {
		return nil, fmt.Errorf("%w: y index %d", ErrIndexOutOfBounds, yi)
	}
	m := mat.NewDense(f.shape[0], f.shape[2], nil)
	for xi := 0; xi < f.shape[0]; xi++ {
		for zi := 0; zi < f.shape[2]; zi++ {
			m.Set(xi, zi, f.At(env.Index{xi, yi, zi}))
		}
	}
	return m, nil
}

// finite returns the finite values of the field.
func (f *Field) finite() []float64 {
	out := make([]float64, 0, len(f.data))
	for _, v := range f.data {
		if !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Max returns the largest finite value, or 0 if there is none.
func (f *Field) Max() float64 {
	vals := f.finite()
	if len(vals) == 0 {
		return 0
	}
	return floats.Max(vals)
}

// Sum returns the sum of finite values.
func (f *Field) Sum() float64 {
	return floats.Sum(f.finite())
}

// InfCount returns the number of singular (+Inf) cells.
func (f *Field) InfCount() int {
	return len(f.data) - len(f.finite())
}
