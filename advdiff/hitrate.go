// Package advdiff computes the mean rate at which a small searcher is hit by
// particles emitted from a point source and carried by a steady wind with
// isotropic turbulent diffusion and finite particle lifetime.
//
// The wind blows from negative to positive x.
package advdiff

import "math"

// Func is the mean hit-rate contract consumed by the basic plume.
//
//	dx, dy, dz  displacement of the searcher from the source (m)
//	w           wind speed (m/s)
//	r           source emission rate (particles/s)
//	d           diffusivity (m^2/s)
//	a           searcher size (m)
//	tau         particle lifetime (s)
//	dim         2 or 3
//
// The result is non-negative and may be +Inf at zero displacement.
type Func func(dx, dy, dz, w, r, d, a, tau float64, dim int) float64

// Params groups the physical constants of MeanHitRate.
type Params struct {
	W   float64 // wind speed
	R   float64 // emission rate
	D   float64 // diffusivity
	A   float64 // searcher size
	Tau float64 // particle lifetime
}

// CorrelationLength returns lambda = sqrt(d*tau / (1 + w^2*tau/(4d))), the
// length scale over which particles survive before decaying.
func CorrelationLength(w, d, tau float64) float64 {
	return math.Sqrt(d * tau / (1 + w*w*tau/(4*d)))
}

// MeanHitRate implements Func.
//
// In 3D the rate is a*r/|x| * exp(dx*w/(2d)) * exp(-|x|/lambda).
// In 2D it is r/ln(lambda/a) * K0(|x|/lambda) * exp(dx*w/(2d)) and dz is ignored.
func MeanHitRate(dx, dy, dz, w, r, d, a, tau float64, dim int) float64 {
	lambda := CorrelationLength(w, d, tau)

	if dim == 2 {
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			return math.Inf(1)
		}
		x := dist / lambda
		// Scaled K0 keeps the far-field product from becoming 0*Inf.
		return r / math.Log(lambda/a) * BesselK0Scaled(x) * math.Exp(dx*w/(2*d)-x)
	}

	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if dist == 0 {
		return math.Inf(1)
	}
	return a * r / dist * math.Exp(dx*w/(2*d)-dist/lambda)
}

// Eval calls MeanHitRate with p's constants.
func (p Params) Eval(dx, dy, dz float64, dim int) float64 {
	return MeanHitRate(dx, dy, dz, p.W, p.R, p.D, p.A, p.Tau, dim)
}
