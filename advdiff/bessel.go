package advdiff

import "math"

// BesselK0 returns the modified Bessel function of the second kind, order
// zero, using the polynomial approximations of Abramowitz and Stegun (9.8.1,
// 9.8.5, 9.8.6). Absolute error is below 1e-7 for x > 0.
// K0(0) is +Inf and K0 of a negative argument is NaN.
func BesselK0(x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return math.NaN()
	case x == 0:
		return math.Inf(1)
	case x <= 2:
		y := x * x / 4
		return -math.Log(x/2)*besselI0(x) +
			(-0.57721566 + y*(0.42278420+y*(0.23069756+y*(0.3488590e-1+
				y*(0.262698e-2+y*(0.10750e-3+y*0.74e-5))))))
	default:
		return math.Exp(-x) * besselK0Scaled(x)
	}
}

// BesselK0Scaled returns K0(x)*exp(x). It stays finite for large x, where
// K0 itself underflows to zero.
func BesselK0Scaled(x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return math.NaN()
	case x == 0:
		return math.Inf(1)
	case x <= 2:
		return BesselK0(x) * math.Exp(x)
	}
	return besselK0Scaled(x)
}

// besselK0Scaled is A&S 9.8.6 for x > 2.
func besselK0Scaled(x float64) float64 {
	y := 2 / x
	return 1 / math.Sqrt(x) *
		(1.25331414 + y*(-0.7832358e-1+y*(0.2189568e-1+y*(-0.1062446e-1+
			y*(0.587872e-2+y*(-0.251540e-2+y*0.53208e-3))))))
}

// besselI0 is A&S 9.8.1, valid for |x| <= 3.75.
func besselI0(x float64) float64 {
	y := (x / 3.75) * (x / 3.75)
	return 1 + y*(3.5156229+y*(3.0899424+y*(1.2067492+
		y*(0.2659732+y*(0.360768e-1+y*0.45813e-2)))))
}
