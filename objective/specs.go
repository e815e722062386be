package objective

import "math"

// radiusTransition computes r' = 1 - (1 - delta*r) * exp(-s).
func radiusTransition(v *Bundle) float64 {
	return 1 - (1-v.M.Delta*v.R)*math.Exp(-v.S)
}

// ExponentialUtility computes u = r'(1 - exp(-q)).
func ExponentialUtility(v *Bundle) float64 {
	return radiusTransition(v) * (1 - math.Exp(-v.Q))
}

// ExponentialCost computes c = (exp(alpha*s) - 1)(1 - gamma*r').
func ExponentialCost(v *Bundle) float64 {
	return (math.Exp(v.M.Alpha*v.S) - 1) * (1 - v.M.Gamma*radiusTransition(v))
}

// ExponentialRadiusTransition exposes r' = 1 - (1 - delta*r)*exp(-s) as a Part.
func ExponentialRadiusTransition(v *Bundle) float64 {
	return radiusTransition(v)
}

// ExponentialWealthTransition computes x' = R*(x - r'*q).
func ExponentialWealthTransition(v *Bundle) float64 {
	return v.M.R * (v.X - radiusTransition(v)*v.Q)
}

// ExponentialParts returns the reference exponential-specification parts
// described in spec.md §4.D, labeled with their source-text definitions in
// the same form the original C macros stringify to.
func ExponentialParts() Parts {
	return Parts{
		Util: Part{Fn: ExponentialUtility, Str: "radt*(1-exp(-q))"},
		Cost: Part{Fn: ExponentialCost, Str: "(exp(alpha*s)-1)*(1-gamma*radt)"},
		Radt: Part{Fn: ExponentialRadiusTransition, Str: "1-(1-delta*r)*exp(-s)"},
		Wltt: Part{Fn: ExponentialWealthTransition, Str: "R*(x-radt*q)"},
	}
}
