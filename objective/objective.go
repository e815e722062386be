// Package objective evaluates the Bellman integrand at a single state under
// a pair of controls (component D), using four pluggable function parts
// (component-wise utility, cost, radius transition, wealth transition).
package objective

// Params holds the immutable scalar model parameters a Part callable may
// need. It is deliberately a plain value (not a pointer into package model)
// so that objective has no dependency on the model package; model embeds
// this type instead.
type Params struct {
	Alpha float64
	Beta  float64
	Delta float64
	Gamma float64
	R     float64
}

// Bundle is the transient per-call objective-variable record: model
// parameters, current state (x, r) and controls (q, s). It is never
// persisted.
type Bundle struct {
	M Params
	X float64
	R float64
	Q float64
	S float64
}

// Fn is the shape of a single objective function part.
type Fn func(v *Bundle) float64

// Part pairs a callable with the source-text label describing it. Only the
// label is persisted; the callable is re-bound from a caller-supplied Parts
// array at load time.
type Part struct {
	Fn  Fn
	Str string
}

// Parts is the positional set of the four pluggable function parts: utility,
// cost, radius transition, wealth transition, in that order.
type Parts struct {
	Util Part
	Cost Part
	Radt Part
	Wltt Part
}

// Outcome is the evaluated (radius', utility, cost, wealth') for a state and
// control pair, used by the worker kernel to build the Bellman candidate.
type Outcome struct {
	RadiusNext float64
	Utility    float64
	Cost       float64
	WealthNext float64
}

// Evaluate computes radius transition, utility, cost and wealth transition
// for the given parts and bundle. Each part is handed the bundle as-is (x,
// r, q, s, m) and is responsible for deriving any intermediate quantity it
// needs (e.g. the reference utility/cost parts independently recompute the
// radius transition from r, exactly as the original macro-based
// specification does by re-expanding the _radt_ macro inline).
func Evaluate(parts Parts, v *Bundle) Outcome {
	return Outcome{
		RadiusNext: parts.Radt.Fn(v),
		Utility:    parts.Util.Fn(v),
		Cost:       parts.Cost.Fn(v),
		WealthNext: parts.Wltt.Fn(v),
	}
}

// Bellman computes u - c + beta*vNext for a single candidate control.
func Bellman(beta, u, c, vNext float64) float64 {
	return u - c + beta*vNext
}
