// Package interp implements the bilinear interpolation of a value table at
// an arbitrary continuous (x', r') query (component E).
package interp

import "radsolve/grid"

// Bilinear evaluates table at (xp, rp) using the 2x2 cell anchored at
// (x1, r1): 0 <= x1 < len(xg.D)-1 and 0 <= r1 < len(rg.D)-1 are required;
// the caller obtains x1 and r1 via grid.LowerIndex, which guarantees this
// range, so no bounds clamping happens here.
func Bilinear(table [][]float64, xg, rg *grid.Grid, x1, r1 int, xp, rp float64) float64 {
	x2 := x1 + 1
	r2 := r1 + 1

	R1 := rg.D[r1]
	R2 := rg.D[r2]
	Rd := R2 - R1

	X1 := xg.D[x1]
	X2 := xg.D[x2]
	Xd := X2 - X1

	Y11 := table[x1][r1]
	Y12 := table[x1][r2]
	Y21 := table[x2][r1]
	Y22 := table[x2][r2]

	slope1 := (Y12 - Y11) / Rd
	Y1 := slope1*(rp-R1) + Y11

	slope2 := (Y22 - Y21) / Rd
	Y2 := slope2*(rp-R1) + Y21

	slope := (Y2 - Y1) / Xd
	return slope*(xp-X1) + Y1
}
