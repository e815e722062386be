package interp

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"radsolve/grid"
)

func TestBilinearExactAtNodes(t *testing.T) {
	Convey("Given a 2x2 table over unit grids", t, func() {
		xg, err := grid.New(2, 0, 1, 1)
		So(err, ShouldBeNil)
		rg, err := grid.New(2, 0, 1, 1)
		So(err, ShouldBeNil)
		table := [][]float64{{0, 1}, {1, 2}}

		Convey("Querying the midpoint returns the average of all four corners", func() {
			v := Bilinear(table, xg, rg, 0, 0, 0.5, 0.5)
			So(v, ShouldAlmostEqual, 1.0, 1e-12)
		})

		Convey("Querying exactly at each grid node reproduces the table value", func() {
			for xi, x := range xg.D {
				for ri, r := range rg.D {
					x1 := xi
					if x1 > 0 {
						x1--
					}
					r1 := ri
					if r1 > 0 {
						r1--
					}
					v := Bilinear(table, xg, rg, x1, r1, x, r)
					So(v, ShouldAlmostEqual, table[xi][ri], 1e-9)
				}
			}
		})
	})
}

func TestBilinearNonUniform(t *testing.T) {
	Convey("Given a non-uniform grid and a linear value surface", t, func() {
		xg, err := grid.New(3, 0, 2, 1.5)
		So(err, ShouldBeNil)
		rg, err := grid.New(3, 0, 3, 0.7)
		So(err, ShouldBeNil)

		table := make([][]float64, xg.N)
		for xi, x := range xg.D {
			table[xi] = make([]float64, rg.N)
			for ri, r := range rg.D {
				table[xi][ri] = 2*x + 3*r // exactly bilinear-representable
			}
		}

		Convey("Interpolating any interior point reproduces the linear surface", func() {
			xp, rp := 0.9, 1.4
			x1 := xg.LowerIndex(xp)
			r1 := rg.LowerIndex(rp)
			v := Bilinear(table, xg, rg, x1, r1, xp, rp)
			So(v, ShouldAlmostEqual, 2*xp+3*rp, 1e-9)
		})
	})
}
