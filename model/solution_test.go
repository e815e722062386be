package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"radsolve/pmap"
)

func paramMap() *pmap.Map {
	pm := pmap.New()
	pm.Add("maxit", "500")
	pm.Add("tol", "0.0001")
	pm.Add("qadp", "10")
	pm.Add("sadp", "0.05")
	pm.Add("xg", "4, 0, 10, 1")
	pm.Add("rg", "3, 0, 1, 1")
	pm.Add("qg", "5, 0, 2, 1")
	pm.Add("sg", "5, 0, 1, 1")
	return pm
}

func TestSolutionInit(t *testing.T) {
	Convey("Given a complete parameter map", t, func() {
		s, err := SolutionInit(paramMap())
		So(err, ShouldBeNil)

		Convey("Numeric method parameters are loaded verbatim", func() {
			So(s.Maxit, ShouldEqual, 500)
			So(s.Tol, ShouldAlmostEqual, 0.0001, 1e-12)
			So(s.Qadp, ShouldAlmostEqual, 10.0, 1e-12)
			So(s.Sadp, ShouldAlmostEqual, 0.05, 1e-12)
		})

		Convey("Grids are parsed to the requested sizes", func() {
			So(s.Xg.N, ShouldEqual, 4)
			So(s.Rg.N, ShouldEqual, 3)
			So(s.Qg.N, ShouldEqual, 5)
			So(s.Sg.N, ShouldEqual, 5)
		})

		Convey("Value and policy tables are allocated Xg.N x Rg.N and zeroed", func() {
			So(len(s.V0), ShouldEqual, 4)
			So(len(s.V0[0]), ShouldEqual, 3)
			So(len(s.V1), ShouldEqual, 4)
			So(len(s.QPol), ShouldEqual, 4)
			So(len(s.SPol), ShouldEqual, 4)
			for i := range s.V0 {
				for j := range s.V0[i] {
					So(s.V0[i][j], ShouldEqual, 0)
				}
			}
		})

		Convey("Acc starts at tol+1 so the fixed-point loop runs at least once", func() {
			So(s.Acc, ShouldAlmostEqual, s.Tol+1, 1e-12)
		})

		Convey("It starts at 0", func() {
			So(s.It, ShouldEqual, 0)
		})
	})

	Convey("Given a parameter map missing a required grid", t, func() {
		pm := paramMap()
		// rebuild without "sg"
		pm2 := pmap.New()
		for i := 0; i < pm.Len(); i++ {
			p := pm.At(i)
			if p.Key != "sg" {
				pm2.Add(p.Key, p.Value)
			}
		}
		_, err := SolutionInit(pm2)
		Convey("SolutionInit fails", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a qadp value with a fractional component", t, func() {
		base := paramMap()
		pm := pmap.New()
		for i := 0; i < base.Len(); i++ {
			p := base.At(i)
			if p.Key == "qadp" {
				continue
			}
			pm.Add(p.Key, p.Value)
		}
		pm.Add("qadp", "10.5")

		s, err := SolutionInit(pm)
		So(err, ShouldBeNil)

		Convey("qadp is parsed as a float, not truncated to int", func() {
			So(s.Qadp, ShouldAlmostEqual, 10.5, 1e-12)
		})
	})
}

func TestSwapValueTables(t *testing.T) {
	Convey("Given an initialized solution with distinct V0/V1 contents", t, func() {
		s, err := SolutionInit(paramMap())
		So(err, ShouldBeNil)
		s.V0[0][0] = 1.0
		s.V1[0][0] = 2.0

		Convey("Swapping exchanges the two tables", func() {
			s.SwapValueTables()
			So(s.V0[0][0], ShouldEqual, 2.0)
			So(s.V1[0][0], ShouldEqual, 1.0)
		})
	})
}
