package model

import (
	"fmt"
	"time"

	"radsolve/grid"
	"radsolve/pmap"
)

// Solution holds the discretized state/control grids, value and policy
// tables, numerical method parameters and runtime iteration state
// (component C).
type Solution struct {
	Xg *grid.Grid
	Rg *grid.Grid
	Qg *grid.Grid
	Sg *grid.Grid

	V0    [][]float64
	V1    [][]float64
	QPol  [][]float64
	SPol  [][]float64

	Maxit int
	Tol   float64
	Qadp  float64
	Sadp  float64

	Acc  float64
	It   int
	Xbeg time.Time
	Xend time.Time
}

// SolutionInit parses the grids and numeric method parameters from pm and
// allocates the value/policy tables, all dimensioned Xg.N x Rg.N. Acc is
// initialized to Tol+1 so the fixed-point loop is entered at least once.
func SolutionInit(pm *pmap.Map) (*Solution, error) {
	s := &Solution{}

	if v, ok, err := pm.FindInt("maxit"); err != nil {
		return nil, err
	} else if ok {
		s.Maxit = v
	}
	if v, ok, err := pm.FindFloat("tol"); err != nil {
		return nil, err
	} else if ok {
		s.Tol = v
	}
	if v, ok, err := pm.FindFloat("qadp"); err != nil {
		return nil, err
	} else if ok {
		// qadp is a float throughout, never truncated to int, per the
		// REDESIGN FLAGS note on the source's int/float mismatch.
		s.Qadp = v
	}
	if v, ok, err := pm.FindFloat("sadp"); err != nil {
		return nil, err
	} else if ok {
		s.Sadp = v
	}

	var err error
	if s.Xg, err = gridFromParam(pm, "xg"); err != nil {
		return nil, err
	}
	if s.Rg, err = gridFromParam(pm, "rg"); err != nil {
		return nil, err
	}
	if s.Qg, err = gridFromParam(pm, "qg"); err != nil {
		return nil, err
	}
	if s.Sg, err = gridFromParam(pm, "sg"); err != nil {
		return nil, err
	}

	s.allocTables()
	s.Acc = s.Tol + 1
	s.It = 0

	return s, nil
}

func gridFromParam(pm *pmap.Map, key string) (*grid.Grid, error) {
	v, ok := pm.Find(key)
	if !ok {
		return nil, fmt.Errorf("model: missing required grid key %q", key)
	}
	g, err := grid.InitFromString(v)
	if err != nil {
		return nil, fmt.Errorf("model: grid %q: %w", key, err)
	}
	return g, nil
}

func (s *Solution) allocTables() {
	s.V0 = newTable(s.Xg.N, s.Rg.N)
	s.V1 = newTable(s.Xg.N, s.Rg.N)
	s.QPol = newTable(s.Xg.N, s.Rg.N)
	s.SPol = newTable(s.Xg.N, s.Rg.N)
}

func newTable(d1, d2 int) [][]float64 {
	t := make([][]float64, d1)
	for i := range t {
		t[i] = make([]float64, d2)
	}
	return t
}

// SwapValueTables exchanges V0 and V1 by swapping their row slices. Called
// by the coordinator after every worker has published, and once more after
// the fixed-point loop exits if It is odd, so that the accepted answer
// always ends up in V1.
func (s *Solution) SwapValueTables() {
	s.V0, s.V1 = s.V1, s.V0
}
