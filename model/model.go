// Package model holds the immutable model scalars and pluggable objective
// function parts (component C), plus the mutable Solution container: state
// and control grids, value/policy tables and numerical method parameters.
package model

import (
	"radsolve/objective"
	"radsolve/pmap"
)

// Model carries the immutable scalar parameters and the four pluggable
// objective function parts. Parts are rebound from a caller-supplied
// objective.Parts value at load time; they are never themselves persisted,
// only their labels are (via Parts.Util.Str etc).
type Model struct {
	Params objective.Params
	Parts  objective.Parts
}

// Init populates a Model's scalars from a parameter map and binds the given
// parts. If the loaded R is below -1, it is replaced by 1/beta, per
// spec.md §4.C.
func Init(pm *pmap.Map, parts objective.Parts) (*Model, error) {
	m := &Model{Parts: parts}

	if v, ok, err := pm.FindFloat("alpha"); err != nil {
		return nil, err
	} else if ok {
		m.Params.Alpha = v
	}
	if v, ok, err := pm.FindFloat("beta"); err != nil {
		return nil, err
	} else if ok {
		m.Params.Beta = v
	}
	if v, ok, err := pm.FindFloat("delta"); err != nil {
		return nil, err
	} else if ok {
		m.Params.Delta = v
	}
	if v, ok, err := pm.FindFloat("gamma"); err != nil {
		return nil, err
	} else if ok {
		m.Params.Gamma = v
	}
	if v, ok, err := pm.FindFloat("R"); err != nil {
		return nil, err
	} else if ok {
		m.Params.R = v
	}

	if m.Params.R < -1 {
		m.Params.R = 1 / m.Params.Beta
	}

	return m, nil
}
