// Package worker implements the per-partition one-iteration maximization
// kernel: the bootstrap seed and the per-state Bellman maximization over
// the effort and quantity control grids (component G).
package worker

import (
	"math"

	"radsolve/grid"
	"radsolve/interp"
	"radsolve/model"
	"radsolve/objective"
	"radsolve/partition"
)

// Worker holds one partition's scratch state: a private copy of the
// quantity grid (its upper bound is retightened per state), the new-value
// and policy scratch buffers, and the local reductions accumulated over the
// most recent iteration.
type Worker struct {
	ID    int
	Range partition.Range

	model *model.Model
	sol   *model.Solution

	qg *grid.Grid

	V0Buf   []float64
	QPolBuf []float64
	SPolBuf []float64

	Acc float64
	QM  float64
	SM  float64
	VM  float64
}

// New allocates a worker for rng, copying the solution's quantity grid as
// the worker's private, per-state-adjustable copy.
func New(id int, rng partition.Range, m *model.Model, sol *model.Solution) *Worker {
	return &Worker{
		ID:      id,
		Range:   rng,
		model:   m,
		sol:     sol,
		qg:      grid.Copy(sol.Qg),
		V0Buf:   make([]float64, rng.Size),
		QPolBuf: make([]float64, rng.Size),
		SPolBuf: make([]float64, rng.Size),
	}
}

// decode returns the absolute (xi, ri) grid coordinates of local index li.
func (w *Worker) decode(li int) (xi, ri int) {
	return partition.Index(w.Range.Offset+li, w.sol.Rg.N)
}

// Bootstrap fills the scratch value buffer with the fixed warm start
// util(x, r, q=x/r, s=0) - cost(...), published through the same barrier as
// a normal iteration.
func (w *Worker) Bootstrap() {
	v := &objective.Bundle{M: w.model.Params}
	for li := 0; li < w.Range.Size; li++ {
		xi, ri := w.decode(li)
		v.X = w.sol.Xg.D[xi]
		v.R = w.sol.Rg.D[ri]
		v.Q = v.X / v.R
		v.S = 0
		w.V0Buf[li] = w.model.Parts.Util.Fn(v) - w.model.Parts.Cost.Fn(v)
	}
}

// Step runs one Bellman-maximization iteration over the worker's logical
// range, reading the continuation value from sol.V1 and writing the new
// value/policy into the worker's scratch buffers. qCeiling is the
// coordinator's current global quantity-grid ceiling.
func (w *Worker) Step(qCeiling float64) {
	w.Acc, w.QM, w.SM, w.VM = 0, 0, 0, 0

	v := &objective.Bundle{M: w.model.Params}
	parts := w.model.Parts

	for li := 0; li < w.Range.Size; li++ {
		xi, ri := w.decode(li)
		v.X = w.sol.Xg.D[xi]
		v.R = w.sol.Rg.D[ri]

		best := math.Inf(-1)
		var bestQ, bestS float64

		for si := 0; si < w.sol.Sg.N; si++ {
			v.S = w.sol.Sg.D[si]
			rp := parts.Radt.Fn(v)
			rpli := w.sol.Rg.LowerIndex(rp)

			w.qg.Max = math.Min(v.X/rp, qCeiling)
			if err := w.qg.Recompute(); err != nil {
				continue
			}

			for qi := 0; qi < w.qg.N; qi++ {
				v.Q = w.qg.D[qi]
				xp := parts.Wltt.Fn(v)
				xpli := w.sol.Xg.LowerIndex(xp)

				vp := interp.Bilinear(w.sol.V1, w.sol.Xg, w.sol.Rg, xpli, rpli, xp, rp)
				u := parts.Util.Fn(v)
				c := parts.Cost.Fn(v)
				cand := objective.Bellman(w.model.Params.Beta, u, c, vp)

				if si == 0 && qi == 0 || cand > best {
					best = cand
					bestQ = w.qg.D[qi]
					bestS = w.sol.Sg.D[si]
				}
			}
		}

		w.V0Buf[li] = best
		w.QPolBuf[li] = bestQ
		w.SPolBuf[li] = bestS

		diff := math.Abs(best - w.sol.V1[xi][ri])
		if diff > w.Acc {
			w.Acc = diff
		}
		if bestQ > w.QM {
			w.QM = bestQ
		}
		if bestS > w.SM {
			w.SM = bestS
		}
		if best > w.VM {
			w.VM = best
		}
	}
}

// Publish copies the worker's scratch buffers into the solution's global
// v0/qpol/spol tables at their absolute indices. Must only be called while
// holding the coordinator's mutex.
func (w *Worker) Publish() {
	for li := 0; li < w.Range.Size; li++ {
		xi, ri := w.decode(li)
		w.sol.V0[xi][ri] = w.V0Buf[li]
		w.sol.QPol[xi][ri] = w.QPolBuf[li]
		w.sol.SPol[xi][ri] = w.SPolBuf[li]
	}
}
