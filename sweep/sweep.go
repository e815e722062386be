// Package sweep implements the parameter-dependence driver: for each of a
// set of named scalar parameters, solve the model fresh at every point of
// that parameter's own grid and save each solution under
// "<param>/<param>NN", mirroring pardep.c's mdepparam macro.
package sweep

import (
	"context"
	"fmt"

	channerics "github.com/niceyeti/channerics/channels"

	"radsolve/checkpoint"
	"radsolve/grid"
	"radsolve/model"
	"radsolve/objective"
	"radsolve/pmap"
	"radsolve/solver"
)

// Axis is one swept parameter: its name (matching a Params field setter)
// and the grid of values to solve at, loaded from "<name>g" in the sweep
// parameter map.
type Axis struct {
	Param string
	Grid  *grid.Grid
}

// Setter mutates the field on m named by an Axis's Param.
type Setter func(m *model.Model, value float64)

// DefaultSetters binds the three dependence axes pardep.c sweeps:
// delta, alpha and gamma.
func DefaultSetters() map[string]Setter {
	return map[string]Setter{
		"delta": func(m *model.Model, v float64) { m.Params.Delta = v },
		"alpha": func(m *model.Model, v float64) { m.Params.Alpha = v },
		"gamma": func(m *model.Model, v float64) { m.Params.Gamma = v },
	}
}

// Result is one sweep point's outcome.
type Result struct {
	Param    string
	Index    int
	Value    float64
	Model    *model.Model
	Solution *model.Solution
	Err      error
}

// LoadAxes reads "<param>g" for each named parameter from pm, mirroring
// pardep.c's grid_init_str(&pg, pmap_find(&pmap, "pg")) calls.
func LoadAxes(pm *pmap.Map, params []string) ([]Axis, error) {
	axes := make([]Axis, 0, len(params))
	for _, p := range params {
		v, ok := pm.Find(p + "g")
		if !ok {
			return nil, fmt.Errorf("sweep: missing grid key %q", p+"g")
		}
		g, err := grid.InitFromString(v)
		if err != nil {
			return nil, fmt.Errorf("sweep: parsing grid %q: %w", p+"g", err)
		}
		axes = append(axes, Axis{Param: p, Grid: g})
	}
	return axes, nil
}

// Run solves the model fresh at every point of every axis, fanning the
// per-axis result streams into one channel via channerics.Merge. Each
// successful point's solution is saved under "<param>/<param>NN" beneath
// opts.BaseDir (NN zero-padded to 2 digits, matching the reference
// implementation's directory naming).
func Run(ctx context.Context, pm *pmap.Map, parts objective.Parts, setters map[string]Setter, axes []Axis, opts solver.Options) <-chan *Result {
	done := ctx.Done()

	streams := make([]<-chan *Result, 0, len(axes))
	for _, axis := range axes {
		streams = append(streams, runAxis(ctx, pm, parts, setters[axis.Param], axis, opts))
	}
	return channerics.Merge(done, streams...)
}

func runAxis(ctx context.Context, pm *pmap.Map, parts objective.Parts, set Setter, axis Axis, opts solver.Options) <-chan *Result {
	out := make(chan *Result)
	go func() {
		defer close(out)
		for i, v := range axis.Grid.D {
			r := &Result{Param: axis.Param, Index: i, Value: v}

			m, sol, err := solver.Init(pm, parts)
			if err != nil {
				r.Err = fmt.Errorf("sweep: %s[%d]=%f: initializing: %w", axis.Param, i, v, err)
				if !send(ctx, out, r) {
					return
				}
				continue
			}
			set(m, v)

			if err := solver.SolveFrom(ctx, m, sol, withoutPersistence(opts)); err != nil {
				r.Err = fmt.Errorf("sweep: %s[%d]=%f: solving: %w", axis.Param, i, v, err)
				if !send(ctx, out, r) {
					return
				}
				continue
			}

			if opts.Fs != nil && opts.BaseDir != "" {
				dir := fmt.Sprintf("%s/%s%02d", axis.Param, axis.Param, i)
				store := checkpoint.New(opts.Fs, join(opts.BaseDir, dir))
				if err := store.SaveHead(); err == nil {
					_ = store.SaveModel(m)
				}
				if err := store.SaveSolution(sol); err != nil {
					r.Err = fmt.Errorf("sweep: %s[%d]=%f: saving: %w", axis.Param, i, v, err)
				}
			}

			r.Model, r.Solution = m, sol
			if !send(ctx, out, r) {
				return
			}
		}
	}()
	return out
}

func join(base, rel string) string {
	if base == "" {
		return rel
	}
	return base + "/" + rel
}

// withoutPersistence strips the checkpoint target from opts so
// solver.SolveFrom doesn't write to the shared default model directory;
// each sweep point instead persists under its own "<param>/<param>NN" path.
func withoutPersistence(opts solver.Options) solver.Options {
	opts.Fs = nil
	opts.BaseDir = ""
	return opts
}

func send(ctx context.Context, out chan<- *Result, r *Result) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
