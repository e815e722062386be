// Package solver wires the partitioner, worker kernels, coordinator and
// checkpoint store into the top-level Solve and Resume entry points,
// mirroring setup_solve and setup_resume.
package solver

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"radsolve/checkpoint"
	"radsolve/coordinator"
	"radsolve/model"
	"radsolve/monitor"
	"radsolve/objective"
	"radsolve/partition"
	"radsolve/pmap"
	"radsolve/worker"
)

// Options configures a solve.
type Options struct {
	Workers   int // additional worker goroutines; the driver itself is the (Workers+1)-th participant
	SaveCycle int // checkpoint every SaveCycle iterations when > 0; 0 disables periodic checkpointing
	LogCycle  int // log progress every LogCycle iterations when > 0

	Fs      afero.Fs
	BaseDir string // model directory root passed to checkpoint.Store

	Log *logrus.Logger

	// Progress, if non-nil, receives a best-effort snapshot after every
	// finalized iteration for a live monitor.Server to stream onward.
	Progress chan<- monitor.Progress
}

func (o *Options) logger() *logrus.Logger {
	if o.Log != nil {
		return o.Log
	}
	return logrus.StandardLogger()
}

// Init builds a fresh model and solution from a parameter map, without
// running the fixed-point loop, mirroring setup_init.
func Init(pm *pmap.Map, parts objective.Parts) (*model.Model, *model.Solution, error) {
	m, err := model.Init(pm, parts)
	if err != nil {
		return nil, nil, fmt.Errorf("solver: initializing model: %w", err)
	}
	sol, err := model.SolutionInit(pm)
	if err != nil {
		return nil, nil, fmt.Errorf("solver: initializing solution: %w", err)
	}
	return m, sol, nil
}

// Solve initializes a model and solution from a parameter map and runs the
// fixed-point loop to convergence or Maxit, whichever comes first (the
// Maxit enforcement is a deliberate behavior change from the reference
// implementation, which never checked it).
func Solve(ctx context.Context, pm *pmap.Map, parts objective.Parts, opts Options) (*model.Model, *model.Solution, error) {
	m, sol, err := Init(pm, parts)
	if err != nil {
		return nil, nil, err
	}
	if err := SolveFrom(ctx, m, sol, opts); err != nil {
		return nil, nil, err
	}
	return m, sol, nil
}

// SolveFrom runs the full bootstrap-and-iterate solve over an
// already-constructed model and solution pair, persisting the head and
// model files (if opts names a checkpoint target) before the loop starts.
// Sweep points use this directly, after overriding a model scalar post-Init
// the way pardep.c sets m.p right after setup_init and before setup_solve.
func SolveFrom(ctx context.Context, m *model.Model, sol *model.Solution, opts Options) error {
	if opts.Fs != nil && opts.BaseDir != "" {
		store := checkpoint.New(opts.Fs, opts.BaseDir)
		store.Log = opts.Log
		if err := store.SaveHead(); err != nil {
			return fmt.Errorf("solver: writing head file: %w", err)
		}
		if err := store.SaveModel(m); err != nil {
			return fmt.Errorf("solver: saving model: %w", err)
		}
	}
	return run(ctx, m, sol, opts, bootstrapAll)
}

// Resume continues a previously saved solve from its checkpoint directory,
// jumping straight into the normal iteration loop. Unlike a fresh solve, no
// bootstrap round runs at all: the loaded v0/v1/qpol/spol already hold a
// real iteration pair, so publishing another (zero-scratch) round before
// the first Step would clobber them, mirroring setup_resume.
func Resume(ctx context.Context, m *model.Model, sol *model.Solution, opts Options) error {
	return run(ctx, m, sol, opts, nil)
}

// bootstrapAll runs each worker's warm-start seed concurrently.
func bootstrapAll(workers []*worker.Worker) {
	var g errgroup.Group
	for _, w := range workers {
		w := w
		g.Go(func() error {
			w.Bootstrap()
			return nil
		})
	}
	_ = g.Wait()
}

// run spawns the worker goroutines, has the driver act as the final
// (Workers+1)-th participant, and drives the fixed-point loop until acc
// drops below tol or It reaches Maxit. seed is nil for Resume: when nil, the
// initial bootstrap publish/finalize round is skipped entirely and every
// participant proceeds straight into the normal Step loop over the already
// loaded value tables.
func run(ctx context.Context, m *model.Model, sol *model.Solution, opts Options, seed func([]*worker.Worker)) error {
	log := opts.logger()

	ranges := partition.Split(sol.Xg.N, sol.Rg.N, opts.Workers)
	workers := make([]*worker.Worker, len(ranges))
	for i, rng := range ranges {
		workers[i] = worker.New(i, rng, m, sol)
	}
	driverWorker := workers[len(workers)-1]
	poolWorkers := workers[:len(workers)-1]

	coord := coordinator.New(sol, len(poolWorkers))

	runBootstrapRound := seed != nil
	if runBootstrapRound {
		seed(workers)
	}

	var store *checkpoint.Store
	if opts.Fs != nil && opts.BaseDir != "" {
		store = checkpoint.New(opts.Fs, opts.BaseDir)
		store.Log = opts.Log
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, w := range poolWorkers {
		w := w
		group.Go(func() error {
			if runBootstrapRound {
				coord.PublishWorker(w)
			}
			for sol.Acc >= sol.Tol && (sol.Maxit <= 0 || sol.It < sol.Maxit) {
				select {
				case <-groupCtx.Done():
					return groupCtx.Err()
				default:
				}
				w.Step(coord.Ceiling())
				coord.PublishWorker(w)
			}
			return nil
		})
	}

	var acc, qMax, sMax float64
	if runBootstrapRound {
		// driver's publish phase for the bootstrap iteration
		acc, qMax, sMax = coord.Finalize(driverWorker)
		logCycle(log, opts, sol, acc, qMax, sMax)
		publishProgress(opts, sol, acc, qMax, sMax)
	}

	for sol.Acc >= sol.Tol && (sol.Maxit <= 0 || sol.It < sol.Maxit) {
		driverWorker.Step(coord.Ceiling())
		acc, qMax, sMax = coord.Finalize(driverWorker)
		logCycle(log, opts, sol, acc, qMax, sMax)
		publishProgress(opts, sol, acc, qMax, sMax)

		if store != nil && opts.SaveCycle > 0 && sol.It > 0 && sol.It%opts.SaveCycle == 0 {
			ckpt := checkpoint.New(opts.Fs, checkpoint.CheckpointDir(opts.BaseDir, sol.It))
			ckpt.Log = opts.Log
			if err := ckpt.SaveSolution(sol); err != nil {
				log.WithError(err).Warn("failed to write periodic checkpoint")
			}
		}
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("solver: worker failed: %w", err)
	}

	if sol.It%2 != 0 {
		sol.SwapValueTables()
	}

	if store != nil {
		if err := store.SaveSolution(sol); err != nil {
			return fmt.Errorf("solver: saving final solution: %w", err)
		}
	}

	return nil
}

func logCycle(log *logrus.Logger, opts Options, sol *model.Solution, acc, qMax, sMax float64) {
	if opts.LogCycle <= 0 || sol.It == 0 || sol.It%opts.LogCycle != 0 {
		return
	}
	log.WithFields(logrus.Fields{
		"iteration": sol.It,
		"acc":       acc,
		"qmax":      qMax,
		"smax":      sMax,
	}).Info("fixed-point iteration")
}

// publishProgress forwards every finalized iteration to opts.Progress, not
// just the LogCycle subset — a live monitor wants the latest snapshot on
// every tick, while file logging stays throttled to avoid flooding it.
func publishProgress(opts Options, sol *model.Solution, acc, qMax, sMax float64) {
	if opts.Progress == nil {
		return
	}
	monitor.Publish(opts.Progress, monitor.Progress{
		Iteration: sol.It,
		Acc:       acc,
		QMax:      qMax,
		SMax:      sMax,
	})
}
