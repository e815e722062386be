// Package coordinator implements the two-phase iteration barrier that
// synchronizes the driver and its workers around the shared double-buffered
// value tables, and the adaptive tightening of the control grid bounds
// (components H and I).
package coordinator

import (
	"sync"

	"radsolve/model"
	"radsolve/worker"
)

// Coordinator owns the shared mutable state touched by every worker once
// per iteration: the running reductions (max q, max s, max v, max |delta
// v|), the current global quantity ceiling, and the barrier bookkeeping.
// All of its state is only ever mutated while Mu is held.
type Coordinator struct {
	Mu sync.Mutex

	itDone     sync.Cond
	nextReady  sync.Cond
	itDoneN    int
	nextIsOpen bool

	numWorkers int

	QCeiling float64

	accBuf float64
	qMBuf  float64
	sMBuf  float64
	vMBuf  float64

	sol *model.Solution
}

// New builds a coordinator for numWorkers worker goroutines (the driver
// itself publishes as a (numWorkers+1)-th participant). QCeiling starts at
// sol.Qg.Max, the quantity grid's configured upper bound.
func New(sol *model.Solution, numWorkers int) *Coordinator {
	c := &Coordinator{
		numWorkers: numWorkers,
		QCeiling:   sol.Qg.Max,
		sol:        sol,
	}
	c.itDone.L = &c.Mu
	c.nextReady.L = &c.Mu
	return c
}

// Ceiling returns the current global quantity-grid ceiling under the
// coordinator's mutex, so a worker starting its next Step always observes a
// value at least as tight as the one in effect when it was released.
func (c *Coordinator) Ceiling() float64 {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	return c.QCeiling
}

// PublishWorker runs a worker's publish phase: copy its scratch buffers to
// the global tables, fold its reductions into the shared buffers, signal
// completion, and block until the driver opens the next iteration.
func (c *Coordinator) PublishWorker(w *worker.Worker) {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	c.publishLocked(w)
	c.itDoneN++
	c.itDone.Signal()

	for !c.nextIsOpen {
		c.nextReady.Wait()
	}
}

// Finalize runs the driver's finalize phase: publish the driver's own
// partition, wait for every worker to check in, then reset the barrier,
// swap the double-buffered value tables, adopt the folded accuracy figure,
// tighten the control grid bounds, and reset the fold buffers. It returns
// the iteration's accuracy (max |delta v| across all partitions) and the
// folded (qMax, sMax) observed this iteration, before the bounds are
// tightened for the next one.
func (c *Coordinator) Finalize(driver *worker.Worker) (acc, qMax, sMax float64) {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	c.publishLocked(driver)

	for c.itDoneN < c.numWorkers {
		c.itDone.Wait()
	}
	c.itDoneN = 0
	c.nextIsOpen = false

	c.sol.SwapValueTables()

	acc = c.accBuf
	qMax = c.qMBuf
	sMax = c.sMBuf
	c.sol.Acc = acc
	c.accBuf = 0

	c.adjustBoundsLocked()

	c.qMBuf, c.sMBuf, c.vMBuf = 0, 0, 0

	c.sol.It++
	c.nextIsOpen = true
	c.nextReady.Broadcast()

	return acc, qMax, sMax
}

func (c *Coordinator) publishLocked(w *worker.Worker) {
	w.Publish()
	if w.Acc > c.accBuf {
		c.accBuf = w.Acc
	}
	if w.QM > c.qMBuf {
		c.qMBuf = w.QM
	}
	if w.SM > c.sMBuf {
		c.sMBuf = w.SM
	}
	if w.VM > c.vMBuf {
		c.vMBuf = w.VM
	}
}

// adjustBoundsLocked tightens the quantity ceiling and the effort grid's
// upper bound toward the observed maxima, each eased by a 1/(it+1)
// diminishing slack term, so the bounds are monotonically non-increasing.
// Must be called with Mu held. Mirrors adjust_grid_bounds: it only runs
// after the bootstrap iteration (It > 0), since the bootstrap's scratch
// values are not yet comparable Bellman maxima.
func (c *Coordinator) adjustBoundsLocked() {
	if c.sol.It == 0 {
		return
	}
	slack := 1.0 / float64(c.sol.It+1)

	if adp := c.qMBuf + c.sol.Qadp*slack; adp < c.QCeiling {
		c.QCeiling = adp
		c.sol.Qg.Max = adp
		c.sol.Qg.Recompute()
	}

	if adp := c.sMBuf + c.sol.Sadp*slack; adp < c.sol.Sg.Max {
		c.sol.Sg.Max = adp
		c.sol.Sg.Recompute()
	}
}
