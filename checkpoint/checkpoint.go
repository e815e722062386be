// Package checkpoint implements the binary persistence format used to save
// and resume a solve: a model directory holding a head file, a model dump
// plus its function-part labels, a solution scalar dump, four grid files
// and four value/policy matrix files (component J).
package checkpoint

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"radsolve/grid"
	"radsolve/model"
	"radsolve/objective"
	"radsolve/pmap"
)

const (
	headFile     = "head"
	modelFile    = "model"
	fncsFile     = "fncs"
	solutionFile = "solution"
	saveDirName  = "save"
	saveItPrefix = "it"
)

// Store persists a single model directory's files through an afero
// filesystem, so tests can run against an in-memory filesystem without
// touching disk.
type Store struct {
	Fs  afero.Fs
	Dir string

	// VerifyOnSave re-reads every matrix immediately after writing it and
	// compares it against the in-memory values, logging a warning (instead
	// of failing the save) on any mismatch — a debug-mode aid, not a
	// correctness guarantee the format itself provides.
	VerifyOnSave bool

	// Log receives the VerifyOnSave mismatch warning. Defaults to
	// logrus.StandardLogger() when nil.
	Log *logrus.Logger
}

// New returns a Store rooted at dir on fs.
func New(fs afero.Fs, dir string) *Store {
	return &Store{Fs: fs, Dir: dir}
}

func (st *Store) logger() *logrus.Logger {
	if st.Log != nil {
		return st.Log
	}
	return logrus.StandardLogger()
}

func (st *Store) path(name string) string {
	return filepath.Join(st.Dir, name)
}

func (st *Store) ensureDir() error {
	return st.Fs.MkdirAll(st.Dir, 0o755)
}

// SaveHead writes the head file: creation timestamp, hostname and username,
// mirroring save_head's three key-value lines.
func (st *Store) SaveHead() error {
	if err := st.ensureDir(); err != nil {
		return err
	}
	f, err := st.Fs.Create(st.path(headFile))
	if err != nil {
		return fmt.Errorf("checkpoint: creating head file: %w", err)
	}
	defer f.Close()

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	uname := "unknown"
	if u, err := user.Current(); err == nil {
		uname = u.Username
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%-10s:%s\n", "Created", time.Now().Format(time.ANSIC))
	fmt.Fprintf(w, "%-10s:%s\n", "Host", host)
	fmt.Fprintf(w, "%-10s:%s\n", "User", uname)
	return w.Flush()
}

// SaveModel writes the model's scalar parameters as a binary dump and the
// objective part labels as a text pmap ("fncs"), mirroring model_save.
func (st *Store) SaveModel(m *model.Model) error {
	if err := st.ensureDir(); err != nil {
		return err
	}

	f, err := st.Fs.Create(st.path(modelFile))
	if err != nil {
		return fmt.Errorf("checkpoint: creating model file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, m.Params); err != nil {
		return fmt.Errorf("checkpoint: writing model scalars: %w", err)
	}

	fncs := pmap.New()
	fncs.Add("util", m.Parts.Util.Str)
	fncs.Add("cost", m.Parts.Cost.Str)
	fncs.Add("radt", m.Parts.Radt.Str)
	fncs.Add("wltt", m.Parts.Wltt.Str)
	return savePmap(st.Fs, st.path(fncsFile), fncs)
}

func savePmap(fs afero.Fs, path string, pm *pmap.Map) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("checkpoint: creating %q: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for i := 0; i < pm.Len(); i++ {
		p := pm.At(i)
		if _, err := fmt.Fprintf(w, "%s = %s\n", p.Key, p.Value); err != nil {
			return err
		}
	}
	return w.Flush()
}

// LoadModel reads the model scalar dump and rebinds it to the caller-supplied
// objective parts, mirroring model_load's use of set_model_callbacks. The
// "fncs" label file is descriptive only; parts are never reconstructed from
// it, only selected by the caller.
func (st *Store) LoadModel(parts objective.Parts) (*model.Model, error) {
	f, err := st.Fs.Open(st.path(modelFile))
	if err != nil {
		return nil, fmt.Errorf("checkpoint: opening model file: %w", err)
	}
	defer f.Close()

	m := &model.Model{Parts: parts}
	if err := binary.Read(f, binary.LittleEndian, &m.Params); err != nil {
		return nil, fmt.Errorf("checkpoint: reading model scalars: %w", err)
	}
	return m, nil
}

type solutionScalars struct {
	Maxit     int32
	Tol       float64
	Qadp      float64
	Sadp      float64
	Acc       float64
	It        int32
	XbegNanos int64
	XendNanos int64
}

func timeToNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func nanosToTime(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// SaveSolution writes the solution scalar dump, the four grid files and the
// four value/policy matrices, mirroring solution_save.
func (st *Store) SaveSolution(sol *model.Solution) error {
	if err := st.ensureDir(); err != nil {
		return err
	}

	// Recompute qg immediately before writing it, so a persisted checkpoint
	// always reflects the adapted ceiling even if It's last tightening ran
	// without a save following it, mirroring main_sync's save ordering.
	sol.Qg.Recompute()

	grids := []struct {
		name string
		g    *grid.Grid
	}{
		{"xg", sol.Xg}, {"rg", sol.Rg}, {"qg", sol.Qg}, {"sg", sol.Sg},
	}
	for _, g := range grids {
		if err := st.saveGrid(g.name, g.g); err != nil {
			return err
		}
	}

	matrices := []struct {
		name string
		m    [][]float64
	}{
		{"qpol", sol.QPol}, {"spol", sol.SPol}, {"v0", sol.V0}, {"v1", sol.V1},
	}
	for _, mx := range matrices {
		if err := st.saveMatrix(mx.name, mx.m); err != nil {
			return err
		}
		if st.VerifyOnSave {
			st.verifyMatrix(mx.name, mx.m)
		}
	}

	f, err := st.Fs.Create(st.path(solutionFile))
	if err != nil {
		return fmt.Errorf("checkpoint: creating solution file: %w", err)
	}
	defer f.Close()

	scalars := solutionScalars{
		Maxit: int32(sol.Maxit), Tol: sol.Tol, Qadp: sol.Qadp, Sadp: sol.Sadp,
		Acc: sol.Acc, It: int32(sol.It),
		XbegNanos: timeToNanos(sol.Xbeg), XendNanos: timeToNanos(sol.Xend),
	}
	return binary.Write(f, binary.LittleEndian, scalars)
}

// LoadSolution reads back everything SaveSolution wrote, mirroring
// solution_load.
func (st *Store) LoadSolution() (*model.Solution, error) {
	f, err := st.Fs.Open(st.path(solutionFile))
	if err != nil {
		return nil, fmt.Errorf("checkpoint: opening solution file: %w", err)
	}
	var scalars solutionScalars
	err = binary.Read(f, binary.LittleEndian, &scalars)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("checkpoint: reading solution scalars: %w", err)
	}

	sol := &model.Solution{
		Maxit: int(scalars.Maxit), Tol: scalars.Tol, Qadp: scalars.Qadp, Sadp: scalars.Sadp,
		Acc: scalars.Acc, It: int(scalars.It),
		Xbeg: nanosToTime(scalars.XbegNanos), Xend: nanosToTime(scalars.XendNanos),
	}

	var loadErr error
	if sol.Xg, loadErr = st.loadGrid("xg"); loadErr != nil {
		return nil, loadErr
	}
	if sol.Rg, loadErr = st.loadGrid("rg"); loadErr != nil {
		return nil, loadErr
	}
	if sol.Qg, loadErr = st.loadGrid("qg"); loadErr != nil {
		return nil, loadErr
	}
	if sol.Sg, loadErr = st.loadGrid("sg"); loadErr != nil {
		return nil, loadErr
	}

	if sol.QPol, loadErr = st.loadMatrix("qpol"); loadErr != nil {
		return nil, loadErr
	}
	if sol.SPol, loadErr = st.loadMatrix("spol"); loadErr != nil {
		return nil, loadErr
	}
	if sol.V0, loadErr = st.loadMatrix("v0"); loadErr != nil {
		return nil, loadErr
	}
	if sol.V1, loadErr = st.loadMatrix("v1"); loadErr != nil {
		return nil, loadErr
	}

	return sol, nil
}

func (st *Store) saveGrid(name string, g *grid.Grid) error {
	f, err := st.Fs.Create(st.path(name))
	if err != nil {
		return fmt.Errorf("checkpoint: creating grid file %q: %w", name, err)
	}
	defer f.Close()
	return g.Save(f)
}

func (st *Store) loadGrid(name string) (*grid.Grid, error) {
	f, err := st.Fs.Open(st.path(name))
	if err != nil {
		return nil, fmt.Errorf("checkpoint: opening grid file %q: %w", name, err)
	}
	defer f.Close()
	return grid.Load(f)
}

func (st *Store) saveMatrix(name string, m [][]float64) error {
	f, err := st.Fs.Create(st.path(name))
	if err != nil {
		return fmt.Errorf("checkpoint: creating matrix file %q: %w", name, err)
	}
	defer f.Close()
	return saveMatrix(f, m)
}

func saveMatrix(w io.Writer, m [][]float64) error {
	d1 := int16(len(m))
	var d2 int16
	if d1 > 0 {
		d2 = int16(len(m[0]))
	}
	if err := binary.Write(w, binary.LittleEndian, d1); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, d2); err != nil {
		return err
	}
	for _, row := range m {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return nil
}

func (st *Store) loadMatrix(name string) ([][]float64, error) {
	f, err := st.Fs.Open(st.path(name))
	if err != nil {
		return nil, fmt.Errorf("checkpoint: opening matrix file %q: %w", name, err)
	}
	defer f.Close()
	return loadMatrix(f)
}

func loadMatrix(r io.Reader) ([][]float64, error) {
	var d1, d2 int16
	if err := binary.Read(r, binary.LittleEndian, &d1); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &d2); err != nil {
		return nil, err
	}
	m := make([][]float64, d1)
	for i := range m {
		m[i] = make([]float64, d2)
		if err := binary.Read(r, binary.LittleEndian, m[i]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (st *Store) verifyMatrix(name string, want [][]float64) {
	got, err := st.loadMatrix(name)
	if err != nil {
		st.logger().WithError(err).WithField("file", name).Warn("checkpoint: verify read-back failed")
		return
	}
	for xi := range want {
		for ri := range want[xi] {
			if got[xi][ri] != want[xi][ri] {
				st.logger().WithFields(logrus.Fields{
					"file": name,
					"xi":   xi,
					"ri":   ri,
					"want": want[xi][ri],
					"got":  got[xi][ri],
				}).Warn("checkpoint: verify mismatch after save")
				return
			}
		}
	}
}

// CheckpointDir returns the subdirectory a periodic checkpoint at iteration
// it is written to: <dir>/save/it<NNNNN>, matching the "save/itNNNNN" naming
// setup_find_last_saved scans for.
func CheckpointDir(baseDir string, it int) string {
	return filepath.Join(baseDir, saveDirName, fmt.Sprintf("%s%05d", saveItPrefix, it))
}

// FindLastSaved scans <baseDir>/save for the lexicographically greatest
// "it<NNNNN>" entry (zero-padded width makes lexicographic and numeric order
// agree) and returns its full path, or an error if none exist.
func FindLastSaved(fs afero.Fs, baseDir string) (string, error) {
	saveDir := filepath.Join(baseDir, saveDirName)
	entries, err := afero.ReadDir(fs, saveDir)
	if err != nil {
		return "", fmt.Errorf("checkpoint: reading save directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), saveItPrefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("checkpoint: no save points found under %q", saveDir)
	}
	sort.Strings(names)
	return filepath.Join(saveDir, names[len(names)-1]), nil
}
