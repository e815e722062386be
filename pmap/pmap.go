// Package pmap implements the ordered key/value parameter map loaded from a
// text parameter file (component B). The format is intentionally minimal: a
// text line is either "key = value" or is skipped. This is a spec-literal
// protocol, not a general-purpose config format, so it is hand-rolled rather
// than routed through a config library — see DESIGN.md.
package pmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Pair is a single ordered key/value entry.
type Pair struct {
	Key   string
	Value string
}

// Map is an ordered list of key/value pairs.
type Map struct {
	pairs []Pair
}

// New returns an empty parameter map.
func New() *Map {
	return &Map{}
}

// InitFromFile parses lines of the form "key = value" from path. Leading and
// trailing whitespace around the key is trimmed; the value is everything
// after the first '=', kept verbatim (trailing newline stripped). Lines
// without '=' are skipped.
func InitFromFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pmap: opening %q: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Map, error) {
	m := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := line[eq+1:]
		val = strings.TrimRight(val, "\r\n")
		if key == "" {
			continue
		}
		m.pairs = append(m.pairs, Pair{Key: key, Value: val})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pmap: reading: %w", err)
	}
	return m, nil
}

// Add appends a raw key/value pair, in insertion order.
func (m *Map) Add(key, val string) {
	m.pairs = append(m.pairs, Pair{Key: key, Value: val})
}

// AddInt appends an int value, formatted via strconv.
func (m *Map) AddInt(key string, val int) {
	m.Add(key, strconv.Itoa(val))
}

// AddFloat appends a float64 value, formatted via strconv.
func (m *Map) AddFloat(key string, val float64) {
	m.Add(key, strconv.FormatFloat(val, 'f', -1, 64))
}

// Save writes "key = value" lines in insertion order.
func (m *Map) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pmap: creating %q: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, p := range m.pairs {
		if _, err := fmt.Fprintf(w, "%s = %s\n", p.Key, p.Value); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Find returns the value for key and whether it was present.
func (m *Map) Find(key string) (string, bool) {
	for _, p := range m.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// FindFloat looks up key and parses it as a float64.
func (m *Map) FindFloat(key string) (float64, bool, error) {
	v, ok := m.Find(key)
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, true, fmt.Errorf("pmap: key %q: %w", key, err)
	}
	return f, true, nil
}

// FindInt looks up key and parses it as an int.
func (m *Map) FindInt(key string) (int, bool, error) {
	v, ok := m.Find(key)
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, true, fmt.Errorf("pmap: key %q: %w", key, err)
	}
	return i, true, nil
}

// Len returns the number of stored pairs.
func (m *Map) Len() int {
	return len(m.pairs)
}

// At returns the i'th pair, in insertion order.
func (m *Map) At(i int) Pair {
	return m.pairs[i]
}
