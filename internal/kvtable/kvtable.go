// Package kvtable loads the auxiliary CSV tables written alongside gamma
// and delta generation datasets (timestamps.csv, ecounts.csv, room_temp.csv,
// room_humidity.csv). Each table maps a source-relative file path to a
// single float, and supports the nearest-timestamp lookup used to pick
// background frames.
package kvtable

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
)

// Table is an in-memory path-to-float table. Keys are normalized to
// slash-separated, cleaned, source-relative paths.
type Table struct {
	entries map[string]float64
}

// Load reads a CSV table from path. The first row is a header and is
// skipped; every following row must have a file path in the first column
// and a decimal value in the second.
func Load(p string) (*Table, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", p, err)
	}
	if len(rows) > 0 {
		rows = rows[1:] // header
	}

	t := &Table{entries: make(map[string]float64, len(rows))}
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("table %s row %d: want 2 columns, got %d", p, i+2, len(row))
		}
		value, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("table %s row %d: bad value %q: %w", p, i+2, row[1], err)
		}
		t.entries[normalize(row[0])] = value
	}
	return t, nil
}

func normalize(key string) string {
	return path.Clean(filepath.ToSlash(key))
}

// Get returns the value for the given relative path.
func (t *Table) Get(rel string) (float64, bool) {
	v, ok := t.entries[normalize(rel)]
	return v, ok
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Keys returns the paths whose parent directory is dir, sorted.
func (t *Table) Keys(dir string) []string {
	dir = normalize(dir)
	var keys []string
	for k := range t.entries {
		if path.Dir(k) == dir {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Nearest returns the entry under the given parent directory whose value is
// closest to query by absolute difference. Ties resolve to the
// lexicographically smallest path so repeated lookups are deterministic.
// ok is false when no entry lives under dir.
func (t *Table) Nearest(dir string, query float64) (rel string, value float64, ok bool) {
	best := math.Inf(1)
	for _, k := range t.Keys(dir) {
		v := t.entries[k]
		if d := math.Abs(v - query); d < best {
			best = d
			rel, value, ok = k, v, true
		}
	}
	return rel, value, ok
}

// Values returns the table's values for the paths whose parent directory is
// dir, in the same order as Keys(dir).
func (t *Table) Values(dir string) []float64 {
	keys := t.Keys(dir)
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = t.entries[k]
	}
	return values
}

// All returns a copy of every entry.
func (t *Table) All() map[string]float64 {
	out := make(map[string]float64, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}
