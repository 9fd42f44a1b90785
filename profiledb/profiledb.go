// Package profiledb implements the profile database external
// collaborator (spec.md §6): a key/value store, loaded from an
// INI-style file via gopkg.in/ini.v1, mapping operator names to
// polynomial cost-model coefficients f(order) = Σ a_k·order^k. Only the
// resulting in-memory mapping is consumed by the FMM core; the file
// format itself is this package's concern alone.
package profiledb

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// EnvPathVar and EnvGroupVar name the environment variables that
// override the default database path and group key.
const (
	EnvPathVar  = "ARAN_PROFILE_DB"
	EnvGroupVar = "ARAN_PROFILE_GROUP"
)

// DB holds polynomial cost-model coefficients keyed by group (a named
// machine or build variant) and operator name.
type DB struct {
	// groups[group][operator] = [a0, a1, a2, ...].
	groups map[string]map[string][]float64
}

// New returns an empty database.
func New() *DB {
	return &DB{groups: make(map[string]map[string][]float64)}
}

// Load reads path (an INI file) into a new DB. Each section is a group;
// each key within a section is an operator name, whose value is a
// comma-separated list of polynomial coefficients. Returns false and an
// empty DB on any I/O or parse failure (spec.md §7(d): I/O errors are
// reported to the immediate caller, not propagated as a fatal abort).
func Load(path string) (*DB, bool) {
	db := New()
	cfg, err := ini.Load(path)
	if err != nil {
		return db, false
	}
	for _, sec := range cfg.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		group := make(map[string][]float64)
		for _, key := range sec.Keys() {
			coeffs, perr := parseCoeffs(key.Value())
			if perr != nil {
				continue
			}
			group[key.Name()] = coeffs
		}
		db.groups[name] = group
	}
	return db, true
}

// LoadFromEnv loads the database named by ARAN_PROFILE_DB, falling back
// to an empty DB if the variable is unset or the file cannot be read.
func LoadFromEnv() *DB {
	path := os.Getenv(EnvPathVar)
	if path == "" {
		return New()
	}
	db, _ := Load(path)
	return db
}

// DefaultGroup returns ARAN_PROFILE_GROUP, or "default" if unset.
func DefaultGroup() string {
	if g := os.Getenv(EnvGroupVar); g != "" {
		return g
	}
	return "default"
}

func parseCoeffs(value string) ([]float64, error) {
	parts := strings.Split(value, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("profiledb: invalid coefficient %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Set stores the polynomial coefficients for (group, operator),
// overwriting any existing entry.
func (db *DB) Set(group, operator string, coeffs []float64) {
	g, ok := db.groups[group]
	if !ok {
		g = make(map[string][]float64)
		db.groups[group] = g
	}
	g[operator] = append([]float64(nil), coeffs...)
}

// Cost evaluates the polynomial cost model for (group, operator) at the
// given order. Returns NaN if the entry is absent, so callers can detect
// absence without a second lookup (spec.md §7(c)).
func (db *DB) Cost(group, operator string, order int) float64 {
	g, ok := db.groups[group]
	if !ok {
		return math.NaN()
	}
	coeffs, ok := g[operator]
	if !ok || len(coeffs) == 0 {
		return math.NaN()
	}
	x := float64(order)
	sum := 0.0
	pow := 1.0
	for _, a := range coeffs {
		sum += a * pow
		pow *= x
	}
	return sum
}

// HasEntry reports whether (group, operator) has a stored cost model.
func (db *DB) HasEntry(group, operator string) bool {
	g, ok := db.groups[group]
	if !ok {
		return false
	}
	_, ok = g[operator]
	return ok
}

// Save writes the database to path as an INI file, one section per
// group and one key per operator, coefficients joined by commas.
func (db *DB) Save(path string) error {
	cfg := ini.Empty()
	for group, ops := range db.groups {
		sec, err := cfg.NewSection(group)
		if err != nil {
			return fmt.Errorf("profiledb: creating section %q: %w", group, err)
		}
		for op, coeffs := range ops {
			strs := make([]string, len(coeffs))
			for i, c := range coeffs {
				strs[i] = strconv.FormatFloat(c, 'g', -1, 64)
			}
			if _, err := sec.NewKey(op, strings.Join(strs, ",")); err != nil {
				return fmt.Errorf("profiledb: writing key %q/%q: %w", group, op, err)
			}
		}
	}
	return cfg.SaveTo(path)
}
