package fmm

import (
	"errors"
	"math"

	"aranfmm/profiledb"
)

// SemifarProfileDriven requests the τ=0 profile-driven chooser
// (spec.md §4.4): the solver picks the threshold minimizing estimated
// operator cost via the configured profile database.
const SemifarProfileDriven = 0

// SemifarDisabled requests the "always full M2L, never semifar" regime
// (spec.md §4.4's τ=∞).
const SemifarDisabled = -1

// Config bundles the solve pipeline's tunables, built via plain
// constructor and WithXxx methods (the teacher's ntru.Params pattern)
// rather than a generic options framework.
type Config struct {
	LeafCapacity     int
	MaxDepth         int
	SemifarThreshold int
	ProfileDB        *profiledb.DB
	ProfileGroup     string
	// StrictPrecision upgrades precision-loss diagnostics (spec.md
	// §7(b)) to a fatal PrecisionError instead of a non-fatal counter
	// increment, resolving spec.md §9's open question without changing
	// the default (non-strict) behavior.
	StrictPrecision bool
}

// NewConfig returns the default configuration: leaf capacity 8, depth
// cap 32, semifar disabled.
func NewConfig() (Config, error) {
	return Config{
		LeafCapacity:     8,
		MaxDepth:         32,
		SemifarThreshold: SemifarDisabled,
		ProfileGroup:     profiledb.DefaultGroup(),
	}, nil
}

// WithLeafCapacity returns a copy of cfg with the given leaf capacity.
func (cfg Config) WithLeafCapacity(n int) (Config, error) {
	if n < 1 {
		return Config{}, errors.New("fmm: leaf capacity must be >= 1")
	}
	cfg.LeafCapacity = n
	return cfg, nil
}

// WithMaxDepth returns a copy of cfg with the given max tree depth.
func (cfg Config) WithMaxDepth(n int) (Config, error) {
	if n < 1 {
		return Config{}, errors.New("fmm: max depth must be >= 1")
	}
	cfg.MaxDepth = n
	return cfg, nil
}

// WithSemifarThreshold returns a copy of cfg using the given threshold
// (SemifarDisabled, SemifarProfileDriven, or a positive particle count).
func (cfg Config) WithSemifarThreshold(tau int) (Config, error) {
	if tau < SemifarDisabled {
		return Config{}, errors.New("fmm: semifar threshold must be >= -1")
	}
	cfg.SemifarThreshold = tau
	return cfg, nil
}

// WithProfileDB returns a copy of cfg using db (and group, if non-empty)
// for the τ=0 profile-driven chooser.
func (cfg Config) WithProfileDB(db *profiledb.DB, group string) (Config, error) {
	if db == nil {
		return Config{}, errors.New("fmm: nil profile database")
	}
	cfg.ProfileDB = db
	if group != "" {
		cfg.ProfileGroup = group
	}
	return cfg, nil
}

// WithStrictPrecision returns a copy of cfg with strict precision
// handling enabled or disabled.
func (cfg Config) WithStrictPrecision(strict bool) (Config, error) {
	cfg.StrictPrecision = strict
	return cfg, nil
}

// PrecisionError reports a precision-losing truncation when
// Config.StrictPrecision is set (spec.md §7(b) upgraded to fatal).
type PrecisionError struct {
	Operator string
}

func (e *PrecisionError) Error() string {
	return "fmm: precision loss truncating during " + e.Operator
}

// ContractViolation reports a spec.md §7(a) user-contract violation:
// these are fatal and abort the current solve.
type ContractViolation struct {
	Reason string
}

func (e *ContractViolation) Error() string {
	return "fmm: contract violation: " + e.Reason
}

// chooseSemifarThreshold resolves cfg's configured semifar policy into a
// concrete particle-count threshold for one solve, consulting the
// profile database when τ=0 (spec.md §4.4). The profile-driven search
// tries candidate thresholds 1..maxCandidate and keeps the one with the
// lowest estimated cost, taken as the "p2p" cost model evaluated at the
// candidate threshold plus the "m2l" cost model at the configured order;
// an absent profile entry (NaN) is treated as "no information" and
// skipped.
func chooseSemifarThreshold(cfg Config, order, maxCandidate int) int {
	if cfg.SemifarThreshold != SemifarProfileDriven {
		return cfg.SemifarThreshold
	}
	if cfg.ProfileDB == nil {
		return SemifarDisabled
	}
	best := SemifarDisabled
	bestCost := math.Inf(1)
	for tau := 1; tau <= maxCandidate; tau++ {
		p2p := cfg.ProfileDB.Cost(cfg.ProfileGroup, "p2p", tau)
		m2l := cfg.ProfileDB.Cost(cfg.ProfileGroup, "m2l", order)
		if math.IsNaN(p2p) || math.IsNaN(m2l) {
			continue
		}
		cost := p2p + m2l
		if cost < bestCost {
			bestCost = cost
			best = tau
		}
	}
	return best
}
