package tables

import (
	"math"
	"sync"
)

func phase(m int) float64 {
	if m%2 == 0 {
		return 1
	}
	return -1
}

// Wigner holds D^l_{m',m}(alpha,beta,gamma) for 0<=l<=Lmax, 0<=m'<=l,
// -l<=m<=l, built from the real Wigner small-d three-term recurrence in
// beta and the diagonal alpha/gamma phase factors (spec.md §3, §4.1;
// ported from aran_wigner_require_d / aran_wigner_require).
type Wigner struct {
	Alpha, Beta, Gamma float64
	Lmax               int
	terms              [][][]complex128 // terms[l][mp][l+m]
}

// NewWigner creates a Wigner table for the given ZYZ Euler angles,
// pre-extended to degree lmax (pass -1 to defer computation to Require).
func NewWigner(alpha, beta, gamma float64, lmax int) *Wigner {
	w := &Wigner{Alpha: alpha, Beta: beta, Gamma: gamma, Lmax: -1}
	if lmax >= 0 {
		w.Require(lmax)
	}
	return w
}

func (w *Wigner) realloc(lmax int) {
	terms := make([][][]complex128, lmax+1)
	for l := 0; l <= lmax; l++ {
		rows := make([][]complex128, l+1)
		for mp := 0; mp <= l; mp++ {
			rows[mp] = make([]complex128, 2*l+1)
		}
		terms[l] = rows
	}
	// carry over previously computed rows.
	for l := 0; l < len(w.terms) && l <= lmax; l++ {
		for mp := range w.terms[l] {
			copy(terms[l][mp], w.terms[l][mp])
		}
	}
	w.terms = terms
}

// Term returns D^l_{m',m} (after Require has covered degree l).
func (w *Wigner) Term(l, mprime, m int) complex128 {
	return w.terms[l][mprime][l+m]
}

func (w *Wigner) setD(l, mp, m int, v complex128) { w.terms[l][mp][l+m] = v }
func (w *Wigner) getD(l, mp, m int) complex128    { return w.terms[l][mp][l+m] }

// Require ensures D is valid up to degree lmax.
func (w *Wigner) Require(lmax int) {
	if !w.requireD(lmax) {
		return
	}
	w.applyPhases(lmax)
	w.Lmax = lmax
}

// requireD computes the real Wigner small-d values (stored with zero
// imaginary part) via the standard three-term recurrence in beta.
func (w *Wigner) requireD(lmax int) bool {
	if lmax <= w.Lmax {
		return false
	}
	w.realloc(lmax)

	cb := math.Cos(w.Beta)
	sb := math.Sin(w.Beta)
	cb2 := math.Cos(w.Beta * 0.5)
	sb2 := math.Sin(w.Beta * 0.5)
	tb2 := sb2 / cb2

	w.setD(0, 0, 0, complex(1, 0))
	if lmax == 0 {
		return true
	}

	w.setD(1, 0, 0, complex(cb, 0))
	w.setD(1, 1, -1, complex(sb2*sb2, 0))
	w.setD(1, 1, 0, complex(sb/math.Sqrt2, 0))
	w.setD(1, 1, 1, complex(cb2*cb2, 0))
	w.setD(1, 0, -1, w.getD(1, 1, 0))
	w.setD(1, 0, 1, -w.getD(1, 1, 0))

	if lmax <= 1 {
		return true
	}

	d1_0_0 := w.getD(1, 0, 0)
	d1_1_1 := w.getD(1, 1, 1)
	d1_1_m1 := w.getD(1, 1, -1)

	for l := 2; l <= lmax; l++ {
		fl := float64(l)
		twoLm1 := fl + fl - 1
		sqL := fl * fl
		sqLm1 := (fl - 1) * (fl - 1)

		// block 1: general three-term recurrence in l.
		for mp := 0; mp <= l-2; mp++ {
			sqMp := float64(mp * mp)
			for m := -mp; m <= mp; m++ {
				sqM := float64(m * m)
				a := (fl * twoLm1) / math.Sqrt((sqL-sqMp)*(sqL-sqM))
				b := d1_0_0 - complex(float64(mp*m)/(fl*(fl-1)), 0)
				c := math.Sqrt((sqLm1-sqMp)*(sqLm1-sqM)) / ((fl - 1) * twoLm1)
				v := complex(a, 0) * (b*w.getD(l-1, mp, m) - complex(c, 0)*w.getD(l-2, mp, m))
				w.setD(l, mp, m, v)
			}
		}

		// block 2/3: last two diagonal terms, both signs.
		w.setD(l, l, l, d1_1_1*w.getD(l-1, l-1, l-1))
		w.setD(l, l-1, l-1, (complex(fl, 0)*d1_0_0-complex(fl-1, 0))*w.getD(l-1, l-1, l-1))
		w.setD(l, l, -l, d1_1_m1*w.getD(l-1, l-1, -(l-1)))
		w.setD(l, l-1, -(l-1), (complex(fl, 0)*d1_0_0+complex(fl-1, 0))*w.getD(l-1, l-1, -(l-1)))

		// block 4: last column, descending m'.
		for mp := l; mp >= 1; mp-- {
			v := -math.Sqrt(float64(l+mp)/float64(l-mp+1)) * tb2
			w.setD(l, mp-1, l, complex(v, 0)*w.getD(l, mp, l))
		}

		// block 5: penultimate column.
		for mp := l - 1; mp >= 1; mp-- {
			a := math.Sqrt(float64(l+mp) / (float64(2*l) * float64(l-mp+1)))
			v := (fl*cb - float64(mp) + 1) * a
			w.setD(l, mp-1, l-1, complex(v, 0)*w.getD(l, mp, l)/d1_1_1)
		}

		// block 6: symmetry d_l^{m,m'} = (-1)^{m+m'} d_l^{m',m} for the
		// last two rows.
		for mp := l - 1; mp <= l; mp++ {
			for m := 0; m < mp; m++ {
				w.setD(l, mp, m, complex(phase(mp+m), 0)*w.getD(l, m, mp))
			}
		}

		// block 7: negative-order last column.
		for m := 0; m < l; m++ {
			v := math.Sqrt(float64(l-m)/float64(l+m+1)) * tb2
			w.setD(l, l, -m-1, complex(v, 0)*w.getD(l, l, -m))
		}

		// block 8: negative-order penultimate column.
		for m := 0; m < l; m++ {
			a := math.Sqrt(float64(l-m) / (float64(2*l) * float64(l+m+1)))
			v := (fl*cb + float64(m) + 1) * a
			w.setD(l, l-1, -m-1, complex(v, 0)*w.getD(l, l, -m)/d1_1_1)
		}

		// block 10: fill the remaining rows by symmetry.
		for mp := 0; mp <= l; mp++ {
			for m := mp + 1; m <= l; m++ {
				w.setD(l, mp, m, complex(phase(m+mp), 0)*w.getD(l, m, mp))
				w.setD(l, mp, -m, w.getD(l, m, -mp))
			}
		}
	}

	return true
}

// applyPhases multiplies in e^{-im*alpha} and e^{-im'*gamma} to turn the
// real small-d values into the complex D-matrix.
func (w *Wigner) applyPhases(lmax int) {
	if math.Abs(w.Alpha) >= 1e-5 {
		expa := complex(math.Cos(w.Alpha), -math.Sin(w.Alpha))
		expma := make([]complex128, lmax+1)
		expma[0] = 1
		for m := 1; m <= lmax; m++ {
			expma[m] = expma[m-1] * expa
		}
		for l := 0; l <= lmax; l++ {
			for mp := 0; mp <= l; mp++ {
				for m := l; m >= 1; m-- {
					w.setD(l, mp, -m, w.getD(l, mp, -m)*complexConj(expma[m]))
				}
				for m := 0; m <= l; m++ {
					w.setD(l, mp, m, w.getD(l, mp, m)*expma[m])
				}
			}
		}
	}
	if math.Abs(w.Gamma) >= 1e-5 {
		expg := complex(math.Cos(w.Gamma), -math.Sin(w.Gamma))
		expmg := make([]complex128, lmax+1)
		expmg[0] = 1
		for mp := 1; mp <= lmax; mp++ {
			expmg[mp] = expmg[mp-1] * expg
		}
		for l := 0; l <= lmax; l++ {
			for mp := 0; mp <= l; mp++ {
				for m := -l; m <= l; m++ {
					w.setD(l, mp, m, w.getD(l, mp, m)*expmg[mp])
				}
			}
		}
	}
}

func complexConj(z complex128) complex128 { return complex(real(z), -imag(z)) }

// WignerRepository shares Wigner tables across calls keyed by the exact
// (alpha,beta,gamma) triple (spec.md §9 Design Note: exact keying instead
// of the original's epsilon-tolerant lookup).
type WignerRepository struct {
	mu    sync.Mutex
	byKey map[[3]float64]*Wigner
}

// NewWignerRepository returns an empty repository.
func NewWignerRepository() *WignerRepository {
	return &WignerRepository{byKey: make(map[[3]float64]*Wigner)}
}

// DefaultWignerRepository is the process-wide repository used when a
// caller does not supply its own (spec.md §3).
var DefaultWignerRepository = NewWignerRepository()

// Lookup returns the Wigner table for (alpha,beta,gamma), creating and
// caching it (pre-extended to lmax) if absent, or extending a cached
// table that does not yet reach lmax.
func (r *WignerRepository) Lookup(alpha, beta, gamma float64, lmax int) *Wigner {
	key := [3]float64{alpha, beta, gamma}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byKey[key]
	if !ok {
		w = NewWigner(alpha, beta, gamma, lmax)
		r.byKey[key] = w
		return w
	}
	if lmax > w.Lmax {
		w.Require(lmax)
	}
	return w
}

// ForgetAll clears the repository (spec.md §5: "never evicted until
// explicit forget_all").
func (r *WignerRepository) ForgetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey = make(map[[3]float64]*Wigner)
}
