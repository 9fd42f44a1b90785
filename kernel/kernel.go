// Package kernel supplies the canonical Newton/Coulomb operator sets
// spec.md §1 names as the engine's reference kernel: the 2D complex
// potential 1/(z−z0) and the 3D potential 1/|x−y|, each wired to the
// seven fmm operator functors. fmm itself is kernel-agnostic (spec.md
// §1's Non-goals: "the caller owns the kernel"); this package is the
// one caller the demo CLIs and tests use.
package kernel

func cmplxConj(z complex128) complex128 {
	return complex(real(z), -imag(z))
}
