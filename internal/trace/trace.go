// Package trace provides opt-in, env-gated debug logging shared across
// aranfmm's packages, mirroring the teacher's NTRU_DEBUG convention.
package trace

import (
	"fmt"
	"io"
	"os"
)

var on = os.Getenv("ARAN_DEBUG") == "1"

// Enabled reports whether ARAN_DEBUG=1 is set in the environment.
func Enabled() bool { return on }

// Printf writes a formatted trace line to w when tracing is enabled.
func Printf(w io.Writer, format string, args ...any) {
	if on {
		fmt.Fprintf(w, format, args...)
	}
}

// Debugf writes a formatted trace line to stderr when tracing is enabled.
func Debugf(format string, args ...any) {
	Printf(os.Stderr, format, args...)
}
