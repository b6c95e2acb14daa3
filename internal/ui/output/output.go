// Package output creates termenv outputs with consistent colour profile and TTY handling.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// ColorProfile returns the colour profile for w.
// NO_COLOR forces Ascii. Files that are not terminals get Ascii unless CLICOLOR_FORCE is set.
// Other writers use the environment's profile.
func ColorProfile(w io.Writer) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if force := os.Getenv("CLICOLOR_FORCE"); force != "" && force != "0" {
		return termenv.EnvColorProfile()
	}
	if _, ok := w.(fder); ok && !IsTerminal(w) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New creates a termenv.Output for w, defaulting to stderr.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(ColorProfile(w)),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}
