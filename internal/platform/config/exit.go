package config

import (
	"fmt"
	"os"
	"strings"
)

// Exitf reports a fatal startup error on stderr and terminates the process
// with exit code 1. Command mains call it when configuration cannot be
// parsed, before any logging is set up.
func Exitf(format string, args ...any) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
