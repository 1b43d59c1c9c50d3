package compiler

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// NewLogger returns the hclog.Logger the build driver and CLI pass down
// into CompileFile/CompileModule. verbose maps to Debug level so
// parse/normalize/expand/emit progress is visible; otherwise the logger
// stays at Warn, matching the teacher's "quiet unless something's wrong"
// default (its VM carries an optional logger the same way).
func NewLogger(name string, verbose bool) hclog.Logger {
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  level,
		Output: os.Stderr,
	})
}
