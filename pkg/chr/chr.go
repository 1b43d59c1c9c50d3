// Package chr is the public surface for embedding the CHR compiler and
// runtime in another Go program. Internal packages (internal/compiler,
// internal/model, internal/runtime) are off limits to importers outside
// this module, mirroring the teacher's own pkg/rage facade over its
// internal lexer/parser/VM packages: pkg/chr re-exports exactly the
// types and functions spec.md §6 calls the "public runtime surface" and
// "Build CLI", nothing more.
package chr

import (
	"github.com/hashicorp/go-hclog"

	"github.com/chrlang/chr/internal/compiler"
	"github.com/chrlang/chr/internal/runtime"
)

// Solver is the base type every compiled CHR class embeds: one
// BuiltinStore plus one ConstraintStore per solve, never process-global
// state. Embed it directly (as generated code does) or hold one
// alongside a hand-written solver.
type Solver = runtime.Solver

// NewSolver returns a fresh, empty Solver.
var NewSolver = runtime.NewSolver

// LogicVariable is a CHR logic variable: an index into a Solver's
// BuiltinStore union-find structure, never meaningful detached from the
// store that allocated it.
type LogicVariable = runtime.LogicVariable

// ConstraintID identifies one constraint occurrence in a Solver's
// ConstraintStore across its lifetime, reused as a trail/history key.
type ConstraintID = runtime.ConstraintID

// AllDifferent, IsBound, GetValue and Unify are exported standalone
// enough to call directly from a hand-written solver or from
// another embedder, rather than only reachable through compiler-emitted
// code — the "first-class exported runtime functions" SPEC_FULL.md calls
// for instead of unexported helpers.
func AllDifferent(ids []ConstraintID) bool { return runtime.AllDifferent(ids) }

func IsBound(s *Solver, v any) bool { return runtime.IsBoundValue(s.Builtin, v) }

func GetValue(s *Solver, v *LogicVariable) (any, error) { return s.Builtin.GetValue(v) }

func Unify(s *Solver, a, b any) (bool, error) { return s.Builtin.Unify(a, b) }

// DumpStore snapshots every alive constraint whose symbol appears in
// symbols, sorted by constraint id — the runtime half of
// SPEC_FULL.md's dump_chr_store() feature.
func DumpStore(s *Solver, symbols []string) string { return s.DumpStore(symbols) }

// Config is chr.yaml's shape: output directory, overwrite policy, and
// verbosity for a compile. See BuildOption for the functional-options
// form used by Build/BuildModule.
type Config = compiler.Config

// LoadConfig reads and parses a chr.yaml file, returning the zero Config
// if none exists.
func LoadConfig(path string) (*Config, error) { return compiler.LoadConfig(path) }

// BuildOptions collects the knobs Build/BuildModule accept, assembled
// via the BuildOption functional-options pattern (the same shape the
// teacher's pkg/rage.StateOption uses to configure a State).
type BuildOptions struct {
	OutputDir string
	Overwrite string
	Verbose   bool
	Logger    hclog.Logger
}

// BuildOption configures a BuildOptions value.
type BuildOption func(*BuildOptions)

// WithOutputDir sets the directory compiled .go files are written to.
// An empty dir (the default) writes beside each .chr source file.
func WithOutputDir(dir string) BuildOption {
	return func(o *BuildOptions) { o.OutputDir = dir }
}

// WithOverwrite sets the overwrite policy: "always", "never", or
// "timestamp" (the default — recompile only if the source changed).
func WithOverwrite(policy string) BuildOption {
	return func(o *BuildOptions) { o.Overwrite = policy }
}

// WithVerbose turns on Debug-level compile diagnostics.
func WithVerbose(v bool) BuildOption {
	return func(o *BuildOptions) { o.Verbose = v }
}

// WithLogger attaches a caller-supplied logger instead of the default
// one Build/BuildModule construct from WithVerbose.
func WithLogger(l hclog.Logger) BuildOption {
	return func(o *BuildOptions) { o.Logger = l }
}

func resolveOptions(cfg *Config, opts []BuildOption) *BuildOptions {
	resolved := &BuildOptions{Overwrite: "timestamp"}
	if cfg != nil {
		if cfg.OutputDir != "" {
			resolved.OutputDir = cfg.OutputDir
		}
		if cfg.Overwrite != "" {
			resolved.Overwrite = cfg.Overwrite
		}
		resolved.Verbose = cfg.Verbose
	}
	for _, opt := range opts {
		opt(resolved)
	}
	if resolved.Logger == nil {
		resolved.Logger = compiler.NewLogger("chr", resolved.Verbose)
	}
	return resolved
}

// Build compiles one .chr source file to Go, the embeddable form of
// chr_compile (spec.md §6). cfg may be nil, in which case defaults
// apply; any opts override both the defaults and cfg.
func Build(inputPath string, cfg *Config, opts ...BuildOption) error {
	o := resolveOptions(cfg, opts)
	return compiler.Compile(inputPath, o.OutputDir, o.Overwrite, o.Logger)
}

// BuildModule compiles every .chr file directly under dir, the
// embeddable form of chr_compile_module.
func BuildModule(dir string, cfg *Config, opts ...BuildOption) error {
	o := resolveOptions(cfg, opts)
	return compiler.CompileModule(dir, o.OutputDir, o.Overwrite, o.Logger)
}

// CompileSource runs the full pipeline over in-memory CHR source text
// and returns the generated Go source, without touching the filesystem —
// useful for tests and for embedders that already have source text
// loaded (e.g. from an editor buffer) rather than a path.
func CompileSource(source, filename, packageName string) (string, []error) {
	return compiler.CompileFile(source, filename, packageName)
}
