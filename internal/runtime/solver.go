package runtime

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Solver is the base every emitted CHR class embeds. It owns one
// BuiltinStore and one ConstraintStore — never a package-level
// singleton, so two solvers (or two goroutines each running their own)
// never share state — plus an optional logger used for trace-level
// diagnostics of constraint activation.
type Solver struct {
	Builtin     *BuiltinStore
	Constraints *ConstraintStore

	// SessionID tags one Solver instance across its lifetime, useful for
	// correlating log lines from concurrently running solves.
	SessionID string

	log hclog.Logger
}

// NewSolver constructs a Solver with fresh, empty stores. A discarding
// logger is installed by default; call SetLogger to attach a real one.
func NewSolver() *Solver {
	return &Solver{
		Builtin:     NewBuiltinStore(),
		Constraints: NewConstraintStore(),
		SessionID:   uuid.NewString(),
		log:         hclog.NewNullLogger(),
	}
}

// SetLogger attaches a logger used for trace-level activation
// diagnostics. Emitted Tell entry points call Trace rather than talking
// to hclog directly, so a solver built without logging configured pays
// only a null-logger's cost.
func (s *Solver) SetLogger(l hclog.Logger) {
	if l == nil {
		l = hclog.NewNullLogger()
	}
	s.log = l.Named(s.SessionID[:8])
}

// Trace logs one constraint-store event at trace level, tagged with the
// solver's session id. Emitted Tell entry points call this when they
// insert and activate a new constraint; it is a no-op unless a real
// logger was attached.
func (s *Solver) Trace(msg string, args ...any) {
	s.log.Trace(msg, args...)
}

// FreshVar allocates a new logic variable from the solver's builtin
// store, for callers that pass unbound variables into Tell. Emitted code
// does not call it.
func (s *Solver) FreshVar() *LogicVariable {
	return s.Builtin.Fresh()
}

// Fail constructs the CHRFalse result a rule body returns when it
// derives the distinguished `false` constraint.
func (s *Solver) Fail(reason string) error {
	return &CHRFalse{Reason: reason}
}

// DumpStore renders every alive constraint whose symbol is listed in
// symbols, sorted by ID, one `#id symbol(args)` line each — the
// runtime-side counterpart to internal/model's Dump, used by tests
// asserting on solver state after a solve.
func (s *Solver) DumpStore(symbols []string) string {
	var all []*StoredConstraint
	for _, sym := range symbols {
		all = append(all, s.Constraints.GetIterator(sym, NoExclude)...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	var b strings.Builder
	for _, c := range all {
		fmt.Fprintf(&b, "#%d %s%s\n", c.ID, c.Symbol, formatArgs(c.Args))
	}
	return b.String()
}

func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
