package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chrlang/chr/internal/model"
)

// This file compiles model.Term — the shared representation for
// matching patterns, guard ask-constraints, and body tell-constraints —
// into Go source expressions evaluated against a solver's BuiltinStore.
// Every helper is a pure expression compiler (no statements emitted): a
// nested arithmetic/compound term becomes one nested Go expression, so
// the emitter's statement-level code (emitGuardFunc, emitBodyFunc) stays
// a flat sequence of ifs and Tell calls rather than a maze of temporary
// variables, matching the occurrence procedure's own "check, fail, move
// on" shape from spec.md §4.4.

var arithOps = map[string]bool{"+": true, "-": true, "*": true, "%": true}
var comparisonOps = map[string]bool{"==": true, "!=": true, "<=": true, "<": true, ">=": true, ">": true}

// compileError records a codegen-time problem the emitter could not
// paper over (e.g. a structural head pattern whose match would require
// binding a variable this emitter doesn't support destructuring into).
// Unlike ParseError these never come from malformed source — only from
// CHR source constructs outside this emitter's supported subset.
type compileError struct {
	Pos     model.Position
	Message string
}

func (e compileError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

func (e *Emitter) errorf(pos model.Position, format string, args ...any) {
	e.Errors = append(e.Errors, compileError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// compileValueExpr renders t as a Go expression of type `any`, evaluated
// against the solver receiver `s`. env names every Go local already
// bound in the enclosing function (head parameters and matching
// left-hand sides) — a Variable not in env is an unsupported
// fresh-variable-in-pattern-position construct (see DESIGN.md's note on
// nested fresh pattern variables); the emitter records a compileError and substitutes `nil`
// rather than emit code referencing an undeclared identifier.
func (e *Emitter) compileValueExpr(env map[string]bool, t model.Term) string {
	switch n := t.(type) {
	case *model.Variable:
		if !env[n.Name] {
			e.errorf(n.Position, "unsupported pattern: %q is bound only inside a nested structural match, which this emitter does not destructure", n.Name)
			return "nil"
		}
		return n.Name
	case *model.IntConst:
		return fmt.Sprintf("int64(%d)", n.Value)
	case *model.FloatConst:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *model.StringConst:
		return strconv.Quote(n.Value)
	case *model.BoolConst:
		return strconv.FormatBool(n.Value)
	case *model.ListTerm:
		return "runtime.List{" + e.compileValueExprList(env, n.Items) + "}"
	case *model.TupleTerm:
		return "runtime.Tuple{" + e.compileValueExprList(env, n.Items) + "}"
	case *model.DictTerm:
		keys := e.compileValueExprList(env, n.Keys)
		vals := e.compileValueExprList(env, n.Values)
		return fmt.Sprintf("runtime.Dict{Keys: []any{%s}, Values: []any{%s}}", keys, vals)
	case *model.Functor:
		return e.compileFunctorValue(env, n)
	default:
		e.errorf(t.Pos(), "unsupported term kind %T", t)
		return "nil"
	}
}

func (e *Emitter) compileValueExprList(env map[string]bool, ts []model.Term) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = e.compileValueExpr(env, t)
	}
	return strings.Join(parts, ", ")
}

func (e *Emitter) compileFunctorValue(env map[string]bool, f *model.Functor) string {
	switch {
	case arithOps[f.Symbol] && len(f.Args) == 2:
		x := e.compileValueExpr(env, f.Args[0])
		y := e.compileValueExpr(env, f.Args[1])
		return fmt.Sprintf("runtime.ArithOrNil(s.Builtin, %q, %s, %s)", f.Symbol, x, y)
	case f.Symbol == "-" && len(f.Args) == 1:
		x := e.compileValueExpr(env, f.Args[0])
		return fmt.Sprintf("runtime.NegOrNil(s.Builtin, %s)", x)
	default:
		// A plain functor in value position is a compound data term
		// (spec.md §3: "a functor f(t1,...,tn)"), not a constraint call —
		// constraint calls only ever appear as whole body items, handled
		// by compileBodyItem before it falls through to this helper.
		args := e.compileValueExprList(env, f.Args)
		return fmt.Sprintf("runtime.Compound{Symbol: %q, Args: []any{%s}}", f.Symbol, args)
	}
}

// compileBoolExpr renders t as a Go `bool` expression: a guard
// ask-constraint, a matching check, or a body-level ask. Every case
// fails gracefully (evaluates to false) rather than erroring when an
// operand turns out to be unresolved, matching spec.md §7's "guard
// failure... local: backtrack, continue iteration" policy — the emitted
// code never distinguishes "proven false" from "could not be proven"
// because ω_r doesn't need to, only the activation dispatcher's
// own delay logic does, and that is driven off the raw argument vector,
// not this expression.
func (e *Emitter) compileBoolExpr(env map[string]bool, t model.Term) string {
	switch n := t.(type) {
	case *model.BoolConst:
		return strconv.FormatBool(n.Value)
	case *model.Variable:
		// A bare variable used where a boolean is expected is read as
		// "is_bound and truthy" — not part of the spec's guard grammar,
		// but a harmless fallback rather than a hard compile error.
		return fmt.Sprintf("runtime.IsBoundValue(s.Builtin, %s)", e.compileValueExpr(env, n))
	case *model.Functor:
		return e.compileFunctorBool(env, n)
	default:
		e.errorf(t.Pos(), "unsupported boolean term kind %T", t)
		return "false"
	}
}

func (e *Emitter) compileFunctorBool(env map[string]bool, f *model.Functor) string {
	switch {
	case f.Symbol == "and" && len(f.Args) == 2:
		return fmt.Sprintf("(%s && %s)", e.compileBoolExpr(env, f.Args[0]), e.compileBoolExpr(env, f.Args[1]))
	case f.Symbol == "or" && len(f.Args) == 2:
		return fmt.Sprintf("(%s || %s)", e.compileBoolExpr(env, f.Args[0]), e.compileBoolExpr(env, f.Args[1]))
	case f.Symbol == "not" && len(f.Args) == 1:
		return fmt.Sprintf("!(%s)", e.compileBoolExpr(env, f.Args[0]))
	case comparisonOps[f.Symbol] && len(f.Args) == 2:
		x := e.compileValueExpr(env, f.Args[0])
		y := e.compileValueExpr(env, f.Args[1])
		return fmt.Sprintf("runtime.CompareTerms(s.Builtin, %q, %s, %s)", f.Symbol, x, y)
	case (f.Symbol == "=" || f.Symbol == "is") && len(f.Args) == 2:
		x := e.compileValueExpr(env, f.Args[0])
		y := e.compileValueExpr(env, f.Args[1])
		return fmt.Sprintf("runtime.AskEq(s.Builtin, %s, %s)", x, y)
	case f.Symbol == "is_bound" && len(f.Args) == 1:
		x := e.compileValueExpr(env, f.Args[0])
		return fmt.Sprintf("runtime.IsBoundValue(s.Builtin, %s)", x)
	case f.Symbol == "false" && len(f.Args) == 0:
		return "false"
	case f.Symbol == "true" && len(f.Args) == 0:
		return "true"
	default:
		e.errorf(f.Position, "unsupported guard/ask form %s/%d, treating as satisfied", f.Symbol, len(f.Args))
		return "true"
	}
}
