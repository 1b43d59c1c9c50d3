package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chrlang/chr/internal/model"
)

// Emitter implements component E: it walks a ProcessedProgram and builds
// a TargetIR File containing one occurrence procedure per head
// constraint occurrence, one activation dispatcher per declared
// constraint symbol, one guard/body helper per occurrence, and the
// public Tell entry points a caller (or another occurrence's body)
// invokes to post a new constraint.
//
// This mirrors the shape of the original prototype's Emitter class: a
// nested per-occurrence procedure that walks its partners, checks
// guards, and on success deletes the removed heads and runs the body —
// just retargeted from building host-language ast nodes to building Go
// TargetIR/text, since Go has no runtime eval to hand generated ASTs to.
type Emitter struct {
	prog        *model.ProcessedProgram
	PackageName string

	// Errors accumulates compileError values raised by compile_term.go's
	// expression translators — CHR source constructs outside this
	// emitter's supported subset. Emit() still returns a File even when
	// Errors is non-empty; the driver decides whether to write it out.
	Errors []error
}

// NewEmitter returns an Emitter for prog, emitting into a package named
// packageName.
func NewEmitter(prog *model.ProcessedProgram, packageName string) *Emitter {
	return &Emitter{prog: prog, PackageName: packageName}
}

// solverTypeName derives the embedding struct's name from the class name.
func (e *Emitter) solverTypeName() string {
	return e.prog.ClassName + "Solver"
}

func (e *Emitter) declares(sig model.Signature) bool {
	for _, s := range e.prog.Constraints {
		if s == sig {
			return true
		}
	}
	return false
}

// Emit produces the TargetIR File for the whole program.
func (e *Emitter) Emit() *File {
	f := &File{
		Package: e.PackageName,
		Doc:     fmt.Sprintf("Code generated from a %s CHR class. DO NOT EDIT.", e.prog.ClassName),
		Imports: []string{
			"github.com/chrlang/chr/internal/runtime",
		},
	}

	f.Decls = append(f.Decls, e.emitSolverType())
	f.Decls = append(f.Decls, e.emitConstructor())

	for _, sig := range e.prog.Constraints {
		f.Decls = append(f.Decls, e.emitTellFunc(sig))
		f.Decls = append(f.Decls, e.emitActivateFunc(sig))
	}

	for _, rule := range e.prog.Rules {
		for _, scheme := range rule.OccurrenceSchemes() {
			f.Decls = append(f.Decls, e.emitGuardFunc(rule, scheme))
			f.Decls = append(f.Decls, e.emitBodyFunc(rule, scheme))
			f.Decls = append(f.Decls, e.emitOccurrence(rule, scheme))
		}
	}

	return f
}

func (e *Emitter) emitSolverType() Decl {
	return &TypeDecl{
		Doc:  fmt.Sprintf("%s is the constraint store and builtin store for one %s solve.", e.solverTypeName(), e.prog.ClassName),
		Name: e.solverTypeName(),
		Def:  "struct {\n\t*runtime.Solver\n}",
	}
}

func (e *Emitter) emitConstructor() Decl {
	name := "New" + e.solverTypeName()
	return &FuncDecl{
		Doc:     fmt.Sprintf("%s returns a fresh, empty %s.", name, e.solverTypeName()),
		Name:    name,
		Results: []Param{{Type: "*" + e.solverTypeName()}},
		Body: []Stmt{
			&ReturnStmt{Results: []Expr{&RawExpr{Text: fmt.Sprintf("&%s{Solver: runtime.NewSolver()}", e.solverTypeName())}}},
		},
	}
}

func argNames(arity int) []Param {
	params := make([]Param, arity)
	for i := range params {
		params[i] = Param{Name: fmt.Sprintf("a%d", i), Type: "any"}
	}
	return params
}

func argExprs(arity int) []Expr {
	args := make([]Expr, arity)
	for i := range args {
		args[i] = &Ident{Name: fmt.Sprintf("a%d", i)}
	}
	return args
}

// tellFuncName/activateFuncName follow a fixed naming scheme so the two
// halves (public entry point, internal dispatcher) and every occurrence
// procedure referencing them agree without a symbol table.
func tellFuncName(sig model.Signature) string { return "Tell" + exportedName(sig.Symbol) }
func activateFuncName(sig model.Signature) string {
	return "activate" + exportedName(sig.Symbol)
}
func occFuncName(ruleName string, occIndex int) string {
	return fmt.Sprintf("occ%s_%d", exportedName(ruleName), occIndex)
}

func exportedName(symbol string) string {
	parts := strings.FieldsFunc(symbol, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	if b.Len() == 0 {
		return "Constraint"
	}
	return b.String()
}

// emitTellFunc builds the public entry point for one declared
// constraint: insert into the constraint store, then hand the new ID to
// the activation dispatcher.
func (e *Emitter) emitTellFunc(sig model.Signature) Decl {
	recv := &Param{Name: "s", Type: "*" + e.solverTypeName()}
	params := argNames(sig.Arity)
	body := []Stmt{
		&RawStmt{Text: fmt.Sprintf(
			"args := []any{%s}\n"+
				"id := s.Constraints.Insert(%q, args)\n"+
				"s.Trace(\"activate\", \"symbol\", %q, \"id\", id)\n"+
				"return s.%s(id, %s)",
			joinIdents(argExprs(sig.Arity)), sig.Symbol, sig.Symbol, activateFuncName(sig), joinIdents(argExprs(sig.Arity)))},
	}
	return &FuncDecl{
		Doc:     fmt.Sprintf("%s posts a new %s/%d constraint and runs it to fixpoint against every occurrence that watches it.", tellFuncName(sig), sig.Symbol, sig.Arity),
		Name:    tellFuncName(sig),
		Recv:    recv,
		Params:  params,
		Results: []Param{{Type: "error"}},
		Body:    body,
	}
}

func joinIdents(es []Expr) string {
	parts := make([]string, len(es))
	for i, ex := range es {
		parts[i] = (&printer{}).expr(ex)
	}
	return strings.Join(parts, ", ")
}

// emitActivateFunc builds the dispatcher that tries, in textual order,
// every occurrence of sig's constraint until one fires or all are
// exhausted — the refined semantics' "try occurrences in order, commit
// to the first success" activation rule. If none fires and the
// constraint's own arguments still carry unbound logic variables, the
// dispatcher delays itself on those variables (spec.md §4.4(b)):
// activation is retried once any of them becomes bound, rather than
// the constraint sitting inert forever after one failed pass.
func (e *Emitter) emitActivateFunc(sig model.Signature) Decl {
	recv := &Param{Name: "s", Type: "*" + e.solverTypeName()}
	params := append([]Param{{Name: "id", Type: "runtime.ConstraintID"}}, argNames(sig.Arity)...)

	var occCalls []string
	for _, rule := range e.prog.Rules {
		for _, scheme := range rule.OccurrenceSchemes() {
			if scheme.Active.Signature() != sig {
				continue
			}
			occCalls = append(occCalls, fmt.Sprintf(
				"if !s.Constraints.Alive(id) {\n\t\treturn nil\n\t}\n\tif fired, err := s.%s(id, %s); err != nil {\n\t\treturn err\n\t} else if fired {\n\t\treturn nil\n\t}",
				occFuncName(rule.Name, scheme.ActivePos), joinIdents(argExprs(sig.Arity))))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(occCalls, "\n\t"))
	if len(occCalls) > 0 {
		b.WriteString("\n\t")
	}
	b.WriteString("if !s.Constraints.Alive(id) {\n\t\treturn nil\n\t}\n\t")
	fmt.Fprintf(&b, "watchArgs := []any{%s}\n\t", joinIdents(argExprs(sig.Arity)))
	b.WriteString("var watch []*runtime.LogicVariable\n\t")
	b.WriteString("for _, v := range watchArgs {\n\t\t")
	b.WriteString("if lv, ok := v.(*runtime.LogicVariable); ok && !s.Builtin.IsBound(lv) {\n\t\t\t")
	b.WriteString("watch = append(watch, lv)\n\t\t}\n\t}\n\t")
	b.WriteString("if len(watch) > 0 {\n\t\t")
	fmt.Fprintf(&b, "s.Builtin.Delay(watch, &runtime.Suspension{\n\t\t\tOccurrenceKey: %q,\n\t\t\tCapturedArgs:  watchArgs,\n\t\t\tResume: func([]any) error {\n\t\t\t\treturn s.%s(id, %s)\n\t\t\t},\n\t\t})\n\t}",
		activateFuncName(sig), activateFuncName(sig), joinIdents(argExprs(sig.Arity)))

	body := []Stmt{&RawStmt{Text: b.String()}, &ReturnStmt{Results: []Expr{&Ident{Name: "nil"}}}}

	return &FuncDecl{
		Doc:     fmt.Sprintf("%s tries every rule occurrence matching %s/%d in turn, delaying on any still-unbound argument if none fires.", activateFuncName(sig), sig.Symbol, sig.Arity),
		Name:    activateFuncName(sig),
		Recv:    recv,
		Params:  params,
		Results: []Param{{Type: "error"}},
		Body:    body,
	}
}

// emitOccurrence builds one occurrence procedure: destructure the active
// constraint's arguments, loop over partner candidates for every other
// head constraint, reject combinations that reuse one constraint in two
// head slots, check the lifted head matchings and the guard, and on
// success delete the removed heads, record history for propagation
// rules, and run the body. Each candidate combination that fails a
// matching or the guard resets the builtin store's trail back to the
// mark taken before they ran (failure is local to the combination, never
// to the whole occurrence) and moves on to the next candidate.
func (e *Emitter) emitOccurrence(rule *model.ProcessedRule, scheme *model.OccurrenceScheme) Decl {
	recv := &Param{Name: "s", Type: "*" + e.solverTypeName()}
	sig := scheme.Active.Signature()
	params := append([]Param{{Name: "activeID", Type: "runtime.ConstraintID"}}, argNames(sig.Arity)...)

	var b strings.Builder
	e.writeActiveBindings(&b, scheme.Active)

	indent := ""
	hasLoop := len(scheme.Partners) > 0
	for _, partner := range scheme.Partners {
		psig := partner.Head.Signature()
		loopVar := fmt.Sprintf("p%d", partner.Pos)
		fmt.Fprintf(&b, "%sfor _, %s := range s.Constraints.GetIterator(%q, activeID) {\n", indent, loopVar, psig.Symbol)
		indent += "\t"
		e.writePartnerBindings(&b, indent, partner.Head, loopVar)
	}

	skip := "continue"
	if !hasLoop {
		skip = "return false, nil"
	}

	ids := []string{"activeID"}
	for _, partner := range scheme.Partners {
		ids = append(ids, fmt.Sprintf("p%d.ID", partner.Pos))
	}
	if len(ids) > 1 {
		fmt.Fprintf(&b, "%sif !runtime.AllDifferent([]runtime.ConstraintID{%s}) {\n%s\t%s\n%s}\n",
			indent, strings.Join(ids, ", "), indent, skip, indent)
	}

	// historyIDs orders the same id set by head position rather than by
	// active-then-partner-traversal order: two occurrences of the same
	// rule (one with head0 active, one with head1 active) must compute
	// the identical history key for the same underlying pair of stored
	// constraints, or a symmetric propagation rule could fire twice on
	// one pair — once from each occurrence's perspective.
	type posExpr struct {
		pos  int
		expr string
	}
	ordered := []posExpr{{pos: scheme.ActivePos, expr: "activeID"}}
	for _, partner := range scheme.Partners {
		ordered = append(ordered, posExpr{pos: partner.Pos, expr: fmt.Sprintf("p%d.ID", partner.Pos)})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].pos < ordered[j].pos })
	historyIDs := make([]string, len(ordered))
	for i, pe := range ordered {
		historyIDs[i] = pe.expr
	}

	env := map[string]bool{}
	for _, name := range scheme.Active.Params {
		env[name] = true
	}
	for _, partner := range scheme.Partners {
		for _, name := range partner.Head.Params {
			env[name] = true
		}
	}

	fmt.Fprintf(&b, "%smark := s.Builtin.Mark()\n", indent)
	for _, m := range scheme.Matchings {
		cond := e.compileValueExpr(env, &model.Variable{Name: m.Fresh, Position: m.Position})
		pat := e.compileValueExpr(env, m.Pattern)
		fmt.Fprintf(&b, "%sif ok, err := s.Builtin.Unify(%s, %s); err != nil {\n%s\treturn false, err\n%s} else if !ok {\n%s\ts.Builtin.Reset(mark)\n%s\t%s\n%s}\n",
			indent, cond, pat, indent, indent, indent, indent, skip, indent)
	}

	fmt.Fprintf(&b, "%sok, err := s.%s(%s)\n", indent, guardFuncName(rule.Name, scheme.ActivePos), guardArgList(scheme))
	fmt.Fprintf(&b, "%sif err != nil {\n%s\treturn false, err\n%s}\n", indent, indent, indent)
	fmt.Fprintf(&b, "%sif !ok {\n%s\ts.Builtin.Reset(mark)\n%s\t%s\n%s}\n", indent, indent, indent, skip, indent)

	if allKept(scheme) {
		fmt.Fprintf(&b, "%sif s.Constraints.InHistory(%q, []runtime.ConstraintID{%s}) {\n%s\ts.Builtin.Reset(mark)\n%s\t%s\n%s}\n",
			indent, rule.Name, strings.Join(historyIDs, ", "), indent, indent, skip, indent)
		fmt.Fprintf(&b, "%ss.Constraints.AddToHistory(%q, []runtime.ConstraintID{%s})\n", indent, rule.Name, strings.Join(historyIDs, ", "))
	}

	fmt.Fprintf(&b, "%ss.Builtin.Commit(mark)\n", indent)
	for _, partner := range scheme.Partners {
		if partner.Head.Kept {
			continue
		}
		fmt.Fprintf(&b, "%ss.Constraints.Delete(p%d.ID)\n", indent, partner.Pos)
	}
	if !scheme.Active.Kept {
		fmt.Fprintf(&b, "%ss.Constraints.Delete(activeID)\n", indent)
	}
	fmt.Fprintf(&b, "%sif err := s.%s(%s); err != nil {\n%s\treturn false, err\n%s}\n",
		indent, bodyFuncName(rule.Name, scheme.ActivePos), guardArgList(scheme), indent, indent)
	fmt.Fprintf(&b, "%sreturn true, nil\n", indent)

	for range scheme.Partners {
		indent = indent[:len(indent)-1]
		fmt.Fprintf(&b, "%s}\n", indent)
	}
	if hasLoop {
		fmt.Fprintf(&b, "return false, nil\n")
	}

	body := []Stmt{&RawStmt{Text: b.String()}}

	return &FuncDecl{
		Doc:     fmt.Sprintf("%s is the %s rule's occurrence %d procedure for %s.", occFuncName(rule.Name, scheme.ActivePos), rule.Name, scheme.ActivePos, sig),
		Name:    occFuncName(rule.Name, scheme.ActivePos),
		Recv:    recv,
		Params:  params,
		Results: []Param{{Type: "bool"}, {Type: "error"}},
		Body:    body,
	}
}

func allKept(scheme *model.OccurrenceScheme) bool {
	if !scheme.Active.Kept {
		return false
	}
	for _, p := range scheme.Partners {
		if !p.Head.Kept {
			return false
		}
	}
	return true
}

func guardFuncName(ruleName string, activePos int) string {
	return fmt.Sprintf("guard%s_%d", exportedName(ruleName), activePos)
}

func bodyFuncName(ruleName string, activePos int) string {
	return fmt.Sprintf("body%s_%d", exportedName(ruleName), activePos)
}

// guardArgList renders the flattened head-parameter list (active first,
// then partners in head order) that both the generated guard- and
// body-helper calls and their declarations share.
func guardArgList(scheme *model.OccurrenceScheme) string {
	names := append([]string{}, scheme.Active.Params...)
	for _, p := range scheme.Partners {
		names = append(names, p.Head.Params...)
	}
	return strings.Join(names, ", ")
}

// guardParams is guardArgList's declaration-side counterpart: every head
// parameter, typed `any`, for the guard/body helper signatures.
func guardParams(scheme *model.OccurrenceScheme) []Param {
	names := append([]string{}, scheme.Active.Params...)
	for _, p := range scheme.Partners {
		names = append(names, p.Head.Params...)
	}
	params := make([]Param, len(names))
	for i, n := range names {
		params[i] = Param{Name: n, Type: "any"}
	}
	return params
}

func schemeEnv(scheme *model.OccurrenceScheme) map[string]bool {
	env := map[string]bool{}
	for _, n := range scheme.Active.Params {
		env[n] = true
	}
	for _, p := range scheme.Partners {
		for _, n := range p.Head.Params {
			env[n] = true
		}
	}
	return env
}

// emitGuardFunc compiles scheme.Guard into a single boolean-returning
// helper, conjoining every guard term. Guard terms are compiled as pure
// expressions (compile_term.go): an unresolved operand degrades to
// false rather than an error, so the helper's error return always comes
// back nil — it exists so the occurrence procedure's call site reads the
// same as any other fallible step.
func (e *Emitter) emitGuardFunc(rule *model.ProcessedRule, scheme *model.OccurrenceScheme) Decl {
	env := schemeEnv(scheme)
	conds := make([]string, 0, len(scheme.Guard))
	for _, g := range scheme.Guard {
		conds = append(conds, e.compileBoolExpr(env, g))
	}
	expr := "true"
	if len(conds) > 0 {
		expr = strings.Join(conds, " &&\n\t\t")
	}

	recv := &Param{Name: "s", Type: "*" + e.solverTypeName()}
	name := guardFuncName(rule.Name, scheme.ActivePos)
	return &FuncDecl{
		Doc:     fmt.Sprintf("%s is the %s rule's guard for its occurrence %d.", name, rule.Name, scheme.ActivePos),
		Name:    name,
		Recv:    recv,
		Params:  guardParams(scheme),
		Results: []Param{{Type: "bool"}, {Type: "error"}},
		Body: []Stmt{
			&RawStmt{Text: fmt.Sprintf("return %s, nil", expr)},
		},
	}
}

// emitBodyFunc compiles scheme.Body into a sequence of statements: CHR
// constraint calls become Tell invocations, `$X = t` either declares a
// fresh Go local (when $X is not yet in scope) or asks the builtin store
// to unify it with an already-bound slot, `false` returns a Fail, and
// any other body term is compiled as a boolean assertion that fails the
// whole body when it doesn't hold.
func (e *Emitter) emitBodyFunc(rule *model.ProcessedRule, scheme *model.OccurrenceScheme) Decl {
	env := schemeEnv(scheme)
	var b strings.Builder
	for _, item := range scheme.Body {
		e.compileBodyItem(&b, env, item)
	}
	b.WriteString("return nil\n")

	recv := &Param{Name: "s", Type: "*" + e.solverTypeName()}
	name := bodyFuncName(rule.Name, scheme.ActivePos)
	return &FuncDecl{
		Doc:     fmt.Sprintf("%s is the %s rule's body for its occurrence %d.", name, rule.Name, scheme.ActivePos),
		Name:    name,
		Recv:    recv,
		Params:  guardParams(scheme),
		Results: []Param{{Type: "error"}},
		Body:    []Stmt{&RawStmt{Text: b.String()}},
	}
}

// compileBodyItem renders one body term as one or more Go statements
// into b, mutating env when the term introduces a fresh local (an
// unseen variable on either side of `=`).
func (e *Emitter) compileBodyItem(b *strings.Builder, env map[string]bool, item model.Term) {
	f, ok := item.(*model.Functor)
	if !ok {
		// A bare variable or constant as a whole body item has no CHR
		// meaning; treat it as a truthy assertion for robustness.
		fmt.Fprintf(b, "if !(%s) {\n\treturn s.Fail(\"assertion failed\")\n}\n", e.compileBoolExpr(env, item))
		return
	}

	sig := model.SignatureOf(f)
	switch {
	case e.declares(sig):
		args := make([]string, len(f.Args))
		b.WriteString("{\n")
		for i, a := range f.Args {
			args[i] = fmt.Sprintf("tellArg%d", i)
			fmt.Fprintf(b, "var %s any = %s\n", args[i], e.compileValueExpr(env, a))
			fmt.Fprintf(b, "if %s == nil {\n\treturn s.Fail(%q)\n}\n", args[i], "unresolved argument to "+sig.String())
		}
		fmt.Fprintf(b, "if err := s.%s(%s); err != nil {\n\treturn err\n}\n}\n", tellFuncName(sig), strings.Join(args, ", "))
	case f.Symbol == "false" && len(f.Args) == 0:
		b.WriteString("return s.Fail(\"false derived\")\n")
	case f.Symbol == "=" && len(f.Args) == 2:
		e.compileBodyUnify(b, env, f.Args[0], f.Args[1])
	default:
		fmt.Fprintf(b, "if !(%s) {\n\treturn s.Fail(\"assertion failed\")\n}\n", e.compileBoolExpr(env, f))
	}
}

func (e *Emitter) compileBodyUnify(b *strings.Builder, env map[string]bool, lhs, rhs model.Term) {
	if v, isVar := lhs.(*model.Variable); isVar && !env[v.Name] {
		fmt.Fprintf(b, "%s := %s\n", v.Name, e.compileValueExpr(env, rhs))
		env[v.Name] = true
		return
	}
	if v, isVar := rhs.(*model.Variable); isVar && !env[v.Name] {
		fmt.Fprintf(b, "%s := %s\n", v.Name, e.compileValueExpr(env, lhs))
		env[v.Name] = true
		return
	}
	x := e.compileValueExpr(env, lhs)
	y := e.compileValueExpr(env, rhs)
	fmt.Fprintf(b, "if ok, err := s.Builtin.Unify(%s, %s); err != nil {\n\treturn err\n} else if !ok {\n\treturn s.Fail(\"unification failed\")\n}\n", x, y)
}

// writeActiveBindings declares local variables for the active
// constraint's parameters, bound to its argument slots a0..aN.
func (e *Emitter) writeActiveBindings(b *strings.Builder, h *model.HeadConstraint) {
	for i, p := range h.Params {
		fmt.Fprintf(b, "%s := a%d\n", p, i)
	}
}

// writePartnerBindings declares local variables for one partner's
// parameters, bound to its stored argument slots.
func (e *Emitter) writePartnerBindings(b *strings.Builder, indent string, h *model.HeadConstraint, loopVar string) {
	for i, p := range h.Params {
		fmt.Fprintf(b, "%s%s := %s.Args[%d]\n", indent, p, loopVar, i)
	}
}
