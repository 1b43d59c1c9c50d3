package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTerm renders a term back into CHR surface syntax. It is the
// inverse of the parser's term grammar and is used both for diagnostics
// and for the round-trip property (parse, unparse, re-parse yields an
// equal AST).
func FormatTerm(t Term) string {
	switch n := t.(type) {
	case *Variable:
		return "$" + n.Name
	case *IntConst:
		return fmt.Sprintf("%d", n.Value)
	case *FloatConst:
		s := strconv.FormatFloat(n.Value, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case *StringConst:
		return fmt.Sprintf("%q", n.Value)
	case *BoolConst:
		if n.Value {
			return "true"
		}
		return "false"
	case *ListTerm:
		return "[" + formatTermList(n.Items) + "]"
	case *TupleTerm:
		return "(" + formatTermList(n.Items) + ")"
	case *DictTerm:
		parts := make([]string, len(n.Keys))
		for i := range n.Keys {
			parts[i] = FormatTerm(n.Keys[i]) + ": " + FormatTerm(n.Values[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Functor:
		operand := func(a Term) string {
			if f, ok := a.(*Functor); ok && ((len(f.Args) == 2 && isInfix(f.Symbol)) || (len(f.Args) == 1 && (f.Symbol == "-" || f.Symbol == "not"))) {
				return "(" + FormatTerm(a) + ")"
			}
			return FormatTerm(a)
		}
		if len(n.Args) == 2 && isInfix(n.Symbol) {
			return operand(n.Args[0]) + " " + n.Symbol + " " + operand(n.Args[1])
		}
		if len(n.Args) == 1 && n.Symbol == "-" {
			return "-" + operand(n.Args[0])
		}
		if len(n.Args) == 1 && n.Symbol == "not" {
			return "not " + operand(n.Args[0])
		}
		return n.Symbol + "(" + formatTermList(n.Args) + ")"
	default:
		return fmt.Sprintf("<%T>", t)
	}
}

func formatTermList(ts []Term) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = FormatTerm(t)
	}
	return strings.Join(parts, ", ")
}

func isInfix(symbol string) bool {
	switch symbol {
	case "+", "-", "*", "/", "%", "==", "!=", "<=", "<", ">=", ">", "and", "or", "=":
		return true
	}
	return false
}

func formatFunctorList(fs []*Functor) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = FormatTerm(f)
	}
	return strings.Join(parts, ", ")
}

// FormatRule renders a surface rule back into CHR syntax, one line.
func FormatRule(r *Rule) string {
	var b strings.Builder
	if r.Name != "" {
		b.WriteString(r.Name + " @ ")
	}
	switch {
	case len(r.Kept) > 0 && len(r.Removed) > 0:
		b.WriteString(formatFunctorList(r.Kept))
		b.WriteString(" \\ ")
		b.WriteString(formatFunctorList(r.Removed))
		b.WriteString(" <=> ")
	case len(r.Kept) > 0:
		b.WriteString(formatFunctorList(r.Kept))
		b.WriteString(" ==> ")
	default:
		b.WriteString(formatFunctorList(r.Removed))
		b.WriteString(" <=> ")
	}
	if len(r.Guard) > 0 {
		b.WriteString(formatTermList(r.Guard))
		b.WriteString(" | ")
	}
	if len(r.Body) == 0 {
		b.WriteString("true")
	} else {
		b.WriteString(formatTermList(r.Body))
	}
	b.WriteString(".")
	return b.String()
}

// FormatProgram renders a whole surface program back into CHR syntax.
func FormatProgram(p *Program) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("class %s.\n", p.ClassName))
	sigs := make([]string, len(p.Constraints))
	for i, s := range p.Constraints {
		sigs[i] = s.String()
	}
	b.WriteString(fmt.Sprintf("constraints %s.\n", strings.Join(sigs, ", ")))
	for _, r := range p.Rules {
		b.WriteString(FormatRule(r))
		b.WriteString("\n")
	}
	return b.String()
}

// Dump is an indent-accumulating debug printer for any node in the
// pipeline, used interchangeably on surface, normalized, and processed
// forms. It mirrors the teacher's PrintAST: a recursive switch keyed on
// concrete type, with a two-space indent per level, falling back to a
// %T/%v line for anything it doesn't special-case.
func Dump(node any, indent int) string {
	prefix := strings.Repeat("  ", indent)
	var b strings.Builder
	switch n := node.(type) {
	case *Program:
		fmt.Fprintf(&b, "%sProgram %s\n", prefix, n.ClassName)
		for _, r := range n.Rules {
			b.WriteString(Dump(r, indent+1))
		}
	case *Rule:
		fmt.Fprintf(&b, "%sRule %s\n", prefix, FormatRule(n))
	case *ProcessedProgram:
		fmt.Fprintf(&b, "%sProcessedProgram %s\n", prefix, n.ClassName)
		for _, r := range n.Rules {
			b.WriteString(Dump(r, indent+1))
		}
	case *ProcessedRule:
		fmt.Fprintf(&b, "%sProcessedRule %s\n", prefix, n.Name)
		for _, h := range n.Head {
			fmt.Fprintf(&b, "%s  head[%d] %s occ=%d kept=%v\n", prefix, 0, h.Signature(), h.OccurrenceIndex, h.Kept)
		}
	default:
		fmt.Fprintf(&b, "%s%T %v\n", prefix, node, node)
	}
	return b.String()
}
