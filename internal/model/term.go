package model

import "fmt"

// Term is a recursive CHR value: a logic variable, a constant, or a
// functor applying a symbol to an ordered list of sub-terms.
type Term interface {
	Pos() Position
	termNode()
}

// Variable is a reference to a named logic cell. Two Variable nodes with
// the same Name inside one rule denote the same head/body variable until
// the normalizer linearizes them.
type Variable struct {
	Name     string
	Position Position
}

func (v *Variable) Pos() Position { return v.Position }
func (v *Variable) termNode()     {}

// IntConst is an integer literal.
type IntConst struct {
	Value    int64
	Position Position
}

func (c *IntConst) Pos() Position { return c.Position }
func (c *IntConst) termNode()     {}

// FloatConst is a floating point literal.
type FloatConst struct {
	Value    float64
	Position Position
}

func (c *FloatConst) Pos() Position { return c.Position }
func (c *FloatConst) termNode()     {}

// StringConst is a quoted string literal.
type StringConst struct {
	Value    string
	Position Position
}

func (c *StringConst) Pos() Position { return c.Position }
func (c *StringConst) termNode()     {}

// BoolConst is a `true`/`false` literal.
type BoolConst struct {
	Value    bool
	Position Position
}

func (c *BoolConst) Pos() Position { return c.Position }
func (c *BoolConst) termNode()     {}

// ListTerm is a `[t, ...]` literal.
type ListTerm struct {
	Items    []Term
	Position Position
}

func (l *ListTerm) Pos() Position { return l.Position }
func (l *ListTerm) termNode()     {}

// TupleTerm is a `(t, t, ...)` literal; the grammar requires at least two
// elements (a single parenthesized term is just grouping, not a tuple).
type TupleTerm struct {
	Items    []Term
	Position Position
}

func (t *TupleTerm) Pos() Position { return t.Position }
func (t *TupleTerm) termNode()     {}

// DictTerm is a `{k: v, ...}` literal. Keys must be ground (checked by the
// parser at parse time, since the grammar forbids a bare variable key).
type DictTerm struct {
	Keys     []Term
	Values   []Term
	Position Position
}

func (d *DictTerm) Pos() Position { return d.Position }
func (d *DictTerm) termNode()     {}

// Functor is `symbol(arg1, ..., argN)`. Infix and prefix operators
// (`+`, `==`, `and`, `not`, `=`, ...) desugar to a Functor whose Symbol is
// the operator spelling, per the parser's precedence table.
type Functor struct {
	Symbol   string
	Args     []Term
	Position Position
}

func (f *Functor) Pos() Position { return f.Position }
func (f *Functor) termNode()     {}

// Signature is the (symbol, arity) key constraints are grouped and
// dispatched by.
type Signature struct {
	Symbol string
	Arity  int
}

func (s Signature) String() string { return fmt.Sprintf("%s/%d", s.Symbol, s.Arity) }

// SignatureOf returns the declared-constraint signature of a functor.
func SignatureOf(f *Functor) Signature { return Signature{Symbol: f.Symbol, Arity: len(f.Args)} }

// Vars returns the set of variable names occurring anywhere in term,
// preserving first-occurrence order.
func Vars(t Term) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(Term)
	walk = func(t Term) {
		switch n := t.(type) {
		case *Variable:
			if !seen[n.Name] {
				seen[n.Name] = true
				out = append(out, n.Name)
			}
		case *ListTerm:
			for _, it := range n.Items {
				walk(it)
			}
		case *TupleTerm:
			for _, it := range n.Items {
				walk(it)
			}
		case *DictTerm:
			for _, k := range n.Keys {
				walk(k)
			}
			for _, v := range n.Values {
				walk(v)
			}
		case *Functor:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}

// IsGround reports whether term contains no variables.
func IsGround(t Term) bool {
	return len(Vars(t)) == 0
}

// Equal reports structural equality between two terms, ignoring Position.
// Used by this package's tests.
func Equal(a, b Term) bool {
	switch x := a.(type) {
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name
	case *IntConst:
		y, ok := b.(*IntConst)
		return ok && x.Value == y.Value
	case *FloatConst:
		y, ok := b.(*FloatConst)
		return ok && x.Value == y.Value
	case *StringConst:
		y, ok := b.(*StringConst)
		return ok && x.Value == y.Value
	case *BoolConst:
		y, ok := b.(*BoolConst)
		return ok && x.Value == y.Value
	case *ListTerm:
		y, ok := b.(*ListTerm)
		return ok && equalTermSlices(x.Items, y.Items)
	case *TupleTerm:
		y, ok := b.(*TupleTerm)
		return ok && equalTermSlices(x.Items, y.Items)
	case *DictTerm:
		y, ok := b.(*DictTerm)
		return ok && equalTermSlices(x.Keys, y.Keys) && equalTermSlices(x.Values, y.Values)
	case *Functor:
		y, ok := b.(*Functor)
		return ok && x.Symbol == y.Symbol && equalTermSlices(x.Args, y.Args)
	default:
		return false
	}
}

func equalTermSlices(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
