package compiler

import (
	"fmt"

	"github.com/chrlang/chr/internal/model"
)

// Normalizer implements component C: head-variable linearization. Every
// head constraint's parameters are reduced to distinct fresh variable
// names; anything that isn't already a bare, first-occurrence variable —
// a literal, a nested functor, a repeated variable — is lifted out into a
// Matching that the emitted occurrence procedure checks after
// destructuring the runtime constraint's argument vector.
type Normalizer struct {
	freshCounter int
}

// NewNormalizer returns a Normalizer ready to process one program. A
// fresh instance should be used per program so generated variable names
// stay predictable across runs.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeProgram normalizes every rule of prog.
func (n *Normalizer) NormalizeProgram(prog *model.Program) *model.NormalizedProgram {
	out := &model.NormalizedProgram{
		ClassName:   prog.ClassName,
		Constraints: prog.Constraints,
	}
	for _, r := range prog.Rules {
		out.Rules = append(out.Rules, n.NormalizeRule(r))
	}
	return out
}

func (n *Normalizer) freshName(base string) string {
	n.freshCounter++
	return fmt.Sprintf("_%s%d", base, n.freshCounter)
}

// NormalizeRule linearizes a single rule's heads. seen tracks variable
// names already bound by an earlier head parameter in this rule, so a
// variable repeated across (or within) head atoms becomes a Matching
// rather than being bound twice.
func (n *Normalizer) NormalizeRule(r *model.Rule) *model.NormalizedRule {
	seen := map[string]bool{}
	var matchings []*model.Matching

	linearize := func(atoms []*model.Functor) []*model.HeadPattern {
		patterns := make([]*model.HeadPattern, 0, len(atoms))
		for _, atom := range atoms {
			params := make([]string, 0, len(atom.Args))
			for _, arg := range atom.Args {
				params = append(params, n.linearizeArg(arg, seen, &matchings))
			}
			patterns = append(patterns, &model.HeadPattern{
				Symbol:   atom.Symbol,
				Params:   params,
				Position: atom.Position,
			})
		}
		return patterns
	}

	removed := linearize(r.Removed)
	kept := linearize(r.Kept)

	return &model.NormalizedRule{
		Name:      r.Name,
		Kept:      kept,
		Removed:   removed,
		Matchings: matchings,
		Guard:     r.Guard,
		Body:      r.Body,
		Position:  r.Position,
	}
}

// linearizeArg reduces one head-constraint argument to a fresh parameter
// name, recording whatever equality the reduction requires.
func (n *Normalizer) linearizeArg(arg model.Term, seen map[string]bool, matchings *[]*model.Matching) string {
	if v, ok := arg.(*model.Variable); ok {
		if !seen[v.Name] {
			seen[v.Name] = true
			return v.Name
		}
		// Repeated occurrence: the second and later mentions must match
		// the first, not rebind it.
		fresh := n.freshName("v")
		*matchings = append(*matchings, &model.Matching{
			Fresh:    fresh,
			Pattern:  v,
			Position: v.Position,
		})
		return fresh
	}

	fresh := n.freshName("t")
	*matchings = append(*matchings, &model.Matching{
		Fresh:    fresh,
		Pattern:  n.markSeenVars(arg, seen),
		Position: arg.Pos(),
	})
	return fresh
}

// markSeenVars walks a structural pattern and records any variables it
// binds for the first time, so a later head argument referencing the
// same variable is correctly treated as a repeated occurrence rather than
// a fresh binding.
func (n *Normalizer) markSeenVars(t model.Term, seen map[string]bool) model.Term {
	switch node := t.(type) {
	case *model.Variable:
		seen[node.Name] = true
	case *model.ListTerm:
		for _, it := range node.Items {
			n.markSeenVars(it, seen)
		}
	case *model.TupleTerm:
		for _, it := range node.Items {
			n.markSeenVars(it, seen)
		}
	case *model.DictTerm:
		for _, k := range node.Keys {
			n.markSeenVars(k, seen)
		}
		for _, v := range node.Values {
			n.markSeenVars(v, seen)
		}
	case *model.Functor:
		for _, a := range node.Args {
			n.markSeenVars(a, seen)
		}
	}
	return t
}
