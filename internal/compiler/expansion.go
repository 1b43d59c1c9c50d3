package compiler

import "github.com/chrlang/chr/internal/model"

// Expander implements component D: ω_r occurrence-index assignment. Each
// head constraint receives a program-wide index, unique among all head
// occurrences of the same symbol, assigned in program (then rule, then
// head) order — with every rule's removed heads numbered strictly before
// its kept heads, matching the refined operational semantics' preference
// for deleting a matched occurrence's own copy before reactivating the
// partners that merely watched it.
type Expander struct {
	next map[model.Signature]int
}

// NewExpander returns an Expander ready to process one program.
func NewExpander() *Expander {
	return &Expander{next: map[model.Signature]int{}}
}

// ExpandProgram assigns occurrence indices across every rule of prog.
func (e *Expander) ExpandProgram(prog *model.NormalizedProgram) *model.ProcessedProgram {
	out := &model.ProcessedProgram{
		ClassName:   prog.ClassName,
		Constraints: prog.Constraints,
	}
	for _, r := range prog.Rules {
		out.Rules = append(out.Rules, e.expandRule(r))
	}
	out.Occurrences = map[model.Signature]int{}
	for sig, n := range e.next {
		out.Occurrences[sig] = n
	}
	return out
}

func (e *Expander) expandRule(r *model.NormalizedRule) *model.ProcessedRule {
	var head []*model.HeadConstraint
	for _, hp := range r.Removed {
		head = append(head, e.assign(hp, false))
	}
	for _, hp := range r.Kept {
		head = append(head, e.assign(hp, true))
	}
	return &model.ProcessedRule{
		Name:      r.Name,
		Head:      head,
		Matchings: r.Matchings,
		Guard:     r.Guard,
		Body:      r.Body,
		Position:  r.Position,
	}
}

func (e *Expander) assign(hp *model.HeadPattern, kept bool) *model.HeadConstraint {
	sig := hp.Signature()
	idx := e.next[sig]
	e.next[sig] = idx + 1
	return &model.HeadConstraint{
		Symbol:          hp.Symbol,
		OccurrenceIndex: idx,
		Params:          hp.Params,
		Kept:            kept,
		Position:        hp.Position,
	}
}
