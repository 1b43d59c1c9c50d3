package model

// Rule is a surface-syntax CHR rule as produced by the parser:
//
//	name @ Kept \ Removed <=> Guard | Body .
//
// Simplification rules have an empty Kept; propagation rules have an
// empty Removed; simpagation rules have both. At least one of Kept,
// Removed is non-empty (checked by the parser, §8 property 9).
type Rule struct {
	Name     string
	Kept     []*Functor
	Removed  []*Functor
	Guard    []Term
	Body     []Term
	Position Position
}

// Matching is an equality lifted out of a head pattern during
// normalization: the fresh head variable Fresh must structurally match
// Pattern, which may itself mention other head variables.
type Matching struct {
	Fresh    string
	Pattern  Term
	Position Position
}

// HeadPattern is a normalized head constraint: every parameter is a
// distinct variable name, fresh or first-occurrence. Structural patterns
// and repeated variables have been lifted into the owning rule's
// Matchings by the normalizer.
type HeadPattern struct {
	Symbol   string
	Params   []string
	Position Position
}

func (h *HeadPattern) Signature() Signature { return Signature{Symbol: h.Symbol, Arity: len(h.Params)} }

// NormalizedRule is the output of the normalizer (component C): head
// variables are linearized, and matchings carry the equalities and
// structural patterns the original heads expressed.
type NormalizedRule struct {
	Name      string
	Kept      []*HeadPattern
	Removed   []*HeadPattern
	Matchings []*Matching
	Guard     []Term
	Body      []Term
	Position  Position
}

// HeadConstraint is a head pattern assigned its occurrence index by ω_r
// expansion (component D): unique within the program per symbol, with
// removed heads numbered before kept heads within a rule.
type HeadConstraint struct {
	Symbol          string
	OccurrenceIndex int
	Params          []string
	Kept            bool
	Position        Position
}

func (h *HeadConstraint) Signature() Signature { return Signature{Symbol: h.Symbol, Arity: len(h.Params)} }

// ProcessedRule is a normalized rule whose heads have been flattened into
// one occurrence-indexed list, removed heads first, in rule-textual order.
type ProcessedRule struct {
	Name      string
	Head      []*HeadConstraint
	Matchings []*Matching
	Guard     []Term
	Body      []Term
	Position  Position
}

// PartnerRef pairs a head constraint with its position in ProcessedRule.Head,
// i.e. its slot in the rule's nested partner-iteration loops.
type PartnerRef struct {
	Pos  int
	Head *HeadConstraint
}

// OccurrenceScheme is one driving scheme for a single occurrence of a
// rule's head: the active slot plus the remaining partner slots.
type OccurrenceScheme struct {
	RuleName  string
	ActivePos int
	Active    *HeadConstraint
	Partners  []PartnerRef
	Matchings []*Matching
	Guard     []Term
	Body      []Term
}

// OccurrenceSchemes yields one scheme per head constraint in r.Head, with
// that constraint as the active slot and the rest as partners, in head
// order.
func (r *ProcessedRule) OccurrenceSchemes() []*OccurrenceScheme {
	schemes := make([]*OccurrenceScheme, 0, len(r.Head))
	for i, active := range r.Head {
		var partners []PartnerRef
		for j, h := range r.Head {
			if j == i {
				continue
			}
			partners = append(partners, PartnerRef{Pos: j, Head: h})
		}
		schemes = append(schemes, &OccurrenceScheme{
			RuleName:  r.Name,
			ActivePos: i,
			Active:    active,
			Partners:  partners,
			Matchings: r.Matchings,
			Guard:     r.Guard,
			Body:      r.Body,
		})
	}
	return schemes
}
