package model

// Program is a surface-syntax CHR program: a class name, the declared
// user-constraint signatures, and the rules in textual order.
type Program struct {
	ClassName   string
	Constraints []Signature
	Rules       []*Rule
	Position    Position
}

// Declares reports whether sig is one of the program's declared
// user-constraint signatures.
func (p *Program) Declares(sig Signature) bool {
	for _, s := range p.Constraints {
		if s == sig {
			return true
		}
	}
	return false
}

// NormalizedProgram is a Program after per-rule normalization (component C).
type NormalizedProgram struct {
	ClassName   string
	Constraints []Signature
	Rules       []*NormalizedRule
}

// ProcessedProgram is a NormalizedProgram after ω_r occurrence expansion
// (component D): every head constraint carries its program-wide,
// per-symbol occurrence index.
type ProcessedProgram struct {
	ClassName   string
	Constraints []Signature
	Rules       []*ProcessedRule
	// Occurrences maps each signature appearing in any rule head to the
	// total number of occurrences assigned to it (i.e. one past the
	// highest OccurrenceIndex used). The emitter does not read it: it
	// builds the activation dispatcher and the occurrence procedures from
	// each rule's OccurrenceSchemes.
	Occurrences map[Signature]int
}
