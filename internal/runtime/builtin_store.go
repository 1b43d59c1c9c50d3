package runtime

import "fmt"

// LogicVariable is a handle into a BuiltinStore's union-find forest. It
// carries no state itself — all lookups go through the owning store —
// so copying a LogicVariable is cheap and safe.
type LogicVariable struct {
	id    int
	store *BuiltinStore
}

func (v *LogicVariable) String() string { return fmt.Sprintf("_G%d", v.id) }

// Suspension is a delayed goal woken when one of the variables it was
// delayed on changes representative or gains a value. It is a plain
// struct rather than a captured closure so a dumped store can report
// which occurrence is waiting and on what arguments, per the design
// note's preference for inspectable state over opaque continuations.
type Suspension struct {
	OccurrenceKey string
	CapturedArgs  []any
	Resume        func(args []any) error
}

type trailKind int

const (
	trailUnion trailKind = iota
	trailValue
)

// trailEntry records enough of the pre-mutation state of one union-find
// slot to undo a single union or value-binding step.
type trailEntry struct {
	kind      trailKind
	id        int // var id a value was bound to, or the child root absorbed by a union
	root      int // surviving root of a union (unused for trailValue)
	oldRank   int // the surviving root's rank before the union (unused for trailValue)
}

// BuiltinStore is the union-find-plus-trail engine backing CHR's builtin
// equational theory: variable identity (`=`), value binding, and the
// delayed "ask" goals that block on an unbound variable becoming bound.
// Every Solver owns exactly one instance; there is no process-wide
// singleton, so independent solves never share bindings by accident.
type BuiltinStore struct {
	parent    []int
	rank      []int
	hasValue  []bool
	value     []any
	delayed   map[int][]*Suspension
	trail     []trailEntry
}

// NewBuiltinStore returns an empty store.
func NewBuiltinStore() *BuiltinStore {
	return &BuiltinStore{delayed: map[int][]*Suspension{}}
}

// Fresh allocates a new, unbound logic variable.
func (s *BuiltinStore) Fresh() *LogicVariable {
	id := len(s.parent)
	s.parent = append(s.parent, id)
	s.rank = append(s.rank, 0)
	s.hasValue = append(s.hasValue, false)
	s.value = append(s.value, nil)
	return &LogicVariable{id: id, store: s}
}

// FreshValue allocates a new logic variable pre-bound to val. The
// binding is immediate, not trailed (§4.5: "bound immediately, not
// trailed") — it is not an uncommitted guard binding that might need
// unwinding, but the permanent identity of a constant lifted into
// variable form so every head/body slot can be treated uniformly as a
// LogicVariable. Emitted Tell entry points do not call it: they insert
// each argument as passed, ground values included.
func (s *BuiltinStore) FreshValue(val any) *LogicVariable {
	v := s.Fresh()
	s.hasValue[v.id] = true
	s.value[v.id] = val
	return v
}

func (s *BuiltinStore) checkOwned(v *LogicVariable) {
	if v.store != s {
		panic(&UnknownVariable{Var: v})
	}
}

// find returns the representative id of id's equivalence class by
// following parent links to the root. It does not compress paths, so
// every parent link it reads was set by Union and is undone by Reset.
func (s *BuiltinStore) find(id int) int {
	for s.parent[id] != id {
		id = s.parent[id]
	}
	return id
}

// Representative returns v's current canonical representative as a
// LogicVariable, useful for deduplicating delayed goals.
func (s *BuiltinStore) Representative(v *LogicVariable) *LogicVariable {
	s.checkOwned(v)
	return &LogicVariable{id: s.find(v.id), store: s}
}

// IsBound reports whether v's representative carries a value.
func (s *BuiltinStore) IsBound(v *LogicVariable) bool {
	s.checkOwned(v)
	return s.hasValue[s.find(v.id)]
}

// GetValue returns the value bound to v's representative.
func (s *BuiltinStore) GetValue(v *LogicVariable) (any, error) {
	s.checkOwned(v)
	root := s.find(v.id)
	if !s.hasValue[root] {
		return nil, &UnboundVariable{Var: v}
	}
	return s.value[root], nil
}

// SetValue binds v's representative to val. The binding is trailed but
// not woken yet — per spec.md §4.5, delayed closures are only invoked
// from Commit, so a guard ask that binds a variable and then fails can
// be unwound by Reset before anything ever observes the binding.
// Returns BoundVariable if the representative already carries a
// (different identity of) value; re-binding to an == value is still
// rejected, since CHR builtins model binding as a one-shot event the
// trail must be able to undo precisely.
func (s *BuiltinStore) SetValue(v *LogicVariable, val any) error {
	s.checkOwned(v)
	root := s.find(v.id)
	if s.hasValue[root] {
		return &BoundVariable{Var: v}
	}
	s.trail = append(s.trail, trailEntry{kind: trailValue, id: root})
	s.hasValue[root] = true
	s.value[root] = val
	return nil
}

// Union merges the equivalence classes of a and b by rank, trailing the
// structural change so it can be rolled back by Reset. Like SetValue, it
// does not wake delayed closures itself — that only happens from Commit.
// If both sides are already bound, the caller (typically the emitted
// `=`/2 builtin) is responsible for checking the values agree; Union
// itself does not compare them.
func (s *BuiltinStore) Union(a, b *LogicVariable) {
	s.checkOwned(a)
	s.checkOwned(b)
	ra, rb := s.find(a.id), s.find(b.id)
	if ra == rb {
		return
	}
	if s.rank[ra] < s.rank[rb] {
		ra, rb = rb, ra
	}
	s.trail = append(s.trail, trailEntry{kind: trailUnion, id: rb, root: ra, oldRank: s.rank[ra]})
	s.parent[rb] = ra
	if s.rank[ra] == s.rank[rb] {
		s.rank[ra]++
	}
	if s.hasValue[rb] && !s.hasValue[ra] {
		s.trail = append(s.trail, trailEntry{kind: trailValue, id: ra})
		s.hasValue[ra] = true
		s.value[ra] = s.value[rb]
	}
	s.delayed[ra] = append(s.delayed[ra], s.delayed[rb]...)
	delete(s.delayed, rb)
}

// Unify is the builtin-store half of the `=`/2 constraint: it unions two
// variables, binds a variable to a ground value, or (for two ground
// container values) recurses element-wise per spec.md §4.5, failing if
// both sides are already bound to distinct values or have incompatible
// shape.
func (s *BuiltinStore) Unify(a, b any) (bool, error) {
	av, aIsVar := a.(*LogicVariable)
	bv, bIsVar := b.(*LogicVariable)
	switch {
	case aIsVar && bIsVar:
		if s.IsBound(av) && s.IsBound(bv) {
			x, _ := s.GetValue(av)
			y, _ := s.GetValue(bv)
			if ok, err := s.Unify(x, y); err != nil || !ok {
				return ok, err
			}
		}
		s.Union(av, bv)
		return true, nil
	case aIsVar && !s.IsBound(av):
		return true, s.SetValue(av, b)
	case bIsVar && !s.IsBound(bv):
		return true, s.SetValue(bv, a)
	case aIsVar:
		val, err := s.GetValue(av)
		if err != nil {
			return false, err
		}
		return s.Unify(val, b)
	case bIsVar:
		val, err := s.GetValue(bv)
		if err != nil {
			return false, err
		}
		return s.Unify(a, val)
	default:
		return s.unifyGround(a, b)
	}
}

// unifyGround recurses into List/Tuple/Dict/Compound container values,
// unifying element-wise and failing on the first mismatch; anything else
// falls back to structural `==`.
func (s *BuiltinStore) unifyGround(a, b any) (bool, error) {
	switch x := a.(type) {
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false, nil
		}
		return s.unifySlices(x, y)
	case Tuple:
		y, ok := b.(Tuple)
		if !ok || len(x) != len(y) {
			return false, nil
		}
		return s.unifySlices(x, y)
	case Compound:
		y, ok := b.(Compound)
		if !ok || x.Symbol != y.Symbol || len(x.Args) != len(y.Args) {
			return false, nil
		}
		return s.unifySlices(x.Args, y.Args)
	case Dict:
		y, ok := b.(Dict)
		if !ok || len(x.Keys) != len(y.Keys) {
			return false, nil
		}
		for i, k := range x.Keys {
			yv, found := y.Get(k)
			if !found {
				return false, nil
			}
			ok, err := s.Unify(x.Values[i], yv)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil
	default:
		return equalValues(a, b), nil
	}
}

func (s *BuiltinStore) unifySlices(a, b []any) (bool, error) {
	for i := range a {
		ok, err := s.Unify(a[i], b[i])
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func equalValues(a, b any) bool {
	if af, aOK := toFloat(a); aOK {
		if bf, bOK := toFloat(b); bOK {
			return af == bf
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// Delay registers susp to be woken, at the next Commit, after any
// variable in vars gains a value or is unioned with another variable.
func (s *BuiltinStore) Delay(vars []*LogicVariable, susp *Suspension) {
	for _, v := range vars {
		s.checkOwned(v)
		root := s.find(v.id)
		s.delayed[root] = append(s.delayed[root], susp)
	}
}

func (s *BuiltinStore) wake(root int) {
	pending := s.delayed[root]
	if len(pending) == 0 {
		return
	}
	delete(s.delayed, root)
	for _, susp := range pending {
		if susp.Resume != nil {
			// Wake-up failures surface through the solver's own error
			// path (the occurrence calling Delay checks the return of
			// its own re-invocation); a bare panic here would cross a
			// rule boundary the way CHRGuardFail must never do, so
			// errors are swallowed at this layer and left to the
			// resumed occurrence to report via its own Activate call.
			_ = susp.Resume(susp.CapturedArgs)
		}
	}
}

// Mark returns a position in the trail; Reset(mark) undoes every
// mutation recorded since.
func (s *BuiltinStore) Mark() int { return len(s.trail) }

// Commit is commit_recent_bindings (spec.md §4.5): it snapshots the
// trail entries recorded since mark, discards them — they are no longer
// reversible — and only then wakes delayed closures on the variables
// they touched. Used once a rule's guard has succeeded and its bindings
// should survive past the occurrence that made them; waking after the
// trail is cleared (rather than as each binding happens) keeps a
// woken closure's own re-activation, which may itself bind variables or
// Tell new constraints, from being undone by a later Reset meant only
// for this guard's own attempt.
func (s *BuiltinStore) Commit(mark int) {
	if mark < 0 {
		mark = 0
	}
	pending := s.trail[mark:]
	roots := make([]int, 0, len(pending))
	for _, e := range pending {
		switch e.kind {
		case trailValue:
			roots = append(roots, e.id)
		case trailUnion:
			roots = append(roots, e.root)
		}
	}
	s.trail = s.trail[:mark]
	for _, root := range roots {
		s.wake(root)
	}
}

// Reset undoes every trail entry recorded since mark, restoring the
// union-find forest and value table to their state at that point. Used
// when a guard's ask-constraints bound variables but the guard as a
// whole failed.
func (s *BuiltinStore) Reset(mark int) {
	for i := len(s.trail) - 1; i >= mark; i-- {
		e := s.trail[i]
		switch e.kind {
		case trailUnion:
			s.parent[e.id] = e.id
			s.rank[e.root] = e.oldRank
		case trailValue:
			s.hasValue[e.id] = false
			s.value[e.id] = nil
		}
	}
	s.trail = s.trail[:mark]
}
