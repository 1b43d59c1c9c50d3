package runtime

// ConstraintID is a monotonically increasing identifier assigned to
// every user-defined constraint inserted into a ConstraintStore. IDs are
// never reused, so a propagation-history entry naming one stays
// unambiguous for the life of the solve even after the constraint it
// named is killed.
type ConstraintID uint64

// NoExclude is passed to GetIterator in place of a real ConstraintID when
// the caller wants every live constraint of a symbol, excluding none —
// distinct from the zero value, which is itself a valid, assignable ID.
const NoExclude ConstraintID = ^ConstraintID(0)

// StoredConstraint is one live (or recently killed) user-defined
// constraint occupying the constraint store.
type StoredConstraint struct {
	ID     ConstraintID
	Symbol string
	Args   []any
	alive  bool
}

// ConstraintStore holds the CHR constraint store proper: the alive set
// of user-defined constraints plus the propagation history that records,
// per rule, which combinations of constraint IDs have already fired it
// (so a propagation rule cannot re-derive the same consequence from the
// same partners forever).
type ConstraintStore struct {
	nextID  ConstraintID
	byID    map[ConstraintID]*StoredConstraint
	bySym   map[string][]ConstraintID // insertion order, alive and dead alike
	history map[string]map[ConstraintID]bool

	// recentlyKilled records each symbol that has had a constraint
	// deleted since its last compaction; bySym
	// slices are compacted lazily (on GetIterator) rather than on every
	// Delete, so a hot simplification loop doesn't pay an O(n) slice
	// rewrite per removal.
	recentlyKilled map[string]bool
}

// NewConstraintStore returns an empty store.
func NewConstraintStore() *ConstraintStore {
	return &ConstraintStore{
		byID:           map[ConstraintID]*StoredConstraint{},
		bySym:          map[string][]ConstraintID{},
		history:        map[string]map[ConstraintID]bool{},
		recentlyKilled: map[string]bool{},
	}
}

// Insert adds a new constraint occurrence to the store and returns its
// freshly assigned ID.
func (s *ConstraintStore) Insert(symbol string, args []any) ConstraintID {
	id := s.nextID
	s.nextID++
	s.byID[id] = &StoredConstraint{ID: id, Symbol: symbol, Args: args, alive: true}
	s.bySym[symbol] = append(s.bySym[symbol], id)
	return id
}

// Delete marks id as no longer alive. Its entry is retained (so history
// keys and in-flight iterators referencing it stay valid) until the next
// lazy compaction of its symbol's slice.
func (s *ConstraintStore) Delete(id ConstraintID) {
	c, ok := s.byID[id]
	if !ok || !c.alive {
		return
	}
	c.alive = false
	s.recentlyKilled[c.Symbol] = true
}

// Alive reports whether id is still a live constraint.
func (s *ConstraintStore) Alive(id ConstraintID) bool {
	c, ok := s.byID[id]
	return ok && c.alive
}

// Get returns the stored constraint for id, or nil if unknown.
func (s *ConstraintStore) Get(id ConstraintID) *StoredConstraint {
	return s.byID[id]
}

// compact drops dead entries from symbol's id slice. Called lazily from
// GetIterator so repeated deletes in a single occurrence pass only cost
// one rewrite.
func (s *ConstraintStore) compact(symbol string) {
	if !s.recentlyKilled[symbol] {
		return
	}
	ids := s.bySym[symbol]
	live := ids[:0]
	for _, id := range ids {
		if s.byID[id].alive {
			live = append(live, id)
		}
	}
	s.bySym[symbol] = live
	delete(s.recentlyKilled, symbol)
}

// GetIterator returns the live constraints for symbol, in insertion
// order. The constraint whose ID equals fix is excluded from the result
// (pass NoExclude to exclude none) — the
// emitted partner-search loops use this to skip the active occurrence's
// own constraint when iterating its own symbol's alive set.
func (s *ConstraintStore) GetIterator(symbol string, fix ConstraintID) []*StoredConstraint {
	s.compact(symbol)
	ids := s.bySym[symbol]
	out := make([]*StoredConstraint, 0, len(ids))
	for _, id := range ids {
		if id == fix {
			continue
		}
		if c := s.byID[id]; c.alive {
			out = append(out, c)
		}
	}
	return out
}

// historyKey identifies one rule's propagation history table.
func historyKey(ruleName string) string { return ruleName }

// AddToHistory records that ids (the participating constraints' IDs, in
// head order) have together fired ruleName, so a propagation rule over
// the same partners is never applied twice.
func (s *ConstraintStore) AddToHistory(ruleName string, ids []ConstraintID) {
	tbl := s.history[historyKey(ruleName)]
	if tbl == nil {
		tbl = map[ConstraintID]bool{}
		s.history[historyKey(ruleName)] = tbl
	}
	tbl[combineIDs(ids)] = true
}

// InHistory reports whether ids have already jointly fired ruleName.
func (s *ConstraintStore) InHistory(ruleName string, ids []ConstraintID) bool {
	tbl := s.history[historyKey(ruleName)]
	if tbl == nil {
		return false
	}
	return tbl[combineIDs(ids)]
}

// combineIDs folds a tuple of constraint IDs into one history key. IDs
// are monotonic and never reused, so a simple positional combination is
// collision-free for the life of the store.
func combineIDs(ids []ConstraintID) ConstraintID {
	var h ConstraintID
	for _, id := range ids {
		h = h*1000003 + id + 1
	}
	return h
}

// Len reports the number of currently alive constraints, scanning the
// whole symbol table. It is O(n) and intended for diagnostics, not for
// use on a solver's hot path.
func (s *ConstraintStore) Len() int {
	n := 0
	for _, c := range s.byID {
		if c.alive {
			n++
		}
	}
	return n
}
