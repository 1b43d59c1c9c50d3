package runtime

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSolverHasFreshIndependentStores(t *testing.T) {
	s1 := NewSolver()
	s2 := NewSolver()
	assert.NotEmpty(t, s1.SessionID)
	assert.NotEqual(t, s1.SessionID, s2.SessionID)

	id := s1.Constraints.Insert("a", nil)
	assert.True(t, s1.Constraints.Alive(id))
	assert.False(t, s2.Constraints.Alive(id), "solvers never share constraint stores")
}

func TestFreshVarAllocatesFromBuiltinStore(t *testing.T) {
	s := NewSolver()
	v := s.FreshVar()
	assert.False(t, s.Builtin.IsBound(v))
}

func TestFailReturnsCHRFalse(t *testing.T) {
	s := NewSolver()
	err := s.Fail("no solution")
	require.Error(t, err)
	var chrFalse *CHRFalse
	require.ErrorAs(t, err, &chrFalse)
	assert.Contains(t, err.Error(), "no solution")
}

func TestSetLoggerAcceptsNilAndReal(t *testing.T) {
	s := NewSolver()
	s.SetLogger(nil)
	s.SetLogger(hclog.NewNullLogger())
	// Trace must not panic either way.
	s.Trace("event", "k", "v")
}

func TestDumpStoreFormatsSortedByID(t *testing.T) {
	s := NewSolver()
	s.Constraints.Insert("b", []any{int64(1)})
	s.Constraints.Insert("a", nil)
	out := s.DumpStore([]string{"a", "b"})
	assert.Contains(t, out, "#0 b(1)")
	assert.Contains(t, out, "#1 a")
}

func TestDumpStoreSkipsDeadConstraints(t *testing.T) {
	s := NewSolver()
	id := s.Constraints.Insert("a", nil)
	s.Constraints.Delete(id)
	out := s.DumpStore([]string{"a"})
	assert.Empty(t, out)
}
