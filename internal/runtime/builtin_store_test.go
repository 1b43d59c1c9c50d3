package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreshUnbound(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	assert.False(t, s.IsBound(v))
	_, err := s.GetValue(v)
	require.Error(t, err)
	assert.IsType(t, &UnboundVariable{}, err)
}

func TestFreshValueIsImmediatelyBound(t *testing.T) {
	s := NewBuiltinStore()
	v := s.FreshValue(int64(42))
	assert.True(t, s.IsBound(v))
	val, err := s.GetValue(v)
	require.NoError(t, err)
	assert.Equal(t, int64(42), val)
}

func TestSetValueRejectsDoubleBind(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	require.NoError(t, s.SetValue(v, int64(1)))
	err := s.SetValue(v, int64(2))
	require.Error(t, err)
	assert.IsType(t, &BoundVariable{}, err)
}

func TestUnionMergesClasses(t *testing.T) {
	s := NewBuiltinStore()
	a := s.Fresh()
	b := s.Fresh()
	s.Union(a, b)
	ra := s.Representative(a)
	rb := s.Representative(b)
	assert.Equal(t, ra.id, rb.id)
}

func TestUnionPropagatesExistingValue(t *testing.T) {
	s := NewBuiltinStore()
	a := s.Fresh()
	b := s.Fresh()
	require.NoError(t, s.SetValue(a, "x"))
	s.Union(a, b)
	assert.True(t, s.IsBound(b))
	val, err := s.GetValue(b)
	require.NoError(t, err)
	assert.Equal(t, "x", val)
}

func TestUnifyTwoUnboundVariables(t *testing.T) {
	s := NewBuiltinStore()
	a := s.Fresh()
	b := s.Fresh()
	ok, err := s.Unify(a, b)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, s.find(a.id), s.find(b.id))
}

func TestUnifyVariableWithGround(t *testing.T) {
	s := NewBuiltinStore()
	a := s.Fresh()
	ok, err := s.Unify(a, int64(7))
	require.NoError(t, err)
	assert.True(t, ok)
	val, err := s.GetValue(a)
	require.NoError(t, err)
	assert.Equal(t, int64(7), val)
}

func TestUnifyGroundMatchingScalars(t *testing.T) {
	s := NewBuiltinStore()
	ok, err := s.Unify(int64(3), int64(3))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Unify(int64(3), int64(4))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnifyListsElementwise(t *testing.T) {
	s := NewBuiltinStore()
	a := s.Fresh()
	ok, err := s.Unify(List{int64(1), a}, List{int64(1), int64(2)})
	require.NoError(t, err)
	assert.True(t, ok)
	val, err := s.GetValue(a)
	require.NoError(t, err)
	assert.Equal(t, int64(2), val)
}

func TestUnifyListsDifferentLengthFails(t *testing.T) {
	s := NewBuiltinStore()
	ok, err := s.Unify(List{int64(1)}, List{int64(1), int64(2)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnifyListDoesNotMatchTuple(t *testing.T) {
	s := NewBuiltinStore()
	ok, err := s.Unify(List{int64(1)}, Tuple{int64(1)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnifyCompoundSameSymbolAndArity(t *testing.T) {
	s := NewBuiltinStore()
	ok, err := s.Unify(Compound{Symbol: "p", Args: []any{int64(1)}}, Compound{Symbol: "p", Args: []any{int64(1)}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Unify(Compound{Symbol: "p", Args: []any{int64(1)}}, Compound{Symbol: "q", Args: []any{int64(1)}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnifyDictMatchesByKey(t *testing.T) {
	s := NewBuiltinStore()
	a := s.Fresh()
	d1 := Dict{Keys: []any{"k"}, Values: []any{a}}
	d2 := Dict{Keys: []any{"k"}, Values: []any{int64(9)}}
	ok, err := s.Unify(d1, d2)
	require.NoError(t, err)
	assert.True(t, ok)
	val, err := s.GetValue(a)
	require.NoError(t, err)
	assert.Equal(t, int64(9), val)
}

func TestDelayWakesOnCommitAfterSetValue(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	woke := false
	s.Delay([]*LogicVariable{v}, &Suspension{
		OccurrenceKey: "k",
		Resume:        func([]any) error { woke = true; return nil },
	})
	mark := s.Mark()
	require.NoError(t, s.SetValue(v, int64(1)))
	assert.False(t, woke, "wake must not fire until Commit, only a guard binding that survives")
	s.Commit(mark)
	assert.True(t, woke)
}

func TestDelayWakesOnCommitAfterUnionWithBoundVariable(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	bound := s.FreshValue(int64(1))
	woke := false
	s.Delay([]*LogicVariable{v}, &Suspension{Resume: func([]any) error { woke = true; return nil }})
	mark := s.Mark()
	s.Union(v, bound)
	assert.False(t, woke, "wake must not fire until Commit, only a guard binding that survives")
	s.Commit(mark)
	assert.True(t, woke)
}

func TestResetAfterSetValueNeverWakes(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	woke := false
	s.Delay([]*LogicVariable{v}, &Suspension{Resume: func([]any) error { woke = true; return nil }})
	mark := s.Mark()
	require.NoError(t, s.SetValue(v, int64(1)))
	s.Reset(mark)
	assert.False(t, woke, "a rolled-back guard binding must never wake a delayed closure")
}

func TestMarkCommitResetRoundTrip(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	mark := s.Mark()
	require.NoError(t, s.SetValue(v, int64(5)))
	assert.True(t, s.IsBound(v))
	s.Reset(mark)
	assert.False(t, s.IsBound(v))
}

func TestCommitMakesBindingsPermanent(t *testing.T) {
	s := NewBuiltinStore()
	a := s.Fresh()
	require.NoError(t, s.SetValue(a, int64(1)))
	mark := s.Mark()
	b := s.Fresh()
	require.NoError(t, s.SetValue(b, int64(2)))
	s.Commit(mark)

	// b's binding was made since mark and was committed away by this
	// call; even a Reset back to the very start of the (now shorter)
	// trail can no longer reach it, while a's still-trailed binding can.
	s.Reset(0)
	assert.False(t, s.IsBound(a))
	assert.True(t, s.IsBound(b))
}

func TestResetUndoesUnion(t *testing.T) {
	s := NewBuiltinStore()
	a := s.Fresh()
	b := s.Fresh()
	mark := s.Mark()
	s.Union(a, b)
	require.Equal(t, s.find(a.id), s.find(b.id))
	s.Reset(mark)
	assert.NotEqual(t, s.find(a.id), s.find(b.id))
}

func TestCheckOwnedPanicsOnForeignVariable(t *testing.T) {
	s1 := NewBuiltinStore()
	s2 := NewBuiltinStore()
	v := s1.Fresh()
	assert.Panics(t, func() { s2.IsBound(v) })
}
