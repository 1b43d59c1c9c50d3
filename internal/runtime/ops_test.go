package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithIntegerOps(t *testing.T) {
	assert.Equal(t, int64(7), Arith("+", int64(3), int64(4)))
	assert.Equal(t, int64(-1), Arith("-", int64(3), int64(4)))
	assert.Equal(t, int64(12), Arith("*", int64(3), int64(4)))
	assert.Equal(t, int64(1), Arith("%", int64(7), int64(3)))
}

func TestArithPromotesToFloat(t *testing.T) {
	assert.Equal(t, 5.5, Arith("+", 2.5, int64(3)))
}

func TestArithModuloOverFloatsPanics(t *testing.T) {
	assert.Panics(t, func() { Arith("%", 1.5, int64(1)) })
}

func TestArithUnknownOperatorPanics(t *testing.T) {
	assert.Panics(t, func() { Arith("^", int64(1), int64(2)) })
}

func TestNeg(t *testing.T) {
	assert.Equal(t, int64(-5), Neg(int64(5)))
	assert.Equal(t, -2.5, Neg(2.5))
}

func TestCompareNumeric(t *testing.T) {
	assert.True(t, Compare("<", int64(1), int64(2)))
	assert.True(t, Compare("<=", int64(2), int64(2)))
	assert.True(t, Compare(">", 3.0, int64(2)))
	assert.True(t, Compare(">=", int64(2), 2.0))
	assert.True(t, Compare("==", int64(2), 2.0))
	assert.True(t, Compare("!=", int64(1), int64(2)))
}

func TestCompareFallsBackToStringOrdering(t *testing.T) {
	assert.True(t, Compare("<", "abc", "abd"))
}

func TestCompareUnknownOperatorPanics(t *testing.T) {
	assert.Panics(t, func() { Compare("~=", int64(1), int64(2)) })
}

func TestAskEqUnifiesSuccessfully(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	assert.True(t, AskEq(s, v, int64(9)))
	val, err := s.GetValue(v)
	require.NoError(t, err)
	assert.Equal(t, int64(9), val)
}

func TestAskEqFailsOnMismatch(t *testing.T) {
	s := NewBuiltinStore()
	assert.False(t, AskEq(s, int64(1), int64(2)))
}

func TestResolveAndTryResolve(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()

	val, ok := TryResolve(s, v)
	assert.False(t, ok)
	assert.Nil(t, val)

	resolved, err := Resolve(s, int64(5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), resolved)

	require.NoError(t, s.SetValue(v, int64(1)))

	resolved2, err2 := Resolve(s, v)
	require.NoError(t, err2)
	assert.Equal(t, int64(1), resolved2)

	val2, ok2 := TryResolve(s, v)
	assert.True(t, ok2)
	assert.Equal(t, int64(1), val2)
}

func TestIsBoundValue(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	assert.False(t, IsBoundValue(s, v))
	assert.True(t, IsBoundValue(s, int64(1)))
	require.NoError(t, s.SetValue(v, int64(2)))
	assert.True(t, IsBoundValue(s, v))
}

func TestCompareTermsDegradesFalseOnUnresolved(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	assert.False(t, CompareTerms(s, "==", v, int64(1)))
	require.NoError(t, s.SetValue(v, int64(1)))
	assert.True(t, CompareTerms(s, "==", v, int64(1)))
}

func TestArithOrNilAndEvalArith(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	assert.Nil(t, ArithOrNil(s, "+", v, int64(1)))
	require.NoError(t, s.SetValue(v, int64(2)))
	assert.Equal(t, int64(3), ArithOrNil(s, "+", v, int64(1)))

	_, ok := EvalArith(s, "+", v, int64(1))
	assert.True(t, ok)
}

func TestNegOrNilAndEvalNeg(t *testing.T) {
	s := NewBuiltinStore()
	v := s.Fresh()
	assert.Nil(t, NegOrNil(s, v))
	require.NoError(t, s.SetValue(v, int64(4)))
	assert.Equal(t, int64(-4), NegOrNil(s, v))
}
