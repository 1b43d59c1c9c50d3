package compiler

import (
	"testing"

	"github.com/chrlang/chr/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileValueExprLiterals(t *testing.T) {
	e := &Emitter{}
	env := map[string]bool{}
	assert.Equal(t, "int64(3)", e.compileValueExpr(env, &model.IntConst{Value: 3}))
	assert.Equal(t, `"hi"`, e.compileValueExpr(env, &model.StringConst{Value: "hi"}))
	assert.Equal(t, "true", e.compileValueExpr(env, &model.BoolConst{Value: true}))
	assert.Empty(t, e.Errors)
}

func TestCompileValueExprVariableInScope(t *testing.T) {
	e := &Emitter{}
	env := map[string]bool{"X": true}
	assert.Equal(t, "X", e.compileValueExpr(env, &model.Variable{Name: "X"}))
	assert.Empty(t, e.Errors)
}

func TestCompileValueExprVariableOutOfScopeRecordsError(t *testing.T) {
	e := &Emitter{}
	env := map[string]bool{}
	result := e.compileValueExpr(env, &model.Variable{Name: "X"})
	assert.Equal(t, "nil", result)
	require.Len(t, e.Errors, 1)
	assert.Contains(t, e.Errors[0].Error(), "unsupported pattern")
}

func TestCompileValueExprArithmetic(t *testing.T) {
	e := &Emitter{}
	env := map[string]bool{"N": true, "M": true}
	out := e.compileValueExpr(env, &model.Functor{
		Symbol: "-",
		Args:   []model.Term{&model.Variable{Name: "N"}, &model.Variable{Name: "M"}},
	})
	assert.Equal(t, `runtime.ArithOrNil(s.Builtin, "-", N, M)`, out)
}

func TestCompileValueExprListTupleDict(t *testing.T) {
	e := &Emitter{}
	env := map[string]bool{}
	list := e.compileValueExpr(env, &model.ListTerm{Items: []model.Term{&model.IntConst{Value: 1}, &model.IntConst{Value: 2}}})
	assert.Equal(t, "runtime.List{int64(1), int64(2)}", list)

	tuple := e.compileValueExpr(env, &model.TupleTerm{Items: []model.Term{&model.IntConst{Value: 1}, &model.IntConst{Value: 2}}})
	assert.Equal(t, "runtime.Tuple{int64(1), int64(2)}", tuple)

	dict := e.compileValueExpr(env, &model.DictTerm{
		Keys:   []model.Term{&model.StringConst{Value: "k"}},
		Values: []model.Term{&model.IntConst{Value: 1}},
	})
	assert.Equal(t, `runtime.Dict{Keys: []any{"k"}, Values: []any{int64(1)}}`, dict)
}

func TestCompileValueExprCompoundFunctor(t *testing.T) {
	e := &Emitter{}
	env := map[string]bool{"X": true}
	out := e.compileValueExpr(env, &model.Functor{
		Symbol: "point",
		Args:   []model.Term{&model.Variable{Name: "X"}, &model.IntConst{Value: 1}},
	})
	assert.Equal(t, `runtime.Compound{Symbol: "point", Args: []any{X, int64(1)}}`, out)
}

func TestCompileBoolExprLogical(t *testing.T) {
	e := &Emitter{}
	env := map[string]bool{"X": true}
	out := e.compileBoolExpr(env, &model.Functor{
		Symbol: "and",
		Args: []model.Term{
			&model.Functor{Symbol: "==", Args: []model.Term{&model.Variable{Name: "X"}, &model.IntConst{Value: 0}}},
			&model.Functor{Symbol: "not", Args: []model.Term{&model.BoolConst{Value: false}}},
		},
	})
	assert.Equal(t, `(runtime.CompareTerms(s.Builtin, "==", X, int64(0)) && !(false))`, out)
}

func TestCompileBoolExprUnsupportedFormDegradesToTrueWithError(t *testing.T) {
	e := &Emitter{}
	env := map[string]bool{}
	out := e.compileBoolExpr(env, &model.Functor{Symbol: "frobnicate", Args: []model.Term{&model.IntConst{Value: 1}}})
	assert.Equal(t, "true", out)
	require.Len(t, e.Errors, 1)
	assert.Contains(t, e.Errors[0].Error(), "unsupported guard/ask form")
}

func TestCompileBoolExprIsBound(t *testing.T) {
	e := &Emitter{}
	env := map[string]bool{"X": true}
	out := e.compileBoolExpr(env, &model.Functor{Symbol: "is_bound", Args: []model.Term{&model.Variable{Name: "X"}}})
	assert.Equal(t, "runtime.IsBoundValue(s.Builtin, X)", out)
}
