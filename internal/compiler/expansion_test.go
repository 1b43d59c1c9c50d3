package compiler

import (
	"testing"

	"github.com/chrlang/chr/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expandSource(t *testing.T, src string) *model.ProcessedProgram {
	t.Helper()
	prog := mustParse(t, src)
	norm := NewNormalizer().NormalizeProgram(prog)
	return NewExpander().ExpandProgram(norm)
}

func TestExpandRemovedBeforeKeptWithinRule(t *testing.T) {
	processed := expandSource(t, `class G. constraints gcd/1.
r2 @ gcd($M) \ gcd($N) <=> $M <= $N | gcd($N - $M).
`)
	rule := processed.Rules[0]
	require.Len(t, rule.Head, 2)
	// removed (gcd($N)) must be assigned occurrence index 0, kept
	// (gcd($M)) index 1 — removed-before-kept is load-bearing for ω_r.
	assert.False(t, rule.Head[0].Kept)
	assert.Equal(t, 0, rule.Head[0].OccurrenceIndex)
	assert.True(t, rule.Head[1].Kept)
	assert.Equal(t, 1, rule.Head[1].OccurrenceIndex)
}

func TestExpandOccurrenceIndicesAreDenseAndGlobalPerSymbol(t *testing.T) {
	processed := expandSource(t, `class G. constraints gcd/1.
r1 @ gcd($N) <=> $N == 0 | true.
r2 @ gcd($M) \ gcd($N) <=> $M <= $N | gcd($N - $M).
`)
	var indices []int
	for _, r := range processed.Rules {
		for _, h := range r.Head {
			indices = append(indices, h.OccurrenceIndex)
		}
	}
	assert.ElementsMatch(t, []int{0, 1, 2}, indices)
	assert.Equal(t, 3, processed.Occurrences[model.Signature{Symbol: "gcd", Arity: 1}])
}

func TestExpandSeparateSymbolsCountIndependently(t *testing.T) {
	processed := expandSource(t, `class P. constraints a/0, b/0.
t @ a ==> b.
`)
	assert.Equal(t, 1, processed.Occurrences[model.Signature{Symbol: "a", Arity: 0}])
	assert.Equal(t, 0, processed.Occurrences[model.Signature{Symbol: "b", Arity: 0}])
}
