package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAssignsMonotonicIDs(t *testing.T) {
	s := NewConstraintStore()
	id1 := s.Insert("gcd", []any{int64(4)})
	id2 := s.Insert("gcd", []any{int64(6)})
	assert.Less(t, id1, id2)
	assert.True(t, s.Alive(id1))
	assert.True(t, s.Alive(id2))
}

func TestDeleteMarksDeadNotRemoved(t *testing.T) {
	s := NewConstraintStore()
	id := s.Insert("gcd", []any{int64(4)})
	s.Delete(id)
	assert.False(t, s.Alive(id))
	require.NotNil(t, s.Get(id), "record stays addressable after delete")
}

func TestGetIteratorExcludesDeadAndFixed(t *testing.T) {
	s := NewConstraintStore()
	id1 := s.Insert("gcd", []any{int64(1)})
	id2 := s.Insert("gcd", []any{int64(2)})
	id3 := s.Insert("gcd", []any{int64(3)})
	s.Delete(id2)

	live := s.GetIterator("gcd", id1)
	var liveIDs []ConstraintID
	for _, c := range live {
		liveIDs = append(liveIDs, c.ID)
	}
	assert.ElementsMatch(t, []ConstraintID{id3}, liveIDs)
}

func TestGetIteratorPreservesInsertionOrder(t *testing.T) {
	s := NewConstraintStore()
	var ids []ConstraintID
	for i := 0; i < 5; i++ {
		ids = append(ids, s.Insert("a", []any{int64(i)}))
	}
	live := s.GetIterator("a", NoExclude)
	require.Len(t, live, 5)
	for i, c := range live {
		assert.Equal(t, ids[i], c.ID)
	}
}

func TestGetIteratorNoExcludeKeepsAll(t *testing.T) {
	s := NewConstraintStore()
	s.Insert("a", nil)
	s.Insert("a", nil)
	assert.Len(t, s.GetIterator("a", NoExclude), 2)
}

func TestHistoryRoundTrip(t *testing.T) {
	s := NewConstraintStore()
	id1 := s.Insert("a", nil)
	id2 := s.Insert("b", nil)
	assert.False(t, s.InHistory("trans", []ConstraintID{id1, id2}))
	s.AddToHistory("trans", []ConstraintID{id1, id2})
	assert.True(t, s.InHistory("trans", []ConstraintID{id1, id2}))
}

func TestHistoryIsOrderSensitive(t *testing.T) {
	s := NewConstraintStore()
	id1 := s.Insert("a", nil)
	id2 := s.Insert("b", nil)
	s.AddToHistory("trans", []ConstraintID{id1, id2})
	assert.False(t, s.InHistory("trans", []ConstraintID{id2, id1}))
}

func TestHistoryIsPerRule(t *testing.T) {
	s := NewConstraintStore()
	id1 := s.Insert("a", nil)
	id2 := s.Insert("b", nil)
	s.AddToHistory("r1", []ConstraintID{id1, id2})
	assert.False(t, s.InHistory("r2", []ConstraintID{id1, id2}))
}

func TestLenCountsOnlyAlive(t *testing.T) {
	s := NewConstraintStore()
	id1 := s.Insert("a", nil)
	s.Insert("a", nil)
	s.Delete(id1)
	assert.Equal(t, 1, s.Len())
}

func TestAllDifferentAndAllAlive(t *testing.T) {
	assert.True(t, AllDifferent([]ConstraintID{1, 2, 3}))
	assert.False(t, AllDifferent([]ConstraintID{1, 2, 1}))

	s := NewConstraintStore()
	id1 := s.Insert("a", nil)
	id2 := s.Insert("a", nil)
	assert.True(t, AllAlive(s, []ConstraintID{id1, id2}))
	s.Delete(id1)
	assert.False(t, AllAlive(s, []ConstraintID{id1, id2}))
}
