package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_IntersectionCardinality(t *testing.T) {
	a := New(10)
	b := New(10)
	for _, id := range []int{1, 2, 3, 8} {
		a.Add(id)
	}
	for _, id := range []int{2, 3, 4, 9} {
		b.Add(id)
	}

	assert.Equal(t, 2, a.IntersectionCardinality(b))
	assert.Equal(t, 4, a.Cardinality())
	assert.ElementsMatch(t, []int{2, 3}, a.Intersect(b).Members())
}

func TestArena_InternsStably(t *testing.T) {
	arena := NewArena()
	id1 := arena.IDFor("cf-ray")
	id2 := arena.IDFor("server")
	id1Again := arena.IDFor("cf-ray")

	assert.Equal(t, id1, id1Again)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, "cf-ray", arena.Label(id1))
	assert.Equal(t, 2, arena.Len())
}
