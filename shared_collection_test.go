package bombarena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharedCollection_InsertionOrder(t *testing.T) {
	s := NewSharedCollection[string, string]()
	s.Add("a", "id-a")
	s.Add("b", "id-b")
	s.Add("c", "id-c")

	assert.Equal(t, []string{"a", "b", "c"}, s.Values())

	assert.True(t, s.Remove("id-b"))
	assert.False(t, s.Remove("id-b"))
	assert.Equal(t, []string{"a", "c"}, s.Values())

	s.Add("b", "id-b")
	assert.Equal(t, []string{"a", "c", "b"}, s.Values())
}

func TestSharedCollection_ReAddKeepsPosition(t *testing.T) {
	s := NewSharedCollection[string, string]()
	s.Add("a", "1")
	s.Add("b", "2")
	s.Add("a2", "1")

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a2", "b"}, s.Values())
}

func TestSharedCollection_Get(t *testing.T) {
	s := NewSharedCollection[string, uint64]()
	s.Add("a", 1)
	s.Add("b", 2)

	obj, ok := s.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "b", obj)
	assert.True(t, s.Has(1))

	_, ok = s.Get(3)
	assert.False(t, ok)
}

func TestSharedCollection_ForEachAllowsMutation(t *testing.T) {
	s := NewSharedCollection[int, string]()
	s.Add(1, "one")
	s.Add(2, "two")

	visited := 0
	s.ForEach(func(id string, _ int) {
		visited++
		s.Remove(id)
	})

	assert.Equal(t, 2, visited)
	assert.Equal(t, 0, s.Len())
}

func TestSharedCollection_Concurrent(t *testing.T) {
	s := NewSharedCollection[int, uint64]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := uint64(n)
			s.Add(n, id)
			s.Get(id)
			s.ForEach(func(uint64, int) {})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
}
