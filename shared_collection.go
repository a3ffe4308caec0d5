package bombarena

import (
	"sync"
)

// A generic, thread-safe map of objects that remembers insertion order.
// Iteration always visits objects oldest first.
type SharedCollection[T any, K comparable] struct {
	objectMap map[K]T
	order     []K
	sync.Mutex
}

func NewSharedCollection[T any, K comparable](capacity ...int) *SharedCollection[T, K] {
	size := 0
	if len(capacity) > 0 {
		size = capacity[0]
	}

	return &SharedCollection[T, K]{
		objectMap: make(map[K]T, size),
		order:     make([]K, 0, size),
	}
}

// Add stores obj under id. Re-adding an existing id replaces the object but
// keeps its position.
func (s *SharedCollection[T, K]) Add(obj T, id K) {
	s.Lock()
	defer s.Unlock()

	if _, exists := s.objectMap[id]; !exists {
		s.order = append(s.order, id)
	}
	s.objectMap[id] = obj
}

// Removes an object by ID, if it exists
// Returns true if the object was removed
func (s *SharedCollection[T, K]) Remove(id K) bool {
	s.Lock()
	defer s.Unlock()

	if _, exists := s.objectMap[id]; !exists {
		return false
	}

	delete(s.objectMap, id)
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Call the callback for each object in insertion order. The callback runs on
// a snapshot, so it may add or remove objects.
func (s *SharedCollection[T, K]) ForEach(callback func(id K, obj T)) {
	ids, objs := s.snapshot()
	for i := range ids {
		callback(ids[i], objs[i])
	}
}

// Get an object with the given ID, if it exists
// Also returns a boolean indicating whether the object was found
func (s *SharedCollection[T, K]) Get(id K) (T, bool) {
	s.Lock()
	defer s.Unlock()

	obj, found := s.objectMap[id]
	return obj, found
}

// Values returns the objects in insertion order.
func (s *SharedCollection[T, K]) Values() []T {
	_, objs := s.snapshot()
	return objs
}

func (s *SharedCollection[T, K]) Has(id K) bool {
	s.Lock()
	defer s.Unlock()

	_, exists := s.objectMap[id]
	return exists
}

func (s *SharedCollection[T, K]) Len() int {
	s.Lock()
	defer s.Unlock()
	return len(s.objectMap)
}

func (s *SharedCollection[T, K]) snapshot() ([]K, []T) {
	s.Lock()
	defer s.Unlock()

	ids := make([]K, len(s.order))
	objs := make([]T, len(s.order))
	for i, id := range s.order {
		ids[i] = id
		objs[i] = s.objectMap[id]
	}
	return ids, objs
}
