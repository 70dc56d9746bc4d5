package dates

// OrderedSet is an insertion-ordered collection of distinct strings.
//
// The zero value is ready to use. OrderedSet is not safe for concurrent
// mutation; each extraction run owns its own sets.
type OrderedSet struct {
	items []string
	index map[string]struct{}
}

// NewOrderedSet returns an empty set.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{index: make(map[string]struct{})}
}

// Add appends v unless it is already present and reports whether it was added.
func (s *OrderedSet) Add(v string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Contains reports whether v has been added.
func (s *OrderedSet) Contains(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of distinct values.
func (s *OrderedSet) Len() int {
	return len(s.items)
}

// Values returns a copy of the values in insertion order. The result is never
// nil so that it encodes as an empty list.
func (s *OrderedSet) Values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
