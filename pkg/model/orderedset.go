package model

import "strings"

// OrderedSet is a set of strings that remembers first-insertion order.
// The zero value is ready to use.
type OrderedSet struct {
	values []string
	index  map[string]struct{}
}

// NewOrderedSet returns a set seeded with the given values.
func NewOrderedSet(values ...string) *OrderedSet {
	s := &OrderedSet{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v and reports whether it was not already present.
// Empty strings are never stored.
func (s *OrderedSet) Add(v string) bool {
	if v == "" {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.values = append(s.values, v)
	return true
}

// Contains reports whether v is in the set.
func (s *OrderedSet) Contains(v string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[v]
	return ok
}

// Len returns the number of distinct values.
func (s *OrderedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Values returns a copy of the values in first-insertion order.
func (s *OrderedSet) Values() []string {
	if s == nil || len(s.values) == 0 {
		return nil
	}
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// Join concatenates the values in insertion order.
func (s *OrderedSet) Join(sep string) string {
	if s == nil {
		return ""
	}
	return strings.Join(s.values, sep)
}
