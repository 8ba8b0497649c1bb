// Package orset implements an Observed-Remove Set: a state-based CRDT
// supporting add and remove with add-wins semantics under concurrency.
package orset

import "time"

// UniqueTag identifies a single add operation. Replica and Sequence
// together guarantee global uniqueness even when TimestampMicros
// collides across adds on one replica within the same microsecond.
type UniqueTag struct {
	Replica         string `json:"replica"`
	TimestampMicros uint64 `json:"timestamp_micros"`
	Sequence        uint64 `json:"sequence"`
}

// ORSet is an add-wins set of comparable elements of type T.
type ORSet[T comparable] struct {
	replica     string
	elements    map[T]map[UniqueTag]struct{}
	removedTags map[UniqueTag]struct{}
	sequence    uint64
}

// New returns an empty OR-Set owned by replica.
func New[T comparable](replica string) *ORSet[T] {
	return &ORSet[T]{
		replica:     replica,
		elements:    make(map[T]map[UniqueTag]struct{}),
		removedTags: make(map[UniqueTag]struct{}),
	}
}

// Add inserts element, issuing a fresh UniqueTag built from this
// replica, the current wall-clock microseconds, and a per-replica
// sequence counter. The wall-clock component is a tie-break
// convenience only; uniqueness comes from the sequence counter, which
// never resets.
func (s *ORSet[T]) Add(element T) {
	s.sequence++
	tag := UniqueTag{
		Replica:         s.replica,
		TimestampMicros: uint64(time.Now().UnixMicro()),
		Sequence:        s.sequence,
	}
	if s.elements[element] == nil {
		s.elements[element] = make(map[UniqueTag]struct{})
	}
	s.elements[element][tag] = struct{}{}
}

// Remove moves every tag currently associated with element into the
// removed set. A no-op if element is absent.
func (s *ORSet[T]) Remove(element T) {
	for tag := range s.elements[element] {
		s.removedTags[tag] = struct{}{}
	}
}

// Contains reports whether element has at least one tag that has not
// been removed.
func (s *ORSet[T]) Contains(element T) bool {
	for tag := range s.elements[element] {
		if _, removed := s.removedTags[tag]; !removed {
			return true
		}
	}
	return false
}

// Elements returns every element currently in the set. Order is
// unspecified.
func (s *ORSet[T]) Elements() []T {
	out := make([]T, 0, len(s.elements))
	for element := range s.elements {
		if s.Contains(element) {
			out = append(out, element)
		}
	}
	return out
}

// Len returns the number of elements currently in the set.
func (s *ORSet[T]) Len() int {
	n := 0
	for element := range s.elements {
		if s.Contains(element) {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the set currently has no elements.
func (s *ORSet[T]) IsEmpty() bool {
	return s.Len() == 0
}

// Merge unions other's tags and removed-tag set into s. Add-wins
// follows directly: a tag surviving in either replica's elements map
// and absent from the unioned removed set keeps its element present.
func (s *ORSet[T]) Merge(other *ORSet[T]) {
	for element, tags := range other.elements {
		if s.elements[element] == nil {
			s.elements[element] = make(map[UniqueTag]struct{}, len(tags))
		}
		for tag := range tags {
			s.elements[element][tag] = struct{}{}
		}
	}
	for tag := range other.removedTags {
		s.removedTags[tag] = struct{}{}
	}
}

// Clear removes every element currently present by moving all of
// their tags into the removed set. Adds concurrent with a Clear still
// survive merge under add-wins semantics, since their tags were never
// observed by the clearing replica.
func (s *ORSet[T]) Clear() {
	for _, tags := range s.elements {
		for tag := range tags {
			s.removedTags[tag] = struct{}{}
		}
	}
}
