// Package value provides the typed attribute values and comparison
// primitives used throughout gatehouse: canonical string forms, sets of
// string values, and the three check types (string, key/value, number) a
// policy rule is built from.
package value

import "strings"

// Canon returns the canonical form of a name or type string used for
// identity, indexing, and equality. Canonical form is case-folded; the
// original casing is preserved separately for display wherever it matters.
func Canon(s string) string {
	return strings.ToLower(s)
}

// StringSet is an unordered set of strings, keyed by canonical form but
// remembering one original-case representative for display.
type StringSet struct {
	m map[string]string // canonical -> original
}

// NewStringSet builds a StringSet from the given values, deduplicating by
// canonical form.
func NewStringSet(values ...string) *StringSet {
	s := &StringSet{m: make(map[string]string)}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v into the set. If a value with the same canonical form is
// already present, the existing representative is kept.
func (s *StringSet) Add(v string) {
	c := Canon(v)
	if _, ok := s.m[c]; !ok {
		s.m[c] = v
	}
}

// Remove deletes v from the set, matched by canonical form. Removing an
// absent value is a no-op.
func (s *StringSet) Remove(v string) {
	delete(s.m, Canon(v))
}

// Has reports whether v (canonicalized) is a member of the set.
func (s *StringSet) Has(v string) bool {
	_, ok := s.m[Canon(v)]
	return ok
}

// Len returns the number of distinct canonical values in the set.
func (s *StringSet) Len() int {
	return len(s.m)
}

// Values returns the original-case representatives in the set, in no
// particular order.
func (s *StringSet) Values() []string {
	out := make([]string, 0, len(s.m))
	for _, v := range s.m {
		out = append(out, v)
	}
	return out
}

// Canonical returns the canonical-form values in the set, in no particular
// order.
func (s *StringSet) Canonical() []string {
	out := make([]string, 0, len(s.m))
	for c := range s.m {
		out = append(out, c)
	}
	return out
}

// Clone returns an independent copy of the set.
func (s *StringSet) Clone() *StringSet {
	out := &StringSet{m: make(map[string]string, len(s.m))}
	for k, v := range s.m {
		out.m[k] = v
	}
	return out
}

// Intersects reports whether s and other share at least one canonical
// value. A nil receiver or argument behaves as an empty set.
func (s *StringSet) Intersects(other *StringSet) bool {
	if s == nil || other == nil {
		return false
	}
	small, big := s, other
	if len(big.m) < len(small.m) {
		small, big = big, small
	}
	for c := range small.m {
		if _, ok := big.m[c]; ok {
			return true
		}
	}
	return false
}

// AttributeMap is a multi-valued attribute map: each key maps to a set of
// string values. Lookups and mutation are by canonical key.
type AttributeMap struct {
	m map[string]*StringSet
}

// NewAttributeMap returns an empty AttributeMap.
func NewAttributeMap() *AttributeMap {
	return &AttributeMap{m: make(map[string]*StringSet)}
}

// Get returns the set stored at key, or nil if the key is absent. The
// returned set must not be mutated by the caller; use AddValues/RemoveValues.
func (a *AttributeMap) Get(key string) *StringSet {
	return a.m[Canon(key)]
}

// AddValues inserts values into the set at key, creating the key if
// necessary.
func (a *AttributeMap) AddValues(key string, values ...string) {
	c := Canon(key)
	set := a.m[c]
	if set == nil {
		set = NewStringSet()
		a.m[c] = set
	}
	for _, v := range values {
		set.Add(v)
	}
}

// RemoveValues removes values from the set at key. A value not present is
// silently ignored. If removal empties the set, the key itself is removed.
func (a *AttributeMap) RemoveValues(key string, values ...string) {
	c := Canon(key)
	set := a.m[c]
	if set == nil {
		return
	}
	for _, v := range values {
		set.Remove(v)
	}
	if set.Len() == 0 {
		delete(a.m, c)
	}
}

// Keys returns the canonical keys present in the map.
func (a *AttributeMap) Keys() []string {
	out := make([]string, 0, len(a.m))
	for k := range a.m {
		out = append(out, k)
	}
	return out
}

// Clone returns a deep copy of the attribute map.
func (a *AttributeMap) Clone() *AttributeMap {
	out := NewAttributeMap()
	for k, v := range a.m {
		out.m[k] = v.Clone()
	}
	return out
}

// MergePreferExisting copies keys from other into a, but only for keys not
// already present in a — a shared key keeps a's values untouched. This
// gives the receiver precedence over other on conflict, which is how
// request-supplied attributes win over an actor's stored attributes during
// enrichment.
func (a *AttributeMap) MergePreferExisting(other *AttributeMap) {
	if other == nil {
		return
	}
	for k, set := range other.m {
		if _, exists := a.m[k]; exists {
			continue
		}
		a.m[k] = set.Clone()
	}
}
