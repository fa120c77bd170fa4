package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSetCanonicalDedup(t *testing.T) {
	s := NewStringSet("Alice", "ALICE", "bob")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("alice"))
	assert.True(t, s.Has("Bob"))
}

func TestStringSetRemoveMissingIsNoop(t *testing.T) {
	s := NewStringSet("a")
	s.Remove("nosuch")
	assert.Equal(t, 1, s.Len())
}

func TestStringSetIntersects(t *testing.T) {
	a := NewStringSet("prod", "east")
	b := NewStringSet("PROD", "west")
	assert.True(t, a.Intersects(b))

	c := NewStringSet("dev")
	assert.False(t, a.Intersects(c))
	assert.False(t, a.Intersects(nil))
}

func TestAttributeMapRemoveEmptiesKey(t *testing.T) {
	a := NewAttributeMap()
	a.AddValues("env", "prod")
	a.RemoveValues("env", "prod")
	assert.Nil(t, a.Get("env"))
}

func TestAttributeMapMergePreferExisting(t *testing.T) {
	request := NewAttributeMap()
	request.AddValues("role", "admin")

	stored := NewAttributeMap()
	stored.AddValues("role", "viewer")
	stored.AddValues("dept", "eng")

	request.MergePreferExisting(stored)

	assert.True(t, request.Get("role").Has("admin"))
	assert.False(t, request.Get("role").Has("viewer"))
	assert.True(t, request.Get("dept").Has("eng"))
}

func TestStringCheckIs(t *testing.T) {
	c := NewStringCheck(Is, "Read", "Write")
	assert.True(t, c.Match("read"))
	assert.False(t, c.Match("delete"))
}

func TestStringCheckIsEmptyValuesNeverMatches(t *testing.T) {
	c := NewStringCheck(Is)
	assert.False(t, c.Match("anything"))
}

func TestStringCheckIsNotEmptyValuesAlwaysMatches(t *testing.T) {
	c := NewStringCheck(IsNot)
	assert.True(t, c.Match("anything"))
}

func TestKvCheckHasOrSemantics(t *testing.T) {
	attrs := NewAttributeMap()
	attrs.AddValues("role", "viewer", "editor")

	c := NewKvCheck("role", Has, "admin", "editor")
	assert.True(t, c.Match(attrs))
}

func TestKvCheckHasNotMissingKeyIsTrue(t *testing.T) {
	attrs := NewAttributeMap()
	c := NewKvCheck("role", HasNot, "admin")
	assert.True(t, c.Match(attrs))
}

func TestMatchAllKvEmptyIsVacuouslyTrue(t *testing.T) {
	assert.True(t, MatchAllKv(nil, NewAttributeMap()))
}

func TestNumberCheckOps(t *testing.T) {
	assert.True(t, NewNumberCheck(LessThan, 50).Match(10))
	assert.False(t, NewNumberCheck(LessThan, 50).Match(50))
	assert.True(t, NewNumberCheck(MoreThan, 50).Match(51))
	assert.True(t, NewNumberCheck(Equals, 7).Match(7))
}

func TestParseInt32(t *testing.T) {
	v, ok := ParseInt32("42")
	assert.True(t, ok)
	assert.Equal(t, int32(42), v)

	_, ok = ParseInt32("not-a-number")
	assert.False(t, ok)
}
