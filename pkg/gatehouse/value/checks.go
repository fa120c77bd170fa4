package value

import "strconv"

// StringOp is the comparison operator for a [StringCheck].
type StringOp int

const (
	// Is matches when the tested value equals one of the check's values.
	Is StringOp = iota
	// IsNot matches when the tested value equals none of the check's values.
	IsNot
)

// StringCheck tests a single string value against a list of candidates.
type StringCheck struct {
	Op     StringOp
	Values []string
}

// NewStringCheck builds a StringCheck. Candidate values are stored as given;
// Match compares them by canonical form.
func NewStringCheck(op StringOp, values ...string) *StringCheck {
	return &StringCheck{Op: op, Values: values}
}

// Match reports whether the canonical form of tested satisfies the check.
// An empty Values list makes Is never match and IsNot always match.
func (c *StringCheck) Match(tested string) bool {
	canon := Canon(tested)
	found := false
	for _, v := range c.Values {
		if Canon(v) == canon {
			found = true
			break
		}
	}
	switch c.Op {
	case Is:
		return found
	case IsNot:
		return !found
	default:
		return false
	}
}

// KvOp is the comparison operator for a [KvCheck].
type KvOp int

const (
	// Has matches when the attribute set at Key contains at least one of
	// the check's values (OR semantics).
	Has KvOp = iota
	// HasNot matches when the attribute set at Key contains none of the
	// check's values. A missing key behaves as an empty set, so HasNot is
	// true against a missing key.
	HasNot
)

// KvCheck tests a multi-valued attribute map entry against a list of
// candidate values.
type KvCheck struct {
	Key    string
	Op     KvOp
	Values []string
}

// NewKvCheck builds a KvCheck.
func NewKvCheck(key string, op KvOp, values ...string) *KvCheck {
	return &KvCheck{Key: key, Op: op, Values: values}
}

// Match evaluates the check against attrs. A missing key is treated as an
// empty set.
func (c *KvCheck) Match(attrs *AttributeMap) bool {
	var set *StringSet
	if attrs != nil {
		set = attrs.Get(c.Key)
	}

	any := false
	if set != nil {
		for _, v := range c.Values {
			if set.Has(v) {
				any = true
				break
			}
		}
	}

	switch c.Op {
	case Has:
		return any
	case HasNot:
		return !any
	default:
		return false
	}
}

// MatchAllKv reports whether every check in checks matches attrs; an empty
// slice is vacuously true. Each KvCheck in the slice is ANDed together,
// matching the spec's "supply multiple KvChecks for their conjunction"
// convention.
func MatchAllKv(checks []*KvCheck, attrs *AttributeMap) bool {
	for _, c := range checks {
		if !c.Match(attrs) {
			return false
		}
	}
	return true
}

// NumberOp is the comparison operator for a [NumberCheck].
type NumberOp int

const (
	// Equals matches when the tested value equals Val.
	Equals NumberOp = iota
	// LessThan matches when the tested value is strictly less than Val.
	LessThan
	// MoreThan matches when the tested value is strictly greater than Val.
	MoreThan
)

// NumberCheck tests a single signed integer value.
type NumberCheck struct {
	Op  NumberOp
	Val int32
}

// NewNumberCheck builds a NumberCheck.
func NewNumberCheck(op NumberOp, val int32) *NumberCheck {
	return &NumberCheck{Op: op, Val: val}
}

// Match evaluates the check against tested.
func (c *NumberCheck) Match(tested int32) bool {
	switch c.Op {
	case Equals:
		return tested == c.Val
	case LessThan:
		return tested < c.Val
	case MoreThan:
		return tested > c.Val
	default:
		return false
	}
}

// ParseInt32 parses s as a signed 32-bit integer, for use when a numeric
// comparison is applied to a value derived on demand from context. Parse
// failures are reported to the caller, which per the evaluation contract
// must treat them as a failed predicate rather than propagate an error.
func ParseInt32(s string) (int32, bool) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}
