package quota

import (
	"encoding/json"
	"strconv"
)

// Limit is a quota bound that is either a non-negative quantity or
// unbounded. Kept as a tagged value so unlimited items never mix a
// sentinel integer into real sums.
type Limit struct {
	bounded bool
	n       int
}

func Unbounded() Limit    { return Limit{} }
func Bounded(n int) Limit { return Limit{bounded: true, n: n} }

func (l Limit) IsBounded() bool { return l.bounded }

// Value returns the bound and whether one exists.
func (l Limit) Value() (int, bool) { return l.n, l.bounded }

// Allows reports whether qty units fit under the limit.
func (l Limit) Allows(qty int) bool { return !l.bounded || qty <= l.n }

// Positive reports whether at least one unit remains.
func (l Limit) Positive() bool { return !l.bounded || l.n > 0 }

// Min returns the tighter of the two limits.
func (l Limit) Min(o Limit) Limit {
	switch {
	case !l.bounded:
		return o
	case !o.bounded:
		return l
	case o.n < l.n:
		return o
	default:
		return l
	}
}

// MarshalJSON renders unbounded limits as null so API clients see the
// absence of a ceiling, not a magic number.
func (l Limit) MarshalJSON() ([]byte, error) {
	if !l.bounded {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(l.n)), nil
}

func (l *Limit) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = Unbounded()
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*l = Bounded(n)
	return nil
}
