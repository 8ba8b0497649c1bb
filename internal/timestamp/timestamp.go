// Package timestamp provides HybridTimestamp, the (clock, replica)
// pair used to total-order writes for last-write-wins resolution.
package timestamp

import "fmt"

// HybridTimestamp pairs a logical clock with the replica that issued
// it. Once issued, a HybridTimestamp is immutable.
type HybridTimestamp struct {
	Clock   uint64 `json:"clock"`
	Replica string `json:"client_id"`
}

// New constructs a HybridTimestamp. Callers are responsible for
// choosing clock greater than any clock previously observed on the
// field this timestamp will be attached to.
func New(clockValue uint64, replica string) HybridTimestamp {
	return HybridTimestamp{Clock: clockValue, Replica: replica}
}

// Compare returns -1, 0, or 1 as t sorts before, equal to, or after
// other in the total order: clock numerically, then replica
// lexicographically.
func (t HybridTimestamp) Compare(other HybridTimestamp) int {
	if t.Clock != other.Clock {
		if t.Clock < other.Clock {
			return -1
		}
		return 1
	}
	if t.Replica == other.Replica {
		return 0
	}
	if t.Replica < other.Replica {
		return -1
	}
	return 1
}

// After reports whether t is strictly greater than other in the total
// order.
func (t HybridTimestamp) After(other HybridTimestamp) bool {
	return t.Compare(other) > 0
}

// Before reports whether t is strictly less than other in the total
// order.
func (t HybridTimestamp) Before(other HybridTimestamp) bool {
	return t.Compare(other) < 0
}

// Equal reports whether t and other denote the same point in the
// total order.
func (t HybridTimestamp) Equal(other HybridTimestamp) bool {
	return t.Compare(other) == 0
}

func (t HybridTimestamp) String() string {
	return fmt.Sprintf("%d@%s", t.Clock, t.Replica)
}
