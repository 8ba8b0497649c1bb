// Package fractional implements dense base-62 position keys used to
// order items in a list without renumbering existing entries.
package fractional

import (
	"strings"

	"github.com/synckit-dev/synckit/internal/syncerr"
)

// alphabet is ordered so that ASCII byte order equals base-62 value
// order: digits, then uppercase, then lowercase.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = 62

// maxDepth bounds the number of digits Between will walk before
// giving up and emitting a midpoint digit.
const maxDepth = 20

// FractionalIndex is a dense, lexicographically-ordered position key.
type FractionalIndex string

// First returns the sentinel lower bound used to seed a fresh list.
func First() FractionalIndex {
	return "a0"
}

// Last returns a sentinel upper bound for generation purposes. It is
// not semantically maximal: keys larger than it exist and simply will
// not be produced by After(First()) in typical use.
func Last() FractionalIndex {
	return FractionalIndex(strings.Repeat("z", 10))
}

// digitValue returns the base-62 value of digit d.
func digitValue(d byte) int {
	switch {
	case d >= '0' && d <= '9':
		return int(d - '0')
	case d >= 'A' && d <= 'Z':
		return int(d-'A') + 10
	case d >= 'a' && d <= 'z':
		return int(d-'a') + 36
	default:
		return 0
	}
}

// valueToChar is the inverse of digitValue.
func valueToChar(v int) byte {
	return alphabet[v]
}

// Between returns a fresh key strictly between left and right. left
// must be strictly less than right by byte-wise comparison, otherwise
// InvalidOperation is returned.
func Between(left, right FractionalIndex) (FractionalIndex, error) {
	if string(left) >= string(right) {
		return "", syncerr.New(syncerr.InvalidOperation, "fractional index bounds must be strictly ordered")
	}

	var out strings.Builder
	for depth := 0; depth < maxDepth; depth++ {
		lv := 0
		if depth < len(left) {
			lv = digitValue(left[depth])
		}
		rv := base
		if depth < len(right) {
			rv = digitValue(right[depth])
		}

		switch {
		case lv == rv:
			out.WriteByte(valueToChar(lv))
			continue
		case lv+1 < rv:
			out.WriteByte(valueToChar((lv + rv) / 2))
			return FractionalIndex(out.String()), nil
		default: // lv+1 == rv
			out.WriteByte(valueToChar(lv))
			continue
		}
	}
	// Depth limit reached without finding space: emit one more digit
	// splitting the remaining gap so the result still sorts correctly.
	lv := 0
	if maxDepth < len(left) {
		lv = digitValue(left[maxDepth])
	}
	rv := base
	if maxDepth < len(right) && strings.HasPrefix(string(right), out.String()) {
		rv = digitValue(right[maxDepth])
	}
	out.WriteByte(valueToChar((lv + rv) / 2))
	return FractionalIndex(out.String()), nil
}

// After returns a fresh key strictly after p.
func After(p FractionalIndex) (FractionalIndex, error) {
	return Between(p, Last())
}

// Before returns a fresh key strictly before p.
func Before(p FractionalIndex) (FractionalIndex, error) {
	return Between(First(), p)
}
