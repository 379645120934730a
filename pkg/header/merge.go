package header

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/matzehuels/imageoi/pkg/errors"
)

// ConflictError reports a scalar key whose value differs between two
// merged headers.
type ConflictError struct {
	Key    string
	First  any
	Second any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting values for %s: %v != %v", e.Key, e.First, e.Second)
}

// Merge combines headers in order into a new header. Nil headers are
// skipped and none of the inputs is modified.
//
// The error wraps a *ConflictError and carries [errors.ErrCodeConflict].
func Merge(headers ...*Header) (*Header, error) {
	out := &Header{}
	for _, h := range headers {
		if h == nil {
			continue
		}
		for _, c := range h.cards {
			if IsAppendKey(c.Key) {
				out.cards = append(out.cards, c)
				continue
			}
			i := out.index(c.Key)
			if i < 0 {
				out.cards = append(out.cards, c)
				continue
			}
			if !Equal(out.cards[i].Value, c.Value) {
				conflict := &ConflictError{Key: c.Key, First: out.cards[i].Value, Second: c.Value}
				return nil, errors.Wrap(errors.ErrCodeConflict, conflict, "merge headers")
			}
			if out.cards[i].Comment == "" {
				out.cards[i].Comment = c.Comment
			}
		}
	}
	return out, nil
}

// Equal reports whether two card values are the same. Numbers compare by
// value regardless of their Go type.
func Equal(a, b any) bool {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	case big.Int:
		f, _ := new(big.Float).SetInt(&n).Float64()
		return f, true
	}
	return 0, false
}
