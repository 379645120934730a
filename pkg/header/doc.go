// Package header models ordered FITS-style metadata sets and merges them
// with conflict detection.
//
// # Cards
//
// A [Header] is an ordered list of [Card] values. Scalar keys appear at
// most once; assigning an existing scalar key updates it in place and
// keeps its position and comment. The append keys COMMENT, HISTORY and
// the blank key are multi-valued: every assignment adds a card, and
// [Header.Values] returns them in insertion order.
//
// Values are one of string, bool, int, float64 or nil (undefined). Codec
// layers may also supply complex128 or big integers, which are carried
// through unchanged.
//
// # Merging
//
// [Merge] combines several headers into a new one:
//
//	merged, err := header.Merge(primary, data)
//	var conflict *header.ConflictError
//	if errors.As(err, &conflict) {
//	    fmt.Println(conflict.Key, conflict.First, conflict.Second)
//	}
//
// The first occurrence of a scalar key fixes its value. A later source
// carrying the same key with a different value fails the merge. Integer
// and floating-point values compare by numeric value, so 1 and 1.0 agree.
// Append keys are concatenated in source order without deduplication.
package header
