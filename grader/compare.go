package grader

import (
	"bytes"
	"fmt"
	"sort"
)

// CompareRows reports whether two result sets are equivalent. A nil set
// compares as empty. When ordered is false, both sets are first sorted
// by the string rendering of each row, which gives a total and
// deterministic order across heterogeneous column types.
func CompareRows(expected, actual []Row, ordered bool) bool {
	if len(expected) != len(actual) {
		return false
	}
	if !ordered {
		expected = sortRows(expected)
		actual = sortRows(actual)
	}
	for i := range expected {
		if !rowsEqual(expected[i], actual[i]) {
			return false
		}
	}
	return true
}

func sortRows(rows []Row) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return fmt.Sprint(sorted[i]) < fmt.Sprint(sorted[j])
	})
	return sorted
}

func rowsEqual(expected, actual Row) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if !valuesEqual(expected[i], actual[i]) {
			return false
		}
	}
	return true
}

// valuesEqual applies the engine's value equality: NULL equals only
// NULL, numbers compare numerically regardless of storage class, text
// and blobs compare by content.
func valuesEqual(expected, actual interface{}) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}
	if en, ok := asFloat(expected); ok {
		an, ok := asFloat(actual)
		return ok && en == an
	}
	if eb, ok := asBytes(expected); ok {
		ab, ok := asBytes(actual)
		return ok && bytes.Equal(eb, ab)
	}
	return expected == actual
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func asBytes(v interface{}) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case string:
		return []byte(b), true
	default:
		return nil, false
	}
}
