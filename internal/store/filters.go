package store

import (
	"fmt"
	"strings"
)

// Eq builds an equality predicate for Filters.
func Eq(v any) string {
	return fmt.Sprintf("eq.%v", v)
}

// Ilike builds a case-insensitive substring-match predicate.
func Ilike(term string) string {
	return "ilike.%" + term + "%"
}

// AnyIlike builds an OR group matching term case-insensitively against any of
// the given columns. Use it as the value of the "or" filter key.
func AnyIlike(term string, columns ...string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + ".ilike.%" + term + "%"
	}
	return "(" + strings.Join(parts, ",") + ")"
}
