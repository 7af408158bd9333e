// Package stringseq provides functions for converting sequences of values to strings.
package stringseq

import (
	"iter"
	"strings"
)

// Append appends the elements of its second argument to the given string builder. The separator
// string sep is placed between elements in the resulting string.
func Append(b *strings.Builder, seq iter.Seq[string], sep string) {
	n := 0
	for item := range seq {
		if n > 0 {
			b.WriteString(sep)
		}
		b.WriteString(item)
		n++
	}
}

// Join concatenates the elements of its first argument to create a single string. The separator
// string sep is placed between elements in the resulting string.
func Join(seq iter.Seq[string], sep string) string {
	var b strings.Builder
	Append(&b, seq, sep)
	return b.String()
}

// JoinFunc concatenates the elements of elems converted to strings by conv. The separator
// string sep is placed between elements in the resulting string.
func JoinFunc[T any](elems []T, sep string, conv func(T) string) string {
	var b strings.Builder
	for i, el := range elems {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(conv(el))
	}
	return b.String()
}
