// Package kmp implements single-pattern search with the Knuth-Morris-Pratt
// prefix function.
//
// Two prefix tables are provided, differing only in index origin:
//
//	PrefixTable1: table[0] = -1 (unused), table[s] for s in 1..n is the length of the
//	              longest proper prefix of pattern[:s] that is also its suffix.
//	PrefixTable0: table[i] for i in 0..n-1 is that length for pattern[:i+1], minus one,
//	              so -1 means "no proper prefix".
//
// For every pattern PrefixTable0(p)[i] == PrefixTable1(p)[i+1] - 1.
//
// Searching never re-reads consumed text: a mismatch falls back through the
// table instead, bounding comparisons by 2(|text| + |pattern|).
package kmp

import (
	"github.com/endorses/lexmatch/internal/pkg/trie"
)

// ErrEmptyPattern is returned by Compile for the empty pattern.
var ErrEmptyPattern = trie.ErrEmptyPattern

// PrefixTable1 computes the 1-based prefix table of pattern, len(pattern)+1 long.
func PrefixTable1(pattern string) []int {
	n := len(pattern)
	table := make([]int, n+1)
	table[0] = -1
	if n == 0 {
		return table
	}

	// b[1..t] is the longest proper prefix that is also a suffix of b[1..s].
	t := 0
	table[1] = 0
	for s := 1; s < n; s++ {
		for t > 0 && pattern[t] != pattern[s] {
			t = table[t]
		}
		if pattern[s] == pattern[t] {
			t++
		}
		table[s+1] = t
	}
	return table
}

// PrefixTable0 computes the 0-based prefix table of pattern, len(pattern) long.
func PrefixTable0(pattern string) []int {
	n := len(pattern)
	table := make([]int, n)
	if n == 0 {
		return table
	}

	// b[0..t] is the longest proper prefix that is also a suffix of b[0..s].
	t := -1
	table[0] = t
	for s := 0; s <= n-2; s++ {
		for t >= 0 && pattern[t+1] != pattern[s+1] {
			t = table[t]
		}
		if pattern[s+1] == pattern[t+1] {
			t++
		}
		table[s+1] = t
	}
	return table
}

// Match1 reports whether pattern occurs in text, using the 1-based table.
// The empty pattern matches nothing.
func Match1(text, pattern string) bool {
	n := len(pattern)
	if n == 0 {
		return false
	}
	table := PrefixTable1(pattern)

	// s is the length of the currently matched prefix.
	s := 0
	for i := 0; i < len(text); i++ {
		for s > 0 && pattern[s] != text[i] {
			s = table[s]
		}
		if pattern[s] == text[i] {
			s++
		}
		if s == n {
			return true
		}
	}
	return false
}

// Match0 reports whether pattern occurs in text, using the 0-based table.
// The empty pattern matches nothing.
func Match0(text, pattern string) bool {
	n := len(pattern)
	if n == 0 {
		return false
	}
	table := PrefixTable0(pattern)

	// s is the index of the last matched pattern byte, -1 when nothing matched.
	s := -1
	for i := 0; i < len(text); i++ {
		for s > -1 && pattern[s+1] != text[i] {
			s = table[s]
		}
		if pattern[s+1] == text[i] {
			s++
		}
		if s == n-1 {
			return true
		}
	}
	return false
}

// Match reports whether pattern occurs in text.
func Match(text, pattern string) bool {
	return Match1(text, pattern)
}

// Index returns the start of the first occurrence of pattern in text, or -1.
// The empty pattern matches nothing.
func Index(text, pattern string) int {
	if pattern == "" {
		return -1
	}
	m := &Matcher{pattern: pattern, table: PrefixTable1(pattern)}
	return m.Index(text)
}

// IndexAll returns the starts of all occurrences of pattern in text,
// including overlapping ones.
func IndexAll(text, pattern string) []int {
	if pattern == "" {
		return nil
	}
	m := &Matcher{pattern: pattern, table: PrefixTable1(pattern)}
	return m.IndexAll(text)
}
