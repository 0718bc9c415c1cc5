// Package ahocorasick provides an implementation of the Aho-Corasick string matching algorithm
// on top of the arena trie in package trie.
//
// The automaton is the trie after a link pass: every node gets a suffix (failure) link
// to the longest proper suffix of its path that is also a prefix of some pattern, and an
// output link to the nearest pattern end on that suffix chain. Scanning a text of length n
// then costs O(n + z) where z is the number of matches, independent of the number of
// patterns, because the total number of failure-link hops is bounded by n.
//
// A built automaton is immutable and safe for concurrent scans.
package ahocorasick

import (
	"errors"
	"fmt"
)

// ErrUninitialized is the panic value raised when scanning before Build.
var ErrUninitialized = errors.New("automaton used before Build: suffix links not computed")

// Match is a single pattern occurrence.
type Match struct {
	// Pattern is the matched keyword.
	Pattern string `json:"pattern" yaml:"pattern"`

	// Start is the byte offset of the first matched symbol.
	Start int `json:"start" yaml:"start"`

	// End is the byte offset of the last matched symbol (inclusive),
	// so the occurrence is text[Start : End+1].
	End int `json:"end" yaml:"end"`
}

// String renders the match as a report line.
func (m Match) String() string {
	return fmt.Sprintf("%s appears in input[%d, %d].", m.Pattern, m.Start, m.End)
}

// Len returns the length of the matched pattern.
func (m Match) Len() int {
	return m.End - m.Start + 1
}

// Matcher is the interface shared by the static automaton and the reloadable matcher.
type Matcher interface {
	// FindKeywords collects every occurrence of every pattern in text.
	FindKeywords(text string) ([]Match, error)

	// Scan delivers occurrences to fn as they are found and stops early
	// when fn returns false.
	Scan(text string, fn func(Match) bool) error

	// PatternCount returns the number of distinct patterns.
	PatternCount() int
}
