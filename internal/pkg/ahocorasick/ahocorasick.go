package ahocorasick

import (
	"fmt"
	"iter"

	"github.com/endorses/lexmatch/internal/pkg/alphabet"
	"github.com/endorses/lexmatch/internal/pkg/trie"
)

// Automaton is an Aho-Corasick automaton for multi-pattern string matching.
// It does not own a separate structure: the links live on the trie nodes, so
// before Build it is merely a trie.
type Automaton struct {
	trie  *trie.Trie
	built bool
}

// New inserts patterns into a fresh trie over p and builds the automaton.
// A nil policy selects alphabet.Lower. The first rejected pattern aborts
// construction and no automaton is returned.
func New(p alphabet.Policy, patterns ...string) (*Automaton, error) {
	t := trie.New(p)
	for i, pattern := range patterns {
		if err := t.Insert(pattern); err != nil {
			return nil, fmt.Errorf("pattern %d %q: %w", i, pattern, err)
		}
	}

	a := NewFromTrie(t)
	a.Build()
	return a, nil
}

// NewFromTrie wraps an existing trie. Call Build once all patterns are
// inserted; Build freezes the trie.
func NewFromTrie(t *trie.Trie) *Automaton {
	return &Automaton{trie: t}
}

// Trie returns the underlying trie.
func (a *Automaton) Trie() *trie.Trie {
	return a.trie
}

// Built reports whether the links have been computed.
func (a *Automaton) Built() bool {
	return a.built
}

// PatternCount returns the number of distinct patterns in the automaton.
func (a *Automaton) PatternCount() int {
	return a.trie.Len()
}

// FindKeywords finds every occurrence of every pattern in text.
// Matches are ordered by end position, longest pattern first at equal ends.
// On an invalid symbol the matches found before it are returned with the error.
func (a *Automaton) FindKeywords(text string) ([]Match, error) {
	var results []Match
	err := a.Scan(text, func(m Match) bool {
		results = append(results, m)
		return true
	})
	return results, err
}

// Scan streams matches to fn in one pass over text. Returning false from fn
// stops the scan without error.
func (a *Automaton) Scan(text string, fn func(Match) bool) error {
	c := a.newCursor()
	_, err := c.feed(text, fn)
	return err
}

// All returns an iterator over the matches in text. A scan error is yielded
// once, paired with a zero Match, and ends the sequence.
func (a *Automaton) All(text string) iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		stopped := false
		err := a.Scan(text, func(m Match) bool {
			if !yield(m, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(Match{}, err)
		}
	}
}

// Contains reports whether any pattern occurs in text, stopping at the
// first occurrence.
func (a *Automaton) Contains(text string) (bool, error) {
	found := false
	err := a.Scan(text, func(Match) bool {
		found = true
		return false
	})
	return found, err
}

func (a *Automaton) newCursor() *cursor {
	if !a.built {
		panic(ErrUninitialized)
	}
	return &cursor{a: a, state: trie.Root}
}

// cursor is the scan position: the current trie node and the absolute
// offset of the next input byte.
type cursor struct {
	a      *Automaton
	state  trie.NodeID
	offset int

	// hops counts failure-link traversals.
	hops int
}

// feed advances the cursor over text. It reports false when fn asked to stop.
func (c *cursor) feed(text string, fn func(Match) bool) (bool, error) {
	t := c.a.trie
	policy := t.Policy()

	for i := 0; i < len(text); i++ {
		sym := text[i]
		if !policy.IsValid(sym) {
			err := &alphabet.SymbolError{Symbol: sym, Pos: c.offset + i, Alphabet: policy.Name()}
			c.offset += i
			return true, err
		}

		for !t.IsRoot(c.state) && !t.HasChild(c.state, sym) {
			c.state = t.SuffixLink(c.state)
			c.hops++
		}
		// Root when there is no transition, which restarts matching.
		c.state = t.Child(c.state, sym)

		end := c.offset + i
		out := c.state
		if !t.IsEnd(out) {
			out = t.Output(out)
		}
		for !t.IsRoot(out) {
			pattern := t.Pattern(out)
			m := Match{Pattern: pattern, Start: end - len(pattern) + 1, End: end}
			if !fn(m) {
				c.offset += i + 1
				return false, nil
			}
			out = t.Output(out)
		}
	}

	c.offset += len(text)
	return true, nil
}
