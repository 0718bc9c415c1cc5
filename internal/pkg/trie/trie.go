// Package trie implements the character-indexed prefix trie the Aho-Corasick
// automaton is built on.
//
// Nodes live in a single arena slice and refer to each other through NodeID
// handles. Parent-to-child edges are the only ownership relation; suffix and
// output links are plain handles into the same arena and are filled in by the
// automaton's link pass.
package trie

import (
	"errors"

	"github.com/endorses/lexmatch/internal/pkg/alphabet"
)

var (
	// ErrEmptyPattern is returned when inserting the empty string.
	ErrEmptyPattern = errors.New("empty pattern")

	// ErrFrozen is returned when inserting into a trie whose links have been built.
	ErrFrozen = errors.New("trie is frozen")
)

// NodeID is a handle to a node in the trie's arena.
type NodeID int32

// Root is the handle of the root node. A child slot holding Root is empty,
// since the root is never anybody's child.
const Root NodeID = 0

// node is a single trie node.
type node struct {
	// symbol is the byte on the edge into this node. Meaningless for the root.
	symbol byte

	// children holds one slot per alphabet symbol, Root meaning empty.
	children []NodeID

	// end marks the node as the terminus of an inserted pattern.
	end bool

	// pattern is the full pattern recorded at an end node.
	pattern string

	// link is the suffix (failure) link.
	link NodeID

	// output is the nearest end node reachable through suffix links,
	// or Root when there is none.
	output NodeID

	depth int
}

// Trie is a prefix trie over a fixed alphabet.
// It is not safe for concurrent insertion.
type Trie struct {
	policy   alphabet.Policy
	nodes    []node
	patterns []string
	frozen   bool
}

// New creates an empty trie over p. A nil policy selects alphabet.Lower.
func New(p alphabet.Policy) *Trie {
	if p == nil {
		p = alphabet.Lower()
	}
	t := &Trie{policy: p}
	t.nodes = append(t.nodes, t.newNode(0, 0))
	return t
}

func (t *Trie) newNode(symbol byte, depth int) node {
	return node{
		symbol:   symbol,
		children: make([]NodeID, t.policy.Size()),
		depth:    depth,
	}
}

// Insert adds pattern to the trie.
func (t *Trie) Insert(pattern string) error {
	_, err := t.Add(pattern)
	return err
}

// Add inserts pattern and reports whether it was not already present.
// The pattern is validated before any node is created, so a rejected
// pattern leaves the trie unchanged.
func (t *Trie) Add(pattern string) (bool, error) {
	if t.frozen {
		return false, ErrFrozen
	}
	if pattern == "" {
		return false, ErrEmptyPattern
	}
	if err := alphabet.Validate(t.policy, pattern); err != nil {
		return false, err
	}

	curr := Root
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		slot := t.policy.Index(c)
		next := t.nodes[curr].children[slot]
		if next == Root {
			next = NodeID(len(t.nodes))
			t.nodes = append(t.nodes, t.newNode(c, t.nodes[curr].depth+1))
			t.nodes[curr].children[slot] = next
		}
		curr = next
	}

	n := &t.nodes[curr]
	if n.end {
		return false, nil
	}
	n.end = true
	n.pattern = pattern
	t.patterns = append(t.patterns, pattern)
	return true, nil
}

// walk follows s from the root and returns the final node, or false when
// some symbol has no child (or is not in the alphabet).
func (t *Trie) walk(s string) (NodeID, bool) {
	curr := Root
	for i := 0; i < len(s); i++ {
		next := t.Child(curr, s[i])
		if next == Root {
			return Root, false
		}
		curr = next
	}
	return curr, true
}

// HasPrefix reports whether s is a prefix of some inserted pattern.
func (t *Trie) HasPrefix(s string) bool {
	_, ok := t.walk(s)
	return ok
}

// HasWord reports whether s was inserted verbatim.
func (t *Trie) HasWord(s string) bool {
	id, ok := t.walk(s)
	return ok && t.nodes[id].end
}

// Child returns the child of id reached by c, or Root when there is none.
// Symbols outside the alphabet have no children.
func (t *Trie) Child(id NodeID, c byte) NodeID {
	slot := t.policy.Index(c)
	if slot < 0 {
		return Root
	}
	return t.nodes[id].children[slot]
}

// HasChild reports whether id has a child for c.
func (t *Trie) HasChild(id NodeID, c byte) bool {
	return t.Child(id, c) != Root
}

// Children calls fn for each child of id in alphabet order until fn
// returns false.
func (t *Trie) Children(id NodeID, fn func(child NodeID) bool) {
	for _, child := range t.nodes[id].children {
		if child == Root {
			continue
		}
		if !fn(child) {
			return
		}
	}
}

// Walk visits every node breadth-first starting at the root, so a node is
// always visited after its parent.
func (t *Trie) Walk(fn func(id NodeID) bool) {
	queue := make([]NodeID, 0, len(t.nodes))
	queue = append(queue, Root)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if !fn(id) {
			return
		}
		t.Children(id, func(child NodeID) bool {
			queue = append(queue, child)
			return true
		})
	}
}

// IsRoot reports whether id is the root.
func (t *Trie) IsRoot(id NodeID) bool { return id == Root }

// IsEnd reports whether a pattern ends at id.
func (t *Trie) IsEnd(id NodeID) bool { return t.nodes[id].end }

// Pattern returns the pattern recorded at an end node.
func (t *Trie) Pattern(id NodeID) string { return t.nodes[id].pattern }

// Symbol returns the edge symbol into id.
func (t *Trie) Symbol(id NodeID) byte { return t.nodes[id].symbol }

// Depth returns the length of the path spelled by id.
func (t *Trie) Depth(id NodeID) int { return t.nodes[id].depth }

// SuffixLink returns the suffix link of id. It is only meaningful once
// the links have been built.
func (t *Trie) SuffixLink(id NodeID) NodeID { return t.nodes[id].link }

// Output returns the nearest end node on id's suffix-link chain, or Root.
func (t *Trie) Output(id NodeID) NodeID { return t.nodes[id].output }

// SetLinks records the suffix and output links of id.
func (t *Trie) SetLinks(id, link, output NodeID) {
	t.nodes[id].link = link
	t.nodes[id].output = output
}

// Freeze stops further insertion.
func (t *Trie) Freeze() { t.frozen = true }

// Frozen reports whether Freeze has been called.
func (t *Trie) Frozen() bool { return t.frozen }

// Policy returns the alphabet the trie was built with.
func (t *Trie) Policy() alphabet.Policy { return t.policy }

// Len returns the number of distinct patterns inserted.
func (t *Trie) Len() int { return len(t.patterns) }

// NodeCount returns the number of nodes including the root.
func (t *Trie) NodeCount() int { return len(t.nodes) }

// Patterns returns the inserted patterns in insertion order.
func (t *Trie) Patterns() []string {
	out := make([]string, len(t.patterns))
	copy(out, t.patterns)
	return out
}
