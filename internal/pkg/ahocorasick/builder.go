package ahocorasick

import (
	"github.com/endorses/lexmatch/internal/pkg/trie"
)

// Build computes suffix and output links for every node and freezes the trie.
// The build process has two phases:
//  1. Every direct child of the root links to the root.
//  2. Deeper nodes are handled breadth-first, so a node's parent is always linked
//     before the node itself.
//
// Build is a pure function of the trie shape: running it again yields the same links.
// Time complexity: O(m) where m is the total length of all patterns.
func (a *Automaton) Build() {
	t := a.trie
	t.Freeze()
	t.SetLinks(trie.Root, trie.Root, trie.Root)

	queue := make([]trie.NodeID, 0, t.NodeCount())
	t.Children(trie.Root, func(child trie.NodeID) bool {
		t.SetLinks(child, trie.Root, trie.Root)
		queue = append(queue, child)
		return true
	})

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		t.Children(curr, func(child trie.NodeID) bool {
			queue = append(queue, child)

			// Follow failure links from the parent's link until a node has a
			// transition for this child's symbol, or we reach the root.
			c := t.Symbol(child)
			f := t.SuffixLink(curr)
			for !t.IsRoot(f) && !t.HasChild(f, c) {
				f = t.SuffixLink(f)
			}
			link := t.Child(f, c)

			// The output link skips suffix-chain nodes where no pattern ends.
			output := link
			if !t.IsEnd(link) {
				output = t.Output(link)
			}

			t.SetLinks(child, link, output)
			return true
		})
	}

	a.built = true
}
