package trie

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/endorses/lexmatch/internal/pkg/alphabet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrie_Insert(t *testing.T) {
	tests := []struct {
		name    string
		words   []string
		missing []string
	}{
		{
			name:    "shared prefixes",
			words:   []string{"boba", "bobie", "abc", "bsda"},
			missing: []string{"bob", "b", "abcd", "bobi"},
		},
		{
			name:    "classic keyword set",
			words:   []string{"he", "she", "his", "hers"},
			missing: []string{"bob", "h", "her", "sh"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(nil)
			for _, w := range tt.words {
				require.NoError(t, tr.Insert(w))
			}
			for _, w := range tt.words {
				assert.True(t, tr.HasWord(w), "word %q", w)
			}
			for _, w := range tt.missing {
				assert.False(t, tr.HasWord(w), "word %q", w)
			}
			assert.Equal(t, len(tt.words), tr.Len())
		})
	}
}

func TestTrie_HasPrefix(t *testing.T) {
	tr := New(nil)
	require.NoError(t, tr.Insert("boba"))

	for _, prefix := range []string{"boba", "bob", "bo", "b", ""} {
		assert.True(t, tr.HasPrefix(prefix), "prefix %q", prefix)
	}
	for _, prefix := range []string{"bobab", "a", "bb", "BOB"} {
		assert.False(t, tr.HasPrefix(prefix), "prefix %q", prefix)
	}
}

func TestTrie_WordImpliesPrefix(t *testing.T) {
	tr := New(nil)
	words := []string{"true", "false", "then", "the", "if"}
	for _, w := range words {
		require.NoError(t, tr.Insert(w))
	}
	for _, w := range words {
		for i := 0; i <= len(w); i++ {
			assert.True(t, tr.HasPrefix(w[:i]))
		}
		assert.True(t, tr.HasWord(w))
	}
}

func TestTrie_EmptyPattern(t *testing.T) {
	tr := New(nil)
	err := tr.Insert("")
	assert.ErrorIs(t, err, ErrEmptyPattern)
	assert.False(t, tr.IsEnd(Root))
	assert.False(t, tr.HasWord(""))
	assert.Equal(t, 0, tr.Len())
}

func TestTrie_InvalidSymbol(t *testing.T) {
	tr := New(nil)
	require.NoError(t, tr.Insert("abc"))
	nodes := tr.NodeCount()

	err := tr.Insert("abXd")
	require.Error(t, err)
	assert.ErrorIs(t, err, alphabet.ErrInvalidSymbol)

	// Nothing from the rejected pattern was added.
	assert.Equal(t, nodes, tr.NodeCount())
	assert.False(t, tr.HasPrefix("abX"))
	assert.Equal(t, 1, tr.Len())
}

func TestTrie_Duplicate(t *testing.T) {
	tr := New(nil)

	added, err := tr.Add("he")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = tr.Add("he")
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, []string{"he"}, tr.Patterns())
}

func TestTrie_Frozen(t *testing.T) {
	tr := New(nil)
	require.NoError(t, tr.Insert("he"))
	tr.Freeze()

	assert.True(t, tr.Frozen())
	assert.ErrorIs(t, tr.Insert("she"), ErrFrozen)
	assert.True(t, tr.HasWord("he"))
}

func TestTrie_ChildrenInAlphabetOrder(t *testing.T) {
	tr := New(nil)
	for _, c := range "hagfza" {
		require.NoError(t, tr.Insert(string(c)))
	}

	var got []byte
	tr.Children(Root, func(child NodeID) bool {
		got = append(got, tr.Symbol(child))
		assert.Equal(t, string(tr.Symbol(child)), tr.Pattern(child))
		return true
	})
	assert.Equal(t, "afghz", string(got))
}

func TestTrie_ChildrenStopsEarly(t *testing.T) {
	tr := New(nil)
	for _, w := range []string{"a", "b", "c"} {
		require.NoError(t, tr.Insert(w))
	}

	count := 0
	tr.Children(Root, func(NodeID) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestTrie_WalkParentBeforeChild(t *testing.T) {
	tr := New(nil)
	for _, w := range []string{"he", "she", "his", "hers"} {
		require.NoError(t, tr.Insert(w))
	}

	visited := make(map[NodeID]bool)
	depth := 0
	tr.Walk(func(id NodeID) bool {
		if id != Root {
			// The parent spells a prefix one symbol shorter and must already be visited.
			assert.GreaterOrEqual(t, tr.Depth(id), depth)
		}
		depth = tr.Depth(id)
		visited[id] = true
		return true
	})
	assert.Len(t, visited, tr.NodeCount())
}

func TestTrie_Nodes(t *testing.T) {
	tr := New(nil)
	require.NoError(t, tr.Insert("hers"))

	assert.True(t, tr.IsRoot(Root))
	h := tr.Child(Root, 'h')
	require.NotEqual(t, Root, h)
	assert.False(t, tr.IsRoot(h))
	assert.Equal(t, byte('h'), tr.Symbol(h))
	assert.Equal(t, 1, tr.Depth(h))
	assert.False(t, tr.IsEnd(h))
	assert.True(t, tr.HasChild(h, 'e'))
	assert.False(t, tr.HasChild(h, 'i'))
	assert.False(t, tr.HasChild(h, '!'))

	s := tr.Child(tr.Child(tr.Child(h, 'e'), 'r'), 's')
	assert.True(t, tr.IsEnd(s))
	assert.Equal(t, "hers", tr.Pattern(s))
	assert.Equal(t, 4, tr.Depth(s))
	assert.Equal(t, 5, tr.NodeCount())
}

func TestTrie_CustomAlphabet(t *testing.T) {
	dna, err := alphabet.NewSet("dna", "acgt")
	require.NoError(t, err)

	tr := New(dna)
	require.NoError(t, tr.Insert("gattaca"))
	assert.True(t, tr.HasWord("gattaca"))
	assert.ErrorIs(t, tr.Insert("gauc"), alphabet.ErrInvalidSymbol)
	assert.Equal(t, dna, tr.Policy())
}

func randomWord(rng *rand.Rand, maxLen int, symbols string) string {
	var sb strings.Builder
	n := 1 + rng.Intn(maxLen)
	for i := 0; i < n; i++ {
		sb.WriteByte(symbols[rng.Intn(len(symbols))])
	}
	return sb.String()
}

func TestTrie_RoundTripRandomOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		words := make([]string, 1+rng.Intn(30))
		for i := range words {
			words[i] = randomWord(rng, 8, "abcdefghijklmnopqrstuvwxyz")
		}

		shuffled := append([]string(nil), words...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		a, b := New(nil), New(nil)
		for i := range words {
			require.NoError(t, a.Insert(words[i]))
			require.NoError(t, b.Insert(shuffled[i]))
		}

		for _, w := range words {
			require.True(t, a.HasWord(w))
			require.True(t, b.HasWord(w))
		}
		// Same pattern set, same shape.
		require.Equal(t, a.NodeCount(), b.NodeCount())
		require.Equal(t, a.Len(), b.Len())

		probe := randomWord(rng, 8, "abc")
		inserted := false
		isPrefix := false
		for _, w := range words {
			if w == probe {
				inserted = true
			}
			if strings.HasPrefix(w, probe) {
				isPrefix = true
			}
		}
		require.Equal(t, inserted, a.HasWord(probe), "probe %q", probe)
		require.Equal(t, isPrefix, a.HasPrefix(probe), "probe %q", probe)
	}
}
