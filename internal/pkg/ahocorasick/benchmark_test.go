package ahocorasick

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
)

// naiveFind checks every pattern at every position, for comparison.
func naiveFind(patterns []string, text string) int {
	count := 0
	for _, p := range patterns {
		for i := 0; i+len(p) <= len(text); i++ {
			if text[i:i+len(p)] == p {
				count++
			}
		}
	}
	return count
}

func generatePatterns(rng *rand.Rand, n int) []string {
	patterns := make([]string, n)
	for i := range patterns {
		patterns[i] = randomText(rng, 4+rng.Intn(8), "abcdefghijklmnopqrstuvwxyz")
	}
	return patterns
}

func BenchmarkBuild(b *testing.B) {
	for _, n := range []int{10, 100, 1000, 10000} {
		b.Run(fmt.Sprintf("patterns=%d", n), func(b *testing.B) {
			patterns := generatePatterns(rand.New(rand.NewSource(1)), n)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := New(nil, patterns...); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFindKeywords(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	text := randomText(rng, 64*1024, "abcdefghijklmnopqrstuvwxyz")

	for _, n := range []int{10, 100, 1000} {
		patterns := generatePatterns(rng, n)
		a, err := New(nil, patterns...)
		if err != nil {
			b.Fatal(err)
		}

		b.Run(fmt.Sprintf("automaton/patterns=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = a.Scan(text, func(Match) bool { return true })
			}
		})

		b.Run(fmt.Sprintf("naive/patterns=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				naiveFind(patterns, text)
			}
		})
	}
}

func BenchmarkStream(b *testing.B) {
	a, err := New(nil, "he", "she", "his", "hers")
	if err != nil {
		b.Fatal(err)
	}
	chunk := strings.Repeat("hewashersheys", 512)

	b.SetBytes(int64(len(chunk)))
	s := NewStream(a, func(Match) {})
	for i := 0; i < b.N; i++ {
		_, _ = s.WriteString(chunk)
	}
}
