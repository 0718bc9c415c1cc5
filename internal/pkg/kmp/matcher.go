package kmp

// Matcher is a compiled pattern. It is immutable and safe for concurrent use.
type Matcher struct {
	pattern string
	table   []int
}

// Compile precomputes the prefix table for pattern.
func Compile(pattern string) (*Matcher, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	return &Matcher{pattern: pattern, table: PrefixTable1(pattern)}, nil
}

// Pattern returns the compiled pattern.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Table returns a copy of the 1-based prefix table.
func (m *Matcher) Table() []int {
	out := make([]int, len(m.table))
	copy(out, m.table)
	return out
}

// Match reports whether the pattern occurs in text.
func (m *Matcher) Match(text string) bool {
	return m.Index(text) >= 0
}

// Index returns the start of the first occurrence in text, or -1.
func (m *Matcher) Index(text string) int {
	idx := -1
	m.search(text, func(start int) bool {
		idx = start
		return false
	})
	return idx
}

// IndexAll returns the starts of all occurrences in text, overlapping included.
func (m *Matcher) IndexAll(text string) []int {
	var out []int
	m.search(text, func(start int) bool {
		out = append(out, start)
		return true
	})
	return out
}

// search runs the automaton over text, calling fn with the start of each
// occurrence until fn returns false. It returns the number of byte comparisons.
func (m *Matcher) search(text string, fn func(start int) bool) int {
	n := len(m.pattern)
	comparisons := 0

	s := 0
	for i := 0; i < len(text); i++ {
		for {
			comparisons++
			if m.pattern[s] == text[i] {
				s++
				break
			}
			if s == 0 {
				break
			}
			s = m.table[s]
		}
		if s == n {
			if !fn(i - n + 1) {
				return comparisons
			}
			// Continue from the longest border so overlapping occurrences are found.
			s = m.table[s]
		}
	}
	return comparisons
}
