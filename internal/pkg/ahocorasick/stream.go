package ahocorasick

import (
	"github.com/endorses/lexmatch/internal/pkg/trie"
)

// Stream scans text that arrives in chunks. The automaton state and the
// absolute offset carry over between writes, so a match that straddles a
// chunk boundary is reported exactly as if the text had been scanned whole.
//
// A Stream is not safe for concurrent use; each goroutine needs its own.
type Stream struct {
	cur *cursor
	fn  func(Match)
	err error
}

// NewStream creates a stream over a built automaton that reports each match to fn.
func NewStream(a *Automaton, fn func(Match)) *Stream {
	return &Stream{cur: a.newCursor(), fn: fn}
}

// Write feeds p through the automaton. It implements io.Writer, so a stream can
// be the destination of io.Copy. After an invalid symbol the stream keeps
// returning that error until Reset.
func (s *Stream) Write(p []byte) (int, error) {
	return s.WriteString(string(p))
}

// WriteString is Write for string chunks.
func (s *Stream) WriteString(chunk string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	start := s.cur.offset
	_, err := s.cur.feed(chunk, func(m Match) bool {
		s.fn(m)
		return true
	})
	if err != nil {
		s.err = err
		return s.cur.offset - start, err
	}
	return len(chunk), nil
}

// Offset returns the number of bytes consumed so far.
func (s *Stream) Offset() int {
	return s.cur.offset
}

// Err returns the sticky scan error, if any.
func (s *Stream) Err() error {
	return s.err
}

// Reset returns the stream to the root state at offset zero.
func (s *Stream) Reset() {
	s.cur.state = trie.Root
	s.cur.offset = 0
	s.cur.hops = 0
	s.err = nil
}
