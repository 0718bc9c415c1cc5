package keywords

import (
	"errors"
	"fmt"

	"github.com/endorses/lexmatch/internal/pkg/ahocorasick"
	"github.com/endorses/lexmatch/internal/pkg/alphabet"
	"github.com/endorses/lexmatch/internal/pkg/logger"
	"github.com/endorses/lexmatch/internal/pkg/trie"
)

// ErrNoKeywords is returned when a set contains no keywords.
var ErrNoKeywords = errors.New("no keywords")

// ValidationError represents a keyword set validation error
type ValidationError struct {
	Field string
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d]: %v", e.Field, e.Index, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Policy resolves the set's alphabet.
func (s *Set) Policy() (alphabet.Policy, error) {
	p, err := alphabet.Lookup(s.Alphabet)
	if err != nil {
		return nil, &ValidationError{Field: "alphabet", Index: -1, Err: err}
	}
	return p, nil
}

// Validate checks the alphabet and every keyword, and drops duplicates
// keeping the first occurrence. On error s.Keywords is left untouched.
func (s *Set) Validate() error {
	p, err := s.Policy()
	if err != nil {
		return err
	}
	if len(s.Keywords) == 0 {
		return &ValidationError{Field: "keywords", Index: -1, Err: ErrNoKeywords}
	}

	seen := make(map[string]bool, len(s.Keywords))
	kept := make([]string, 0, len(s.Keywords))
	for i, kw := range s.Keywords {
		if kw == "" {
			return &ValidationError{Field: "keywords", Index: i, Err: trie.ErrEmptyPattern}
		}
		if err := alphabet.Validate(p, kw); err != nil {
			return &ValidationError{Field: "keywords", Index: i, Err: err}
		}
		if seen[kw] {
			logger.Debug("Dropping duplicate keyword", "keyword", kw, "index", i)
			continue
		}
		seen[kw] = true
		kept = append(kept, kw)
	}
	s.Keywords = kept
	return nil
}

// Automaton validates the set and builds an automaton from it.
func (s *Set) Automaton() (*ahocorasick.Automaton, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	p, err := s.Policy()
	if err != nil {
		return nil, err
	}
	return ahocorasick.New(p, s.Keywords...)
}
