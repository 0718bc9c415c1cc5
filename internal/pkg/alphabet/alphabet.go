// Package alphabet defines the symbol sets the matching engine runs over.
//
// A Policy maps every supported byte to a dense slot index so trie nodes can
// keep a fixed-size child array. Bytes outside the policy are rejected with
// ErrInvalidSymbol; nothing is case-folded or transliterated.
package alphabet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSymbol is returned when a byte outside the policy is presented.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrUnknownAlphabet is returned by Lookup for an unregistered name.
	ErrUnknownAlphabet = errors.New("unknown alphabet")
)

// Policy maps symbols to dense child-array slots.
type Policy interface {
	// Size returns the number of distinct symbols supported.
	Size() int

	// Index returns the 0-based slot for c, or -1 when c is not a member.
	Index(c byte) int

	// IsValid reports whether c is a member of the alphabet.
	IsValid(c byte) bool

	// Name identifies the policy in errors and configuration.
	Name() string
}

// SymbolError reports a byte that is not part of an alphabet.
type SymbolError struct {
	Symbol   byte
	Pos      int
	Alphabet string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("invalid symbol %q at position %d (alphabet %s)", e.Symbol, e.Pos, e.Alphabet)
}

// Unwrap makes errors.Is(err, ErrInvalidSymbol) hold.
func (e *SymbolError) Unwrap() error {
	return ErrInvalidSymbol
}

// Validate checks every byte of s against p and returns a *SymbolError for
// the first byte that is not a member.
func Validate(p Policy, s string) error {
	for i := 0; i < len(s); i++ {
		if !p.IsValid(s[i]) {
			return &SymbolError{Symbol: s[i], Pos: i, Alphabet: p.Name()}
		}
	}
	return nil
}

// rangePolicy covers a single contiguous byte range.
type rangePolicy struct {
	name   string
	lo, hi byte
}

func (r rangePolicy) Size() int { return int(r.hi-r.lo) + 1 }

func (r rangePolicy) Index(c byte) int {
	if !r.IsValid(c) {
		return -1
	}
	return int(c - r.lo)
}

func (r rangePolicy) IsValid(c byte) bool { return c >= r.lo && c <= r.hi }

func (r rangePolicy) Name() string { return r.name }

// Lower is the default policy: lowercase ASCII letters, 26 slots, Index(c) = c - 'a'.
func Lower() Policy {
	return rangePolicy{name: "lower", lo: 'a', hi: 'z'}
}

// ASCII accepts the 7-bit ASCII range, with Index(c) = c.
func ASCII() Policy {
	return rangePolicy{name: "ascii", lo: 0, hi: 127}
}

// Alnum accepts lowercase letters, digits and underscore, which covers the
// reserved words and identifiers of most small languages.
func Alnum() Policy {
	p, _ := NewSet("alnum", "abcdefghijklmnopqrstuvwxyz0123456789_")
	return p
}

// setPolicy is an arbitrary byte set backed by a lookup table.
type setPolicy struct {
	name  string
	slots [256]int16
	size  int
}

// NewSet builds a policy from an explicit list of symbols. Slots are
// assigned in the order the symbols appear.
func NewSet(name, symbols string) (Policy, error) {
	if symbols == "" {
		return nil, fmt.Errorf("alphabet %s: no symbols", name)
	}

	p := &setPolicy{name: name}
	for i := range p.slots {
		p.slots[i] = -1
	}
	for i := 0; i < len(symbols); i++ {
		c := symbols[i]
		if p.slots[c] >= 0 {
			return nil, fmt.Errorf("alphabet %s: duplicate symbol %q", name, c)
		}
		p.slots[c] = int16(p.size)
		p.size++
	}
	return p, nil
}

func (p *setPolicy) Size() int { return p.size }

func (p *setPolicy) Index(c byte) int { return int(p.slots[c]) }

func (p *setPolicy) IsValid(c byte) bool { return p.slots[c] >= 0 }

func (p *setPolicy) Name() string { return p.name }

// Lookup resolves a registered policy by name. The empty name selects Lower.
func Lookup(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lower":
		return Lower(), nil
	case "ascii":
		return ASCII(), nil
	case "alnum":
		return Alnum(), nil
	}
	return nil, fmt.Errorf("%w: %q (valid: lower, ascii, alnum)", ErrUnknownAlphabet, name)
}
