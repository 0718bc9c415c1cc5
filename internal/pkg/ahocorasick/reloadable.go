package ahocorasick

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/endorses/lexmatch/internal/pkg/alphabet"
	"github.com/endorses/lexmatch/internal/pkg/logger"
)

// Reloadable holds a swappable automaton for lock-free reads and
// zero-downtime keyword updates.
//
// Key features:
//   - Lock-free reads via atomic.Pointer
//   - A failed rebuild keeps the previous automaton in service
//   - Rebuilds are serialized; scans never wait for one
type Reloadable struct {
	// automaton is the current automaton, nil until the first successful Update.
	automaton atomic.Pointer[Automaton]

	policy alphabet.Policy

	// buildMu ensures only one rebuild runs at a time.
	buildMu sync.Mutex

	generation        atomic.Uint64
	lastBuildTime     atomic.Value // time.Time
	lastBuildDuration atomic.Value // time.Duration
}

// NewReloadable creates an empty matcher over p. A nil policy selects alphabet.Lower.
func NewReloadable(p alphabet.Policy) *Reloadable {
	if p == nil {
		p = alphabet.Lower()
	}
	r := &Reloadable{policy: p}
	r.lastBuildTime.Store(time.Time{})
	r.lastBuildDuration.Store(time.Duration(0))
	return r
}

// Update builds a new automaton from patterns and swaps it in atomically.
// On error the current automaton stays active.
func (r *Reloadable) Update(patterns []string) error {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	startTime := time.Now()
	a, err := New(r.policy, patterns...)
	if err != nil {
		logger.Error("Failed to build automaton", "error", err, "pattern_count", len(patterns))
		return err
	}
	buildDuration := time.Since(startTime)

	// Readers see the new automaton immediately.
	r.automaton.Store(a)
	gen := r.generation.Add(1)
	r.lastBuildTime.Store(time.Now())
	r.lastBuildDuration.Store(buildDuration)

	logger.Info("Automaton rebuilt",
		"pattern_count", a.PatternCount(),
		"node_count", a.trie.NodeCount(),
		"build_duration", buildDuration,
		"generation", gen)

	return nil
}

// Current returns the active automaton, or nil before the first Update.
func (r *Reloadable) Current() *Automaton {
	return r.automaton.Load()
}

// FindKeywords scans text with the active automaton.
// With no automaton loaded there is nothing to match.
func (r *Reloadable) FindKeywords(text string) ([]Match, error) {
	a := r.automaton.Load()
	if a == nil {
		return nil, nil
	}
	return a.FindKeywords(text)
}

// Scan streams matches from the active automaton. The automaton is pinned
// for the whole scan even if an Update lands midway.
func (r *Reloadable) Scan(text string, fn func(Match) bool) error {
	a := r.automaton.Load()
	if a == nil {
		return nil
	}
	return a.Scan(text, fn)
}

// PatternCount returns the number of patterns in the active automaton.
func (r *Reloadable) PatternCount() int {
	a := r.automaton.Load()
	if a == nil {
		return 0
	}
	return a.PatternCount()
}

// Policy returns the alphabet used for rebuilds.
func (r *Reloadable) Policy() alphabet.Policy {
	return r.policy
}

// Stats is a snapshot of the reloadable matcher.
type Stats struct {
	PatternCount      int
	NodeCount         int
	HasAutomaton      bool
	Generation        uint64
	LastBuildTime     time.Time
	LastBuildDuration time.Duration
}

// GetStats returns current statistics.
func (r *Reloadable) GetStats() Stats {
	a := r.automaton.Load()
	s := Stats{
		HasAutomaton:      a != nil,
		Generation:        r.generation.Load(),
		LastBuildTime:     r.lastBuildTime.Load().(time.Time),
		LastBuildDuration: r.lastBuildDuration.Load().(time.Duration),
	}
	if a != nil {
		s.PatternCount = a.PatternCount()
		s.NodeCount = a.trie.NodeCount()
	}
	return s
}
