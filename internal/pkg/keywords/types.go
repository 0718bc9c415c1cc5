// Package keywords loads and validates keyword sets, the construct-time input
// of the Aho-Corasick automaton.
//
// Two file formats are supported. YAML files name the alphabet and list the keywords:
//
//	alphabet: lower
//	keywords:
//	  - he
//	  - she
//
// Anything else is read as plain text, one keyword per line, with blank lines and
// lines starting with '#' ignored.
package keywords

// Format selects the keyword file syntax.
type Format int

const (
	// FormatText is one keyword per line.
	FormatText Format = iota
	// FormatYAML is the structured Set document.
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	default:
		return "text"
	}
}

// Set represents the YAML structure of a keyword file
type Set struct {
	Alphabet string   `yaml:"alphabet,omitempty" json:"alphabet,omitempty"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}
