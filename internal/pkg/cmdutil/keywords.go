package cmdutil

import (
	"fmt"

	"github.com/endorses/lexmatch/internal/pkg/keywords"
)

// LoadKeywords resolves the keyword set for a command. Inline keywords win
// over a keyword file; the file path comes from the flag or the "keywords"
// config key. A non-empty alphabetName (flag or "alphabet" key) overrides
// the alphabet named in the file. The returned set is validated.
func LoadKeywords(file string, inline []string, alphabetName string) (*keywords.Set, error) {
	var set *keywords.Set
	switch {
	case len(inline) > 0:
		set = &keywords.Set{Keywords: append([]string(nil), inline...)}
	default:
		path := GetStringConfig("keywords", file)
		if path == "" {
			return nil, fmt.Errorf("no keywords given: use --keyword or --keywords-file")
		}
		var err error
		set, err = keywords.Load(path)
		if err != nil {
			return nil, err
		}
	}

	if name := GetStringConfig("alphabet", alphabetName); name != "" {
		set.Alphabet = name
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keywords: %w", err)
	}
	return set, nil
}
