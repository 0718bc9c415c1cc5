package keywords

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// fileLock protects atomic file writes
	fileLock sync.Mutex
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Load reads a keyword file. The set is not validated; call Validate or
// Automaton once any alphabet override has been applied.
func Load(path string) (*Set, error) {
	// #nosec G304 -- Path is from configuration or the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyword file: %w", err)
	}
	defer f.Close()

	set, err := Parse(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse reads a keyword set in the given format.
func Parse(r io.Reader, format Format) (*Set, error) {
	switch format {
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read keyword YAML: %w", err)
		}
		var set Set
		if err := yaml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("failed to parse keyword YAML: %w", err)
		}
		return &set, nil
	default:
		return parseText(r)
	}
}

func parseText(r io.Reader) (*Set, error) {
	set := &Set{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set.Keywords = append(set.Keywords, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keyword list: %w", err)
	}
	return set, nil
}

// WriteFile writes the set to path with atomic write, in the format implied
// by the extension.
func WriteFile(path string, set *Set) error {
	fileLock.Lock()
	defer fileLock.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create keyword directory: %w", err)
	}

	var data []byte
	if FormatFor(path) == FormatYAML {
		var err error
		data, err = yaml.Marshal(set)
		if err != nil {
			return fmt.Errorf("failed to marshal keywords to YAML: %w", err)
		}
	} else {
		data = []byte(strings.Join(set.Keywords, "\n") + "\n")
	}

	// Atomic write: write to temp file, then rename
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp keyword file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		_ = os.Remove(tempFile) // Cleanup temp file on error
		return fmt.Errorf("failed to rename temp keyword file: %w", err)
	}

	return nil
}
