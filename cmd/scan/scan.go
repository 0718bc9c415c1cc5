package scan

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/endorses/lexmatch/internal/pkg/ahocorasick"
	"github.com/endorses/lexmatch/internal/pkg/alphabet"
	"github.com/endorses/lexmatch/internal/pkg/cmdutil"
	"github.com/endorses/lexmatch/internal/pkg/constants"
	"github.com/endorses/lexmatch/internal/pkg/logger"
	"github.com/endorses/lexmatch/internal/pkg/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type options struct {
	keywords     []string
	keywordsFile string
	alphabet     string
	text         string
	chunkSize    string
	countOnly    bool
}

// Result is the matches found in one input.
type Result struct {
	Source  string              `json:"source" yaml:"source"`
	Count   int                 `json:"count" yaml:"count"`
	Matches []ahocorasick.Match `json:"matches" yaml:"matches"`
	Error   string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCommand returns the scan command.
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "scan [file...]",
		Short: "Report every keyword occurrence in text",
		Long: `Scan text for every occurrence of every keyword in a single pass.

Overlapping and nested occurrences are all reported, ordered by end position
and, at the same end, longest keyword first. Positions are inclusive byte
offsets. Input is read from --text, from the named files ("-" for stdin),
or from stdin. A single trailing newline at the end of each input is ignored.

Examples:
  lexmatch scan -k he -k she -k his -k hers --text ushers
  lexmatch scan -f keywords.yaml notes.txt
  lexmatch scan -f keywords.txt -a ascii -o json < notes.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.keywords, "keyword", "k", nil, "keyword to search for (repeatable)")
	cmd.Flags().StringVarP(&opts.keywordsFile, "keywords-file", "f", "", "keyword file (.yaml or one keyword per line)")
	cmd.Flags().StringVarP(&opts.alphabet, "alphabet", "a", "", "alphabet: lower, ascii, alnum (default from keyword file, else lower)")
	cmd.Flags().StringVar(&opts.text, "text", "", "scan this text instead of files or stdin")
	cmd.Flags().StringVar(&opts.chunkSize, "chunk-size", fmt.Sprintf("%dK", constants.DefaultChunkSize/1024), "read size per chunk (e.g. 4K, 1M)")
	cmd.Flags().BoolVarP(&opts.countOnly, "count", "c", false, "only print the number of matches")

	_ = viper.BindPFlag("scan.chunk_size", cmd.Flags().Lookup("chunk-size"))

	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	format, err := output.ParseFormat(viper.GetString("output"))
	if err != nil {
		return err
	}
	chunkSize, err := cmdutil.GetSizeConfig("scan.chunk_size", constants.DefaultChunkSize)
	if err != nil {
		return err
	}

	set, err := cmdutil.LoadKeywords(opts.keywordsFile, opts.keywords, opts.alphabet)
	if err != nil {
		return err
	}
	a, err := set.Automaton()
	if err != nil {
		return err
	}
	logger.Debug("Keywords compiled",
		"keywords", a.PatternCount(),
		"nodes", a.Trie().NodeCount(),
		"alphabet", a.Trie().Policy().Name())

	var results []Result
	var scanErr error
	switch {
	case cmd.Flags().Changed("text"):
		res, err := scanString(a, opts.text)
		results = append(results, res)
		scanErr = err
	default:
		sources := args
		if len(sources) == 0 {
			sources = []string{"-"}
		}
		for _, src := range sources {
			res, err := scanSource(cmd, a, src, int(chunkSize))
			results = append(results, res)
			if err != nil && scanErr == nil {
				scanErr = err
			}
		}
	}

	if err := render(cmd.OutOrStdout(), format, results, opts.countOnly); err != nil {
		return err
	}
	if errors.Is(scanErr, alphabet.ErrInvalidSymbol) {
		return fmt.Errorf("%w (alphabet %q; try --alphabet ascii for free text)", scanErr, a.Trie().Policy().Name())
	}
	return scanErr
}

func scanString(a *ahocorasick.Automaton, text string) (Result, error) {
	res := Result{Source: "text"}
	err := a.Scan(text, func(m ahocorasick.Match) bool {
		res.Matches = append(res.Matches, m)
		return true
	})
	res.Count = len(res.Matches)
	if err != nil {
		res.Error = err.Error()
	}
	return res, err
}

func scanSource(cmd *cobra.Command, a *ahocorasick.Automaton, src string, chunkSize int) (Result, error) {
	res := Result{Source: src}

	var r io.Reader
	if src == "-" {
		res.Source = "stdin"
		r = cmd.InOrStdin()
	} else {
		// #nosec G304 -- Path is from the command line
		f, err := os.Open(src)
		if err != nil {
			res.Error = err.Error()
			return res, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	stream := ahocorasick.NewStream(a, func(m ahocorasick.Match) {
		res.Matches = append(res.Matches, m)
	})
	tn := &trailingNewline{w: stream}
	err := copyChunks(tn, r, chunkSize)
	if err == nil {
		err = tn.Flush()
	}
	res.Count = len(res.Matches)
	if err != nil {
		res.Error = err.Error()
		return res, fmt.Errorf("%s: %w", res.Source, err)
	}
	return res, nil
}

// copyChunks reads r in chunkSize pieces and writes each one to w.
func copyChunks(w io.Writer, r io.Reader, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = constants.DefaultChunkSize
	}
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
}

// trailingNewline holds back a final "\n" or "\r\n" until more data follows,
// so the line terminator at the end of input never reaches the automaton.
// A trailing "\r" is held too, since its "\n" may arrive in the next chunk.
type trailingNewline struct {
	w       io.Writer
	pending []byte
}

func (t *trailingNewline) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) == 1 && p[0] == '\n' && string(t.pending) == "\r" {
		t.pending = append(t.pending, '\n')
		return 1, nil
	}
	if len(t.pending) > 0 {
		if _, err := t.w.Write(t.pending); err != nil {
			return 0, err
		}
		t.pending = t.pending[:0]
	}

	body := p
	cut := len(body)
	switch body[cut-1] {
	case '\n':
		cut--
		if cut > 0 && body[cut-1] == '\r' {
			cut--
		}
	case '\r':
		cut--
	}
	t.pending = append(t.pending, body[cut:]...)
	body = body[:cut]
	if len(body) > 0 {
		if _, err := t.w.Write(body); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Flush writes a held back lone "\r", which was not part of a line ending.
func (t *trailingNewline) Flush() error {
	if string(t.pending) != "\r" {
		return nil
	}
	t.pending = t.pending[:0]
	_, err := t.w.Write([]byte{'\r'})
	return err
}

func render(w io.Writer, format output.Format, results []Result, countOnly bool) error {
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}
	if countOnly && format != output.FormatText {
		counts := make(map[string]int, len(results))
		for _, r := range results {
			counts[r.Source] = r.Count
		}
		v = counts
	}

	return output.Write(w, format, v, func(w io.Writer) error {
		for _, r := range results {
			prefix := ""
			if len(results) > 1 {
				prefix = r.Source + ": "
			}
			if countOnly {
				if _, err := fmt.Fprintf(w, "%s%d\n", prefix, r.Count); err != nil {
					return err
				}
				continue
			}
			for _, m := range r.Matches {
				if _, err := fmt.Fprintf(w, "%s%s\n", prefix, m); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
