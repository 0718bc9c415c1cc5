package kmp

import (
	"fmt"
	"io"
	"strings"

	"github.com/endorses/lexmatch/internal/pkg/kmp"
	"github.com/endorses/lexmatch/internal/pkg/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type options struct {
	table     bool
	zeroBased bool
	all       bool
}

// Result is the outcome of a single-pattern search.
type Result struct {
	Pattern   string `json:"pattern" yaml:"pattern"`
	Found     bool   `json:"found" yaml:"found"`
	Index     int    `json:"index" yaml:"index"`
	Positions []int  `json:"positions,omitempty" yaml:"positions,omitempty"`
	Table     []int  `json:"table,omitempty" yaml:"table,omitempty"`
}

// NewCommand returns the kmp command.
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "kmp PATTERN [TEXT]",
		Short: "Search for a single pattern with Knuth-Morris-Pratt",
		Long: `Search TEXT (or stdin) for PATTERN with the Knuth-Morris-Pratt algorithm.

Any byte is allowed in the pattern and the text. --table prints the prefix
table, 1-based by default (table[0] is -1) or 0-based with --zero-based.

Examples:
  lexmatch kmp abab abacababc
  lexmatch kmp --all aa aaaa
  lexmatch kmp --table --zero-based ababaca`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.table, "table", false, "print the prefix table of PATTERN")
	cmd.Flags().BoolVar(&opts.zeroBased, "zero-based", false, "use the 0-based prefix table")
	cmd.Flags().BoolVar(&opts.all, "all", false, "report every occurrence, overlapping included")

	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	format, err := output.ParseFormat(viper.GetString("output"))
	if err != nil {
		return err
	}

	pattern := args[0]
	m, err := kmp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("pattern: %w", err)
	}

	res := Result{Pattern: pattern, Index: -1}
	if opts.table {
		if opts.zeroBased {
			res.Table = kmp.PrefixTable0(pattern)
		} else {
			res.Table = m.Table()
		}
	}

	if len(args) == 2 || !opts.table {
		text, err := readText(cmd, args)
		if err != nil {
			return err
		}
		if opts.zeroBased {
			res.Found = kmp.Match0(text, pattern)
		} else {
			res.Found = kmp.Match1(text, pattern)
		}
		res.Index = m.Index(text)
		if opts.all {
			res.Positions = m.IndexAll(text)
		}
	}

	return output.Write(cmd.OutOrStdout(), format, res, func(w io.Writer) error {
		if res.Table != nil {
			if _, err := fmt.Fprintf(w, "table: %s\n", joinInts(res.Table)); err != nil {
				return err
			}
			if len(args) == 1 {
				return nil
			}
		}
		switch {
		case !res.Found:
			_, err = fmt.Fprintf(w, "%q not found\n", pattern)
		case opts.all:
			_, err = fmt.Fprintf(w, "%q found at %s\n", pattern, joinInts(res.Positions))
		default:
			_, err = fmt.Fprintf(w, "%q found at %d\n", pattern, res.Index)
		}
		return err
	})
}

func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 2 {
		return args[1], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%d", x)
	}
	return strings.Join(parts, " ")
}
