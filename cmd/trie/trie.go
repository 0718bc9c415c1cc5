package trie

import (
	"fmt"
	"io"
	"strings"

	"github.com/endorses/lexmatch/internal/pkg/ahocorasick"
	"github.com/endorses/lexmatch/internal/pkg/cmdutil"
	"github.com/endorses/lexmatch/internal/pkg/output"
	"github.com/endorses/lexmatch/internal/pkg/trie"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type options struct {
	keywords     []string
	keywordsFile string
	alphabet     string
}

// Query is one membership answer.
type Query struct {
	Query string `json:"query" yaml:"query"`
	Found bool   `json:"found" yaml:"found"`
}

// Node describes one automaton state.
type Node struct {
	ID         int    `json:"id" yaml:"id"`
	Path       string `json:"path" yaml:"path"`
	Depth      int    `json:"depth" yaml:"depth"`
	End        bool   `json:"end" yaml:"end"`
	SuffixLink int    `json:"suffix_link" yaml:"suffix_link"`
	Output     int    `json:"output" yaml:"output"`
}

// NewCommand returns the trie command and its subcommands.
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "trie",
		Short: "Query the keyword trie",
		Long: `Build the keyword trie and answer membership queries.

Subcommands:
  has-word    - Report whether each query is a keyword
  has-prefix  - Report whether each query is a prefix of some keyword
  dump        - List every automaton state with its suffix and output links

Examples:
  lexmatch trie has-word -k he -k she she sh
  lexmatch trie has-prefix -f keywords.txt sh
  lexmatch trie dump -k he -k she -k his -k hers -o json`,
	}

	cmd.PersistentFlags().StringArrayVarP(&opts.keywords, "keyword", "k", nil, "keyword to insert (repeatable)")
	cmd.PersistentFlags().StringVarP(&opts.keywordsFile, "keywords-file", "f", "", "keyword file (.yaml or one keyword per line)")
	cmd.PersistentFlags().StringVarP(&opts.alphabet, "alphabet", "a", "", "alphabet: lower, ascii, alnum")

	cmd.AddCommand(newQueryCmd(opts, "has-word", "Report whether each query is a keyword", (*trie.Trie).HasWord))
	cmd.AddCommand(newQueryCmd(opts, "has-prefix", "Report whether each query is a prefix of some keyword", (*trie.Trie).HasPrefix))
	cmd.AddCommand(newDumpCmd(opts))

	return cmd
}

func newQueryCmd(opts *options, use, short string, query func(*trie.Trie, string) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " QUERY...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(viper.GetString("output"))
			if err != nil {
				return err
			}
			t, err := buildTrie(opts)
			if err != nil {
				return err
			}

			results := make([]Query, len(args))
			for i, q := range args {
				results[i] = Query{Query: q, Found: query(t, q)}
			}

			return output.Write(cmd.OutOrStdout(), format, results, func(w io.Writer) error {
				for _, r := range results {
					if _, err := fmt.Fprintf(w, "%s\t%t\n", r.Query, r.Found); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newDumpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "List every automaton state with its links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(viper.GetString("output"))
			if err != nil {
				return err
			}
			t, err := buildTrie(opts)
			if err != nil {
				return err
			}
			ahocorasick.NewFromTrie(t).Build()

			nodes := dump(t)
			return output.Write(cmd.OutOrStdout(), format, nodes, func(w io.Writer) error {
				for _, n := range nodes {
					end := ""
					if n.End {
						end = " end"
					}
					if _, err := fmt.Fprintf(w, "%d\t%q\tdepth=%d link=%d output=%d%s\n",
						n.ID, n.Path, n.Depth, n.SuffixLink, n.Output, end); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func buildTrie(opts *options) (*trie.Trie, error) {
	set, err := cmdutil.LoadKeywords(opts.keywordsFile, opts.keywords, opts.alphabet)
	if err != nil {
		return nil, err
	}
	p, err := set.Policy()
	if err != nil {
		return nil, err
	}
	t := trie.New(p)
	for _, kw := range set.Keywords {
		if err := t.Insert(kw); err != nil {
			return nil, fmt.Errorf("keyword %q: %w", kw, err)
		}
	}
	return t, nil
}

// dump lists nodes breadth-first with the path spelled from the root.
func dump(t *trie.Trie) []Node {
	paths := make(map[trie.NodeID]string, t.NodeCount())
	paths[trie.Root] = ""

	var nodes []Node
	t.Walk(func(id trie.NodeID) bool {
		path := paths[id]
		t.Children(id, func(child trie.NodeID) bool {
			var b strings.Builder
			b.WriteString(path)
			b.WriteByte(t.Symbol(child))
			paths[child] = b.String()
			return true
		})
		nodes = append(nodes, Node{
			ID:         int(id),
			Path:       path,
			Depth:      t.Depth(id),
			End:        t.IsEnd(id),
			SuffixLink: int(t.SuffixLink(id)),
			Output:     int(t.Output(id)),
		})
		return true
	})
	return nodes
}
