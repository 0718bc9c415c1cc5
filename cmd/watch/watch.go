package watch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/endorses/lexmatch/internal/pkg/ahocorasick"
	"github.com/endorses/lexmatch/internal/pkg/alphabet"
	"github.com/endorses/lexmatch/internal/pkg/cmdutil"
	"github.com/endorses/lexmatch/internal/pkg/constants"
	"github.com/endorses/lexmatch/internal/pkg/keywords"
	"github.com/endorses/lexmatch/internal/pkg/logger"
	"github.com/endorses/lexmatch/internal/pkg/output"
	"github.com/endorses/lexmatch/internal/pkg/signals"
	"github.com/endorses/lexmatch/internal/pkg/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type options struct {
	keywordsFile string
	alphabet     string
	pollInterval time.Duration
	forcePolling bool
}

// LineMatch is a match within one input line. Positions are relative to the line.
type LineMatch struct {
	Line              int `json:"line" yaml:"line"`
	ahocorasick.Match `yaml:",inline"`
}

// NewCommand returns the watch command.
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan stdin line by line while reloading the keyword file on change",
		Long: `Scan each line of stdin with the current keywords. The keyword file is
watched for changes and reloaded in place; a broken file keeps the previous
keywords in service. SIGHUP forces a reload.

Examples:
  tail -f app.log | lexmatch watch -f keywords.yaml -a ascii
  lexmatch watch -f keywords.txt --poll-interval 500ms --force-polling`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.keywordsFile, "keywords-file", "f", "", "keyword file to watch (required)")
	cmd.Flags().StringVarP(&opts.alphabet, "alphabet", "a", "", "alphabet: lower, ascii, alnum (default from keyword file, else lower)")
	cmd.Flags().DurationVar(&opts.pollInterval, "poll-interval", constants.DefaultPollInterval, "polling interval when fsnotify is unavailable")
	cmd.Flags().BoolVar(&opts.forcePolling, "force-polling", false, "poll the keyword file instead of using fsnotify")

	_ = viper.BindPFlag("watch.poll_interval", cmd.Flags().Lookup("poll-interval"))

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	format, err := output.ParseFormat(viper.GetString("output"))
	if err != nil {
		return err
	}
	path := cmdutil.GetStringConfig("keywords", opts.keywordsFile)
	if path == "" {
		return fmt.Errorf("--keywords-file is required")
	}

	name := cmdutil.GetStringConfig("alphabet", opts.alphabet)
	if name == "" {
		if set, err := keywords.Load(path); err == nil {
			name = set.Alphabet
		}
	}
	p, err := alphabet.Lookup(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	cleanup := signals.SetupHandler(ctx, cancel)
	defer cleanup()

	m := ahocorasick.NewReloadable(p)
	w := watcher.New(path, m, watcher.Config{
		PollInterval: viper.GetDuration("watch.poll_interval"),
		Alphabet:     p.Name(),
		ForcePolling: opts.forcePolling,
	})
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := w.Stop(); err != nil {
			logger.Error("failed to stop watcher", "error", err)
		}
	}()

	stopReload := signals.SetupReloadHandler(ctx, func() {
		if err := w.Reload(); err != nil {
			logger.Warn("keyword reload failed, keeping previous keywords", "error", err)
		}
	})
	defer stopReload()

	return scanLines(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), format, m)
}

// scanLines scans r line by line until EOF or ctx is done.
func scanLines(ctx context.Context, r io.Reader, out io.Writer, format output.Format, m ahocorasick.Matcher) error {
	lines := make(chan string)
	readErr := make(chan error, constants.ErrorChannelBuffer)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), constants.MaxLineLength)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			lineNo++
			var werr error
			err := m.Scan(line, func(match ahocorasick.Match) bool {
				werr = writeMatch(out, format, LineMatch{Line: lineNo, Match: match})
				return werr == nil
			})
			if werr != nil {
				return werr
			}
			if err != nil {
				logger.Warn("skipping rest of line", "line", lineNo, "error", err)
			}
		}
	}
}

func writeMatch(w io.Writer, format output.Format, lm LineMatch) error {
	switch format {
	case output.FormatJSON:
		data, err := output.MarshalJSONPretty(lm, false)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case output.FormatYAML:
		if _, err := fmt.Fprintln(w, "---"); err != nil {
			return err
		}
		return output.Write(w, format, lm, nil)
	default:
		_, err := fmt.Fprintf(w, "line %d: %s\n", lm.Line, lm.Match)
		return err
	}
}
