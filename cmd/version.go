package cmd

import (
	"fmt"
	"io"

	"github.com/endorses/lexmatch/internal/pkg/output"
	"github.com/endorses/lexmatch/internal/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(viper.GetString("output"))
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), format, version.Get(), func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "lexmatch", version.GetFullVersion())
				return err
			})
		},
	}
}
