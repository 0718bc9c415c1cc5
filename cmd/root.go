package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/endorses/lexmatch/cmd/kmp"
	"github.com/endorses/lexmatch/cmd/scan"
	"github.com/endorses/lexmatch/cmd/trie"
	"github.com/endorses/lexmatch/cmd/watch"
	"github.com/endorses/lexmatch/internal/pkg/logger"
	"github.com/endorses/lexmatch/internal/pkg/output"
	"github.com/endorses/lexmatch/internal/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the lexmatch command tree. Each call returns an
// independent tree bound to the global viper instance.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "lexmatch",
		Short: "lexmatch finds keywords in text",
		Long: fmt.Sprintf(`lexmatch %s - multi-pattern keyword search

Keywords are compiled into an Aho-Corasick automaton and every occurrence,
including overlapping and nested ones, is reported in a single pass.`, version.GetVersion()),
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/lexmatch/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text, json")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format: text, json, yaml")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.AddCommand(scan.NewCommand())
	rootCmd.AddCommand(kmp.NewCommand())
	rootCmd.AddCommand(trie.NewCommand())
	rootCmd.AddCommand(watch.NewCommand())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			// Priority order for config files:
			// 1. ~/.config/lexmatch/config.yaml
			// 2. ~/.config/lexmatch.yaml
			viper.AddConfigPath(filepath.Join(home, ".config", "lexmatch"))
			viper.AddConfigPath(filepath.Join(home, ".config"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigName("lexmatch")
		}
	}

	viper.SetEnvPrefix("LEXMATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configErr := viper.ReadInConfig()
	if configErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(configErr, &notFound) {
			return fmt.Errorf("failed to read config: %w", configErr)
		}
	}

	if err := logger.Configure(logger.Options{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	}); err != nil {
		return err
	}
	if configErr == nil {
		logger.Debug("Using config file", "path", viper.ConfigFileUsed())
	}

	if _, err := output.ParseFormat(viper.GetString("output")); err != nil {
		return err
	}
	return nil
}
