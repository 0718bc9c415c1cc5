package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	var out, stderr bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "No arguments shows help",
			args:     []string{},
			contains: []string{"multi-pattern keyword search"},
		},
		{
			name:     "Help flag",
			args:     []string{"--help"},
			contains: []string{"scan", "kmp", "trie", "watch"},
		},
		{
			name:     "Version command",
			args:     []string{"version"},
			contains: []string{"lexmatch dev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestCommandStructure(t *testing.T) {
	root := NewRootCmd()
	assert.Equal(t, "lexmatch", root.Use)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"scan", "kmp", "trie", "watch", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "log-level", "log-format", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestOutputFlag(t *testing.T) {
	out, err := execute(t, "", "-o", "json", "scan", "-k", "he", "--text", "hehe")
	require.NoError(t, err)

	var res struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Count)

	_, err = execute(t, "", "-o", "xml", "version")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	kw := filepath.Join(dir, "kw.txt")
	require.NoError(t, os.WriteFile(kw, []byte("Go\n"), 0600))

	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("alphabet: ascii\nkeywords: "+kw+"\noutput: text\nlog:\n  level: error\n"), 0600))

	out, err := execute(t, "", "--config", cfg, "scan", "--text", "Let's Go")
	require.NoError(t, err)
	assert.Equal(t, "Go appears in input[6, 7].\n", out)

	_, err = execute(t, "", "--config", filepath.Join(dir, "missing.yaml"), "version")
	assert.ErrorContains(t, err, "failed to read config")
}

func TestEnvironment(t *testing.T) {
	t.Setenv("LEXMATCH_ALPHABET", "ascii")
	out, err := execute(t, "", "scan", "-k", "OK", "--text", "all OK")
	require.NoError(t, err)
	assert.Equal(t, "OK appears in input[4, 5].\n", out)

	t.Setenv("LEXMATCH_LOG_LEVEL", "loud")
	_, err = execute(t, "", "version")
	assert.ErrorContains(t, err, "unknown log level")
}
