package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/scryer/internal/sitter"
	"github.com/gnolang/scryer/query"
	"github.com/gnolang/scryer/scan"
)

// commands share package level flag variables, so these tests do not run in
// parallel.

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

const goSource = `package main

func main() {
	hello()
}

func hello() {}
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(goSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not go"), 0o644))
	return dir
}

func TestRunQuery(t *testing.T) {
	dir := writeProject(t)

	stdout, _, err := execute(t,
		"-r", dir,
		"--language", "go", "--ext", ".go",
		"-q", "(function_declaration name: (identifier)@fname)")
	require.NoError(t, err)

	assert.Contains(t, stdout, filepath.Join(dir, "main.go")+":\n")
	assert.Contains(t, stdout, "  fname:\n")
	assert.Contains(t, stdout, " main\n")
	assert.Contains(t, stdout, " hello\n")
	assert.NotContains(t, stdout, "notes.txt")
}

func TestRunQueryHidden(t *testing.T) {
	dir := writeProject(t)
	hiddenFile := filepath.Join(dir, ".cache", "gen.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(hiddenFile), 0o755))
	require.NoError(t, os.WriteFile(hiddenFile, []byte(goSource), 0o644))

	args := []string{"-r", dir, "--language", "go", "--ext", ".go", "-q", "(function_declaration name: (identifier)@fname)"}

	stdout, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.NotContains(t, stdout, hiddenFile)

	stdout, _, err = execute(t, append(args, "--hidden")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, hiddenFile+":\n")
}

func TestRunQueryJSONAndStats(t *testing.T) {
	dir := writeProject(t)

	stdout, stderr, err := execute(t,
		"-r", dir,
		"--language", "go", "--ext", ".go", "--json", "--stats",
		"-q", "(call_expression function: (identifier)@callee)")
	require.NoError(t, err)

	assert.Contains(t, stdout, `"name":"callee"`)
	assert.Contains(t, stdout, `"text":"hello"`)
	assert.Contains(t, stderr, "1 files scanned, 1 matched, 1 matches, 0 failed")
}

func TestRunQueryFailsBeforeScanning(t *testing.T) {
	dir := writeProject(t)

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{
			name:   "malformed query",
			args:   []string{"-r", filepath.Join(dir, "missing"), "-q", "(call"},
			target: query.ErrInvalidQuery,
		},
		{
			name:   "unknown grammar",
			args:   []string{"-r", dir, "--language", "nosuchlang", "--grammar-dir", dir, "-q", "(_)"},
			target: sitter.ErrGrammarNotFound,
		},
		{
			name: "unreadable root",
			args: []string{"-r", filepath.Join(dir, "missing"), "--language", "go", "-q", "(_)"},
		},
		{
			name: "missing query",
			args: []string{"-r", dir, "--language", "go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Empty(t, stdout)
		})
	}
}

func TestMalformedQueryShowsSnippet(t *testing.T) {
	_, _, err := execute(t, "-q", "(call)+")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(call)+\n      ^")
}

func TestTreeCommand(t *testing.T) {
	dir := writeProject(t)

	stdout, _, err := execute(t, "tree",
		"-r", dir,
		"--language", "go", "--ext", ".go")
	require.NoError(t, err)

	assert.Contains(t, stdout, filepath.Join(dir, "main.go")+":\n  (source_file")
	assert.Contains(t, stdout, "(function_declaration")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{".scryer.yaml", "scryer.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)

			stdout, _, err := execute(t, "init", "-c", path)
			require.NoError(t, err)
			assert.Contains(t, stdout, "Configuration file created: "+path)

			config, err := scan.LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, scan.DefaultConfig(), config)

			_, _, err = execute(t, "init", "-c", path)
			assert.ErrorContains(t, err, "already exists")

			_, _, err = execute(t, "init", "-c", path, "--force")
			assert.NoError(t, err)
		})
	}
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scryer.toml")
	require.NoError(t, scan.WriteConfig(path, scan.Config{
		Language:   "python",
		Extensions: []string{".py"},
		Exclude:    []string{"build/**"},
		MaxSteps:   10,
	}))

	resetFlags(rootCmd)
	require.NoError(t, rootCmd.ParseFlags([]string{"-c", path, "--ext", ".pyi", "--exclude", "gen/**", "--max-steps", "0"}))
	logger = newLogger(&bytes.Buffer{}, false)

	config, err := loadConfig(rootCmd)
	require.NoError(t, err)

	assert.Equal(t, "python", config.Language)
	assert.Equal(t, []string{".pyi"}, config.Extensions)
	assert.Equal(t, []string{"build/**", "gen/**"}, config.Exclude)
	assert.Equal(t, 0, config.MaxSteps)
}

func TestLoadConfigMissing(t *testing.T) {
	dir := t.TempDir()
	logger = newLogger(&bytes.Buffer{}, false)

	resetFlags(rootCmd)
	cfgFile = filepath.Join(dir, scan.DefaultConfigFile)
	config, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, scan.DefaultConfig(), config)

	require.NoError(t, rootCmd.ParseFlags([]string{"-c", filepath.Join(dir, "other.yaml")}))
	_, err = loadConfig(rootCmd)
	assert.Error(t, err)
}
