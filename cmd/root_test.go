package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/opx/internal/ui"
	"github.com/oakwood-commons/opx/pkg/opcode"
)

// resetRootFlags restores the package flag variables after a test that
// mutates them or runs the command.
func resetRootFlags(t *testing.T) {
	t.Helper()
	q, w, o, c, th, cf := initialQuery, whereExpr, outputFormat, columnsFlag, themeName, configFile
	nc, ow, km, dm, ll := noColor, outputWidth, keyMode, debounceMs, logLevel
	t.Cleanup(func() {
		initialQuery, whereExpr, outputFormat, columnsFlag, themeName, configFile = q, w, o, c, th, cf
		noColor, outputWidth, keyMode, debounceMs, logLevel = nc, ow, km, dm, ll
	})
}

func writeDatasetFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "miniops.yaml")
	data := `name: minivm
search_by: name
columns:
  - key: name
    grouped: true
  - key: gas
records:
  - name: ADD
    gas: "18"
  - name: SUB
    gas: "18"
  - name: PUSHINT
    gas: "26"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestRunRootPrintsJSON(t *testing.T) {
	resetRootFlags(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := writeDatasetFile(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{path, "-o", "json", "--where", `_.gas == "18"`})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var got opcode.Dataset
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "minivm", got.Name)
	require.Len(t, got.Records, 2)
	require.Equal(t, "ADD", got.Records[0].Get("name"))
	require.Equal(t, "SUB", got.Records[1].Get("name"))
}

func TestRunRootRejectsUnknownWhereField(t *testing.T) {
	resetRootFlags(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := writeDatasetFile(t)

	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{path, "-o", "json", "--where", `_.bogus == "1"`})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field")
}

func TestValidateFlags(t *testing.T) {
	resetRootFlags(t)

	outputFormat, keyMode = "auto", ""
	require.NoError(t, validateFlags())

	outputFormat = "json"
	require.NoError(t, validateFlags())

	outputFormat = "xml"
	err := validateFlags()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid output format")

	outputFormat, keyMode = "auto", "dvorak"
	err = validateFlags()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid key mode")
}

func TestPrintMode(t *testing.T) {
	resetRootFlags(t)
	origStdout := stdoutIsPiped
	t.Cleanup(func() { stdoutIsPiped = origStdout })

	outputFormat = "csv"
	require.Equal(t, "csv", printMode())

	outputFormat = "auto"
	stdoutIsPiped = func() bool { return true }
	require.Equal(t, "table", printMode())

	stdoutIsPiped = func() bool { return false }
	require.Equal(t, "", printMode())
}

func TestResolveKeyModePrecedence(t *testing.T) {
	resetRootFlags(t)
	cfg, err := loadMergedConfig("")
	require.NoError(t, err)

	keyMode = "emacs"
	t.Setenv("OPX_KEY_MODE", "function")
	require.Equal(t, ui.KeyMode("emacs"), resolveKeyMode(cfg))

	keyMode = ""
	require.Equal(t, ui.KeyMode("function"), resolveKeyMode(cfg))

	t.Setenv("OPX_KEY_MODE", "dvorak")
	require.Equal(t, ui.KeyModeVim, resolveKeyMode(cfg))

	t.Setenv("OPX_KEY_MODE", "")
	require.Equal(t, ui.KeyModeVim, resolveKeyMode(cfg))
}

func TestResolveDebounce(t *testing.T) {
	resetRootFlags(t)
	cfg, err := loadMergedConfig("")
	require.NoError(t, err)

	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&debounceMs, "debounce-ms", 0, "")
	require.Equal(t, 500, resolveDebounce(cmd, cfg))

	require.NoError(t, cmd.Flags().Set("debounce-ms", "120"))
	require.Equal(t, 120, resolveDebounce(cmd, cfg))
}

func TestSplitColumns(t *testing.T) {
	require.Equal(t, []string{"name", "gas"}, splitColumns("name,gas"))
	require.Equal(t, []string{"name", "gas"}, splitColumns(" name , gas ,"))
	require.Empty(t, splitColumns(""))
}

func TestAboutLines(t *testing.T) {
	cfg, err := loadMergedConfig("")
	require.NoError(t, err)

	lines := aboutLines(cfg)
	require.NotEmpty(t, lines)
	require.True(t, strings.HasPrefix(lines[0], "opx "))
	require.Contains(t, lines, cfg.About.RepositoryURL)
}

func TestCliVersionString(t *testing.T) {
	v := cliVersionString()
	require.Contains(t, v, "opx")
	require.Contains(t, v, runtime.Version())
}

func TestResolveConfigPath(t *testing.T) {
	require.Equal(t, "custom.yaml", resolveConfigPath("custom.yaml"))

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.Equal(t, "", resolveConfigPath(""))

	cfgDir := filepath.Join(dir, "opx")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ui:\n  theme:\n    default: dark\n"), 0o600))
	require.Equal(t, cfgPath, resolveConfigPath(""))
}
