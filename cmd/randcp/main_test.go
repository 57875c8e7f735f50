package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/randcp/internal/engine"
	"github.com/bamsammich/randcp/internal/report"
)

// isolate points the config lookup at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func makeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "randcp dev\n", stdout)
}

func TestRun_WrongArgs(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "only-one")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Error:")
}

func TestRun_Success(t *testing.T) {
	isolate(t)
	root := makeTree(t, map[string]string{"a.txt": "a", "sub/b.txt": "bb"})
	dst := filepath.Join(t.TempDir(), "out")

	code, stdout, stderr := runCLI(t, "-n", "2", "--seed", "9", root, dst)

	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "1: ")
	assert.Contains(t, stdout, "2: ")
	assert.Contains(t, stdout, "SUCCESS: 2/2 files copied")
	assert.Contains(t, stderr, "done ✓")
	assert.FileExists(t, filepath.Join(dst, "a.txt"))
	assert.FileExists(t, filepath.Join(dst, "b.txt"))
	assert.FileExists(t, filepath.Join(dst, "!out_log.txt"))
}

func TestRun_Partial(t *testing.T) {
	isolate(t)
	root := makeTree(t, map[string]string{"a.txt": "a", "b.txt": "bb"})
	dst := filepath.Join(t.TempDir(), "out")

	code, stdout, _ := runCLI(t, "-q", "-n", "5", root, dst)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
}

func TestRun_NothingCopied(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	code, stdout, _ := runCLI(t, "--no-progress", root, dst)

	assert.Equal(t, 2, code)
	assert.Contains(t, stdout, "NO FILES FOUND: all files searched")
}

func TestRun_History(t *testing.T) {
	isolate(t)
	root := makeTree(t, map[string]string{"a.txt": "a"})
	dst := filepath.Join(t.TempDir(), "out")

	code, _, _ := runCLI(t, "-q", "--history", root, dst)
	require.Equal(t, 0, code)
	require.NoError(t, os.Remove(filepath.Join(dst, "a.txt")))

	code, _, _ = runCLI(t, "-q", "--history", root, dst)
	assert.Equal(t, 2, code, "the only file was copied by the first run")

	code, _, _ = runCLI(t, "-q", "--reset-history", root, dst)
	assert.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dst, "a.txt"))
}

func TestRun_MissingRoot(t *testing.T) {
	isolate(t)
	dst := filepath.Join(t.TempDir(), "out")

	code, _, stderr := runCLI(t, filepath.Join(t.TempDir(), "nope"), dst)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Error: root:")
	assert.NoDirExists(t, dst)
}

func TestRun_Filters(t *testing.T) {
	isolate(t)
	root := makeTree(t, map[string]string{
		"keep.txt":   "keep",
		"drop.log":   "drop",
		"huge.txt":   strings.Repeat("x", 4096),
		"notes/a.md": "md",
	})
	dst := filepath.Join(t.TempDir(), "out")

	code, _, stderr := runCLI(t, "-q", "-n", "4",
		"--exclude", "*.log", "--exclude", "notes/", "--max-size", "1K", root, dst)

	assert.Equal(t, 1, code, stderr)
	assert.FileExists(t, filepath.Join(dst, "keep.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "drop.log"))
	assert.NoFileExists(t, filepath.Join(dst, "huge.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "a.md"))
}

func TestRun_InvalidSize(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "--min-size", "lots", t.TempDir(), t.TempDir())
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "min-size")
}

func TestRun_ConfigDefaults(t *testing.T) {
	cfgHome := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfgHome, "randcp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgHome, "randcp", "config.toml"),
		[]byte("[defaults]\ncount = 2\nexclude = [\"*.skip\"]\n"), 0o644))

	root := makeTree(t, map[string]string{"a.txt": "a", "b.txt": "bb", "c.skip": "c"})

	dst := filepath.Join(t.TempDir(), "out")
	code, stdout, _ := runCLI(t, "--no-progress", root, dst)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "SUCCESS: 2/2 files copied")
	assert.NoFileExists(t, filepath.Join(dst, "c.skip"))

	// An explicit flag wins over the file.
	dst2 := filepath.Join(t.TempDir(), "out")
	code, stdout, _ = runCLI(t, "--no-progress", "-n", "1", root, dst2)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "SUCCESS: 1/1 files copied")
}

func TestRun_StructuredLog(t *testing.T) {
	isolate(t)
	root := makeTree(t, map[string]string{"a.txt": "a"})
	dst := filepath.Join(t.TempDir(), "out")
	logPath := filepath.Join(t.TempDir(), "run.json")

	code, _, _ := runCLI(t, "-q", "--log", logPath, root, dst)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"randcp.event"`)
	assert.Contains(t, string(data), `"type":"FileCopied"`)
	assert.Contains(t, string(data), `"status":"Success"`)
}

func TestGenDocs(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "docs")

	code, _, stderr := runCLI(t, "gen-docs", "--format", "markdown", "--dir", dir)
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, filepath.Join(dir, "randcp.md"))

	code, _, stderr = runCLI(t, "gen-docs", "--format", "yaml", "--dir", dir)
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, filepath.Join(dir, "randcp.yaml"))

	code, _, stderr = runCLI(t, "gen-docs", "--format", "pdf", "--dir", dir)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown format")
}

func TestExitFor(t *testing.T) {
	tests := []struct {
		name   string
		result engine.Result
		want   int
	}{
		{"success", engine.Result{Report: report.Result{Status: report.Success, Copied: 3, Target: 3}}, 0},
		{"partial", engine.Result{Report: report.Result{Status: report.AllFilesSearched, Copied: 1, Target: 3}}, 1},
		{"stopped with copies", engine.Result{Report: report.Result{Status: report.Stopped, Copied: 2, Target: 3}}, 1},
		{"none", engine.Result{Report: report.Result{Status: report.NoFilesFound, Target: 3}}, 2},
		{"timed out", engine.Result{Report: report.Result{Status: report.TimedOut, Target: 3}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitFor(tt.result)
			if tt.want == 0 {
				assert.NoError(t, err)
				return
			}
			var exitErr *exitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tt.want, exitErr.code)
		})
	}
}
