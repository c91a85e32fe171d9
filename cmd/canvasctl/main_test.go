package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExportThenImport(t *testing.T) {
	src := t.TempDir()
	markup := writeFile(t, src, "in.html", "<h1>Exported</h1>")
	style := writeFile(t, src, "in.css", "h1 { color: red; }")
	script := writeFile(t, src, "in.js", `console.log("hi")`)

	exportDir := t.TempDir()
	out, err := execute(t, "export", "--html", markup, "--css", style, "--js", script,
		"--title", "My Demo", "-o", exportDir)
	require.NoError(t, err)

	exported := strings.TrimSpace(out)
	assert.Equal(t, exportDir, filepath.Dir(exported))
	assert.True(t, strings.HasSuffix(exported, ".html"))

	importDir := t.TempDir()
	out, err = execute(t, "import", exported, "-o", importDir)
	require.NoError(t, err)
	assert.Contains(t, out, `"My Demo"`)

	for name, want := range map[string]string{
		markupFile: "<h1>Exported</h1>",
		styleFile:  "h1 { color: red; }",
		scriptFile: `console.log("hi")`,
	} {
		data, err := os.ReadFile(filepath.Join(importDir, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, strings.TrimSpace(string(data)), name)
	}
}

func TestExportMissingFile(t *testing.T) {
	_, err := execute(t, "export", "--html", filepath.Join(t.TempDir(), "nope.html"), "-o", t.TempDir())
	assert.Error(t, err)
}

func TestImportRequiresFile(t *testing.T) {
	_, err := execute(t, "import")
	assert.Error(t, err)
}

func TestImportRejectsNonHTML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.bin", "\x00\x01\x02\x03binary")
	_, err := execute(t, "import", path, "-o", t.TempDir())
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()

	t.Run("clean script", func(t *testing.T) {
		markup := writeFile(t, dir, "ok.html", `<p id="out"></p>`)
		script := writeFile(t, dir, "ok.js", `console.log("ready")`)

		out, err := execute(t, "check", "--html", markup, "--js", script)
		require.NoError(t, err)
		assert.Contains(t, out, "console.log: ready")
		assert.Contains(t, out, "ok (")
	})

	t.Run("throwing script", func(t *testing.T) {
		script := writeFile(t, dir, "bad.js", `throw new Error("boom")`)

		out, err := execute(t, "check", "--js", script)
		assert.ErrorIs(t, err, errDiagnostics)
		assert.Contains(t, out, "thrown (script)")
		assert.Contains(t, out, "boom")
	})
}
