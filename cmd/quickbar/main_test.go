package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quickbar/internal/input/key"
)

func writePlugin(t *testing.T, installDir, name, manifest string) {
	t.Helper()
	dir := filepath.Join(installDir, "node_modules", name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644))
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand("test", "abc", "today")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func testInstall(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	install := filepath.Join(dir, "plugins")
	writePlugin(t, install, "capture", `{
		"name": "capture",
		"pluginName": "Capture",
		"version": "1.0.0",
		"main": "index.html",
		"features": [{"code": "shot", "explain": "Screen capture", "cmds": ["capture", "screenshot"]}]
	}`)
	writePlugin(t, install, "calc", `{
		"name": "calc",
		"version": "0.2.0",
		"main": "index.html",
		"features": [{"code": "calc", "explain": "Calculator", "cmds": ["calculate"]}]
	}`)
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[paths]\ninstallDir = \""+filepath.ToSlash(install)+"\"\ndataDir = \""+filepath.ToSlash(dir)+"\"\n"), 0o644))
	return cfg
}

func TestPluginsList(t *testing.T) {
	cfg := testInstall(t)
	out, err := runCLI(t, "plugins", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "capture")
	assert.Contains(t, out, "1.0.0")
	assert.Contains(t, out, "calc")
}

func TestPluginsSearch(t *testing.T) {
	cfg := testInstall(t)
	out, err := runCLI(t, "plugins", "search", "--config", cfg, "--apps=false", "scr")
	require.NoError(t, err)
	assert.Contains(t, out, "screenshot")
	assert.NotContains(t, out, "calculate")

	out, err = runCLI(t, "plugins", "search", "--config", cfg, "--apps=false", "zzzz")
	require.NoError(t, err)
	assert.Contains(t, out, "no matches")
}

func TestPluginsSearchApps(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("desktop entries are scanned on linux only")
	}
	cfg := testInstall(t)
	apps := t.TempDir()
	entry := "[Desktop Entry]\nType=Application\nName=Screen Recorder\nExec=recorder %U\n"
	require.NoError(t, os.WriteFile(filepath.Join(apps, "recorder.desktop"), []byte(entry), 0o644))

	out, err := runCLI(t, "plugins", "search", "--config", cfg, "--app-dir", apps, "scr")
	require.NoError(t, err)
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "Screen Recorder")
	assert.Contains(t, out, "screenshot")
}

func TestTriggerRejectsBadJSON(t *testing.T) {
	_, err := runCLI(t, "trigger", "--config", filepath.Join(t.TempDir(), "none.toml"), "get-path", "{nope")
	assert.ErrorContains(t, err, "not valid JSON")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test (commit: abc")
}

func TestDescribeKey(t *testing.T) {
	assert.Equal(t, "Escape  (cancel)", describeKey(key.FromTcell(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))))
	assert.Equal(t, "control+a", describeKey(key.FromTcell(tcell.NewEventKey(tcell.KeyCtrlA, 0, tcell.ModCtrl))))
}

func TestKeyLoopExitsOnCtrlC(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModNone)
	require.NoError(t, keyLoop(screen))
}
