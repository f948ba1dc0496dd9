package osapi

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindDesktopEntries(t *testing.T) {
	local, shared := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(local, "code.desktop"), `[Desktop Entry]
Type=Application
Name=Visual Studio Code
Exec=/usr/bin/code --new-window %F
Icon=vscode
Keywords=vscode;editor;
`)
	writeFile(t, filepath.Join(shared, "code.desktop"), "[Desktop Entry]\nName=Visual Studio Code\nExec=/opt/code\n")
	writeFile(t, filepath.Join(shared, "hidden.desktop"), "[Desktop Entry]\nName=Hidden\nExec=h\nNoDisplay=true\n")
	writeFile(t, filepath.Join(shared, "link.desktop"), "[Desktop Entry]\nType=Link\nName=Docs\nURL=https://x\n")
	writeFile(t, filepath.Join(shared, "term.desktop"), "[Desktop Action new]\nName=New\n[Desktop Entry]\nName=Terminal\nExec=xterm\n")
	writeFile(t, filepath.Join(shared, "notes.txt"), "Name=Notes")

	apps, err := NewAppFinder("linux", local, filepath.Join(t.TempDir(), "missing"), shared).Find(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 2)

	code := apps[0]
	assert.Equal(t, "Visual Studio Code", code.Name)
	assert.Equal(t, "/usr/bin/code --new-window", code.Action)
	assert.Equal(t, "vscode", code.Icon)
	assert.Equal(t, []string{"Visual Studio Code", "vscode", "editor", "vsc"}, code.Keywords)

	assert.Equal(t, "Terminal", apps[1].Name)
	assert.Equal(t, []string{"Terminal"}, apps[1].Keywords)
}

func TestFindBundles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Safari.app", "Contents"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Utilities", "Disk Utility.app"), 0o755))
	writeFile(t, filepath.Join(dir, "readme.app"), "not a bundle")

	apps, err := NewAppFinder("darwin", dir).Find(context.Background())
	require.NoError(t, err)
	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.Name
	}
	assert.ElementsMatch(t, []string{"Safari", "Disk Utility"}, names)
	for _, a := range apps {
		assert.Contains(t, a.Action, "open -a ")
	}
}

func TestFindShellLinks(t *testing.T) {
	dir := t.TempDir()
	link := append(linkHeader(0), []byte("x\x00D:\\Games\\play.exe\x00")...)
	writeFile(t, filepath.Join(dir, "Games", "Play.lnk"), string(link))
	writeFile(t, filepath.Join(dir, "broken.lnk"), "short")

	apps, err := NewAppFinder("windows", dir).Find(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Play", apps[0].Name)
	assert.Equal(t, `start "" "D:\Games\play.exe"`, apps[0].Action)
}

func TestFindAppsUnsupported(t *testing.T) {
	_, err := NewAppFinder("plan9", t.TempDir()).Find(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewAppFinder("linux", t.TempDir()).Find(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
