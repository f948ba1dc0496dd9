package osapi

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkHeader(flags uint32) []byte {
	b := make([]byte, linkHeaderSize)
	binary.LittleEndian.PutUint32(b, linkHeaderSize)
	binary.LittleEndian.PutUint32(b[0x14:], flags)
	return b
}

func u32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }

func TestParseShellLinkInfo(t *testing.T) {
	b := linkHeader(linkHasIDList | linkHasInfo)
	// Empty item id list.
	b = append(b, 0, 0)

	base := []byte(`C:\Tools\app.exe` + "\x00")
	info := u32(0)
	info = append(info, u32(0x1C)...)                   // header size
	info = append(info, u32(1)...)                      // flags
	info = append(info, u32(0)...)                      // volume id
	info = append(info, u32(0x1C)...)                   // local base path
	info = append(info, u32(0)...)                      // network link
	info = append(info, u32(0x1C+uint32(len(base)))...) // common suffix
	info = append(info, base...)
	info = append(info, 0)
	binary.LittleEndian.PutUint32(info, uint32(len(info)))
	b = append(b, info...)

	got, ok := ParseShellLink(b)
	require.True(t, ok)
	assert.Equal(t, `C:\Tools\app.exe`, got)
}

func TestParseShellLinkRelativePath(t *testing.T) {
	b := linkHeader(linkHasName | linkHasRelativePath | linkIsUnicode)
	for _, s := range []string{"Editor", `..\..\Program Files\Editor\editor.exe`} {
		u := utf16.Encode([]rune(s))
		b = binary.LittleEndian.AppendUint16(b, uint16(len(u)))
		for _, c := range u {
			b = binary.LittleEndian.AppendUint16(b, c)
		}
	}

	got, ok := ParseShellLink(b)
	require.True(t, ok)
	assert.Equal(t, `..\..\Program Files\Editor\editor.exe`, got)
}

func TestParseShellLinkFallbackScan(t *testing.T) {
	b := linkHeader(0)
	b = append(b, []byte("junk\x00D:\\Games\\play.exe\x00more")...)
	got, ok := ParseShellLink(b)
	require.True(t, ok)
	assert.Equal(t, `D:\Games\play.exe`, got)
}

func TestParseShellLinkRejects(t *testing.T) {
	_, ok := ParseShellLink([]byte("not a link"))
	assert.False(t, ok)

	b := linkHeader(linkHasIDList)
	b = append(b, 0xFF, 0xFF)
	_, ok = ParseShellLink(b)
	assert.False(t, ok, "id list overruns the file")
}

func TestResolveShortcutFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewShell("linux", &fakeRunner{})

	entry := filepath.Join(dir, "editor.desktop")
	require.NoError(t, os.WriteFile(entry, []byte("[Desktop Action new]\nExec=wrong\n[Desktop Entry]\nName=Editor\nExec=\"/opt/editor/bin/editor\" %F\n"), 0o644))
	got, ok := s.ResolveShortcut(entry)
	require.True(t, ok)
	assert.Equal(t, "/opt/editor/bin/editor", got)

	plain := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))
	_, ok = s.ResolveShortcut(plain)
	assert.False(t, ok)

	_, ok = s.ResolveShortcut(filepath.Join(dir, "missing.lnk"))
	assert.False(t, ok)

	if runtime.GOOS == "windows" {
		return
	}
	link := filepath.Join(dir, "notes-link")
	require.NoError(t, os.Symlink(plain, link))
	got, ok = s.ResolveShortcut(link)
	require.True(t, ok)
	want, err := filepath.EvalSymlinks(plain)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
