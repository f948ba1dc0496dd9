package osapi

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf16"
)

// Shell link flags.
const (
	linkHasIDList       = 0x01
	linkHasInfo         = 0x02
	linkHasName         = 0x04
	linkHasRelativePath = 0x08
	linkHasWorkingDir   = 0x10
	linkHasArguments    = 0x20
	linkHasIconLocation = 0x40
	linkIsUnicode       = 0x80

	linkHeaderSize = 0x4C
)

var drivePath = regexp.MustCompile(`[A-Za-z]:\\[^\x00\r\n]*`)

// ResolveShortcut returns the target of a shortcut file: a Windows shell
// link, a desktop entry or a symbolic link. The second result is false
// when path is not a shortcut or its target cannot be found.
func (s *Shell) ResolveShortcut(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lnk":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", false
		}
		return ParseShellLink(data)
	case ".desktop":
		f, err := os.Open(path)
		if err != nil {
			return "", false
		}
		defer f.Close()
		return desktopExec(f)
	}
	fi, err := os.Lstat(path)
	if err != nil || fi.Mode()&os.ModeSymlink == 0 {
		return "", false
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	return target, true
}

// ParseShellLink extracts a best-effort target path from the contents of
// a .lnk file. The local base path from the link info wins, then the
// relative path from the string data, then the first drive path found
// anywhere in the file.
func ParseShellLink(b []byte) (string, bool) {
	if len(b) < linkHeaderSize || binary.LittleEndian.Uint32(b) < linkHeaderSize {
		return "", false
	}
	flags := binary.LittleEndian.Uint32(b[0x14:])
	off := int(binary.LittleEndian.Uint32(b))

	if flags&linkHasIDList != 0 {
		if off+2 > len(b) {
			return "", false
		}
		off += 2 + int(binary.LittleEndian.Uint16(b[off:]))
		if off > len(b) {
			return "", false
		}
	}

	if flags&linkHasInfo != 0 && off+4 <= len(b) {
		size := int(binary.LittleEndian.Uint32(b[off:]))
		if size >= 0x1C && off+size <= len(b) {
			if p, ok := linkInfoPath(b[off : off+size]); ok {
				return p, true
			}
			off += size
		}
	}

	unicode := flags&linkIsUnicode != 0
	for _, f := range []uint32{linkHasName, linkHasRelativePath, linkHasWorkingDir, linkHasArguments, linkHasIconLocation} {
		if flags&f == 0 {
			continue
		}
		s, next, ok := countedString(b, off, unicode)
		if !ok {
			break
		}
		if f == linkHasRelativePath && s != "" {
			return s, true
		}
		off = next
	}

	if m := drivePath.Find(b); m != nil {
		return string(m), true
	}
	if m := drivePath.FindString(decodeUTF16(b)); m != "" {
		return m, true
	}
	return "", false
}

// linkInfoPath reads the local base path of a LinkInfo block, preferring
// the unicode variant, and appends the common path suffix.
func linkInfoPath(info []byte) (string, bool) {
	header := binary.LittleEndian.Uint32(info[4:])
	base := ""
	if o := binary.LittleEndian.Uint32(info[16:]); o != 0 && int(o) < len(info) {
		base = cString(info[o:])
	}
	if header >= 0x24 && len(info) >= 0x20 {
		if o := binary.LittleEndian.Uint32(info[0x1C:]); o != 0 && int(o) < len(info) {
			if u := decodeUTF16Z(info[o:]); u != "" {
				return u, true
			}
		}
	}
	suffix := ""
	if o := binary.LittleEndian.Uint32(info[24:]); o != 0 && int(o) < len(info) {
		suffix = cString(info[o:])
	}
	if base+suffix == "" {
		return "", false
	}
	return base + suffix, true
}

// countedString reads a StringData entry: a character count followed by
// that many characters.
func countedString(b []byte, off int, unicode bool) (string, int, bool) {
	if off+2 > len(b) {
		return "", off, false
	}
	n := int(binary.LittleEndian.Uint16(b[off:]))
	off += 2
	if !unicode {
		if off+n > len(b) {
			return "", off, false
		}
		return string(b[off : off+n]), off + n, true
	}
	if off+2*n > len(b) {
		return "", off, false
	}
	return decodeUTF16(b[off : off+2*n]), off + 2*n, true
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func decodeUTF16(b []byte) string {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(u))
}

func decodeUTF16Z(b []byte) string {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return decodeUTF16(b[:i])
		}
	}
	return decodeUTF16(b)
}

// desktopExec returns the program of a desktop entry's Exec line.
func desktopExec(r io.Reader) (string, bool) {
	e := parseDesktopEntry(r)
	fields := strings.Fields(e.exec)
	if len(fields) == 0 {
		return "", false
	}
	return strings.Trim(fields[0], `"`), true
}

type desktopEntry struct {
	name     string
	exec     string
	icon     string
	kind     string
	hidden   bool
	keywords []string
}

// parseDesktopEntry reads the [Desktop Entry] group. Localized keys are
// ignored.
func parseDesktopEntry(r io.Reader) desktopEntry {
	var e desktopEntry
	sc := bufio.NewScanner(r)
	inEntry := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "Name":
			e.name = strings.TrimSpace(v)
		case "Exec":
			e.exec = strings.TrimSpace(v)
		case "Icon":
			e.icon = strings.TrimSpace(v)
		case "Type":
			e.kind = strings.TrimSpace(v)
		case "NoDisplay", "Hidden":
			e.hidden = e.hidden || strings.TrimSpace(v) == "true"
		case "Keywords":
			for _, kw := range strings.Split(v, ";") {
				if kw = strings.TrimSpace(kw); kw != "" {
					e.keywords = append(e.keywords, kw)
				}
			}
		}
	}
	return e
}
