package osapi

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// Runner runs a program to completion and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// clipboardTimeout bounds each clipboard tool invocation.
const clipboardTimeout = 5 * time.Second

// Clipboard accesses the system clipboard. Text goes through the
// clipboard library; images and file lists use platform tools.
type Clipboard struct {
	platform string
	runner   Runner
	tempDir  string

	// writeText is clipboard.WriteAll; replaced in tests.
	writeText func(string) error
}

// NewClipboard creates a clipboard for platform.
func NewClipboard(platform string, runner Runner) *Clipboard {
	return &Clipboard{
		platform:  platform,
		runner:    runner,
		tempDir:   os.TempDir(),
		writeText: clipboard.WriteAll,
	}
}

// WriteText replaces the clipboard with text.
func (c *Clipboard) WriteText(text string) error {
	return c.writeText(text)
}

// WriteImage places an encoded image on the clipboard.
func (c *Clipboard) WriteImage(mime string, data []byte) error {
	f, err := os.CreateTemp(c.tempDir, "quickbar-image-*"+imageExt(mime))
	if err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), clipboardTimeout)
	defer cancel()

	switch c.platform {
	case "darwin":
		class := "«class PNGf»"
		if mime == "image/jpeg" {
			class = "JPEG picture"
		}
		script := fmt.Sprintf("set the clipboard to (read (POSIX file %q) as %s)", path, class)
		_, err = c.runner.Run(ctx, "osascript", "-e", script)
	case "linux":
		_, err = c.runner.Run(ctx, "xclip", "-selection", "clipboard", "-t", mime, "-i", path)
	case "windows":
		script := fmt.Sprintf("Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.Clipboard]::SetImage([System.Drawing.Image]::FromFile('%s'))", path)
		_, err = c.runner.Run(ctx, "powershell", "-NoProfile", "-Command", script)
	default:
		return ErrUnsupported
	}
	return err
}

// WriteFiles places a file list on the clipboard.
func (c *Clipboard) WriteFiles(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), clipboardTimeout)
	defer cancel()

	var err error
	switch c.platform {
	case "darwin":
		items := make([]string, len(paths))
		for i, p := range paths {
			items[i] = fmt.Sprintf("POSIX file %q", p)
		}
		script := fmt.Sprintf("set the clipboard to {%s}", strings.Join(items, ", "))
		_, err = c.runner.Run(ctx, "osascript", "-e", script)
	case "linux":
		uris := make([]string, len(paths))
		for i, p := range paths {
			uris[i] = fileURI(p)
		}
		f, ferr := os.CreateTemp(c.tempDir, "quickbar-files-*.txt")
		if ferr != nil {
			return fmt.Errorf("write files: %w", ferr)
		}
		defer os.Remove(f.Name())
		if _, ferr = f.WriteString(strings.Join(uris, "\n")); ferr != nil {
			f.Close()
			return fmt.Errorf("write files: %w", ferr)
		}
		f.Close()
		_, err = c.runner.Run(ctx, "xclip", "-selection", "clipboard", "-t", "text/uri-list", "-i", f.Name())
	case "windows":
		quoted := make([]string, len(paths))
		for i, p := range paths {
			quoted[i] = "'" + strings.ReplaceAll(p, "'", "''") + "'"
		}
		_, err = c.runner.Run(ctx, "powershell", "-NoProfile", "-Command", "Set-Clipboard -Path "+strings.Join(quoted, ","))
	default:
		return ErrUnsupported
	}
	return err
}

// ReadFiles returns the file list on the clipboard. A clipboard holding
// no files yields an empty list; so does a missing platform tool.
func (c *Clipboard) ReadFiles(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	defer cancel()

	var out string
	var err error
	switch c.platform {
	case "darwin":
		out, err = c.runner.Run(ctx, "osascript", "-e", "POSIX path of (the clipboard as «class furl»)")
	case "linux":
		out, err = c.runner.Run(ctx, "xclip", "-selection", "clipboard", "-o", "-t", "text/uri-list")
		if err == nil {
			return parseURIList(out), nil
		}
	case "windows":
		out, err = c.runner.Run(ctx, "powershell", "-NoProfile", "-Command",
			"Get-Clipboard -Format FileDropList | ForEach-Object { $_.FullName }")
	default:
		return nil, ErrUnsupported
	}
	if err != nil {
		// The tools exit non-zero when the clipboard holds no files.
		return nil, nil
	}
	return splitLines(out), nil
}

// parseURIList decodes a text/uri-list payload, keeping local files.
func parseURIList(s string) []string {
	var paths []string
	for _, line := range splitLines(s) {
		if strings.HasPrefix(line, "#") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil || u.Scheme != "file" || u.Path == "" {
			continue
		}
		paths = append(paths, filepath.FromSlash(u.Path))
	}
	return paths
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func imageExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
