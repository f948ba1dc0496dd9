package osapi

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dshills/quickbar/internal/search"
)

// fieldCode matches the %f, %U, ... placeholders of desktop entry Exec
// lines.
var fieldCode = regexp.MustCompile(`\s*%[a-zA-Z%]`)

// AppFinder discovers installed desktop applications.
type AppFinder struct {
	platform string
	dirs     []string
}

// NewAppFinder creates a finder for platform. With no dirs it scans the
// platform's standard application directories.
func NewAppFinder(platform string, dirs ...string) *AppFinder {
	if len(dirs) == 0 {
		dirs = DefaultAppDirs(platform)
	}
	return &AppFinder{platform: platform, dirs: dirs}
}

// DefaultAppDirs returns the directories applications are installed to.
func DefaultAppDirs(platform string) []string {
	home, _ := os.UserHomeDir()
	switch platform {
	case "darwin":
		return []string{"/Applications", "/System/Applications", filepath.Join(home, "Applications")}
	case "linux":
		data := os.Getenv("XDG_DATA_HOME")
		if data == "" {
			data = filepath.Join(home, ".local", "share")
		}
		dirs := []string{filepath.Join(data, "applications")}
		shared := os.Getenv("XDG_DATA_DIRS")
		if shared == "" {
			shared = "/usr/local/share:/usr/share"
		}
		for _, d := range filepath.SplitList(shared) {
			dirs = append(dirs, filepath.Join(d, "applications"))
		}
		return dirs
	case "windows":
		var dirs []string
		for _, env := range []string{"ProgramData", "APPDATA"} {
			if root := os.Getenv(env); root != "" {
				dirs = append(dirs, filepath.Join(root, "Microsoft", "Windows", "Start Menu", "Programs"))
			}
		}
		return dirs
	default:
		return nil
	}
}

// Find scans the finder's directories. Missing directories are skipped;
// the first app found under a name wins.
func (f *AppFinder) Find(ctx context.Context) ([]search.App, error) {
	var apps []search.App
	seen := make(map[string]bool)
	add := func(a search.App) {
		if a.Name == "" || seen[a.Name] {
			return
		}
		seen[a.Name] = true
		a.Keywords = appKeywords(a.Name, a.Keywords)
		apps = append(apps, a)
	}

	for _, dir := range f.dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		switch f.platform {
		case "darwin":
			err = findBundles(dir, add)
		case "linux":
			err = findDesktopEntries(dir, add)
		case "windows":
			err = findShellLinks(ctx, dir, add)
		default:
			return nil, ErrUnsupported
		}
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	return apps, nil
}

// findBundles lists .app bundles in dir and one level below it.
func findBundles(dir string, add func(search.App)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if name, ok := strings.CutSuffix(e.Name(), ".app"); ok {
			add(search.App{Name: name, Path: path, Action: "open -a " + strconv.Quote(path)})
			continue
		}
		sub, err := os.ReadDir(path)
		if err != nil {
			continue
		}
		for _, s := range sub {
			if name, ok := strings.CutSuffix(s.Name(), ".app"); ok && s.IsDir() {
				p := filepath.Join(path, s.Name())
				add(search.App{Name: name, Path: p, Action: "open -a " + strconv.Quote(p)})
			}
		}
	}
	return nil
}

func findDesktopEntries(dir string, add func(search.App)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".desktop" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		entry := parseDesktopEntry(f)
		f.Close()
		if entry.hidden || entry.exec == "" || (entry.kind != "" && entry.kind != "Application") {
			continue
		}
		add(search.App{
			Name:     entry.name,
			Path:     path,
			Action:   strings.TrimSpace(fieldCode.ReplaceAllString(entry.exec, "")),
			Icon:     entry.icon,
			Keywords: entry.keywords,
		})
	}
	return nil
}

func findShellLinks(ctx context.Context, dir string, add func(search.App)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".lnk") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		target, ok := ParseShellLink(data)
		if !ok {
			return nil
		}
		add(search.App{
			Name:   strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Path:   path,
			Action: `start "" "` + target + `"`,
		})
		return nil
	})
}

// appKeywords puts the name first, then extra, then the initials of a
// multi-word name.
func appKeywords(name string, extra []string) []string {
	kws := []string{name}
	for _, k := range extra {
		if k != name {
			kws = append(kws, k)
		}
	}
	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	if len(words) > 1 {
		var initials strings.Builder
		for _, w := range words {
			r := []rune(w)[0]
			initials.WriteRune(unicode.ToLower(r))
		}
		kws = append(kws, initials.String())
	}
	return kws
}
