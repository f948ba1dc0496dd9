package plugin

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/quickbar/internal/plugin/manifest"
)

// PluginInfo is the result of inspecting one installed package.
type PluginInfo struct {
	Name       string
	Path       string
	Descriptor *manifest.Descriptor
	Error      error
}

// Loader discovers plugins installed as packages under an install
// directory's node_modules.
type Loader struct {
	installDir string
}

// NewLoader creates a loader for installDir.
func NewLoader(installDir string) *Loader {
	return &Loader{installDir: installDir}
}

// ModulesDir returns the directory packages are installed into.
func (l *Loader) ModulesDir() string {
	return filepath.Join(l.installDir, "node_modules")
}

// Discover inspects every installed package, including scoped packages,
// sorted by name. A missing install directory yields no plugins.
func (l *Loader) Discover() ([]*PluginInfo, error) {
	root := l.ModulesDir()
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var infos []*PluginInfo
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if strings.HasPrefix(entry.Name(), "@") {
			scoped, err := os.ReadDir(filepath.Join(root, entry.Name()))
			if err != nil {
				continue
			}
			for _, s := range scoped {
				if s.IsDir() {
					infos = append(infos, l.inspect(filepath.Join(root, entry.Name(), s.Name())))
				}
			}
			continue
		}
		infos = append(infos, l.inspect(filepath.Join(root, entry.Name())))
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

func (l *Loader) inspect(dir string) *PluginInfo {
	info := &PluginInfo{Name: filepath.Base(dir), Path: dir}
	d, err := manifest.Load(dir)
	if err != nil {
		info.Error = err
		return info
	}
	info.Name = d.Name
	info.Descriptor = d
	return info
}
