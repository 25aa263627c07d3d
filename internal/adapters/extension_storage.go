package adapters

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"config-packager/internal/ports"
	"config-packager/internal/types"
)

const infoFileSuffix = ".info.yml"

// ExtensionStorageAdapter reads packaged configuration from exported
// package directories under Root:
//
//	<package>/<package>.info.yml
//	<package>/config/install/<item>.yml
//
// The directory scan is cached until Reset or a Write.
type ExtensionStorageAdapter struct {
	Root string

	mu     sync.Mutex
	loaded bool
	items  map[string]extensionItem
	infos  []types.PackageInfo
}

type extensionItem struct {
	path     string
	provider string
}

func NewExtensionStorageAdapter(root string) *ExtensionStorageAdapter {
	return &ExtensionStorageAdapter{Root: root}
}

func (a *ExtensionStorageAdapter) Read(name string) (types.Document, bool, error) {
	if err := validateItemName(name); err != nil {
		return nil, false, err
	}
	item, ok, err := a.lookup(name)
	if err != nil || !ok {
		return nil, false, err
	}
	return readDocument(item.path)
}

// Write replaces the packaged value of an item that a package already
// provides.
func (a *ExtensionStorageAdapter) Write(name string, doc types.Document) error {
	if err := validateItemName(name); err != nil {
		return err
	}
	item, ok, err := a.lookup(name)
	if err != nil {
		return err
	}
	if !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no exported package provides %s", name))
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(item.path, data); err != nil {
		return err
	}
	a.Reset()
	return nil
}

func (a *ExtensionStorageAdapter) List() ([]string, error) {
	if err := a.load(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.items))
	for name := range a.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (a *ExtensionStorageAdapter) Provider(name string) (string, bool, error) {
	item, ok, err := a.lookup(name)
	if err != nil || !ok {
		return "", false, err
	}
	return item.provider, true, nil
}

func (a *ExtensionStorageAdapter) Packages() ([]types.PackageInfo, error) {
	if err := a.load(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]types.PackageInfo(nil), a.infos...), nil
}

// Reset drops the cached scan so the next call sees the files on disk.
func (a *ExtensionStorageAdapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loaded = false
	a.items = nil
	a.infos = nil
}

func (a *ExtensionStorageAdapter) lookup(name string) (extensionItem, bool, error) {
	if err := a.load(); err != nil {
		return extensionItem{}, false, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	item, ok := a.items[name]
	return item, ok, nil
}

func (a *ExtensionStorageAdapter) load() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded {
		return nil
	}
	items, infos, err := scanExtensions(a.Root)
	if err != nil {
		return err
	}
	a.items = items
	a.infos = infos
	a.loaded = true
	return nil
}

func scanExtensions(root string) (map[string]extensionItem, []types.PackageInfo, error) {
	if root == "" {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("export folder is empty")
	}
	items := map[string]extensionItem{}
	infos := map[string]types.PackageInfo{}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return items, nil, nil
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipExtensionDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		dir := filepath.Dir(path)
		base := d.Name()
		switch {
		case strings.HasSuffix(base, infoFileSuffix) && strings.TrimSuffix(base, infoFileSuffix) == filepath.Base(dir):
			info, err := readPackageInfo(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("skipping unreadable package info")
				return nil
			}
			infos[info.MachineName] = info
		case strings.HasSuffix(base, configFileExt) && isInstallDir(dir):
			provider := filepath.Base(filepath.Dir(filepath.Dir(dir)))
			name := strings.TrimSuffix(base, configFileExt)
			if _, exists := items[name]; !exists {
				items[name] = extensionItem{path: path, provider: provider}
			}
			if _, exists := infos[provider]; !exists {
				infos[provider] = types.PackageInfo{MachineName: provider, Name: provider}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan export folder").
			WithCause(err)
	}
	ordered := make([]types.PackageInfo, 0, len(infos))
	for _, info := range infos {
		ordered = append(ordered, info)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].MachineName < ordered[j].MachineName
	})
	return items, ordered, nil
}

func readPackageInfo(path string) (types.PackageInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.PackageInfo{}, err
	}
	var info types.PackageInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return types.PackageInfo{}, fmt.Errorf("parse %s: %w", path, err)
	}
	info.MachineName = strings.TrimSuffix(filepath.Base(path), infoFileSuffix)
	if info.Name == "" {
		info.Name = info.MachineName
	}
	return info, nil
}

func isInstallDir(dir string) bool {
	return filepath.Base(dir) == "install" && filepath.Base(filepath.Dir(dir)) == "config"
}

func shouldSkipExtensionDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "vendor":
		return true
	default:
		return false
	}
}

var _ ports.ExtensionStoragePort = (*ExtensionStorageAdapter)(nil)
