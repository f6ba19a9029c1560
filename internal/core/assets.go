package core

import (
	"path"
	"sort"
	"strings"
	"sync"
)

// Asset is one build output as seen by the build's accounting.
type Asset struct {
	Name    string
	Content []byte
}

func (a Asset) Size() int {
	return len(a.Content)
}

func (a Asset) Source() string {
	return string(a.Content)
}

func (a Asset) Hash() string {
	return HashContent(a.Content)
}

// AssetTable is the in-memory table of build outputs shared between the host
// build and the prerenderer. Entries are added or replaced, never removed.
type AssetTable struct {
	mu     sync.RWMutex
	assets map[string]Asset
	order  []string
}

func NewAssetTable() *AssetTable {
	return &AssetTable{
		assets: make(map[string]Asset),
	}
}

// Put registers or updates an asset under its output-relative name.
func (t *AssetTable) Put(name string, content []byte) Asset {
	name = AssetName(name)
	asset := Asset{Name: name, Content: append([]byte(nil), content...)}

	t.mu.Lock()
	if _, exists := t.assets[name]; !exists {
		t.order = append(t.order, name)
	}
	t.assets[name] = asset
	t.mu.Unlock()

	return asset
}

func (t *AssetTable) Get(name string) (Asset, bool) {
	t.mu.RLock()
	asset, ok := t.assets[AssetName(name)]
	t.mu.RUnlock()
	return asset, ok
}

// Lookup resolves a URL-ish reference (leading slash, "./", query string) to
// a registered asset.
func (t *AssetTable) Lookup(ref string) (Asset, bool) {
	if idx := strings.IndexAny(ref, "?#"); idx >= 0 {
		ref = ref[:idx]
	}
	return t.Get(ref)
}

// Names returns asset names in registration order.
func (t *AssetTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}

// BySize returns all assets sorted by descending size, then name.
func (t *AssetTable) BySize() []Asset {
	t.mu.RLock()
	assets := make([]Asset, 0, len(t.assets))
	for _, asset := range t.assets {
		assets = append(assets, asset)
	}
	t.mu.RUnlock()

	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Size() != assets[j].Size() {
			return assets[i].Size() > assets[j].Size()
		}
		return assets[i].Name < assets[j].Name
	})
	return assets
}

func (t *AssetTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.assets)
}

// AssetName normalizes an output-relative name to a clean slash path.
func AssetName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Clean("/" + name)
	return strings.TrimPrefix(name, "/")
}
