package core

import (
	"path"
	"strings"
)

// BundleName is the esbuild entry name for an output bundle; esbuild adds
// the extension back when it writes the file.
func BundleName(name string) string {
	name = AssetName(name)
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" {
		return "main"
	}
	return name
}
