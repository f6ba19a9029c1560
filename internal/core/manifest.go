package core

import (
	"fmt"
	"path"
	"strings"

	"github.com/tidwall/gjson"
)

// ZoneDataDir holds time zone data in resource manifests; it is never a locale.
const ZoneDataDir = "zoneinfo"

// ScanManifest derives the locales present in a resource manifest of the form
// {"files": ["en/US/strings.json", ...]}.
func ScanManifest(data []byte, includeParents bool) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrManifestRead)
	}

	files := gjson.GetBytes(data, "files")
	if files.Exists() && !files.IsArray() {
		return nil, fmt.Errorf("%w: files is not an array", ErrManifestRead)
	}

	var candidates []string
	files.ForEach(func(_, value gjson.Result) bool {
		dir := path.Dir(strings.ReplaceAll(value.String(), "\\", "/"))
		if !isLocaleDir(dir) {
			return true
		}
		if includeParents {
			parents := ParentDirs(dir)
			for i := len(parents) - 1; i >= 0; i-- {
				if isLocaleDir(parents[i]) {
					candidates = append(candidates, parents[i])
				}
			}
		}
		candidates = append(candidates, dir)
		return true
	})

	return OrderLocales(candidates), nil
}

// ParentDirs lists the ancestor directories of a slash path, closest first.
func ParentDirs(dir string) []string {
	var parents []string
	for {
		idx := strings.LastIndex(dir, "/")
		if idx <= 0 {
			return parents
		}
		dir = dir[:idx]
		parents = append(parents, dir)
	}
}

func isLocaleDir(dir string) bool {
	if dir == "" || dir == "." || dir == "/" {
		return false
	}

	for _, segment := range strings.Split(dir, "/") {
		if segment == ZoneDataDir {
			return false
		}
	}

	if len(dir) == 2 {
		return isLetters(dir)
	}
	if len(dir) > 2 && (dir[2] == '/' || dir[2] == '-') {
		return isLetters(dir[:2])
	}
	return false
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// ParseLocaleListJSON reads a locale list file: either a JSON array of strings
// or an object with a "locales" array.
func ParseLocaleListJSON(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON locale list", ErrManifestRead)
	}

	list := gjson.ParseBytes(data)
	if list.IsObject() {
		list = list.Get("locales")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: locale list is not an array", ErrManifestRead)
	}

	var locales []string
	for _, item := range list.Array() {
		if item.Type != gjson.String {
			continue
		}
		if locale := NormalizeLocale(item.String()); locale != "" {
			locales = append(locales, locale)
		}
	}
	return locales, nil
}
