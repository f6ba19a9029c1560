package core

import (
	"path"
	"regexp"
	"strings"
)

const (
	ResourcesDir      = "resources"
	ArtifactName      = "index.html"
	DescriptorName    = "appinfo.json"
	DescriptorMainKey = "main"
)

// LocaleDir is the output-relative directory for a locale token. Slashes in
// the token become nested directories.
func LocaleDir(locale string) string {
	return path.Join(ResourcesDir, locale)
}

func ArtifactPath(locale string) string {
	return path.Join(LocaleDir(locale), ArtifactName)
}

func DescriptorPath(locale string) string {
	return path.Join(LocaleDir(locale), DescriptorName)
}

// RelativePath returns target relative to the directory fromDir. Both are
// output-relative slash paths.
func RelativePath(fromDir, target string) string {
	from := splitPath(fromDir)
	to := splitPath(target)

	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(to)-common)
	for i := common; i < len(from); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	return strings.Join(parts, "/")
}

func splitPath(p string) []string {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

var assetRefPattern = regexp.MustCompile(`"([^"'\s<>]+\.(?:js|mjs|css|map|json|png|jpe?g|gif|svg|webp|ico|woff2?|ttf|otf|eot|bin)(?:[?#][^"'\s<>]*)?)"|'([^"'\s<>]+\.(?:js|mjs|css|map|json|png|jpe?g|gif|svg|webp|ico|woff2?|ttf|otf|eot|bin)(?:[?#][^"'\s<>]*)?)'`)

// RewriteAssetPaths makes every quoted relative asset reference in html,
// written relative to the output root, relative to dir instead. Absolute
// references are left untouched.
func RewriteAssetPaths(html string, dir string) string {
	depth := len(splitPath(dir))
	if depth == 0 {
		return html
	}
	prefix := strings.Repeat("../", depth)

	return assetRefPattern.ReplaceAllStringFunc(html, func(match string) string {
		quote := match[:1]
		ref := match[1 : len(match)-1]
		if IsAbsoluteRef(ref) {
			return match
		}
		ref = strings.TrimPrefix(ref, "./")
		return quote + prefix + ref + quote
	})
}

func IsAbsoluteRef(ref string) bool {
	switch {
	case strings.HasPrefix(ref, "/"):
		return true
	case strings.HasPrefix(ref, "data:"):
		return true
	case strings.Contains(ref, "://"):
		return true
	}
	return false
}
