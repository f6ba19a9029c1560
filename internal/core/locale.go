package core

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

type LocaleSpecKind int

const (
	LocaleSpecNone LocaleSpecKind = iota
	LocaleSpecUsed
	LocaleSpecAll
	LocaleSpecCurated
	LocaleSpecFile
	LocaleSpecList
)

const DefaultLocaleSpec = "used"

// LocaleSpec is the raw locale target as configured for one build.
type LocaleSpec struct {
	Raw  string
	Kind LocaleSpecKind
}

// ParseLocaleSpec classifies a configured locale value. isFile reports whether
// a value names an existing file; it is only consulted for non-keyword values.
func ParseLocaleSpec(raw string, isFile func(string) bool) LocaleSpec {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = DefaultLocaleSpec
	}

	switch strings.ToLower(value) {
	case "none":
		return LocaleSpec{Raw: value, Kind: LocaleSpecNone}
	case "used":
		return LocaleSpec{Raw: value, Kind: LocaleSpecUsed}
	case "all":
		return LocaleSpec{Raw: value, Kind: LocaleSpecAll}
	case "tv", "signage":
		return LocaleSpec{Raw: strings.ToLower(value), Kind: LocaleSpecCurated}
	}

	if strings.HasSuffix(strings.ToLower(value), ".json") || (isFile != nil && isFile(value)) {
		return LocaleSpec{Raw: value, Kind: LocaleSpecFile}
	}

	return LocaleSpec{Raw: value, Kind: LocaleSpecList}
}

// NormalizeLocale trims a token and turns underscores into dashes. Case and
// the slash/dash layout are kept as written.
func NormalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	locale = strings.ReplaceAll(locale, "_", "-")
	locale = strings.ReplaceAll(locale, "\\", "/")
	return strings.Trim(locale, "/")
}

// ParseLocaleList splits an explicit comma separated list.
func ParseLocaleList(value string) []string {
	parts := strings.Split(value, ",")
	locales := make([]string, 0, len(parts))
	for _, part := range parts {
		if locale := NormalizeLocale(part); locale != "" {
			locales = append(locales, locale)
		}
	}
	return locales
}

func localeSegments(locale string) []string {
	return strings.FieldsFunc(locale, func(r rune) bool {
		return r == '/' || r == '-'
	})
}

// LocaleDepth is the number of hierarchy segments in a token.
func LocaleDepth(locale string) int {
	return len(localeSegments(locale))
}

// OrderLocales removes duplicates and sorts by ascending depth, keeping the
// first-seen order between tokens of equal depth.
func OrderLocales(locales []string) []string {
	seen := make(map[string]struct{}, len(locales))
	result := make([]string, 0, len(locales))
	for _, locale := range locales {
		if locale == "" {
			continue
		}
		if _, ok := seen[locale]; ok {
			continue
		}
		seen[locale] = struct{}{}
		result = append(result, locale)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return LocaleDepth(result[i]) < LocaleDepth(result[j])
	})
	return result
}

func ValidateLocale(locale string) error {
	if locale == "" {
		return fmt.Errorf("locale cannot be empty")
	}

	if strings.HasPrefix(locale, "/") {
		return fmt.Errorf("locale %q cannot be absolute", locale)
	}

	for _, segment := range strings.Split(locale, "/") {
		if segment == "" {
			return fmt.Errorf("locale %q has an empty segment", locale)
		}
		if segment == "." || segment == ".." {
			return fmt.Errorf("locale %q cannot contain relative segments", locale)
		}
	}

	if strings.ContainsAny(locale, " \t?#*:") {
		return fmt.Errorf("locale %q contains invalid characters", locale)
	}

	return nil
}

// LocaleTag turns a hierarchical token into a BCP 47 string, e.g. "zh/Hans/CN"
// becomes "zh-Hans-CN". Tokens the language package cannot parse are returned
// dash-joined as they are.
func LocaleTag(locale string) string {
	joined := strings.Join(localeSegments(locale), "-")
	if joined == "" {
		return ""
	}

	tag, err := language.Parse(joined)
	if err != nil {
		return joined
	}
	return tag.String()
}

// ParentLocales returns the ancestors of a token, closest first, keeping the
// original separators. "en/US" yields ["en"].
func ParentLocales(locale string) []string {
	var parents []string
	for {
		idx := strings.LastIndexAny(locale, "/-")
		if idx <= 0 {
			return parents
		}
		locale = locale[:idx]
		parents = append(parents, locale)
	}
}
