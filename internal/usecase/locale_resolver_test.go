package usecase

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/3-lines-studio/prerender/internal/adapters/fs"
	"github.com/3-lines-studio/prerender/internal/core"
)

func TestLocaleResolverResolve(t *testing.T) {
	project := t.TempDir()
	writeTestFile(t, filepath.Join(project, "resources", "ilibmanifest.json"), `{
	"files": [
		"fr/appinfo.json",
		"fr/FR/strings.json",
		"en/US/foo.json",
		"en/US/bar.json",
		"zoneinfo/Europe/Paris.json",
		"ilibmanifest.json"
	]
}`)
	writeTestFile(t, filepath.Join(project, "catalog", "ilibmanifest.json"), `{
	"files": ["ja/JP/strings.json", "de/strings.json", "de/DE/strings.json"]
}`)
	writeTestFile(t, filepath.Join(project, "targets.json"), `{"locales": ["de", "en_GB", "de"]}`)
	writeTestFile(t, filepath.Join(project, "targets-list"), `["ko-KR", "ko"]`)

	tests := []struct {
		name string
		spec string
		want []string
	}{
		{name: "none", spec: "none", want: []string{}},
		{name: "explicit list", spec: " en_US , fr-FR,en-US, ../etc", want: []string{"en-US", "fr-FR"}},
		{name: "explicit list keeps depth order", spec: "zh/Hans/CN,en-US,ja", want: []string{"ja", "en-US", "zh/Hans/CN"}},
		{name: "used includes parents", spec: "used", want: []string{"fr", "en", "fr/FR", "en/US"}},
		{name: "empty means used", spec: "", want: []string{"fr", "en", "fr/FR", "en/US"}},
		{name: "all excludes parents", spec: "all", want: []string{"de", "ja/JP", "de/DE"}},
		{name: "json file", spec: "targets.json", want: []string{"de", "en-GB"}},
		{name: "existing file without extension", spec: "targets-list", want: []string{"ko", "ko-KR"}},
	}

	resolver := NewLocaleResolver(fs.NewOSFileSystem(), project, filepath.Join("catalog", "ilibmanifest.json"), discardLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.spec)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.spec, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tt.spec, diff)
			}
		})
	}
}

func TestLocaleResolverCuratedLists(t *testing.T) {
	resolver := NewLocaleResolver(fs.NewOSFileSystem(), t.TempDir(), "", discardLogger())

	for _, list := range []string{"tv", "signage", "TV"} {
		t.Run(list, func(t *testing.T) {
			got, err := resolver.Resolve(list)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", list, err)
			}
			if len(got) == 0 {
				t.Fatalf("Resolve(%q) returned no locales", list)
			}

			seen := make(map[string]bool)
			for i, locale := range got {
				if seen[locale] {
					t.Errorf("duplicate locale %q", locale)
				}
				seen[locale] = true
				if i > 0 && core.LocaleDepth(got[i-1]) > core.LocaleDepth(locale) {
					t.Errorf("%q sorted before shallower %q", got[i-1], locale)
				}
			}
			if !seen["en-US"] {
				t.Errorf("Resolve(%q) missing en-US", list)
			}
		})
	}
}

func TestLocaleResolverFailures(t *testing.T) {
	project := t.TempDir()
	writeTestFile(t, filepath.Join(project, "broken.json"), `{"locales": "fr"}`)

	tests := []struct {
		name     string
		manifest string
		spec     string
	}{
		{name: "missing used manifest", spec: "used"},
		{name: "missing catalog manifest", spec: "all", manifest: "nowhere/ilibmanifest.json"},
		{name: "missing list file", spec: "missing.json"},
		{name: "malformed list file", spec: "broken.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewLocaleResolver(fs.NewOSFileSystem(), project, tt.manifest, discardLogger())
			got, err := resolver.Resolve(tt.spec)
			if !errors.Is(err, core.ErrManifestRead) {
				t.Errorf("Resolve(%q) error = %v, want ErrManifestRead", tt.spec, err)
			}
			if len(got) != 0 {
				t.Errorf("Resolve(%q) = %v, want empty", tt.spec, got)
			}
		})
	}
}

func TestScanManifestFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ilibmanifest.json")
	writeTestFile(t, path, `{"files": [`)

	if _, err := ScanManifestFile(fs.NewOSFileSystem(), path, true); !errors.Is(err, core.ErrManifestRead) {
		t.Errorf("ScanManifestFile() error = %v, want ErrManifestRead", err)
	}
}
