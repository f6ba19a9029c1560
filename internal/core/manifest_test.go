package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func manifestJSON(files ...string) []byte {
	quoted := make([]string, len(files))
	for i, f := range files {
		quoted[i] = fmt.Sprintf("%q", f)
	}
	return []byte(`{"files": [` + strings.Join(quoted, ",") + `]}`)
}

func TestScanManifest(t *testing.T) {
	tests := []struct {
		name           string
		files          []string
		includeParents bool
		want           []string
	}{
		{
			name:  "single locale with many files",
			files: []string{"en/US/foo.json", "en/US/bar.json"},
			want:  []string{"en/US"},
		},
		{
			name:           "parent and child with parents",
			files:          []string{"fr/appinfo.json", "fr/FR/strings.json"},
			includeParents: true,
			want:           []string{"fr", "fr/FR"},
		},
		{
			name:           "ancestors added when missing",
			files:          []string{"zh/Hans/CN/strings.json"},
			includeParents: true,
			want:           []string{"zh", "zh/Hans", "zh/Hans/CN"},
		},
		{
			name:  "ancestors not added without parents",
			files: []string{"zh/Hans/CN/strings.json"},
			want:  []string{"zh/Hans/CN"},
		},
		{
			name:  "zoneinfo excluded",
			files: []string{"zoneinfo/Europe/Berlin.json", "de/strings.json", "de/zoneinfo/x.json"},
			want:  []string{"de"},
		},
		{
			name:  "root files and bad shapes ignored",
			files: []string{"ilibmanifest.json", "eng/strings.json", "e1/x.json", "und/x.json", "ko/strings.json"},
			want:  []string{"ko"},
		},
		{
			name:  "dash shaped directories accepted",
			files: []string{"en-GB/strings.json", "en/strings.json"},
			want:  []string{"en", "en-GB"},
		},
		{
			name:  "no files",
			files: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScanManifest(manifestJSON(tt.files...), tt.includeParents)
			if err != nil {
				t.Fatalf("ScanManifest() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ScanManifest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanManifestCountsDistinctLocales(t *testing.T) {
	locales := []string{"en/US", "en/GB", "fr/FR", "de/DE", "ja/JP"}
	var files []string
	for i, locale := range locales {
		for j := 0; j <= i+2; j++ {
			files = append(files, fmt.Sprintf("%s/file%d.json", locale, j))
		}
	}

	got, err := ScanManifest(manifestJSON(files...), false)
	if err != nil {
		t.Fatalf("ScanManifest() error = %v", err)
	}
	if len(got) != len(locales) {
		t.Errorf("ScanManifest() returned %d locales, want %d: %v", len(got), len(locales), got)
	}
}

func TestScanManifestMalformed(t *testing.T) {
	inputs := []string{
		`{"files": [`,
		`not json`,
		`{"files": "en/US/a.json"}`,
	}

	for _, input := range inputs {
		got, err := ScanManifest([]byte(input), true)
		if !errors.Is(err, ErrManifestRead) {
			t.Errorf("ScanManifest(%q) error = %v, want ErrManifestRead", input, err)
		}
		if len(got) != 0 {
			t.Errorf("ScanManifest(%q) = %v, want empty", input, got)
		}
	}
}

func TestParseLocaleListJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "array", input: `["en-US", "fr_FR", 3]`, want: []string{"en-US", "fr-FR"}},
		{name: "object", input: `{"locales": ["ko-KR"]}`, want: []string{"ko-KR"}},
		{name: "object without list", input: `{"other": 1}`, wantErr: true},
		{name: "invalid", input: `[`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocaleListJSON([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLocaleListJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseLocaleListJSON() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
