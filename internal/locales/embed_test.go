package locales

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/tidwall/gjson"
)

func TestListFile(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		want    string
		wantErr error
	}{
		{name: "tv", list: "tv", want: "tv.json"},
		{name: "signage", list: "signage", want: "signage.json"},
		{name: "unknown", list: "watch", wantErr: ErrUnknownList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ListFile(tt.list)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ListFile() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ListFile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCuratedListsAreValid(t *testing.T) {
	for _, name := range ListNames() {
		file, err := ListFile(name)
		if err != nil {
			t.Fatalf("ListFile(%q) error = %v", name, err)
		}

		data, err := fs.ReadFile(FS(), file)
		if err != nil {
			t.Fatalf("ReadFile(%q) error = %v", file, err)
		}

		result := gjson.ParseBytes(data)
		if !result.IsArray() {
			t.Fatalf("%s is not a JSON array", file)
		}

		seen := make(map[string]bool)
		for _, item := range result.Array() {
			locale := item.String()
			if locale == "" {
				t.Errorf("%s contains an empty locale", file)
			}
			if seen[locale] {
				t.Errorf("%s lists %q twice", file, locale)
			}
			seen[locale] = true
		}

		if !seen["en-US"] {
			t.Errorf("%s should include en-US", file)
		}
	}
}
