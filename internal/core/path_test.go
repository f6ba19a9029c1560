package core

import (
	"testing"
)

func TestLocalePaths(t *testing.T) {
	tests := []struct {
		locale         string
		wantArtifact   string
		wantDescriptor string
	}{
		{"en", "resources/en/index.html", "resources/en/appinfo.json"},
		{"en-GB", "resources/en-GB/index.html", "resources/en-GB/appinfo.json"},
		{"zh/Hans/CN", "resources/zh/Hans/CN/index.html", "resources/zh/Hans/CN/appinfo.json"},
	}

	for _, tt := range tests {
		if got := ArtifactPath(tt.locale); got != tt.wantArtifact {
			t.Errorf("ArtifactPath(%q) = %q, want %q", tt.locale, got, tt.wantArtifact)
		}
		if got := DescriptorPath(tt.locale); got != tt.wantDescriptor {
			t.Errorf("DescriptorPath(%q) = %q, want %q", tt.locale, got, tt.wantDescriptor)
		}
	}
}

func TestRelativePath(t *testing.T) {
	tests := []struct {
		name    string
		fromDir string
		target  string
		want    string
	}{
		{name: "same directory", fromDir: "resources/en", target: "resources/en/index.html", want: "index.html"},
		{name: "sibling locale", fromDir: "resources/en-GB", target: "resources/en/index.html", want: "../en/index.html"},
		{name: "parent locale", fromDir: "resources/en/US", target: "resources/en/index.html", want: "../index.html"},
		{name: "output root", fromDir: "resources/en-GB", target: "index.html", want: "../../index.html"},
		{name: "deeper target", fromDir: "resources/fr", target: "resources/fr/CA/index.html", want: "CA/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativePath(tt.fromDir, tt.target); got != tt.want {
				t.Errorf("RelativePath(%q, %q) = %q, want %q", tt.fromDir, tt.target, got, tt.want)
			}
		})
	}
}

func TestRewriteAssetPaths(t *testing.T) {
	tests := []struct {
		name string
		html string
		dir  string
		want string
	}{
		{
			name: "script and stylesheet",
			html: `<link href="main.css" rel="stylesheet"><script src="main.js"></script>`,
			dir:  "resources/en",
			want: `<link href="../../main.css" rel="stylesheet"><script src="../../main.js"></script>`,
		},
		{
			name: "nested locale",
			html: `<script src="./chunk/1.js?v=2"></script>`,
			dir:  "resources/en/US",
			want: `<script src="../../../chunk/1.js?v=2"></script>`,
		},
		{
			name: "single quotes",
			html: `<img src='logo.png'>`,
			dir:  "resources/de",
			want: `<img src='../../logo.png'>`,
		},
		{
			name: "absolute references untouched",
			html: `<script src="/main.js"></script><script src="https://cdn.example.com/a.js"></script><link href="//cdn/x.css">`,
			dir:  "resources/de",
			want: `<script src="/main.js"></script><script src="https://cdn.example.com/a.js"></script><link href="//cdn/x.css">`,
		},
		{
			name: "non asset strings untouched",
			html: `<a href="about.html">about</a><div class="main.jsx"></div>`,
			dir:  "resources/de",
			want: `<a href="about.html">about</a><div class="main.jsx"></div>`,
		},
		{
			name: "output root unchanged",
			html: `<script src="main.js"></script>`,
			dir:  "",
			want: `<script src="main.js"></script>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewriteAssetPaths(tt.html, tt.dir); got != tt.want {
				t.Errorf("RewriteAssetPaths() = %q, want %q", got, tt.want)
			}
		})
	}
}
