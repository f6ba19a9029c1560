package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		mutate  func(*Config)
	}{
		{
			name: "toml",
			file: "prerender.toml",
			content: `locales = "tv"
externals = "/opt/enact/framework.js"
output = "build"
render_timeout = "5s"
production = true
`,
			mutate: func(c *Config) {
				c.Locales = "tv"
				c.ExternalFramework = "/opt/enact/framework.js"
				c.Output = "build"
				c.RenderTimeout = Duration{5 * time.Second}
				c.Production = true
			},
		},
		{
			name: "yaml",
			file: "prerender.yaml",
			content: `locales: en-US,fr-FR
entry: app/main.jsx
runtime_entry: app/ilib-preload.js
title: Sampler
`,
			mutate: func(c *Config) {
				c.Locales = "en-US,fr-FR"
				c.Entry = "app/main.jsx"
				c.RuntimeEntry = "app/ilib-preload.js"
				c.Title = "Sampler"
			},
		},
		{
			name:    "empty file keeps defaults",
			file:    "prerender.yml",
			content: ``,
			mutate:  func(c *Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			want := Default()
			tt.mutate(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}

	path := filepath.Join(dir, "prerender.ini")
	if err := os.WriteFile(path, []byte("locales=all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load() error = %v, want ErrUnsupportedFormat", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("locales = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load() of malformed TOML should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "missing entry", mutate: func(c *Config) { c.Entry = " " }, wantErr: true},
		{name: "missing output", mutate: func(c *Config) { c.Output = "" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.RenderTimeout = Duration{-time.Second} }, wantErr: true},
		{name: "bad default locale", mutate: func(c *Config) { c.DefaultLocale = "../en" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOutputDir(t *testing.T) {
	cfg := Default()
	cfg.ProjectDir = "/work/app"
	if got := cfg.OutputDir(); got != filepath.Join("/work/app", "dist") {
		t.Errorf("OutputDir() = %q", got)
	}

	cfg.Output = "/tmp/out"
	if got := cfg.OutputDir(); got != "/tmp/out" {
		t.Errorf("OutputDir() = %q, want /tmp/out", got)
	}
}
