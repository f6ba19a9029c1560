package usecase

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/3-lines-studio/prerender/internal/core"
)

const testTemplate = `<!DOCTYPE html>
<html>
<head>
<link rel="stylesheet" href="main.css">
<script src="main.js"></script>
<script src="https://cdn.example.com/lib.js"></script>
</head>
<body><div id="root"></div></body>
</html>`

type fakeModule struct {
	id string
}

func (m fakeModule) Identity() string {
	return m.id
}

type fakeLoader struct {
	err    error
	loaded []core.Script
}

func (l *fakeLoader) Load(main core.Script, preload ...core.Script) (core.Module, error) {
	l.loaded = append(l.loaded, preload...)
	l.loaded = append(l.loaded, main)
	if l.err != nil {
		return nil, l.err
	}
	return fakeModule{id: main.Identity}, nil
}

type fakeL10n struct {
	locale   string
	switches []string
}

func (c *fakeL10n) SetLocale(locale string) error {
	c.locale = locale
	c.switches = append(c.switches, locale)
	return nil
}

func (c *fakeL10n) Locale() string {
	return c.locale
}

func (c *fakeL10n) Lookup(key string) (string, bool) {
	return "", false
}

// fakeRenderer renders per-locale markup, falling back to a shared string.
type fakeRenderer struct {
	markup   map[string]string
	fail     map[string]bool
	fallback string
	calls    int
}

func (r *fakeRenderer) Render(module core.Module, l10n core.LocalizationContext) (string, error) {
	r.calls++
	locale := l10n.Locale()
	if r.fail[locale] {
		return "", fmt.Errorf("%w: %s exploded", core.ErrRender, locale)
	}
	if markup, ok := r.markup[locale]; ok {
		return markup, nil
	}
	return r.fallback, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}
