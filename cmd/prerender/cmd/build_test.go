package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

type recordedWarnings []string

func (w *recordedWarnings) PrintWarning(msg string, args ...any) {
	*w = append(*w, fmt.Sprintf(msg, args...))
}

func newFlagSet(t *testing.T, args ...string) (*pflag.FlagSet, *buildFlags) {
	t.Helper()
	f := &buildFlags{}
	set := pflag.NewFlagSet("build", pflag.ContinueOnError)
	set.StringVarP(&f.output, "output", "o", "", "")
	set.StringVarP(&f.locales, "locales", "l", "", "")
	set.StringVar(&f.externals, "externals", "", "")
	set.StringVar(&f.entry, "entry", "", "")
	set.StringVar(&f.defaultLocale, "default-locale", "", "")
	set.BoolVarP(&f.production, "production", "p", false, "")
	set.BoolVarP(&f.watch, "watch", "w", false, "")
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return set, f
}

func lookupMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	project := t.TempDir()
	configFile := filepath.Join(project, "prerender.toml")
	if err := os.WriteFile(configFile, []byte(`locales = "tv"
output = "from-file"
render_timeout = "10s"
`), 0644); err != nil {
		t.Fatal(err)
	}

	set, f := newFlagSet(t, "-o", "from-flag", "-p")
	var warnings recordedWarnings
	cfg, err := resolveConfig(project, "", set, *f, lookupMap(map[string]string{
		"PRERENDER_LOCALES": "en-US,fr-FR",
		"PRERENDER_OUTPUT":  "from-env",
		"PRERENDER_TIMEOUT": "soon",
	}), &warnings)
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}

	if cfg.ProjectDir != project {
		t.Errorf("ProjectDir = %q, want %q", cfg.ProjectDir, project)
	}
	if cfg.Locales != "en-US,fr-FR" {
		t.Errorf("Locales = %q, want the environment value", cfg.Locales)
	}
	if cfg.Output != "from-flag" {
		t.Errorf("Output = %q, want the flag value", cfg.Output)
	}
	if !cfg.Production {
		t.Error("Production = false, want true from -p")
	}
	if cfg.RenderTimeout.Duration != 10*time.Second {
		t.Errorf("RenderTimeout = %v, want 10s from the file", cfg.RenderTimeout.Duration)
	}
	if len(warnings) != 1 || warnings[0] != "Ignoring invalid PRERENDER_TIMEOUT" {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	project := t.TempDir()
	set, f := newFlagSet(t, "--locales", "none")

	var warnings recordedWarnings
	cfg, err := resolveConfig(project, "", set, *f, lookupMap(nil), &warnings)
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}
	if cfg.Locales != "none" || cfg.Output != "dist" || cfg.Entry != "src/index.js" {
		t.Errorf("resolveConfig() = %+v", cfg)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	project := t.TempDir()

	set, f := newFlagSet(t)
	if _, err := resolveConfig(project, filepath.Join(project, "missing.yaml"), set, *f, lookupMap(nil), &recordedWarnings{}); err == nil {
		t.Error("resolveConfig() with a missing config file should fail")
	}

	set, f = newFlagSet(t, "--entry", " ")
	if _, err := resolveConfig(project, "", set, *f, lookupMap(nil), &recordedWarnings{}); err == nil {
		t.Error("resolveConfig() with an empty entry should fail validation")
	}
}
