package core

import (
	"testing"
)

func ruleByName(t *testing.T, name string) RewriteRule {
	t.Helper()
	for _, rule := range RuntimeRules {
		if rule.Name == name {
			return rule
		}
	}
	t.Fatalf("rule %q not found", name)
	return RewriteRule{}
}

func TestSyncChunkInstallRule(t *testing.T) {
	rule := ruleByName(t, "sync-chunk-install")

	tests := []struct {
		name      string
		input     string
		want      string
		wantCount int
	}{
		{
			name:  "named ensure function",
			input: "__webpack_require__.e = function requireEnsure(chunkId) {\n\tvar promises = [];",
			want: "__webpack_require__.e = function(chunkId) { __prerender.loadChunk(chunkId); return Promise.resolve(); };\n" +
				"__webpack_require__.__asyncEnsure = function(chunkId) {\n\tvar promises = [];",
			wantCount: 1,
		},
		{
			name:  "minified anonymous",
			input: "n.e=function(e){var t=[];",
			want: "n.e = function(e) { __prerender.loadChunk(e); return Promise.resolve(); };\n" +
				"n.__asyncEnsure = function(e) {var t=[];",
			wantCount: 1,
		},
		{
			name:      "unrelated assignment",
			input:     "module.exports = function(a) { return a; };",
			want:      "module.exports = function(a) { return a; };",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := rule.Apply(tt.input)
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
			if n != tt.wantCount {
				t.Errorf("Apply() count = %d, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestDeferredTranslationRule(t *testing.T) {
	rule := ruleByName(t, "deferred-translation")

	tests := []struct {
		name      string
		input     string
		want      string
		wantCount int
	}{
		{
			name:      "call site rewritten",
			input:     "global.t = function (s) { return $L(s); };",
			want:      "global.t = function (s) { return __prerender.t(s); };",
			wantCount: 1,
		},
		{
			name:      "declaration kept",
			input:     "function $L(str) { return rb.getString(str); }",
			want:      "function $L(str) { return rb.getString(str); }",
			wantCount: 0,
		},
		{
			name:      "member and identifier suffix kept",
			input:     "i18n.$L('a'); my$L('b'); x=$L('c')",
			want:      "i18n.$L('a'); my$L('b'); x=__prerender.t('c')",
			wantCount: 1,
		},
		{
			name:      "assignment kept",
			input:     "var $L = function (s) { return s; };",
			want:      "var $L = function (s) { return s; };",
			wantCount: 0,
		},
		{
			name:      "start of source",
			input:     "$L(\"Hello\")",
			want:      "__prerender.t(\"Hello\")",
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := rule.Apply(tt.input)
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
			if n != tt.wantCount {
				t.Errorf("Apply() count = %d, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestPatchRuntime(t *testing.T) {
	src := "r.e = function(id) { return load(id); };\nvar $L = require('l');\nglobal.x = function(k) { return $L(k); };"
	result := PatchRuntime(src, RuntimeRules)

	want := "r.e = function(id) { __prerender.loadChunk(id); return Promise.resolve(); };\n" +
		"r.__asyncEnsure = function(id) { return load(id); };\n" +
		"var $L = require('l');\nglobal.x = function(k) { return __prerender.t(k); };"
	if result.Source != want {
		t.Errorf("PatchRuntime() = %q, want %q", result.Source, want)
	}
	if result.Applied["sync-chunk-install"] != 1 || result.Applied["deferred-translation"] != 1 {
		t.Errorf("PatchRuntime() applied = %v", result.Applied)
	}
}

func TestRewriteFrameworkRequire(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		resolved string
		want     string
	}{
		{
			name:     "double quotes",
			src:      `var f = require("enact_framework");`,
			resolved: "/opt/enact/framework.js",
			want:     `var f = require("/opt/enact/framework.js");`,
		},
		{
			name:     "single quotes and spacing",
			src:      `var f = require( 'enact_framework' );`,
			resolved: "/opt/enact/framework.js",
			want:     `var f = require("/opt/enact/framework.js");`,
		},
		{
			name:     "other modules untouched",
			src:      `require("enact_framework_extra"); require("react")`,
			resolved: "/opt/f.js",
			want:     `require("enact_framework_extra"); require("react")`,
		},
		{
			name:     "no resolution configured",
			src:      `require("enact_framework")`,
			resolved: "",
			want:     `require("enact_framework")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RewriteFrameworkRequire(tt.src, "enact_framework", tt.resolved)
			if got != tt.want {
				t.Errorf("RewriteFrameworkRequire() = %q, want %q", got, tt.want)
			}
		})
	}
}
