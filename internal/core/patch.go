package core

import (
	"encoding/json"
	"regexp"
	"strings"
)

// RewriteRule is one textual rewrite of generated runtime code.
type RewriteRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
	Rationale   string
	// Skip, when set, receives the source before a match and vetoes it.
	Skip func(before string) bool
}

// Apply rewrites every accepted match and reports how many were rewritten.
func (r RewriteRule) Apply(src string) (string, int) {
	matches := r.Pattern.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src, 0
	}

	var out strings.Builder
	out.Grow(len(src))
	last, count := 0, 0
	for _, m := range matches {
		if r.Skip != nil && r.Skip(src[:m[0]]) {
			continue
		}
		out.WriteString(src[last:m[0]])
		out.Write(r.Pattern.ExpandString(nil, r.Replacement, src, m))
		last = m[1]
		count++
	}
	out.WriteString(src[last:])
	return out.String(), count
}

var RuntimeRules = []RewriteRule{
	{
		Name:    "sync-chunk-install",
		Pattern: regexp.MustCompile(`([\w$]+)\.e\s*=\s*function\s*[\w$]*\s*\(\s*([\w$]+)\s*\)\s*\{`),
		Replacement: "${1}.e = function(${2}) { __prerender.loadChunk(${2}); return Promise.resolve(); };\n" +
			"${1}.__asyncEnsure = function(${2}) {",
		Rationale: "the sandbox has no script-tag loader; chunks are evaluated inline from the asset table",
	},
	{
		Name:        "deferred-translation",
		Pattern:     regexp.MustCompile(`\$L\(`),
		Replacement: "__prerender.t(",
		Rationale:   "strings missing at render time are emitted as markers and resolved on the client",
		Skip:        isDeclarationOrMember,
	},
}

func isDeclarationOrMember(before string) bool {
	if before == "" {
		return false
	}
	prev := before[len(before)-1]
	if prev == '.' || prev == '_' || prev == '$' || isAlnum(prev) {
		return true
	}
	return strings.HasSuffix(strings.TrimRight(before, " \t\r\n"), "function")
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

type PatchResult struct {
	Source  string
	Applied map[string]int
}

// PatchRuntime applies rules in order to captured runtime source.
func PatchRuntime(src string, rules []RewriteRule) PatchResult {
	result := PatchResult{Source: src, Applied: make(map[string]int, len(rules))}
	for _, rule := range rules {
		var n int
		result.Source, n = rule.Apply(result.Source)
		if n > 0 {
			result.Applied[rule.Name] = n
		}
	}
	return result
}

// RewriteFrameworkRequire points require calls for a logical framework name
// at a concrete module path.
func RewriteFrameworkRequire(src, logicalName, resolved string) string {
	if logicalName == "" || resolved == "" {
		return src
	}

	pattern := regexp.MustCompile(`require\(\s*["']` + regexp.QuoteMeta(logicalName) + `["']\s*\)`)
	quoted, _ := json.Marshal(resolved)
	return pattern.ReplaceAllLiteralString(src, "require("+string(quoted)+")")
}
