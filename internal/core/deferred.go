package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// DeferredString is a translation that was not available at render time.
type DeferredString struct {
	Key     string
	Literal string
}

// DeferredTable collects markers handed out during one render.
type DeferredTable struct {
	entries []DeferredString
}

var markerPattern = regexp.MustCompile(`__L10N_(\d+)__`)

// Marker records a deferred lookup and returns the placeholder to embed in
// the rendered markup.
func (t *DeferredTable) Marker(key, literal string) string {
	t.entries = append(t.entries, DeferredString{Key: key, Literal: literal})
	return fmt.Sprintf("__L10N_%d__", len(t.entries)-1)
}

func (t *DeferredTable) Len() int {
	return len(t.entries)
}

func (t *DeferredTable) Reset() {
	t.entries = t.entries[:0]
}

func (t *DeferredTable) entry(marker []byte) (DeferredString, bool) {
	sub := markerPattern.FindSubmatch(marker)
	if sub == nil {
		return DeferredString{}, false
	}
	idx, err := strconv.Atoi(string(sub[1]))
	if err != nil || idx < 0 || idx >= len(t.entries) {
		return DeferredString{}, false
	}
	return t.entries[idx], true
}

// rawTextElements hold text where a script tag cannot be injected.
var rawTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"title":    true,
	"textarea": true,
	"noscript": true,
}

// ExpandDeferred replaces markers in rendered markup. Markers inside text
// nodes become a client-side script that performs the lookup in the browser;
// markers anywhere else are replaced by their literal value.
func ExpandDeferred(markup string, table *DeferredTable) string {
	if table == nil || table.Len() == 0 || !markerPattern.MatchString(markup) {
		return markup
	}

	var out strings.Builder
	out.Grow(len(markup))

	z := html.NewTokenizer(strings.NewReader(markup))
	rawParent := ""
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// The tokenizer gave up; resolve what is left eagerly.
				out.WriteString(replaceLiteral(string(z.Raw()), table, true))
			}
			break
		}

		raw := append([]byte(nil), z.Raw()...)
		switch tt {
		case html.TextToken:
			if rawParent != "" {
				escape := rawParent != "script" && rawParent != "style"
				out.WriteString(replaceLiteral(string(raw), table, escape))
			} else {
				out.WriteString(replaceWithScript(raw, table))
			}
		case html.StartTagToken:
			out.WriteString(replaceLiteral(string(raw), table, true))
			name, _ := z.TagName()
			if rawTextElements[string(name)] {
				rawParent = string(name)
			}
		case html.EndTagToken:
			out.WriteString(replaceLiteral(string(raw), table, true))
			name, _ := z.TagName()
			if string(name) == rawParent {
				rawParent = ""
			}
		default:
			out.WriteString(replaceLiteral(string(raw), table, true))
		}
	}

	return out.String()
}

func replaceLiteral(s string, table *DeferredTable, escape bool) string {
	return markerPattern.ReplaceAllStringFunc(s, func(marker string) string {
		entry, ok := table.entry([]byte(marker))
		if !ok {
			return marker
		}
		if escape {
			return html.EscapeString(entry.Literal)
		}
		return entry.Literal
	})
}

func replaceWithScript(text []byte, table *DeferredTable) string {
	return string(markerPattern.ReplaceAllFunc(text, func(marker []byte) []byte {
		entry, ok := table.entry(marker)
		if !ok {
			return marker
		}
		return []byte(DeferredScript(entry.Key))
	}))
}

// DeferredScript is the client-side lookup emitted in place of a string that
// was unavailable while prerendering.
func DeferredScript(key string) string {
	quoted, _ := json.Marshal(key)
	quoted = bytes.ReplaceAll(quoted, []byte("</"), []byte(`<\/`))
	return fmt.Sprintf("<script>document.write($L(%s))</script>", quoted)
}
