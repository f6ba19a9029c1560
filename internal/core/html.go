package core

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	htmlTagPattern  = regexp.MustCompile(`(?i)<html\b[^>]*>`)
	langAttrPattern = regexp.MustCompile(`(?i)\slang\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
)

const DefaultRootID = "root"

// RootPlaceholder is the empty mount element a template must contain for the
// default render to be inlined.
func RootPlaceholder(rootID string) string {
	if rootID == "" {
		rootID = DefaultRootID
	}
	return fmt.Sprintf(`<div id="%s"></div>`, rootID)
}

// InjectRoot places markup inside the root placeholder of template.
func InjectRoot(template, rootID, markup string) (string, error) {
	placeholder := RootPlaceholder(rootID)
	if !strings.Contains(template, placeholder) {
		return template, fmt.Errorf("%w: %s", ErrPlaceholderMissing, placeholder)
	}

	filled := strings.TrimSuffix(placeholder, "</div>") + markup + "</div>"
	return strings.Replace(template, placeholder, filled, 1), nil
}

type ShellInput struct {
	Title   string
	Lang    string
	RootID  string
	CSS     []string
	Scripts []string
}

// RenderHTMLShell builds the default base template used when a project has
// no template of its own. Asset references stay relative to the output root.
func RenderHTMLShell(in ShellInput) (string, error) {
	if len(in.Scripts) == 0 {
		return "", fmt.Errorf("missing script src")
	}

	title := in.Title
	if title == "" {
		title = "App"
	}
	lang := in.Lang
	if lang == "" {
		lang = "en"
	}

	var head strings.Builder
	head.WriteString(`<meta charset="UTF-8" /><meta name="viewport" content="width=device-width, initial-scale=1.0" />`)
	fmt.Fprintf(&head, "<title>%s</title>", html.EscapeString(title))
	for _, href := range in.CSS {
		fmt.Fprintf(&head, `<link rel="stylesheet" href="%s" />`, html.EscapeString(href))
	}

	var scripts strings.Builder
	for _, src := range in.Scripts {
		fmt.Fprintf(&scripts, `    <script src="%s"></script>`, html.EscapeString(src))
		scripts.WriteString("\n")
	}

	shell := fmt.Sprintf(`<!doctype html>
<html lang="%s">
  <head>
    %s
  </head>
  <body>
    %s
%s  </body>
</html>
`, html.EscapeString(lang), head.String(), RootPlaceholder(in.RootID), scripts.String())

	return shell, nil
}

// SetDocumentLang sets the lang attribute of the document's <html> element,
// adding it when absent. Documents without an <html> tag are returned as is.
func SetDocumentLang(doc, lang string) string {
	if lang == "" {
		return doc
	}
	loc := htmlTagPattern.FindStringIndex(doc)
	if loc == nil {
		return doc
	}

	tag := doc[loc[0]:loc[1]]
	value := `"` + html.EscapeString(lang) + `"`
	var updated string
	if m := langAttrPattern.FindStringSubmatchIndex(tag); m != nil {
		updated = tag[:m[2]] + value + tag[m[3]:]
	} else {
		updated = tag[:len("<html")] + " lang=" + value + tag[len("<html"):]
	}
	return doc[:loc[0]] + updated + doc[loc[1]:]
}
