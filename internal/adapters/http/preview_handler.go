package http

import (
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/3-lines-studio/prerender/internal/adapters/fs"
	"github.com/3-lines-studio/prerender/internal/core"
)

// LocaleParam selects a locale explicitly, overriding Accept-Language.
const LocaleParam = "locale"

// PreviewHandler serves a build output directory the way a device would load
// it: "/" follows the appinfo.json descriptor of the best matching locale and
// every other path is served from disk.
type PreviewHandler struct {
	root    string
	files   fs.FileSystem
	locales []string
	matcher language.Matcher
	logger  *slog.Logger
}

// NewPreviewHandler discovers the prerendered locales under root. Locales
// whose descriptor has no pointer are ignored.
func NewPreviewHandler(root string, files fs.FileSystem, logger *slog.Logger) *PreviewHandler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &PreviewHandler{
		root:   root,
		files:  files,
		logger: logger,
	}

	locales := core.OrderLocales(h.discover(core.ResourcesDir))
	tags := make([]language.Tag, 0, len(locales))
	for _, locale := range locales {
		tag, err := language.Parse(core.LocaleTag(locale))
		if err != nil {
			logger.Warn("Skipping preview locale", "locale", locale, "error", err)
			continue
		}
		h.locales = append(h.locales, locale)
		tags = append(tags, tag)
	}
	if len(tags) > 0 {
		h.matcher = language.NewMatcher(tags)
	}
	return h
}

// Locales lists the locales "/" can resolve to.
func (h *PreviewHandler) Locales() []string {
	return h.locales
}

func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	name := core.AssetName(req.URL.Path)
	if name == "" || name == core.ArtifactName {
		h.serveEntry(w, req)
		return
	}

	if strings.HasSuffix(req.URL.Path, "/") {
		name = path.Join(name, core.ArtifactName)
	}
	h.serveFile(w, req, name)
}

func (h *PreviewHandler) serveEntry(w http.ResponseWriter, req *http.Request) {
	locale, ok := h.Match(req.URL.Query().Get(LocaleParam), req.Header.Get("Accept-Language"))
	if !ok {
		h.serveFile(w, req, core.ArtifactName)
		return
	}

	target, ok := h.entryFor(locale)
	if !ok {
		h.serveFile(w, req, core.ArtifactName)
		return
	}
	if target == core.ArtifactName {
		w.Header().Set("Content-Language", core.LocaleTag(locale))
		h.serveFile(w, req, core.ArtifactName)
		return
	}

	// Artifacts reference assets relative to their own directory.
	http.Redirect(w, req, "/"+path.Dir(target)+"/", http.StatusFound)
}

// Match picks a prerendered locale for an explicit locale value or, when that
// is empty, an Accept-Language header.
func (h *PreviewHandler) Match(explicit, acceptLanguage string) (string, bool) {
	if h.matcher == nil {
		return "", false
	}

	var prefs []language.Tag
	if explicit = core.NormalizeLocale(explicit); explicit != "" {
		tag, err := language.Parse(core.LocaleTag(explicit))
		if err != nil {
			return "", false
		}
		prefs = []language.Tag{tag}
	} else {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err != nil || len(tags) == 0 {
			return "", false
		}
		prefs = tags
	}

	_, idx, confidence := h.matcher.Match(prefs...)
	if confidence == language.No || idx < 0 || idx >= len(h.locales) {
		return "", false
	}
	return h.locales[idx], true
}

// entryFor resolves the descriptor pointer of locale to an output-relative
// path.
func (h *PreviewHandler) entryFor(locale string) (string, bool) {
	data, err := h.files.ReadFile(h.path(core.DescriptorPath(locale)))
	if err != nil {
		return "", false
	}
	pointer := core.DescriptorPointer(data)
	if pointer == "" {
		return "", false
	}

	target := path.Clean(path.Join(core.LocaleDir(locale), pointer))
	if target == ".." || strings.HasPrefix(target, "../") {
		return "", false
	}
	return target, true
}

func (h *PreviewHandler) discover(dir string) []string {
	entries, err := h.files.ReadDir(h.path(dir))
	if err != nil {
		return nil
	}

	var locales []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := path.Join(dir, entry.Name())
		locale := strings.TrimPrefix(sub, core.ResourcesDir+"/")
		if data, err := h.files.ReadFile(h.path(path.Join(sub, core.DescriptorName))); err == nil && core.DescriptorPointer(data) != "" {
			locales = append(locales, locale)
		}
		locales = append(locales, h.discover(sub)...)
	}
	return locales
}

func (h *PreviewHandler) serveFile(w http.ResponseWriter, req *http.Request, name string) {
	data, err := h.files.ReadFile(h.path(name))
	if err != nil {
		http.NotFound(w, req)
		return
	}

	w.Header().Set("Content-Type", core.ContentType(name))
	if req.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("Preview write failed", "path", name, "error", err)
	}
}

func (h *PreviewHandler) path(name string) string {
	return filepath.Join(h.root, filepath.FromSlash(name))
}
