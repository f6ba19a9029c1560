package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/3-lines-studio/prerender/internal/core"
)

const prerenderSubject = "Prerender"

type PrerenderOptions struct {
	ProjectDir      string
	Locales         string
	DefaultLocale   string
	CatalogManifest string
	// MainBundle and RuntimeBundle are the logical output names captured
	// from the host build. RuntimeBundle is optional.
	MainBundle    string
	RuntimeBundle string
	RootID        string
	Logger        *slog.Logger
}

type PrerenderResult struct {
	SessionID   string
	Locales     []string
	Records     []core.RenderRecord
	Artifacts   []string
	Descriptors []string
	Warnings    []PrerenderWarning
	// Disabled reports that prerendering was abandoned for the build.
	Disabled bool
}

// PrerenderSession follows one host build through its lifecycle hooks. It
// owns the dedup cache and the loaded module for that build only.
type PrerenderSession struct {
	opts     PrerenderOptions
	id       string
	loader   core.ModuleLoader
	renderer core.ServerRenderer
	l10n     core.LocalizationContext
	files    FileSystem
	assets   *core.AssetTable
	resolver *LocaleResolver
	logger   *slog.Logger

	main     []byte
	runtime  []byte
	template string
	module   core.Module
	cache    *core.DedupCache
	disabled bool
	warnings []PrerenderWarning
}

func NewPrerenderSession(opts PrerenderOptions, loader core.ModuleLoader, renderer core.ServerRenderer, l10n core.LocalizationContext, files FileSystem, assets *core.AssetTable) *PrerenderSession {
	if assets == nil {
		assets = core.NewAssetTable()
	}
	if opts.RootID == "" {
		opts.RootID = core.DefaultRootID
	}

	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id)

	return &PrerenderSession{
		opts:     opts,
		id:       id,
		loader:   loader,
		renderer: renderer,
		l10n:     l10n,
		files:    files,
		assets:   assets,
		resolver: NewLocaleResolver(files, opts.ProjectDir, opts.CatalogManifest, logger),
		logger:   logger,
		cache:    core.NewDedupCache(),
	}
}

func (s *PrerenderSession) ID() string {
	return s.id
}

func (s *PrerenderSession) Assets() *core.AssetTable {
	return s.assets
}

func (s *PrerenderSession) Warnings() []PrerenderWarning {
	return append([]PrerenderWarning(nil), s.warnings...)
}

// AssetFinalized registers a build output and captures the bundles the
// session renders from.
func (s *PrerenderSession) AssetFinalized(name string, content []byte) {
	asset := s.assets.Put(name, content)

	switch asset.Name {
	case core.AssetName(s.opts.MainBundle):
		s.main = asset.Content
		s.logger.Debug("Captured main bundle", "name", asset.Name, "size", asset.Size())
	case core.AssetName(s.opts.RuntimeBundle):
		if s.opts.RuntimeBundle == "" {
			return
		}
		s.runtime = asset.Content
		s.logger.Debug("Captured runtime bundle", "name", asset.Name, "size", asset.Size())
	}
}

// TemplateReady inlines the default locale's render into the base template.
// On any failure the template is returned unchanged.
func (s *PrerenderSession) TemplateReady(html string) string {
	s.template = html

	module, ok := s.ensureModule()
	if !ok {
		return html
	}

	if !strings.Contains(html, core.RootPlaceholder(s.opts.RootID)) {
		s.disable(newWarning(prerenderSubject, "Template has no root placeholder",
			fmt.Errorf("%w: %s", core.ErrPlaceholderMissing, core.RootPlaceholder(s.opts.RootID))))
		return html
	}

	locale := core.NormalizeLocale(s.opts.DefaultLocale)
	if locale == "" {
		return html
	}

	markup, err := s.renderLocale(module, locale)
	if err != nil {
		s.logger.Warn("Failed to prerender default locale", "locale", locale, "error", err)
		s.warn(newWarning(locale, "Failed to prerender default locale", err))
		return html
	}

	injected, err := core.InjectRoot(html, s.opts.RootID, markup)
	if err != nil {
		s.warn(newWarning(locale, "Failed to inline default render", err))
		return html
	}

	s.cache.Store(core.HashString(markup), core.ArtifactName)
	s.logger.Info("Prerendered default locale", "locale", locale)
	return injected
}

// PostEmit resolves the locale set and renders every locale into the output
// root. It never fails the host build; problems come back as warnings.
func (s *PrerenderSession) PostEmit(outputRoot string) PrerenderResult {
	result := PrerenderResult{SessionID: s.id}

	module, ok := s.ensureModule()
	if !ok {
		return s.finish(result)
	}

	locales, err := s.resolver.Resolve(s.opts.Locales)
	if err != nil {
		s.logger.Warn("Failed to resolve locales", "locales", s.opts.Locales, "error", err)
		s.warn(newWarning(prerenderSubject, "Failed to resolve locales", err))
	}
	result.Locales = locales
	if len(locales) == 0 {
		return s.finish(result)
	}

	template, err := s.baseTemplate(outputRoot)
	if err != nil {
		s.warn(newWarning(prerenderSubject, "Failed to read base template", err))
		return s.finish(result)
	}

	writer := NewArtifactWriter(s.files, s.assets, template, s.opts.RootID, s.logger)
	loop := NewRenderLoop(s.renderer, s.l10n, writer, s.cache, s.logger)
	looped := loop.RenderAll(locales, module, outputRoot)

	result.Records = looped.Records
	result.Artifacts = looped.Artifacts
	result.Descriptors = looped.Descriptors
	s.warnings = append(s.warnings, looped.Warnings...)

	s.logger.Info("Prerendered locales",
		"locales", len(locales),
		"artifacts", len(result.Artifacts),
		"descriptors", len(result.Descriptors),
	)
	return s.finish(result)
}

func (s *PrerenderSession) finish(result PrerenderResult) PrerenderResult {
	result.Disabled = s.disabled
	result.Warnings = s.Warnings()
	return result
}

func (s *PrerenderSession) ensureModule() (core.Module, bool) {
	if s.disabled {
		return nil, false
	}
	if s.module != nil {
		return s.module, true
	}

	if s.main == nil {
		s.disable(newWarning(prerenderSubject,
			fmt.Sprintf("Bundle %q was not produced by the build", s.opts.MainBundle), nil))
		return nil, false
	}

	var preload []core.Script
	if s.runtime != nil {
		patched := core.PatchRuntime(string(s.runtime), core.RuntimeRules)
		s.logger.Debug("Patched runtime bundle", "rules", patched.Applied)
		preload = append(preload, core.Script{Identity: s.opts.RuntimeBundle, Source: patched.Source})
	}

	module, err := s.loader.Load(core.Script{Identity: s.opts.MainBundle, Source: string(s.main)}, preload...)
	if err != nil {
		attrs := []any{"error", err}
		if stack := sandboxStack(err); stack != "" {
			attrs = append(attrs, "stack", stack)
		}
		s.logger.Warn("Unable to generate prerender of app state HTML", attrs...)
		s.disable(newWarning(prerenderSubject, "Unable to generate prerender of app state HTML", err))
		return nil, false
	}

	s.module = module
	return module, true
}

func (s *PrerenderSession) renderLocale(module core.Module, locale string) (string, error) {
	if err := s.l10n.SetLocale(locale); err != nil {
		return "", err
	}
	return s.renderer.Render(module, s.l10n)
}

// baseTemplate is the template seen by TemplateReady, or the emitted root
// document when the host never fired that hook.
func (s *PrerenderSession) baseTemplate(outputRoot string) (string, error) {
	if s.template != "" {
		return s.template, nil
	}

	data, err := s.files.ReadFile(filepath.Join(outputRoot, core.ArtifactName))
	if err != nil {
		return "", err
	}
	s.template = string(data)
	return s.template, nil
}

func (s *PrerenderSession) warn(w PrerenderWarning) {
	s.warnings = append(s.warnings, w)
}

func (s *PrerenderSession) disable(w PrerenderWarning) {
	s.disabled = true
	s.warn(w)
}

func sandboxStack(err error) string {
	var sandboxErr *core.SandboxError
	if errors.As(err, &sandboxErr) {
		return sandboxErr.Stack
	}
	return ""
}
