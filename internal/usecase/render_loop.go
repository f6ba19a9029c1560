package usecase

import (
	"errors"
	"log/slog"

	"github.com/3-lines-studio/prerender/internal/core"
)

// PrerenderWarning is a degraded-but-continued prerender step, surfaced in the
// build report.
type PrerenderWarning struct {
	Subject string
	Message string
	Details []string
	Err     error
}

func newWarning(subject, message string, err error) PrerenderWarning {
	w := PrerenderWarning{Subject: subject, Message: message, Err: err}
	var sandboxErr *core.SandboxError
	if errors.As(err, &sandboxErr) {
		w.Details = sandboxErr.Details()
	} else if err != nil {
		w.Details = []string{err.Error()}
	}
	return w
}

// RenderLoop renders locales one at a time against a shared localization
// context. It is the only writer of that context while it runs.
type RenderLoop struct {
	renderer core.ServerRenderer
	l10n     core.LocalizationContext
	writer   *ArtifactWriter
	cache    *core.DedupCache
	logger   *slog.Logger
}

type LoopResult struct {
	Records     []core.RenderRecord
	Artifacts   []string
	Descriptors []string
	Warnings    []PrerenderWarning
}

func NewRenderLoop(renderer core.ServerRenderer, l10n core.LocalizationContext, writer *ArtifactWriter, cache *core.DedupCache, logger *slog.Logger) *RenderLoop {
	if cache == nil {
		cache = core.NewDedupCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderLoop{
		renderer: renderer,
		l10n:     l10n,
		writer:   writer,
		cache:    cache,
		logger:   logger,
	}
}

// RenderAll renders every locale in order. Markup already produced by an
// earlier render reuses that render's artifact. A failing locale is logged
// and skipped.
func (l *RenderLoop) RenderAll(locales []string, module core.Module, outputRoot string) LoopResult {
	var result LoopResult

	for _, locale := range locales {
		record, err := l.render(locale, module)
		if err != nil {
			l.logger.Warn("Skipping locale", "locale", locale, "error", err)
			result.Warnings = append(result.Warnings, newWarning(locale, "Failed to prerender locale", err))
			continue
		}

		written, err := l.writer.Write(record, outputRoot)
		if err != nil {
			l.logger.Warn("Failed to write locale output", "locale", locale, "error", err)
			result.Warnings = append(result.Warnings, newWarning(locale, "Failed to write prerendered output", err))
			continue
		}

		if written.NewArtifact {
			l.cache.Store(record.Hash, record.Artifact)
			result.Artifacts = append(result.Artifacts, written.Artifact)
		}
		if written.MergeErr != nil {
			result.Warnings = append(result.Warnings, newWarning(locale, "Replaced malformed descriptor", written.MergeErr))
		}
		result.Descriptors = append(result.Descriptors, written.Descriptor)
		result.Records = append(result.Records, record)
	}

	return result
}

func (l *RenderLoop) render(locale string, module core.Module) (core.RenderRecord, error) {
	record := core.RenderRecord{Locale: locale}

	if err := l.l10n.SetLocale(locale); err != nil {
		return record, err
	}

	markup, err := l.renderer.Render(module, l.l10n)
	if err != nil {
		return record, err
	}

	record.Markup = markup
	record.Hash = core.HashString(markup)
	if artifact, ok := l.cache.Lookup(record.Hash); ok {
		record.Artifact = artifact
		record.Reused = true
	} else {
		record.Artifact = core.ArtifactPath(locale)
	}

	l.logger.Debug("Rendered locale", "locale", locale, "hash", record.Hash[:12], "reused", record.Reused)
	return record, nil
}
