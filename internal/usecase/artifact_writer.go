package usecase

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/3-lines-studio/prerender/internal/core"
)

// ArtifactWriter places locale renders and their descriptors under the
// output root and registers every file it writes in the asset table.
type ArtifactWriter struct {
	files    FileSystem
	assets   *core.AssetTable
	template string
	rootID   string
	logger   *slog.Logger
}

// Written describes the files produced for one record.
type Written struct {
	Artifact    string
	Descriptor  string
	NewArtifact bool
	// MergeErr is set when an existing descriptor could not be merged and
	// was replaced.
	MergeErr error
}

func NewArtifactWriter(files FileSystem, assets *core.AssetTable, template, rootID string, logger *slog.Logger) *ArtifactWriter {
	if assets == nil {
		assets = core.NewAssetTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactWriter{
		files:    files,
		assets:   assets,
		template: template,
		rootID:   rootID,
		logger:   logger,
	}
}

// Write emits the artifact for a record unless it reuses an earlier one, then
// points the locale's descriptor at the serving artifact.
func (w *ArtifactWriter) Write(record core.RenderRecord, outputRoot string) (Written, error) {
	written := Written{Artifact: record.Artifact}

	if !record.Reused {
		if err := w.writeArtifact(record, outputRoot); err != nil {
			return written, err
		}
		written.NewArtifact = true
	}

	descriptor, mergeErr, err := w.writeDescriptor(record.Locale, record.Artifact, outputRoot)
	if err != nil {
		return written, err
	}
	written.Descriptor = descriptor
	written.MergeErr = mergeErr
	return written, nil
}

// Document builds the HTML document for a locale's markup.
func (w *ArtifactWriter) Document(locale, markup string) (string, error) {
	doc, err := core.InjectRoot(w.template, w.rootID, markup)
	if err != nil {
		return "", err
	}
	doc = core.SetDocumentLang(doc, core.LocaleTag(locale))
	return core.RewriteAssetPaths(doc, core.LocaleDir(locale)), nil
}

func (w *ArtifactWriter) writeArtifact(record core.RenderRecord, outputRoot string) error {
	doc, err := w.Document(record.Locale, record.Markup)
	if err != nil {
		return fmt.Errorf("failed to assemble %s: %w", record.Artifact, err)
	}

	if err := w.put(outputRoot, record.Artifact, []byte(doc)); err != nil {
		return err
	}
	w.logger.Debug("Wrote artifact", "locale", record.Locale, "path", record.Artifact)
	return nil
}

func (w *ArtifactWriter) writeDescriptor(locale, artifact, outputRoot string) (name string, mergeErr error, err error) {
	name = core.DescriptorPath(locale)
	full := outputPath(outputRoot, name)

	var existing []byte
	if w.files.FileExists(full) {
		data, err := w.files.ReadFile(full)
		if err != nil {
			w.logger.Warn("Failed to read existing descriptor", "path", name, "error", err)
		}
		existing = data
	}

	pointer := core.RelativePath(core.LocaleDir(locale), artifact)
	merged, mergeErr := core.MergeDescriptor(existing, pointer)
	if merged == nil {
		return "", nil, fmt.Errorf("failed to merge %s: %w", name, mergeErr)
	}
	if mergeErr != nil {
		w.logger.Warn("Replacing malformed descriptor", "path", name, "error", mergeErr)
	}

	if err := w.put(outputRoot, name, merged); err != nil {
		return "", nil, err
	}
	return name, mergeErr, nil
}

func (w *ArtifactWriter) put(outputRoot, name string, content []byte) error {
	full := outputPath(outputRoot, name)
	if err := w.files.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := w.files.WriteFile(full, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	w.assets.Put(name, content)
	return nil
}

func outputPath(outputRoot, name string) string {
	return filepath.Join(outputRoot, filepath.FromSlash(name))
}
