package usecase

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/3-lines-studio/prerender/internal/adapters/fs"
	"github.com/3-lines-studio/prerender/internal/core"
	"github.com/3-lines-studio/prerender/internal/locales"
)

// UsedManifest is the project's own resource manifest, relative to the
// project directory.
var UsedManifest = filepath.Join(core.ResourcesDir, "ilibmanifest.json")

type LocaleResolver struct {
	files           FileSystem
	curated         FileSystem
	projectDir      string
	catalogManifest string
	logger          *slog.Logger
}

func NewLocaleResolver(files FileSystem, projectDir, catalogManifest string, logger *slog.Logger) *LocaleResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocaleResolver{
		files:           files,
		curated:         fs.NewEmbedFileSystem(locales.FS()),
		projectDir:      projectDir,
		catalogManifest: catalogManifest,
		logger:          logger,
	}
}

// Resolve turns a configured locale target into an ordered, duplicate free
// set of locale tokens. On failure the set is empty and the error wraps
// core.ErrManifestRead.
func (r *LocaleResolver) Resolve(raw string) ([]string, error) {
	spec := core.ParseLocaleSpec(raw, func(value string) bool {
		return r.files.FileExists(r.path(value))
	})

	var (
		tokens []string
		err    error
	)
	switch spec.Kind {
	case core.LocaleSpecNone:
		return []string{}, nil
	case core.LocaleSpecUsed:
		tokens, err = ScanManifestFile(r.files, r.path(UsedManifest), true)
	case core.LocaleSpecAll:
		tokens, err = ScanManifestFile(r.files, r.path(r.catalogManifest), false)
	case core.LocaleSpecCurated:
		tokens, err = r.curatedList(spec.Raw)
	case core.LocaleSpecFile:
		tokens, err = readLocaleList(r.files, r.path(spec.Raw))
	default:
		tokens = core.ParseLocaleList(spec.Raw)
	}
	if err != nil {
		return []string{}, err
	}

	return r.validTokens(tokens), nil
}

func (r *LocaleResolver) curatedList(name string) ([]string, error) {
	file, err := locales.ListFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrManifestRead, name, err)
	}
	return readLocaleList(r.curated, file)
}

func (r *LocaleResolver) validTokens(tokens []string) []string {
	valid := make([]string, 0, len(tokens))
	for _, token := range tokens {
		locale := core.NormalizeLocale(token)
		if err := core.ValidateLocale(locale); err != nil {
			r.logger.Warn("Skipping invalid locale", "locale", token, "error", err)
			continue
		}
		valid = append(valid, locale)
	}
	return core.OrderLocales(valid)
}

func (r *LocaleResolver) path(p string) string {
	if filepath.IsAbs(p) || r.projectDir == "" {
		return p
	}
	return filepath.Join(r.projectDir, p)
}

// ScanManifestFile reads a resource manifest and returns its locales.
func ScanManifestFile(files FileSystem, path string, includeParents bool) ([]string, error) {
	data, err := files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrManifestRead, path, err)
	}

	tokens, err := core.ScanManifest(data, includeParents)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tokens, nil
}

func readLocaleList(files FileSystem, path string) ([]string, error) {
	data, err := files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrManifestRead, path, err)
	}

	tokens, err := core.ParseLocaleListJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tokens, nil
}
