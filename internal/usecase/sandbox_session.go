package usecase

import (
	"log/slog"
	"path/filepath"

	"github.com/3-lines-studio/prerender/internal/adapters/catalog"
	"github.com/3-lines-studio/prerender/internal/adapters/sandbox"
	"github.com/3-lines-studio/prerender/internal/config"
	"github.com/3-lines-studio/prerender/internal/core"
)

// NewSandboxSession wires a session to the goja sandbox and the project's
// string catalog under resources/.
func NewSandboxSession(cfg config.Config, files FileSystem, assets *core.AssetTable, logger *slog.Logger) *PrerenderSession {
	if logger == nil {
		logger = slog.Default()
	}
	if assets == nil {
		assets = core.NewAssetTable()
	}

	nodeEnv := "development"
	if cfg.Production {
		nodeEnv = "production"
	}

	box := sandbox.New(sandbox.Config{
		Assets:        assets,
		ReadFile:      files.ReadFile,
		FrameworkName: cfg.FrameworkName,
		FrameworkPath: projectPath(cfg.ProjectDir, cfg.ExternalFramework),
		NodeEnv:       nodeEnv,
		Timeout:       cfg.RenderTimeout.Duration,
		Logger:        logger,
	})
	stringTables := catalog.New(files, filepath.Join(cfg.ProjectDir, core.ResourcesDir), logger)

	return NewPrerenderSession(PrerenderOptions{
		ProjectDir:      cfg.ProjectDir,
		Locales:         cfg.Locales,
		DefaultLocale:   cfg.DefaultLocale,
		CatalogManifest: cfg.CatalogManifest,
		MainBundle:      cfg.MainBundle,
		RuntimeBundle:   cfg.RuntimeBundle,
		RootID:          cfg.RootID,
		Logger:          logger,
	}, box, box, stringTables, files, assets)
}

func projectPath(projectDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectDir, p)
}
