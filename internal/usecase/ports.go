package usecase

import (
	"io"

	"github.com/3-lines-studio/prerender/internal/adapters/bundler"
	"github.com/3-lines-studio/prerender/internal/adapters/fs"
	"github.com/3-lines-studio/prerender/internal/core"
)

type ModuleLoader = core.ModuleLoader

type ServerRenderer = core.ServerRenderer

type LocalizationContext = core.LocalizationContext

// Bundler produces the application bundles, reporting each output as the
// build finalizes it.
type Bundler interface {
	Build(opts bundler.Options, onAsset bundler.AssetFunc) ([]bundler.Output, error)
}

type CLIOutput interface {
	PrintHeader(msg string)
	PrintStep(emoji, msg string, args ...any)
	PrintSuccess(msg string, args ...any)
	PrintWarning(msg string, args ...any)
	PrintError(msg string, args ...any)
	PrintFile(path string)
	PrintDone(msg string)

	Green(text string) string
	Yellow(text string) string
	Red(text string) string
	Gray(text string) string
	Writer() io.Writer
	ErrWriter() io.Writer
}

type FileSystem = fs.FileSystem

// DirCopier copies a directory tree; a missing source is not an error.
type DirCopier interface {
	CopyDir(src, dst string, copied fs.CopyFunc) error
}
