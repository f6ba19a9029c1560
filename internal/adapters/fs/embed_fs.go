package fs

import (
	"errors"
	iofs "io/fs"
	"path"
	"strings"
)

var ErrReadOnly = errors.New("embedded filesystem is read-only")

// EmbedFileSystem serves read-only data compiled into the binary, such as
// the curated locale lists.
type EmbedFileSystem struct {
	fs iofs.FS
}

func NewEmbedFileSystem(fsys iofs.FS) *EmbedFileSystem {
	return &EmbedFileSystem{fs: fsys}
}

func (fs *EmbedFileSystem) ReadFile(name string) ([]byte, error) {
	return iofs.ReadFile(fs.fs, embedPath(name))
}

func (fs *EmbedFileSystem) ReadDir(name string) ([]iofs.DirEntry, error) {
	return iofs.ReadDir(fs.fs, embedPath(name))
}

func (fs *EmbedFileSystem) FileExists(name string) bool {
	_, err := iofs.Stat(fs.fs, embedPath(name))
	return err == nil
}

func (fs *EmbedFileSystem) WriteFile(name string, data []byte, perm iofs.FileMode) error {
	return ErrReadOnly
}

func (fs *EmbedFileSystem) MkdirAll(name string, perm iofs.FileMode) error {
	return ErrReadOnly
}

// embed.FS only accepts unrooted slash paths.
func embedPath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return "."
	}
	return name
}
