package locales

import (
	"embed"
	"errors"
	"io/fs"
)

//go:embed *.json
var curatedFS embed.FS

var validLists = []string{"tv", "signage"}

var ErrUnknownList = errors.New("unknown curated locale list")

// FS exposes the curated lists as "<name>.json".
func FS() fs.FS {
	return curatedFS
}

func ListNames() []string {
	return append([]string(nil), validLists...)
}

// ListFile maps a curated list keyword to its file inside FS.
func ListFile(name string) (string, error) {
	for _, valid := range validLists {
		if name == valid {
			return name + ".json", nil
		}
	}
	return "", ErrUnknownList
}
