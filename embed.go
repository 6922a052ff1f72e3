// Package contactbook provides embedded runtime resources and an overlay
// filesystem that checks local disk first, falling back to embedded.
package contactbook

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

// HelpFile is the name of the help text, both embedded and as a local override.
const HelpFile = "help.txt"

//go:embed help.txt
var Resources embed.FS

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.Open(filepath.Join(o.localDir, filepath.FromSlash(name)))
	if err == nil {
		return f, nil
	}
	return o.embedded.Open(name)
}

// Help returns the command help text. A help.txt in localDir replaces the
// embedded one.
func Help(localDir string) (string, error) {
	data, err := fs.ReadFile(OverlayFS(localDir, Resources), HelpFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
