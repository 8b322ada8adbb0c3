// Package storage defines the library file-system abstraction.
package storage

import "io/fs"

// Provider is the interface for library file operations. All paths are
// relative to the library root; implementations must reject paths that
// resolve outside it.
type Provider interface {
	// Root returns the absolute path of the library root.
	Root() string
	// Stat returns file info for the entry at path.
	Stat(path string) (fs.FileInfo, error)
	// ReadDir returns the entries of the directory at path.
	ReadDir(path string) ([]fs.DirEntry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Remove deletes the file or empty directory at path.
	Remove(path string) error
	// RemoveAll deletes path and anything below it.
	RemoveAll(path string) error
	// Rename moves oldPath to newPath, replacing any existing file.
	Rename(oldPath, newPath string) error
	// MkdirAll creates the directory at path along with any parents.
	MkdirAll(path string) error
	// Folders returns the root-relative path of every directory that
	// contains a header shard (0.json), in lexical order.
	Folders() ([]string, error)
}
