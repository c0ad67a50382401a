// Package storage abstracts where sofreh's local documents live.
//
// Two drivers are available out of the box:
//   - "local"  — the data directory on disk (default; holds the guest cart
//     document and the encrypted credential file)
//   - "s3"     — S3-compatible object storage (AWS S3, MinIO, R2, Spaces),
//     used for off-device exports when configured
//
// Quick start:
//
//	// boot once (the CLI does this before every command):
//	storage.Connect()
//
//	// default disk
//	storage.Put("cart.json", data)
//	data, _ := storage.Get("cart.json")
//
//	// named disk
//	storage.Disk("s3").Put("exports/orders.json", data)
package storage

import (
	"io"
	"time"
)

// Driver is the filesystem driver interface.
type Driver interface {
	// Put writes content to path, creating parent directories as needed.
	Put(path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// GetStream returns a ReadCloser for the file. Caller must close it.
	GetStream(path string) (io.ReadCloser, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Size returns the byte size of the file.
	Size(path string) (int64, error)

	// LastModified returns the file's last-modified time.
	LastModified(path string) (time.Time, error)

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error

	// Files lists non-recursive filenames directly inside directory.
	Files(directory string) ([]string, error)
}
