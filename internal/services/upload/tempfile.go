// Package upload stores an uploaded document in a temporary file for the
// duration of one request.
//
// The PDF library needs a seekable file, so the upload is spooled to disk
// first. The caller owns the returned TempFile and must call Remove when
// processing finishes, on every path.
package upload

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// TempFile is an uploaded document spooled to disk.
type TempFile struct {
	Path string
	Size int64

	once sync.Once
	err  error
}

// SaveTemp copies r into a new file in dir (the OS temp dir when empty).
// If the copy fails the partial file is deleted before returning.
func SaveTemp(dir string, r io.Reader) (*TempFile, error) {
	f, err := os.CreateTemp(dir, "pdfsum-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	return &TempFile{Path: f.Name(), Size: size}, nil
}

// Remove deletes the file. It is safe to call more than once; only the
// first call touches the filesystem.
func (t *TempFile) Remove() error {
	t.once.Do(func() {
		if err := os.Remove(t.Path); err != nil && !os.IsNotExist(err) {
			t.err = fmt.Errorf("failed to remove temp file: %w", err)
		}
	})
	return t.err
}
