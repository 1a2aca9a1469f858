// SPDX-License-Identifier: MIT
package opus

import (
	"fmt"
	"io"
	"os"
)

// Source is a random-access byte stream holding one FTS container.
// A Source is scoped to a single logical read operation (a scan, a header
// read, a block extraction) and is not safe for concurrent use of a shared
// disk handle. A MemSource is read-only and may be shared freely.
type Source interface {
	// ReadExact returns exactly n bytes starting at offset. A request that
	// extends past the end of the source fails; it never returns a short
	// slice.
	ReadExact(offset int64, n int) ([]byte, error)

	// Size returns the total length of the source in bytes.
	Size() (int64, error)
}

// FileSource reads directly from a file on disk. Every call opens the file,
// reads the requested range and closes it again, so instances are cheap to
// create and hold no descriptor between calls.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) ReadExact(offset int64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("opus: invalid read length %d", n)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("opus: read %d bytes at offset %d: %w", n, offset, err)
	}
	return buf, nil
}

func (s *FileSource) Size() (int64, error) {
	st, err := os.Stat(s.Path)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

// MemSource wraps a caller-supplied buffer, typically a measurement
// downloaded from the instrument's web panel.
type MemSource struct {
	data []byte
}

func NewMemSource(data []byte) *MemSource {
	return &MemSource{data: data}
}

func (s *MemSource) ReadExact(offset int64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("opus: invalid read length %d", n)
	}
	if offset < 0 || offset+int64(n) > int64(len(s.data)) {
		return nil, fmt.Errorf("opus: read %d bytes at offset %d beyond source of %d bytes: %w",
			n, offset, len(s.data), io.ErrUnexpectedEOF)
	}
	return s.data[offset : offset+int64(n)], nil
}

func (s *MemSource) Size() (int64, error) {
	return int64(len(s.data)), nil
}

// NewPrefixSource reads at most n bytes from the start of the file at path
// into memory. The container header and directory sit at the front of the
// file, so a bounded prefix is enough for structural probing without
// pulling a full measurement off disk.
func NewPrefixSource(path string, n int64) (*MemSource, error) {
	if n < 0 {
		return nil, fmt.Errorf("opus: invalid prefix length %d", n)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, n))
	if err != nil {
		return nil, fmt.Errorf("opus: read %d byte prefix of %s: %w", n, path, err)
	}
	return NewMemSource(data), nil
}

// Compile-time checks.
var _ Source = (*FileSource)(nil)
var _ Source = (*MemSource)(nil)
