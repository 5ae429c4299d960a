// Package modelfile provides read-only memory-mapped access to model
// files. Mapping avoids copying multi-gigabyte models through the Go heap
// when a session is committed from bytes: the engine parses straight out
// of the OS page cache.
package modelfile

import (
	"fmt"
	"os"
)

// File is a read-only memory mapping of a model file.
// Always Close it when the consumer of Bytes is done (use defer).
type File struct {
	f      *os.File
	data   []byte
	size   int64
	closed bool
}

// Open maps the file at path read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("modelfile: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("modelfile: stat %s: %w", path, err)
	}
	if stat.Size() == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("modelfile: %s is empty", path)
	}
	data, err := mmapFile(f, stat.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("modelfile: mmap %s: %w", path, err)
	}
	return &File{f: f, data: data, size: stat.Size()}, nil
}

// Bytes returns the mapped contents. The slice is read-only and valid
// only until Close.
func (m *File) Bytes() []byte {
	if m.closed {
		return nil
	}
	return m.data
}

// Size returns the file size in bytes.
func (m *File) Size() int64 { return m.size }

// Close unmaps and closes the file. Idempotent.
func (m *File) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var err error
	if m.data != nil {
		err = munmapFile(m.data)
		m.data = nil
	}
	if closeErr := m.f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
