// Package clipboard publishes an encoded payload under a pasteboard type.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// ErrEmptyMimeType is returned when a payload is published without a type.
var ErrEmptyMimeType = errors.New("clipboard: empty mime type")

// Clipboard receives the encoded payload. Implementations replace any previous
// content for the same type.
type Clipboard interface {
	SetPayload(data []byte, mimeType string) error
}

// File writes each payload to a file. The file is written to a temporary
// sibling first and renamed into place, so readers never see partial content.
type File struct {
	Path string
}

// SetPayload implements Clipboard.
func (f *File) SetPayload(data []byte, mimeType string) error {
	if mimeType == "" {
		return ErrEmptyMimeType
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("clipboard: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("clipboard: write %s: %w", f.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("clipboard: write %s: %w", f.Path, err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("clipboard: replace %s: %w", f.Path, err)
	}
	return nil
}

// Writer streams each payload to an io.Writer, followed by a newline.
type Writer struct {
	W io.Writer
}

// SetPayload implements Clipboard.
func (w *Writer) SetPayload(data []byte, mimeType string) error {
	if mimeType == "" {
		return ErrEmptyMimeType
	}
	if _, err := w.W.Write(data); err != nil {
		return fmt.Errorf("clipboard: write payload: %w", err)
	}
	if _, err := io.WriteString(w.W, "\n"); err != nil {
		return fmt.Errorf("clipboard: write payload: %w", err)
	}
	return nil
}

// Memory keeps the latest payload of every type. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	items  map[string][]byte
	writes int
}

// SetPayload implements Clipboard.
func (m *Memory) SetPayload(data []byte, mimeType string) error {
	if mimeType == "" {
		return ErrEmptyMimeType
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string][]byte)
	}
	m.items[mimeType] = append([]byte(nil), data...)
	m.writes++
	return nil
}

// Get returns the payload stored under mimeType.
func (m *Memory) Get(mimeType string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.items[mimeType]
	return data, ok
}

// Writes returns how many payloads were published.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
