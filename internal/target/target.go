// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package target

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Writer emits markup to an io.Writer, one icon per line.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer target. A nil w writes to stdout.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		w = os.Stdout
	}
	return &Writer{w: w}
}

// SetContent implements icon.Target.
func (t *Writer) SetContent(markup string) error {
	if !strings.HasSuffix(markup, "\n") {
		markup += "\n"
	}
	_, err := io.WriteString(t.w, markup)
	return err
}

// File replaces the content of a single file.
type File struct {
	Path string
	Mode os.FileMode
}

// NewFile returns a File target with mode 0644.
func NewFile(path string) *File {
	return &File{Path: path, Mode: 0o644}
}

// SetContent writes markup to a temp file in the same directory and renames
// it over Path, so readers never observe a partial icon.
func (t *File) SetContent(markup string) error {
	dir := filepath.Dir(t.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".icon-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(markup); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	mode := t.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, t.Path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Content reads the current file content. A missing file reads as "".
func (t *File) Content() (string, error) {
	b, err := os.ReadFile(t.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	return string(b), err
}

// Dir hands out one File per icon name beneath Root.
type Dir struct {
	Root string
}

// NewDir returns a Dir target rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// For returns the File target for name, <root>/<name>.svg. Names containing
// path separators keep their subdirectories.
func (d *Dir) For(name string) *File {
	return NewFile(filepath.Join(d.Root, filepath.FromSlash(name)+".svg"))
}

// Buffer holds markup in memory.
type Buffer struct {
	mu      sync.Mutex
	content string
	writes  int
}

// NewBuffer returns a Buffer pre-filled with content.
func NewBuffer(content string) *Buffer {
	return &Buffer{content: content}
}

// SetContent implements icon.Target.
func (b *Buffer) SetContent(markup string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = markup
	b.writes++
	return nil
}

// Content returns the current markup.
func (b *Buffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

// Written reports whether SetContent has been called.
func (b *Buffer) Written() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes > 0
}
