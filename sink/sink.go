// Package sink holds the destinations generated files are written to.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Sink receives generated files. Implementations must be safe for
// concurrent use.
type Sink interface {
	// WriteFile stores content under name, a clean slash-separated
	// relative path.
	WriteFile(ctx context.Context, name string, content []byte) error
}

// ErrExists is returned by a Dir sink that may not overwrite a file.
var ErrExists = errors.New("file already exists")

// Dir writes files below a directory on disk. Writes go through a temp
// file in the target directory and are renamed into place.
type Dir struct {
	// Root is the directory all names are relative to.
	Root string

	// Mode is the permission of created files (0644 if zero).
	Mode os.FileMode

	// NoClobber makes WriteFile fail with ErrExists instead of replacing
	// an existing file.
	NoClobber bool
}

// NewDir returns a sink writing below root, replacing existing files.
func NewDir(root string) *Dir {
	return &Dir{Root: root, Mode: 0o644}
}

func (d *Dir) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("invalid name %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := d.resolve(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".routegen-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	// Leftovers keep the .routegen- prefix; removal is best effort.
	defer os.Remove(tmpName)

	_, werr := tmp.Write(content)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("write %s: %w", name, werr)
	}
	if err := os.Chmod(tmpName, lo.Ternary(d.Mode == 0, os.FileMode(0o644), d.Mode)); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !d.NoClobber {
		if err := os.Rename(tmpName, target); err != nil {
			return fmt.Errorf("rename %s: %w", name, err)
		}
		return nil
	}
	// Link fails if target exists, without a stat/rename race.
	if err := os.Link(tmpName, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, name)
		}
		return fmt.Errorf("link %s: %w", name, err)
	}
	return nil
}

// resolve maps name below Root and rejects anything escaping it.
func (d *Dir) resolve(name string) (string, error) {
	root, err := filepath.Abs(d.Root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("name escapes root: %q", name)
	}
	return target, nil
}

// Memory keeps written files in memory. The zero value is ready to use.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory returns an empty memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("invalid name %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[name] = clone(content)
	return nil
}

// Get returns a copy of a written file, or nil.
func (m *Memory) Get(name string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[name]
	if !ok {
		return nil
	}
	return clone(content)
}

// Names returns the written names in sorted order.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := lo.Keys(m.files)
	slices.Sort(names)
	return names
}

// Files returns a copy of every written file.
func (m *Memory) Files() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.MapValues(m.files, func(content []byte, _ string) []byte {
		return clone(content)
	})
}

// Reset forgets all files.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = nil
}

func clone(b []byte) []byte {
	return append([]byte{}, b...)
}

// ValidateName reports whether name is a clean, relative, slash-separated
// path that stays inside its root.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("empty name")
	case strings.HasPrefix(name, "/") || filepath.IsAbs(name) || hasDrive(name):
		return errors.New("absolute paths not allowed")
	case strings.Contains(name, `\`):
		return errors.New("backslash not allowed")
	}
	for _, elem := range strings.Split(name, "/") {
		if elem == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if clean := path.Clean(name); clean != name {
		return fmt.Errorf("not clean (want %q)", clean)
	}
	return nil
}

func hasDrive(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0] | 0x20
	return c >= 'a' && c <= 'z'
}
