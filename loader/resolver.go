package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
)

// FileResolver defines the interface for resolving import paths and reading file content.
type FileResolver interface {
	// Resolve takes the path of the importing file and the path string from the import statement.
	// It should return:
	// 1. An io.ReadCloser for the content of the resolved file.
	// 2. The canonical path (e.g., absolute path) of the resolved file, used for caching and cycle detection.
	// 3. An error if resolution or reading fails.
	Resolve(importerPath, importPath string) (content io.ReadCloser, canonicalPath string, err error)
}

// DefaultFileResolver implements FileResolver for the local filesystem.
type DefaultFileResolver struct{}

// NewDefaultFileResolver creates a standard filesystem resolver.
func NewDefaultFileResolver() *DefaultFileResolver {
	return &DefaultFileResolver{}
}

// Resolve handles filesystem paths.
func (r *DefaultFileResolver) Resolve(importerPath, importPath string) (io.ReadCloser, string, error) {
	var resolvedPath string

	if filepath.IsAbs(importPath) || importerPath == "" || importerPath == importPath {
		resolvedPath = importPath
	} else {
		// Assume importerPath is the canonical path of the importing file
		resolvedPath = filepath.Join(filepath.Dir(importerPath), importPath)
	}

	// Get the absolute path to use as the canonical path
	canonicalPath, err := filepath.Abs(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("could not get absolute path for '%s': %w", resolvedPath, err)
	}

	file, err := os.Open(canonicalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("file not found: %s (resolved from '%s')", canonicalPath, importPath)
		}
		return nil, "", fmt.Errorf("could not open file '%s': %w", canonicalPath, err)
	}
	return file, canonicalPath, nil
}

// MemoryResolver serves files from memory, keyed by slash separated paths.
// Imports resolve relative to the importing file's directory.
type MemoryResolver struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryResolver(files map[string]string) *MemoryResolver {
	m := &MemoryResolver{files: make(map[string][]byte)}
	for p, content := range files {
		m.WriteFile(p, []byte(content))
	}
	return m
}

func (m *MemoryResolver) WriteFile(p string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(p)] = append([]byte(nil), data...) // Store a copy
}

// Files lists the stored paths in sorted order.
func (m *MemoryResolver) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m *MemoryResolver) Resolve(importerPath, importPath string) (io.ReadCloser, string, error) {
	resolved := importPath
	if !path.IsAbs(importPath) && importerPath != "" && importerPath != importPath {
		resolved = path.Join(path.Dir(importerPath), importPath)
	}
	resolved = path.Clean(resolved)

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[resolved]
	if !ok {
		return nil, "", fmt.Errorf("file not found: %s (resolved from '%s')", resolved, importPath)
	}
	return io.NopCloser(bytes.NewReader(data)), resolved, nil
}
