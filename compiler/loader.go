package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// ErrNotFound is returned when imported file can not be located.
var ErrNotFound = errors.New("file not found")

// Loader locates and reads stylesheets.
type Loader interface {
	// Resolve returns canonical name of file imported as name from file
	// from. The same file always resolves to the same name.
	Resolve(name, from string) (string, error)
	// Load returns content of resolved file.
	Load(name string) (string, error)
}

// withExtension adds default extension to imports without one.
func withExtension(name string) string {
	if path.Ext(name) == "" {
		return name + ".less"
	}
	return name
}

// FileLoader reads files from disk. Imports are searched relative to the
// importing file first, then in ImportPaths in order.
type FileLoader struct {
	ImportPaths []string
}

// Resolve implements Loader, names are absolute cleaned paths.
func (l *FileLoader) Resolve(name, from string) (string, error) {
	name = withExtension(name)
	var candidates []string
	if filepath.IsAbs(name) {
		candidates = append(candidates, name)
	} else {
		candidates = append(candidates, filepath.Join(filepath.Dir(from), name))
		for _, dir := range l.ImportPaths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("unable to stat %q: %w", c, err)
		}
		if info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			return "", fmt.Errorf("unable to resolve %q: %w", c, err)
		}
		return abs, nil
	}
	return "", fmt.Errorf("%q: %w", name, ErrNotFound)
}

// Load implements Loader.
func (l *FileLoader) Load(name string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("unable to read %q: %w", name, err)
	}
	return string(data), nil
}

// MapLoader serves sources from memory, keys are slash separated paths.
type MapLoader map[string]string

// Resolve implements Loader. Names are resolved relative to the importing
// file, then relative to the root.
func (l MapLoader) Resolve(name, from string) (string, error) {
	name = withExtension(name)
	for _, c := range []string{path.Join(path.Dir(from), name), path.Clean(name)} {
		if _, ok := l[c]; ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrNotFound)
}

// Load implements Loader.
func (l MapLoader) Load(name string) (string, error) {
	src, ok := l[name]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return src, nil
}
