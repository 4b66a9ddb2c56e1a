package keymap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for key map files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported key map format")

// Format identifies a key map file encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Loader loads key maps from files.
type Loader struct {
	// searchPaths are directories to search for key map files.
	searchPaths []string
}

// NewLoader creates a new key map loader.
func NewLoader(searchPaths ...string) *Loader {
	return &Loader{searchPaths: searchPaths}
}

// AddSearchPath adds a directory to search for key map files.
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Resolve returns the path of name. Absolute paths are returned unchanged;
// relative ones are looked up in the search paths in order.
func (l *Loader) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	for _, dir := range l.searchPaths {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	return "", fmt.Errorf("key map file %q: %w", name, os.ErrNotExist)
}

// LoadFile loads a key map from a file, choosing the decoder by extension.
func (l *Loader) LoadFile(name string) (Map, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening key map file: %w", err)
	}
	defer f.Close()

	m, err := l.LoadReader(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadReader loads a key map from a reader in the given format.
func (l *Loader) LoadReader(r io.Reader, format Format) (Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading key map: %w", err)
	}

	raw := make(map[string]any)
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatJSON:
		err = json.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding key map: %w", err)
	}

	return Decode(raw)
}

// LoadAll loads every key map file found in the search paths, keyed by file
// name without extension. Files that fail to load are returned as errors
// joined together; the successfully loaded maps are still returned.
func (l *Loader) LoadAll() (map[string]Map, error) {
	out := make(map[string]Map)
	var errs []error

	for _, dir := range l.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := FormatFromPath(e.Name()); err != nil {
				continue
			}
			path := filepath.Join(dir, e.Name())
			m, err := l.LoadFile(path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = m
		}
	}

	return out, errors.Join(errs...)
}
