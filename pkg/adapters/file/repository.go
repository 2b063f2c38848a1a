// Package file stores graph documents as JSON or YAML files in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/pixelpilot/pkg/ports"
	"github.com/aretw0/pixelpilot/pkg/schema"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Repository implements ports.GraphRepository on the local filesystem.
type Repository struct {
	BasePath string
	Format   schema.Format
}

// Option configures a Repository.
type Option func(*Repository)

// WithFormat selects the encoding used by Save (default JSON).
func WithFormat(f schema.Format) Option {
	return func(r *Repository) {
		r.Format = f
	}
}

// New creates a Repository rooted at basePath.
// If basePath is empty, it defaults to ".pixelpilot/graphs".
func New(basePath string, opts ...Option) *Repository {
	if basePath == "" {
		basePath = filepath.Join(".pixelpilot", "graphs")
	}
	r := &Repository{BasePath: basePath, Format: schema.FormatJSON}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("graph name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid graph name %q", name)
	}
	return nil
}

func (r *Repository) ext() string {
	if r.Format == schema.FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Save writes the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (r *Repository) Save(ctx context.Context, name string, doc *schema.Document) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(r.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure graph directory: %w", err)
	}

	data, err := schema.Encode(doc, r.Format)
	if err != nil {
		return fmt.Errorf("failed to encode graph %s: %w", name, err)
	}

	destPath := filepath.Join(r.BasePath, name+r.ext())

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(r.BasePath, "tmp-"+name+"-*"+r.ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing graph file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	// Drop copies of the same graph in other formats.
	for _, ext := range extensions {
		if ext != r.ext() {
			_ = os.Remove(filepath.Join(r.BasePath, name+ext))
		}
	}
	return nil
}

// Load reads a document by name in any supported format.
func (r *Repository) Load(ctx context.Context, name string) (*schema.Document, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	for _, ext := range extensions {
		doc, err := schema.ReadFile(filepath.Join(r.BasePath, name+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read graph %s: %w", name, err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %s", ports.ErrGraphNotFound, name)
}

// List returns the stored graph names in sorted order.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read graph directory: %w", err)
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "tmp-") {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !isGraphExt(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the graph in every format. Missing graphs are not an error.
func (r *Repository) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	for _, ext := range extensions {
		err := os.Remove(filepath.Join(r.BasePath, name+ext))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete graph %s: %w", name, err)
		}
	}
	return nil
}

func isGraphExt(ext string) bool {
	for _, e := range extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
