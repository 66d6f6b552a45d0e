package vision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTemplateSize is the edge length templates are normalized to
const DefaultTemplateSize = 42

// ErrEmptyTemplateStore means no reference images could be loaded.
// Recognition cannot run without templates, so this aborts the whole run.
var ErrEmptyTemplateStore = errors.New("template store is empty")

// imageExts are the file extensions treated as images
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".webp": true,
}

// IsImageFile reports whether the path has a supported image extension
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Template is a labeled reference icon for one hero
type Template struct {
	Label  string
	Pixels *Gray
}

// TemplateStore holds the reference icons in a fixed iteration order
type TemplateStore struct {
	templates []Template
}

// NewTemplateStore builds a store from templates already in memory
func NewTemplateStore(templates ...Template) *TemplateStore {
	out := make([]Template, len(templates))
	copy(out, templates)
	return &TemplateStore{templates: out}
}

// LoadTemplates reads every image in dir, labels it with the file's base name and
// normalizes it to size x size grayscale. Files are read in name order.
func LoadTemplates(dir string, size int) (*TemplateStore, error) {
	if size <= 0 {
		size = DefaultTemplateSize
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %v", ErrEmptyTemplateStore, dir, err)
	}

	store := &TemplateStore{}
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		gray, err := LoadGray(path)
		if err != nil {
			fmt.Printf("[Templates] Skipping %s: %v\n", entry.Name(), err)
			continue
		}

		label := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		store.templates = append(store.templates, Template{
			Label:  label,
			Pixels: gray.Resample(size, size),
		})
	}

	if len(store.templates) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrEmptyTemplateStore, dir)
	}

	fmt.Printf("[Templates] Loaded %d templates from %s (%dx%d)\n", len(store.templates), dir, size, size)
	return store, nil
}

// Len returns the number of templates
func (s *TemplateStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.templates)
}

// Labels returns template labels in iteration order
func (s *TemplateStore) Labels() []string {
	labels := make([]string, 0, s.Len())
	for _, t := range s.templates {
		labels = append(labels, t.Label)
	}
	return labels
}

// Templates returns a copy of the templates in iteration order
func (s *TemplateStore) Templates() []Template {
	out := make([]Template, s.Len())
	copy(out, s.templates)
	return out
}
