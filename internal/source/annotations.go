package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ivlev/pdfmarks/internal/detect"
)

// AnnotationSource provides the native annotation list for a page, indexed
// from zero.
type AnnotationSource interface {
	PageAnnotations(index int) []detect.Annotation
}

// annotationEntry is one record in the sidecar file produced by the document
// exporter: 1-based page, PDF annotation type tag, optional normalized stroke
// and fill colors, and the document-space rectangle.
type annotationEntry struct {
	Page  int        `json:"page"`
	Type  string     `json:"type"`
	Color []float64  `json:"color,omitempty"`
	Fill  []float64  `json:"fill,omitempty"`
	Rect  [4]float64 `json:"rect"`
}

// AnnotationFile holds native annotations loaded from a JSON sidecar.
type AnnotationFile struct {
	pages map[int][]detect.Annotation
}

// LoadAnnotations reads a sidecar file. A missing file is not an error: the
// document simply has no machine-readable annotations and color detection
// carries the whole load.
func LoadAnnotations(path string) (*AnnotationFile, error) {
	f := &AnnotationFile{pages: make(map[int][]detect.Annotation)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []annotationEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing annotations %s: %w", path, err)
	}

	for _, e := range entries {
		if e.Page < 1 {
			continue
		}
		idx := e.Page - 1
		f.pages[idx] = append(f.pages[idx], detect.Annotation{
			Type:   e.Type,
			Stroke: e.Color,
			Fill:   e.Fill,
			Rect:   e.Rect,
		})
	}

	return f, nil
}

func (f *AnnotationFile) PageAnnotations(index int) []detect.Annotation {
	if f == nil {
		return nil
	}
	return f.pages[index]
}
