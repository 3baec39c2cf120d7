package detect

import (
	"image"

	"github.com/ivlev/pdfmarks/internal/region"
)

// Annotation is a native annotation record provided by the document layer:
// a type tag, optional stroke and fill colors in normalized RGB, and a
// bounding rectangle in document coordinate space.
type Annotation struct {
	Type   string
	Stroke []float64
	Fill   []float64
	Rect   [4]float64 // x0, y0, x1, y1 in document units
}

// Color returns the annotation color used for classification: stroke when
// present, otherwise fill, otherwise nil (treated as black downstream).
func (a Annotation) Color() []float64 {
	if len(a.Stroke) >= 3 {
		return a.Stroke
	}
	return a.Fill
}

// Candidate is a single detected region with its category, before grouping.
type Candidate struct {
	Rect     image.Rectangle
	Category Category
	Type     string // native type tag, or the category name for color detections
}

// Annotation type tags eligible per category.
var (
	highlightTypes = map[string]bool{"Highlight": true, "Squiggly": true, "StrikeOut": true, "Underline": true}
	inkTypes       = map[string]bool{"Ink": true, "FreeText": true}
)

// MetadataDetector turns native annotation records into pixel-space
// candidates. Zoom is the document-to-pixel scale used when the page was
// rendered; Padding expands the scaled rectangle before clamping.
type MetadataDetector struct {
	Zoom        float64
	Padding     int
	Highlights  bool
	Handwriting bool
}

// Detect yields at most one candidate for a native annotation: the type tag
// must be eligible for a category, that category must be enabled, and the
// annotation color must classify into it. The rectangle is scaled by Zoom,
// padded, and clamped to the page; degenerate results are dropped.
func (d *MetadataDetector) Detect(a Annotation, pageW, pageH int) (Candidate, bool) {
	cat, ok := d.classify(a)
	if !ok {
		return Candidate{}, false
	}

	r := image.Rect(
		int(a.Rect[0]*d.Zoom),
		int(a.Rect[1]*d.Zoom),
		int(a.Rect[2]*d.Zoom),
		int(a.Rect[3]*d.Zoom),
	)
	r = region.Clamp(region.Pad(r, d.Padding), pageW, pageH)
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return Candidate{}, false
	}

	return Candidate{Rect: r, Category: cat, Type: a.Type}, true
}

func (d *MetadataDetector) classify(a Annotation) (Category, bool) {
	switch {
	case highlightTypes[a.Type]:
		if !d.Highlights {
			return 0, false
		}
		if cat, ok := Classify(a.Color()); ok && cat == YellowHighlight {
			return cat, true
		}
	case inkTypes[a.Type]:
		if !d.Handwriting {
			return 0, false
		}
		if cat, ok := Classify(a.Color()); ok && cat == RedMark {
			return cat, true
		}
	}
	return 0, false
}
