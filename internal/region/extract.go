package region

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Coordinates is the summary JSON shape of a rectangle.
type Coordinates struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Record is one extracted region as persisted to extraction_summary.json.
// IndividualRegions is set only for color-detected groups.
type Record struct {
	Page              int         `json:"page"`
	Type              string      `json:"type"`
	Filename          string      `json:"filename"`
	Coordinates       Coordinates `json:"coordinates"`
	IndividualRegions int         `json:"individual_regions,omitempty"`
}

// RecordCoordinates converts a pixel rectangle to the summary shape.
func RecordCoordinates(r image.Rectangle) Coordinates {
	return Coordinates{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// CropName builds the deterministic crop filename for one region. Color-detected
// groups pass a "<category>_group" type so the two naming schemes never collide
// within a page.
func CropName(page int, typ string, seq int) string {
	return fmt.Sprintf("page_%d_%s_%d.png", page, typ, seq)
}

// Extractor crops padded regions out of a rendered page and writes them as PNG.
type Extractor struct {
	OutputDir string
}

// Extract pads rect, clamps it to the page, crops the pixels and writes them
// to name under OutputDir. The page buffer is never modified. A region that
// clamps to zero area is skipped: the returned bool is false and no file is
// written.
func (e *Extractor) Extract(page *image.RGBA, rect image.Rectangle, padding int, name string) (image.Rectangle, bool, error) {
	bounds := page.Bounds()
	r := Clamp(Pad(rect, padding), bounds.Dx(), bounds.Dy())
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return image.Rectangle{}, false, nil
	}

	crop := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(crop, image.Point{}, page, r, draw.Src, nil)

	f, err := os.Create(filepath.Join(e.OutputDir, name))
	if err != nil {
		return image.Rectangle{}, false, err
	}
	if err := png.Encode(f, crop); err != nil {
		f.Close()
		return image.Rectangle{}, false, err
	}
	if err := f.Close(); err != nil {
		return image.Rectangle{}, false, err
	}

	return r, true, nil
}
