package detect

import (
	"image"
	"image/draw"
	"math"
)

// MaskDetector finds candidate regions directly from pixel color, independent
// of native annotation metadata. It is the safety net for marks that carry no
// machine-readable metadata (hand drawings) and for renderers that drop
// annotation info.
type MaskDetector struct {
	Params Params
}

// NewMaskDetector creates a detector calibrated for one category.
func NewMaskDetector(p Params) *MaskDetector {
	return &MaskDetector{Params: p}
}

// Detect builds a binary mask from the category's hue ranges and
// saturation/value floors, extracts connected components by flood fill, and
// returns the bounding rectangle of every component whose pixel count reaches
// MinArea. Output is unmerged, one rectangle per component.
func (d *MaskDetector) Detect(img image.Image) []image.Rectangle {
	rgba := toRGBA(img)
	bounds := rgba.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		for x := 0; x < w; x++ {
			hue, sat, val := rgbToHSV(row[x*4], row[x*4+1], row[x*4+2])
			if sat < d.Params.MinSaturation || val < d.Params.MinValue {
				continue
			}
			for _, hr := range d.Params.Hues {
				if hue >= hr.Lo && hue <= hr.Hi {
					mask[y*w+x] = true
					break
				}
			}
		}
	}

	return components(mask, w, h, d.Params.MinArea)
}

// toRGBA returns img as *image.RGBA anchored at the origin, converting only
// when needed.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// rgbToHSV converts 8-bit RGB to HSV in OpenCV units: hue in [0,180),
// saturation and value in [0,255]. The calibrated thresholds are stated in
// these units.
func rgbToHSV(r8, g8, b8 uint8) (int, int, int) {
	r, g, b := float64(r8), float64(g8), float64(b8)
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	var s float64
	if max > 0 {
		s = delta / max * 255
	}

	var hue float64
	if delta > 0 {
		switch max {
		case r:
			hue = 60 * (g - b) / delta
		case g:
			hue = 120 + 60*(b-r)/delta
		default:
			hue = 240 + 60*(r-g)/delta
		}
		if hue < 0 {
			hue += 360
		}
	}

	return int(hue / 2), int(math.Round(s)), int(math.Round(max))
}

// components finds connected mask regions and returns the bounding rectangle
// of each one with at least minArea pixels.
func components(mask []bool, w, h, minArea int) []image.Rectangle {
	visited := make([]bool, len(mask))
	var rects []image.Rectangle

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] || visited[y*w+x] {
				continue
			}
			rect, area := floodFill(mask, visited, w, h, x, y)
			if area >= minArea {
				rects = append(rects, rect)
			}
		}
	}

	return rects
}

// floodFill claims the 4-connected component containing (startX, startY) and
// returns its bounding rectangle and pixel count.
func floodFill(mask, visited []bool, w, h, startX, startY int) (image.Rectangle, int) {
	minX, minY := startX, startY
	maxX, maxY := startX, startY
	area := 0

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		i := p.Y*w + p.X
		if visited[i] || !mask[i] {
			continue
		}
		visited[i] = true
		area++

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}

	return image.Rect(minX, minY, maxX+1, maxY+1), area
}
