package region

import "image"

// Pad expands r outward by pad pixels on every side.
func Pad(r image.Rectangle, pad int) image.Rectangle {
	return image.Rect(r.Min.X-pad, r.Min.Y-pad, r.Max.X+pad, r.Max.Y+pad)
}

// Clamp restricts r to the page bounds [0,w] x [0,h].
func Clamp(r image.Rectangle, w, h int) image.Rectangle {
	return r.Intersect(image.Rect(0, 0, w, h))
}

// Overlaps reports whether two rectangles overlap or touch.
func Overlaps(a, b image.Rectangle) bool {
	return ShouldMerge(a, b, 0, 0)
}

// ShouldMerge reports whether two rectangles overlap or sit within the given
// horizontal and vertical distances of each other. True geometric overlap
// always merges; near-misses inside both thresholds merge too.
func ShouldMerge(a, b image.Rectangle, hThresh, vThresh int) bool {
	hClose := !(a.Max.X < b.Min.X-hThresh || b.Max.X < a.Min.X-hThresh)
	vClose := !(a.Max.Y < b.Min.Y-vThresh || b.Max.Y < a.Min.Y-vThresh)
	return hClose && vClose
}
