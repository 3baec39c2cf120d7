package detect

// Category identifies a semantic annotation class. The set is closed; adding
// a color means adding a constant and a defaults entry, the merge and
// extraction logic is category-agnostic.
type Category int

const (
	YellowHighlight Category = iota
	RedMark
)

// Categories returns all known categories in detection order.
func Categories() []Category {
	return []Category{YellowHighlight, RedMark}
}

func (c Category) String() string {
	switch c {
	case YellowHighlight:
		return "yellow_highlight"
	case RedMark:
		return "red_mark"
	}
	return "unknown"
}

// HueRange is a closed hue interval in OpenCV units (0-180).
type HueRange struct {
	Lo, Hi int
}

// Params carries the calibrated detection and grouping settings for one
// category. Saturation/value floors and hue ranges drive the pixel mask,
// MinArea suppresses anti-aliasing noise, the merge thresholds control how
// far apart fragments may sit and still join one group.
type Params struct {
	Category      Category
	Hues          []HueRange
	MinSaturation int
	MinValue      int
	MinArea       int
	MergeH        int
	MergeV        int
}

// Params returns the default calibration for the category. Marks use tighter
// merge thresholds: handwriting strokes are dense and over-merge with looser
// bounds. Red wraps the hue circle, hence two ranges.
func (c Category) Params() Params {
	switch c {
	case YellowHighlight:
		return Params{
			Category:      YellowHighlight,
			Hues:          []HueRange{{15, 35}},
			MinSaturation: 50,
			MinValue:      50,
			MinArea:       500,
			MergeH:        100,
			MergeV:        50,
		}
	case RedMark:
		return Params{
			Category:      RedMark,
			Hues:          []HueRange{{0, 10}, {170, 180}},
			MinSaturation: 50,
			MinValue:      50,
			MinArea:       200,
			MergeH:        80,
			MergeV:        40,
		}
	}
	return Params{Category: c}
}
