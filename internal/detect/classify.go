package detect

// Classify maps a normalized RGB color (components in [0,1]) to a category.
// Yellow highlights carry high red and green with low blue; red marks carry
// high red with low green and blue. Short or missing color slices are treated
// as black and match nothing.
func Classify(rgb []float64) (Category, bool) {
	if len(rgb) < 3 {
		return 0, false
	}
	r, g, b := rgb[0], rgb[1], rgb[2]
	switch {
	case r > 0.7 && g > 0.7 && b < 0.5:
		return YellowHighlight, true
	case r > 0.7 && g < 0.3 && b < 0.3:
		return RedMark, true
	}
	return 0, false
}
