package region

import "image"

// Group is a cluster of nearby rectangles collapsed into one bounding box.
type Group struct {
	Rect    image.Rectangle
	Members int // number of original rectangles absorbed into the group
}

// Merge clusters rectangles that are close to each other into logical groups.
//
// Clustering is a connected-components computation over the ShouldMerge
// relation: a group starts from any unclaimed rectangle and repeatedly absorbs
// every unclaimed rectangle that merges with any current member, until a full
// scan adds nothing. This reaches rectangles connected only through an
// intermediary (A-B and B-C merge, A-C alone would not), which a single
// pairwise pass would miss. O(n²) per growth pass; n is the per-page,
// per-category count, typically tens.
func Merge(rects []image.Rectangle, hThresh, vThresh int) []Group {
	if len(rects) == 0 {
		return nil
	}

	used := make([]bool, len(rects))
	var groups []Group

	for i := range rects {
		if used[i] {
			continue
		}

		members := []image.Rectangle{rects[i]}
		used[i] = true

		for changed := true; changed; {
			changed = false
			for j := range rects {
				if used[j] {
					continue
				}
				for _, m := range members {
					if ShouldMerge(m, rects[j], hThresh, vThresh) {
						members = append(members, rects[j])
						used[j] = true
						changed = true
						break
					}
				}
			}
		}

		bound := members[0]
		for _, m := range members[1:] {
			bound = bound.Union(m)
		}

		groups = append(groups, Group{Rect: bound, Members: len(members)})
	}

	return groups
}
