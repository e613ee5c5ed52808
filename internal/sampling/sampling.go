// Package sampling reduces a scanned photo list to a configured subset,
// either the first N in scan order or a randomized selection spread
// proportionally across groups.
package sampling

import (
	"math/rand"
	"sort"

	"framemill/internal/config"
	"framemill/internal/project"
)

// Sample applies a sample spec to photos. A disabled spec returns the
// input unchanged; a size at or above the photo count returns every
// photo. Ordered samples take the first N in scan order. Randomized
// samples allocate shares to groups proportionally to their sizes using
// largest-remainder rounding, then pick uniformly without replacement
// inside each group; relative scan order is preserved in the result.
func Sample(photos []project.Photo, spec config.SampleSpec) []project.Photo {
	if !spec.Enabled || len(photos) == 0 {
		return photos
	}
	if spec.Size >= len(photos) {
		return photos
	}
	if !spec.Randomized {
		return photos[:spec.Size]
	}
	return randomized(photos, spec.Size)
}

type groupSlice struct {
	start, count int
	share        int
	remainder    float64
}

func randomized(photos []project.Photo, size int) []project.Photo {
	groups := splitGroups(photos)
	allocate(groups, size, len(photos))

	selected := make(map[int]struct{}, size)
	for _, g := range groups {
		for _, offset := range rand.Perm(g.count)[:g.share] {
			selected[g.start+offset] = struct{}{}
		}
	}

	indexes := make([]int, 0, len(selected))
	for i := range selected {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	out := make([]project.Photo, len(indexes))
	for i, idx := range indexes {
		out[i] = photos[idx]
	}
	return out
}

// splitGroups finds contiguous (date, group) runs in scan order.
func splitGroups(photos []project.Photo) []*groupSlice {
	var groups []*groupSlice
	for i, p := range photos {
		if i == 0 || p.Date != photos[i-1].Date || p.Group != photos[i-1].Group {
			groups = append(groups, &groupSlice{start: i})
		}
		groups[len(groups)-1].count++
	}
	return groups
}

// allocate distributes size selections over groups by largest remainder.
// Each group's share never exceeds its photo count, and shares always sum
// to size when size <= total.
func allocate(groups []*groupSlice, size, total int) {
	allocated := 0
	for _, g := range groups {
		exact := float64(size) * float64(g.count) / float64(total)
		g.share = int(exact)
		g.remainder = exact - float64(g.share)
		allocated += g.share
	}

	order := make([]*groupSlice, len(groups))
	copy(order, groups)
	sort.SliceStable(order, func(i, j int) bool { return order[i].remainder > order[j].remainder })

	for _, g := range order {
		if allocated == size {
			break
		}
		if g.share < g.count {
			g.share++
			allocated++
		}
	}
}
