package detect

import (
	"sort"

	"cube-tracker/pkg/geometry"
)

// SuppressOverlaps performs greedy overlap suppression on the boxes:
// repeatedly keep the largest remaining box and discard every other box
// whose IoU with it meets or exceeds the threshold. Ties in area are
// resolved by input order. Output boxes are always a subset of the input
// and are pairwise below the threshold.
func SuppressOverlaps(boxes []geometry.RectInt, iouThreshold float64) []geometry.RectInt {
	if len(boxes) == 0 {
		return nil
	}

	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return boxes[order[i]].Area() > boxes[order[j]].Area()
	})

	suppressed := make([]bool, len(boxes))
	var kept []geometry.RectInt
	for _, i := range order {
		if suppressed[i] {
			continue
		}
		kept = append(kept, boxes[i])
		for _, j := range order {
			if j == i || suppressed[j] {
				continue
			}
			if boxes[i].IoU(boxes[j]) >= iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}
