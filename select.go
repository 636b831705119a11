package kdrange

// selectNth reorders pts (and ids alongside it) so that pts[k] holds the
// value that would be at position k if pts were sorted by dimension dim, every
// element before k is <= it and every element after k is >= it.
//
// It is a deterministic quickselect: median-of-three pivot with a three-way
// partition, so runs of equal coordinates cannot degrade it to quadratic time.
func selectNth[P Point](pts []P, ids []int, k, dim int) {
	lo, hi := 0, len(pts)-1
	for lo < hi {
		pivot := medianOf3(pts[lo][dim], pts[lo+(hi-lo)/2][dim], pts[hi][dim])

		// [lo,lt) < pivot, [lt,i) == pivot, (gt,hi] > pivot
		lt, i, gt := lo, lo, hi
		for i <= gt {
			v := pts[i][dim]
			switch {
			case v < pivot:
				swapPoints(pts, ids, lt, i)
				lt++
				i++
			case v > pivot:
				swapPoints(pts, ids, i, gt)
				gt--
			default:
				i++
			}
		}

		switch {
		case k < lt:
			hi = lt - 1
		case k > gt:
			lo = gt + 1
		default:
			return
		}
	}
}

func swapPoints[P Point](pts []P, ids []int, i, j int) {
	pts[i], pts[j] = pts[j], pts[i]
	ids[i], ids[j] = ids[j], ids[i]
}

func medianOf3(a, b, c float32) float32 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		return a
	}
	return b
}
