package kdrange

// BruteWithin scans points exhaustively and returns every point whose squared
// distance to q is <= radiusSquared, in input order. It uses the same
// distance computation as Tree, so results compare exactly. Inputs are not
// validated.
func BruteWithin[P Point](points []P, q P, radiusSquared float32) []Neighbor {
	var out []Neighbor
	for i, p := range points {
		if d := squaredDistance(q, p); d <= radiusSquared {
			out = append(out, Neighbor{Index: i, SquaredDistance: d})
		}
	}
	return out
}

// BrutePairs returns every pair (i, j), i < j, whose squared distance is
// <= radiusSquared, ordered by i then j. Inputs are not validated.
func BrutePairs[P Point](points []P, radiusSquared float32) []Pair {
	var out []Pair
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if d := squaredDistance(points[i], points[j]); d <= radiusSquared {
				out = append(out, Pair{I: i, J: j, SquaredDistance: d})
			}
		}
	}
	return out
}
