package duplicates

// distanceWithin computes the Levenshtein distance between two token
// sequences, abandoning early once the distance provably exceeds
// maxDist. It returns the distance and whether it is within the bound.
func distanceWithin(a, b []string, maxDist int) (int, bool) {
	if maxDist < 0 {
		return 0, false
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(b)-len(a) > maxDist {
		return 0, false
	}
	if len(a) == 0 {
		return len(b), len(b) <= maxDist
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for j := 0; j <= len(a); j++ {
		prev[j] = j
	}

	// Cells farther than maxDist from the main diagonal cannot sit on a
	// path of cost <= maxDist, so each row only fills the band
	// [i-maxDist, i+maxDist]. Out-of-band neighbors are pinned to a
	// sentinel above the bound; in-band cells stay exact.
	sentinel := maxDist + 1
	for i := 1; i <= len(b); i++ {
		lo := i - maxDist
		if lo < 1 {
			lo = 1
		}
		hi := i + maxDist
		if hi > len(a) {
			hi = len(a)
		}
		if lo == 1 {
			curr[0] = i
		} else {
			curr[lo-1] = sentinel
		}
		rowMin := curr[lo-1]
		for j := lo; j <= hi; j++ {
			cost := 1
			if b[i-1] == a[j-1] {
				cost = 0
			}
			d := prev[j-1] + cost
			if del := prev[j] + 1; del < d {
				d = del
			}
			if ins := curr[j-1] + 1; ins < d {
				d = ins
			}
			curr[j] = d
			if d < rowMin {
				rowMin = d
			}
		}
		if rowMin > maxDist {
			return 0, false
		}
		// the cell just past the band feeds the next row's deletion step
		if hi < len(a) {
			curr[hi+1] = sentinel
		}
		prev, curr = curr, prev
	}

	d := prev[len(a)]
	return d, d <= maxDist
}
