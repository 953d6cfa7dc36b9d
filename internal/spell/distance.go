package spell

// osaDistance returns the optimal string alignment (restricted Damerau-Levenshtein)
// distance between a and b, or -1 when it exceeds maxDistance.
func osaDistance(a, b []rune, maxDistance int) int {
	la, lb := len(a), len(b)
	if abs(la-lb) > maxDistance {
		return -1
	}
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d := min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				d = min(d, prev2[j-2]+1)
			}
			cur[j] = d
			rowMin = min(rowMin, d)
		}
		if rowMin > maxDistance {
			return -1
		}
		prev2, prev, cur = prev, cur, prev2
	}

	if prev[lb] > maxDistance {
		return -1
	}
	return prev[lb]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
