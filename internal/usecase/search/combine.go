package search

// Combine returns lexical ids followed by semantic ids not seen before,
// each id at most once. The result is never nil.
func Combine(lexical, semantic []int64) []int64 {
	out := make([]int64, 0, len(lexical)+len(semantic))
	seen := make(map[int64]struct{}, cap(out))
	for _, list := range [][]int64{lexical, semantic} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
