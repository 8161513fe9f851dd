package services

import "math/rand/v2"

// sampleIDs picks up to n ids uniformly without replacement using a partial
// Fisher-Yates shuffle. It never modifies ids. intn(k) must return a value in [0, k).
func sampleIDs(ids []int64, n int, intn func(int) int) []int64 {
	if n <= 0 || len(ids) == 0 {
		return []int64{}
	}

	pool := make([]int64, len(ids))
	copy(pool, ids)
	if n > len(pool) {
		n = len(pool)
	}

	for i := 0; i < n; i++ {
		j := i + intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

func defaultIntN(k int) int {
	return rand.IntN(k)
}
