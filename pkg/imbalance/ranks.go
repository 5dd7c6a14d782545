package imbalance

import (
	"fmt"
	"math/rand/v2"
)

// rowRanks computes the conditional ranks for a single point. row1 and row2
// are the point's neighbor lists under the two distance measures, self at
// column 0. The ranks of row1's k nearest non-self neighbors under row2's
// ordering are written to out, which must have length k.
//
// A neighbor absent from row2 fell outside the candidate window; its rank is
// drawn uniformly from [len(row2), n), each miss independently, from the
// stream seeded by (seed, point). Draws therefore depend only on the seed
// and the point index, never on scheduling.
func rowRanks(row1, row2 []int, k, n, point int, seed uint64, out []float64) (int, error) {
	positions := make(map[int]int, len(row2))
	for p, idx := range row2 {
		if _, ok := positions[idx]; !ok { // first match wins
			positions[idx] = p
		}
	}

	var (
		rng    *rand.Rand
		misses int
	)
	for j, idx := range row1[1 : k+1] {
		if p, ok := positions[idx]; ok {
			out[j] = float64(p)
			continue
		}
		lo := len(row2)
		if lo >= n {
			// The window spans every point, so a miss means the inputs hold
			// indices outside [0, n) or duplicate entries shadowing idx.
			return misses, fmt.Errorf("imbalance: neighbor %d of point %d missing from a candidate window covering all %d points", idx, point, n)
		}
		if rng == nil {
			rng = rand.New(rand.NewPCG(seed, uint64(point)))
		}
		out[j] = float64(lo + rng.IntN(n-lo))
		misses++
	}
	return misses, nil
}

// uniformWidth returns the shared column count of rows, or ErrShapeMismatch
// when the rows are ragged.
func uniformWidth(rows [][]int) (int, error) {
	w := len(rows[0])
	for i, row := range rows {
		if len(row) != w {
			return 0, fmt.Errorf("%w: row %d has %d columns, row 0 has %d", ErrShapeMismatch, i, len(row), w)
		}
	}
	return w, nil
}
