package imbalance

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RankMatrix holds the conditional ranks of distance-1 neighbors under the
// distance-2 ordering, together with the number of fallback draws taken for
// neighbors that fell outside the distance-2 candidate window.
type RankMatrix struct {
	Ranks  *mat.Dense // 2D (N x k): integer-valued conditional ranks
	Misses int        // 0D: fallback draws taken; ranks are exact only when this is small
}

// Dims returns the number of points N and the rank order k.
func (r *RankMatrix) Dims() (n, k int) {
	return r.Ranks.Dims()
}

// Mean returns the mean over all N*k conditional ranks.
func (r *RankMatrix) Mean() float64 {
	return stat.Mean(r.Ranks.RawMatrix().Data, nil)
}

// MissRate returns the fraction of ranks that were fallback draws rather
// than exact positions. The imbalance is only statistically meaningful when
// this is small.
func (r *RankMatrix) MissRate() float64 {
	n, k := r.Dims()
	return float64(r.Misses) / float64(n*k)
}

// Imbalance returns the mean conditional rank divided by N/2, so that the
// statistic is ~1 when the second ordering is uninformative about the first
// and approaches 0 under perfect top-k agreement.
func (r *RankMatrix) Imbalance() float64 {
	n, _ := r.Dims()
	return r.Mean() / (float64(n) / 2.0)
}
