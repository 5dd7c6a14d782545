// Package imbalance computes the information imbalance between two distance
// measures defined over the same set of points.
//
// Given the neighbor orderings induced by each measure, the imbalance
// quantifies how well the nearest-neighbor ranking of the first measure
// predicts the ranking of the second: values near 0 mean the first measure
// carries nearly all the information of the second, values near 1 mean it
// carries essentially none.
package imbalance

// ConditionalRanks computes, for every point, the positions that its k
// nearest neighbors under the first distance measure occupy in the neighbor
// ordering of the second. See Estimator.Ranks for the full contract.
func ConditionalRanks(distIndices1, distIndices2 [][]int, k int) (*RankMatrix, error) {
	return NewEstimator(WithK(k)).Ranks(distIndices1, distIndices2)
}

// Imbalance computes the information imbalance of the first distance measure
// with respect to the second: the mean conditional rank divided by N/2. See
// Estimator.Imbalance for the full contract.
func Imbalance(distIndices1, distIndices2 [][]int, k int) (float64, error) {
	return NewEstimator(WithK(k)).Imbalance(distIndices1, distIndices2)
}
