package imbalance

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Estimator computes conditional ranks and the imbalance statistic for a
// configured rank order. The zero-value configuration considers only the
// nearest neighbor (k=1), draws fallback seeds from ambient randomness and
// uses every available CPU.
type Estimator struct {
	k       int
	seed    uint64
	seeded  bool
	workers int
}

type EstimatorOption func(*Estimator)

// WithK sets the rank order: how many nearest distance-1 neighbors of each
// point, excluding the point itself, enter the statistic.
func WithK(k int) EstimatorOption {
	return func(e *Estimator) {
		e.k = k
	}
}

// WithSeed fixes the base seed of the per-point fallback streams so miss
// draws reproduce across runs and worker counts.
func WithSeed(seed uint64) EstimatorOption {
	return func(e *Estimator) {
		e.seed = seed
		e.seeded = true
	}
}

// WithWorkers caps the goroutines used for the per-point rank search. Zero
// or negative selects GOMAXPROCS.
func WithWorkers(n int) EstimatorOption {
	return func(e *Estimator) {
		e.workers = n
	}
}

func NewEstimator(opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		k: DefaultK,
	}

	for _, opt := range opts {
		opt(e)
	}

	if !e.seeded {
		e.seed = rand.Uint64()
	}

	return e
}

// Ranks computes the (N x k) conditional-rank matrix: entry (i, j) is the
// position that the j-th nearest neighbor of point i under the first
// distance measure occupies in point i's neighbor ordering under the second.
// Both inputs are neighbor-index matrices with the point itself at column 0
// and rows sorted by increasing distance; they must agree on the row count N
// but may differ in width.
//
// Neighbors found in the second ordering yield exact, deterministic ranks.
// Neighbors outside its candidate window draw a uniform rank from [M2, N)
// and are counted as misses on the result.
func (e *Estimator) Ranks(distIndices1, distIndices2 [][]int) (*RankMatrix, error) {
	n := len(distIndices1)
	if n != len(distIndices2) {
		return nil, fmt.Errorf("%w: got %d and %d rows", ErrShapeMismatch, n, len(distIndices2))
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: neighbor matrices have no rows", ErrShapeMismatch)
	}

	m1, err := uniformWidth(distIndices1)
	if err != nil {
		return nil, err
	}
	if _, err := uniformWidth(distIndices2); err != nil {
		return nil, err
	}
	if e.k < 1 || e.k > m1-1 {
		return nil, fmt.Errorf("%w: k=%d must be in [1, %d] for a matrix with %d columns", ErrInvalidK, e.k, m1-1, m1)
	}

	workers := e.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	// Every row writes a disjoint slice of data, so the workers share
	// nothing but the read-only inputs.
	data := make([]float64, n*e.k)
	missed := make([]int, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < n; i += workers {
				m, err := rowRanks(distIndices1[i], distIndices2[i], e.k, n, i, e.seed, data[i*e.k:(i+1)*e.k])
				if err != nil {
					errs[w] = err
					return
				}
				missed[w] += m
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	misses := 0
	for _, m := range missed {
		misses += m
	}
	log.Debug().Msgf("Computed conditional ranks for %d points (k=%d) with %d misses", n, e.k, misses)

	return &RankMatrix{
		Ranks:  mat.NewDense(n, e.k, data),
		Misses: misses,
	}, nil
}

// Imbalance computes the conditional ranks and reduces them to the scalar
// statistic: mean rank divided by N/2.
func (e *Estimator) Imbalance(distIndices1, distIndices2 [][]int) (float64, error) {
	ranks, err := e.Ranks(distIndices1, distIndices2)
	if err != nil {
		return 0, err
	}
	return ranks.Imbalance(), nil
}
