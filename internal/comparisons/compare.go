package comparisons

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/manifold-labs/imbalance/pkg/neighbors"
)

// ErrBadSubset reports a column selection that cannot be taken from the
// dataset.
var ErrBadSubset = errors.New("comparisons: invalid column subset")

// CompareIndices measures the imbalance between two precomputed neighbor
// orderings, in both directions where the window widths permit. The reverse
// direction needs k non-self columns in indicesB; when it has fewer, BToA is
// reported as NaN instead of failing the whole comparison.
func (c *Comparer) CompareIndices(indicesA, indicesB [][]int) (*Result, error) {
	started := time.Now()

	est := c.estimator()
	ab, err := est.Ranks(indicesA, indicesB)
	if err != nil {
		return nil, fmt.Errorf("comparisons: ranks A->B: %w", err)
	}

	res := &Result{
		ID:        uuid.NewString(),
		K:         c.k,
		AToB:      ab.Imbalance(),
		BToA:      math.NaN(),
		SummaryAB: summarize(ab),
		RanksAB:   ab.Ranks.RawMatrix().Data,
	}
	res.N, _ = ab.Dims()

	if len(indicesB[0])-1 >= c.k {
		ba, err := est.Ranks(indicesB, indicesA)
		if err != nil {
			return nil, fmt.Errorf("comparisons: ranks B->A: %w", err)
		}
		res.BToA = ba.Imbalance()
		res.SummaryBA = summarize(ba)
	} else {
		c.logger.Warnw("Skipping reverse direction: window too narrow",
			"k", c.k,
			"columns", len(indicesB[0]),
		)
	}

	res.Elapsed = time.Since(started)
	return res, nil
}

// CompareColumns builds neighbor orderings for two column subsets of data
// under the configured metric, then measures the imbalance between them.
func (c *Comparer) CompareColumns(ctx context.Context, data *mat.Dense, colsA, colsB []int) (*Result, error) {
	started := time.Now()

	subA, err := subsetCols(data, colsA)
	if err != nil {
		return nil, err
	}
	subB, err := subsetCols(data, colsB)
	if err != nil {
		return nil, err
	}

	n, _ := data.Dims()
	maxk := min(c.maxk, n-1)

	c.logger.Infow("Building neighbor orderings",
		"n", n,
		"maxk", maxk,
		"metric", c.metric.Name(),
		"colsA", colsA,
		"colsB", colsB,
	)

	searcher := neighbors.NewSearcher(c.metric, neighbors.WithWorkers(c.workers))
	indicesA, err := searcher.Index(ctx, subA, maxk)
	if err != nil {
		return nil, fmt.Errorf("comparisons: neighbor search A: %w", err)
	}
	indicesB, err := searcher.Index(ctx, subB, maxk)
	if err != nil {
		return nil, fmt.Errorf("comparisons: neighbor search B: %w", err)
	}

	res, err := c.CompareIndices(indicesA, indicesB)
	if err != nil {
		return nil, err
	}
	res.MaxK = maxk
	res.Metric = c.metric.Name()
	res.Elapsed = time.Since(started)

	c.logger.Infow("Imbalance computed",
		"id", res.ID,
		"aToB", res.AToB,
		"bToA", res.BToA,
		"missRateAB", res.SummaryAB.MissRate,
		"missRateBA", res.SummaryBA.MissRate,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// Grid computes the pairwise imbalance matrix over column subsets: entry
// (i, j) is the imbalance from subset i to subset j. The diagonal lands at
// (k+1)/N, the floor the statistic reaches when the orderings agree exactly.
func (c *Comparer) Grid(ctx context.Context, data *mat.Dense, subsets [][]int) (*mat.Dense, error) {
	if len(subsets) < 2 {
		return nil, fmt.Errorf("%w: grid needs at least two column subsets", ErrBadSubset)
	}

	n, _ := data.Dims()
	maxk := min(c.maxk, n-1)

	searcher := neighbors.NewSearcher(c.metric, neighbors.WithWorkers(c.workers))
	indices := make([][][]int, len(subsets))
	for s, cols := range subsets {
		sub, err := subsetCols(data, cols)
		if err != nil {
			return nil, err
		}
		indices[s], err = searcher.Index(ctx, sub, maxk)
		if err != nil {
			return nil, fmt.Errorf("comparisons: neighbor search for subset %d: %w", s, err)
		}
	}

	est := c.estimator()
	out := mat.NewDense(len(subsets), len(subsets), nil)
	for i := range subsets {
		for j := range subsets {
			imb, err := est.Imbalance(indices[i], indices[j])
			if err != nil {
				return nil, fmt.Errorf("comparisons: grid (%d,%d): %w", i, j, err)
			}
			out.Set(i, j, imb)
		}
	}

	c.logger.Infow("Imbalance grid computed", "subsets", len(subsets), "n", n, "maxk", maxk)
	return out, nil
}

func subsetCols(data *mat.Dense, cols []int) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no columns selected", ErrBadSubset)
	}

	rows, width := data.Dims()
	out := mat.NewDense(rows, len(cols), nil)
	for j, col := range cols {
		if col < 0 || col >= width {
			return nil, fmt.Errorf("%w: column %d out of range [0, %d)", ErrBadSubset, col, width)
		}
		out.SetCol(j, mat.Col(nil, col, data))
	}
	return out, nil
}
